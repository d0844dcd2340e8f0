/* Copyright 2025 Studylog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/studylog/studylog/pkg/assert"
	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/presenters"
	"github.com/studylog/studylog/pkg/server/testutils"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.App, *clock.Mock) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest(db)
	c := clock.NewMock()
	a.Clock = c

	server := MustNewServer(t, &a)
	t.Cleanup(server.Close)

	return server, &a, c
}

func TestPomodoroFlow(t *testing.T) {
	server, a, c := newTestServer(t)

	c.SetNow(testutils.Date(2025, 1, 1, 10, 0))
	req := testutils.MakeReq(server.URL, "POST", "/api/v1/sessions", `{"session_type": "pomodoro", "target_duration_minutes": 25}`)
	res := testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusCreated, "")

	var started presenters.Session
	testutils.MustDecodeJSON(t, res, &started)
	assert.Equal(t, started.Active, true, "session should be active")
	assert.TimeEqual(t, started.StartTime, testutils.Date(2025, 1, 1, 10, 0), "StartTime mismatch")

	c.SetNow(testutils.Date(2025, 1, 1, 10, 25))
	endpoint := fmt.Sprintf("/api/v1/sessions/%s/end", started.ID)
	req = testutils.MakeReq(server.URL, "POST", endpoint, `{"mood_rating": 4}`)
	res = testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var ended presenters.Session
	testutils.MustDecodeJSON(t, res, &ended)
	assert.Equal(t, ended.Active, false, "session should be ended")
	assert.Equal(t, *ended.DurationMinutes, 25, "DurationMinutes mismatch")
	assert.Equal(t, *ended.MoodRating, 4, "MoodRating mismatch")

	req = testutils.MakeReq(server.URL, "GET", "/api/v1/stats", "")
	res = testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var stats app.UserStats
	testutils.MustDecodeJSON(t, res, &stats)
	assert.Equal(t, stats.TotalSessions, 1, "TotalSessions mismatch")
	assert.Equal(t, stats.TotalMinutes, 25, "TotalMinutes mismatch")
	assert.Equal(t, *stats.AvgMood, 4.0, "AvgMood mismatch")
}

func TestCreateSession(t *testing.T) {
	t.Run("conflict with an active session", func(t *testing.T) {
		server, a, c := newTestServer(t)
		testutils.SetupSession(t, a.DB, "alice", database.SessionTypeStopwatch, c.Now(), nil)

		req := testutils.MakeReq(server.URL, "POST", "/api/v1/sessions", `{"session_type": "pomodoro"}`)
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

		assert.StatusCodeEquals(t, res, http.StatusConflict, "")
	})

	t.Run("form payload", func(t *testing.T) {
		server, a, _ := newTestServer(t)

		req := testutils.MakeReq(server.URL, "POST", "/api/v1/sessions", "session_type=custom&session_notes=reading")
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")
		assert.StatusCodeEquals(t, res, http.StatusCreated, "")

		var got presenters.Session
		testutils.MustDecodeJSON(t, res, &got)
		assert.Equal(t, got.SessionType, database.SessionTypeCustom, "SessionType mismatch")
		assert.Equal(t, *got.SessionNotes, "reading", "SessionNotes mismatch")
	})

	testCases := []struct {
		payload  string
		expected int
	}{
		{payload: `{"session_type": "nap"}`, expected: http.StatusBadRequest},
		{payload: `{"session_type": `, expected: http.StatusBadRequest},
		{payload: `{"session_type": "pomodoro", "target_duration_minutes": -5}`, expected: http.StatusBadRequest},
		{payload: `{"session_type": "pomodoro", "start_time": "2025-01-01T10:00:00Z", "end_time": "2025-01-01T09:00:00Z"}`, expected: http.StatusBadRequest},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("invalid payload %d", idx), func(t *testing.T) {
			server, a, _ := newTestServer(t)

			req := testutils.MakeReq(server.URL, "POST", "/api/v1/sessions", tc.payload)
			res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

			assert.StatusCodeEquals(t, res, tc.expected, "")
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		req := testutils.MakeReq(server.URL, "POST", "/api/v1/sessions", `{"session_type": "pomodoro"}`)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")
	})
}

func TestShowSession(t *testing.T) {
	server, a, c := newTestServer(t)

	s := testutils.SetupEndedSession(t, a.DB, "bob", c.Now(), 30)
	endpoint := fmt.Sprintf("/api/v1/sessions/%s", s.ID)

	t.Run("owner", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", endpoint, "")
		res := testutils.HTTPAuthDo(t, a.DB, req, "bob")
		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got presenters.Session
		testutils.MustDecodeJSON(t, res, &got)
		assert.Equal(t, got.ID, s.ID, "ID mismatch")
		assert.Equal(t, *got.DurationMinutes, 30, "DurationMinutes mismatch")
	})

	t.Run("another user", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", endpoint, "")
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	})
}

func TestActiveSession(t *testing.T) {
	server, a, c := newTestServer(t)

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/sessions/active", "")
	res := testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var empty ActiveSessionResponse
	testutils.MustDecodeJSON(t, res, &empty)
	assert.Equal(t, empty.Session == nil, true, "there should be no active session")

	s := testutils.SetupSession(t, a.DB, "alice", database.SessionTypePomodoro, c.Now(), nil)

	req = testutils.MakeReq(server.URL, "GET", "/api/v1/sessions/active", "")
	res = testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var got ActiveSessionResponse
	testutils.MustDecodeJSON(t, res, &got)
	assert.Equal(t, got.Session.ID, s.ID, "active session mismatch")
}

func TestIndexSessions(t *testing.T) {
	server, a, _ := newTestServer(t)

	s1 := testutils.SetupEndedSession(t, a.DB, "alice", testutils.Date(2025, 1, 1, 9, 0), 25)
	s2 := testutils.SetupEndedSession(t, a.DB, "alice", testutils.Date(2025, 1, 2, 9, 0), 25)
	testutils.SetupEndedSession(t, a.DB, "bob", testutils.Date(2025, 1, 2, 9, 0), 25)

	testCases := []struct {
		query         string
		expectedIDs   []string
		expectedTotal int64
	}{
		{query: "", expectedIDs: []string{s2.ID, s1.ID}, expectedTotal: 2},
		{query: "?order=asc", expectedIDs: []string{s1.ID, s2.ID}, expectedTotal: 2},
		{query: "?start_date=2025-01-02&end_date=2025-01-02", expectedIDs: []string{s2.ID}, expectedTotal: 1},
		{query: "?per_page=1&page=2", expectedIDs: []string{s1.ID}, expectedTotal: 2},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", "/api/v1/sessions"+tc.query, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, "alice")
			assert.StatusCodeEquals(t, res, http.StatusOK, "")

			var payload ListSessionsResponse
			testutils.MustDecodeJSON(t, res, &payload)

			ids := []string{}
			for _, s := range payload.Sessions {
				ids = append(ids, s.ID)
			}
			assert.DeepEqual(t, ids, tc.expectedIDs, "session ids mismatch")
			assert.Equal(t, payload.Total, tc.expectedTotal, "total mismatch")
		})
	}

	t.Run("invalid date", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/v1/sessions?start_date=yesterday", "")
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

		assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")
	})

	t.Run("reversed range", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/v1/sessions?start_date=2025-01-03&end_date=2025-01-01", "")
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

		assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")
	})
}

func TestUpdateSession(t *testing.T) {
	server, a, c := newTestServer(t)

	s := testutils.SetupEndedSession(t, a.DB, "alice", c.Now(), 30)
	endpoint := fmt.Sprintf("/api/v1/sessions/%s", s.ID)

	t.Run("owner", func(t *testing.T) {
		payload := `{"end_time": "2025-01-01T10:45:00Z", "productivity_rating": 5, "calendar_event_id": "evt-1"}`
		req := testutils.MakeReq(server.URL, "PATCH", endpoint, payload)
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")
		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got presenters.Session
		testutils.MustDecodeJSON(t, res, &got)
		assert.Equal(t, *got.DurationMinutes, 45, "DurationMinutes mismatch")
		assert.Equal(t, *got.ProductivityRating, 5, "ProductivityRating mismatch")
		assert.Equal(t, *got.CalendarEventID, "evt-1", "CalendarEventID mismatch")
		assert.Equal(t, got.Version, 2, "Version mismatch")
	})

	t.Run("invalid rating", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "PATCH", endpoint, `{"mood_rating": 9}`)
		res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

		assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")
	})

	t.Run("another user", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "PATCH", endpoint, `{"session_notes": "hijacked"}`)
		res := testutils.HTTPAuthDo(t, a.DB, req, "bob")

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	})
}

func TestEndSessionTwice(t *testing.T) {
	server, a, c := newTestServer(t)

	s := testutils.SetupSession(t, a.DB, "alice", database.SessionTypeStopwatch, c.Now(), nil)
	endpoint := fmt.Sprintf("/api/v1/sessions/%s/end", s.ID)

	c.Advance(10 * time.Minute)
	req := testutils.MakeReq(server.URL, "POST", endpoint, "")
	res := testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var first presenters.Session
	testutils.MustDecodeJSON(t, res, &first)

	c.Advance(10 * time.Minute)
	req = testutils.MakeReq(server.URL, "POST", endpoint, "")
	res = testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var second presenters.Session
	testutils.MustDecodeJSON(t, res, &second)
	assert.TimeEqual(t, *second.EndTime, *first.EndTime, "EndTime should not change")
	assert.Equal(t, *second.DurationMinutes, 10, "DurationMinutes mismatch")
}

func TestDeleteSession(t *testing.T) {
	server, a, c := newTestServer(t)

	s := testutils.SetupEndedSession(t, a.DB, "alice", c.Now(), 30)
	endpoint := fmt.Sprintf("/api/v1/sessions/%s", s.ID)

	req := testutils.MakeReq(server.URL, "DELETE", endpoint, "")
	res := testutils.HTTPAuthDo(t, a.DB, req, "bob")
	assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

	req = testutils.MakeReq(server.URL, "DELETE", endpoint, "")
	res = testutils.HTTPAuthDo(t, a.DB, req, "alice")
	assert.StatusCodeEquals(t, res, http.StatusNoContent, "")

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.StudySession{}).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "session count mismatch")
}
