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

// Package testutils provides utilities used in tests
package testutils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/helpers"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitMemoryDB creates an in-memory SQLite database with the schema initialized
func InitMemoryDB(t *testing.T) *gorm.DB {
	// Use file-based in-memory database with unique UUID per test to avoid sharing
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatalf("failed to generate UUID for test database: %v", err)
	}
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid)
	db, err := gorm.Open(sqlite.Open(dbName), database.Config())
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	// A single connection keeps the shared in-memory database alive and
	// serializes writers
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.InitSchema(db); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}
	return uuid
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// Date returns the UTC time for the given date and clock time
func Date(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

// SetupSession creates and returns a study session for the given owner. A nil
// end time leaves the session active.
func SetupSession(t *testing.T, db *gorm.DB, userID, sessionType string, start time.Time, end *time.Time) database.StudySession {
	s := database.StudySession{
		Model:       database.Model{ID: MustUUID(t)},
		UserID:      userID,
		SessionType: sessionType,
		StartTime:   start,
		EndTime:     end,
		Version:     1,
	}
	if end != nil {
		d := int(end.Sub(start) / time.Minute)
		s.DurationMinutes = &d
	}

	MustExec(t, db.Create(&s), "preparing study session")

	return s
}

// SetupEndedSession creates an ended session of the given length in minutes
func SetupEndedSession(t *testing.T, db *gorm.DB, userID string, start time.Time, minutes int) database.StudySession {
	end := start.Add(time.Duration(minutes) * time.Minute)

	return SetupSession(t, db, userID, database.SessionTypePomodoro, start, &end)
}

// SetupTask creates and returns a task for the given owner
func SetupTask(t *testing.T, db *gorm.DB, userID, title string, completed bool) database.Task {
	task := database.Task{
		Model:       database.Model{ID: MustUUID(t)},
		UserID:      userID,
		Title:       title,
		IsCompleted: completed,
	}
	if completed {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	MustExec(t, db.Create(&task), "preparing task")

	return task
}

// SetupAccessToken creates and returns a valid access token for the given user
func SetupAccessToken(t *testing.T, db *gorm.DB, userID string, expiresAt time.Time) database.AccessToken {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(errors.Wrap(err, "reading random bits"))
	}

	tok := database.AccessToken{
		Model:     database.Model{ID: MustUUID(t)},
		UserID:    userID,
		Key:       base64.URLEncoding.EncodeToString(b),
		ExpiresAt: expiresAt,
	}
	MustExec(t, db.Create(&tok), "preparing access token")

	return tok
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header in the given request for the given user
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, userID string) {
	tok := SetupAccessToken(t, db, userID, time.Now().Add(time.Hour*24))

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", tok.Key))
}

// HTTPAuthDo makes an HTTP request with an appropriate authorization header for a user
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, userID string) *http.Response {
	SetReqAuthHeader(t, db, req, userID)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MustDecodeJSON decodes the response body into v and fails the test on error
func MustDecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding payload"))
	}
}

// PayloadWrapper is a wrapper for a payload that can be converted to JSON
type PayloadWrapper struct {
	Data interface{}
}

// ToJSON returns the JSON encoding of the payload
func (p PayloadWrapper) ToJSON(t *testing.T) string {
	b, err := json.Marshal(p.Data)
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}
