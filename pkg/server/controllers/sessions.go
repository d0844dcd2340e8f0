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
	"net/http"
	"time"

	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/context"
	"github.com/studylog/studylog/pkg/server/presenters"
)

// NewSessions creates a new Sessions controller
func NewSessions(app *app.App) *Sessions {
	return &Sessions{
		app: app,
	}
}

// Sessions is a study session controller
type Sessions struct {
	app *app.App
}

type startSessionPayload struct {
	SessionType           string     `json:"session_type" schema:"session_type"`
	StartTime             *time.Time `json:"start_time" schema:"-"`
	EndTime               *time.Time `json:"end_time" schema:"-"`
	TargetDurationMinutes *int       `json:"target_duration_minutes" schema:"target_duration_minutes"`
	SessionNotes          *string    `json:"session_notes" schema:"session_notes"`
}

// Create handles POST /sessions
func (s *Sessions) Create(w http.ResponseWriter, r *http.Request) {
	var params startSessionPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing request payload")
		return
	}

	session, err := s.app.StartSession(r.Context(), context.Principal(r.Context()), app.StartSessionParams{
		SessionType:           params.SessionType,
		StartTime:             params.StartTime,
		EndTime:               params.EndTime,
		TargetDurationMinutes: params.TargetDurationMinutes,
		SessionNotes:          params.SessionNotes,
	})
	if err != nil {
		handleJSONError(w, err, "starting session")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentSession(session))
}

type listSessionsQuery struct {
	StartDate   time.Time `schema:"start_date"`
	EndDate     time.Time `schema:"end_date"`
	SessionType string    `schema:"session_type"`
	Page        int       `schema:"page"`
	PerPage     int       `schema:"per_page"`
	Order       string    `schema:"order"`
}

// defaultPerPage is the page size when the request does not give one
const defaultPerPage = 30

// ListSessionsResponse is the response of listing sessions
type ListSessionsResponse struct {
	Sessions []presenters.Session `json:"sessions"`
	Total    int64                `json:"total"`
}

// Index handles GET /sessions
func (s *Sessions) Index(w http.ResponseWriter, r *http.Request) {
	var q listSessionsQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	res, err := s.app.ListSessions(r.Context(), context.Principal(r.Context()), app.ListSessionsParams{
		StartDate:   optionalTime(q.StartDate),
		EndDate:     optionalTime(q.EndDate),
		SessionType: q.SessionType,
		Page:        page,
		PerPage:     perPage,
		Order:       q.Order,
	})
	if err != nil {
		handleJSONError(w, err, "listing sessions")
		return
	}

	respondJSON(w, http.StatusOK, ListSessionsResponse{
		Sessions: presenters.PresentSessions(res.Sessions),
		Total:    res.Total,
	})
}

// ActiveSessionResponse is the response of getting the active session
type ActiveSessionResponse struct {
	Session *presenters.Session `json:"session"`
}

// Active handles GET /sessions/active
func (s *Sessions) Active(w http.ResponseWriter, r *http.Request) {
	session, err := s.app.GetActiveSession(r.Context(), context.Principal(r.Context()))
	if err != nil {
		handleJSONError(w, err, "getting active session")
		return
	}

	var resp ActiveSessionResponse
	if session != nil {
		p := presenters.PresentSession(*session)
		resp.Session = &p
	}

	respondJSON(w, http.StatusOK, resp)
}

// Show handles GET /sessions/{id}
func (s *Sessions) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	session, err := s.app.GetSession(r.Context(), context.Principal(r.Context()), id)
	if err != nil {
		handleJSONError(w, err, "getting session")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentSession(session))
}

type updateSessionPayload struct {
	SessionType           *string    `json:"session_type"`
	StartTime             *time.Time `json:"start_time"`
	EndTime               *time.Time `json:"end_time"`
	TargetDurationMinutes *int       `json:"target_duration_minutes"`
	SessionNotes          *string    `json:"session_notes"`
	MoodRating            *int       `json:"mood_rating"`
	ProductivityRating    *int       `json:"productivity_rating"`
	AIFeedback            *string    `json:"ai_feedback"`
	AIFeedbackGeneratedAt *time.Time `json:"ai_feedback_generated_at"`
	CalendarEventID       *string    `json:"calendar_event_id"`
}

// Update handles PATCH /sessions/{id}
func (s *Sessions) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params updateSessionPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing request payload")
		return
	}

	session, err := s.app.UpdateSession(r.Context(), context.Principal(r.Context()), id, app.UpdateSessionParams{
		SessionType:           params.SessionType,
		StartTime:             params.StartTime,
		EndTime:               params.EndTime,
		TargetDurationMinutes: params.TargetDurationMinutes,
		SessionNotes:          params.SessionNotes,
		MoodRating:            params.MoodRating,
		ProductivityRating:    params.ProductivityRating,
		AIFeedback:            params.AIFeedback,
		AIFeedbackGeneratedAt: params.AIFeedbackGeneratedAt,
		CalendarEventID:       params.CalendarEventID,
	})
	if err != nil {
		handleJSONError(w, err, "updating session")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentSession(session))
}

type endSessionPayload struct {
	MoodRating         *int    `json:"mood_rating" schema:"mood_rating"`
	ProductivityRating *int    `json:"productivity_rating" schema:"productivity_rating"`
	SessionNotes       *string `json:"session_notes" schema:"session_notes"`
}

// End handles POST /sessions/{id}/end
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params endSessionPayload
	if r.ContentLength != 0 {
		if err := parseRequestData(r, &params); err != nil {
			handleJSONError(w, err, "parsing request payload")
			return
		}
	}

	session, err := s.app.EndSession(r.Context(), context.Principal(r.Context()), id, app.EndSessionParams{
		MoodRating:         params.MoodRating,
		ProductivityRating: params.ProductivityRating,
		SessionNotes:       params.SessionNotes,
	})
	if err != nil {
		handleJSONError(w, err, "ending session")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentSession(session))
}

// Delete handles DELETE /sessions/{id}
func (s *Sessions) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.app.DeleteSession(r.Context(), context.Principal(r.Context()), id); err != nil {
		handleJSONError(w, err, "deleting session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
