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

// NewStats creates a new Stats controller
func NewStats(app *app.App) *Stats {
	return &Stats{
		app: app,
	}
}

// Stats is an analytics controller
type Stats struct {
	app *app.App
}

// Index handles GET /stats
func (s *Stats) Index(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.UserStats(r.Context(), context.Principal(r.Context()))
	if err != nil {
		handleJSONError(w, err, "computing stats")
		return
	}

	stats.LastSessionAt = presenters.FormatTSPtr(stats.LastSessionAt)
	respondJSON(w, http.StatusOK, stats)
}

type dailySummaryQuery struct {
	StartDate time.Time `schema:"start_date"`
	EndDate   time.Time `schema:"end_date"`
}

// Daily handles GET /stats/daily
func (s *Stats) Daily(w http.ResponseWriter, r *http.Request) {
	var q dailySummaryQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	days, err := s.app.DailySummary(r.Context(), context.Principal(r.Context()), app.DailySummaryParams{
		StartDate: optionalTime(q.StartDate),
		EndDate:   optionalTime(q.EndDate),
	})
	if err != nil {
		handleJSONError(w, err, "computing daily summary")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentDailySummaries(days))
}

// StreakResponse is the response of the streak endpoint
type StreakResponse struct {
	Streak int `json:"streak"`
}

// Streak handles GET /stats/streak
func (s *Stats) Streak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.app.StudyStreak(r.Context(), context.Principal(r.Context()))
	if err != nil {
		handleJSONError(w, err, "computing streak")
		return
	}

	respondJSON(w, http.StatusOK, StreakResponse{Streak: streak})
}

// CompletionRateResponse is the response of the completion rate endpoint
type CompletionRateResponse struct {
	CompletionRate float64 `json:"completion_rate"`
}

// CompletionRate handles GET /stats/completion-rate
func (s *Stats) CompletionRate(w http.ResponseWriter, r *http.Request) {
	rate, err := s.app.TaskCompletionRate(r.Context(), context.Principal(r.Context()))
	if err != nil {
		handleJSONError(w, err, "computing completion rate")
		return
	}

	respondJSON(w, http.StatusOK, CompletionRateResponse{CompletionRate: rate})
}
