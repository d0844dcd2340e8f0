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

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/helpers"
	"github.com/studylog/studylog/pkg/server/log"
	"github.com/studylog/studylog/pkg/server/permissions"
	"gorm.io/gorm"
)

// StartSessionParams is the params for starting a study session
type StartSessionParams struct {
	SessionType string
	// StartTime defaults to the current time
	StartTime *time.Time
	// EndTime records an already finished session when set
	EndTime               *time.Time
	TargetDurationMinutes *int
	SessionNotes          *string
}

// UpdateSessionParams is the params for updating a study session. Nil fields
// are left unchanged.
type UpdateSessionParams struct {
	SessionType           *string
	StartTime             *time.Time
	EndTime               *time.Time
	TargetDurationMinutes *int
	SessionNotes          *string
	MoodRating            *int
	ProductivityRating    *int
	AIFeedback            *string
	AIFeedbackGeneratedAt *time.Time
	CalendarEventID       *string
}

// EndSessionParams is the params for ending a study session
type EndSessionParams struct {
	MoodRating         *int
	ProductivityRating *int
	SessionNotes       *string
}

// ListSessionsParams is the params for listing study sessions
type ListSessionsParams struct {
	// StartDate and EndDate bound the UTC calendar date of the start time,
	// inclusively
	StartDate   *time.Time
	EndDate     *time.Time
	SessionType string
	Page        int
	PerPage     int
	// Order is either "asc" or "desc" on the start time. Defaults to "desc".
	Order string
}

// ListSessionsResult is the result of listing study sessions
type ListSessionsResult struct {
	Sessions []database.StudySession
	Total    int64
}

func validateSessionType(t string) error {
	if !database.IsValidSessionType(t) {
		return ErrInvalidSessionType
	}

	return nil
}

func validateRating(r *int) error {
	if r != nil && (*r < database.MinRating || *r > database.MaxRating) {
		return ErrInvalidRating
	}

	return nil
}

func validateTargetDuration(m *int) error {
	if m != nil && *m <= 0 {
		return ErrInvalidTargetDuration
	}

	return nil
}

func validateSpan(start time.Time, end *time.Time) error {
	if end != nil && !end.After(start) {
		return ErrEndBeforeStart
	}

	return nil
}

// validateActiveStart rejects an active session that starts after now, since
// ending it at the current time would precede its start
func validateActiveStart(start time.Time, end *time.Time, now time.Time) error {
	if end == nil && start.After(now) {
		return ErrStartInFuture
	}

	return nil
}

func findSession(s permissions.Scope, id string) (database.StudySession, error) {
	var session database.StudySession

	err := s.Sessions().Where("study_sessions.id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session, ErrNotFound
	} else if err != nil {
		return session, storeErr(err, "finding study session")
	}

	return session, nil
}

func findActiveSession(s permissions.Scope) (*database.StudySession, error) {
	var session database.StudySession

	err := s.Sessions().Where("end_time IS NULL").Order("start_time DESC, id DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, storeErr(err, "finding active study session")
	}

	return &session, nil
}

// StartSession creates a study session for the principal. The session is
// active unless an end time is given.
func (a *App) StartSession(ctx context.Context, p permissions.Principal, params StartSessionParams) (database.StudySession, error) {
	ownerID, err := ownerOf(p)
	if err != nil {
		return database.StudySession{}, err
	}
	if err := validateSessionType(params.SessionType); err != nil {
		return database.StudySession{}, err
	}
	if err := validateTargetDuration(params.TargetDurationMinutes); err != nil {
		return database.StudySession{}, err
	}

	now := normalizeTime(a.Clock.Now())
	start := now
	if params.StartTime != nil {
		start = normalizeTime(*params.StartTime)
	}
	if err := validateActiveStart(start, params.EndTime, now); err != nil {
		return database.StudySession{}, err
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return database.StudySession{}, err
	}

	session := database.StudySession{
		Model:                 database.Model{ID: id},
		UserID:                ownerID,
		SessionType:           params.SessionType,
		StartTime:             start,
		TargetDurationMinutes: params.TargetDurationMinutes,
		SessionNotes:          params.SessionNotes,
		Version:               1,
	}

	if params.EndTime != nil {
		end := normalizeTime(*params.EndTime)
		if err := validateSpan(start, &end); err != nil {
			return database.StudySession{}, err
		}

		d := durationMinutes(start, end)
		session.EndTime = &end
		session.DurationMinutes = &d
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return database.StudySession{}, err
	}

	err = s.Transaction(func(tx permissions.Scope) error {
		if session.IsActive() {
			active, err := findActiveSession(tx)
			if err != nil {
				return err
			}
			if active != nil {
				return ErrActiveSessionExists
			}
		}

		if err := tx.Create(ownerID, &session); err != nil {
			// the partial unique index catches a concurrent start
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrActiveSessionExists
			}

			return storeErr(err, "inserting study session")
		}

		return nil
	})
	if err != nil {
		return database.StudySession{}, classify(err, "starting study session")
	}

	log.WithFields(log.Fields{
		"session_id":   session.ID,
		"session_type": session.SessionType,
		"active":       session.IsActive(),
	}).Debug("study session started")

	return session, nil
}

// GetSession returns the study session with the given id
func (a *App) GetSession(ctx context.Context, p permissions.Principal, id string) (database.StudySession, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return database.StudySession{}, err
	}

	return findSession(s, id)
}

// GetActiveSession returns the most recently started active session of the
// principal, or nil if there is none
func (a *App) GetActiveSession(ctx context.Context, p permissions.Principal) (*database.StudySession, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	return findActiveSession(s)
}

func (params UpdateSessionParams) validate() error {
	if params.SessionType != nil {
		if err := validateSessionType(*params.SessionType); err != nil {
			return err
		}
	}
	if err := validateRating(params.MoodRating); err != nil {
		return err
	}
	if err := validateRating(params.ProductivityRating); err != nil {
		return err
	}

	return validateTargetDuration(params.TargetDurationMinutes)
}

// UpdateSession updates the given fields of a study session. Changing either
// timestamp recomputes the duration.
func (a *App) UpdateSession(ctx context.Context, p permissions.Principal, id string, params UpdateSessionParams) (database.StudySession, error) {
	if err := params.validate(); err != nil {
		return database.StudySession{}, err
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return database.StudySession{}, err
	}

	var ret database.StudySession
	err = s.Transaction(func(tx permissions.Scope) error {
		session, err := findSession(tx, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"version": gorm.Expr("version + 1"),
		}

		if params.SessionType != nil {
			updates["session_type"] = *params.SessionType
		}
		if params.TargetDurationMinutes != nil {
			updates["target_duration_minutes"] = *params.TargetDurationMinutes
		}
		if params.SessionNotes != nil {
			updates["session_notes"] = *params.SessionNotes
		}
		if params.MoodRating != nil {
			updates["mood_rating"] = *params.MoodRating
		}
		if params.ProductivityRating != nil {
			updates["productivity_rating"] = *params.ProductivityRating
		}
		if params.AIFeedback != nil {
			updates["ai_feedback"] = *params.AIFeedback
		}
		if params.AIFeedbackGeneratedAt != nil {
			updates["ai_feedback_generated_at"] = normalizeTime(*params.AIFeedbackGeneratedAt)
		}
		if params.CalendarEventID != nil {
			updates["calendar_event_id"] = *params.CalendarEventID
		}

		if params.StartTime != nil || params.EndTime != nil {
			start := session.StartTime
			if params.StartTime != nil {
				start = normalizeTime(*params.StartTime)
				updates["start_time"] = start
			}

			end := session.EndTime
			if params.EndTime != nil {
				e := normalizeTime(*params.EndTime)
				end = &e
				updates["end_time"] = e
			}

			if err := validateSpan(start, end); err != nil {
				return err
			}
			if err := validateActiveStart(start, end, normalizeTime(a.Clock.Now())); err != nil {
				return err
			}
			if end != nil {
				updates["duration_minutes"] = durationMinutes(start, *end)
			}
		}

		if err := tx.Sessions().Where("study_sessions.id = ?", id).Updates(updates).Error; err != nil {
			return storeErr(err, "updating study session")
		}

		ret, err = findSession(tx, id)
		return err
	})
	if err != nil {
		return database.StudySession{}, classify(err, "updating study session")
	}

	return ret, nil
}

// EndSession ends an active study session at the current time and records
// the given ratings and notes. Ending a session that has already ended
// changes nothing and returns its current state.
func (a *App) EndSession(ctx context.Context, p permissions.Principal, id string, params EndSessionParams) (database.StudySession, error) {
	if err := validateRating(params.MoodRating); err != nil {
		return database.StudySession{}, err
	}
	if err := validateRating(params.ProductivityRating); err != nil {
		return database.StudySession{}, err
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return database.StudySession{}, err
	}

	session, err := findSession(s, id)
	if err != nil {
		return database.StudySession{}, err
	}
	if !session.IsActive() {
		return session, nil
	}

	end := normalizeTime(a.Clock.Now())
	if err := validateSpan(session.StartTime, &end); err != nil {
		return database.StudySession{}, err
	}

	updates := map[string]interface{}{
		"end_time":         end,
		"duration_minutes": durationMinutes(session.StartTime, end),
		"version":          gorm.Expr("version + 1"),
	}
	if params.MoodRating != nil {
		updates["mood_rating"] = *params.MoodRating
	}
	if params.ProductivityRating != nil {
		updates["productivity_rating"] = *params.ProductivityRating
	}
	if params.SessionNotes != nil {
		updates["session_notes"] = *params.SessionNotes
	}

	// Only an active session is written so that the first end wins
	res := s.Sessions().Where("study_sessions.id = ? AND end_time IS NULL", id).Updates(updates)
	if res.Error != nil {
		return database.StudySession{}, storeErr(res.Error, "ending study session")
	}

	ret, err := findSession(s, id)
	if err != nil {
		return database.StudySession{}, err
	}

	if res.RowsAffected > 0 {
		log.WithFields(log.Fields{
			"session_id":       ret.ID,
			"duration_minutes": *ret.DurationMinutes,
		}).Debug("study session ended")
	}

	return ret, nil
}

// DeleteSession deletes a study session along with its tags. Tasks linked to
// the session are unlinked.
func (a *App) DeleteSession(ctx context.Context, p permissions.Principal, id string) error {
	s, err := a.scope(ctx, p)
	if err != nil {
		return err
	}

	err = s.Transaction(func(tx permissions.Scope) error {
		if _, err := findSession(tx, id); err != nil {
			return err
		}

		if err := tx.Tags().Where("session_tags.session_id = ?", id).Delete(&database.SessionTag{}).Error; err != nil {
			return storeErr(err, "deleting session tags")
		}
		if err := tx.Tasks().Where("tasks.session_id = ?", id).Update("session_id", nil).Error; err != nil {
			return storeErr(err, "unlinking tasks")
		}
		if err := tx.Sessions().Where("study_sessions.id = ?", id).Delete(&database.StudySession{}).Error; err != nil {
			return storeErr(err, "deleting study session")
		}

		return nil
	})

	return classify(err, "deleting study session")
}

func normalizeOrder(order string) (string, error) {
	switch strings.ToLower(order) {
	case "", "desc":
		return "DESC", nil
	case "asc":
		return "ASC", nil
	default:
		return "", ErrInvalidOrder
	}
}

// ListSessions returns the principal's study sessions matching the filters,
// ordered by start time
func (a *App) ListSessions(ctx context.Context, p permissions.Principal, params ListSessionsParams) (ListSessionsResult, error) {
	var ret ListSessionsResult

	order, err := normalizeOrder(params.Order)
	if err != nil {
		return ret, err
	}
	if params.SessionType != "" {
		if err := validateSessionType(params.SessionType); err != nil {
			return ret, err
		}
	}
	lower, upper, err := dateRange(params.StartDate, params.EndDate)
	if err != nil {
		return ret, err
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return ret, err
	}

	conn := whereStartBetween(s.Sessions(), lower, upper)
	if params.SessionType != "" {
		conn = conn.Where("study_sessions.session_type = ?", params.SessionType)
	}
	conn = conn.Session(&gorm.Session{})

	if err := conn.Count(&ret.Total).Error; err != nil {
		return ret, storeErr(err, "counting study sessions")
	}

	sessions := []database.StudySession{}
	if ret.Total != 0 {
		conn = paginate(conn.Order("start_time "+order+", id "+order), params.Page, params.PerPage)
		if err := conn.Find(&sessions).Error; err != nil {
			return ret, storeErr(err, "finding study sessions")
		}
	}
	ret.Sessions = sessions

	return ret, nil
}
