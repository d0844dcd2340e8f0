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

package presenters

import (
	"time"

	"github.com/studylog/studylog/pkg/server/database"
)

// Session is a result of PresentSession
type Session struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	SessionType           string     `json:"session_type"`
	StartTime             time.Time  `json:"start_time"`
	EndTime               *time.Time `json:"end_time"`
	DurationMinutes       *int       `json:"duration_minutes"`
	TargetDurationMinutes *int       `json:"target_duration_minutes"`
	SessionNotes          *string    `json:"session_notes"`
	MoodRating            *int       `json:"mood_rating"`
	ProductivityRating    *int       `json:"productivity_rating"`
	AIFeedback            *string    `json:"ai_feedback"`
	AIFeedbackGeneratedAt *time.Time `json:"ai_feedback_generated_at"`
	CalendarEventID       *string    `json:"calendar_event_id"`
	Active                bool       `json:"active"`
	Version               int        `json:"version"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// PresentSession presents a study session
func PresentSession(s database.StudySession) Session {
	return Session{
		ID:                    s.ID,
		UserID:                s.UserID,
		SessionType:           s.SessionType,
		StartTime:             FormatTS(s.StartTime),
		EndTime:               FormatTSPtr(s.EndTime),
		DurationMinutes:       s.DurationMinutes,
		TargetDurationMinutes: s.TargetDurationMinutes,
		SessionNotes:          s.SessionNotes,
		MoodRating:            s.MoodRating,
		ProductivityRating:    s.ProductivityRating,
		AIFeedback:            s.AIFeedback,
		AIFeedbackGeneratedAt: FormatTSPtr(s.AIFeedbackGeneratedAt),
		CalendarEventID:       s.CalendarEventID,
		Active:                s.IsActive(),
		Version:               s.Version,
		CreatedAt:             FormatTS(s.CreatedAt),
		UpdatedAt:             FormatTS(s.UpdatedAt),
	}
}

// PresentSessions presents study sessions
func PresentSessions(sessions []database.StudySession) []Session {
	ret := []Session{}

	for _, s := range sessions {
		p := PresentSession(s)
		ret = append(ret, p)
	}

	return ret
}

// Tag is a result of PresentTags
type Tag struct {
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

// PresentTags presents session tags
func PresentTags(tags []database.SessionTag) []Tag {
	ret := []Tag{}

	for _, t := range tags {
		ret = append(ret, Tag{
			Tag:       t.Tag,
			CreatedAt: FormatTS(t.CreatedAt),
		})
	}

	return ret
}
