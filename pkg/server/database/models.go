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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// StudySession is a model for a study session. A session without an end time
// is active.
type StudySession struct {
	Model
	UserID                string     `json:"user_id" gorm:"type:text;not null;index"`
	SessionType           string     `json:"session_type" gorm:"type:text;not null"`
	StartTime             time.Time  `json:"start_time" gorm:"not null"`
	EndTime               *time.Time `json:"end_time"`
	DurationMinutes       *int       `json:"duration_minutes"`
	TargetDurationMinutes *int       `json:"target_duration_minutes"`
	SessionNotes          *string    `json:"session_notes" gorm:"type:text"`
	MoodRating            *int       `json:"mood_rating" gorm:"check:chk_study_sessions_mood_rating,mood_rating >= 1 AND mood_rating <= 5"`
	ProductivityRating    *int       `json:"productivity_rating" gorm:"check:chk_study_sessions_productivity_rating,productivity_rating >= 1 AND productivity_rating <= 5"`
	AIFeedback            *string    `json:"ai_feedback" gorm:"column:ai_feedback;type:text"`
	AIFeedbackGeneratedAt *time.Time `json:"ai_feedback_generated_at" gorm:"column:ai_feedback_generated_at"`
	CalendarEventID       *string    `json:"calendar_event_id" gorm:"type:text"`
	Version               int        `json:"version" gorm:"not null;default:1"`
}

// TableName overrides the table name
func (StudySession) TableName() string {
	return "study_sessions"
}

// IsActive reports whether the session has not ended yet
func (s StudySession) IsActive() bool {
	return s.EndTime == nil
}

// SessionTag is a model for a tag attached to a study session
type SessionTag struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	SessionID string    `json:"session_id" gorm:"type:text;not null;uniqueIndex:idx_session_tags_session_tag,priority:1"`
	Tag       string    `json:"tag" gorm:"type:text;not null;uniqueIndex:idx_session_tags_session_tag,priority:2;index:idx_session_tags_tag"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Task is a model for a task. A task may be linked to the study session it
// was worked on in.
type Task struct {
	Model
	UserID      string     `json:"user_id" gorm:"type:text;not null;index"`
	Title       string     `json:"title" gorm:"type:text;not null"`
	Description *string    `json:"description" gorm:"type:text"`
	IsCompleted bool       `json:"is_completed" gorm:"not null;default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	SessionID   *string    `json:"session_id" gorm:"type:text;index"`
	OrderIndex  int        `json:"order_index" gorm:"not null;default:0"`
	Priority    int        `json:"priority" gorm:"not null;default:0;check:chk_tasks_priority,priority >= 0 AND priority <= 3"`
	DueDate     *time.Time `json:"due_date"`
}

// AccessToken is a bearer credential issued by the identity service. It maps
// a request to the principal it was issued for.
type AccessToken struct {
	Model
	UserID     string     `gorm:"type:text;not null;index"`
	Key        string     `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt  time.Time  `gorm:"not null"`
	LastUsedAt *time.Time
}
