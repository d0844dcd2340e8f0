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

// Task is a result of PresentTask
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	SessionID   *string    `json:"session_id"`
	OrderIndex  int        `json:"order_index"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PresentTask presents a task
func PresentTask(t database.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CompletedAt: FormatTSPtr(t.CompletedAt),
		SessionID:   t.SessionID,
		OrderIndex:  t.OrderIndex,
		Priority:    t.Priority,
		DueDate:     FormatTSPtr(t.DueDate),
		CreatedAt:   FormatTS(t.CreatedAt),
		UpdatedAt:   FormatTS(t.UpdatedAt),
	}
}

// PresentTasks presents tasks
func PresentTasks(tasks []database.Task) []Task {
	ret := []Task{}

	for _, t := range tasks {
		ret = append(ret, PresentTask(t))
	}

	return ret
}
