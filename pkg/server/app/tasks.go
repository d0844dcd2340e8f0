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

// CreateTaskParams is the params for creating a task
type CreateTaskParams struct {
	Title       string
	Description *string
	Priority    int
	OrderIndex  int
	DueDate     *time.Time
	SessionID   *string
}

// ListTasksParams is the params for listing tasks
type ListTasksParams struct {
	SessionID *string
	Completed *bool
}

func validatePriority(priority int) error {
	if priority < database.MinPriority || priority > database.MaxPriority {
		return ErrInvalidPriority
	}

	return nil
}

func findTask(s permissions.Scope, id string) (database.Task, error) {
	var task database.Task

	err := s.Tasks().Where("tasks.id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return task, ErrNotFound
	} else if err != nil {
		return task, storeErr(err, "finding task")
	}

	return task, nil
}

// CreateTask creates a task for the principal, optionally linked to one of
// its study sessions
func (a *App) CreateTask(ctx context.Context, p permissions.Principal, params CreateTaskParams) (database.Task, error) {
	ownerID, err := ownerOf(p)
	if err != nil {
		return database.Task{}, err
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return database.Task{}, ErrEmptyTitle
	}
	if err := validatePriority(params.Priority); err != nil {
		return database.Task{}, err
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return database.Task{}, err
	}

	if params.SessionID != nil {
		if _, err := findSession(s, *params.SessionID); err != nil {
			return database.Task{}, err
		}
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return database.Task{}, err
	}

	task := database.Task{
		Model:       database.Model{ID: id},
		UserID:      ownerID,
		Title:       title,
		Description: params.Description,
		Priority:    params.Priority,
		OrderIndex:  params.OrderIndex,
		SessionID:   params.SessionID,
	}
	if params.DueDate != nil {
		due := normalizeTime(*params.DueDate)
		task.DueDate = &due
	}

	if err := s.Create(ownerID, &task); err != nil {
		return database.Task{}, storeErr(err, "inserting task")
	}

	log.WithFields(log.Fields{
		"task_id": task.ID,
	}).Debug("task created")

	return task, nil
}

// GetTask returns the task with the given id
func (a *App) GetTask(ctx context.Context, p permissions.Principal, id string) (database.Task, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return database.Task{}, err
	}

	return findTask(s, id)
}

// ListTasks returns the principal's tasks in their display order
func (a *App) ListTasks(ctx context.Context, p permissions.Principal, params ListTasksParams) ([]database.Task, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	conn := s.Tasks()
	if params.SessionID != nil {
		conn = conn.Where("tasks.session_id = ?", *params.SessionID)
	}
	if params.Completed != nil {
		conn = conn.Where("tasks.is_completed = ?", *params.Completed)
	}

	ret := []database.Task{}
	if err := conn.Order("order_index ASC, created_at ASC, id ASC").Find(&ret).Error; err != nil {
		return nil, storeErr(err, "finding tasks")
	}

	return ret, nil
}

// SetTaskCompleted marks a task as completed or not. The completion time is
// set when a task becomes completed and cleared when it is reopened.
func (a *App) SetTaskCompleted(ctx context.Context, p permissions.Principal, id string, completed bool) (database.Task, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return database.Task{}, err
	}

	task, err := findTask(s, id)
	if err != nil {
		return database.Task{}, err
	}
	if task.IsCompleted == completed {
		return task, nil
	}

	var completedAt *time.Time
	if completed {
		now := normalizeTime(a.Clock.Now())
		completedAt = &now
	}

	updates := map[string]interface{}{
		"is_completed": completed,
		"completed_at": completedAt,
	}
	if err := s.Tasks().Where("tasks.id = ?", id).Updates(updates).Error; err != nil {
		return database.Task{}, storeErr(err, "updating task completion")
	}

	return findTask(s, id)
}

// LinkTask links a task to one of the principal's study sessions, or unlinks
// it when sessionID is nil
func (a *App) LinkTask(ctx context.Context, p permissions.Principal, taskID string, sessionID *string) (database.Task, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return database.Task{}, err
	}

	if _, err := findTask(s, taskID); err != nil {
		return database.Task{}, err
	}
	if sessionID != nil {
		if _, err := findSession(s, *sessionID); err != nil {
			return database.Task{}, err
		}
	}

	if err := s.Tasks().Where("tasks.id = ?", taskID).Update("session_id", sessionID).Error; err != nil {
		return database.Task{}, storeErr(err, "linking task")
	}

	return findTask(s, taskID)
}

// DeleteTask deletes a task
func (a *App) DeleteTask(ctx context.Context, p permissions.Principal, id string) error {
	s, err := a.scope(ctx, p)
	if err != nil {
		return err
	}

	if _, err := findTask(s, id); err != nil {
		return err
	}

	if err := s.Tasks().Where("tasks.id = ?", id).Delete(&database.Task{}).Error; err != nil {
		return storeErr(err, "deleting task")
	}

	return nil
}
