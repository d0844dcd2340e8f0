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

// NewTasks creates a new Tasks controller
func NewTasks(app *app.App) *Tasks {
	return &Tasks{
		app: app,
	}
}

// Tasks is a task controller
type Tasks struct {
	app *app.App
}

type createTaskPayload struct {
	Title       string     `json:"title" schema:"title"`
	Description *string    `json:"description" schema:"description"`
	Priority    int        `json:"priority" schema:"priority"`
	OrderIndex  int        `json:"order_index" schema:"order_index"`
	DueDate     *time.Time `json:"due_date" schema:"-"`
	SessionID   *string    `json:"session_id" schema:"session_id"`
}

// Create handles POST /tasks
func (t *Tasks) Create(w http.ResponseWriter, r *http.Request) {
	var params createTaskPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing request payload")
		return
	}

	task, err := t.app.CreateTask(r.Context(), context.Principal(r.Context()), app.CreateTaskParams{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		OrderIndex:  params.OrderIndex,
		DueDate:     params.DueDate,
		SessionID:   params.SessionID,
	})
	if err != nil {
		handleJSONError(w, err, "creating task")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentTask(task))
}

type listTasksQuery struct {
	SessionID string `schema:"session_id"`
	Completed string `schema:"completed"`
}

// Index handles GET /tasks
func (t *Tasks) Index(w http.ResponseWriter, r *http.Request) {
	var q listTasksQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	var params app.ListTasksParams
	if q.SessionID != "" {
		params.SessionID = &q.SessionID
	}
	switch q.Completed {
	case "true":
		v := true
		params.Completed = &v
	case "false":
		v := false
		params.Completed = &v
	}

	tasks, err := t.app.ListTasks(r.Context(), context.Principal(r.Context()), params)
	if err != nil {
		handleJSONError(w, err, "listing tasks")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentTasks(tasks))
}

// Show handles GET /tasks/{id}
func (t *Tasks) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := t.app.GetTask(r.Context(), context.Principal(r.Context()), id)
	if err != nil {
		handleJSONError(w, err, "getting task")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentTask(task))
}

type setCompletionPayload struct {
	Completed bool `json:"completed" schema:"completed"`
}

// Complete handles PATCH /tasks/{id}/completion
func (t *Tasks) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params setCompletionPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing request payload")
		return
	}

	task, err := t.app.SetTaskCompleted(r.Context(), context.Principal(r.Context()), id, params.Completed)
	if err != nil {
		handleJSONError(w, err, "setting task completion")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentTask(task))
}

type linkTaskPayload struct {
	SessionID *string `json:"session_id"`
}

// Link handles PATCH /tasks/{id}/session
func (t *Tasks) Link(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params linkTaskPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing request payload")
		return
	}

	task, err := t.app.LinkTask(r.Context(), context.Principal(r.Context()), id, params.SessionID)
	if err != nil {
		handleJSONError(w, err, "linking task")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentTask(task))
}

// Delete handles DELETE /tasks/{id}
func (t *Tasks) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := t.app.DeleteTask(r.Context(), context.Principal(r.Context()), id); err != nil {
		handleJSONError(w, err, "deleting task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
