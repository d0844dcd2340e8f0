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

	"github.com/gorilla/mux"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/context"
	"github.com/studylog/studylog/pkg/server/presenters"
)

// NewTags creates a new Tags controller
func NewTags(app *app.App) *Tags {
	return &Tags{
		app: app,
	}
}

// Tags is a session tag controller
type Tags struct {
	app *app.App
}

type addTagsPayload struct {
	Tags []string `json:"tags" schema:"tags"`
}

// Create handles POST /sessions/{id}/tags
func (t *Tags) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params addTagsPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing request payload")
		return
	}

	tags, err := t.app.AddTags(r.Context(), context.Principal(r.Context()), id, params.Tags)
	if err != nil {
		handleJSONError(w, err, "adding tags")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentTags(tags))
}

// Index handles GET /sessions/{id}/tags
func (t *Tags) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tags, err := t.app.ListTags(r.Context(), context.Principal(r.Context()), id)
	if err != nil {
		handleJSONError(w, err, "listing tags")
		return
	}

	respondJSON(w, http.StatusOK, tags)
}

// Delete handles DELETE /sessions/{id}/tags/{tag}
func (t *Tags) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := t.app.RemoveTag(r.Context(), context.Principal(r.Context()), id, mux.Vars(r)["tag"]); err != nil {
		handleJSONError(w, err, "removing tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Sessions handles GET /tags/{tag}/sessions
func (t *Tags) Sessions(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]

	sessions, err := t.app.SessionsByTag(r.Context(), context.Principal(r.Context()), tag)
	if err != nil {
		handleJSONError(w, err, "finding sessions by tag")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentSessions(sessions))
}

type popularTagsQuery struct {
	Limit int `schema:"limit"`
}

// defaultPopularTagsLimit is the number of tags returned when the request
// does not give a limit
const defaultPopularTagsLimit = 10

// Popular handles GET /tags
func (t *Tags) Popular(w http.ResponseWriter, r *http.Request) {
	var q popularTagsQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	limit := q.Limit
	if limit < 1 {
		limit = defaultPopularTagsLimit
	}

	tags, err := t.app.PopularTags(r.Context(), context.Principal(r.Context()), limit)
	if err != nil {
		handleJSONError(w, err, "finding popular tags")
		return
	}

	respondJSON(w, http.StatusOK, tags)
}
