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
	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/server/app"
	mw "github.com/studylog/studylog/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	Limiter     *mw.RateLimiter
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return mw.Auth(a.DB, a.Clock, h)
	}

	return []Route{
		// v1
		{"POST", "/v1/sessions", auth(c.Sessions.Create), true},
		{"GET", "/v1/sessions", auth(c.Sessions.Index), true},
		{"GET", "/v1/sessions/active", auth(c.Sessions.Active), true},
		{"GET", "/v1/sessions/{id}", auth(c.Sessions.Show), true},
		{"PATCH", "/v1/sessions/{id}", auth(c.Sessions.Update), true},
		{"DELETE", "/v1/sessions/{id}", auth(c.Sessions.Delete), true},
		{"POST", "/v1/sessions/{id}/end", auth(c.Sessions.End), true},
		{"GET", "/v1/sessions/{id}/tags", auth(c.Tags.Index), true},
		{"POST", "/v1/sessions/{id}/tags", auth(c.Tags.Create), true},
		{"DELETE", "/v1/sessions/{id}/tags/{tag}", auth(c.Tags.Delete), true},
		{"GET", "/v1/tags", auth(c.Tags.Popular), true},
		{"GET", "/v1/tags/{tag}/sessions", auth(c.Tags.Sessions), true},
		{"GET", "/v1/stats", auth(c.Stats.Index), true},
		{"GET", "/v1/stats/daily", auth(c.Stats.Daily), true},
		{"GET", "/v1/stats/streak", auth(c.Stats.Streak), true},
		{"GET", "/v1/stats/completion-rate", auth(c.Stats.CompletionRate), true},
		{"POST", "/v1/tasks", auth(c.Tasks.Create), true},
		{"GET", "/v1/tasks", auth(c.Tasks.Index), true},
		{"GET", "/v1/tasks/{id}", auth(c.Tasks.Show), true},
		{"DELETE", "/v1/tasks/{id}", auth(c.Tasks.Delete), true},
		{"PATCH", "/v1/tasks/{id}/completion", auth(c.Tasks.Complete), true},
		{"PATCH", "/v1/tasks/{id}/session", auth(c.Tasks.Link), true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, rl *mw.RateLimiter, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, rl, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, rc.Limiter, rc.APIRoutes)

	router.Handle("/health", rc.Limiter.ApplyLimit(rc.Controllers.Health.Index, true)).Methods("GET")

	// catch-all
	router.NotFoundHandler = http.HandlerFunc(mw.NotFound)

	return mw.Global(router), nil
}
