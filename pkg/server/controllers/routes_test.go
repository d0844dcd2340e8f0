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
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/assert"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/testutils"
)

func TestHealth(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := testutils.MakeReq(server.URL, "GET", "/health", "")
	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")
}

func TestNotFound(t *testing.T) {
	testCases := []struct {
		path string
	}{
		{path: "/api/v2/sessions"},
		{path: "/api/v1/unknown"},
		{path: "/foo"},
	}

	server, a, _ := newTestServer(t)

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", tc.path, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

			assert.Equal(t, res.StatusCode, http.StatusNotFound, "status code mismatch")
		})
	}
}

func TestRequiresAuthentication(t *testing.T) {
	server, _, _ := newTestServer(t)
	r := strings.NewReplacer("{id}", "some-id", "{tag}", "math")

	for _, route := range NewAPIRoutes(&app.App{}, New(&app.App{})) {
		t.Run(fmt.Sprintf("%s %s", route.Method, route.Pattern), func(t *testing.T) {
			path := "/api" + r.Replace(route.Pattern)
			req := testutils.MakeReq(server.URL, route.Method, path, "")
			res := testutils.HTTPDo(t, req)

			assert.Equal(t, res.StatusCode, http.StatusUnauthorized, "status code mismatch")
		})
	}
}

func TestMalformedID(t *testing.T) {
	server, a, _ := newTestServer(t)
	r := strings.NewReplacer("{id}", "not-a-uuid", "{tag}", "math")

	for _, route := range NewAPIRoutes(&app.App{}, New(&app.App{})) {
		if !strings.Contains(route.Pattern, "{id}") {
			continue
		}

		t.Run(fmt.Sprintf("%s %s", route.Method, route.Pattern), func(t *testing.T) {
			path := "/api" + r.Replace(route.Pattern)
			req := testutils.MakeReq(server.URL, route.Method, path, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, "alice")

			assert.Equal(t, res.StatusCode, http.StatusNotFound, "status code mismatch")
		})
	}
}

func TestGetStatusCode(t *testing.T) {
	testCases := []struct {
		err      error
		expected int
	}{
		{err: app.ErrInvalidRating, expected: http.StatusBadRequest},
		{err: badRequestError{err: errors.New("bad json")}, expected: http.StatusBadRequest},
		{err: app.ErrUnauthorized, expected: http.StatusUnauthorized},
		{err: app.ErrNotFound, expected: http.StatusNotFound},
		{err: errors.Wrap(app.ErrNotFound, "finding"), expected: http.StatusNotFound},
		{err: app.ErrActiveSessionExists, expected: http.StatusConflict},
		{err: app.ErrStoreUnavailable, expected: http.StatusServiceUnavailable},
		{err: context.Canceled, expected: http.StatusInternalServerError},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			assert.Equal(t, getStatusCode(tc.err), tc.expected, "status code mismatch")
		})
	}
}

func TestNewRouter_invalidApp(t *testing.T) {
	_, err := NewRouter(&app.App{}, RouteConfig{})
	assert.NotEqual(t, err, nil, "an app without a store should be rejected")
}
