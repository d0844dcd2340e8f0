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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/assert"
)

func TestGetCredential(t *testing.T) {
	testCases := []struct {
		authHeaderStr string
		expected      string
		expectedErr   error
	}{
		{
			authHeaderStr: "Bearer foo",
			expected:      "foo",
		},
		{
			authHeaderStr: "bearer foo",
			expected:      "foo",
		},
		{
			authHeaderStr: "",
			expected:      "",
		},
		{
			authHeaderStr: "foo",
			expectedErr:   ErrMalformedAuthorization,
		},
		{
			authHeaderStr: "Basic foo",
			expectedErr:   ErrMalformedAuthorization,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.authHeaderStr, func(t *testing.T) {
			r, err := http.NewRequest("GET", "/", nil)
			if err != nil {
				t.Fatal(errors.Wrap(err, "constructing request"))
			}
			if tc.authHeaderStr != "" {
				r.Header.Set("Authorization", tc.authHeaderStr)
			}

			got, err := getCredential(r)

			assert.Equal(t, err, tc.expectedErr, "error mismatch")
			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func TestDoError(t *testing.T) {
	w := httptest.NewRecorder()

	DoError(w, "finding session", errors.New("connection refused"), http.StatusServiceUnavailable)

	assert.Equal(t, w.Code, http.StatusServiceUnavailable, "status code mismatch")
	assert.EqualJSON(t, w.Body.String(), `{"error":"Service Unavailable"}`, "body mismatch")
}
