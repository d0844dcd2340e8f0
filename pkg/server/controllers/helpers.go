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
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	pkgErrors "github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/helpers"
	"github.com/studylog/studylog/pkg/server/log"
	mw "github.com/studylog/studylog/pkg/server/middleware"
)

// badRequestError is returned for a request that cannot be decoded
type badRequestError struct {
	err error
}

func (e badRequestError) Error() string {
	return e.err.Error()
}

func (e badRequestError) Unwrap() error {
	return e.err
}

// dateLayout is the layout of calendar dates in query strings
const dateLayout = "2006-01-02"

// parseTime parses a calendar date or an RFC3339 timestamp
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, s)
}

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := parseTime(s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(t)
	})

	return d
}

var decoder = newDecoder()

// parseQuery decodes the query string of the request into dst
func parseQuery(r *http.Request, dst interface{}) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return badRequestError{err: pkgErrors.Wrap(err, "decoding query")}
	}

	return nil
}

// parseRequestData decodes the body of the request into dst, either as a
// form or as JSON depending on the content type
func parseRequestData(r *http.Request, dst interface{}) error {
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return badRequestError{err: pkgErrors.Wrap(err, "parsing form")}
		}
		if err := decoder.Decode(dst, r.PostForm); err != nil {
			return badRequestError{err: pkgErrors.Wrap(err, "decoding form")}
		}

		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequestError{err: pkgErrors.Wrap(err, "decoding payload")}
	}

	return nil
}

// pathID returns the id path variable of the request. A malformed id is
// answered with 404 because no record can have it.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if !helpers.ValidateUUID(id) {
		handleJSONError(w, app.ErrNotFound, "parsing id")
		return "", false
	}

	return id, true
}

// getStatusCode maps an error to the status code of the response
func getStatusCode(err error) int {
	var bre badRequestError

	switch {
	case errors.As(err, &bre), app.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	case app.IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, app.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleJSONError responds with the status code the error maps to. Server
// side failures are logged and their details withheld.
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode := getStatusCode(err)

	if statusCode >= http.StatusInternalServerError {
		mw.DoError(w, msg, err, statusCode)
		return
	}

	mw.RespondError(w, statusCode, err.Error())
}

// respondJSON responds with the JSON encoding of payload
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// optionalTime returns nil for the zero time
func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
