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
	"errors"
	"fmt"
)

// appError is an error returned by the app layer that callers match on
type appError string

func (e appError) Error() string {
	return string(e)
}

var (
	// ErrNotFound is returned when the referenced record does not exist or is
	// not owned by the caller. The two cases are indistinguishable.
	ErrNotFound appError = "not found"
	// ErrUnauthorized is returned when the caller has no usable identity
	ErrUnauthorized appError = "unauthorized"
	// ErrActiveSessionExists is returned when starting a session while the
	// owner already has an active one
	ErrActiveSessionExists appError = "an active study session already exists"
	// ErrStoreUnavailable matches every failure at the storage boundary
	ErrStoreUnavailable appError = "store unavailable"
)

// ValidationError is returned for malformed input
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

var (
	// ErrInvalidSessionType is returned for a session type outside the known set
	ErrInvalidSessionType ValidationError = "session type must be one of pomodoro, countdown, stopwatch or custom"
	// ErrInvalidRating is returned for a mood or productivity rating out of range
	ErrInvalidRating ValidationError = "rating must be between 1 and 5"
	// ErrInvalidTargetDuration is returned for a non-positive target duration
	ErrInvalidTargetDuration ValidationError = "target duration must be positive"
	// ErrEndBeforeStart is returned when a session would end at or before its start
	ErrEndBeforeStart ValidationError = "end time must be after start time"
	// ErrStartInFuture is returned when an active session would start after
	// the current time, which would leave it impossible to end
	ErrStartInFuture ValidationError = "an active session cannot start in the future"
	// ErrEmptyTag is returned for a tag that is empty after normalization
	ErrEmptyTag ValidationError = "tag must not be empty"
	// ErrEmptyTitle is returned for a task without a title
	ErrEmptyTitle ValidationError = "title is required"
	// ErrInvalidPriority is returned for a task priority out of range
	ErrInvalidPriority ValidationError = "priority must be between 0 and 3"
	// ErrInvalidDateRange is returned when a range starts after it ends
	ErrInvalidDateRange ValidationError = "start date must not be after end date"
	// ErrInvalidOrder is returned for an unknown sort order
	ErrInvalidOrder ValidationError = "order must be asc or desc"
)

// IsValidation reports whether err was caused by malformed input
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a state transition conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrActiveSessionExists)
}

// storeError wraps a failure at the storage boundary. It matches
// ErrStoreUnavailable and keeps the underlying error reachable so that
// context cancellation and deadlines remain visible to callers.
type storeError struct {
	op  string
	err error
}

func (e storeError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e storeError) Unwrap() error {
	return e.err
}

func (e storeError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeErr(err error, op string) error {
	return storeError{op: op, err: err}
}

// classify returns err unchanged if it already belongs to the taxonomy, and
// treats anything else as a storage failure
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var ae appError
	var ve ValidationError
	var se storeError
	if errors.As(err, &ae) || errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}

	return storeErr(err, op)
}
