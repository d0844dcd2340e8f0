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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func checkEqual(a interface{}, b interface{}, message string) (bool, string) {
	if a == b {
		return true, ""
	}

	var m string
	if len(message) == 0 {
		m = "%#v != %#v"
	} else {
		m = message + ". Actual: %#v. Expected: %#v"
	}

	return false, errors.Errorf(m, a, b).Error()
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a interface{}, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if !ok {
		t.Error(m)
	}
}

// Equalf fails a test if the actual does not match the expected
func Equalf(t *testing.T, a interface{}, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if !ok {
		t.Fatal(m)
	}
}

// NotEqual fails a test if the actual matches the expected
func NotEqual(t *testing.T, a interface{}, b interface{}, message string) {
	t.Helper()

	ok, m := checkEqual(a, b, message)
	if ok {
		t.Error(m)
	}
}

// DeepEqual fails a test if the actual does not deeply equal the expected
func DeepEqual(t *testing.T, a interface{}, b interface{}, message string) {
	t.Helper()

	if cmp.Equal(a, b) {
		return
	}

	if len(message) == 0 {
		t.Errorf("%#v != %#v", a, b)
	} else {
		t.Errorf("%s.\n(-actual +expected):\n%s", message, cmp.Diff(a, b))
	}
}

// TimeEqual fails a test if the two times do not denote the same instant
func TimeEqual(t *testing.T, a interface{ UnixNano() int64 }, b interface{ UnixNano() int64 }, message string) {
	t.Helper()

	if a.UnixNano() != b.UnixNano() {
		t.Errorf("%s. Actual: %v. Expected: %v", message, a, b)
	}
}

// Nil fails a test if the given value is not nil
func Nil(t *testing.T, a interface{}, message string) {
	t.Helper()

	if a == nil {
		return
	}

	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		if v.IsNil() {
			return
		}
	}

	t.Errorf("%s. Expected nil, got %#v", message, a)
}

// EqualJSON asserts that two JSON strings are equal
func EqualJSON(t *testing.T, a, b, message string) {
	t.Helper()

	var o1 interface{}
	var o2 interface{}

	if err := json.Unmarshal([]byte(a), &o1); err != nil {
		t.Fatal(errors.Wrap(err, "unmarshalling the actual value"))
	}
	if err := json.Unmarshal([]byte(b), &o2); err != nil {
		t.Fatal(errors.Wrap(err, "unmarshalling the expected value"))
	}

	if !reflect.DeepEqual(o1, o2) {
		t.Errorf("%s.\nActual: %s.\nExpected: %s", message, a, b)
	}
}

// StatusCodeEquals asserts that the response status code equals the expected
// status code. On mismatch the response body is printed to help debugging.
func StatusCodeEquals(t *testing.T, res *http.Response, expected int, message string) {
	t.Helper()

	if res.StatusCode == expected {
		return
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading body"))
	}

	t.Errorf("status code mismatch. %s: got %v want %v. Response body: %s", message, res.StatusCode, expected, string(body))
}
