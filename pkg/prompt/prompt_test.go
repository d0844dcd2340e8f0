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

package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/studylog/studylog/pkg/assert"
)

func TestConfirm(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		defaultYes bool
		expected   bool
	}{
		{name: "y", input: "y\n", expected: true},
		{name: "uppercase yes", input: "YES\n", expected: true},
		{name: "n", input: "n\n", defaultYes: true, expected: false},
		{name: "empty takes default no", input: "\n", expected: false},
		{name: "empty takes default yes", input: "  \n", defaultYes: true, expected: true},
		{name: "unrecognized is no", input: "maybe\n", defaultYes: true, expected: false},
		{name: "answer without newline", input: "y", expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer

			result, err := Confirm(strings.NewReader(tc.input), &out, "Revoke?", tc.defaultYes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			assert.Equal(t, result, tc.expected, "answer mismatch")
		})
	}
}

func TestConfirm_question(t *testing.T) {
	var out bytes.Buffer
	if _, err := Confirm(strings.NewReader("n\n"), &out, "Revoke?", false); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, out.String(), "Revoke? (y/N) ", "question mismatch")

	out.Reset()
	if _, err := Confirm(strings.NewReader("n\n"), &out, "Continue?", true); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, out.String(), "Continue? (Y/n) ", "question mismatch")
}

func TestConfirm_noInput(t *testing.T) {
	var out bytes.Buffer

	_, err := Confirm(strings.NewReader(""), &out, "Revoke?", false)
	assert.NotEqual(t, err, nil, "an empty reader should be an error")
}
