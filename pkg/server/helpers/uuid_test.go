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

package helpers

import (
	"testing"

	"github.com/studylog/studylog/pkg/assert"
)

func TestGenUUID(t *testing.T) {
	a, err := GenUUID()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenUUID()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, ValidateUUID(a), true, "generated uuid should be valid")
	assert.NotEqual(t, a, b, "uuids should be unique")
}

func TestValidateUUID(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"0f5f0054-d23f-4be1-b5fb-57673109e9cb", true},
		{"not-a-uuid", false},
		{"", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, ValidateUUID(tc.input), tc.expected, "result mismatch for "+tc.input)
	}
}
