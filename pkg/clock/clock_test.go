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

package clock

import (
	"testing"
	"time"
)

func TestMock(t *testing.T) {
	c := NewMock()

	now := time.Date(2025, time.March, 3, 8, 30, 0, 0, time.UTC)
	c.SetNow(now)
	if got := c.Now(); !got.Equal(now) {
		t.Errorf("expected %s, got %s", now, got)
	}

	c.Advance(25 * time.Minute)
	if got := c.Now(); !got.Equal(now.Add(25 * time.Minute)) {
		t.Errorf("expected %s, got %s", now.Add(25*time.Minute), got)
	}
}

func TestDate(t *testing.T) {
	testCases := []struct {
		input    time.Time
		expected time.Time
	}{
		{
			input:    time.Date(2025, time.January, 1, 23, 59, 59, 0, time.UTC),
			expected: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// 2025-01-02 01:00 in UTC+9 is still the 1st in UTC
			input:    time.Date(2025, time.January, 2, 1, 0, 0, 0, time.FixedZone("KST", 9*60*60)),
			expected: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		if got := Date(tc.input); !got.Equal(tc.expected) {
			t.Errorf("Date(%s): expected %s, got %s", tc.input, tc.expected, got)
		}
	}
}

func TestToday(t *testing.T) {
	c := NewMock()
	c.SetNow(time.Date(2025, time.June, 10, 18, 0, 0, 0, time.UTC))

	expected := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	if got := Today(c); !got.Equal(expected) {
		t.Errorf("expected %s, got %s", expected, got)
	}
}
