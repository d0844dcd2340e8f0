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

package database

const (
	// SessionTypePomodoro is a fixed-length focus interval
	SessionTypePomodoro = "pomodoro"
	// SessionTypeCountdown counts down from a target duration
	SessionTypeCountdown = "countdown"
	// SessionTypeStopwatch counts up until stopped
	SessionTypeStopwatch = "stopwatch"
	// SessionTypeCustom is any other kind of session
	SessionTypeCustom = "custom"
)

// SessionTypes lists every accepted session type
var SessionTypes = []string{
	SessionTypePomodoro,
	SessionTypeCountdown,
	SessionTypeStopwatch,
	SessionTypeCustom,
}

// IsValidSessionType reports whether t is one of SessionTypes
func IsValidSessionType(t string) bool {
	for _, st := range SessionTypes {
		if st == t {
			return true
		}
	}

	return false
}

const (
	// MinRating is the lowest mood or productivity rating
	MinRating = 1
	// MaxRating is the highest mood or productivity rating
	MaxRating = 5

	// MinPriority is the lowest task priority
	MinPriority = 0
	// MaxPriority is the highest task priority
	MaxPriority = 3
)
