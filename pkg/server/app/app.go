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
	"github.com/pkg/errors"
	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/permissions"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyGuard is an error for missing authorization guard in the app configuration
	ErrEmptyGuard = errors.New("No authorization guard was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
)

// App is an application context
type App struct {
	// Guard is the only way to reach study sessions, tags and tasks
	Guard *permissions.Guard
	// DB is used by the identity boundary to resolve access tokens
	DB     *gorm.DB
	Clock  clock.Clock
	AppEnv string
	Port   string
	// RateLimitPerSecond is the number of requests per second accepted from
	// an IP. Zero disables rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Guard == nil {
		return ErrEmptyGuard
	}
	if a.Clock == nil {
		return ErrEmptyClock
	}

	return nil
}
