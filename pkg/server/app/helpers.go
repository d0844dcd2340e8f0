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
	"context"
	"math"
	"time"

	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/permissions"
	"gorm.io/gorm"
)

const day = 24 * time.Hour

// scope returns the caller's view of the store
func (a *App) scope(ctx context.Context, p permissions.Principal) (permissions.Scope, error) {
	s, err := a.Guard.Scope(ctx, p)
	if err != nil {
		return permissions.Scope{}, ErrUnauthorized
	}

	return s, nil
}

// ownerOf returns the owner id new records of the principal are written with
func ownerOf(p permissions.Principal) (string, error) {
	if p.UserID == "" {
		return "", ErrUnauthorized
	}

	return p.UserID, nil
}

// normalizeTime converts t to UTC at the microsecond precision the store keeps
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// durationMinutes returns the whole minutes between start and end
func durationMinutes(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// round2 rounds x to two decimal places
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// average returns the rounded mean of the given values, or nil for no values
func average(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}

	avg := round2(sum / float64(n))
	return &avg
}

// dateRange returns the half-open interval of start times covered by the
// inclusive calendar date range [startDate, endDate]. Nil bounds are open.
func dateRange(startDate, endDate *time.Time) (*time.Time, *time.Time, error) {
	var lower, upper *time.Time

	if startDate != nil {
		l := clock.Date(*startDate)
		lower = &l
	}
	if endDate != nil {
		u := clock.Date(*endDate).Add(day)
		upper = &u
	}
	if lower != nil && upper != nil && !lower.Before(*upper) {
		return nil, nil, ErrInvalidDateRange
	}

	return lower, upper, nil
}

func whereStartBetween(conn *gorm.DB, lower, upper *time.Time) *gorm.DB {
	if lower != nil {
		conn = conn.Where("study_sessions.start_time >= ?", *lower)
	}
	if upper != nil {
		conn = conn.Where("study_sessions.start_time < ?", *upper)
	}

	return conn
}

func paginate(conn *gorm.DB, page, perPage int) *gorm.DB {
	if perPage <= 0 {
		return conn
	}

	if page > 0 {
		offset := perPage * (page - 1)
		conn = conn.Offset(offset)
	}

	return conn.Limit(perPage)
}
