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
	"sort"
	"time"

	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/permissions"
)

// UserStats is the aggregate over a principal's ended study sessions. The
// pointer fields are nil when no session contributes to them.
type UserStats struct {
	TotalSessions   int        `json:"total_sessions" yaml:"total_sessions"`
	TotalMinutes    int        `json:"total_minutes" yaml:"total_minutes"`
	AvgDuration     *float64   `json:"avg_duration" yaml:"avg_duration"`
	AvgProductivity *float64   `json:"avg_productivity" yaml:"avg_productivity"`
	AvgMood         *float64   `json:"avg_mood" yaml:"avg_mood"`
	LastSessionAt   *time.Time `json:"last_session_at" yaml:"last_session_at"`
	SessionsLast7d  int        `json:"sessions_last_7d" yaml:"sessions_last_7d"`
	SessionsLast30d int        `json:"sessions_last_30d" yaml:"sessions_last_30d"`
}

// DailySummary is the aggregate of the ended sessions started on a UTC date
type DailySummary struct {
	Date            time.Time `json:"date"`
	SessionsCount   int       `json:"sessions_count"`
	TotalMinutes    int       `json:"total_minutes"`
	AvgProductivity *float64  `json:"avg_productivity"`
	AvgMood         *float64  `json:"avg_mood"`
	SessionTypes    []string  `json:"session_types"`
}

// DailySummaryParams is the params for the daily summary
type DailySummaryParams struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// ratingSum accumulates an optional rating
type ratingSum struct {
	sum float64
	n   int
}

func (r *ratingSum) add(v *int) {
	if v == nil {
		return
	}

	r.sum += float64(*v)
	r.n++
}

func (r ratingSum) average() *float64 {
	return average(r.sum, r.n)
}

func minutesOf(s database.StudySession) int {
	if s.DurationMinutes == nil {
		return 0
	}

	return *s.DurationMinutes
}

// computeUserStats aggregates ended sessions as of now
func computeUserStats(sessions []database.StudySession, now time.Time) UserStats {
	var ret UserStats
	var durations, productivity, mood ratingSum

	weekAgo := now.Add(-7 * day)
	monthAgo := now.Add(-30 * day)

	for _, s := range sessions {
		ret.TotalSessions++
		ret.TotalMinutes += minutesOf(s)

		durations.add(s.DurationMinutes)
		productivity.add(s.ProductivityRating)
		mood.add(s.MoodRating)

		if ret.LastSessionAt == nil || s.StartTime.After(*ret.LastSessionAt) {
			start := s.StartTime
			ret.LastSessionAt = &start
		}
		if !s.StartTime.Before(weekAgo) {
			ret.SessionsLast7d++
		}
		if !s.StartTime.Before(monthAgo) {
			ret.SessionsLast30d++
		}
	}

	ret.AvgDuration = durations.average()
	ret.AvgProductivity = productivity.average()
	ret.AvgMood = mood.average()

	return ret
}

// summarizeDays groups ended sessions by the UTC date of their start time,
// most recent date first
func summarizeDays(sessions []database.StudySession) []DailySummary {
	type acc struct {
		summary      DailySummary
		productivity ratingSum
		mood         ratingSum
		types        map[string]bool
	}

	days := map[time.Time]*acc{}
	for _, s := range sessions {
		date := clock.Date(s.StartTime)

		d, ok := days[date]
		if !ok {
			d = &acc{
				summary: DailySummary{Date: date},
				types:   map[string]bool{},
			}
			days[date] = d
		}

		d.summary.SessionsCount++
		d.summary.TotalMinutes += minutesOf(s)
		d.productivity.add(s.ProductivityRating)
		d.mood.add(s.MoodRating)
		d.types[s.SessionType] = true
	}

	ret := make([]DailySummary, 0, len(days))
	for _, d := range days {
		summary := d.summary
		summary.AvgProductivity = d.productivity.average()
		summary.AvgMood = d.mood.average()

		summary.SessionTypes = make([]string, 0, len(d.types))
		for t := range d.types {
			summary.SessionTypes = append(summary.SessionTypes, t)
		}
		sort.Strings(summary.SessionTypes)

		ret = append(ret, summary)
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Date.After(ret[j].Date)
	})

	return ret
}

// countStreak counts the consecutive dates with a session walking back from
// today. A day without a session ends the streak, including today.
func countStreak(dates map[time.Time]bool, today time.Time) int {
	streak := 0
	for d := today; dates[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}

	return streak
}

// completionRate returns the percentage of completed tasks rounded to two
// decimals
func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}

	return round2(float64(completed) / float64(total) * 100)
}

func (a *App) endedSessions(s permissions.Scope, lower, upper *time.Time) ([]database.StudySession, error) {
	ret := []database.StudySession{}

	conn := whereStartBetween(s.Sessions(), lower, upper).Where("end_time IS NOT NULL")
	if err := conn.Order("start_time DESC").Find(&ret).Error; err != nil {
		return nil, storeErr(err, "finding ended study sessions")
	}

	return ret, nil
}

// UserStats returns the aggregate statistics of the principal's ended
// sessions
func (a *App) UserStats(ctx context.Context, p permissions.Principal) (UserStats, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return UserStats{}, err
	}

	sessions, err := a.endedSessions(s, nil, nil)
	if err != nil {
		return UserStats{}, err
	}

	return computeUserStats(sessions, a.Clock.Now()), nil
}

// DailySummary returns the per day aggregates of the principal's ended
// sessions within the inclusive date range
func (a *App) DailySummary(ctx context.Context, p permissions.Principal, params DailySummaryParams) ([]DailySummary, error) {
	lower, upper, err := dateRange(params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	s, err := a.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	sessions, err := a.endedSessions(s, lower, upper)
	if err != nil {
		return nil, err
	}

	return summarizeDays(sessions), nil
}

// streakWindow is the number of days StudyStreak reads at a time
const streakWindow = 32

// sessionDates adds the dates of the ended sessions that start in
// [lower, upper) to dates
func (a *App) sessionDates(s permissions.Scope, lower, upper time.Time, dates map[time.Time]bool) error {
	var starts []database.StudySession

	conn := whereStartBetween(s.Sessions(), &lower, &upper).Where("end_time IS NOT NULL")
	if err := conn.Select("start_time").Find(&starts).Error; err != nil {
		return storeErr(err, "finding study session dates")
	}

	for _, session := range starts {
		dates[clock.Date(session.StartTime)] = true
	}

	return nil
}

// StudyStreak returns the number of consecutive days, ending today, on which
// the principal has an ended session. History is read backwards in windows
// that double in size while the streak still covers all of them.
func (a *App) StudyStreak(ctx context.Context, p permissions.Principal) (int, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return 0, err
	}

	today := clock.Today(a.Clock)
	upper := today.Add(day)
	dates := map[time.Time]bool{}

	for days := streakWindow; ; days *= 2 {
		lower := today.AddDate(0, 0, 1-days)
		if err := a.sessionDates(s, lower, upper, dates); err != nil {
			return 0, err
		}

		streak := countStreak(dates, today)
		if streak < days {
			return streak, nil
		}

		upper = lower
	}
}

// TaskCompletionRate returns the percentage of the principal's tasks that
// are completed
func (a *App) TaskCompletionRate(ctx context.Context, p permissions.Principal) (float64, error) {
	s, err := a.scope(ctx, p)
	if err != nil {
		return 0, err
	}

	var total, completed int64
	if err := s.Tasks().Count(&total).Error; err != nil {
		return 0, storeErr(err, "counting tasks")
	}
	if err := s.Tasks().Where("tasks.is_completed = ?", true).Count(&completed).Error; err != nil {
		return 0, storeErr(err, "counting completed tasks")
	}

	return completionRate(completed, total), nil
}
