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

package presenters

import (
	"github.com/studylog/studylog/pkg/server/app"
)

// DailySummary is a result of PresentDailySummaries. The date is rendered as
// a calendar date.
type DailySummary struct {
	Date            string   `json:"date" yaml:"date"`
	SessionsCount   int      `json:"sessions_count" yaml:"sessions_count"`
	TotalMinutes    int      `json:"total_minutes" yaml:"total_minutes"`
	AvgProductivity *float64 `json:"avg_productivity" yaml:"avg_productivity"`
	AvgMood         *float64 `json:"avg_mood" yaml:"avg_mood"`
	SessionTypes    []string `json:"session_types" yaml:"session_types"`
}

// PresentDailySummaries presents daily summaries
func PresentDailySummaries(days []app.DailySummary) []DailySummary {
	ret := []DailySummary{}

	for _, d := range days {
		ret = append(ret, DailySummary{
			Date:            d.Date.UTC().Format("2006-01-02"),
			SessionsCount:   d.SessionsCount,
			TotalMinutes:    d.TotalMinutes,
			AvgProductivity: d.AvgProductivity,
			AvgMood:         d.AvgMood,
			SessionTypes:    d.SessionTypes,
		})
	}

	return ret
}

// Overview is the combined analytics of a user
type Overview struct {
	Stats              app.UserStats `json:"stats" yaml:"stats"`
	Streak             int           `json:"streak" yaml:"streak"`
	TaskCompletionRate float64       `json:"task_completion_rate" yaml:"task_completion_rate"`
}

// PresentOverview presents the combined analytics of a user
func PresentOverview(stats app.UserStats, streak int, rate float64) Overview {
	stats.LastSessionAt = FormatTSPtr(stats.LastSessionAt)

	return Overview{
		Stats:              stats,
		Streak:             streak,
		TaskCompletionRate: rate,
	}
}
