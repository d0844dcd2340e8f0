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

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/permissions"
	"github.com/studylog/studylog/pkg/server/presenters"
	"gopkg.in/yaml.v2"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// errInvalidFormat is returned for an unknown report format
var errInvalidFormat = errors.New("format must be one of text, json or yaml")

var (
	colorLabel = color.New(color.FgHiBlack)
	colorTitle = color.New(color.Bold)
	colorValue = color.New(color.FgGreen)
)

func newStatsCmd(g *globalFlags) *cobra.Command {
	var userID, format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the study report of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			if format != formatText && format != formatJSON && format != formatYAML {
				return errors.Wrapf(errInvalidFormat, "'%s'", format)
			}

			cfg, err := loadConfig(g.params())
			if err != nil {
				return err
			}

			return withInjector(cfg, func(i do.Injector) error {
				a, err := do.Invoke[*app.App](i)
				if err != nil {
					return err
				}

				ov, err := overview(cmd.Context(), a, userID)
				if err != nil {
					return err
				}

				return renderOverview(cmd.OutOrStdout(), format, userID, ov)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "Id of the user to report on (required)")
	f.StringVar(&format, "format", formatText, "Output format: text, json or yaml")

	return cmd
}

// overview gathers the analytics of a user through the privileged handle
func overview(ctx context.Context, a *app.App, userID string) (presenters.Overview, error) {
	p := permissions.OnBehalfOf(userID)

	stats, err := a.UserStats(ctx, p)
	if err != nil {
		return presenters.Overview{}, errors.Wrap(err, "computing user stats")
	}
	streak, err := a.StudyStreak(ctx, p)
	if err != nil {
		return presenters.Overview{}, errors.Wrap(err, "computing study streak")
	}
	rate, err := a.TaskCompletionRate(ctx, p)
	if err != nil {
		return presenters.Overview{}, errors.Wrap(err, "computing task completion rate")
	}

	return presenters.PresentOverview(stats, streak, rate), nil
}

func renderOverview(w io.Writer, format, userID string, ov presenters.Overview) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(ov), "encoding json")
	case formatYAML:
		b, err := yaml.Marshal(ov)
		if err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		_, err = w.Write(b)
		return err
	default:
		renderText(w, userID, ov)
		return nil
	}
}

func formatAvg(v *float64) string {
	if v == nil {
		return "-"
	}

	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func renderText(w io.Writer, userID string, ov presenters.Overview) {
	s := ov.Stats

	lastSession := "-"
	if s.LastSessionAt != nil {
		lastSession = s.LastSessionAt.Format("2006-01-02 15:04 MST")
	}

	rows := []struct {
		label string
		value string
	}{
		{"sessions", strconv.Itoa(s.TotalSessions)},
		{"minutes", strconv.Itoa(s.TotalMinutes)},
		{"avg duration", formatAvg(s.AvgDuration)},
		{"avg productivity", formatAvg(s.AvgProductivity)},
		{"avg mood", formatAvg(s.AvgMood)},
		{"last session", lastSession},
		{"sessions (7d)", strconv.Itoa(s.SessionsLast7d)},
		{"sessions (30d)", strconv.Itoa(s.SessionsLast30d)},
		{"streak (days)", strconv.Itoa(ov.Streak)},
		{"tasks completed", strconv.FormatFloat(ov.TaskCompletionRate, 'f', 2, 64) + "%"},
	}

	fmt.Fprintf(w, "%s %s\n", colorTitle.Sprint("Study report for"), userID)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s\n", colorLabel.Sprintf("%-17s", r.label+":"), colorValue.Sprint(r.value))
	}
}
