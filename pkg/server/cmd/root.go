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
	"github.com/spf13/cobra"
)

// NewRootCmd returns the root command with every subcommand registered
func NewRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "studylog-server",
		Short:         "Studylog server - study sessions, tags, tasks and analytics",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	g.register(root)

	root.AddCommand(
		newStartCmd(&g),
		newMigrateCmd(&g),
		newStatsCmd(&g),
		newTokenCmd(&g),
		newVersionCmd(),
	)

	return root
}

// Execute runs the main command
func Execute() error {
	return NewRootCmd().Execute()
}
