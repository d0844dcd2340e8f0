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
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/prompt"
	"github.com/studylog/studylog/pkg/server/token"
)

const defaultTokenTTL = 30 * 24 * time.Hour

func newTokenCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}

	cmd.AddCommand(
		newTokenCreateCmd(g),
		newTokenPurgeCmd(g),
		newTokenRevokeCmd(g),
	)

	return cmd
}

func newTokenCreateCmd(g *globalFlags) *cobra.Command {
	var userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			if ttl <= 0 {
				return errors.Errorf("invalid ttl %s", ttl)
			}

			cfg, err := loadConfig(g.params())
			if err != nil {
				return err
			}

			return withInjector(cfg, func(i do.Injector) error {
				s := do.MustInvoke[stores](i)
				now := do.MustInvoke[clock.Clock](i).Now()

				tok, err := token.Create(s.admin(), userID, now.Add(ttl))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Access token created\n")
				fmt.Fprintf(out, "User: %s\n", tok.UserID)
				fmt.Fprintf(out, "Expires: %s\n", tok.ExpiresAt.Format(time.RFC3339))
				fmt.Fprintf(out, "Token: %s\n", tok.Key)

				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "Id of the user the token authenticates (required)")
	f.DurationVar(&ttl, "ttl", defaultTokenTTL, "How long the token stays valid")

	return cmd
}

func newTokenPurgeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired access tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g.params())
			if err != nil {
				return err
			}

			return withInjector(cfg, func(i do.Injector) error {
				s := do.MustInvoke[stores](i)
				now := do.MustInvoke[clock.Clock](i).Now()

				n, err := token.Purge(s.admin(), now)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired access tokens\n", n)

				return nil
			})
		},
	}
}

func newTokenRevokeCmd(g *globalFlags) *cobra.Command {
	var userID string
	var yes bool

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Delete every access token of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			out := cmd.OutOrStdout()

			if !yes {
				ok, err := prompt.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Revoke every access token of %s?", userID), false)
				if err != nil {
					return errors.Wrap(err, "getting confirmation")
				}
				if !ok {
					fmt.Fprintln(out, "Aborted")
					return nil
				}
			}

			cfg, err := loadConfig(g.params())
			if err != nil {
				return err
			}

			return withInjector(cfg, func(i do.Injector) error {
				n, err := token.Revoke(do.MustInvoke[stores](i).admin(), userID)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Revoked %d access tokens of %s\n", n, userID)

				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "Id of the user whose tokens are revoked (required)")
	f.BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")

	return cmd
}
