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
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/buildinfo"
	"github.com/studylog/studylog/pkg/server/config"
	"github.com/studylog/studylog/pkg/server/controllers"
	"github.com/studylog/studylog/pkg/server/log"
	mw "github.com/studylog/studylog/pkg/server/middleware"
	"github.com/studylog/studylog/pkg/server/token"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newStartCmd(g *globalFlags) *cobra.Command {
	var appEnv, port string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := g.params()
			p.AppEnv = appEnv
			p.Port = port

			cfg, err := loadConfig(p)
			if err != nil {
				return err
			}

			return withInjector(cfg, func(i do.Injector) error {
				return serve(cmd.Context(), i)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&appEnv, "appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	f.StringVar(&port, "port", "", "Server port (env: PORT, default: 3001)")

	return cmd
}

// purgeTokens deletes the access tokens expired at now
func purgeTokens(db *gorm.DB, now time.Time) {
	n, err := token.Purge(db, now)
	if err != nil {
		log.ErrorWrap(err, "purging expired access tokens")
		return
	}

	if n > 0 {
		log.WithFields(log.Fields{
			"count": n,
		}).Info("purged expired access tokens")
	}
}

// startTokenCleanup schedules the periodic purge of expired access tokens
func startTokenCleanup(schedule string, db *gorm.DB, c clock.Clock) (*cron.Cron, error) {
	job := cron.New()
	if err := job.AddFunc(schedule, func() { purgeTokens(db, c.Now()) }); err != nil {
		return nil, errors.Wrapf(err, "scheduling token cleanup '%s'", schedule)
	}

	job.Start()

	return job, nil
}

// newHandler builds the router of the app and returns it with its rate limiter
func newHandler(a *app.App) (http.Handler, *mw.RateLimiter, error) {
	ctl := controllers.New(a)
	limiter := mw.NewRateLimiter(a.RateLimitPerSecond, a.RateLimitBurst)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(a, ctl),
		Controllers: ctl,
		Limiter:     limiter,
	}

	r, err := controllers.NewRouter(a, rc)
	if err != nil {
		limiter.Stop()
		return nil, nil, errors.Wrap(err, "initializing router")
	}

	return r, limiter, nil
}

// serve runs the HTTP server until ctx is done or the process is signaled
func serve(ctx context.Context, i do.Injector) error {
	cfg := do.MustInvoke[config.Config](i)
	a, err := do.Invoke[*app.App](i)
	if err != nil {
		return err
	}
	s := do.MustInvoke[stores](i)

	handler, limiter, err := newHandler(a)
	if err != nil {
		return err
	}
	defer limiter.Stop()

	job, err := startTokenCleanup(cfg.TokenCleanupSchedule, s.admin(), a.Clock)
	if err != nil {
		return err
	}
	defer job.Stop()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
		"env":     cfg.AppEnv,
	}).Info("Studylog server starting")

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	log.Info("Studylog server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down the server")
	}

	return nil
}
