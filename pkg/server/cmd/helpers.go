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
	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/studylog/studylog/pkg/clock"
	"github.com/studylog/studylog/pkg/server/app"
	"github.com/studylog/studylog/pkg/server/config"
	"github.com/studylog/studylog/pkg/server/database"
	"github.com/studylog/studylog/pkg/server/log"
	"github.com/studylog/studylog/pkg/server/permissions"
	"gorm.io/gorm"
)

// globalFlags are the flags every command accepts
type globalFlags struct {
	databaseURL      string
	adminDatabaseURL string
	logLevel         string
	envFile          string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&g.databaseURL, "databaseUrl", "", "PostgreSQL url or SQLite path (env: DATABASE_URL, default: $XDG_DATA_HOME/studylog/server.db)")
	f.StringVar(&g.adminDatabaseURL, "adminDatabaseUrl", "", "Store used by operator commands. Migrations run here only, so databaseUrl must reach the same schema (env: ADMIN_DATABASE_URL, default: databaseUrl)")
	f.StringVar(&g.logLevel, "logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
	f.StringVar(&g.envFile, "envFile", config.DefaultEnvFile, "Dotenv file to load when present")
}

func (g *globalFlags) params() config.Params {
	return config.Params{
		DatabaseURL:      g.databaseURL,
		AdminDatabaseURL: g.adminDatabaseURL,
		LogLevel:         g.logLevel,
		EnvFile:          g.envFile,
	}
}

// loadConfig builds the configuration and applies its log level
func loadConfig(p config.Params) (config.Config, error) {
	cfg, err := config.New(p)
	if err != nil {
		return config.Config{}, errors.Wrap(err, "loading configuration")
	}

	log.SetLevel(cfg.LogLevel)

	return cfg, nil
}

// initDB opens the store at dsn and brings its schema up to date
func initDB(dsn string) (*gorm.DB, error) {
	db, err := database.Open(dsn)
	if err != nil {
		return nil, err
	}

	if err := database.InitSchema(db); err != nil {
		database.Close(db)
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}

	return db, nil
}

// errStoreNotMigrated is returned when the ordinary store does not see the
// schema the privileged store was migrated to
var errStoreNotMigrated = errors.New("the store is missing the schema; databaseUrl and adminDatabaseUrl must reach the same database")

// checkSchema fails when any table of the schema is missing from db
func checkSchema(db *gorm.DB) error {
	for _, model := range []interface{}{
		&database.StudySession{},
		&database.SessionTag{},
		&database.Task{},
		&database.AccessToken{},
	} {
		if !db.Migrator().HasTable(model) {
			return errStoreNotMigrated
		}
	}

	return nil
}

// stores holds the ordinary and the privileged handle of the process. The
// privileged handle is nil when both point at the same store.
type stores struct {
	db      *gorm.DB
	adminDB *gorm.DB
}

// admin returns the handle operator commands write through
func (s stores) admin() *gorm.DB {
	if s.adminDB != nil {
		return s.adminDB
	}

	return s.db
}

func openStores(cfg config.Config) (stores, error) {
	adminDB, err := initDB(cfg.AdminDatabaseURL)
	if err != nil {
		return stores{}, errors.Wrap(err, "opening the privileged store")
	}
	if cfg.AdminDatabaseURL == cfg.DatabaseURL {
		return stores{db: adminDB}, nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		database.Close(adminDB)
		return stores{}, errors.Wrap(err, "opening the store")
	}
	if err := checkSchema(db); err != nil {
		database.Close(db)
		database.Close(adminDB)
		return stores{}, err
	}

	return stores{db: db, adminDB: adminDB}, nil
}

// newInjector registers the services of the process
func newInjector(cfg config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, clock.New())

	do.Provide(injector, func(i do.Injector) (stores, error) {
		return openStores(do.MustInvoke[config.Config](i))
	})
	do.Provide(injector, func(i do.Injector) (*permissions.Guard, error) {
		s := do.MustInvoke[stores](i)
		return permissions.NewGuard(s.db, s.adminDB), nil
	})
	do.Provide(injector, func(i do.Injector) (*app.App, error) {
		cfg := do.MustInvoke[config.Config](i)
		s := do.MustInvoke[stores](i)

		a := &app.App{
			Guard:              do.MustInvoke[*permissions.Guard](i),
			DB:                 s.db,
			Clock:              do.MustInvoke[clock.Clock](i),
			AppEnv:             cfg.AppEnv,
			Port:               cfg.Port,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
			RateLimitBurst:     cfg.RateLimitBurst,
		}
		if err := a.Validate(); err != nil {
			return nil, errors.Wrap(err, "validating the app")
		}

		return a, nil
	})

	return injector
}

// withInjector opens the stores, runs fn and closes the stores
func withInjector(cfg config.Config, fn func(i do.Injector) error) error {
	injector := newInjector(cfg)

	guard, err := do.Invoke[*permissions.Guard](injector)
	if err != nil {
		return errors.Wrap(err, "initializing the store")
	}
	defer func() {
		if err := guard.Close(); err != nil {
			log.ErrorWrap(err, "closing the store")
		}
	}()

	return fn(injector)
}
