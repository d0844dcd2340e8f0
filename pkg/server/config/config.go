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

package config

import (
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/studylog/studylog/pkg/dirs"
	"github.com/studylog/studylog/pkg/server/log"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// AppEnvTest represents an app environment for tests.
	AppEnvTest string = "TEST"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultEnvFile is the dotenv file read when present
	DefaultEnvFile = ".env"
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database url
	ErrDBMissingPath = errors.New("Database URL is empty")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
	// ErrScheduleInvalid is an error for a token cleanup schedule that is not a cron spec
	ErrScheduleInvalid = errors.New("Invalid token cleanup schedule")
	// ErrRateLimitInvalid is an error for a negative rate limit
	ErrRateLimitInvalid = errors.New("Invalid rate limit")
)

// DefaultDBPath returns the default path to the database file
func DefaultDBPath() string {
	return dirs.DataFile(DefaultDBFilename)
}

// envConfig is the configuration read from the environment
type envConfig struct {
	AppEnv               string  `env:"APP_ENV" envDefault:"PRODUCTION"`
	Port                 string  `env:"PORT" envDefault:"3001"`
	DatabaseURL          string  `env:"DATABASE_URL"`
	AdminDatabaseURL     string  `env:"ADMIN_DATABASE_URL"`
	LogLevel             string  `env:"LOG_LEVEL" envDefault:"info"`
	TokenCleanupSchedule string  `env:"TOKEN_CLEANUP_SCHEDULE" envDefault:"@every 1h"`
	RateLimitPerSecond   float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"50"`
	RateLimitBurst       int     `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Config is an application configuration
type Config struct {
	AppEnv string
	Port   string
	// DatabaseURL is a PostgreSQL url or a path to a SQLite database
	DatabaseURL string
	// AdminDatabaseURL is the store the privileged handle connects to
	AdminDatabaseURL     string
	LogLevel             string
	TokenCleanupSchedule string
	RateLimitPerSecond   float64
	RateLimitBurst       int
}

// Params are the configuration parameters for creating a new Config.
// Non-empty params take precedence over the environment.
type Params struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	AdminDatabaseURL string
	LogLevel         string
	// EnvFile is the dotenv file to load. Defaults to DefaultEnvFile.
	EnvFile string
}

// loadEnvFile loads the dotenv file into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

func override(value, fallback string) string {
	if value != "" {
		return value
	}

	return fallback
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	if err := loadEnvFile(p.EnvFile); err != nil {
		return Config{}, err
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, errors.Wrap(err, "parsing environment variables")
	}

	c := Config{
		AppEnv:               override(p.AppEnv, raw.AppEnv),
		Port:                 override(p.Port, raw.Port),
		DatabaseURL:          override(p.DatabaseURL, override(raw.DatabaseURL, DefaultDBPath())),
		AdminDatabaseURL:     override(p.AdminDatabaseURL, raw.AdminDatabaseURL),
		LogLevel:             override(p.LogLevel, raw.LogLevel),
		TokenCleanupSchedule: raw.TokenCleanupSchedule,
		RateLimitPerSecond:   raw.RateLimitPerSecond,
		RateLimitBurst:       raw.RateLimitBurst,
	}
	if c.AdminDatabaseURL == "" {
		c.AdminDatabaseURL = c.DatabaseURL
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

func validate(c Config) error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	if c.DatabaseURL == "" {
		return ErrDBMissingPath
	}

	if !log.IsValidLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}

	if _, err := cron.Parse(c.TokenCleanupSchedule); err != nil {
		return errors.Wrapf(ErrScheduleInvalid, "'%s': %s", c.TokenCleanupSchedule, err.Error())
	}

	if c.RateLimitPerSecond < 0 || c.RateLimitBurst < 0 {
		return ErrRateLimitInvalid
	}

	return nil
}
