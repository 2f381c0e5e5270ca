// Package config loads runtime settings for the odi CLI and the example
// application from the environment, optionally seeded by .env files.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment names the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Testing     Environment = "testing"
)

// Environment variables read by Load.
const (
	EnvEnvironment    = "ODI_ENV"
	EnvLogLevel       = "ODI_LOG_LEVEL"
	EnvLogFormat      = "ODI_LOG_FORMAT"
	EnvManifest       = "ODI_MANIFEST"
	EnvDiscountPolicy = "ODI_DISCOUNT_POLICY"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the typed configuration.
type Config struct {
	Environment Environment
	Log         LogConfig

	// Manifest is the default manifest path for CLI commands.
	Manifest string

	// DiscountPolicy is the qualifier of the discount policy the example
	// application injects into its order service.
	DiscountPolicy string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Load reads .env (if present) and populates a Config from environment
// variables. Variables already set in the process environment win over the
// files. Missing files are not an error; malformed ones are.
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "config: load %s", f)
		}
	}

	env := Environment(strings.ToLower(get(EnvEnvironment, string(Development))))
	cfg := &Config{
		Environment: env,
		Log: LogConfig{
			Level:  strings.ToLower(get(EnvLogLevel, defaultLevel(env))),
			Format: strings.ToLower(get(EnvLogFormat, defaultFormat(env))),
		},
		Manifest:       get(EnvManifest, "app.yaml"),
		DiscountPolicy: strings.ToLower(get(EnvDiscountPolicy, "fix")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Production, Testing:
	default:
		return errors.Wrapf(ErrInvalidConfig, "%s=%q", EnvEnvironment, c.Environment)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Wrapf(ErrInvalidConfig, "%s=%q", EnvLogLevel, c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Wrapf(ErrInvalidConfig, "%s=%q", EnvLogFormat, c.Log.Format)
	}
	if strings.TrimSpace(c.DiscountPolicy) == "" {
		return errors.Wrapf(ErrInvalidConfig, "%s is empty", EnvDiscountPolicy)
	}
	return nil
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool { return c.Environment == Production }

func defaultLevel(env Environment) string {
	if env == Production {
		return "info"
	}
	return "debug"
}

func defaultFormat(env Environment) string {
	if env == Production {
		return "json"
	}
	return "console"
}

func get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
