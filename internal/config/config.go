package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"academy/internal/domain/session"
)

// Persistence backends.
const (
	BackendSQLite = "sqlite"
	BackendREST   = "rest"
)

// EnvProduction is the only environment with stricter validation.
const EnvProduction = "production"

// Config is the top-level server configuration.
type Config struct {
	// Env is "development" or "production".
	Env      string `yaml:"env"`
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	Database   DatabaseConfig   `yaml:"database"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	HTTP       HTTPConfig       `yaml:"http"`
	Email      EmailConfig      `yaml:"email"`
	Outbox     OutboxConfig     `yaml:"outbox"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path      string        `yaml:"path"`
	SlowQuery time.Duration `yaml:"slow_query"`
}

// SchedulingConfig selects the overlap rule and the session backend.
type SchedulingConfig struct {
	// OverlapRule is "containment" (default) or "intersection".
	OverlapRule string `yaml:"overlap_rule"`
	// Backend is "sqlite" or "rest".
	Backend     string `yaml:"backend"`
	RESTBaseURL string `yaml:"rest_base_url"`
}

// HTTPConfig holds request-level settings.
type HTTPConfig struct {
	// CSRFKey is 64 hex characters. Empty outside production means a
	// random key per process.
	CSRFKey     string        `yaml:"csrf_key"`
	RateLimit   float64       `yaml:"rate_limit"` // requests per second per client IP
	RateBurst   int           `yaml:"rate_burst"`
	SlowRequest time.Duration `yaml:"slow_request"`
}

// EmailConfig configures trainer notifications.
type EmailConfig struct {
	// ResendKey empty selects the logging no-op sender.
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

// OutboxConfig configures the notification worker.
type OutboxConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Env:      "development",
		Listen:   ":8080",
		LogLevel: "info",
		Database: DatabaseConfig{
			Path:      "academy.db",
			SlowQuery: 50 * time.Millisecond,
		},
		Scheduling: SchedulingConfig{
			OverlapRule: session.RuleContainment,
			Backend:     BackendSQLite,
		},
		HTTP: HTTPConfig{
			RateLimit:   10,
			RateBurst:   20,
			SlowRequest: 500 * time.Millisecond,
		},
		Email: EmailConfig{
			From:    "Academy <noreply@academy.local>",
			ReplyTo: "planning@academy.local",
		},
		Outbox: OutboxConfig{Interval: time.Minute},
	}
}

// Normalize fills zero values with defaults so a partial file still works.
func (c *Config) Normalize() {
	d := Default()
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Database.SlowQuery <= 0 {
		c.Database.SlowQuery = d.Database.SlowQuery
	}
	c.Scheduling.OverlapRule = strings.ToLower(c.Scheduling.OverlapRule)
	if c.Scheduling.OverlapRule == "" {
		c.Scheduling.OverlapRule = d.Scheduling.OverlapRule
	}
	c.Scheduling.Backend = strings.ToLower(c.Scheduling.Backend)
	if c.Scheduling.Backend == "" {
		c.Scheduling.Backend = d.Scheduling.Backend
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = d.HTTP.RateLimit
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = d.HTTP.RateBurst
	}
	if c.HTTP.SlowRequest <= 0 {
		c.HTTP.SlowRequest = d.HTTP.SlowRequest
	}
	if c.Email.From == "" {
		c.Email.From = d.Email.From
	}
	if c.Outbox.Interval <= 0 {
		c.Outbox.Interval = d.Outbox.Interval
	}
}

// Load reads the YAML file at path, applies ACADEMY_* overrides from the
// environment, normalizes and validates the result. An empty path uses
// the defaults.
// PRE: none
// POST: Returns a valid config or an error naming the bad key
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from ACADEMY_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"ACADEMY_ENV":          &c.Env,
		"ACADEMY_ADDR":         &c.Listen,
		"ACADEMY_LOG_LEVEL":    &c.LogLevel,
		"ACADEMY_DB":           &c.Database.Path,
		"ACADEMY_OVERLAP_RULE": &c.Scheduling.OverlapRule,
		"ACADEMY_BACKEND":      &c.Scheduling.Backend,
		"ACADEMY_REST_URL":     &c.Scheduling.RESTBaseURL,
		"ACADEMY_CSRF_KEY":     &c.HTTP.CSRFKey,
		"ACADEMY_RESEND_KEY":   &c.Email.ResendKey,
		"ACADEMY_RESEND_FROM":  &c.Email.From,
		"ACADEMY_REPLY_TO":     &c.Email.ReplyTo,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("ACADEMY_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ACADEMY_RATE_LIMIT: %w", err)
		}
		c.HTTP.RateLimit = f
	}
	if v := getenv("ACADEMY_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACADEMY_RATE_BURST: %w", err)
		}
		c.HTTP.RateBurst = n
	}
	if v := getenv("ACADEMY_OUTBOX_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ACADEMY_OUTBOX_INTERVAL: %w", err)
		}
		c.Outbox.Interval = d
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := session.RuleByName(c.Scheduling.OverlapRule); err != nil {
		errs = append(errs, fmt.Errorf("scheduling.overlap_rule: %w", err))
	}
	switch c.Scheduling.Backend {
	case BackendSQLite:
	case BackendREST:
		if c.Scheduling.RESTBaseURL == "" {
			errs = append(errs, errors.New("scheduling.rest_base_url is required for the rest backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("scheduling.backend %q must be %q or %q", c.Scheduling.Backend, BackendSQLite, BackendREST))
	}
	if _, err := c.CSRFKeyBytes(); err != nil {
		errs = append(errs, err)
	} else if c.HTTP.CSRFKey == "" && c.IsProduction() {
		errs = append(errs, errors.New("http.csrf_key is required in production"))
	}
	if _, ok := levels[c.LogLevel]; !ok {
		errs = append(errs, fmt.Errorf("log_level %q must be debug, info, warn or error", c.LogLevel))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether Env is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the CSRF key. It returns nil when none is set.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	if c.HTTP.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.HTTP.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("http.csrf_key must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	return levels[c.LogLevel]
}
