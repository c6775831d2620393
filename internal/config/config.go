// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - Load validates the result and reports problems as ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseDriver selects the SQL backend: sqlite or postgres.
	DatabaseDriver string `koanf:"database_driver"`

	// DatabaseDSN is passed to the driver. Empty means an in-memory sqlite database.
	DatabaseDSN string `koanf:"database_dsn"`

	// MaxOpenConns caps the connection pool. Ignored for sqlite.
	MaxOpenConns int `koanf:"max_open_conns"`

	// DefaultPageSize and MaxPageSize bound listing page sizes.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// GPPagedOrder sorts paged GP listings by "name" or "date".
	GPPagedOrder string `koanf:"gp_paged_order"`

	// SessionTTLMinutes is how long an idle admin session lives.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// SessionCookie names the admin session cookie.
	SessionCookie string `koanf:"session_cookie"`

	// LoginPath is where the inbox redirects requests without a session.
	LoginPath string `koanf:"login_path"`

	// AdminUsername and AdminPasswordHash (bcrypt) configure the single admin
	// account. Login is disabled while the hash is empty.
	AdminUsername     string `koanf:"admin_username"`
	AdminPasswordHash string `koanf:"admin_password_hash"`

	// MetricsIntervalSeconds sets how often row-count gauges refresh.
	MetricsIntervalSeconds int `koanf:"metrics_interval_seconds"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `koanf:"shutdown_timeout_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DatabaseDriver:         "sqlite",
		DatabaseDSN:            "file:paddock.db",
		MaxOpenConns:           10,
		DefaultPageSize:        10,
		MaxPageSize:            100,
		GPPagedOrder:           "name",
		SessionTTLMinutes:      30,
		SessionCookie:          "paddock_session",
		LoginPath:              "/login",
		AdminUsername:          "admin",
		MetricsIntervalSeconds: 5,
		ShutdownTimeoutSeconds: 10,
	}
}

// SessionTTL returns SessionTTLMinutes as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MetricsInterval returns MetricsIntervalSeconds as a duration.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.MetricsIntervalSeconds) * time.Second
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case !oneOf(c.LogLevel, "debug", "info", "warn", "warning", "error"):
		return invalid("log_level must be debug, info, warn or error")
	case !oneOf(c.LogFormat, "text", "json"):
		return invalid("log_format must be text or json")
	case !oneOf(c.DatabaseDriver, "sqlite", "sqlite3", "postgres", "postgresql", "pgx"):
		return invalid("database_driver must be sqlite or postgres")
	case c.DefaultPageSize < 1:
		return invalid("default_page_size must be positive")
	case c.MaxPageSize < c.DefaultPageSize:
		return invalid("max_page_size must not be below default_page_size")
	case !oneOf(c.GPPagedOrder, "name", "date"):
		return invalid("gp_paged_order must be name or date")
	case c.SessionTTLMinutes < 1:
		return invalid("session_ttl_minutes must be positive")
	case c.SessionCookie == "":
		return invalid("session_cookie must not be empty")
	case !strings.HasPrefix(c.LoginPath, "/"):
		return invalid("login_path must start with /")
	case c.MetricsIntervalSeconds < 1:
		return invalid("metrics_interval_seconds must be positive")
	}
	if c.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.AdminPasswordHash)); err != nil {
			return fmt.Errorf("%w: admin_password_hash is not a bcrypt hash: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
