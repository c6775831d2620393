package repository

import (
	"time"

	"github.com/okian/paddock/pkg/logger"
)

type dbOptions struct {
	maxOpenConns    int
	connMaxLifetime time.Duration
	logger          logger.Logger
}

// DBOption configures Open.
type DBOption func(*dbOptions)

// WithMaxOpenConns caps the pool size. Ignored for sqlite, which is pinned
// to one connection.
func WithMaxOpenConns(n int) DBOption {
	return func(o *dbOptions) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithConnMaxLifetime recycles connections older than d.
func WithConnMaxLifetime(d time.Duration) DBOption {
	return func(o *dbOptions) {
		if d > 0 {
			o.connMaxLifetime = d
		}
	}
}

// WithDBLogger sets the logger used by the database handle.
func WithDBLogger(l logger.Logger) DBOption {
	return func(o *dbOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMetricsUpdateInterval sets the interval for background row-count metrics.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithGPPagedOrder selects the ordering of paged GP listings: "name" (the
// default) or "date" for newest first.
func WithGPPagedOrder(order string) Option {
	return func(s *Store) {
		if order != "" {
			s.gpPagedOrder = order
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
