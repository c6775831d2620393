// Package service owns the storage, mutation handlers and sessions that the
// HTTP API depends on.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/paddock/internal/adapters/http/api"
	"github.com/okian/paddock/internal/adapters/repository"
	"github.com/okian/paddock/internal/adapters/session"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/mutation"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// ErrNotStarted is returned by accessors used before Start.
var ErrNotStarted = errors.New("service not started")

// Service wires the gateways, mutation handlers and session store.
type Service struct {
	mu sync.RWMutex

	// Core components
	db       *repository.DB
	store    *repository.Store
	sessions session.Store
	auth     *session.Authenticator

	drivers *mutation.Handler[model.Driver, int64, model.DriverPatch]
	gps     *mutation.Handler[model.GP, model.Date, model.GPPatch]
	results *mutation.Handler[model.Result, int64, model.ResultPatch]

	// Configuration
	databaseDriver        string
	databaseDSN           string
	maxOpenConns          int
	gpPagedOrder          string
	metricsUpdateInterval time.Duration
	sessionTTL            time.Duration
	adminUsername         string
	adminPasswordHash     string

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabase selects the SQL driver and DSN.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.databaseDriver = driver
		}
		s.databaseDSN = dsn
	}
}

// WithMaxOpenConns caps the database pool.
func WithMaxOpenConns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithGPPagedOrder selects "name" or "date" ordering for paged GP listings.
func WithGPPagedOrder(order string) Option {
	return func(s *Service) {
		s.gpPagedOrder = order
	}
}

// WithMetricsUpdateInterval sets how often row-count gauges refresh.
func WithMetricsUpdateInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.metricsUpdateInterval = d
		}
	}
}

// WithSessionTTL sets how long an idle admin session lives.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithAdmin configures the admin account. An empty hash disables login.
func WithAdmin(username, passwordHash string) Option {
	return func(s *Service) {
		s.adminUsername = username
		s.adminPasswordHash = passwordHash
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		databaseDriver:        "sqlite",
		maxOpenConns:          10,
		gpPagedOrder:          repository.GPOrderName,
		metricsUpdateInterval: 5 * time.Second,
		sessionTTL:            30 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the database, applies migrations and builds the handlers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting paddock service...",
		logger.String("driver", s.databaseDriver))

	db, err := repository.Open(ctx, s.databaseDriver, s.databaseDSN,
		repository.WithMaxOpenConns(s.maxOpenConns),
		repository.WithDBLogger(s.logger.Named("db")))
	if err != nil {
		metrics.RecordErrorByComponent("service", "open")
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		metrics.RecordErrorByComponent("service", "migrate")
		return fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	s.store = repository.NewStore(ctx, db,
		repository.WithMetricsUpdateInterval(s.metricsUpdateInterval),
		repository.WithGPPagedOrder(s.gpPagedOrder),
		repository.WithLogger(s.logger.Named("repository")))

	mlog := mutation.WithLogger(s.logger.Named("mutation"))
	s.drivers = mutation.NewHandler[model.Driver, int64, model.DriverPatch](s.store.Drivers, mutation.DriverCodec{}, mlog)
	s.gps = mutation.NewHandler[model.GP, model.Date, model.GPPatch](s.store.GPs, mutation.GPCodec{}, mlog)
	s.results = mutation.NewHandler[model.Result, int64, model.ResultPatch](s.store.Results, mutation.ResultCodec{}, mlog)

	s.sessions = session.NewStore(session.WithTTL(s.sessionTTL))
	s.auth = session.NewAuthenticator(s.sessions, s.adminUsername, s.adminPasswordHash)
	if !s.auth.Enabled() {
		s.logger.Warn(ctx, "admin login disabled; set admin_password_hash to enable the inbox")
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "paddock service started",
		logger.String("dialect", string(db.Dialect())),
		logger.String("gpPagedOrder", s.gpPagedOrder),
	)
	return nil
}

// Stop releases the store and closes the database.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping paddock service...")

	if s.store != nil {
		_ = s.store.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn(ctx, "failed to close database", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "paddock service stopped")
}

// Store returns the entity gateways.
func (s *Service) Store() (*repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Dependencies returns the bundle the HTTP API is built from.
func (s *Service) Dependencies() (api.Dependencies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return api.Dependencies{}, ErrNotStarted
	}
	return api.Dependencies{
		Drivers:         s.store.Drivers,
		GPs:             s.store.GPs,
		Results:         s.store.Results,
		Messages:        s.store.Messages,
		DriverMutations: s.drivers,
		GPMutations:     s.gps,
		ResultMutations: s.results,
		Sessions:        s.sessions,
		Auth:            s.auth,
		Stats:           s,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"driver":  s.databaseDriver,
	}
	if !s.started {
		return stats, nil
	}

	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	stats["rows"] = counts
	stats["sessions"] = s.sessions.Count()
	stats["loginEnabled"] = s.auth.Enabled()
	stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	return stats, nil
}
