package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/pagination"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
)

// Gateway is the CRUD contract every editable entity exposes.
type Gateway[T any, K comparable, P any] interface {
	// ListAll returns every row in the entity's full-listing order.
	ListAll(ctx context.Context) ([]T, error)
	// ListPaged returns one page and the total row count.
	ListPaged(ctx context.Context, p pagination.Params) (model.Page[T], error)
	// FindByKey returns ErrNotFound when k is absent.
	FindByKey(ctx context.Context, k K) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	// Update changes only the fields set in patch.
	Update(ctx context.Context, k K, patch P) (T, error)
	// Delete returns the removed row, or ErrNotFound.
	Delete(ctx context.Context, k K) (T, error)
	Count(ctx context.Context) (int, error)
}

// Compile-time checks.
var (
	_ Gateway[model.Driver, int64, model.DriverPatch] = (*Drivers)(nil)
	_ Gateway[model.GP, model.Date, model.GPPatch]    = (*GPs)(nil)
	_ Gateway[model.Result, int64, model.ResultPatch] = (*Results)(nil)
)

// Counts is the number of stored rows per entity.
type Counts struct {
	Drivers  int `json:"drivers"`
	GPs      int `json:"gps"`
	Results  int `json:"results"`
	Messages int `json:"messages"`
}

// Store groups the entity gateways over one database.
type Store struct {
	Drivers  *Drivers
	GPs      *GPs
	Results  *Results
	Messages *Messages

	db                    *DB
	logger                logger.Logger
	metricsUpdateInterval time.Duration
	gpPagedOrder          string

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStore builds the gateways and starts the row-count metrics updater,
// which stops on Close or when ctx ends.
func NewStore(ctx context.Context, db *DB, opts ...Option) *Store {
	s := &Store{
		db:                    db,
		metricsUpdateInterval: 5 * time.Second,
		gpPagedOrder:          GPOrderName,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}

	s.Results = newResults(db)
	s.Drivers = newDrivers(db, s.Results)
	s.GPs = newGPs(db, s.Results, s.gpPagedOrder)
	s.Messages = newMessages(db)

	s.startMetricsUpdater(ctx)
	return s
}

// Counts returns the row count of every entity.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Drivers, err = s.Drivers.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.GPs, err = s.GPs.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Results, err = s.Results.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Messages, err = s.Messages.Count(ctx); err != nil {
		return Counts{}, err
	}
	return c, nil
}

// Ping checks the underlying database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close stops background work. The database handle stays open.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *Store) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *Store) updateMetrics(ctx context.Context) {
	c, err := s.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to refresh row metrics", logger.Error(err))
		return
	}
	metrics.UpdateEntityRows("driver", c.Drivers)
	metrics.UpdateEntityRows("gp", c.GPs)
	metrics.UpdateEntityRows("result", c.Results)
	metrics.UpdateEntityRows("message", c.Messages)
}
