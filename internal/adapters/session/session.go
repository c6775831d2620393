// Package session keeps admin login sessions with a sliding expiry.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/okian/paddock/pkg/metrics"
)

// ErrNoSession is returned when a token is unknown or expired.
var ErrNoSession = errors.New("no session")

// Session is one authenticated admin login.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store tracks live sessions.
type Store interface {
	// Create starts a session for username and returns it.
	Create(ctx context.Context, username string) (Session, error)
	// Lookup returns the session for token and extends its expiry.
	Lookup(ctx context.Context, token string) (Session, error)
	// Delete ends the session. Unknown tokens are ignored.
	Delete(ctx context.Context, token string)
	// Count returns the number of live sessions.
	Count() int
}

// cacheStore implements Store on an expiring in-memory cache.
type cacheStore struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStore creates an in-memory session store.
func NewStore(opts ...Option) Store {
	s := &cacheStore{
		ttl: 30 * time.Minute,
		now: time.Now,
	}
	o := options{cleanupInterval: 5 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ttl > 0 {
		s.ttl = o.ttl
	}
	if o.now != nil {
		s.now = o.now
	}
	s.cache = cache.New(s.ttl, o.cleanupInterval)
	s.cache.OnEvicted(func(string, interface{}) {
		metrics.UpdateActiveSessions(s.cache.ItemCount())
	})
	return s
}

func (s *cacheStore) Create(_ context.Context, username string) (Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return Session{}, err
	}
	now := s.now()
	sess := Session{
		Token:     token.String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.cache.Set(sess.Token, sess, s.ttl)
	metrics.UpdateActiveSessions(s.cache.ItemCount())
	return sess, nil
}

func (s *cacheStore) Lookup(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	v, found := s.cache.Get(token)
	if !found {
		return Session{}, ErrNoSession
	}
	sess, ok := v.(Session)
	if !ok {
		return Session{}, ErrNoSession
	}
	now := s.now()
	if !now.Before(sess.ExpiresAt) {
		s.Delete(ctx, token)
		return Session{}, ErrNoSession
	}
	sess.ExpiresAt = now.Add(s.ttl)
	s.cache.Set(token, sess, s.ttl)
	return sess, nil
}

func (s *cacheStore) Delete(_ context.Context, token string) {
	s.cache.Delete(token)
	metrics.UpdateActiveSessions(s.cache.ItemCount())
}

func (s *cacheStore) Count() int {
	return s.cache.ItemCount()
}
