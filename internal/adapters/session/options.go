package session

import "time"

type options struct {
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// Option configures NewStore.
type Option func(*options)

// WithTTL sets how long an idle session lives.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCleanupInterval sets how often expired sessions are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// WithClock overrides the time source used for ExpiresAt and for expiring
// sessions on lookup. The cache still evicts idle entries on wall time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
