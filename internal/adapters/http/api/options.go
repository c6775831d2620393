package api

import (
	"github.com/okian/paddock/internal/domain/pagination"
	"github.com/okian/paddock/pkg/logger"
)

// Defaults for the session gate.
const (
	DefaultSessionCookie = "paddock_session"
	DefaultLoginPath     = "/login"
)

type options struct {
	limits        pagination.Limits
	sessionCookie string
	loginPath     string
	logger        logger.Logger
}

// Option configures NewServer.
type Option func(*options)

// WithPageLimits sets the default and maximum page sizes.
func WithPageLimits(l pagination.Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithSessionCookie sets the name of the session cookie.
func WithSessionCookie(name string) Option {
	return func(o *options) {
		if name != "" {
			o.sessionCookie = name
		}
	}
}

// WithLoginPath sets where unauthenticated inbox requests are redirected.
func WithLoginPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.loginPath = path
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
