package mutation

import (
	"github.com/okian/paddock/internal/domain/validation"
	"github.com/okian/paddock/pkg/logger"
)

type options struct {
	validator *validation.Validator
	logger    logger.Logger
}

// Option configures a Handler.
type Option func(*options)

// WithValidator overrides the rule engine.
func WithValidator(v *validation.Validator) Option {
	return func(o *options) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
