package repository

import (
	"errors"

	"github.com/okian/paddock/internal/domain/model"
)

// Sentinel kinds for gateway errors. The row-level kinds alias the model
// sentinels so callers outside this package can match them without
// importing it.
var (
	ErrNotFound          = model.ErrNotFound
	ErrDuplicateKey      = model.ErrDuplicateKey
	ErrInvalidReference  = model.ErrInvalidReference
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrMigrationFailed   = errors.New("migration failed")
)
