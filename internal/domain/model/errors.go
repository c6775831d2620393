package model

import "errors"

// Sentinel kinds shared by the persistence gateway and its callers.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrInvalidReference = errors.New("referenced record does not exist")
)
