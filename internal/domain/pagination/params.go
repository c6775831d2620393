// Package pagination parses and normalizes page/pageSize query parameters.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Default limits used when none are configured.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query parameter names.
const (
	PageKey     = "page"
	PageSizeKey = "pageSize"
)

// ErrBadRequest is returned when a page parameter is present but not an integer.
var ErrBadRequest = errors.New("invalid pagination parameter")

// Params is a normalized page request. Page is 1-based.
type Params struct {
	Page     int
	PageSize int
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of overflowing for very large pages.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Limit is the maximum number of rows on this page.
func (p Params) Limit() int {
	return p.PageSize
}

// Limits bounds the accepted page size.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize < 1 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.MaxPageSize < 1 {
		l.MaxPageSize = MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	return l
}

// Normalize clamps p so that Page >= 1 and 1 <= PageSize <= MaxPageSize.
// A non-positive page size falls back to the default.
func (l Limits) Normalize(p Params) Params {
	l = l.withDefaults()
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = l.DefaultPageSize
	case p.PageSize > l.MaxPageSize:
		p.PageSize = l.MaxPageSize
	}
	return p
}

// Parse reads the page and page size from values. pageKey names the page
// parameter, so several listings can share one query string; the size is
// always read from "pageSize". Absent values take defaults.
func Parse(values url.Values, pageKey string, l Limits) (Params, error) {
	if pageKey == "" {
		pageKey = PageKey
	}
	page, err := intParam(values, pageKey, 1)
	if err != nil {
		return Params{}, err
	}
	size, err := intParam(values, PageSizeKey, 0)
	if err != nil {
		return Params{}, err
	}
	return l.Normalize(Params{Page: page, PageSize: size}), nil
}

func intParam(values url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadRequest, key, raw)
	}
	return n, nil
}

// ExpectedLen is the number of rows a page should hold when the listing has
// total rows.
func ExpectedLen(total int, p Params) int {
	remaining := total - p.Offset()
	if remaining < 0 {
		remaining = 0
	}
	if remaining > p.PageSize {
		return p.PageSize
	}
	return remaining
}
