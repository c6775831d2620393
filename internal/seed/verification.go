package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/pagination"
	"github.com/okian/paddock/pkg/logger"
)

// rawPage decodes a listing without knowing its row type.
type rawPage = model.Page[json.RawMessage]

// verifyListing walks every page of path, plus one past the end, and checks
// each page holds the expected number of distinct rows. It returns the
// number of pages fetched.
func verifyListing(ctx context.Context, client *HTTPClient, path string, pageSize int) (int, error) {
	var first rawPage
	if err := client.GetJSON(ctx, pageURL(path, 1, pageSize), &first); err != nil {
		return 0, err
	}
	total := first.Total
	lastPage := (total + pageSize - 1) / pageSize

	seen := make(map[string]bool, total)
	fetched := 0
	for p := 1; p <= lastPage+1; p++ {
		page := first
		if p > 1 {
			if err := client.GetJSON(ctx, pageURL(path, p, pageSize), &page); err != nil {
				return fetched, err
			}
		}
		fetched++

		params := pagination.Params{Page: p, PageSize: pageSize}
		if page.Total != total {
			return fetched, fmt.Errorf("%s page %d: total changed from %d to %d", path, p, total, page.Total)
		}
		if want := pagination.ExpectedLen(total, params); len(page.Data) != want {
			return fetched, fmt.Errorf("%s page %d: got %d rows, want %d", path, p, len(page.Data), want)
		}
		for _, row := range page.Data {
			key := string(row)
			if seen[key] {
				return fetched, fmt.Errorf("%s page %d: row repeated across pages", path, p)
			}
			seen[key] = true
		}
	}
	if len(seen) != total {
		return fetched, fmt.Errorf("%s: saw %d distinct rows, total is %d", path, len(seen), total)
	}

	logger.Get().Named("seed").Info(ctx, "listing verified",
		logger.String("path", path),
		logger.Int("total", total),
		logger.Int("pages", fetched))
	return fetched, nil
}

// runDriverIDs pages through /drivers and returns the ids of drivers whose
// name carries runID.
func runDriverIDs(ctx context.Context, client *HTTPClient, runID string, pageSize int) ([]int64, error) {
	var ids []int64
	for p := 1; ; p++ {
		var page model.Page[model.Driver]
		if err := client.GetJSON(ctx, pageURL("/drivers", p, pageSize), &page); err != nil {
			return nil, err
		}
		for _, d := range page.Data {
			if strings.Contains(d.Name, runID) {
				ids = append(ids, d.ID)
			}
		}
		if p >= page.TotalPages() {
			return ids, nil
		}
	}
}

func pageURL(path string, page, size int) string {
	return fmt.Sprintf("%s?%s=%d&%s=%d", path, pagination.PageKey, page, pagination.PageSizeKey, size)
}
