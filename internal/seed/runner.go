package seed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/paddock/pkg/logger"
)

// ErrSeedFailed is returned when a run could not complete.
var ErrSeedFailed = errors.New("seed failed")

// Run seeds the service at cfg.BaseURL and verifies its listings.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)
	log := logger.Get().Named("seed")
	stats := &Stats{
		RunID:     newRunID(),
		StartTime: time.Now(),
	}

	log.Info(ctx, "starting paddock seed",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("drivers", cfg.Drivers),
		logger.Int("gps", cfg.GPs),
		logger.Int("resultsPerGP", cfg.ResultsPerGP),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("%w: health check: %v", ErrSeedFailed, err)
	}

	// Step 2: Drivers and GPs are independent
	stats.Drivers.add(submitForms(ctx, cfg, client, "/drivers", driverForms(stats.RunID, cfg.Drivers)))
	dates := gpDates(stats.RunID, cfg.GPs)
	stats.GPs.add(submitForms(ctx, cfg, client, "/gps", gpForms(stats.RunID, dates)))

	// Step 3: Results need the generated driver ids
	if cfg.ResultsPerGP > 0 && cfg.GPs > 0 {
		ids, err := runDriverIDs(ctx, client, stats.RunID, cfg.PageSize)
		if err != nil {
			return stats, fmt.Errorf("%w: list drivers: %v", ErrSeedFailed, err)
		}
		if len(ids) > 0 {
			stats.Results.add(submitForms(ctx, cfg, client, "/results", resultForms(ids, dates, cfg.ResultsPerGP)))
		}
	}

	// Step 4: Verify every listing pages consistently
	for _, path := range []string{"/drivers", "/gps", "/results"} {
		n, err := verifyListing(ctx, client, path, cfg.PageSize)
		stats.PagesVerified += n
		if err != nil {
			return stats, fmt.Errorf("%w: verify %s: %v", ErrSeedFailed, path, err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if failed := stats.Drivers.Failed + stats.GPs.Failed + stats.Results.Failed; failed > 0 {
		return stats, fmt.Errorf("%w: %d submissions failed", ErrSeedFailed, failed)
	}
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readResponseBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	submitted := stats.Drivers.Submitted + stats.GPs.Submitted + stats.Results.Submitted
	if stats.Duration > 0 {
		perSecond = float64(submitted) / stats.Duration.Seconds()
	}

	logger.Get().Named("seed").Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("driversCreated", stats.Drivers.Succeeded),
		logger.Int("gpsCreated", stats.GPs.Succeeded),
		logger.Int("resultsCreated", stats.Results.Succeeded),
		logger.Int("conflicts", stats.Drivers.Conflicts+stats.GPs.Conflicts+stats.Results.Conflicts),
		logger.Int("invalid", stats.Drivers.Invalid+stats.GPs.Invalid+stats.Results.Invalid),
		logger.Int("pagesVerified", stats.PagesVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("submissionsPerSecond", perSecond))
}
