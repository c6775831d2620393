package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/paddock/internal/seed"
	"github.com/okian/paddock/pkg/logger"
)

// Default configuration constants.
const (
	defaultDrivers      = 200
	defaultGPs          = 24
	defaultResultsPerGP = 20
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		drivers      = flag.Int("drivers", defaultDrivers, "Number of drivers to create")
		gps          = flag.Int("gps", defaultGPs, "Number of GPs to create")
		resultsPerGP = flag.Int("results", defaultResultsPerGP, "Results recorded per GP")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		pageSize     = flag.Int("page-size", seed.DefaultPageSize, "Page size used to verify listings")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFormat    = flag.String("log-format", "text", "Log format: text or json")
		verbose      = flag.Bool("verbose", false, "Log every rejected form")
	)
	flag.Parse()

	if err := logger.InitWith(os.Stdout, *logFormat); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:      *baseURL,
		Drivers:      *drivers,
		GPs:          *gps,
		ResultsPerGP: *resultsPerGP,
		Workers:      *workers,
		PageSize:     *pageSize,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}

	if _, err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Seed failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
