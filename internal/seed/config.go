// Package seed fills a running paddock service with generated drivers, GPs
// and results through the public form protocol, then checks that paginated
// listings are consistent.
package seed

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Drivers      int           // Number of drivers to create
	GPs          int           // Number of GPs to create
	ResultsPerGP int           // Results recorded per GP, capped at Drivers
	Workers      int           // Number of concurrent workers
	PageSize     int           // Page size used when verifying listings
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Log every failed submission
}

// Envelope is the mutation result returned by the service.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Tally counts the outcome of one batch of form submissions.
type Tally struct {
	Submitted int
	Succeeded int
	Invalid   int
	Conflicts int
	Failed    int
}

func (t *Tally) add(o Tally) {
	t.Submitted += o.Submitted
	t.Succeeded += o.Succeeded
	t.Invalid += o.Invalid
	t.Conflicts += o.Conflicts
	t.Failed += o.Failed
}

// Stats holds the results of a seeding run.
type Stats struct {
	RunID         string
	Drivers       Tally
	GPs           Tally
	Results       Tally
	PagesVerified int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
