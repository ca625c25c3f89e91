// Package smoke drives a running service end to end over HTTP: it saves
// generated cases, applies catalog tests, requests exports concurrently and
// verifies what comes back.
package smoke

import (
	"runtime"
	"time"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Cases        int           // Number of cases to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Format       string        // Export format requested for every case
	PollInterval time.Duration // Delay between export status checks
	Verbose      bool          // Log every request
}

// DefaultConfig returns the settings used when flags are not given.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "http://localhost:9080",
		Cases:        100,
		Workers:      runtime.NumCPU() * 2,
		Timeout:      30 * time.Second,
		Format:       "csv",
		PollInterval: 100 * time.Millisecond,
	}
}

// Stats holds run statistics.
type Stats struct {
	CasesGenerated   int
	CasesSaved       int
	TestsApplied     int
	ExportsSubmitted int
	ExportsDuplicate int
	ExportsRejected  int
	ExportsDone      int
	ExportsFailed    int
	Mismatches       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
