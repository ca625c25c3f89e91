package worker

import (
	"time"

	"github.com/okian/lingprofile/internal/radar"
	"github.com/okian/lingprofile/pkg/logger"
)

// Option configures an InMemoryWorker. Pool options are applied to every
// worker in the pool.
type Option func(*InMemoryWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithExportDir sets the directory export files are written to.
func WithExportDir(dir string) Option {
	return func(w *InMemoryWorker) {
		if dir != "" {
			w.dir = dir
		}
	}
}

// WithChartOptions configures the radar drawn for PNG exports.
func WithChartOptions(opts ...radar.Option) Option {
	return func(w *InMemoryWorker) {
		w.chartOpts = append(w.chartOpts, opts...)
	}
}

// WithResultFunc registers a callback run after each job.
func WithResultFunc(fn ResultFunc) Option {
	return func(w *InMemoryWorker) {
		w.onResult = fn
	}
}

// WithClock sets the time source stamped on generated reports.
func WithClock(now func() time.Time) Option {
	return func(w *InMemoryWorker) {
		if now != nil {
			w.now = now
		}
	}
}
