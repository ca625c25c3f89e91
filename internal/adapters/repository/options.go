package repository

import (
	"time"

	"github.com/okian/lingprofile/pkg/logger"
)

type options struct {
	metricsUpdateInterval time.Duration
	maxOpenConns          int
	log                   logger.Logger
}

func defaultOptions() options {
	return options{
		metricsUpdateInterval: 5 * time.Second,
		maxOpenConns:          4,
		log:                   logger.Nop(),
	}
}

// Option configures a store.
type Option func(*options)

// WithMetricsUpdateInterval sets how often the stored-case gauge is refreshed.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.metricsUpdateInterval = interval
		}
	}
}

// WithMaxOpenConns caps the SQL connection pool.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
