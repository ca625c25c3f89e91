package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrClosed        = errors.New("store closed")
	ErrMissingDSN    = errors.New("store dsn required")
)
