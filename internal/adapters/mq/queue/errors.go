package queue

import "errors"

// ErrFull is returned by callers that surface a rejected Enqueue.
var ErrFull = errors.New("export queue is full")
