package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/adapters/mq/queue"
	"github.com/okian/lingprofile/internal/adapters/repository"
	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrServe        = errors.New("http serve failed")
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = errors.New("not found")
)

// Error ties an operation name to a sentinel kind and an optional cause.
// errors.Is matches both the kind and the cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind classifies err as kind. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap adds op to err without changing its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

type errorClass struct {
	status int
	code   string
	kinds  []error
}

// errorClasses is checked in order; the first match wins.
var errorClasses = []errorClass{
	{http.StatusTooManyRequests, "backpressure", []error{ErrBackpressure, queue.ErrFull}},
	{http.StatusNotFound, "not_found", []error{
		ErrNotFound, repository.ErrNotFound, catalog.ErrTestNotFound, catalog.ErrTaskNotFound, model.ErrAppliedNotFound,
	}},
	{http.StatusForbidden, "forbidden", []error{catalog.ErrSystemTest}},
	{http.StatusConflict, "no_case_loaded", []error{model.ErrNoCaseLoaded}},
	{http.StatusConflict, "unsaved_changes", []error{model.ErrUnsavedChanges}},
	{http.StatusBadRequest, "bad_request", []error{
		ErrBadRequest,
		repository.ErrInvalidRecord,
		model.ErrMissingID, model.ErrSegmentRange, model.ErrInvalidValue,
		model.ErrNoSegments, model.ErrMissingFormat,
		model.ErrItemRange, model.ErrResponseState,
		catalog.ErrInvalidTest,
		export.ErrUnknownFormat, export.ErrEmptyDocument,
		scoring.ErrScoreRange, scoring.ErrScoreNotInt, scoring.ErrVectorLength,
		scoring.ErrUnknownScale, scoring.ErrUnknownDimension,
	}},
}

// classify maps err to an HTTP status and error code.
func classify(err error) (int, string) {
	for _, c := range errorClasses {
		for _, k := range c.kinds {
			if errors.Is(err, k) {
				return c.status, c.code
			}
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
