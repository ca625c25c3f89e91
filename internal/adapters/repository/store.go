// Package repository persists cases, custom tests and therapy plans.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/pkg/metrics"
)

// Store provides read/write access to saved work. Returned values are
// copies; mutating them does not change stored state.
type Store interface {
	// SaveCase inserts or replaces a case by id.
	SaveCase(ctx context.Context, c *model.Case) error
	// LoadCase returns ErrNotFound if the id is unknown.
	LoadCase(ctx context.Context, id string) (*model.Case, error)
	// ListCases returns all cases, most recently modified first.
	ListCases(ctx context.Context) ([]*model.Case, error)
	// DeleteCase removes a case and its plan.
	DeleteCase(ctx context.Context, id string) error
	CountCases(ctx context.Context) (int, error)

	SaveCustomTest(ctx context.Context, d catalog.TestDefinition) error
	// ListCustomTests returns custom tests oldest first.
	ListCustomTests(ctx context.Context) ([]catalog.TestDefinition, error)
	DeleteCustomTest(ctx context.Context, id string) error

	// SavePlan stores the plan of p.CaseID, replacing any previous one.
	SavePlan(ctx context.Context, p *plan.Plan) error
	// LoadPlan returns ErrNotFound if the case has no plan.
	LoadPlan(ctx context.Context, caseID string) (*plan.Plan, error)

	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open selects a store implementation by driver name.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemoryStore(ctx, opts...), nil
	case DriverSQLite:
		return NewSQLStore(ctx, sqliteDriver, dsn, opts...)
	case DriverPostgres, "pgx":
		return NewSQLStore(ctx, pgxDriver, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func validateCase(c *model.Case) error {
	if c == nil {
		return fmt.Errorf("%w: nil case", ErrInvalidRecord)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

func validatePlan(p *plan.Plan) error {
	if p == nil || strings.TrimSpace(p.CaseID) == "" {
		return fmt.Errorf("%w: plan without case", ErrInvalidRecord)
	}
	return nil
}

// observe records the outcome and latency of a store operation.
func observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
		metrics.RecordErrorByComponent("repository", "not_found")
	case err != nil:
		status = "error"
		metrics.RecordErrorByComponent("repository", op)
	}
	metrics.RecordCaseOperation(op, status, float64(time.Since(start).Microseconds())/1000)
}
