package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

const (
	sqliteDriver = "sqlite"
	pgxDriver    = "pgx"
)

// Timestamps are stored as Unix nanoseconds so both dialects order them
// the same way without driver-specific time handling.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS cases (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		modified_at BIGINT NOT NULL,
		payload     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS cases_modified_idx ON cases (modified_at)`,
	`CREATE TABLE IF NOT EXISTS custom_tests (
		id         TEXT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		payload    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		case_id     TEXT PRIMARY KEY,
		id          TEXT NOT NULL,
		modified_at BIGINT NOT NULL,
		payload     TEXT NOT NULL
	)`,
}

// SQLStore persists records through database/sql. It runs on SQLite for
// the local single-user tool and on Postgres for a shared backend.
type SQLStore struct {
	db     *sql.DB
	driver string
	log    logger.Logger
}

// NewSQLStore opens the database and applies the schema.
func NewSQLStore(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingDSN, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == sqliteDriver {
		// SQLite serialises writers; one connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(o.maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver, log: o.log}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "store opened", logger.String("driver", driver))
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != pgxDriver {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) payload(ctx context.Context, query, kind, id string) ([]byte, error) {
	var b []byte
	err := s.db.QueryRowContext(ctx, s.rebind(query), id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return b, nil
}

func (s *SQLStore) payloads(ctx context.Context, query, kind string) (out [][]byte, err error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer func() {
		if cerr := rows.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func affectedOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	return nil
}

func (s *SQLStore) SaveCase(ctx context.Context, c *model.Case) (err error) {
	defer func(start time.Time) { observe("save_case", start, err) }(time.Now())
	if err = validateCase(c); err != nil {
		return err
	}
	b, err := encode("case", c)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO cases (id, name, modified_at, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, modified_at = excluded.modified_at, payload = excluded.payload`,
		c.ID, c.Name, c.ModifiedAt.UnixNano(), string(b))
	if err != nil {
		return fmt.Errorf("save case: %w", err)
	}
	return nil
}

func (s *SQLStore) LoadCase(ctx context.Context, id string) (c *model.Case, err error) {
	defer func(start time.Time) { observe("load_case", start, err) }(time.Now())
	b, err := s.payload(ctx, `SELECT payload FROM cases WHERE id = ?`, "case", id)
	if err != nil {
		return nil, err
	}
	return decodeCase(b)
}

func (s *SQLStore) ListCases(ctx context.Context) (out []*model.Case, err error) {
	defer func(start time.Time) { observe("list_cases", start, err) }(time.Now())
	bs, err := s.payloads(ctx, `SELECT payload FROM cases ORDER BY modified_at DESC, id`, "cases")
	if err != nil {
		return nil, err
	}
	out = make([]*model.Case, 0, len(bs))
	for _, b := range bs {
		c, err := decodeCase(b)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	metrics.UpdateCasesStored(len(out))
	return out, nil
}

func (s *SQLStore) DeleteCase(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_case", start, err) }(time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM cases WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if err = affectedOne(res, "case", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, s.rebind(`DELETE FROM plans WHERE case_id = ?`), id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) CountCases(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cases: %w", err)
	}
	return n, nil
}

func (s *SQLStore) SaveCustomTest(ctx context.Context, d catalog.TestDefinition) (err error) {
	defer func(start time.Time) { observe("save_test", start, err) }(time.Now())
	if err = d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	b, err := encode("test", d)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO custom_tests (id, created_at, payload) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET created_at = excluded.created_at, payload = excluded.payload`,
		d.ID, d.CreatedAt.UnixNano(), string(b))
	if err != nil {
		return fmt.Errorf("save test: %w", err)
	}
	return nil
}

func (s *SQLStore) ListCustomTests(ctx context.Context) (out []catalog.TestDefinition, err error) {
	defer func(start time.Time) { observe("list_tests", start, err) }(time.Now())
	bs, err := s.payloads(ctx, `SELECT payload FROM custom_tests ORDER BY created_at, id`, "tests")
	if err != nil {
		return nil, err
	}
	out = make([]catalog.TestDefinition, 0, len(bs))
	for _, b := range bs {
		d, err := decodeTest(b)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *SQLStore) DeleteCustomTest(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_test", start, err) }(time.Now())
	res, err := s.exec(ctx, `DELETE FROM custom_tests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	return affectedOne(res, "test", id)
}

func (s *SQLStore) SavePlan(ctx context.Context, p *plan.Plan) (err error) {
	defer func(start time.Time) { observe("save_plan", start, err) }(time.Now())
	if err = validatePlan(p); err != nil {
		return err
	}
	b, err := encode("plan", p)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, `INSERT INTO plans (case_id, id, modified_at, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT (case_id) DO UPDATE SET id = excluded.id, modified_at = excluded.modified_at, payload = excluded.payload`,
		p.CaseID, p.ID, p.ModifiedAt.UnixNano(), string(b))
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (s *SQLStore) LoadPlan(ctx context.Context, caseID string) (p *plan.Plan, err error) {
	defer func(start time.Time) { observe("load_plan", start, err) }(time.Now())
	b, err := s.payload(ctx, `SELECT payload FROM plans WHERE case_id = ?`, "plan", caseID)
	if err != nil {
		return nil, err
	}
	return decodePlan(b)
}

// Close closes the connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }
