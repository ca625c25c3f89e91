package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/pkg/metrics"
)

type row struct {
	id      string
	ordered time.Time
	payload []byte
}

// MemoryStore keeps records in maps guarded by one RWMutex. It is the
// default store and the one tests use.
type MemoryStore struct {
	mu     sync.RWMutex
	cases  map[string]row
	tests  map[string]row
	plans  map[string]row
	closed bool

	opts     options
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMemoryStore creates an empty store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &MemoryStore{
		cases:    make(map[string]row),
		tests:    make(map[string]row),
		plans:    make(map[string]row),
		opts:     o,
		stopChan: make(chan struct{}),
	}
	s.startMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				n := len(s.cases)
				s.mu.RUnlock()
				metrics.UpdateCasesStored(n)
			}
		}
	}()
}

// Close stops the metrics updater. Further calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopChan)
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) put(table map[string]row, r row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	table[r.id] = r
	return nil
}

func (s *MemoryStore) get(table map[string]row, id, kind string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	r, ok := table[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
	}
	return r.payload, nil
}

// sorted returns payloads ordered by time, newest first when desc is set,
// with id as the tie-breaker.
func (s *MemoryStore) sorted(table map[string]row, desc bool) ([][]byte, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	rows := make([]row, 0, len(table))
	for _, r := range table {
		rows = append(rows, r)
	}
	s.mu.RUnlock()

	slices.SortFunc(rows, func(a, b row) int {
		c := a.ordered.Compare(b.ordered)
		if desc {
			c = -c
		}
		return cmp.Or(c, cmp.Compare(a.id, b.id))
	})
	out := make([][]byte, len(rows))
	for i, r := range rows {
		out[i] = r.payload
	}
	return out, nil
}

func (s *MemoryStore) SaveCase(_ context.Context, c *model.Case) (err error) {
	defer func(start time.Time) { observe("save_case", start, err) }(time.Now())
	if err = validateCase(c); err != nil {
		return err
	}
	b, err := encode("case", c)
	if err != nil {
		return err
	}
	return s.put(s.cases, row{id: c.ID, ordered: c.ModifiedAt, payload: b})
}

func (s *MemoryStore) LoadCase(_ context.Context, id string) (c *model.Case, err error) {
	defer func(start time.Time) { observe("load_case", start, err) }(time.Now())
	b, err := s.get(s.cases, id, "case")
	if err != nil {
		return nil, err
	}
	return decodeCase(b)
}

func (s *MemoryStore) ListCases(_ context.Context) (out []*model.Case, err error) {
	defer func(start time.Time) { observe("list_cases", start, err) }(time.Now())
	payloads, err := s.sorted(s.cases, true)
	if err != nil {
		return nil, err
	}
	out = make([]*model.Case, 0, len(payloads))
	for _, b := range payloads {
		c, err := decodeCase(b)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) DeleteCase(_ context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_case", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.cases[id]; !ok {
		return fmt.Errorf("%w: case %q", ErrNotFound, id)
	}
	delete(s.cases, id)
	delete(s.plans, id)
	return nil
}

func (s *MemoryStore) CountCases(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.cases), nil
}

func (s *MemoryStore) SaveCustomTest(_ context.Context, d catalog.TestDefinition) (err error) {
	defer func(start time.Time) { observe("save_test", start, err) }(time.Now())
	if err = d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	b, err := encode("test", d)
	if err != nil {
		return err
	}
	return s.put(s.tests, row{id: d.ID, ordered: d.CreatedAt, payload: b})
}

func (s *MemoryStore) ListCustomTests(_ context.Context) (out []catalog.TestDefinition, err error) {
	defer func(start time.Time) { observe("list_tests", start, err) }(time.Now())
	payloads, err := s.sorted(s.tests, false)
	if err != nil {
		return nil, err
	}
	out = make([]catalog.TestDefinition, 0, len(payloads))
	for _, b := range payloads {
		d, err := decodeTest(b)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *MemoryStore) DeleteCustomTest(_ context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete_test", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.tests[id]; !ok {
		return fmt.Errorf("%w: test %q", ErrNotFound, id)
	}
	delete(s.tests, id)
	return nil
}

func (s *MemoryStore) SavePlan(_ context.Context, p *plan.Plan) (err error) {
	defer func(start time.Time) { observe("save_plan", start, err) }(time.Now())
	if err = validatePlan(p); err != nil {
		return err
	}
	b, err := encode("plan", p)
	if err != nil {
		return err
	}
	return s.put(s.plans, row{id: p.CaseID, ordered: p.ModifiedAt, payload: b})
}

func (s *MemoryStore) LoadPlan(_ context.Context, caseID string) (p *plan.Plan, err error) {
	defer func(start time.Time) { observe("load_plan", start, err) }(time.Now())
	b, err := s.get(s.plans, caseID, "plan")
	if err != nil {
		return nil, err
	}
	return decodePlan(b)
}
