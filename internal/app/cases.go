package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/adapters/repository"
	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

// Convert maps a raw test value to a competence and records the outcome.
func (s *Service) Convert(raw float64, scale scoring.Scale) scoring.Score {
	c := scoring.ConvertToCompetence(raw, scale)
	result := "null"
	if v, ok := c.Get(); ok {
		result = fmt.Sprint(v)
	}
	metrics.RecordConversion(string(scale), result)
	return c
}

// Analyze runs the clinical analysis and records its duration and the
// hypotheses raised.
func (s *Service) Analyze(v scoring.Vector, writingActive bool) *analysis.Result {
	start := time.Now()
	r := analysis.Analyze(v, writingActive)
	metrics.RecordAnalysis(float64(time.Since(start).Microseconds())/1000, r == nil)
	if r != nil {
		for _, h := range r.Hypotheses {
			metrics.RecordHypothesis(h.Name)
		}
	}
	return r
}

func (s *Service) ListCases(ctx context.Context) ([]*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	return st.ListCases(ctx)
}

func (s *Service) GetCase(ctx context.Context, id string) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	return st.LoadCase(ctx, id)
}

// SaveCase creates or replaces a case. A case without id gets one; an
// existing case keeps its creation time.
func (s *Service) SaveCase(ctx context.Context, c *model.Case) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: empty body", repository.ErrInvalidRecord)
	}
	now := s.now()
	c = c.Clone()
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		fresh := model.NewCase("", now)
		c.ID, c.CreatedAt = fresh.ID, now
		if c.Date == "" {
			c.Date = fresh.Date
		}
	} else if prev, err := st.LoadCase(ctx, c.ID); err == nil {
		c.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	} else if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.Tests == nil {
		c.Tests = []model.AppliedTest{}
	}
	c.ModifiedAt = now
	return s.storeCase(c.ID, func() (*model.Case, error) {
		return c, st.SaveCase(ctx, c)
	})
}

func (s *Service) DeleteCase(ctx context.Context, id string) error {
	st, err := s.running()
	if err != nil {
		return err
	}
	if err := st.DeleteCase(ctx, id); err != nil {
		return err
	}
	s.wsMu.Lock()
	if s.workspace != nil && s.workspace.ID == id {
		s.workspace, s.wsDirty = nil, false
		s.chart.SetData(nil)
	}
	s.wsMu.Unlock()
	return nil
}

// CreateDemoCase saves the demonstration case, replacing any earlier copy.
func (s *Service) CreateDemoCase(ctx context.Context) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	c := model.DemoCase(s.now())
	return s.storeCase(c.ID, func() (*model.Case, error) {
		return c, st.SaveCase(ctx, c)
	})
}

// mutateCase loads a case, applies fn and saves it back.
func (s *Service) mutateCase(ctx context.Context, id string, fn func(c *model.Case, now time.Time) error) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	return s.storeCase(id, func() (*model.Case, error) {
		c, err := st.LoadCase(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(c, s.now()); err != nil {
			return nil, err
		}
		if err := st.SaveCase(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	})
}

// SetScore sets one segment of a saved case. A null score clears it.
func (s *Service) SetScore(ctx context.Context, id string, index int, score scoring.Score) (*model.Case, error) {
	return s.mutateCase(ctx, id, func(c *model.Case, now time.Time) error {
		return c.SetScore(index, score, now)
	})
}

// ApplyTest records a test result on a case. An empty scale uses the
// test's own scale.
func (s *Service) ApplyTest(ctx context.Context, caseID, testID string, raw float64, scale scoring.Scale) (*model.Case, model.AppliedTest, error) {
	s.mu.RLock()
	reg := s.registry
	s.mu.RUnlock()
	if reg == nil {
		return nil, model.AppliedTest{}, ErrNotStarted
	}
	def, err := reg.Get(testID)
	if err != nil {
		return nil, model.AppliedTest{}, err
	}
	if scale == "" {
		scale = def.Scale
	}

	var applied model.AppliedTest
	c, err := s.mutateCase(ctx, caseID, func(c *model.Case, now time.Time) error {
		var err error
		applied, err = c.ApplyTest(def.Ref(), raw, scale, now)
		return err
	})
	if err != nil {
		return nil, model.AppliedTest{}, err
	}
	s.Convert(raw, scale)
	return c, applied, nil
}

// EditTest changes the raw value or scale of an applied test.
func (s *Service) EditTest(ctx context.Context, caseID, appliedID string, raw float64, scale scoring.Scale) (*model.Case, model.AppliedTest, error) {
	var applied model.AppliedTest
	c, err := s.mutateCase(ctx, caseID, func(c *model.Case, now time.Time) error {
		if scale == "" {
			for _, t := range c.Tests {
				if t.ID == appliedID {
					scale = t.Scale
				}
			}
		}
		var err error
		applied, err = c.EditTest(appliedID, raw, scale, now)
		return err
	})
	if err != nil {
		return nil, model.AppliedTest{}, err
	}
	return c, applied, nil
}

// RemoveTest deletes an applied test and recomputes its segments.
func (s *Service) RemoveTest(ctx context.Context, caseID, appliedID string) (*model.Case, error) {
	return s.mutateCase(ctx, caseID, func(c *model.Case, now time.Time) error {
		_, err := c.RemoveTest(appliedID, now)
		return err
	})
}

// SetResponse marks one item of a catalog subtask on a saved case.
func (s *Service) SetResponse(ctx context.Context, caseID, testID, taskID string, item int, state model.ResponseState) (*model.Case, error) {
	s.mu.RLock()
	reg := s.registry
	s.mu.RUnlock()
	if reg == nil {
		return nil, ErrNotStarted
	}
	def, err := reg.Get(testID)
	if err != nil {
		return nil, err
	}
	task, err := def.Task(taskID)
	if err != nil {
		return nil, err
	}
	return s.mutateCase(ctx, caseID, func(c *model.Case, now time.Time) error {
		return c.SetResponse(task, item, state, now)
	})
}

// Report bundles a saved case with its analysis and plan.
func (s *Service) Report(ctx context.Context, id string) (*export.Report, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	c, err := st.LoadCase(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := st.LoadPlan(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	r, err := export.NewReport(c, p, s.now())
	if err != nil {
		return nil, err
	}
	s.Analyze(c.Competences, r.Writing.Active)
	return r, nil
}

// GetPlan returns the saved plan, or an unsaved draft built from the
// current analysis.
func (s *Service) GetPlan(ctx context.Context, caseID string) (*plan.Plan, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	p, err := st.LoadPlan(ctx, caseID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	c, err := st.LoadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.draftPlan(ctx, c)
}

func (s *Service) draftPlan(ctx context.Context, c *model.Case) (*plan.Plan, error) {
	r := s.Analyze(c.Competences, c.WritingStatus().Active)
	return plan.Generate(ctx, plan.Disabled{}, c, r, s.now())
}

// SavePlan stores the case's plan. Fields set in patch (status, notes,
// sessions, suggestions) replace those of the saved plan or of a new draft.
func (s *Service) SavePlan(ctx context.Context, caseID string, patch *plan.Plan) (*plan.Plan, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	c, err := st.LoadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	p, err := st.LoadPlan(ctx, caseID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if p, err = s.draftPlan(ctx, c); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if patch != nil {
		switch patch.Status {
		case "":
		case plan.StatusDraft, plan.StatusActive, plan.StatusClosed:
			p.Status = patch.Status
		default:
			return nil, fmt.Errorf("%w: plan status %q", repository.ErrInvalidRecord, patch.Status)
		}
		if patch.Notes != "" {
			p.Notes = patch.Notes
		}
		if patch.Sessions != nil {
			p.Sessions = patch.Sessions
		}
		if len(patch.Areas) > 0 {
			p.Suggestions = patch.Suggestions
		}
	}
	p.ModifiedAt = s.now()
	if err := st.SavePlan(ctx, p); err != nil {
		return nil, err
	}

	if c.PlanID != p.ID {
		c.PlanID = p.ID
		if err := st.SaveCase(ctx, c); err != nil {
			s.logger.Warn(ctx, "plan saved but case link failed", logger.String("case_id", c.ID), logger.Error(err))
		}
		s.wsMu.Lock()
		if s.workspace != nil && s.workspace.ID == c.ID {
			s.workspace.PlanID = p.ID
		}
		s.wsMu.Unlock()
	}
	return p, nil
}

// Catalog lists system tests followed by custom tests.
func (s *Service) Catalog() []catalog.TestDefinition {
	s.mu.RLock()
	reg := s.registry
	s.mu.RUnlock()
	if reg == nil {
		return catalog.System()
	}
	return reg.All()
}

// CreateCustomTest validates, persists and registers a custom test.
func (s *Service) CreateCustomTest(ctx context.Context, in catalog.CustomInput) (catalog.TestDefinition, error) {
	st, err := s.running()
	if err != nil {
		return catalog.TestDefinition{}, err
	}
	d, err := catalog.NewCustom(in, s.now())
	if err != nil {
		return catalog.TestDefinition{}, err
	}
	if err := st.SaveCustomTest(ctx, d); err != nil {
		return catalog.TestDefinition{}, err
	}
	return d, s.registry.Put(d)
}

// UpdateCustomTest replaces the fields of a custom test and keeps its id
// and creation time.
func (s *Service) UpdateCustomTest(ctx context.Context, id string, in catalog.CustomInput) (catalog.TestDefinition, error) {
	st, err := s.running()
	if err != nil {
		return catalog.TestDefinition{}, err
	}
	prev, err := s.registry.Get(id)
	if err != nil {
		return catalog.TestDefinition{}, err
	}
	if !prev.Custom {
		return catalog.TestDefinition{}, catalog.ErrSystemTest
	}
	d, err := catalog.NewCustom(in, prev.CreatedAt)
	if err != nil {
		return catalog.TestDefinition{}, err
	}
	d.ID = prev.ID
	if err := st.SaveCustomTest(ctx, d); err != nil {
		return catalog.TestDefinition{}, err
	}
	return d, s.registry.Put(d)
}

func (s *Service) DeleteCustomTest(ctx context.Context, id string) error {
	st, err := s.running()
	if err != nil {
		return err
	}
	if err := s.registry.Delete(id); err != nil {
		return err
	}
	if err := st.DeleteCustomTest(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}
