package service

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/pkg/logger"
)

// LoadWorkspace makes a saved case the current one and animates the chart
// to its profile.
func (s *Service) LoadWorkspace(ctx context.Context, id string) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	c, err := st.LoadCase(ctx, id)
	if err != nil {
		return nil, err
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	s.workspace, s.wsDirty = c, false
	s.chart.SetWritingActive(c.WritingStatus().Active)
	s.chart.SetData(&c.Competences)
	s.logger.Debug(ctx, "workspace loaded", logger.String("case_id", c.ID))
	return c.Clone(), nil
}

// Workspace returns a copy of the current case.
func (s *Service) Workspace() (*model.Case, error) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if s.workspace == nil {
		return nil, model.ErrNoCaseLoaded
	}
	return s.workspace.Clone(), nil
}

// SetWorkspaceScore changes one segment of the current case and animates
// only that petal. With auto save on, the case is persisted immediately;
// otherwise it stays unsaved until SaveWorkspace.
func (s *Service) SetWorkspaceScore(ctx context.Context, index int, score scoring.Score) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	autoSave := s.Settings().AutoSave

	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if s.workspace == nil {
		return nil, model.ErrNoCaseLoaded
	}
	if err := s.workspace.SetScore(index, score, s.now()); err != nil {
		return nil, err
	}
	s.wsDirty = true
	if err := s.chart.SetValue(index, score); err != nil {
		return nil, err
	}
	if autoSave {
		if err := st.SaveCase(ctx, s.workspace); err != nil {
			return nil, err
		}
		s.wsDirty = false
	}
	return s.workspace.Clone(), nil
}

// SaveWorkspace persists the current case.
func (s *Service) SaveWorkspace(ctx context.Context) (*model.Case, error) {
	st, err := s.running()
	if err != nil {
		return nil, err
	}
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if s.workspace == nil {
		return nil, model.ErrNoCaseLoaded
	}
	if err := st.SaveCase(ctx, s.workspace); err != nil {
		return nil, err
	}
	s.wsDirty = false
	return s.workspace.Clone(), nil
}

// WorkspacePNG encodes the chart's current frame, mid-animation included.
func (s *Service) WorkspacePNG(w io.Writer) error {
	if _, err := s.running(); err != nil {
		return err
	}
	s.wsMu.Lock()
	chart := s.chart
	s.wsMu.Unlock()
	return chart.EncodePNG(w)
}

// WorkspaceAnimating reports whether the chart still has frames to draw.
func (s *Service) WorkspaceAnimating() bool {
	if _, err := s.running(); err != nil {
		return false
	}
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return s.chart.Animating()
}

// storeCase runs write for case id under the workspace lock, then points
// the workspace at the stored case when it is the current one. Writes to a
// workspace case with unsaved edits fail with model.ErrUnsavedChanges.
func (s *Service) storeCase(id string, write func() (*model.Case, error)) (*model.Case, error) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	current := s.workspace != nil && s.workspace.ID == id
	if current && s.wsDirty {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsavedChanges, id)
	}
	c, err := write()
	if err != nil {
		return nil, err
	}
	if !current {
		return c, nil
	}
	s.workspace = c.Clone()
	s.chart.SetWritingActive(c.WritingStatus().Active)
	s.chart.SetData(&s.workspace.Competences)
	return c, nil
}
