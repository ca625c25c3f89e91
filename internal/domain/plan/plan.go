// Package plan turns an analysis into a draft therapy plan using a fixed
// per-domain knowledge base, and prepares the anonymised payload for an
// optional external assistant.
package plan

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lingprofile/internal/domain/analysis"
)

const (
	perDomainItems     = 2
	specificGoalsLimit = 3
)

// Status of a plan.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Suggestions are the rule-based recommendations.
type Suggestions struct {
	Areas         []string `json:"areas"`
	GeneralGoals  []string `json:"general_goals"`
	SpecificGoals []string `json:"specific_goals"`
	Strategies    []string `json:"strategies"`
	Materials     []string `json:"materials"`
}

// Plan is a therapy plan attached to a case.
type Plan struct {
	ID         string    `json:"id"`
	CaseID     string    `json:"case_id"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	Status     Status    `json:"status"`
	Suggestions
	Sessions []Session        `json:"sessions"`
	Notes    string           `json:"notes"`
	Basis    *analysis.Result `json:"basis,omitempty"`
}

// Session records one therapy session against the plan.
type Session struct {
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

// Suggest derives recommendations from r. A nil result yields the defaults.
func Suggest(r *analysis.Result) Suggestions {
	var s Suggestions
	if r != nil {
		for _, d := range r.Domains {
			if !d.Affected {
				continue
			}
			g, ok := knowledge[d.Domain]
			if !ok {
				continue
			}
			s.Areas = append(s.Areas, head(g.Areas)...)
			s.GeneralGoals = append(s.GeneralGoals, head(g.Goals)...)
			s.Strategies = append(s.Strategies, head(g.Strategies)...)
			s.Materials = append(s.Materials, head(g.Materials)...)
		}
		for i, p := range r.Priorities {
			if i == specificGoalsLimit {
				break
			}
			s.SpecificGoals = append(s.SpecificGoals, fmt.Sprintf("Improve %s at the %s level in the %s circuit (%s)",
				p.Path.Domain, p.Path.Level, p.Path.Circuit, p.Path.Modality))
		}
	}
	s.Areas = orDefault(dedupe(s.Areas), "More detailed assessment needed")
	s.GeneralGoals = orDefault(dedupe(s.GeneralGoals), "Set goals after a complete assessment")
	s.SpecificGoals = orDefault(s.SpecificGoals, "Define after further assessment")
	s.Strategies = orDefault(dedupe(s.Strategies), "Select strategies once goals are set")
	s.Materials = orDefault(dedupe(s.Materials), "Materials to be defined")
	return s
}

// New creates a draft plan for a case from its analysis.
func New(caseID string, r *analysis.Result, now time.Time) *Plan {
	return &Plan{
		ID:          "plan-" + uuid.NewString(),
		CaseID:      caseID,
		CreatedAt:   now,
		ModifiedAt:  now,
		Status:      StatusDraft,
		Suggestions: Suggest(r),
		Sessions:    []Session{},
		Basis:       r,
	}
}

func head(items []string) []string {
	return items[:min(perDomainItems, len(items))]
}

// dedupe drops repeated entries and keeps the first occurrence order.
func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}

func orDefault(items []string, fallback string) []string {
	if len(items) == 0 {
		return []string{fallback}
	}
	return items
}
