package plan

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// ErrAIDisabled is returned by assistants that are not configured.
var ErrAIDisabled = errors.New("ai integration is not configured")

// RequestKind selects the prompt sent to an assistant.
type RequestKind string

const (
	KindAnalysis  RequestKind = "analysis"
	KindDiagnosis RequestKind = "diagnosis"
	KindPlan      RequestKind = "plan"
	KindGoals     RequestKind = "goals"
)

var prompts = map[RequestKind]string{
	KindAnalysis:  "Analyse the following language profile and identify relevant clinical patterns:",
	KindDiagnosis: "Based on the data provided, suggest well-founded diagnostic hypotheses:",
	KindPlan:      "Write a detailed therapy plan for the following areas of difficulty:",
	KindGoals:     "Suggest SMART goals for intervention in the following areas:",
}

// Profile is the anonymised view of a case: no name, no identifiers.
type Profile struct {
	Age         string                    `json:"age"`
	Schooling   string                    `json:"schooling"`
	Competences map[string][]scoring.Score `json:"competences"`
	Averages    map[string]string         `json:"averages"`
	Zones       analysis.ZoneSummary      `json:"zones"`
}

// Payload is what an assistant receives.
type Payload struct {
	Kind    RequestKind `json:"kind"`
	Prompt  string      `json:"prompt"`
	Profile Profile     `json:"profile"`
}

// PreparePayload builds the anonymised request for c.
func PreparePayload(c *model.Case, kind RequestKind) (Payload, error) {
	prompt, ok := prompts[kind]
	if !ok {
		return Payload{}, fmt.Errorf("unknown request kind %q", kind)
	}
	p := Profile{
		Age:         c.Age,
		Schooling:   c.Schooling,
		Competences: make(map[string][]scoring.Score, taxonomy.DomainCount),
		Averages:    make(map[string]string, taxonomy.DomainCount),
	}
	for _, d := range taxonomy.Domains() {
		segs := taxonomy.DomainSegments(d.ID)
		vals := make([]scoring.Score, len(segs))
		for i, s := range segs {
			vals[i] = c.Competences[s]
		}
		p.Competences[d.Name] = vals
		if avg, ok := scoring.DomainAverage(c.Competences, d.ID, true); ok {
			p.Averages[d.Name] = strconv.FormatFloat(avg, 'f', 1, 64)
		}
	}
	p.Zones = analysis.Summary(analysis.Analyze(c.Competences, true))
	return Payload{Kind: kind, Prompt: prompt, Profile: p}, nil
}

// Response is an assistant's answer.
type Response struct {
	Success         bool         `json:"success"`
	Message         string       `json:"message"`
	FallbackToRules bool         `json:"fallback_to_rules"`
	Model           string       `json:"model,omitempty"`
	Suggestions     *Suggestions `json:"suggestions,omitempty"`
}

// Assistant generates plan content from a payload.
type Assistant interface {
	Generate(ctx context.Context, p Payload) (Response, error)
}

// Disabled is the assistant used when no provider is configured.
type Disabled struct{}

// Generate always declines and asks the caller to use the rules.
func (Disabled) Generate(context.Context, Payload) (Response, error) {
	return Response{Message: "AI integration is not configured", FallbackToRules: true}, ErrAIDisabled
}

// Generate asks a for a plan and falls back to the rule-based suggestions
// when it declines. Other assistant errors are returned.
func Generate(ctx context.Context, a Assistant, c *model.Case, r *analysis.Result, now time.Time) (*Plan, error) {
	p := New(c.ID, r, now)
	if a == nil {
		return p, nil
	}
	payload, err := PreparePayload(c, KindPlan)
	if err != nil {
		return nil, err
	}
	resp, err := a.Generate(ctx, payload)
	switch {
	case errors.Is(err, ErrAIDisabled) || (err == nil && resp.FallbackToRules):
		return p, nil
	case err != nil:
		return nil, fmt.Errorf("assistant: %w", err)
	}
	if resp.Suggestions != nil {
		p.Suggestions = *resp.Suggestions
	}
	return p, nil
}
