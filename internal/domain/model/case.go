// Package model contains the case aggregate passed between layers: the
// identification of the child, the competence vector and the tests that
// produced it.
package model

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// DateLayout is the layout of Case.Date.
const DateLayout = "2006-01-02"

// Case is one child's assessment.
type Case struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        string    `json:"age"`       // years;months, e.g. "7;6"
	Date       string    `json:"date"`      // assessment date, DateLayout
	Schooling  string    `json:"schooling"` // "pre", "1", "2", ...
	Evaluator  string    `json:"evaluator"`
	Therapist  string    `json:"therapist"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`

	Competences scoring.Vector `json:"competences"`
	Tests       []AppliedTest  `json:"applied_tests"`
	Responses   Responses      `json:"detailed_responses,omitempty"`
	Notes       string         `json:"notes"`
	PlanID      string         `json:"plan_id,omitempty"`
}

// AppliedTest is one administered standardized test.
type AppliedTest struct {
	ID         string        `json:"id"`
	TestID     string        `json:"test_id"`
	TestName   string        `json:"test_name"`
	RawValue   float64       `json:"raw_value"`
	Scale      scoring.Scale `json:"scale"`
	Competence scoring.Score `json:"competence"`
	Segments   []int         `json:"segments"`
	AppliedAt  time.Time     `json:"applied_at"`
}

// TestRef identifies the catalog test being applied.
type TestRef struct {
	ID       string
	Name     string
	Segments []int
}

// NewCase returns an empty case dated now. An empty id is replaced by a
// generated one.
func NewCase(id string, now time.Time) *Case {
	if id == "" {
		id = uuid.NewString()
	}
	return &Case{
		ID:         id,
		Date:       now.Format(DateLayout),
		CreatedAt:  now,
		ModifiedAt: now,
		Tests:      []AppliedTest{},
	}
}

// WritingStatus applies the writing gate to the case's age and schooling.
func (c *Case) WritingStatus() scoring.WritingStatus {
	return scoring.DetermineWritingActive(c.Age, c.Schooling)
}

// Validate checks identity and segment references of applied tests.
func (c *Case) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	for _, t := range c.Tests {
		if err := checkSegments(t.Segments); err != nil {
			return fmt.Errorf("applied test %s: %w", t.ID, err)
		}
	}
	return nil
}

// SetScore sets one segment directly, as a slider would.
func (c *Case) SetScore(index int, s scoring.Score, now time.Time) error {
	if !taxonomy.ValidIndex(index) {
		return fmt.Errorf("%w: %d", ErrSegmentRange, index)
	}
	c.Competences[index] = s
	c.ModifiedAt = now
	return nil
}

// ApplyTest converts raw on scale and folds it into every affected segment.
// A raw value that converts to null is rejected.
func (c *Case) ApplyTest(ref TestRef, raw float64, scale scoring.Scale, now time.Time) (AppliedTest, error) {
	if len(ref.Segments) == 0 {
		return AppliedTest{}, ErrNoSegments
	}
	if err := checkSegments(ref.Segments); err != nil {
		return AppliedTest{}, err
	}
	comp := scoring.ConvertToCompetence(raw, scale)
	if !comp.Valid() {
		return AppliedTest{}, fmt.Errorf("%w: %v", ErrInvalidValue, raw)
	}
	t := AppliedTest{
		ID:         uuid.NewString(),
		TestID:     ref.ID,
		TestName:   ref.Name,
		RawValue:   raw,
		Scale:      scale,
		Competence: comp,
		Segments:   slices.Clone(ref.Segments),
		AppliedAt:  now,
	}
	c.Tests = append(c.Tests, t)
	c.recompute(t.Segments)
	c.ModifiedAt = now
	return t, nil
}

// EditTest replaces the raw value and scale of an applied test.
func (c *Case) EditTest(id string, raw float64, scale scoring.Scale, now time.Time) (AppliedTest, error) {
	i := c.findTest(id)
	if i < 0 {
		return AppliedTest{}, fmt.Errorf("%w: %s", ErrAppliedNotFound, id)
	}
	comp := scoring.ConvertToCompetence(raw, scale)
	if !comp.Valid() {
		return AppliedTest{}, fmt.Errorf("%w: %v", ErrInvalidValue, raw)
	}
	c.Tests[i].RawValue = raw
	c.Tests[i].Scale = scale
	c.Tests[i].Competence = comp
	c.recompute(c.Tests[i].Segments)
	c.ModifiedAt = now
	return c.Tests[i], nil
}

// RemoveTest drops an applied test. Segments left without contributors
// become unscored.
func (c *Case) RemoveTest(id string, now time.Time) ([]int, error) {
	i := c.findTest(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrAppliedNotFound, id)
	}
	segs := c.Tests[i].Segments
	c.Tests = slices.Delete(c.Tests, i, i+1)
	c.recompute(segs)
	c.ModifiedAt = now
	return segs, nil
}

func (c *Case) findTest(id string) int {
	return slices.IndexFunc(c.Tests, func(t AppliedTest) bool { return t.ID == id })
}

// recompute sets each segment to the rounded mean of its contributing tests.
func (c *Case) recompute(segs []int) {
	for _, seg := range segs {
		sum, n := 0, 0
		for _, t := range c.Tests {
			if !slices.Contains(t.Segments, seg) {
				continue
			}
			if v, ok := t.Competence.Get(); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			c.Competences[seg] = scoring.Null
			continue
		}
		c.Competences[seg] = scoring.Clamp(int(math.Round(float64(sum) / float64(n))))
	}
}

func checkSegments(segs []int) error {
	for _, s := range segs {
		if !taxonomy.ValidIndex(s) {
			return fmt.Errorf("%w: %d", ErrSegmentRange, s)
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Case) Clone() *Case {
	out := *c
	out.Tests = make([]AppliedTest, len(c.Tests))
	for i, t := range c.Tests {
		t.Segments = slices.Clone(t.Segments)
		out.Tests[i] = t
	}
	out.Responses = c.Responses.clone()
	return &out
}

// demoVector is a mixed profile with its deepest deficits in Phonological
// and Pragmatic.
var demoVector = [taxonomy.SegmentCount]int{
	3, 2, 2, 1, 4, 3, 2, 1,
	5, 4, 4, 3, 5, 4, 4, 3,
	6, 5, 5, 4, 6, 5, 5, 4,
	6, 6, 5, 5, 6, 5, 5, 4,
	4, 3, 3, 2, 4, 3, 3, 2,
}

// DemoCase returns the example case used for demonstrations.
func DemoCase(now time.Time) *Case {
	c := NewCase("DEMO-001", now)
	c.Name = "Demonstration case"
	c.Age = "7;6"
	c.Schooling = "2"
	c.Evaluator = "Demo SLP"
	for i, v := range demoVector {
		c.Competences[i] = scoring.Clamp(v)
	}
	return c
}
