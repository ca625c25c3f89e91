// Package catalog lists the standardized tests a clinician can apply and
// the segments each one scores into. System tests are fixed; custom tests
// are created by the user and persisted by the store.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// Sentinel errors for catalog operations.
var (
	ErrTestNotFound = errors.New("test not found")
	ErrInvalidTest  = errors.New("invalid test definition")
	ErrSystemTest   = errors.New("system tests cannot be modified")
	ErrTaskNotFound = errors.New("subtask not found")
)

// Subtask is one scored part of a test.
type Subtask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

// TestDefinition describes a standardized test.
type TestDefinition struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Scale       scoring.Scale   `json:"scale"`
	Domain      taxonomy.Domain `json:"domain"`
	Segments    []int           `json:"segments"`
	Description string          `json:"description"`
	Subtasks    []Subtask       `json:"subtasks"`
	Custom      bool            `json:"custom"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
}

// Ref returns what a case needs to apply the test.
func (d TestDefinition) Ref() model.TestRef {
	return model.TestRef{ID: d.ID, Name: d.Name, Segments: slices.Clone(d.Segments)}
}

// Task returns the subtask id as a response target.
func (d TestDefinition) Task(id string) (model.TaskRef, error) {
	for _, t := range d.Subtasks {
		if t.ID == id {
			return model.TaskRef{TestID: d.ID, TaskID: t.ID, ItemCount: t.ItemCount}, nil
		}
	}
	return model.TaskRef{}, fmt.Errorf("%w: %s/%s", ErrTaskNotFound, d.ID, id)
}

// Validate checks name, scale and segments.
func (d TestDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTest)
	}
	if _, err := scoring.ParseScale(string(d.Scale)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTest, err)
	}
	if !d.Domain.Valid() {
		return fmt.Errorf("%w: domain %d", ErrInvalidTest, d.Domain)
	}
	if len(d.Segments) == 0 {
		return fmt.Errorf("%w: at least one segment is required", ErrInvalidTest)
	}
	for _, s := range d.Segments {
		if !taxonomy.ValidIndex(s) {
			return fmt.Errorf("%w: segment %d", ErrInvalidTest, s)
		}
	}
	return nil
}

func general(items int) []Subtask {
	return []Subtask{{ID: "general", Name: "General assessment", ItemCount: items}}
}

var system = []TestDefinition{
	{ID: "tff-alpe", Name: "TFF-ALPE", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{0, 1}, Description: "Oral phonology, articulation",
		Subtasks: []Subtask{{"rep", "Word repetition", 30}, {"nom", "Naming", 30}, {"spo", "Spontaneous speech", 10}}},
	{ID: "tav", Name: "TAV", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{0, 1}, Description: "Phonological assessment",
		Subtasks: general(50)},
	{ID: "clcp-pe", Name: "CLCP-PE", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{0, 1}, Description: "Auditory discrimination",
		Subtasks: []Subtask{{"disc", "Discrimination", 40}}},
	{ID: "confira", Name: "ConF.IRA", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{4, 5}, Description: "Phonological awareness",
		Subtasks: []Subtask{{"syl", "Syllable segmentation", 10}, {"rhy", "Rhymes", 10}, {"pho", "Phonemic awareness", 10}}},
	{ID: "alepe-cf", Name: "ALEPE-CF", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{4, 5, 6, 7}, Description: "Phonological awareness",
		Subtasks: []Subtask{{"seg", "Segmentation", 12}, {"syn", "Synthesis", 12}, {"del", "Deletion", 12}}},
	{ID: "alepe-read", Name: "ALEPE-Reading", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{2, 3, 6, 7}, Description: "Reading",
		Subtasks: []Subtask{{"words", "Word reading", 40}, {"pseudo", "Pseudoword reading", 20}}},
	{ID: "alepe-write", Name: "ALEPE-Writing", Scale: scoring.Percentile, Domain: taxonomy.Phonological, Segments: []int{2, 3, 6, 7}, Description: "Writing",
		Subtasks: []Subtask{{"dict", "Word dictation", 30}, {"pseudo", "Pseudoword dictation", 15}}},

	{ID: "gol-e-morph", Name: "GOL-E Morphology", Scale: scoring.Percentile, Domain: taxonomy.Morphological, Segments: []int{8, 9}, Description: "Derivational and inflectional morphology",
		Subtasks: []Subtask{{"der", "Derivation", 20}, {"infl", "Inflection", 20}}},
	{ID: "talc-morpho", Name: "TALC-Morphosyntax", Scale: scoring.Percentile, Domain: taxonomy.Morphological, Segments: []int{8, 9, 16, 17}, Description: "Morphosyntax",
		Subtasks: general(30)},

	{ID: "sintacs-comp", Name: "Sin:TACS Comprehension", Scale: scoring.IQ, Domain: taxonomy.Syntactic, Segments: []int{16}, Description: "Syntactic comprehension",
		Subtasks: []Subtask{{"simple", "Simple sentences", 15}, {"complex", "Complex sentences", 15}}},
	{ID: "sintacs-prod", Name: "Sin:TACS Production", Scale: scoring.IQ, Domain: taxonomy.Syntactic, Segments: []int{17}, Description: "Syntactic production",
		Subtasks: []Subtask{{"rep", "Sentence repetition", 20}, {"compl", "Sentence completion", 10}}},
	{ID: "sintacs-aware", Name: "Sin:TACS Awareness", Scale: scoring.IQ, Domain: taxonomy.Syntactic, Segments: []int{20, 21}, Description: "Syntactic awareness",
		Subtasks: []Subtask{{"general", "Grammaticality judgement", 30}}},

	{ID: "tas", Name: "TAS", Scale: scoring.Percentile, Domain: taxonomy.Semantic, Segments: []int{24, 25}, Description: "Semantic assessment",
		Subtasks: []Subtask{{"def", "Definitions", 20}, {"cat", "Categorization", 20}}},
	{ID: "talc-sem", Name: "TALC-Semantics", Scale: scoring.Percentile, Domain: taxonomy.Semantic, Segments: []int{24, 25}, Description: "Lexical semantics",
		Subtasks: general(40)},
	{ID: "tip", Name: "TIP", Scale: scoring.Percentile, Domain: taxonomy.Semantic, Segments: []int{24, 25, 28, 29}, Description: "Word identification",
		Subtasks: []Subtask{{"general", "Identification", 60}}},

	{ID: "retell-comp", Name: "(RE)TELL Comprehension", Scale: scoring.Percentile, Domain: taxonomy.Pragmatic, Segments: []int{32, 36}, Description: "Narrative comprehension",
		Subtasks: []Subtask{{"lit", "Literal comprehension", 10}, {"inf", "Inferences", 10}}},
	{ID: "retell-prod", Name: "(RE)TELL Production", Scale: scoring.Percentile, Domain: taxonomy.Pragmatic, Segments: []int{33, 37}, Description: "Narrative production",
		Subtasks: []Subtask{{"str", "Structure", 10}, {"coh", "Cohesion", 10}}},
	{ID: "topl", Name: "TOPL-2", Scale: scoring.Percentile, Domain: taxonomy.Pragmatic, Segments: []int{32, 33}, Description: "Pragmatic language",
		Subtasks: general(43)},
}

// System returns a copy of the built-in tests.
func System() []TestDefinition {
	out := make([]TestDefinition, len(system))
	for i, d := range system {
		out[i] = d.clone()
	}
	return out
}

func (d TestDefinition) clone() TestDefinition {
	d.Segments = slices.Clone(d.Segments)
	d.Subtasks = slices.Clone(d.Subtasks)
	return d
}

// CustomInput holds the user-provided fields of a custom test. Zero fields
// take defaults.
type CustomInput struct {
	Name        string          `json:"name"`
	Scale       scoring.Scale   `json:"scale"`
	Domain      taxonomy.Domain `json:"domain"`
	Segments    []int           `json:"segments"`
	Description string          `json:"description"`
	Subtasks    []Subtask       `json:"subtasks"`
}

// NewCustom builds and validates a custom test definition.
func NewCustom(in CustomInput, now time.Time) (TestDefinition, error) {
	d := TestDefinition{
		ID:          "custom-" + uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Scale:       in.Scale,
		Domain:      in.Domain,
		Segments:    slices.Clone(in.Segments),
		Description: in.Description,
		Subtasks:    slices.Clone(in.Subtasks),
		Custom:      true,
		CreatedAt:   now,
	}
	if d.Name == "" {
		d.Name = "New test"
	}
	if d.Scale == "" {
		d.Scale = scoring.Percentile
	}
	if len(d.Subtasks) == 0 {
		d.Subtasks = general(10)
	}
	if err := d.Validate(); err != nil {
		return TestDefinition{}, err
	}
	return d, nil
}

// Registry merges system and custom tests. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]TestDefinition
}

// NewRegistry returns a registry seeded with custom tests.
func NewRegistry(custom ...TestDefinition) *Registry {
	r := &Registry{custom: make(map[string]TestDefinition, len(custom))}
	for _, d := range custom {
		r.custom[d.ID] = d.clone()
	}
	return r
}

// All returns system tests followed by custom tests in creation order.
func (r *Registry) All() []TestDefinition {
	out := System()
	r.mu.RLock()
	custom := make([]TestDefinition, 0, len(r.custom))
	for _, d := range r.custom {
		custom = append(custom, d.clone())
	}
	r.mu.RUnlock()
	slices.SortFunc(custom, func(a, b TestDefinition) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return append(out, custom...)
}

// Get finds a test by id.
func (r *Registry) Get(id string) (TestDefinition, error) {
	for _, d := range system {
		if d.ID == id {
			return d.clone(), nil
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.custom[id]; ok {
		return d.clone(), nil
	}
	return TestDefinition{}, fmt.Errorf("%w: %s", ErrTestNotFound, id)
}

func isSystem(id string) bool {
	return slices.ContainsFunc(system, func(d TestDefinition) bool { return d.ID == id })
}

// Put adds or replaces a custom test.
func (r *Registry) Put(d TestDefinition) error {
	if isSystem(d.ID) || !d.Custom {
		return ErrSystemTest
	}
	if err := d.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.custom[d.ID] = d.clone()
	r.mu.Unlock()
	return nil
}

// Delete removes a custom test.
func (r *Registry) Delete(id string) error {
	if isSystem(id) {
		return ErrSystemTest
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.custom[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTestNotFound, id)
	}
	delete(r.custom, id)
	return nil
}
