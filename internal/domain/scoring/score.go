// Package scoring converts standardized test results into the 0-10
// competence scale and derives zones, radii and dimension averages from a
// competence vector. Every function here is pure.
package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// Competence bounds.
const (
	MinCompetence = 0
	MaxCompetence = 10
)

// Score is a nullable competence in [0,10]. The zero value is null.
type Score struct {
	v  int8
	ok bool
}

// Null is the unscored value.
var Null = Score{}

// NewScore returns a valid score or ErrScoreRange.
func NewScore(v int) (Score, error) {
	if v < MinCompetence || v > MaxCompetence {
		return Null, fmt.Errorf("%w: %d", ErrScoreRange, v)
	}
	return Score{v: int8(v), ok: true}, nil
}

// Clamp returns v limited to [0,10].
func Clamp(v int) Score {
	v = max(MinCompetence, min(MaxCompetence, v))
	return Score{v: int8(v), ok: true}
}

// Get returns the competence and whether it is set.
func (s Score) Get() (int, bool) { return int(s.v), s.ok }

// Valid reports whether s holds a competence.
func (s Score) Valid() bool { return s.ok }

// Int returns the competence, or 0 for null.
func (s Score) Int() int { return int(s.v) }

// Float returns the competence as float64, or NaN for null.
func (s Score) Float() float64 {
	if !s.ok {
		return math.NaN()
	}
	return float64(s.v)
}

func (s Score) String() string {
	if !s.ok {
		return "null"
	}
	return strconv.Itoa(int(s.v))
}

// MarshalJSON encodes null or the integer.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.ok {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(s.v))), nil
}

// UnmarshalJSON accepts null or an integer in [0,10].
func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Null
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode competence: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("%w: %v", ErrScoreNotInt, f)
	}
	v, err := NewScore(int(f))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Vector is the 40-entry competence vector, indexed by segment.
type Vector [taxonomy.SegmentCount]Score

// NewVector builds a fully scored vector from exactly 40 integers.
func NewVector(values ...int) (Vector, error) {
	var v Vector
	if len(values) != taxonomy.SegmentCount {
		return v, fmt.Errorf("%w: got %d", ErrVectorLength, len(values))
	}
	for i, x := range values {
		s, err := NewScore(x)
		if err != nil {
			return Vector{}, fmt.Errorf("segment %d: %w", i, err)
		}
		v[i] = s
	}
	return v, nil
}

// FillVector returns a vector with every segment set to s.
func FillVector(s Score) Vector {
	var v Vector
	for i := range v {
		v[i] = s
	}
	return v
}

// Empty reports whether every entry is null.
func (v Vector) Empty() bool {
	for _, s := range v {
		if s.ok {
			return false
		}
	}
	return true
}

// Scored counts non-null entries.
func (v Vector) Scored() int {
	n := 0
	for _, s := range v {
		if s.ok {
			n++
		}
	}
	return n
}

// Ints returns the entries as pointers, nil for null.
func (v Vector) Ints() []*int {
	out := make([]*int, len(v))
	for i, s := range v {
		if s.ok {
			x := int(s.v)
			out[i] = &x
		}
	}
	return out
}

// UnmarshalJSON requires exactly 40 entries.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var entries []Score
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if len(entries) != taxonomy.SegmentCount {
		return fmt.Errorf("%w: got %d", ErrVectorLength, len(entries))
	}
	copy(v[:], entries)
	return nil
}
