package scoring

import (
	"fmt"
	"strings"

	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// Dimension is a segment attribute a vector can be filtered by.
type Dimension string

const (
	ByDomain   Dimension = "domain"
	ByLevel    Dimension = "level"
	ByCircuit  Dimension = "circuit"
	ByModality Dimension = "modality"
)

// ParseDimension validates a dimension name.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case ByDomain, ByLevel, ByCircuit, ByModality:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

func (d Dimension) of(s taxonomy.Segment) int {
	switch d {
	case ByDomain:
		return int(s.Domain)
	case ByLevel:
		return int(s.Level)
	case ByCircuit:
		return int(s.Circuit)
	case ByModality:
		return int(s.Modality)
	}
	return -1
}

// Counts reports whether segment s takes part in computations under the
// writing gate.
func Counts(s taxonomy.Segment, writingActive bool) bool {
	return writingActive || s.Modality != taxonomy.Written
}

// AverageByDimension returns the mean of the non-null entries whose
// dimension equals value. Written segments are excluded when writing is
// inactive. ok is false when nothing remains.
func AverageByDimension(v Vector, dim Dimension, value int, writingActive bool) (avg float64, ok bool) {
	sum, n := 0, 0
	for i, seg := range taxonomy.Segments() {
		c, set := v[i].Get()
		if !set || dim.of(seg) != value || !Counts(seg, writingActive) {
			continue
		}
		sum += c
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// DomainAverage is AverageByDimension over one domain.
func DomainAverage(v Vector, d taxonomy.Domain, writingActive bool) (float64, bool) {
	return AverageByDimension(v, ByDomain, int(d), writingActive)
}
