// Package analysis derives clinical observations from a competence vector:
// affected domains, asymmetry patterns, diagnostic hypotheses and ranked
// intervention priorities. Analyze is pure and deterministic.
package analysis

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// Fixed clinical thresholds.
const (
	affectedBelow    = 4.0
	asymmetryOver    = 1.5
	oralDeficitBelow = 4.0
	literacyBelow    = 4
	speechSoundBelow = 3.0
	priorityBelow    = 5
	urgentBelow      = 3
	maxPriorityItems = 6
)

// literacySegments are the Phonological production segments that the
// reading and writing tasks of the catalog score into.
var literacySegments = [...]int{2, 3, 6, 7}

// languageDomains are the domains whose deficit with a low oral average
// indicates a language development disorder.
var languageDomains = [...]taxonomy.Domain{
	taxonomy.Phonological, taxonomy.Morphological, taxonomy.Syntactic, taxonomy.Semantic,
}

// Average is a nullable mean.
type Average struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func avg(v float64, ok bool) Average { return Average{Value: v, Valid: ok} }

// Below reports whether the average exists and is under limit.
func (a Average) Below(limit float64) bool { return a.Valid && a.Value < limit }

// DomainAverage is one domain's mean and zone.
type DomainAverage struct {
	Domain   taxonomy.Domain `json:"domain"`
	Name     string          `json:"name"`
	Average  Average         `json:"average"`
	Zone     scoring.Zone    `json:"zone"`
	Affected bool            `json:"affected"`
}

// Dimensions are the cross-domain averages.
type Dimensions struct {
	Oral          Average `json:"oral"`
	Written       Average `json:"written"`
	Comprehension Average `json:"comprehension"`
	Expression    Average `json:"expression"`
	Implicit      Average `json:"implicit"`
	Explicit      Average `json:"explicit"`
}

// PatternKind classifies a pattern.
type PatternKind string

const (
	PatternDeficit  PatternKind = "deficit"
	PatternModality PatternKind = "modality"
	PatternCircuit  PatternKind = "circuit"
	PatternLevel    PatternKind = "level"
	PatternBalanced PatternKind = "balanced"
)

// Pattern is a detected profile shape. Affected names the weaker side of an
// asymmetry; Domains lists the domains of a deficit.
type Pattern struct {
	Kind     PatternKind `json:"kind"`
	Domains  []string    `json:"domains,omitempty"`
	Affected string      `json:"affected,omitempty"`
	Delta    float64     `json:"delta,omitempty"`
}

// Message renders the pattern for display.
func (p Pattern) Message() string {
	switch p.Kind {
	case PatternDeficit:
		return "Affected domains: " + strings.Join(p.Domains, ", ")
	case PatternModality:
		return fmt.Sprintf("%s modality more affected (Δ %.1f)", p.Affected, p.Delta)
	case PatternCircuit:
		return fmt.Sprintf("%s circuit more affected (Δ %.1f)", p.Affected, p.Delta)
	case PatternLevel:
		return fmt.Sprintf("%s level more affected (Δ %.1f)", p.Affected, p.Delta)
	}
	return "Relatively balanced profile"
}

// Confidence grades a hypothesis.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceProbable Confidence = "probable"
	ConfidenceConsider Confidence = "consider"
	ConfidenceTypical  Confidence = "typical"
)

// Hypothesis names.
const (
	HypothesisLDD         = "Language Development Disorder"
	HypothesisDyslexia    = "Dyslexia/Dysorthography"
	HypothesisLDDLiteracy = "LDD with literacy impact"
	HypothesisPragmatic   = "Pragmatic Disorder"
	HypothesisSpeechSound = "Speech Sound Disorder"
	HypothesisTypical     = "Typical, no indicators"
)

// Hypothesis is a candidate diagnosis.
type Hypothesis struct {
	Name       string     `json:"name"`
	Confidence Confidence `json:"confidence"`
}

// Urgency tags a priority.
type Urgency string

const (
	Urgent   Urgency = "urgent"
	Priority Urgency = "priority"
)

// PriorityItem is one segment recommended for intervention.
type PriorityItem struct {
	Segment    int           `json:"segment"`
	Code       string        `json:"code"`
	Path       taxonomy.Path `json:"path"`
	Competence int           `json:"competence"`
	Urgency    Urgency       `json:"urgency"`
}

// Result is the full analysis of a vector.
type Result struct {
	WritingActive   bool            `json:"writing_active"`
	Domains         []DomainAverage `json:"domains"`
	AffectedDomains []string        `json:"affected_domains"`
	Dimensions      Dimensions      `json:"dimensions"`
	Patterns        []Pattern       `json:"patterns"`
	Hypotheses      []Hypothesis    `json:"hypotheses"`
	Priorities      []PriorityItem  `json:"priorities"`
}

// Analyze returns nil when every entry of v is null.
func Analyze(v scoring.Vector, writingActive bool) *Result {
	if v.Empty() {
		return nil
	}
	r := &Result{WritingActive: writingActive}
	r.Domains = domainAverages(v, writingActive)
	for _, d := range r.Domains {
		if d.Affected {
			r.AffectedDomains = append(r.AffectedDomains, d.Name)
		}
	}
	r.Dimensions = dimensionAverages(v, writingActive)
	r.Patterns = detectPatterns(r)
	r.Hypotheses = generateHypotheses(v, r)
	r.Priorities = rankPriorities(v, writingActive)
	return r
}

func domainAverages(v scoring.Vector, writingActive bool) []DomainAverage {
	out := make([]DomainAverage, 0, taxonomy.DomainCount)
	for _, info := range taxonomy.Domains() {
		a := avg(scoring.DomainAverage(v, info.ID, writingActive))
		zone := scoring.ZoneNone
		if a.Valid {
			zone = scoring.ZoneOf(a.Value)
		}
		out = append(out, DomainAverage{
			Domain:   info.ID,
			Name:     info.Name,
			Average:  a,
			Zone:     zone,
			Affected: a.Below(affectedBelow),
		})
	}
	return out
}

func dimensionAverages(v scoring.Vector, writingActive bool) Dimensions {
	by := func(dim scoring.Dimension, value int) Average {
		return avg(scoring.AverageByDimension(v, dim, value, writingActive))
	}
	return Dimensions{
		Oral:          by(scoring.ByModality, int(taxonomy.Oral)),
		Written:       by(scoring.ByModality, int(taxonomy.Written)),
		Comprehension: by(scoring.ByCircuit, int(taxonomy.Comprehension)),
		Expression:    by(scoring.ByCircuit, int(taxonomy.Expression)),
		Implicit:      by(scoring.ByLevel, int(taxonomy.Implicit)),
		Explicit:      by(scoring.ByLevel, int(taxonomy.Explicit)),
	}
}

// asymmetry names the weaker of two sides when they differ by more than the
// threshold.
func asymmetry(kind PatternKind, a, b Average, aName, bName string) (Pattern, bool) {
	if !a.Valid || !b.Valid {
		return Pattern{}, false
	}
	switch {
	case a.Value-b.Value > asymmetryOver:
		return Pattern{Kind: kind, Affected: bName, Delta: a.Value - b.Value}, true
	case b.Value-a.Value > asymmetryOver:
		return Pattern{Kind: kind, Affected: aName, Delta: b.Value - a.Value}, true
	}
	return Pattern{}, false
}

func detectPatterns(r *Result) []Pattern {
	var out []Pattern
	if len(r.AffectedDomains) > 0 {
		out = append(out, Pattern{Kind: PatternDeficit, Domains: slices.Clone(r.AffectedDomains)})
	}
	d := r.Dimensions
	if r.WritingActive {
		if p, ok := asymmetry(PatternModality, d.Oral, d.Written, "Oral", "Written"); ok {
			out = append(out, p)
		}
	}
	if p, ok := asymmetry(PatternCircuit, d.Comprehension, d.Expression, "Comprehension", "Expression"); ok {
		out = append(out, p)
	}
	// Only an explicit level weaker than the implicit one is reported.
	if d.Implicit.Valid && d.Explicit.Valid && d.Implicit.Value-d.Explicit.Value > asymmetryOver {
		out = append(out, Pattern{Kind: PatternLevel, Affected: "Explicit", Delta: d.Implicit.Value - d.Explicit.Value})
	}
	if len(out) == 0 {
		out = append(out, Pattern{Kind: PatternBalanced})
	}
	return out
}

func generateHypotheses(v scoring.Vector, r *Result) []Hypothesis {
	var out []Hypothesis
	oral := r.Dimensions.Oral

	languageAffected := false
	for _, d := range languageDomains {
		if r.Domains[d].Affected {
			languageAffected = true
			break
		}
	}
	ldd := languageAffected && oral.Below(oralDeficitBelow)
	if ldd {
		out = append(out, Hypothesis{Name: HypothesisLDD, Confidence: ConfidenceHigh})
	}

	literacy := literacyAffected(v, r.WritingActive)
	if literacy && (!oral.Valid || oral.Value >= oralDeficitBelow) {
		out = append(out, Hypothesis{Name: HypothesisDyslexia, Confidence: ConfidenceConsider})
	}
	if ldd && literacy {
		out = append(out, Hypothesis{Name: HypothesisLDDLiteracy, Confidence: ConfidenceProbable})
	}

	if r.Domains[taxonomy.Pragmatic].Average.Below(affectedBelow) {
		out = append(out, Hypothesis{Name: HypothesisPragmatic, Confidence: ConfidenceConsider})
	}

	if r.Domains[taxonomy.Phonological].Average.Below(speechSoundBelow) && len(r.AffectedDomains) == 1 {
		out = append(out, Hypothesis{Name: HypothesisSpeechSound, Confidence: ConfidenceConsider})
	}

	if len(out) == 0 {
		out = append(out, Hypothesis{Name: HypothesisTypical, Confidence: ConfidenceTypical})
	}
	return out
}

// literacyAffected reports a literacy segment below 4. Written segments
// count only while writing is active.
func literacyAffected(v scoring.Vector, writingActive bool) bool {
	for _, i := range literacySegments {
		seg, _ := taxonomy.SegmentAt(i)
		if !scoring.Counts(seg, writingActive) {
			continue
		}
		if c, ok := v[i].Get(); ok && c < literacyBelow {
			return true
		}
	}
	return false
}

func rankPriorities(v scoring.Vector, writingActive bool) []PriorityItem {
	var items []PriorityItem
	for i, seg := range taxonomy.Segments() {
		c, ok := v[i].Get()
		if !ok || c >= priorityBelow || !scoring.Counts(seg, writingActive) {
			continue
		}
		u := Priority
		if c < urgentBelow {
			u = Urgent
		}
		items = append(items, PriorityItem{
			Segment:    i,
			Code:       seg.Code(),
			Path:       seg.Path(),
			Competence: c,
			Urgency:    u,
		})
	}
	slices.SortStableFunc(items, func(a, b PriorityItem) int { return a.Competence - b.Competence })
	if len(items) > maxPriorityItems {
		items = items[:maxPriorityItems]
	}
	return items
}

// ZoneSummary groups domains by the zone of their average.
type ZoneSummary struct {
	Red    []string `json:"red"`
	Yellow []string `json:"yellow"`
	Green  []string `json:"green"`
}

// Summary groups the analysed domains into zones. Unscored domains are left out.
func Summary(r *Result) ZoneSummary {
	var s ZoneSummary
	if r == nil {
		return s
	}
	for _, d := range r.Domains {
		switch d.Zone {
		case scoring.ZoneRed:
			s.Red = append(s.Red, d.Name)
		case scoring.ZoneYellow:
			s.Yellow = append(s.Yellow, d.Name)
		case scoring.ZoneGreen:
			s.Green = append(s.Green, d.Name)
		}
	}
	return s
}

// Round1 rounds to one decimal for display.
func Round1(x float64) float64 { return math.Round(x*10) / 10 }
