// Package taxonomy defines the fixed 40-segment linguistic competence model:
// five domains, each split by processing level, circuit and modality.
package taxonomy

import "fmt"

// Cardinalities of the model.
const (
	DomainCount   = 5
	LevelCount    = 2
	CircuitCount  = 2
	ModalityCount = 2

	SegmentsPerDomain = LevelCount * CircuitCount * ModalityCount
	SegmentCount      = DomainCount * SegmentsPerDomain
)

// Domain is a top-level linguistic category.
type Domain int

// Domains in chart order.
const (
	Phonological Domain = iota
	Morphological
	Syntactic
	Semantic
	Pragmatic
)

// Level distinguishes automatic from metalinguistic processing.
type Level int

const (
	Implicit Level = iota
	Explicit
)

// Circuit distinguishes input from output processing.
type Circuit int

const (
	Comprehension Circuit = iota
	Expression
)

// Modality distinguishes spoken from written language.
type Modality int

const (
	Oral Modality = iota
	Written
)

// DomainInfo carries display attributes of a domain.
type DomainInfo struct {
	ID         Domain `json:"id"`
	Name       string `json:"name"`
	Abbrev     string `json:"abbrev"`
	Color      string `json:"color"`
	LightColor string `json:"light_color"`
}

// Label is a display name with its abbreviation.
type Label struct {
	Name   string `json:"name"`
	Abbrev string `json:"abbrev"`
}

var domains = [DomainCount]DomainInfo{
	{ID: Phonological, Name: "Phonological", Abbrev: "Phon", Color: "#E05252", LightColor: "#FFCDD2"},
	{ID: Morphological, Name: "Morphological", Abbrev: "Morph", Color: "#E8A54C", LightColor: "#FFE0B2"},
	{ID: Syntactic, Name: "Syntactic", Abbrev: "Synt", Color: "#00A79D", LightColor: "#B2DFDB"},
	{ID: Semantic, Name: "Semantic", Abbrev: "Sem", Color: "#5B8BC4", LightColor: "#BBDEFB"},
	{ID: Pragmatic, Name: "Pragmatic", Abbrev: "Prag", Color: "#7CB454", LightColor: "#C8E6C9"},
}

var (
	levels = [LevelCount]Label{
		{Name: "Implicit", Abbrev: "Imp"},
		{Name: "Explicit", Abbrev: "Exp"},
	}
	circuits = [CircuitCount]Label{
		{Name: "Comprehension", Abbrev: "Comp"},
		{Name: "Expression", Abbrev: "Expr"},
	}
	// Phonological circuits are named for sublexical processing.
	sublexicalCircuits = [CircuitCount]Label{
		{Name: "Perception", Abbrev: "Perc"},
		{Name: "Production", Abbrev: "Prod"},
	}
	modalities = [ModalityCount]Label{
		{Name: "Oral", Abbrev: "Ora"},
		{Name: "Written", Abbrev: "Wri"},
	}
)

// Info returns the display attributes of d.
func (d Domain) Info() DomainInfo { return domains[d] }

// String returns the domain name.
func (d Domain) String() string {
	if d < 0 || int(d) >= DomainCount {
		return fmt.Sprintf("Domain(%d)", int(d))
	}
	return domains[d].Name
}

// Valid reports whether d is one of the five domains.
func (d Domain) Valid() bool { return d >= 0 && int(d) < DomainCount }

// Domains returns the five domains in chart order.
func Domains() []DomainInfo {
	out := make([]DomainInfo, DomainCount)
	copy(out, domains[:])
	return out
}

// DomainByName looks a domain up by its name or abbreviation.
func DomainByName(name string) (Domain, bool) {
	for _, d := range domains {
		if d.Name == name || d.Abbrev == name {
			return d.ID, true
		}
	}
	return 0, false
}

// Label returns the level label.
func (l Level) Label() Label { return levels[l] }

func (l Level) String() string { return levels[l].Name }

func (m Modality) Label() Label { return modalities[m] }

func (m Modality) String() string { return modalities[m].Name }

// CircuitLabel returns the circuit label as used inside domain d.
func CircuitLabel(d Domain, c Circuit) Label {
	if d == Phonological {
		return sublexicalCircuits[c]
	}
	return circuits[c]
}

// Segment is one of the 40 atomic score slots.
type Segment struct {
	Index    int      `json:"index"`
	Domain   Domain   `json:"domain"`
	Level    Level    `json:"level"`
	Circuit  Circuit  `json:"circuit"`
	Modality Modality `json:"modality"`
}

// IndexOf computes the segment index of a coordinate.
func IndexOf(d Domain, l Level, c Circuit, m Modality) int {
	return int(d)*SegmentsPerDomain + int(l)*CircuitCount*ModalityCount + int(c)*ModalityCount + int(m)
}

var segments = func() [SegmentCount]Segment {
	var out [SegmentCount]Segment
	for d := Domain(0); int(d) < DomainCount; d++ {
		for l := Level(0); int(l) < LevelCount; l++ {
			for c := Circuit(0); int(c) < CircuitCount; c++ {
				for m := Modality(0); int(m) < ModalityCount; m++ {
					i := IndexOf(d, l, c, m)
					out[i] = Segment{Index: i, Domain: d, Level: l, Circuit: c, Modality: m}
				}
			}
		}
	}
	return out
}()

// Segments returns all 40 segments in index order.
func Segments() [SegmentCount]Segment { return segments }

// SegmentAt returns the segment at index i.
func SegmentAt(i int) (Segment, bool) {
	if !ValidIndex(i) {
		return Segment{}, false
	}
	return segments[i], true
}

// ValidIndex reports whether i addresses a segment.
func ValidIndex(i int) bool { return i >= 0 && i < SegmentCount }

// DomainSegments returns the indices of the eight segments of d.
func DomainSegments(d Domain) []int {
	out := make([]int, 0, SegmentsPerDomain)
	for i := int(d) * SegmentsPerDomain; i < int(d+1)*SegmentsPerDomain; i++ {
		out = append(out, i)
	}
	return out
}

// CircuitLabel returns the circuit label of s, sublexical for Phonological.
func (s Segment) CircuitLabel() Label { return CircuitLabel(s.Domain, s.Circuit) }

// Code is a compact identifier such as "Phon-Imp-Perc-Ora".
func (s Segment) Code() string {
	return fmt.Sprintf("%s-%s-%s-%s", domains[s.Domain].Abbrev, levels[s.Level].Abbrev, s.CircuitLabel().Abbrev, modalities[s.Modality].Abbrev)
}

// Path is the full display path: domain, level, circuit, modality.
type Path struct {
	Domain   string `json:"domain"`
	Level    string `json:"level"`
	Circuit  string `json:"circuit"`
	Modality string `json:"modality"`
}

// Path returns the display path of s.
func (s Segment) Path() Path {
	return Path{
		Domain:   domains[s.Domain].Name,
		Level:    levels[s.Level].Name,
		Circuit:  s.CircuitLabel().Name,
		Modality: modalities[s.Modality].Name,
	}
}

func (p Path) String() string {
	return p.Domain + " → " + p.Level + " → " + p.Circuit + " → " + p.Modality
}

// Description is the pipe-separated long form used in exports.
func (s Segment) Description() string {
	p := s.Path()
	return p.Domain + " | " + p.Level + " | " + p.Circuit + " | " + p.Modality
}
