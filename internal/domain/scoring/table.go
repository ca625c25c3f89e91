package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scale identifies the norm scale a raw test result is reported in.
type Scale string

// Supported scales.
const (
	Percentile Scale = "perc"
	IQ         Scale = "qi"
	ZScore     Scale = "z"
	TScore     Scale = "t"
)

// Scales lists the supported scales.
func Scales() []Scale { return []Scale{Percentile, IQ, ZScore, TScore} }

// ParseScale accepts a scale tag; "iq" is accepted for IQ.
func ParseScale(s string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perc", "percentile":
		return Percentile, nil
	case "qi", "iq":
		return IQ, nil
	case "z":
		return ZScore, nil
	case "t":
		return TScore, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScale, s)
}

// Label returns a human readable scale name.
func (s Scale) Label() string {
	switch s {
	case Percentile:
		return "Percentile"
	case IQ:
		return "Standard score (IQ)"
	case ZScore:
		return "Z-score"
	case TScore:
		return "T-score"
	}
	return string(s)
}

// Zone is the clinical color band of a competence.
type Zone string

const (
	ZoneNone   Zone = ""
	ZoneRed    Zone = "red"
	ZoneYellow Zone = "yellow"
	ZoneGreen  Zone = "green"
)

// Row is one line of the conversion table. Percentile, IQ and T bands are
// closed intervals; z bands are [ZMin, ZMax).
type Row struct {
	Competence int     `json:"competence"`
	Label      string  `json:"label"`
	PercMin    float64 `json:"perc_min"`
	PercMax    float64 `json:"perc_max"`
	IQMin      float64 `json:"iq_min"`
	IQMax      float64 `json:"iq_max"`
	ZMin       float64 `json:"z_min"`
	ZMax       float64 `json:"z_max"`
	TMin       float64 `json:"t_min"`
	TMax       float64 `json:"t_max"`
	Zone       Zone    `json:"zone"`
}

// fallbackCompetence is returned for finite values no band covers.
const fallbackCompetence = 5

var table = [MaxCompetence + 1]Row{
	{0, "Severe deficit", 0, 0.9, 0, 54, math.Inf(-1), -2.5, 0, 19, ZoneRed},
	{1, "Moderate deficit", 1, 1.9, 55, 69, -2.5, -2.0, 20, 29, ZoneRed},
	{2, "Mild deficit", 2, 6, 70, 77, -2.0, -1.5, 30, 34, ZoneRed},
	{3, "Borderline", 7, 15, 78, 84, -1.5, -1.0, 35, 39, ZoneYellow},
	{4, "Below average", 16, 30, 85, 92, -1.0, -0.5, 40, 44, ZoneYellow},
	{5, "Low average", 31, 49, 93, 99, -0.5, 0, 45, 49, ZoneGreen},
	{6, "Average", 50, 68, 100, 107, 0, 0.5, 50, 54, ZoneGreen},
	{7, "High average", 69, 83, 108, 114, 0.5, 1.0, 55, 59, ZoneGreen},
	{8, "Above average", 84, 92, 115, 122, 1.0, 1.5, 60, 64, ZoneGreen},
	{9, "Superior", 93, 97, 123, 129, 1.5, 2.0, 65, 69, ZoneGreen},
	{10, "Very superior", 98, 100, 130, 200, 2.0, math.Inf(1), 70, 100, ZoneGreen},
}

// Table returns a copy of the conversion table in ascending competence order.
func Table() []Row {
	out := make([]Row, len(table))
	copy(out, table[:])
	return out
}

func (r Row) matches(raw float64, scale Scale) bool {
	switch scale {
	case Percentile:
		return raw >= r.PercMin && raw <= r.PercMax
	case IQ:
		return raw >= r.IQMin && raw <= r.IQMax
	case ZScore:
		return raw >= r.ZMin && raw < r.ZMax
	case TScore:
		return raw >= r.TMin && raw <= r.TMax
	}
	return false
}

// ConvertToCompetence maps a raw result to a competence. Non-finite input
// yields null; a finite value outside every band yields 5.
func ConvertToCompetence(raw float64, scale Scale) Score {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Null
	}
	for _, row := range table {
		if row.matches(raw, scale) {
			return Score{v: int8(row.Competence), ok: true}
		}
	}
	return Score{v: fallbackCompetence, ok: true}
}

// ConvertString parses form input before converting. Blank or unparseable
// input yields null.
func ConvertString(raw string, scale Scale) Score {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if raw == "" {
		return Null
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Null
	}
	return ConvertToCompetence(f, scale)
}

// ClassifyZone maps a competence to its zone; null maps to ZoneNone.
func ClassifyZone(s Score) Zone {
	v, ok := s.Get()
	switch {
	case !ok:
		return ZoneNone
	case v < 3:
		return ZoneRed
	case v < 5:
		return ZoneYellow
	default:
		return ZoneGreen
	}
}

// ZoneOf classifies a fractional competence such as a domain average.
func ZoneOf(avg float64) Zone {
	switch {
	case math.IsNaN(avg):
		return ZoneNone
	case avg < 3:
		return ZoneRed
	case avg < 5:
		return ZoneYellow
	default:
		return ZoneGreen
	}
}

// Describe returns the table label of s, or "" for null.
func Describe(s Score) string {
	v, ok := s.Get()
	if !ok {
		return ""
	}
	return table[v].Label
}
