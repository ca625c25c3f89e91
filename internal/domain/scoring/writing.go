package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

// WritingReason explains a writing-modality decision.
type WritingReason string

const (
	ReasonPreSchool    WritingReason = "pre-school"
	ReasonFirstGrade   WritingReason = "first-grade"
	ReasonActive       WritingReason = "active"
	ReasonUndetermined WritingReason = "undetermined"
)

// WritingStatus is whether written-modality segments count, and why.
type WritingStatus struct {
	Active bool          `json:"active"`
	Reason WritingReason `json:"reason"`
}

// Message is the text shown next to the case form. Undetermined has none.
func (w WritingStatus) Message() string {
	switch w.Reason {
	case ReasonPreSchool:
		return "Written modality disabled (pre-school)"
	case ReasonFirstGrade:
		return "1st grade: written modality active, interpret with caution"
	case ReasonActive:
		return "Written modality active"
	}
	return ""
}

var leadingYears = regexp.MustCompile(`\d+`)

// ParseAgeYears extracts the whole years from an age such as "7;6".
func ParseAgeYears(age string) (int, bool) {
	m := leadingYears.FindString(age)
	if m == "" {
		return 0, false
	}
	years, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return years, true
}

func normalizeSchooling(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "pre", "pre-school", "preschool":
		return "pre"
	case "1", "1st", "1st grade":
		return "1"
	}
	return s
}

// DetermineWritingActive decides whether written segments take part in
// scoring for a child of the given age and schooling year. The first
// matching rule wins.
func DetermineWritingActive(age, schooling string) WritingStatus {
	years, known := ParseAgeYears(age)
	school := normalizeSchooling(schooling)

	switch {
	case school == "pre" || (known && years < 6):
		return WritingStatus{Active: false, Reason: ReasonPreSchool}
	case school == "1" || (known && years == 6 && school == ""):
		return WritingStatus{Active: true, Reason: ReasonFirstGrade}
	case school != "" || (known && years >= 7):
		return WritingStatus{Active: true, Reason: ReasonActive}
	default:
		return WritingStatus{Active: true, Reason: ReasonUndetermined}
	}
}
