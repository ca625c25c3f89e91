package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Segment", "Domain", "Level", "Circuit", "Modality", "Competence", "Zone", "Description"}

// WriteCSV writes one row per segment, numbered from 1. Unscored segments
// have empty competence, zone and description cells.
func WriteCSV(w io.Writer, c *model.Case) error {
	if c == nil {
		return ErrNoCase
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, seg := range taxonomy.Segments() {
		s := c.Competences[seg.Index]
		competence := ""
		if v, ok := s.Get(); ok {
			competence = strconv.Itoa(v)
		}
		rec := []string{
			strconv.Itoa(seg.Index + 1),
			seg.Domain.String(),
			seg.Level.String(),
			seg.CircuitLabel().Name,
			seg.Modality.String(),
			competence,
			string(scoring.ClassifyZone(s)),
			scoring.Describe(s),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", seg.Index+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
