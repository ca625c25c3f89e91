package smoke

import (
	"fmt"

	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/scoring"
)

// verifyApplied checks the server converted the percentile the same way the
// local table does and wrote it to every segment the test covers. The case
// carries no earlier tests, so each covered segment equals the single result.
func verifyApplied(s sample, got testResponse) error {
	want := scoring.ConvertToCompetence(s.Percentile, scoring.Percentile)
	if got.Applied.Competence != want {
		return fmt.Errorf("%w: percentile %v converted to %v, want %v",
			ErrVerification, s.Percentile, got.Applied.Competence, want)
	}
	if got.Case == nil {
		return fmt.Errorf("%w: response carries no case", ErrVerification)
	}
	def, err := catalog.NewRegistry().Get(appliedTestID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}
	for _, seg := range def.Segments {
		if got.Case.Competences[seg] != want {
			return fmt.Errorf("%w: segment %d is %v, want %v",
				ErrVerification, seg, got.Case.Competences[seg], want)
		}
	}
	return nil
}
