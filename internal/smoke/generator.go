package smoke

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// Chance, in percent, that a generated segment is left unscored.
const nullChance = 15

// appliedTestID is the catalog test applied to every case. It covers
// segments 0 and 1.
const appliedTestID = "tav"

// sample is one generated case and the test result applied to it.
type sample struct {
	Case       *model.Case
	Percentile float64
}

// randomInt returns a uniform integer in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// generateCases builds n cases with unique ids, random ages between 4;0 and
// 11;11 and a random competence for most segments.
func generateCases(n int) []sample {
	out := make([]sample, n)
	for i := range out {
		c := &model.Case{
			ID:        "smoke-" + uuid.NewString(),
			Name:      fmt.Sprintf("Smoke case %d", i+1),
			Age:       fmt.Sprintf("%d;%d", 4+randomInt(8), randomInt(12)),
			Schooling: fmt.Sprint(randomInt(6) + 1),
			Evaluator: "smoke",
		}
		for seg := 0; seg < taxonomy.SegmentCount; seg++ {
			if randomInt(100) < nullChance {
				continue
			}
			c.Competences[seg] = scoring.Clamp(int(randomInt(11)))
		}
		out[i] = sample{Case: c, Percentile: float64(randomInt(1000)) / 10}
	}
	return out
}
