package scoring_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lingprofile/internal/domain/scoring"
)

func TestRadiusFraction(t *testing.T) {
	Convey("Given the radius table", t, func() {
		table := scoring.RadiusFractions()

		Convey("Then it holds the cumulative band widths", func() {
			So(table, ShouldResemble, [11]float64{0, 0.15, 0.29, 0.42, 0.53, 0.63, 0.72, 0.80, 0.87, 0.94, 1.0})
		})

		Convey("Then integral competences map exactly and the ends are 0 and 1", func() {
			So(scoring.CompetenceToRadiusFraction(0), ShouldEqual, 0)
			So(scoring.CompetenceToRadiusFraction(10), ShouldEqual, 1)
			So(scoring.CompetenceToRadiusFraction(4), ShouldEqual, 0.53)
		})

		Convey("Then fractional values interpolate", func() {
			So(scoring.CompetenceToRadiusFraction(2.5), ShouldAlmostEqual, 0.355, 1e-9)
		})

		Convey("Then out-of-range and NaN inputs are handled", func() {
			So(scoring.CompetenceToRadiusFraction(-3), ShouldEqual, 0)
			So(scoring.CompetenceToRadiusFraction(12), ShouldEqual, 1)
			So(scoring.CompetenceToRadiusFraction(math.NaN()), ShouldEqual, 0)
		})

		Convey("Then the mapping is monotone non-decreasing", func() {
			prev := -1.0
			for c := 0.0; c <= 10; c += 0.05 {
				r := scoring.CompetenceToRadiusFraction(c)
				So(r, ShouldBeGreaterThanOrEqualTo, prev)
				prev = r
			}
		})
	})
}
