package scoring_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

func TestAverageByDimension(t *testing.T) {
	Convey("Given oral segments at 6 and written segments at 2", t, func() {
		var v scoring.Vector
		for i, seg := range taxonomy.Segments() {
			if seg.Modality == taxonomy.Written {
				v[i] = scoring.Clamp(2)
			} else {
				v[i] = scoring.Clamp(6)
			}
		}

		Convey("When writing is active", func() {
			Convey("Then modality and domain averages include written segments", func() {
				oral, ok := scoring.AverageByDimension(v, scoring.ByModality, int(taxonomy.Oral), true)
				So(ok, ShouldBeTrue)
				So(oral, ShouldEqual, 6)
				written, ok := scoring.AverageByDimension(v, scoring.ByModality, int(taxonomy.Written), true)
				So(ok, ShouldBeTrue)
				So(written, ShouldEqual, 2)
				dom, ok := scoring.DomainAverage(v, taxonomy.Syntactic, true)
				So(ok, ShouldBeTrue)
				So(dom, ShouldEqual, 4)
			})
		})

		Convey("When writing is inactive", func() {
			Convey("Then written segments are excluded everywhere", func() {
				_, ok := scoring.AverageByDimension(v, scoring.ByModality, int(taxonomy.Written), false)
				So(ok, ShouldBeFalse)
				dom, ok := scoring.DomainAverage(v, taxonomy.Syntactic, false)
				So(ok, ShouldBeTrue)
				So(dom, ShouldEqual, 6)
				lvl, ok := scoring.AverageByDimension(v, scoring.ByLevel, int(taxonomy.Explicit), false)
				So(ok, ShouldBeTrue)
				So(lvl, ShouldEqual, 6)
			})
		})

		Convey("When a filter matches only nulls", func() {
			empty := scoring.FillVector(scoring.Null)

			Convey("Then no average is reported", func() {
				_, ok := scoring.AverageByDimension(empty, scoring.ByCircuit, 0, true)
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given dimension names", t, func() {
		d, err := scoring.ParseDimension("Circuit")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, scoring.ByCircuit)
		_, err = scoring.ParseDimension("zone")
		So(err, ShouldWrap, scoring.ErrUnknownDimension)
	})
}

func TestDetermineWritingActive(t *testing.T) {
	Convey("Given age and schooling inputs", t, func() {
		cases := []struct {
			age, school string
			active      bool
			reason      scoring.WritingReason
		}{
			{"5;2", "", false, scoring.ReasonPreSchool},
			{"", "pre", false, scoring.ReasonPreSchool},
			{"8", "pre", false, scoring.ReasonPreSchool},
			{"5", "2", false, scoring.ReasonPreSchool},
			{"6;3", "", true, scoring.ReasonFirstGrade},
			{"", "1", true, scoring.ReasonFirstGrade},
			{"7;6", "", true, scoring.ReasonActive},
			{"", "3", true, scoring.ReasonActive},
			{"6", "2", true, scoring.ReasonActive},
			{"", "", true, scoring.ReasonUndetermined},
			{"unknown", "", true, scoring.ReasonUndetermined},
		}

		Convey("Then the first matching rule decides", func() {
			for _, c := range cases {
				got := scoring.DetermineWritingActive(c.age, c.school)
				So(got.Active, ShouldEqual, c.active)
				So(got.Reason, ShouldEqual, c.reason)
			}
		})

		Convey("Then only the undetermined outcome has no message", func() {
			So(scoring.DetermineWritingActive("", "").Message(), ShouldEqual, "")
			So(scoring.DetermineWritingActive("", "1").Message(), ShouldContainSubstring, "caution")
		})

		Convey("Then ages are read from their leading number", func() {
			y, ok := scoring.ParseAgeYears("7;6")
			So(ok, ShouldBeTrue)
			So(y, ShouldEqual, 7)
			_, ok = scoring.ParseAgeYears("")
			So(ok, ShouldBeFalse)
		})
	})
}
