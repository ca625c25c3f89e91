package analysis_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

// vectorBy fills each segment with f(segment).
func vectorBy(f func(taxonomy.Segment) int) scoring.Vector {
	var v scoring.Vector
	for i, seg := range taxonomy.Segments() {
		v[i] = scoring.Clamp(f(seg))
	}
	return v
}

func hypothesisNames(r *analysis.Result) []string {
	out := make([]string, 0, len(r.Hypotheses))
	for _, h := range r.Hypotheses {
		out = append(out, h.Name)
	}
	return out
}

func TestAnalyzeEmpty(t *testing.T) {
	Convey("Given a vector with no scores", t, func() {
		v := scoring.FillVector(scoring.Null)

		Convey("When analysed", func() {
			Convey("Then there is nothing to report", func() {
				So(analysis.Analyze(v, true), ShouldBeNil)
				So(analysis.Summary(nil), ShouldResemble, analysis.ZoneSummary{})
			})
		})
	})
}

func TestAnalyzePhonologicalDeficit(t *testing.T) {
	Convey("Given Phonological segments at 2 and every other segment at 7", t, func() {
		v := vectorBy(func(s taxonomy.Segment) int {
			if s.Domain == taxonomy.Phonological {
				return 2
			}
			return 7
		})

		Convey("When analysed with writing active", func() {
			r := analysis.Analyze(v, true)
			So(r, ShouldNotBeNil)

			Convey("Then only Phonological is affected and it is red", func() {
				So(r.AffectedDomains, ShouldResemble, []string{"Phonological"})
				So(r.Domains[taxonomy.Phonological].Zone, ShouldEqual, scoring.ZoneRed)
				So(r.Domains[taxonomy.Phonological].Average.Value, ShouldEqual, 2)
				So(r.Domains[taxonomy.Semantic].Zone, ShouldEqual, scoring.ZoneGreen)
			})

			Convey("Then a deficit pattern names Phonological and nothing else fires", func() {
				So(len(r.Patterns), ShouldEqual, 1)
				So(r.Patterns[0].Kind, ShouldEqual, analysis.PatternDeficit)
				So(r.Patterns[0].Domains, ShouldResemble, []string{"Phonological"})
			})

			Convey("Then the oral average of 6 rules out LDD but not the literacy and speech sound hypotheses", func() {
				So(r.Dimensions.Oral.Value, ShouldEqual, 6)
				So(hypothesisNames(r), ShouldResemble, []string{analysis.HypothesisDyslexia, analysis.HypothesisSpeechSound})
			})

			Convey("Then the six worst segments are the first Phonological ones, all urgent", func() {
				So(len(r.Priorities), ShouldEqual, 6)
				for i, p := range r.Priorities {
					So(p.Segment, ShouldEqual, i)
					So(p.Competence, ShouldEqual, 2)
					So(p.Urgency, ShouldEqual, analysis.Urgent)
				}
				So(r.Priorities[2].Path.Circuit, ShouldEqual, "Production")
			})

			Convey("Then the zone summary puts Phonological in red", func() {
				s := analysis.Summary(r)
				So(s.Red, ShouldResemble, []string{"Phonological"})
				So(len(s.Green), ShouldEqual, 4)
			})
		})
	})

	Convey("Given the four language domains at 2 and Pragmatic at 7", t, func() {
		v := vectorBy(func(s taxonomy.Segment) int {
			if s.Domain == taxonomy.Pragmatic {
				return 7
			}
			return 2
		})

		Convey("When analysed with writing active", func() {
			r := analysis.Analyze(v, true)

			Convey("Then the oral average of 3 fires LDD with literacy impact instead of dyslexia", func() {
				So(r.Dimensions.Oral.Value, ShouldEqual, 3)
				So(hypothesisNames(r), ShouldResemble, []string{analysis.HypothesisLDD, analysis.HypothesisLDDLiteracy})
				So(r.Hypotheses[0].Confidence, ShouldEqual, analysis.ConfidenceHigh)
				So(r.Hypotheses[1].Confidence, ShouldEqual, analysis.ConfidenceProbable)
			})
		})
	})
}

func TestAnalyzePatterns(t *testing.T) {
	Convey("Given written segments at 3 and oral segments at 7", t, func() {
		v := vectorBy(func(s taxonomy.Segment) int {
			if s.Modality == taxonomy.Written {
				return 3
			}
			return 7
		})

		Convey("When writing is active", func() {
			r := analysis.Analyze(v, true)

			Convey("Then the written modality is reported as weaker", func() {
				So(r.AffectedDomains, ShouldBeEmpty)
				So(r.Patterns[0].Kind, ShouldEqual, analysis.PatternModality)
				So(r.Patterns[0].Affected, ShouldEqual, "Written")
				So(r.Patterns[0].Delta, ShouldEqual, 4)
				So(hypothesisNames(r), ShouldResemble, []string{analysis.HypothesisDyslexia})
			})

			Convey("Then priorities keep segment order among equal scores", func() {
				So(len(r.Priorities), ShouldEqual, 6)
				want := []int{1, 3, 5, 7, 9, 11}
				for i, p := range r.Priorities {
					So(p.Segment, ShouldEqual, want[i])
					So(p.Urgency, ShouldEqual, analysis.Priority)
				}
			})
		})

		Convey("When writing is inactive", func() {
			r := analysis.Analyze(v, false)

			Convey("Then written segments drop out of every step", func() {
				So(r.Dimensions.Written.Valid, ShouldBeFalse)
				So(r.Domains[taxonomy.Syntactic].Average.Value, ShouldEqual, 7)
				So(r.Patterns, ShouldResemble, []analysis.Pattern{{Kind: analysis.PatternBalanced}})
				So(hypothesisNames(r), ShouldResemble, []string{analysis.HypothesisTypical})
				So(r.Priorities, ShouldBeEmpty)
			})
		})
	})

	Convey("Given comprehension at 3 and expression at 7", t, func() {
		v := vectorBy(func(s taxonomy.Segment) int {
			if s.Circuit == taxonomy.Comprehension {
				return 3
			}
			return 7
		})
		r := analysis.Analyze(v, true)

		Convey("Then the comprehension circuit is named as weaker", func() {
			So(r.Patterns[0].Kind, ShouldEqual, analysis.PatternCircuit)
			So(r.Patterns[0].Affected, ShouldEqual, "Comprehension")
		})
	})

	Convey("Given levels that differ by 4", t, func() {
		explicitWorse := vectorBy(func(s taxonomy.Segment) int {
			if s.Level == taxonomy.Explicit {
				return 3
			}
			return 7
		})
		implicitWorse := vectorBy(func(s taxonomy.Segment) int {
			if s.Level == taxonomy.Implicit {
				return 3
			}
			return 7
		})

		Convey("Then only a weaker explicit level is reported", func() {
			r := analysis.Analyze(explicitWorse, true)
			So(r.Patterns[0].Kind, ShouldEqual, analysis.PatternLevel)
			So(r.Patterns[0].Affected, ShouldEqual, "Explicit")

			r = analysis.Analyze(implicitWorse, true)
			So(r.Patterns[0].Kind, ShouldEqual, analysis.PatternBalanced)
		})
	})

	Convey("Given a low Pragmatic domain", t, func() {
		v := vectorBy(func(s taxonomy.Segment) int {
			if s.Domain == taxonomy.Pragmatic {
				return 3
			}
			return 6
		})
		r := analysis.Analyze(v, true)

		Convey("Then the pragmatic hypothesis is raised", func() {
			So(hypothesisNames(r), ShouldResemble, []string{analysis.HypothesisPragmatic})
		})
	})
}

func TestAnalyzeIsPure(t *testing.T) {
	Convey("Given the same vector analysed twice", t, func() {
		v := vectorBy(func(s taxonomy.Segment) int { return (s.Index * 7) % 11 })
		v[4] = scoring.Null

		Convey("Then both results are identical", func() {
			So(analysis.Analyze(v, true), ShouldResemble, analysis.Analyze(v, true))
			So(analysis.Analyze(v, false), ShouldResemble, analysis.Analyze(v, false))
		})
	})
}
