package export_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/radar"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestCSV(t *testing.T) {
	Convey("Given the demo case", t, func() {
		c := model.DemoCase(now)

		Convey("When it is written as CSV", func() {
			var buf bytes.Buffer
			So(export.WriteCSV(&buf, c), ShouldBeNil)
			rows, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then there is a header and one row per segment", func() {
				So(rows, ShouldHaveLength, 41)
				So(rows[0], ShouldResemble, export.CSVHeader)
			})

			Convey("Then rows are numbered from 1 with sublexical circuits for Phonological", func() {
				So(rows[1][0], ShouldEqual, "1")
				So(rows[1][1], ShouldEqual, "Phonological")
				So(rows[1][3], ShouldEqual, "Perception")
				So(rows[1][5], ShouldEqual, "3")
				So(rows[1][6], ShouldEqual, "yellow")
				So(rows[40][0], ShouldEqual, "40")
				So(rows[40][1], ShouldEqual, "Pragmatic")
				So(rows[40][3], ShouldEqual, "Expression")
			})
		})

		Convey("When a segment is unscored", func() {
			c.Competences[0] = scoring.Null
			var buf bytes.Buffer
			So(export.WriteCSV(&buf, c), ShouldBeNil)
			rows, _ := csv.NewReader(&buf).ReadAll()

			Convey("Then its competence, zone and description are empty", func() {
				So(rows[1][5:], ShouldResemble, []string{"", "", ""})
			})
		})
	})
}

func TestJSON(t *testing.T) {
	Convey("Given two cases", t, func() {
		a := model.DemoCase(now)
		b := model.NewCase("CASE-2", now)

		Convey("When one case is written and read back", func() {
			var buf bytes.Buffer
			So(export.WriteJSON(&buf, a), ShouldBeNil)

			Convey("Then the document is an object with a 40-entry vector", func() {
				So(strings.HasPrefix(strings.TrimSpace(buf.String()), "{"), ShouldBeTrue)
				cases, err := export.ReadCases(&buf)
				So(err, ShouldBeNil)
				So(cases, ShouldHaveLength, 1)
				So(cases[0].Competences, ShouldResemble, a.Competences)
			})
		})

		Convey("When both are written", func() {
			var buf bytes.Buffer
			So(export.WriteJSON(&buf, a, b), ShouldBeNil)

			Convey("Then the document is an array", func() {
				cases, err := export.ReadCases(&buf)
				So(err, ShouldBeNil)
				So(cases, ShouldHaveLength, 2)
				So(cases[1].ID, ShouldEqual, "CASE-2")
			})
		})

		Convey("When a document has a short vector", func() {
			_, err := export.ReadCases(strings.NewReader(`{"id":"x","competences":[1,2,3]}`))

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a document is empty", func() {
			_, err := export.ReadCases(strings.NewReader("  "))

			Convey("Then ErrEmptyDocument is returned", func() {
				So(errors.Is(err, export.ErrEmptyDocument), ShouldBeTrue)
			})
		})
	})
}

func TestReport(t *testing.T) {
	Convey("Given a report on the demo case with a plan", t, func() {
		c := model.DemoCase(now)
		r, err := export.NewReport(c, nil, now)
		So(err, ShouldBeNil)
		r.Plan = plan.New(c.ID, r.Analysis, now)

		Convey("Then the analysis honours the case's writing status", func() {
			So(r.Writing.Active, ShouldBeTrue)
			So(r.Analysis, ShouldNotBeNil)
			So(r.Zones.Red, ShouldContain, "Phonological")
		})

		Convey("When rendered as HTML", func() {
			var buf bytes.Buffer
			So(export.Write(&buf, export.FormatHTML, r), ShouldBeNil)
			html := buf.String()

			Convey("Then the page carries the three charts and the case name", func() {
				So(html, ShouldContainSubstring, "Linguistic profile: Demonstration case")
				So(html, ShouldContainSubstring, "Domain averages")
				So(html, ShouldContainSubstring, "Dimension averages")
				So(html, ShouldContainSubstring, "Intervention priorities")
				So(html, ShouldContainSubstring, "Phonological")
			})
		})

		Convey("When rendered as PNG", func() {
			var buf bytes.Buffer
			So(export.Write(&buf, export.FormatPNG, r, radar.WithContainerWidth(240)), ShouldBeNil)

			Convey("Then the image has the requested size", func() {
				img, err := png.Decode(&buf)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 240)
			})
		})

		Convey("When the format is unknown", func() {
			err := export.Write(&bytes.Buffer{}, export.Format("pdf"), r)

			Convey("Then ErrUnknownFormat is returned", func() {
				So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
			})
		})
	})

	Convey("Given format names", t, func() {
		Convey("Then extensions and names parse", func() {
			f, err := export.ParseFormat(".CSV")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, export.FormatCSV)
			f, err = export.ParseFormat("htm")
			So(err, ShouldBeNil)
			So(f.ContentType(), ShouldStartWith, "text/html")
			_, err = export.ParseFormat("docx")
			So(errors.Is(err, export.ErrUnknownFormat), ShouldBeTrue)
		})
	})

	Convey("Given no case", t, func() {
		_, err := export.NewReport(nil, nil, now)

		Convey("Then ErrNoCase is returned", func() {
			So(errors.Is(err, export.ErrNoCase), ShouldBeTrue)
		})
	})
}
