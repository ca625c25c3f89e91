package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// run executes the root command with args and stdin, returning stdout.
func run(stdin string, args ...string) (string, error) {
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func demoJSON(t *testing.T) string {
	out, err := run("", "demo")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	return out
}

func TestConvertCommand(t *testing.T) {
	Convey("Given the convert command", t, func() {
		Convey("A median percentile maps to 6", func() {
			out, err := run("", "convert", "50", "--scale", "perc")
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "competence=6 zone=")
		})

		Convey("The full percentile range maps onto 0 and 10", func() {
			out, err := run("", "convert", "100")
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "competence=10 ")

			out, err = run("", "convert", "0.5", "-s", "percentile")
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "competence=0 ")
		})

		Convey("Bad input is rejected", func() {
			_, err := run("", "convert", "abc")
			So(err, ShouldNotBeNil)
			_, err = run("", "convert", "50", "--scale", "stanine")
			So(err, ShouldNotBeNil)
			_, err = run("", "convert")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDemoAndAnalyzeCommands(t *testing.T) {
	Convey("Given the demo case on stdin", t, func() {
		demo := demoJSON(t)
		So(demo, ShouldContainSubstring, "DEMO-001")

		Convey("analyze prints the analysis as JSON", func() {
			out, err := run(demo, "analyze", "-")
			So(err, ShouldBeNil)

			var got analyzeOutput
			So(json.Unmarshal([]byte(out), &got), ShouldBeNil)
			So(got.CaseID, ShouldEqual, "DEMO-001")
			So(got.Analysis, ShouldNotBeNil)
			So(got.Analysis.Domains, ShouldNotBeEmpty)
		})

		Convey("the writing gate can be overridden", func() {
			out, err := run(demo, "analyze", "-", "--writing", "off")
			So(err, ShouldBeNil)
			var got analyzeOutput
			So(json.Unmarshal([]byte(out), &got), ShouldBeNil)
			So(got.Writing.Active, ShouldBeFalse)
			So(got.Analysis.WritingActive, ShouldBeFalse)

			_, err = run(demo, "analyze", "-", "--writing", "maybe")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a case with no scores", t, func() {
		out, err := run(`{"id": "empty"}`, "analyze", "-")

		Convey("analyze reports there is nothing to analyse", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "no scored segments")
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := run("", "analyze", filepath.Join(t.TempDir(), "nope.json"))
		So(err, ShouldNotBeNil)
	})
}

func TestRenderCommand(t *testing.T) {
	Convey("Given the demo case on stdin", t, func() {
		demo := demoJSON(t)
		dir := t.TempDir()

		Convey("render writes a PNG of the configured size", func() {
			out := filepath.Join(dir, "demo.png")
			_, err := run(demo, "render", "-", "-o", out, "--width", "300")
			So(err, ShouldBeNil)

			f, err := os.Open(out)
			So(err, ShouldBeNil)
			defer f.Close()
			cfg, err := png.DecodeConfig(f)
			So(err, ShouldBeNil)
			So(cfg.Width, ShouldEqual, 300)
		})

		Convey("render streams CSV to stdout", func() {
			out, err := run(demo, "render", "-", "--format", "csv", "-o", "-")
			So(err, ShouldBeNil)
			So(strings.Count(out, "\n"), ShouldBeGreaterThan, 40)
		})

		Convey("an unknown format is rejected", func() {
			_, err := run(demo, "render", "-", "--format", "docx")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDemoCommandFile(t *testing.T) {
	Convey("Given an output path", t, func() {
		out := filepath.Join(t.TempDir(), "demo.json")
		_, err := run("", "demo", "-o", out)
		So(err, ShouldBeNil)

		data, err := os.ReadFile(out)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "DEMO-001")
	})
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		cmd := newRootCommand()
		names := map[string]bool{}
		for _, c := range cmd.Commands() {
			names[c.Name()] = true
		}

		Convey("Every subcommand is registered", func() {
			for _, n := range []string{"serve", "convert", "analyze", "render", "demo", "smoke"} {
				So(names[n], ShouldBeTrue)
			}
		})

		Convey("--config points the loader at the file", func() {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			t.Setenv("LINGPROFILE_CONFIG", "")
			_, err := run("", "--config", path, "convert", "50")
			So(err, ShouldBeNil)
			So(os.Getenv("LINGPROFILE_CONFIG"), ShouldEqual, path)
		})
	})
}
