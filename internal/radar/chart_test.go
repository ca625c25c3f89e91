package radar_test

import (
	"context"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/radar"
)

var epoch = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func filled(v int) *scoring.Vector {
	vec := scoring.FillVector(scoring.Clamp(v))
	return &vec
}

func newChart(opts ...radar.Option) (*radar.Chart, *radar.ManualScheduler) {
	s := radar.NewManualScheduler(epoch)
	opts = append([]radar.Option{radar.WithScheduler(s), radar.WithContainerWidth(400)}, opts...)
	return radar.New(opts...), s
}

// petalPoint returns the pixel in the middle of segment i at 35% of the
// competence radius, inside the red zone of a 400px chart.
func petalPoint(i int) (int, int) {
	centre := 200.0
	r := centre * 0.52 * 0.35
	a := (float64(i)+0.5)/40*2*math.Pi - math.Pi/2
	return int(centre + r*math.Cos(a)), int(centre + r*math.Sin(a))
}

func TestFullTransition(t *testing.T) {
	Convey("Given an empty chart with the default 300ms transition", t, func() {
		c, s := newChart()

		Convey("When data is set", func() {
			c.SetData(filled(8))

			Convey("Then the first frame starts from zero", func() {
				So(s.Pending(), ShouldEqual, 1)
				So(s.Advance(0), ShouldEqual, 1)
				So(c.Displayed()[0], ShouldEqual, 0)
			})

			Convey("Then halfway through the values follow the cubic ease-out", func() {
				s.Advance(0)
				s.Advance(150 * time.Millisecond)
				So(c.Displayed()[17], ShouldAlmostEqual, 7.0, 1e-9)
				So(c.Animating(), ShouldBeTrue)
			})

			Convey("Then at the end the values are exact and no frame is pending", func() {
				s.Advance(0)
				s.Advance(150 * time.Millisecond)
				s.Advance(150 * time.Millisecond)
				So(c.Displayed()[39], ShouldEqual, 8)
				So(s.Pending(), ShouldEqual, 0)
				So(c.Animating(), ShouldBeFalse)
			})
		})

		Convey("When new data arrives mid-transition", func() {
			c.SetData(filled(8))
			s.Advance(100 * time.Millisecond)
			c.SetData(filled(2))

			Convey("Then only the new transition is pending and it wins", func() {
				So(s.Pending(), ShouldEqual, 1)
				s.Settle(16*time.Millisecond, 100)
				So(c.Displayed()[5], ShouldEqual, 2)
			})
		})

		Convey("When data is cleared", func() {
			c.SetData(filled(8))
			c.SetData(nil)

			Convey("Then the chart has no data and nothing animates", func() {
				So(c.Data(), ShouldBeNil)
				So(s.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When the caller mutates the vector after SetData", func() {
			v := filled(6)
			c.SetData(v)
			v[0] = scoring.Clamp(1)

			Convey("Then the chart keeps its own copy", func() {
				So(c.Data()[0].Int(), ShouldEqual, 6)
			})
		})
	})

	Convey("Given a chart with animation disabled", t, func() {
		c, s := newChart(radar.WithAnimationDuration(0))

		Convey("When data is set", func() {
			v := filled(5)
			v[3] = scoring.Null
			c.SetData(v)

			Convey("Then values are applied at once and nulls display as zero", func() {
				So(s.Pending(), ShouldEqual, 0)
				So(c.Displayed()[0], ShouldEqual, 5)
				So(c.Displayed()[3], ShouldEqual, 0)
			})
		})
	})
}

func TestSingleValue(t *testing.T) {
	Convey("Given an empty chart", t, func() {
		c, s := newChart()

		Convey("When a single value is set", func() {
			So(c.SetValue(4, scoring.Clamp(10)), ShouldBeNil)

			Convey("Then the other slots are unscored and the slot settles after 200ms", func() {
				data := c.Data()
				So(data, ShouldNotBeNil)
				So(data[0].Valid(), ShouldBeFalse)
				So(data[4].Int(), ShouldEqual, 10)
				s.Advance(200 * time.Millisecond)
				So(c.Displayed()[4], ShouldEqual, 10)
				So(s.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When the index is out of range", func() {
			err := c.SetValue(40, scoring.Clamp(1))

			Convey("Then ErrSegmentIndex is returned", func() {
				So(errors.Is(err, radar.ErrSegmentIndex), ShouldBeTrue)
			})
		})

		Convey("When the same slot is set twice", func() {
			So(c.SetValue(0, scoring.Clamp(10)), ShouldBeNil)
			s.Advance(100 * time.Millisecond)
			So(c.SetValue(0, scoring.Clamp(2)), ShouldBeNil)

			Convey("Then the first animation is replaced", func() {
				So(s.Pending(), ShouldEqual, 1)
				s.Settle(16*time.Millisecond, 100)
				So(c.Displayed()[0], ShouldEqual, 2)
			})
		})
	})

	Convey("Given a full transition in flight", t, func() {
		c, s := newChart()
		c.SetData(filled(5))
		s.Advance(100 * time.Millisecond)
		mid := c.Displayed()[3]

		Convey("When one slot is set", func() {
			So(c.SetValue(3, scoring.Clamp(9)), ShouldBeNil)
			s.Advance(100 * time.Millisecond)

			Convey("Then the slot follows its own animation, not the transition", func() {
				So(c.Displayed()[3], ShouldAlmostEqual, mid+(9-mid)*0.875, 1e-9)
				s.Advance(100 * time.Millisecond)
				So(c.Displayed()[3], ShouldEqual, 9)
				So(c.Displayed()[0], ShouldEqual, 5)
				So(c.Animating(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a full transition that outlasts a later single-value animation", t, func() {
		c, s := newChart()
		c.SetData(filled(5))
		s.Advance(0)
		s.Advance(50 * time.Millisecond)

		Convey("When one slot is set and both animations run out", func() {
			So(c.SetValue(3, scoring.Clamp(9)), ShouldBeNil)
			s.Settle(16*time.Millisecond, 200)

			Convey("Then the slot shows the value it holds", func() {
				v, _ := c.Data()[3].Get()
				So(v, ShouldEqual, 9)
				So(c.Displayed()[3], ShouldEqual, 9)
				So(c.Displayed()[0], ShouldEqual, 5)
				So(c.Animating(), ShouldBeFalse)
			})
		})

		Convey("When a slot is set without animation", func() {
			c2, s2 := newChart(radar.WithSingleValueDuration(0))
			c2.SetData(filled(5))
			s2.Advance(50 * time.Millisecond)
			So(c2.SetValue(7, scoring.Clamp(1)), ShouldBeNil)
			s2.Settle(16*time.Millisecond, 200)

			Convey("Then the transition leaves the slot alone", func() {
				So(c2.Displayed()[7], ShouldEqual, 1)
				So(c2.Displayed()[6], ShouldEqual, 5)
			})
		})
	})

	Convey("Given a single-value animation in flight", t, func() {
		c, s := newChart()
		So(c.SetValue(2, scoring.Clamp(7)), ShouldBeNil)
		s.Advance(50 * time.Millisecond)

		Convey("When new data is set", func() {
			c.SetData(filled(4))

			Convey("Then the single animation is cancelled and the slot takes the new data", func() {
				So(s.Pending(), ShouldEqual, 1)
				s.Settle(16*time.Millisecond, 100)
				So(c.Displayed()[2], ShouldEqual, 4)
			})
		})
	})
}

func TestDrawing(t *testing.T) {
	Convey("Given a static chart", t, func() {
		c, _ := newChart(radar.WithAnimationDuration(0))

		Convey("When it has no data", func() {
			x, y := petalPoint(0)
			px := c.Image().RGBAAt(x, y)

			Convey("Then the red zone shows through", func() {
				So(px.R, ShouldEqual, 0xFF)
				So(px.G, ShouldBeGreaterThan, 200)
			})
		})

		Convey("When every segment scores 10", func() {
			c.SetData(filled(10))
			x, y := petalPoint(0)
			px := c.Image().RGBAAt(x, y)

			Convey("Then the Phonological petal covers the zone", func() {
				So(px.R, ShouldBeGreaterThan, 200)
				So(px.G, ShouldBeLessThan, 150)
			})

			Convey("And writing is switched off", func() {
				c.SetWritingActive(false)
				oralX, oralY := petalPoint(0)
				wx, wy := petalPoint(1)
				img := c.Image()

				Convey("Then written petals disappear and oral petals stay", func() {
					So(img.RGBAAt(oralX, oralY).G, ShouldBeLessThan, 150)
					So(img.RGBAAt(wx, wy).G, ShouldBeGreaterThan, 200)
				})
			})
		})

		Convey("When dark mode is switched on", func() {
			c.SetDarkMode(true)
			px := c.Image().RGBAAt(1, 1)

			Convey("Then the background uses the dark palette", func() {
				So([]uint8{px.R, px.G, px.B}, ShouldResemble, []uint8{0x1E, 0x29, 0x3B})
			})
		})
	})
}

func TestSizing(t *testing.T) {
	Convey("Given a chart in a 300px container", t, func() {
		c := radar.New(radar.WithContainerWidth(300), radar.WithAnimationDuration(0))

		Convey("Then it fills the container", func() {
			logical, px := c.Size()
			So(logical, ShouldEqual, 300)
			So(px, ShouldEqual, 300)
		})

		Convey("When zoom is pushed past its limits", func() {
			c.SetZoom(5)
			So(c.Zoom(), ShouldEqual, 2)
			logical, _ := c.Size()
			So(logical, ShouldEqual, 600)

			c.SetZoom(0.1)
			So(c.Zoom(), ShouldEqual, 0.5)
		})

		Convey("When the device pixel ratio doubles", func() {
			c.SetZoom(0.5)
			c.SetDevicePixelRatio(2)

			Convey("Then the backing store doubles but the logical size does not", func() {
				logical, px := c.Size()
				So(logical, ShouldEqual, 150)
				So(px, ShouldEqual, 300)
			})
		})

		Convey("When the container grows beyond 800px", func() {
			c.Resize(1200)

			Convey("Then the chart is capped", func() {
				logical, _ := c.Size()
				So(logical, ShouldEqual, 800)
			})
		})
	})
}

func TestImageExport(t *testing.T) {
	Convey("Given a chart with data", t, func() {
		c, _ := newChart(radar.WithAnimationDuration(0))
		c.SetData(filled(6))

		Convey("When exported as data URLs", func() {
			pngURL, err := c.ToImageDataURL("image/png", 1)
			So(err, ShouldBeNil)
			jpgURL, err := c.ToImageDataURL("jpeg", 0.8)
			So(err, ShouldBeNil)

			Convey("Then each carries its MIME type", func() {
				So(strings.HasPrefix(pngURL, "data:image/png;base64,"), ShouldBeTrue)
				So(strings.HasPrefix(jpgURL, "data:image/jpeg;base64,"), ShouldBeTrue)
			})
		})

		Convey("When an unknown format is requested", func() {
			_, err := c.ToImageDataURL("gif", 1)

			Convey("Then ErrImageFormat is returned", func() {
				So(errors.Is(err, radar.ErrImageFormat), ShouldBeTrue)
			})
		})

		Convey("When downloaded to a file", func() {
			path := filepath.Join(t.TempDir(), "profile.png")
			So(c.DownloadImage(path), ShouldBeNil)

			Convey("Then the file is a PNG of the chart size", func() {
				f, err := os.Open(path)
				So(err, ShouldBeNil)
				defer f.Close()
				img, err := png.Decode(f)
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 400)
			})
		})
	})

	Convey("Given a snapshot request", t, func() {
		img := radar.Snapshot(filled(3), false, radar.WithContainerWidth(200), radar.WithDarkMode(true))

		Convey("Then a fully drawn frame is returned", func() {
			So(img.Bounds().Dx(), ShouldEqual, 200)
		})
	})
}

func TestTickerScheduler(t *testing.T) {
	Convey("Given a chart driven by a ticker", t, func() {
		s := radar.NewTickerScheduler(context.Background(), 2*time.Millisecond)
		defer s.Stop()
		c := radar.New(radar.WithScheduler(s), radar.WithContainerWidth(200),
			radar.WithAnimationDuration(20*time.Millisecond))

		Convey("When data is set", func() {
			c.SetData(filled(7))
			deadline := time.Now().Add(2 * time.Second)
			for c.Animating() && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			Convey("Then the transition completes on its own", func() {
				So(c.Animating(), ShouldBeFalse)
				So(c.Displayed()[10], ShouldEqual, 7)
			})
		})
	})
}

func TestManualScheduler(t *testing.T) {
	Convey("Given a manual scheduler", t, func() {
		s := radar.NewManualScheduler(epoch)
		var ran []string

		Convey("When frames are requested and one is cancelled", func() {
			s.RequestFrame(func(time.Time) { ran = append(ran, "a") })
			id := s.RequestFrame(func(time.Time) { ran = append(ran, "b") })
			s.RequestFrame(func(time.Time) { ran = append(ran, "c") })
			s.CancelFrame(id)

			Convey("Then the rest run in request order", func() {
				So(s.Advance(time.Millisecond), ShouldEqual, 2)
				So(ran, ShouldResemble, []string{"a", "c"})
			})
		})

		Convey("When a callback requests another frame", func() {
			s.RequestFrame(func(time.Time) {
				ran = append(ran, "first")
				s.RequestFrame(func(time.Time) { ran = append(ran, "second") })
			})

			Convey("Then the new frame waits for the next advance", func() {
				s.Advance(time.Millisecond)
				So(ran, ShouldResemble, []string{"first"})
				s.Advance(time.Millisecond)
				So(ran, ShouldResemble, []string{"first", "second"})
			})
		})

		Convey("When time advances", func() {
			var seen time.Time
			s.RequestFrame(func(now time.Time) { seen = now })
			s.Advance(40 * time.Millisecond)

			Convey("Then callbacks receive the advanced clock", func() {
				So(seen, ShouldEqual, epoch.Add(40*time.Millisecond))
				So(s.Now(), ShouldEqual, seen)
			})
		})
	})
}
