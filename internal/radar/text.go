package radar

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	size float64
	bold bool
}

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func loadFonts() {
	fontsOnce.Do(func() {
		// The embedded Go fonts are known-good; a parse failure is a build defect.
		var err error
		if regularFont, err = truetype.Parse(goregular.TTF); err != nil {
			panic(err)
		}
		if boldFont, err = truetype.Parse(gobold.TTF); err != nil {
			panic(err)
		}
	})
}

// face returns a cached face. Faces are not safe for concurrent use, so the
// cache belongs to the chart and is only touched under its mutex.
func (c *Chart) face(size float64, bold bool) font.Face {
	key := faceKey{size, bold}
	if f, ok := c.faces[key]; ok {
		return f
	}
	loadFonts()
	f := regularFont
	if bold {
		f = boldFont
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingNone})
	c.faces[key] = face
	return face
}

// arcText writes text centred on the arc between a0 and a1. Labels of one or
// two characters are rotated as a whole; longer ones are laid out one
// character at a time along the arc. Text on the lower half is flipped so it
// reads left to right.
func (c *Chart) arcText(radius, centre, a0, a1 float64, text string, size float64, color string, bold bool) {
	dc := c.dc
	am := (a0 + a1) / 2
	flip := am > 0 && am < math.Pi
	turn := math.Pi / 2
	if flip {
		turn = -turn
	}

	dc.Push()
	defer dc.Pop()
	dc.SetFontFace(c.face(size, bold))
	dc.SetHexColor(color)

	runes := []rune(text)
	if len(runes) <= 2 {
		dc.Translate(centre+radius*math.Cos(am), centre+radius*math.Sin(am))
		dc.Rotate(am + turn)
		dc.DrawStringAnchored(text, 0, 0, 0.5, 0.5)
		return
	}

	mw, _ := dc.MeasureString("M")
	charW := mw * 0.75
	totalW := float64(len(runes)) * charW
	arcLen := radius * (a1 - a0)
	pad := (arcLen - totalW) / 2 / radius

	cur, dir := a0+pad, 1.0
	if flip {
		cur, dir = a1-pad, -1.0
	}
	half := dir * charW / 2 / radius
	for _, r := range runes {
		cur += half
		dc.Push()
		dc.Translate(centre+radius*math.Cos(cur), centre+radius*math.Sin(cur))
		dc.Rotate(cur + turn)
		dc.DrawStringAnchored(string(r), 0, 0, 0.5, 0.5)
		dc.Pop()
		cur += half
	}
}
