package radar

import (
	"math"
	"time"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
	"github.com/okian/lingprofile/pkg/metrics"
)

// drawLocked repaints the whole chart. Coordinates are logical pixels; the
// context matrix scales them by the device pixel ratio. gg does not scale
// line widths or dashes, so px converts them.
func (c *Chart) drawLocked() {
	start := time.Now()
	dc := c.dc
	pal := paletteFor(c.dark)
	centre := c.size / 2
	rMax := centre * competenceRadius

	dc.Identity()
	dc.Scale(c.dpr, c.dpr)
	dc.SetDash()

	dc.SetHexColor(pal.Background)
	dc.Clear()

	c.drawZones(pal, centre, rMax)
	c.drawGrid(pal, centre, rMax)
	c.drawPetals(pal, centre, rMax)
	c.drawModalityRing(pal, centre)
	c.drawCircuitRing(pal, centre)
	c.drawLevelRing(pal, centre)
	c.drawDomainRing(pal, centre)
	c.drawSeparators(pal, centre)
	c.drawScaleLabels(pal, centre, rMax)

	metrics.RecordRenderFrame(float64(time.Since(start).Microseconds()) / 1000)
}

func (c *Chart) px(w float64) float64 { return w * c.dpr }

func (c *Chart) drawZones(pal Palette, centre, rMax float64) {
	dc := c.dc
	radii := scoring.RadiusFractions()
	for _, z := range []struct {
		r     float64
		color string
	}{
		{rMax, pal.ZoneWhite},
		{radii[5] * rMax, pal.ZoneYellow},
		{radii[3] * rMax, pal.ZoneRed},
	} {
		dc.DrawCircle(centre, centre, z.r)
		dc.SetHexColor(z.color)
		dc.Fill()
	}
}

func (c *Chart) drawGrid(pal Palette, centre, rMax float64) {
	dc := c.dc
	radii := scoring.RadiusFractions()
	for i := 1; i <= scoring.MaxCompetence; i++ {
		dc.DrawCircle(centre, centre, radii[i]*rMax)
		switch i {
		case 3:
			dc.SetHexColor(pal.BorderRed)
			dc.SetLineWidth(c.px(2))
		case 5:
			dc.SetHexColor(pal.BorderYellow)
			dc.SetLineWidth(c.px(2.5))
		default:
			dc.SetHexColor(pal.Grid)
			dc.SetLineWidth(c.px(0.5))
			dc.SetDash(c.px(3), c.px(3))
		}
		dc.Stroke()
		dc.SetDash()
	}

	dc.SetHexColor(pal.GridLight)
	dc.SetLineWidth(c.px(0.5))
	for i := range taxonomy.SegmentCount {
		a := sectorAngle(i, taxonomy.SegmentCount)
		dc.DrawLine(centre, centre, centre+rMax*math.Cos(a), centre+rMax*math.Sin(a))
		dc.Stroke()
	}
}

// drawPetals skips unscored and zero slots, and written slots while writing
// is inactive.
func (c *Chart) drawPetals(pal Palette, centre, rMax float64) {
	if c.data == nil {
		return
	}
	dc := c.dc
	segs := taxonomy.Segments()
	for i, v := range c.shadow {
		if !c.data[i].Valid() || v == 0 {
			continue
		}
		seg := segs[i]
		if !scoring.Counts(seg, c.writingActive) {
			continue
		}
		r := scoring.CompetenceToRadiusFraction(v) * rMax
		if r < 1 {
			continue
		}
		a0 := sectorAngle(i, taxonomy.SegmentCount) + petalGap
		a1 := sectorAngle(i+1, taxonomy.SegmentCount) - petalGap

		dc.MoveTo(centre, centre)
		dc.DrawArc(centre, centre, r, a0, a1)
		dc.ClosePath()
		dc.SetHexColor(seg.Domain.Info().Color + petalAlphaHex)
		dc.FillPreserve()
		dc.SetHexColor(pal.Background)
		dc.SetLineWidth(c.px(1.5))
		dc.Stroke()
	}
}

// annulus fills and outlines the ring sector between a0 and a1.
func (c *Chart) annulus(centre float64, rg ring, a0, a1 float64, fill, stroke string, width float64) {
	dc := c.dc
	r1, r2 := centre*rg.inner, centre*rg.outer
	dc.NewSubPath()
	dc.DrawArc(centre, centre, r2, a0, a1)
	dc.DrawArc(centre, centre, r1, a1, a0)
	dc.ClosePath()
	dc.SetHexColor(fill)
	dc.FillPreserve()
	dc.SetHexColor(stroke)
	dc.SetLineWidth(c.px(width))
	dc.Stroke()
}

func (c *Chart) drawModalityRing(pal Palette, centre float64) {
	mid := centre * (modalityRing.inner + modalityRing.outer) / 2
	for i := range taxonomy.SegmentCount {
		m := taxonomy.Modality(i % taxonomy.ModalityCount)
		a0 := sectorAngle(i, taxonomy.SegmentCount)
		a1 := sectorAngle(i+1, taxonomy.SegmentCount)

		fill, label, color := pal.ModalOdd, m.Label().Name[:1], pal.ModalityText
		if m == taxonomy.Written {
			fill = pal.ModalEven
			if !c.writingActive {
				fill, label, color = pal.InactiveFill, "—", pal.InactiveText
			}
		}
		c.annulus(centre, modalityRing, a0, a1, fill, pal.Background, 0.5)
		c.arcText(mid, centre, a0, a1, label, 9, color, false)
	}
}

func (c *Chart) drawCircuitRing(pal Palette, centre float64) {
	const n = taxonomy.DomainCount * taxonomy.LevelCount * taxonomy.CircuitCount
	const perDomain = n / taxonomy.DomainCount
	mid := centre * (circuitRing.inner + circuitRing.outer) / 2
	for i := range n {
		circ := taxonomy.Circuit(i % taxonomy.CircuitCount)
		d := taxonomy.Domain(i / perDomain)
		a0, a1 := sectorAngle(i, n), sectorAngle(i+1, n)

		fill := pal.CircuitComp
		if circ == taxonomy.Expression {
			fill = pal.CircuitExpr
		}
		c.annulus(centre, circuitRing, a0, a1, fill, pal.Background, 0.5)
		c.arcText(mid, centre, a0, a1, taxonomy.CircuitLabel(d, circ).Name, 9, pal.CircuitText, false)
	}
}

func (c *Chart) drawLevelRing(pal Palette, centre float64) {
	const n = taxonomy.DomainCount * taxonomy.LevelCount
	mid := centre * (levelRing.inner + levelRing.outer) / 2
	for i := range n {
		lvl := taxonomy.Level(i % taxonomy.LevelCount)
		a0, a1 := sectorAngle(i, n), sectorAngle(i+1, n)

		fill := pal.LevelOdd
		if lvl == taxonomy.Explicit {
			fill = pal.LevelEven
		}
		c.annulus(centre, levelRing, a0, a1, fill, pal.Background, 0.5)
		c.arcText(mid, centre, a0, a1, lvl.Label().Name, 10, pal.LevelText, false)
	}
}

func (c *Chart) drawDomainRing(pal Palette, centre float64) {
	mid := centre * (domainRing.inner + domainRing.outer) / 2
	for i, info := range taxonomy.Domains() {
		a0 := sectorAngle(i, taxonomy.DomainCount)
		a1 := sectorAngle(i+1, taxonomy.DomainCount)
		c.annulus(centre, domainRing, a0, a1, info.Color, pal.Background, 1)
		c.arcText(mid, centre, a0, a1, info.Name, 13, "#FFFFFF", true)
	}
}

func (c *Chart) drawSeparators(pal Palette, centre float64) {
	dc := c.dc
	r := centre * domainRing.outer
	dc.SetHexColor(pal.Separator)
	dc.SetLineWidth(c.px(2))
	for i := range taxonomy.DomainCount {
		a := sectorAngle(i, taxonomy.DomainCount)
		dc.DrawLine(centre, centre, centre+r*math.Cos(a), centre+r*math.Sin(a))
		dc.Stroke()
	}
}

func (c *Chart) drawScaleLabels(pal Palette, centre, rMax float64) {
	dc := c.dc
	radii := scoring.RadiusFractions()
	dc.SetFontFace(c.face(12, true))
	for _, l := range []struct {
		text  string
		r     float64
		color string
	}{
		{"3", radii[3] * rMax, pal.BorderRed},
		{"5", radii[5] * rMax, pal.BorderYellow},
		{"10", rMax, pal.OuterLabel},
	} {
		dc.SetHexColor(l.color)
		dc.DrawStringAnchored(l.text, centre+8, centre-l.r+2, 0, 0.5)
	}
}
