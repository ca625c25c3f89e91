package radar

import (
	"math"
	"time"
)

// Ring radii as fractions of the chart centre distance.
const (
	competenceRadius = 0.52
	petalGap         = 0.012
	petalAlphaHex    = "D9" // 0.85 opacity
)

type ring struct{ inner, outer float64 }

var (
	modalityRing = ring{0.55, 0.60}
	circuitRing  = ring{0.62, 0.68}
	levelRing    = ring{0.70, 0.77}
	domainRing   = ring{0.79, 0.90}
)

// Animation and sizing defaults.
const (
	DefaultAnimationDuration   = 300 * time.Millisecond
	DefaultSingleValueDuration = 200 * time.Millisecond
	DefaultContainerWidth      = 800.0

	maxContainerWidth = 800.0
	minZoom           = 0.5
	maxZoom           = 2.0
)

// Palette holds the hex colours of one theme.
type Palette struct {
	Background   string
	ZoneRed      string
	ZoneYellow   string
	ZoneWhite    string
	BorderRed    string
	BorderYellow string
	Grid         string
	GridLight    string
	Text         string
	Separator    string
	ModalOdd     string
	ModalEven    string
	CircuitComp  string
	CircuitExpr  string
	LevelOdd     string
	LevelEven    string

	ModalityText string
	InactiveFill string
	InactiveText string
	CircuitText  string
	LevelText    string
	OuterLabel   string
}

// LightPalette is the default theme.
var LightPalette = Palette{
	Background:   "#FFFFFF",
	ZoneRed:      "#FFEBEE",
	ZoneYellow:   "#FFFDE7",
	ZoneWhite:    "#FFFFFF",
	BorderRed:    "#EF9A9A",
	BorderYellow: "#FFE082",
	Grid:         "#E0E0E0",
	GridLight:    "#F0F0F0",
	Text:         "#424242",
	Separator:    "#333333",
	ModalOdd:     "#F5F5F5",
	ModalEven:    "#E8E8E8",
	CircuitComp:  "#BBDEFB",
	CircuitExpr:  "#FFCCBC",
	LevelOdd:     "#E8F5E9",
	LevelEven:    "#C8E6C9",

	ModalityText: "#666666",
	InactiveFill: "#E0E0E0",
	InactiveText: "#BDBDBD",
	CircuitText:  "#555555",
	LevelText:    "#2E7D32",
	OuterLabel:   "#9E9E9E",
}

// DarkPalette is used when dark mode is on.
var DarkPalette = Palette{
	Background:   "#1E293B",
	ZoneRed:      "#3D1F1F",
	ZoneYellow:   "#3D3520",
	ZoneWhite:    "#2A2A3A",
	BorderRed:    "#EF5350",
	BorderYellow: "#FFB300",
	Grid:         "#475569",
	GridLight:    "#334155",
	Text:         "#E2E8F0",
	Separator:    "#0F172A",
	ModalOdd:     "#475569",
	ModalEven:    "#334155",
	CircuitComp:  "#1E3A5F",
	CircuitExpr:  "#3D2B1F",
	LevelOdd:     "#1F3D2E",
	LevelEven:    "#2D4A3A",

	ModalityText: "#94A3B8",
	InactiveFill: "#1E293B",
	InactiveText: "#475569",
	CircuitText:  "#CBD5E1",
	LevelText:    "#A7F3D0",
	OuterLabel:   "#64748B",
}

func paletteFor(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// sectorAngle returns the start angle of sector i of n, with sector 0
// starting at twelve o'clock and sectors running clockwise.
func sectorAngle(i, n int) float64 {
	return float64(i)/float64(n)*2*math.Pi - math.Pi/2
}

func easeOutCubic(t float64) float64 { return 1 - math.Pow(1-t, 3) }

func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(total)
	return math.Max(0, math.Min(1, p))
}
