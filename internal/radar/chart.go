// Package radar draws the 40-segment competence chart on a raster surface
// and animates it between data sets.
package radar

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

var (
	ErrSegmentIndex = errors.New("segment index out of range")
	ErrImageFormat  = errors.New("unsupported image format")
)

// Option configures a Chart.
type Option func(*Chart)

// WithScheduler sets the frame source. Default is a ManualScheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Chart) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithAnimationDuration sets the full-transition duration. Zero disables
// animation.
func WithAnimationDuration(d time.Duration) Option {
	return func(c *Chart) { c.duration = max(d, 0) }
}

// WithSingleValueDuration sets the duration of SetValue animations.
func WithSingleValueDuration(d time.Duration) Option {
	return func(c *Chart) { c.singleDuration = max(d, 0) }
}

// WithContainerWidth sets the width the chart is fitted into.
func WithContainerWidth(w float64) Option {
	return func(c *Chart) {
		if w > 0 {
			c.container = w
		}
	}
}

// WithDevicePixelRatio sets the backing-store scale.
func WithDevicePixelRatio(dpr float64) Option {
	return func(c *Chart) {
		if dpr > 0 {
			c.dpr = dpr
		}
	}
}

// WithZoom sets the initial zoom, clamped to [0.5, 2].
func WithZoom(z float64) Option {
	return func(c *Chart) { c.zoom = clampZoom(z) }
}

// WithDarkMode starts the chart in the dark palette.
func WithDarkMode(dark bool) Option {
	return func(c *Chart) { c.dark = dark }
}

// WithWritingActive sets whether written-modality petals are drawn.
func WithWritingActive(active bool) Option {
	return func(c *Chart) { c.writingActive = active }
}

// WithLogger sets the chart logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Chart) {
		if l != nil {
			c.log = l
		}
	}
}

// Chart is the animated radar. All methods are safe for concurrent use;
// state changes and frame callbacks are serialised on one mutex.
type Chart struct {
	mu    sync.Mutex
	sched Scheduler
	log   logger.Logger

	duration       time.Duration
	singleDuration time.Duration

	data          *scoring.Vector
	shadow        [taxonomy.SegmentCount]float64
	writingActive bool
	dark          bool
	zoom          float64
	dpr           float64
	container     float64

	// Full transition: fullID is the pending frame, generation invalidates
	// callbacks of superseded transitions.
	fullID     FrameID
	generation uint64

	// Single-value animations own their slot from SetValue on; slotGen
	// counts SetValue calls per slot.
	slotID  [taxonomy.SegmentCount]FrameID
	slotGen [taxonomy.SegmentCount]uint64

	dc    *gg.Context
	size  float64
	faces map[faceKey]font.Face
}

// New creates a chart and draws the empty frame.
func New(opts ...Option) *Chart {
	c := &Chart{
		log:            logger.Nop(),
		duration:       DefaultAnimationDuration,
		singleDuration: DefaultSingleValueDuration,
		writingActive:  true,
		zoom:           1,
		dpr:            1,
		container:      DefaultContainerWidth,
		faces:          make(map[faceKey]font.Face),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = NewManualScheduler(time.Now())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resizeLocked()
	return c
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(minZoom, math.Min(maxZoom, z))
}

// SetData replaces the chart data and animates every unscored-to-scored
// change. A nil vector clears the chart. The vector is copied.
func (c *Chart) SetData(v *scoring.Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelSinglesLocked()
	c.cancelFullLocked()

	if v == nil {
		c.data = nil
		c.drawLocked()
		return
	}
	cp := *v
	c.data = &cp

	target := targets(&cp)
	if c.duration <= 0 {
		c.shadow = target
		c.drawLocked()
		return
	}

	metrics.RecordRenderTransition("full")
	c.log.Debug(context.Background(), "full transition started",
		logger.Int("scored", cp.Scored()), logger.Duration("duration", c.duration))

	from := c.shadow
	start := c.sched.Now()
	gen := c.generation
	// A slot set after this point belongs to its own animation, even once
	// that animation has finished.
	slotGens := c.slotGen

	var step FrameFunc
	step = func(now time.Time) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			return
		}
		p := progress(now.Sub(start), c.duration)
		e := easeOutCubic(p)
		for i := range c.shadow {
			if c.slotGen[i] != slotGens[i] {
				continue
			}
			c.shadow[i] = from[i] + (target[i]-from[i])*e
		}
		c.drawLocked()
		if p < 1 {
			c.fullID = c.sched.RequestFrame(step)
			return
		}
		c.fullID = 0
	}
	c.fullID = c.sched.RequestFrame(step)
}

// SetValue updates one slot and animates it over the single-value duration.
// A running animation on the same slot is replaced.
func (c *Chart) SetValue(i int, s scoring.Score) error {
	if !taxonomy.ValidIndex(i) {
		return fmt.Errorf("%w: %d", ErrSegmentIndex, i)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data == nil {
		empty := scoring.FillVector(scoring.Null)
		c.data = &empty
	}
	c.data[i] = s

	if id := c.slotID[i]; id != 0 {
		c.sched.CancelFrame(id)
		c.slotID[i] = 0
	}
	c.slotGen[i]++

	target := 0.0
	if s.Valid() {
		target = s.Float()
	}
	if c.singleDuration <= 0 {
		c.shadow[i] = target
		c.drawLocked()
		return nil
	}

	metrics.RecordRenderTransition("single")

	from := c.shadow[i]
	start := c.sched.Now()
	gen := c.slotGen[i]

	var step FrameFunc
	step = func(now time.Time) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.slotGen[i] {
			return
		}
		p := progress(now.Sub(start), c.singleDuration)
		c.shadow[i] = from + (target-from)*easeOutCubic(p)
		c.drawLocked()
		if p < 1 {
			c.slotID[i] = c.sched.RequestFrame(step)
			return
		}
		c.shadow[i] = target
		c.slotID[i] = 0
	}
	c.slotID[i] = c.sched.RequestFrame(step)
	return nil
}

func targets(v *scoring.Vector) [taxonomy.SegmentCount]float64 {
	var out [taxonomy.SegmentCount]float64
	for i, s := range v {
		if s.Valid() {
			out[i] = s.Float()
		}
	}
	return out
}

func (c *Chart) cancelFullLocked() {
	c.generation++
	if c.fullID != 0 {
		c.sched.CancelFrame(c.fullID)
		c.fullID = 0
	}
}

func (c *Chart) cancelSinglesLocked() {
	for i, id := range c.slotID {
		c.slotGen[i]++
		if id != 0 {
			c.sched.CancelFrame(id)
			c.slotID[i] = 0
		}
	}
}

// Animating reports whether any animation frame is pending.
func (c *Chart) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fullID != 0 {
		return true
	}
	for _, id := range c.slotID {
		if id != 0 {
			return true
		}
	}
	return false
}

// Data returns a copy of the current data, or nil when the chart is empty.
func (c *Chart) Data() *scoring.Vector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	cp := *c.data
	return &cp
}

// Displayed returns the animated values currently drawn.
func (c *Chart) Displayed() [taxonomy.SegmentCount]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shadow
}

// Resize fits the chart into a container of the given width and redraws.
func (c *Chart) Resize(containerWidth float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if containerWidth > 0 {
		c.container = containerWidth
	}
	c.resizeLocked()
}

// SetDevicePixelRatio changes the backing-store scale and redraws.
func (c *Chart) SetDevicePixelRatio(dpr float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dpr > 0 {
		c.dpr = dpr
	}
	c.resizeLocked()
}

// SetZoom clamps z to [0.5, 2], resizes and redraws.
func (c *Chart) SetZoom(z float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clampZoom(z)
	c.resizeLocked()
}

// Zoom returns the effective zoom.
func (c *Chart) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// SetDarkMode switches palette and redraws.
func (c *Chart) SetDarkMode(dark bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dark = dark
	c.drawLocked()
}

// SetWritingActive toggles written-modality petals and redraws.
func (c *Chart) SetWritingActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writingActive = active
	c.drawLocked()
}

// Draw renders the current state.
func (c *Chart) Draw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawLocked()
}

// Size returns the logical size and the backing-store size in pixels.
func (c *Chart) Size() (logical float64, pixels int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size, c.dc.Width()
}

func (c *Chart) resizeLocked() {
	c.size = math.Min(c.container, maxContainerWidth) * c.zoom
	px := max(int(math.Round(c.size*c.dpr)), 1)
	if c.dc == nil || c.dc.Width() != px {
		c.dc = gg.NewContext(px, px)
	}
	c.drawLocked()
}

// Image returns a copy of the last drawn frame.
func (c *Chart) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	src, ok := c.dc.Image().(*image.RGBA)
	if !ok {
		return nil
	}
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
