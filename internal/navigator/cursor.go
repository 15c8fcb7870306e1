// Package navigator steps through the hops of one traceroute run and fans
// every transition out to the markers, the cable overlay and the camera.
package navigator

import (
	"github.com/sagoresarker/cabletrace/internal/camera"
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/overlay"
	"github.com/sagoresarker/cabletrace/internal/surface"
	"go.uber.org/zap"
)

// Directions accepted by Advance.
const (
	Next     = 1
	Previous = -1
)

// Idler is the part of the idle animator the cursor needs.
type Idler interface {
	Stop()
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithIdler sets the animator stopped when a non-empty list is loaded.
func WithIdler(i Idler) Option {
	return func(c *Cursor) { c.idle = i }
}

// WithFlyProfile sets the camera motion used between hops.
func WithFlyProfile(p camera.FlyProfile) Option {
	return func(c *Cursor) { c.profile = p }
}

// WithMarkerStyle sets the style of placed markers.
func WithMarkerStyle(s surface.MarkerStyle) Option {
	return func(c *Cursor) { c.markerStyle = s }
}

// WithCableLayers names the base and highlight cable layers.
func WithCableLayers(l overlay.CableLayers) Option {
	return func(c *Cursor) { c.layers = l }
}

// WithLogger sets the logger; transitions are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cursor) { c.logger = l }
}

// Cursor owns the hop list and the current index. It is not safe for
// concurrent use; callers serialize events.
type Cursor struct {
	surface     surface.Surface
	profile     camera.FlyProfile
	markerStyle surface.MarkerStyle
	layers      overlay.CableLayers
	idle        Idler
	logger      *zap.Logger

	hops    []models.Hop
	index   int
	markers *overlay.MarkerOverlay
	cables  *overlay.CableOverlayManager
}

func NewCursor(s surface.Surface, opts ...Option) *Cursor {
	c := &Cursor{
		surface:     s,
		profile:     camera.DefaultFlyProfile(),
		markerStyle: surface.MarkerStyle{Color: "#e04c4c", Altitude: 100},
		layers:      overlay.DefaultCableLayers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.markers = overlay.NewMarkerOverlay(s, c.markerStyle)
	c.cables = overlay.NewCableOverlayManager(s, c.layers)
	return c
}

// Load replaces the hop list and moves to the first hop, discarding the
// markers and cable highlights of the previous list. An empty list yields an
// inactive cursor and touches nothing on the surface.
func (c *Cursor) Load(hops []models.Hop) (models.NavigationState, bool) {
	c.hops = append([]models.Hop(nil), hops...)
	c.index = 0

	if len(c.hops) == 0 {
		c.logger.Debug("loaded empty hop list")
		return models.NavigationState{}, false
	}

	if c.markers.Len() > 0 || len(c.cables.Visible()) > 0 {
		c.markers.Reset()
		c.cables.Clear()
	}
	if c.idle != nil {
		c.idle.Stop()
	}
	return c.visit(0), true
}

// Advance moves the cursor by direction with wraparound in both
// directions. It returns false when there is nothing to navigate.
func (c *Cursor) Advance(direction int) (models.NavigationState, bool) {
	n := len(c.hops)
	if n == 0 {
		return models.NavigationState{}, false
	}
	return c.visit(Wrap(c.index+direction, n)), true
}

// Current returns the state at the cursor without side effects.
func (c *Cursor) Current() (models.NavigationState, bool) {
	if len(c.hops) == 0 {
		return models.NavigationState{}, false
	}
	return c.state(), true
}

// Reset drops the hop list along with its markers and highlights.
func (c *Cursor) Reset() {
	c.hops = nil
	c.index = 0
	c.markers.Reset()
	c.cables.Clear()
}

func (c *Cursor) Len() int {
	return len(c.hops)
}

func (c *Cursor) Markers() *overlay.MarkerOverlay {
	return c.markers
}

func (c *Cursor) Cables() *overlay.CableOverlayManager {
	return c.cables
}

// Wrap returns i mod n in [0, n) for n > 0, including negative i.
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

func (c *Cursor) visit(index int) models.NavigationState {
	c.index = index
	hop := c.hops[index]
	pos := hop.Position()

	c.markers.Place(pos)

	var previous *models.Hop
	if index > 0 {
		previous = &c.hops[index-1]
	}
	c.cables.Update(hop, previous)

	c.surface.AnimateTo(c.profile.Towards(pos))

	c.logger.Debug("moved to hop",
		zap.Int("index", index),
		zap.Int("count", len(c.hops)),
		zap.Float64("lat", pos.Lat),
		zap.Float64("lon", pos.Lon),
	)
	return c.state()
}

func (c *Cursor) state() models.NavigationState {
	return models.NavigationState{
		Hop:   c.hops[c.index],
		Index: c.index,
		Count: len(c.hops),
	}
}
