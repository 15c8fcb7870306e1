package camera

import (
	"math"
	"time"

	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/surface"
	"go.uber.org/zap"
)

// IdleAnimator slowly rotates the camera until navigation starts. Once
// stopped it stays stopped until Resume is called by an explicit view reset.
type IdleAnimator struct {
	surface surface.Surface
	center  models.Coordinate
	step    float64
	idling  bool
	logger  *zap.Logger
}

// NewIdleAnimator drifts the camera a full revolution every period, one
// step per tick. The animator starts idling.
func NewIdleAnimator(s surface.Surface, center models.Coordinate, period, tick time.Duration, logger *zap.Logger) *IdleAnimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdleAnimator{
		surface: s,
		center:  center,
		step:    DegreesPerTick(period, tick),
		idling:  true,
		logger:  logger,
	}
}

// DegreesPerTick is 360 divided by the number of ticks in one revolution.
func DegreesPerTick(period, tick time.Duration) float64 {
	if period <= 0 || tick <= 0 {
		return 0
	}
	ticks := float64(period) / float64(tick)
	return 360 / ticks
}

// Tick advances the camera by one step while idling. It reports whether a
// camera command was issued.
func (a *IdleAnimator) Tick() bool {
	if !a.idling || a.step == 0 {
		return false
	}
	a.center.Lon = wrapLongitude(a.center.Lon + a.step)
	a.surface.SetCenter(a.center)
	return true
}

// Stop suspends the drift.
func (a *IdleAnimator) Stop() {
	if a.idling {
		a.logger.Debug("idle drift suspended")
	}
	a.idling = false
}

// Resume restarts the drift from center.
func (a *IdleAnimator) Resume(center models.Coordinate) {
	a.center = center
	a.idling = true
}

func (a *IdleAnimator) Idling() bool {
	return a.idling
}

func (a *IdleAnimator) Center() models.Coordinate {
	return a.center
}

func (a *IdleAnimator) Step() float64 {
	return a.step
}

// wrapLongitude maps lon into [-180, 180).
func wrapLongitude(lon float64) float64 {
	return math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
}
