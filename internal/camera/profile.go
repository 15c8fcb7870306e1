package camera

import (
	"time"

	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/surface"
)

// FlyProfile is the fixed pitch/zoom/easing used when moving between hops.
type FlyProfile struct {
	Zoom     float64
	Pitch    float64
	Bearing  float64
	Easing   surface.Easing
	Duration time.Duration
}

func DefaultFlyProfile() FlyProfile {
	return FlyProfile{
		Zoom:     16,
		Pitch:    45,
		Bearing:  0,
		Easing:   surface.EaseInOutCubic,
		Duration: 3 * time.Second,
	}
}

// Towards builds the camera command that flies to target.
func (p FlyProfile) Towards(target models.Coordinate) surface.CameraOptions {
	return surface.CameraOptions{
		Center:   target,
		Zoom:     p.Zoom,
		Pitch:    p.Pitch,
		Bearing:  p.Bearing,
		Easing:   p.Easing,
		Duration: p.Duration,
	}
}
