// Package surface describes the rendering engine the navigator drives.
// Commands are fire-and-forget; a camera command supersedes any animation
// still in flight.
package surface

import (
	"time"

	"github.com/sagoresarker/cabletrace/internal/models"
)

// Easing names an easing curve understood by the renderer.
type Easing string

const (
	EaseLinear       Easing = "linear"
	EaseInOutCubic   Easing = "easeInOutCubic"
	EaseOutQuadratic Easing = "easeOutQuad"
)

type CameraOptions struct {
	Center   models.Coordinate `json:"center"`
	Zoom     float64           `json:"zoom"`
	Pitch    float64           `json:"pitch"`
	Bearing  float64           `json:"bearing"`
	Easing   Easing            `json:"easing"`
	Duration time.Duration     `json:"-"`
}

type MarkerStyle struct {
	Color    string  `json:"color"`
	Altitude float64 `json:"altitude,omitempty"`
}

// Surface is the capability set of a map renderer.
type Surface interface {
	SetCenter(center models.Coordinate)
	SetZoom(level float64)
	SetPitch(angle float64)
	AnimateTo(opts CameraOptions)

	AddMarker(at models.Coordinate, style MarkerStyle)
	RemoveAllMarkers()

	SetFilter(layerID string, filter Filter)
}

// CameraView is the resting position of a camera, without motion details.
type CameraView struct {
	Center  models.Coordinate `json:"center"`
	Zoom    float64           `json:"zoom"`
	Pitch   float64           `json:"pitch"`
	Bearing float64           `json:"bearing"`
}

func (o CameraOptions) View() CameraView {
	return CameraView{Center: o.Center, Zoom: o.Zoom, Pitch: o.Pitch, Bearing: o.Bearing}
}
