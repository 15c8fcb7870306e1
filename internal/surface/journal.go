package surface

import (
	"sync"

	"github.com/sagoresarker/cabletrace/internal/models"
)

// Op identifies a surface command.
type Op string

const (
	OpSetCenter        Op = "set_center"
	OpSetZoom          Op = "set_zoom"
	OpSetPitch         Op = "set_pitch"
	OpAnimateTo        Op = "animate_to"
	OpAddMarker        Op = "add_marker"
	OpRemoveAllMarkers Op = "remove_all_markers"
	OpSetFilter        Op = "set_filter"
)

// Command is one recorded surface call in wire form.
type Command struct {
	Op         Op                 `json:"op"`
	Center     *models.Coordinate `json:"center,omitempty"`
	Zoom       *float64           `json:"zoom,omitempty"`
	Pitch      *float64           `json:"pitch,omitempty"`
	Bearing    *float64           `json:"bearing,omitempty"`
	Easing     Easing             `json:"easing,omitempty"`
	DurationMs int64              `json:"duration_ms,omitempty"`
	Style      *MarkerStyle       `json:"style,omitempty"`
	Layer      string             `json:"layer,omitempty"`
	Filter     *Filter            `json:"filter,omitempty"`
}

// Journal is a Surface that records commands for a remote renderer and
// keeps the resulting scene state.
type Journal struct {
	mu      sync.Mutex
	pending []Command

	camera  CameraOptions
	markers []models.Coordinate
	filters map[string]Filter
}

func NewJournal(initial CameraOptions) *Journal {
	return &Journal{
		camera:  initial,
		filters: make(map[string]Filter),
	}
}

func (j *Journal) record(cmd Command) {
	j.pending = append(j.pending, cmd)
}

func (j *Journal) SetCenter(center models.Coordinate) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.camera.Center = center
	j.record(Command{Op: OpSetCenter, Center: &center})
}

func (j *Journal) SetZoom(level float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.camera.Zoom = level
	j.record(Command{Op: OpSetZoom, Zoom: &level})
}

func (j *Journal) SetPitch(angle float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.camera.Pitch = angle
	j.record(Command{Op: OpSetPitch, Pitch: &angle})
}

func (j *Journal) AnimateTo(opts CameraOptions) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.camera = opts
	center, zoom, pitch, bearing := opts.Center, opts.Zoom, opts.Pitch, opts.Bearing
	j.record(Command{
		Op:         OpAnimateTo,
		Center:     &center,
		Zoom:       &zoom,
		Pitch:      &pitch,
		Bearing:    &bearing,
		Easing:     opts.Easing,
		DurationMs: opts.Duration.Milliseconds(),
	})
}

func (j *Journal) AddMarker(at models.Coordinate, style MarkerStyle) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.markers = append(j.markers, at)
	j.record(Command{Op: OpAddMarker, Center: &at, Style: &style})
}

func (j *Journal) RemoveAllMarkers() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.markers = nil
	j.record(Command{Op: OpRemoveAllMarkers})
}

func (j *Journal) SetFilter(layerID string, filter Filter) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.filters[layerID] = filter
	j.record(Command{Op: OpSetFilter, Layer: layerID, Filter: &filter})
}

// Drain returns the commands recorded since the previous Drain.
func (j *Journal) Drain() []Command {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.pending
	j.pending = nil
	return out
}

// Camera returns the camera as the renderer will show it once every
// recorded command has been applied.
func (j *Journal) Camera() CameraOptions {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.camera
}

func (j *Journal) Markers() []models.Coordinate {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.Coordinate(nil), j.markers...)
}

// Filter returns the filter last set on a layer. Layers never filtered
// report SelectAll, the renderer default.
func (j *Journal) Filter(layerID string) Filter {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, ok := j.filters[layerID]
	if !ok {
		return SelectAll()
	}
	return f
}
