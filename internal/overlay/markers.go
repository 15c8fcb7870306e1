package overlay

import (
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/surface"
)

// MarkerOverlay places at most one marker per exact coordinate.
type MarkerOverlay struct {
	surface surface.Surface
	style   surface.MarkerStyle
	placed  map[models.Coordinate]struct{}
	order   []models.Coordinate
}

func NewMarkerOverlay(s surface.Surface, style surface.MarkerStyle) *MarkerOverlay {
	return &MarkerOverlay{
		surface: s,
		style:   style,
		placed:  make(map[models.Coordinate]struct{}),
	}
}

// Place adds a marker at c unless one is already there. It reports whether
// a marker was added.
func (m *MarkerOverlay) Place(c models.Coordinate) bool {
	if _, ok := m.placed[c]; ok {
		return false
	}
	m.placed[c] = struct{}{}
	m.order = append(m.order, c)
	m.surface.AddMarker(c, m.style)
	return true
}

func (m *MarkerOverlay) Reset() {
	m.placed = make(map[models.Coordinate]struct{})
	m.order = nil
	m.surface.RemoveAllMarkers()
}

func (m *MarkerOverlay) Len() int {
	return len(m.order)
}

// Markers returns placed coordinates in placement order.
func (m *MarkerOverlay) Markers() []models.Coordinate {
	return append([]models.Coordinate(nil), m.order...)
}
