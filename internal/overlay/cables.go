package overlay

import (
	"sort"

	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/surface"
)

type CableLayers struct {
	Base       string
	Highlight  string
	IDProperty string
}

func DefaultCableLayers() CableLayers {
	return CableLayers{
		Base:       "cables",
		Highlight:  "highlights",
		IDProperty: "id",
	}
}

// CableOverlayManager owns the set of highlighted cable ids and the filter
// on the highlight layer that selects them.
type CableOverlayManager struct {
	surface surface.Surface
	layers  CableLayers
	visible map[string]struct{}
	filter  surface.Filter
}

// NewCableOverlayManager installs the initial filters: every cable on the
// base layer, nothing on the highlight layer.
func NewCableOverlayManager(s surface.Surface, layers CableLayers) *CableOverlayManager {
	m := &CableOverlayManager{
		surface: s,
		layers:  layers,
		visible: make(map[string]struct{}),
	}
	s.SetFilter(layers.Base, surface.SelectAll())
	m.rebuild()
	return m
}

// Update highlights the cable the current hop departs through. When the
// predecessor departs through the same cable the current hop arrives by,
// that cable is highlighted as well; only the id has to match.
func (m *CableOverlayManager) Update(current models.Hop, previous *models.Hop) {
	changed := false
	if ref := current.ExitCable; ref != nil && ref.ID != "" {
		changed = m.add(ref.ID) || changed
	}
	if previous != nil && previous.ExitCable != nil && current.EntryCable != nil &&
		previous.ExitCable.ID == current.EntryCable.ID && current.EntryCable.ID != "" {
		changed = m.add(current.EntryCable.ID) || changed
	}
	// an operator override is replaced by the id-based filter on change
	if changed || !m.filterMatchesSet() {
		m.rebuild()
	}
}

// Clear empties the visible set; the highlight layer then selects nothing.
func (m *CableOverlayManager) Clear() {
	m.visible = make(map[string]struct{})
	m.rebuild()
}

// ShowAll highlights every cable feature regardless of the visible set,
// which is emptied.
func (m *CableOverlayManager) ShowAll() {
	m.visible = make(map[string]struct{})
	m.filter = surface.SelectAll()
	m.surface.SetFilter(m.layers.Highlight, m.filter)
}

// ClearFilter explicitly selects no cable on the highlight layer.
func (m *CableOverlayManager) ClearFilter() {
	m.visible = make(map[string]struct{})
	m.filter = surface.SelectNone()
	m.surface.SetFilter(m.layers.Highlight, m.filter)
}

// Visible returns the highlighted ids in sorted order.
func (m *CableOverlayManager) Visible() []string {
	ids := make([]string, 0, len(m.visible))
	for id := range m.visible {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *CableOverlayManager) Layers() CableLayers {
	return m.layers
}

func (m *CableOverlayManager) Filter() surface.Filter {
	return m.filter
}

func (m *CableOverlayManager) add(id string) bool {
	if _, ok := m.visible[id]; ok {
		return false
	}
	m.visible[id] = struct{}{}
	return true
}

func (m *CableOverlayManager) filterMatchesSet() bool {
	if len(m.visible) == 0 {
		return m.filter.IsNone()
	}
	return !m.filter.IsAll() && !m.filter.IsNone()
}

func (m *CableOverlayManager) rebuild() {
	m.filter = surface.SelectIn(m.layers.IDProperty, m.Visible())
	m.surface.SetFilter(m.layers.Highlight, m.filter)
}
