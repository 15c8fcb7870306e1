package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagoresarker/cabletrace/internal/camera"
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/overlay"
	"github.com/sagoresarker/cabletrace/internal/session"
	"github.com/sagoresarker/cabletrace/internal/surface"
)

func newTestModel() ViewerModel {
	s := session.New("local", session.Options{
		Home:       surface.CameraOptions{Center: models.Coordinate{Lat: 41.9, Lon: -87.6}, Zoom: 2},
		Profile:    camera.DefaultFlyProfile(),
		Layers:     overlay.DefaultCableLayers(),
		IdlePeriod: 12 * time.Second,
		IdleTick:   100 * time.Millisecond,
	}, nil, nil)

	run := models.Run{
		Target: "bbc.com",
		Hops: []models.Hop{
			{IPs: []string{"10.0.0.1"}, Latitude: 41.88, Longitude: -87.63, City: "Chicago", Country: "US"},
			{IPs: []string{"151.101.0.81"}, Latitude: 51.5, Longitude: -0.1, City: "London", Country: "GB"},
		},
	}
	return NewViewerModel(s, run, 100*time.Millisecond)
}

func press(t *testing.T, m ViewerModel, k string) (ViewerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	vm, ok := next.(ViewerModel)
	require.True(t, ok)
	return vm, cmd
}

func TestViewer_IdleUntilLoad(t *testing.T) {
	m := newTestModel()
	assert.Contains(t, m.View(), "Waiting for a run")

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(ViewerModel)
	assert.NotNil(t, cmd, "ticks continue while idling")
	assert.InDelta(t, -84.6, m.snapshot.Camera.Center.Lon, 1e-9)

	m, _ = press(t, m, "l")
	assert.True(t, m.snapshot.Active)
	assert.Contains(t, m.View(), "1 / 2:")

	next, cmd = m.Update(TickMsg(time.Now()))
	m = next.(ViewerModel)
	assert.Nil(t, cmd, "ticking stops once navigation starts")
	assert.False(t, m.ticking)
}

func TestViewer_Navigation(t *testing.T) {
	m := newTestModel()
	m, _ = press(t, m, "l")

	m, _ = press(t, m, "n")
	assert.Equal(t, 1, m.snapshot.Index)
	m, _ = press(t, m, "n")
	assert.Equal(t, 0, m.snapshot.Index)
	m, _ = press(t, m, "p")
	assert.Equal(t, 1, m.snapshot.Index)
	assert.Contains(t, m.View(), "London, GB")
}

func TestViewer_ResetRestartsTicks(t *testing.T) {
	m := newTestModel()
	m, _ = press(t, m, "l")
	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(ViewerModel)
	require.False(t, m.ticking)

	m, cmd := press(t, m, "r")
	assert.NotNil(t, cmd)
	assert.True(t, m.ticking)
	assert.True(t, m.snapshot.Idling)

	// a second reset does not start another tick chain
	_, cmd = press(t, m, "r")
	assert.Nil(t, cmd)
}

func TestViewer_Quit(t *testing.T) {
	m := newTestModel()
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
