package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagoresarker/cabletrace/internal/camera"
	"github.com/sagoresarker/cabletrace/internal/metrics"
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/navigator"
	"github.com/sagoresarker/cabletrace/internal/overlay"
	"github.com/sagoresarker/cabletrace/internal/surface"
)

func testOptions() Options {
	return Options{
		Home: surface.CameraOptions{
			Center: models.Coordinate{Lat: 41.9, Lon: -87.6},
			Zoom:   2,
		},
		Profile:          camera.DefaultFlyProfile(),
		MarkerStyle:      surface.MarkerStyle{Color: "#e04c4c", Altitude: 100},
		Layers:           overlay.DefaultCableLayers(),
		IdlePeriod:       12 * time.Second,
		IdleTick:         100 * time.Millisecond,
		SubscriberBuffer: 8,
	}
}

func testRun() models.Run {
	return models.Run{
		Target: "bbc.com",
		Hops: []models.Hop{
			{IPs: []string{"10.0.0.1"}, Latitude: 41.88, Longitude: -87.63,
				ExitCable: &models.CableReference{ID: "tata-tgn-atlantic"}},
			{IPs: []string{"195.66.224.1"}, Latitude: 51.51, Longitude: -0.13,
				EntryCable: &models.CableReference{ID: "tata-tgn-atlantic"}},
			{IPs: []string{"151.101.0.81"}, Latitude: 51.5, Longitude: -0.1,
				Facility: &models.Facility{Name: "Telehouse North", Latitude: 51.51, Longitude: 0.0}},
		},
	}
}

func TestSession_StartsIdling(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)

	assert.True(t, s.Idling())
	assert.True(t, s.Tick())

	snap := s.State()
	assert.False(t, snap.Active)
	assert.True(t, snap.Idling)
	assert.InDelta(t, -84.6, snap.Camera.Center.Lon, 1e-9)
	assert.Empty(t, snap.Markers)
	assert.Empty(t, snap.Commands)
}

func TestSession_LoadStopsIdlingForGood(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)

	snap := s.Load(testRun())
	require.True(t, snap.Active)
	assert.False(t, snap.Idling)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 3, snap.Count)
	assert.Equal(t, []string{"tata-tgn-atlantic"}, snap.VisibleCables)
	assert.Equal(t, "Target: bbc.com\nHops: 3", snap.RunSummary)
	assert.Contains(t, snap.Summary, "1 / 3:")

	camAfterLoad := s.State().Camera
	for i := 0; i < 10; i++ {
		assert.False(t, s.Tick())
	}
	assert.Equal(t, camAfterLoad, s.State().Camera)

	// navigation does not bring the drift back
	s.Advance(navigator.Next)
	s.Advance(navigator.Previous)
	assert.False(t, s.Idling())
}

func TestSession_LoadEmptyKeepsIdling(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)

	snap := s.Load(models.Run{})
	assert.False(t, snap.Active)
	assert.True(t, snap.Idling)
	assert.Empty(t, snap.Commands)
	assert.True(t, s.Tick())
}

func TestSession_AdvanceWraps(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)
	s.Load(testRun())

	snap := s.Advance(navigator.Previous)
	assert.Equal(t, 2, snap.Index)
	// facility position wins over the hop's own coordinates
	assert.Equal(t, models.Coordinate{Lat: 51.51, Lon: 0.0}, snap.Camera.Center)
	assert.Equal(t, 16.0, snap.Camera.Zoom)

	snap = s.Advance(navigator.Next)
	assert.Equal(t, 0, snap.Index)
	assert.Len(t, snap.Markers, 2)
}

func TestSession_AdvanceWithoutRun(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)

	snap := s.Advance(navigator.Next)
	assert.False(t, snap.Active)
	assert.Empty(t, snap.Commands)
}

func TestSession_ResetResumesIdling(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)
	s.Load(testRun())
	require.False(t, s.Idling())

	snap := s.Reset()
	assert.False(t, snap.Active)
	assert.True(t, snap.Idling)
	assert.Empty(t, snap.Markers)
	assert.Empty(t, snap.VisibleCables)
	assert.Empty(t, snap.RunSummary)
	assert.Equal(t, models.Coordinate{Lat: 41.9, Lon: -87.6}, snap.Camera.Center)
	assert.Equal(t, 2.0, snap.Camera.Zoom)

	assert.True(t, s.Tick())
}

func TestSession_CableOverrides(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)
	s.Load(testRun())

	snap := s.ShowAllCables()
	require.Len(t, snap.Commands, 1)
	assert.Equal(t, surface.OpSetFilter, snap.Commands[0].Op)
	assert.True(t, snap.Commands[0].Filter.IsAll())

	snap = s.ClearCableFilter()
	require.Len(t, snap.Commands, 1)
	assert.True(t, snap.Commands[0].Filter.IsNone())
	assert.Empty(t, snap.VisibleCables)
}

func TestSession_Subscribe(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)
	ch, unsubscribe := s.Subscribe()

	s.Load(testRun())

	select {
	case batch := <-ch:
		require.NotEmpty(t, batch)
		assert.Equal(t, surface.OpAddMarker, batch[0].Op)
		assert.Equal(t, surface.OpAnimateTo, batch[len(batch)-1].Op)
	case <-time.After(time.Second):
		t.Fatal("no command batch delivered")
	}

	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	// unsubscribing twice is harmless
	unsubscribe()
}

func TestSession_CloseDisconnectsSubscribers(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)
	ch, _ := s.Subscribe()

	s.Close()
	_, open := <-ch
	assert.False(t, open)

	late, _ := s.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestSession_SlowSubscriberDoesNotBlock(t *testing.T) {
	opts := testOptions()
	opts.SubscriberBuffer = 1
	s := New("s1", opts, nil, nil)
	_, _ = s.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			s.Tick()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
}

func TestSession_RunIdle(t *testing.T) {
	opts := testOptions()
	opts.IdleTick = 5 * time.Millisecond
	s := New("s1", opts, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunIdle(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return s.State().Camera.Center.Lon != -87.6
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("idle loop did not stop")
	}
}

func TestSession_Metrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	s := New("s1", testOptions(), m, nil)

	s.Tick()
	s.Load(models.Run{})
	s.Load(testRun())
	s.Advance(navigator.Next)
	s.Advance(navigator.Previous)
	s.Advance(navigator.Previous)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdleTicks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadsTotal.WithLabelValues("active")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("next")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("previous")))
}

func TestSession_EmptyEventsPublishNothing(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	snap := s.Load(models.Run{})
	assert.Empty(t, snap.Commands)
	snap = s.Advance(navigator.Next)
	assert.Empty(t, snap.Commands)
	snap = s.Advance(navigator.Previous)
	assert.Empty(t, snap.Commands)

	select {
	case batch := <-ch:
		t.Fatalf("unexpected command batch %v", batch)
	default:
	}
}

func TestSession_SnapshotCarriesLayerFilters(t *testing.T) {
	s := New("s1", testOptions(), nil, nil)

	snap := s.State()
	require.Contains(t, snap.Filters, "cables")
	require.Contains(t, snap.Filters, "highlights")
	assert.True(t, snap.Filters["cables"].IsAll())
	assert.True(t, snap.Filters["highlights"].IsNone())

	s.Load(testRun())
	snap = s.State()
	assert.Equal(t, []string{"tata-tgn-atlantic"}, snap.Filters["highlights"].Values())

	// a renderer arriving after the override sees it, not the empty id set
	s.ShowAllCables()
	snap = s.State()
	assert.Empty(t, snap.VisibleCables)
	assert.True(t, snap.Filters["highlights"].IsAll())

	s.ClearCableFilter()
	assert.True(t, s.State().Filters["highlights"].IsNone())
}
