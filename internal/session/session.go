package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/camera"
	"github.com/sagoresarker/cabletrace/internal/config"
	"github.com/sagoresarker/cabletrace/internal/metrics"
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/navigator"
	"github.com/sagoresarker/cabletrace/internal/overlay"
	"github.com/sagoresarker/cabletrace/internal/surface"
)

// Options configures the state a session owns.
type Options struct {
	Home             surface.CameraOptions
	Profile          camera.FlyProfile
	MarkerStyle      surface.MarkerStyle
	Layers           overlay.CableLayers
	IdlePeriod       time.Duration
	IdleTick         time.Duration
	SubscriberBuffer int
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Home: surface.CameraOptions{
			Center:  models.Coordinate{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
			Zoom:    cfg.Map.Zoom,
			Pitch:   cfg.Map.Pitch,
			Bearing: cfg.Map.Bearing,
		},
		Profile: camera.FlyProfile{
			Zoom:     cfg.Camera.Zoom,
			Pitch:    cfg.Camera.Pitch,
			Bearing:  cfg.Camera.Bearing,
			Easing:   surface.Easing(cfg.Camera.Easing),
			Duration: cfg.Camera.Duration,
		},
		MarkerStyle: surface.MarkerStyle{Color: cfg.Markers.Color, Altitude: cfg.Markers.Altitude},
		Layers: overlay.CableLayers{
			Base:       cfg.Cables.BaseLayer,
			Highlight:  cfg.Cables.HighlightLayer,
			IDProperty: cfg.Cables.IDProperty,
		},
		IdlePeriod:       cfg.Idle.RevolutionPeriod,
		IdleTick:         cfg.Idle.TickInterval,
		SubscriberBuffer: cfg.Sessions.SubscriberBuffer,
	}
}

// Snapshot is what a viewer needs to render after an event.
type Snapshot struct {
	ID            string              `json:"id"`
	Active        bool                `json:"active"`
	Index         int                 `json:"index"`
	Count         int                 `json:"count"`
	Hop           *models.Hop         `json:"hop,omitempty"`
	Summary       string              `json:"summary,omitempty"`
	Target        string              `json:"target,omitempty"`
	RunSummary    string              `json:"run_summary,omitempty"`
	CacheStatus   string              `json:"cache_status,omitempty"`
	Idling        bool                `json:"idling"`
	VisibleCables []string            `json:"visible_cables"`
	Markers       []models.Coordinate `json:"markers"`
	Camera        surface.CameraView  `json:"camera"`
	// Filters is the filter each cable layer currently shows, so a renderer
	// connecting late can rebuild the layers without replaying commands.
	Filters  map[string]surface.Filter `json:"filters"`
	Commands []surface.Command         `json:"commands"`
}

// Session is one viewer's navigation state. Every event holds the session
// lock for its whole fan-out, so events are applied one at a time.
type Session struct {
	ID string

	mu      sync.Mutex
	opts    Options
	journal *surface.Journal
	cursor  *navigator.Cursor
	idle    *camera.IdleAnimator
	run     models.Run
	subs    map[chan []surface.Command]struct{}
	closed  bool

	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds an idling session. m may be nil.
func New(id string, opts Options, m *metrics.Metrics, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", id))

	journal := surface.NewJournal(opts.Home)
	idle := camera.NewIdleAnimator(journal, opts.Home.Center, opts.IdlePeriod, opts.IdleTick, logger)
	cursor := navigator.NewCursor(journal,
		navigator.WithIdler(idle),
		navigator.WithFlyProfile(opts.Profile),
		navigator.WithMarkerStyle(opts.MarkerStyle),
		navigator.WithCableLayers(opts.Layers),
		navigator.WithLogger(logger),
	)
	// the initial layer filters reach renderers through snapshots, not as
	// part of the first event's batch
	journal.Drain()

	return &Session{
		ID:      id,
		opts:    opts,
		journal: journal,
		cursor:  cursor,
		idle:    idle,
		subs:    make(map[chan []surface.Command]struct{}),
		metrics: m,
		logger:  logger,
	}
}

// Load replaces the run being navigated.
func (s *Session) Load(run models.Run) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.run = run
	_, active := s.cursor.Load(run.Hops)
	if s.metrics != nil {
		result := "empty"
		if active {
			result = "active"
		}
		s.metrics.LoadsTotal.WithLabelValues(result).Inc()
	}
	s.logger.Info("run loaded", zap.String("target", run.Target), zap.Int("hops", len(run.Hops)))
	return s.flush()
}

// Advance moves by direction (navigator.Next or navigator.Previous).
func (s *Session) Advance(direction int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cursor.Advance(direction); ok && s.metrics != nil {
		label := "next"
		if direction < 0 {
			label = "previous"
		}
		s.metrics.Transitions.WithLabelValues(label).Inc()
	}
	return s.flush()
}

// Reset is the explicit view reset: the run is dropped, the camera flies
// home and idle drift resumes.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.run = models.Run{}
	s.cursor.Reset()
	s.journal.AnimateTo(s.opts.Home)
	s.idle.Resume(s.opts.Home.Center)
	return s.flush()
}

func (s *Session) ShowAllCables() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Cables().ShowAll()
	return s.flush()
}

func (s *Session) ClearCableFilter() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Cables().ClearFilter()
	return s.flush()
}

// Tick delivers one idle tick. It reports whether the camera moved.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.idle.Tick() {
		return false
	}
	if s.metrics != nil {
		s.metrics.IdleTicks.Inc()
	}
	s.publish(s.journal.Drain())
	return true
}

// State returns the current snapshot without draining pending commands.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(nil)
}

// Idling reports whether automatic drift is active.
func (s *Session) Idling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idle.Idling()
}

// Subscribe returns a channel receiving every command batch the session
// emits and a function that unsubscribes.
func (s *Session) Subscribe() (<-chan []surface.Command, func()) {
	buffer := s.opts.SubscriberBuffer
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan []surface.Command, buffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
		})
	}
}

// RunIdle delivers idle ticks until ctx is done.
func (s *Session) RunIdle(ctx context.Context) {
	if s.opts.IdleTick <= 0 {
		return
	}
	ticker := time.NewTicker(s.opts.IdleTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close disconnects all subscribers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// flush drains the journal, publishes the batch and snapshots. Callers hold mu.
func (s *Session) flush() Snapshot {
	cmds := s.journal.Drain()
	s.publish(cmds)
	return s.snapshot(cmds)
}

func (s *Session) publish(cmds []surface.Command) {
	if len(cmds) == 0 {
		return
	}
	for ch := range s.subs {
		select {
		case ch <- cmds:
		default:
			s.logger.Warn("subscriber too slow, dropping command batch", zap.Int("commands", len(cmds)))
		}
	}
}

func (s *Session) snapshot(cmds []surface.Command) Snapshot {
	if cmds == nil {
		cmds = []surface.Command{}
	}
	snap := Snapshot{
		ID:            s.ID,
		Target:        s.run.Target,
		CacheStatus:   s.run.CacheStatus,
		Idling:        s.idle.Idling(),
		VisibleCables: s.cursor.Cables().Visible(),
		Markers:       s.cursor.Markers().Markers(),
		Camera:        s.journal.Camera().View(),
		Filters:       s.layerFilters(),
		Commands:      cmds,
	}
	if snap.Markers == nil {
		snap.Markers = []models.Coordinate{}
	}
	if s.run.Target != "" || len(s.run.Hops) > 0 {
		snap.RunSummary = s.run.Summary()
	}
	if state, ok := s.cursor.Current(); ok {
		hop := state.Hop
		snap.Active = true
		snap.Index = state.Index
		snap.Count = state.Count
		snap.Hop = &hop
		snap.Summary = state.Describe()
	}
	return snap
}

func (s *Session) layerFilters() map[string]surface.Filter {
	layers := s.cursor.Cables().Layers()
	return map[string]surface.Filter{
		layers.Base:      s.journal.Filter(layers.Base),
		layers.Highlight: s.journal.Filter(layers.Highlight),
	}
}
