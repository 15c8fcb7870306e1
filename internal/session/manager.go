package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/metrics"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// Manager owns live sessions. Sessions expire after ttl without activity;
// expiry stops the idle loop and disconnects subscribers.
type Manager struct {
	sessions *gocache.Cache
	opts     Options
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// DefaultCleanupInterval is used when NewManager gets a non-positive
// interval; without a janitor expired sessions would never be closed.
const DefaultCleanupInterval = time.Minute

func NewManager(opts Options, ttl, cleanupInterval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
		if ttl > 0 && ttl < cleanupInterval {
			cleanupInterval = ttl
		}
	}
	mgr := &Manager{
		sessions: gocache.New(ttl, cleanupInterval),
		opts:     opts,
		ttl:      ttl,
		metrics:  m,
		logger:   logger,
	}
	mgr.sessions.OnEvicted(mgr.evicted)
	return mgr
}

// Create starts a new idling session.
func (m *Manager) Create() *Session {
	id := uuid.New().String()
	s := New(id, m.opts, m.metrics, m.logger)

	ctx, cancel := context.WithCancel(context.Background())
	go s.RunIdle(ctx)

	m.sessions.Set(id, &entry{session: s, cancel: cancel}, gocache.DefaultExpiration)
	if m.metrics != nil {
		m.metrics.SessionsActive.Inc()
	}
	m.logger.Info("session created", zap.String("session_id", id))
	return s
}

// Get returns a session and extends its lifetime.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	e := v.(*entry)
	m.touch(id, e)
	return e.session, nil
}

// Touch extends a session's lifetime without handing it out.
func (m *Manager) Touch(id string) error {
	v, ok := m.sessions.Get(id)
	if !ok {
		return ErrNotFound
	}
	if !m.touch(id, v.(*entry)) {
		return ErrNotFound
	}
	return nil
}

// touch re-stores the entry to refresh its expiry. Replace fails once the
// janitor has evicted the id, so a closed session is never brought back.
func (m *Manager) touch(id string, e *entry) bool {
	return m.sessions.Replace(id, e, gocache.DefaultExpiration) == nil
}

func (m *Manager) Delete(id string) error {
	if _, ok := m.sessions.Get(id); !ok {
		return ErrNotFound
	}
	m.sessions.Delete(id)
	return nil
}

func (m *Manager) Len() int {
	return m.sessions.ItemCount()
}

// Close ends every session.
func (m *Manager) Close() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}

func (m *Manager) evicted(id string, v interface{}) {
	e, ok := v.(*entry)
	if !ok {
		return
	}
	e.cancel()
	e.session.Close()
	if m.metrics != nil {
		m.metrics.SessionsActive.Dec()
	}
	m.logger.Info("session closed", zap.String("session_id", id))
}
