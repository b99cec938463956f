package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

var ErrSessionNotFound = errors.New("summary session not found")

type ManagerOptions struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	// SessionTTL is how long an untouched session stays mounted; <= 0 disables expiry.
	SessionTTL time.Duration
	Now        func() time.Time
}

// Manager keeps the mounted summary views of this process.
type Manager struct {
	agg     *Aggregator
	log     *logger.Logger
	metrics *observability.Metrics
	ttl     time.Duration
	now     func() time.Time

	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(agg *Aggregator, opts ManagerOptions) *Manager {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	base, cancel := context.WithCancel(context.Background())
	return &Manager{
		agg:      agg,
		log:      log.With("component", "SummaryManager"),
		metrics:  opts.Metrics,
		ttl:      opts.SessionTTL,
		now:      now,
		base:     base,
		cancel:   cancel,
		sessions: map[string]*Session{},
	}
}

// Open validates the cart, computes totals and mounts a new view. Image
// resolution starts in the background unless the cart is empty.
func (m *Manager) Open(ctx context.Context, orderNumber string, items []domain.CartLineItem) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := domain.ValidateLineItems(items); err != nil {
		return nil, err
	}
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		orderNumber = strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrSessionClosed
	}
	id := uuid.NewString()
	s := newSession(m.base, id, orderNumber, items, m.agg, m.log, m.now())
	m.sessions[id] = s
	m.metrics.SetSessionsOpen(len(m.sessions))
	m.log.Info("summary session opened", "session_id", id, "order_number", orderNumber, "items", len(items), "state", s.State())
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[strings.TrimSpace(id)]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close unmounts one view and releases its handles.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[strings.TrimSpace(id)]
	if ok {
		delete(m.sessions, s.id)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	m.metrics.SetSessionsOpen(n)
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it closed.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		m.metrics.SetSessionsOpen(n)
		m.log.Info("expired summary sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

// Shutdown closes every session and refuses new ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, s := range all {
			s.Close()
		}
	}()
	select {
	case <-done:
		m.metrics.SetSessionsOpen(0)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
