package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

var ErrSessionClosed = errors.New("summary session closed")

type ViewState string

const (
	// StateEmpty is terminal: the cart had no items, nothing is resolved.
	StateEmpty   ViewState = "empty"
	StateLoading ViewState = "loading"
	StateReady   ViewState = "ready"
	StateClosed  ViewState = "closed"
)

// Session is one mounted order summary view. It owns the image handles its
// resolution passes acquire and releases them when superseded or on Close.
type Session struct {
	id          string
	orderNumber string
	items       []domain.CartLineItem
	totals      Totals
	createdAt   time.Time

	agg  *Aggregator
	log  *logger.Logger
	base context.Context

	// refreshMu serializes Refresh calls so at most one pass is in flight.
	refreshMu sync.Mutex

	mu         sync.Mutex
	state      ViewState
	images     *ImageSet
	cancel     context.CancelFunc
	done       chan struct{}
	closed     bool
	lastAccess time.Time
}

// Snapshot is a consistent copy of the session's view state.
type Snapshot struct {
	ID        string                   `json:"id"`
	State     ViewState                `json:"state"`
	Summary   domain.OrderSummaryState `json:"summary"`
	Totals    Totals                   `json:"totals"`
	CreatedAt time.Time                `json:"createdAt"`
}

func newSession(base context.Context, id, orderNumber string, items []domain.CartLineItem, agg *Aggregator, log *logger.Logger, now time.Time) *Session {
	cp := make([]domain.CartLineItem, len(items))
	copy(cp, items)
	s := &Session{
		id:          id,
		orderNumber: orderNumber,
		items:       cp,
		totals:      ComputeTotals(cp),
		createdAt:   now,
		agg:         agg,
		log:         log.With("session_id", id),
		base:        base,
		images:      newImageSet(agg.store, nil),
		lastAccess:  now,
	}
	if len(cp) == 0 {
		s.state = StateEmpty
		return s
	}
	s.mu.Lock()
	s.startPassLocked()
	s.mu.Unlock()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Totals() Totals { return s.totals }

func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartLineItem, len(s.items))
	copy(items, s.items)
	return Snapshot{
		ID:    s.id,
		State: s.state,
		Summary: domain.OrderSummaryState{
			OrderNumber: s.orderNumber,
			LineItems:   items,
			Images:      s.images.Map(),
		},
		Totals:    s.totals,
		CreatedAt: s.createdAt,
	}
}

// Refresh starts a new resolution pass, canceling any pass still in flight.
// Handles from the new pass overwrite older ones, which are then released.
func (s *Session) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.startPassLocked()
	return nil
}

// Wait blocks until the current resolution pass settles or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the view down: in-flight fetches are canceled, the pass is
// awaited, and every handle the session holds is released. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	cancel, done := s.cancel, s.done
	images := s.images
	s.images = newImageSet(nil, nil)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	images.Release(context.Background())
	s.log.Debug("summary session closed")
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// startPassLocked must be called with s.mu held.
func (s *Session) startPassLocked() {
	ctx, cancel := context.WithCancel(s.base)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.state = StateLoading

	items := s.items
	go func() {
		defer close(done)
		defer cancel()
		set := s.agg.ResolveImages(ctx, items)
		s.publish(set)
	}()
}

func (s *Session) publish(set *ImageSet) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		set.Release(context.Background())
		return
	}
	merged, superseded := s.images.overlay(set)
	s.images = merged
	s.state = StateReady
	s.mu.Unlock()

	for _, h := range superseded {
		_ = s.agg.store.Release(context.Background(), h)
	}
	s.log.Debug("summary images resolved", "resolved", set.Len(), "items", len(s.items))
}
