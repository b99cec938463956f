package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/domain"
)

func newTestManager(t *testing.T, f *fakeFetcher, store blobstore.Store, opts ManagerOptions) *Manager {
	t.Helper()
	m := NewManager(newTestAggregator(t, f, store, 0), opts)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

func TestSessionEmptyCartIsTerminal(t *testing.T) {
	f := &fakeFetcher{}
	m := newTestManager(t, f, blobstore.NewMemory(), ManagerOptions{})

	s, err := m.Open(context.Background(), "ORD-1", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.State() != StateEmpty {
		t.Fatalf("state=%s", s.State())
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if s.State() != StateEmpty || f.calls.Load() != 0 {
		t.Fatalf("state=%s calls=%d", s.State(), f.calls.Load())
	}
	snap := s.Snapshot()
	if snap.Summary.OrderNumber != "ORD-1" || len(snap.Summary.Images) != 0 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestSessionResolvesThenReady(t *testing.T) {
	store := blobstore.NewMemory()
	f := &fakeFetcher{payload: pngFixture(t), fail: map[domain.ID]error{"b": errors.New("boom")}}
	m := newTestManager(t, f, store, ManagerOptions{})

	s, err := m.Open(context.Background(), "", []domain.CartLineItem{
		item("a", "Sunset", "100.00", 2),
		item("b", "Dawn", "49.99", 1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateReady {
		t.Fatalf("state=%s", snap.State)
	}
	if snap.Summary.OrderNumber == "" {
		t.Fatalf("blank order number should be generated")
	}
	if len(snap.Summary.Images) != 1 || snap.Summary.Images["a"].IsZero() {
		t.Fatalf("images=%v", snap.Summary.Images)
	}
	if FormatMoney(snap.Totals.Grand) != "249.99" {
		t.Fatalf("grand=%s", FormatMoney(snap.Totals.Grand))
	}

	v := BuildView(snap, func(h domain.ImageHandle) string { return "/blobs/" + string(h) }, "/placeholder-image.png")
	if v.Empty || len(v.Rows) != 2 {
		t.Fatalf("view=%+v", v)
	}
	if v.Rows[0].Fallback || v.Rows[0].ImageURL != "/blobs/"+string(snap.Summary.Images["a"]) {
		t.Fatalf("row a=%+v", v.Rows[0])
	}
	if !v.Rows[1].Fallback || v.Rows[1].ImageURL != "/placeholder-image.png" {
		t.Fatalf("row b=%+v", v.Rows[1])
	}
	if v.Rows[0].LineTotal != "200.00" || v.Rows[1].LineTotal != "49.99" || v.GrandTotal != "249.99" {
		t.Fatalf("totals in view: %+v", v)
	}
}

func TestSessionCloseWithOutstandingFetchesReleasesEverything(t *testing.T) {
	store := blobstore.NewMemory()
	f := &fakeFetcher{
		payload: pngFixture(t),
		block:   map[domain.ID]bool{"4": true, "5": true},
		blocked: make(chan domain.ID, 2),
	}
	m := newTestManager(t, f, store, ManagerOptions{})

	s, err := m.Open(context.Background(), "ORD", []domain.CartLineItem{
		item("1", "a", "1", 1), item("2", "b", "1", 1), item("3", "c", "1", 1),
		item("4", "d", "1", 1), item("5", "e", "1", 1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	<-f.blocked
	<-f.blocked
	waitFor(t, "three stored images", func() bool { return store.Live() == 3 })
	if s.State() != StateLoading {
		t.Fatalf("state=%s", s.State())
	}

	if err := m.Close(s.ID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if store.Live() != 0 {
		t.Fatalf("handles leaked: live=%d", store.Live())
	}
	if s.State() != StateClosed {
		t.Fatalf("state=%s", s.State())
	}
	if len(s.Snapshot().Summary.Images) != 0 {
		t.Fatalf("closed session must expose no images")
	}
	s.Close()
	if err := s.Refresh(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Refresh after close: %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after close: %v", err)
	}
}

func TestSessionRefreshReleasesSupersededHandles(t *testing.T) {
	store := blobstore.NewMemory()
	f := &fakeFetcher{payload: pngFixture(t)}
	m := newTestManager(t, f, store, ManagerOptions{})

	s, err := m.Open(context.Background(), "ORD", []domain.CartLineItem{item("1", "a", "1", 1), item("2", "b", "1", 1)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	before := s.Snapshot().Summary.Images

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	after := s.Snapshot().Summary.Images
	if len(after) != 2 {
		t.Fatalf("after=%v", after)
	}
	for id, h := range before {
		if after[id] == h {
			t.Fatalf("handle for %s was not replaced", id)
		}
		if _, err := store.Get(context.Background(), h); !errors.Is(err, blobstore.ErrNotFound) {
			t.Fatalf("superseded handle %s still live: %v", h, err)
		}
	}
	if store.Live() != 2 {
		t.Fatalf("live=%d", store.Live())
	}
}

func TestSessionRefreshKeepsImagesOnFailure(t *testing.T) {
	store := blobstore.NewMemory()
	f := &fakeFetcher{payload: pngFixture(t)}
	m := newTestManager(t, f, store, ManagerOptions{})

	s, err := m.Open(context.Background(), "ORD", []domain.CartLineItem{item("1", "a", "1", 1)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.Wait(context.Background())
	before := s.Snapshot().Summary.Images["1"]

	f.fail = map[domain.ID]error{"1": errors.New("down")}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	_ = s.Wait(context.Background())
	if got := s.Snapshot().Summary.Images["1"]; got != before {
		t.Fatalf("images must never be removed while mounted: %s -> %s", before, got)
	}
}

func TestManagerOpenRejectsInvalidItems(t *testing.T) {
	m := newTestManager(t, &fakeFetcher{}, blobstore.NewMemory(), ManagerOptions{})
	cases := [][]domain.CartLineItem{
		{item("", "a", "1", 1)},
		{item("1", "a", "-1", 1)},
		{item("1", "a", "1", 0)},
		{item("1", "a", "1", 1), item("1", "b", "1", 1)},
	}
	for i, items := range cases {
		if _, err := m.Open(context.Background(), "ORD", items); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if m.Len() != 0 {
		t.Fatalf("len=%d", m.Len())
	}
}

func TestManagerSweepExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := blobstore.NewMemory()
	m := newTestManager(t, &fakeFetcher{payload: pngFixture(t)}, store, ManagerOptions{SessionTTL: time.Minute, Now: clock})

	idle, err := m.Open(context.Background(), "A", []domain.CartLineItem{item("1", "a", "1", 1)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = idle.Wait(context.Background())

	now = now.Add(45 * time.Second)
	active, err := m.Open(context.Background(), "B", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	now = now.Add(30 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("swept=%d", n)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session should be gone: %v", err)
	}
	if _, err := m.Get(active.ID()); err != nil {
		t.Fatalf("active session: %v", err)
	}
	if store.Live() != 0 {
		t.Fatalf("live=%d", store.Live())
	}
}

func TestManagerShutdownClosesAll(t *testing.T) {
	store := blobstore.NewMemory()
	f := &fakeFetcher{payload: pngFixture(t), block: map[domain.ID]bool{"2": true}}
	m := NewManager(newTestAggregator(t, f, store, 0), ManagerOptions{})

	s, err := m.Open(context.Background(), "A", []domain.CartLineItem{item("1", "a", "1", 1), item("2", "b", "1", 1)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if s.State() != StateClosed || store.Live() != 0 || m.Len() != 0 {
		t.Fatalf("state=%s live=%d len=%d", s.State(), store.Live(), m.Len())
	}
	if _, err := m.Open(context.Background(), "B", nil); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Open after shutdown: %v", err)
	}
}
