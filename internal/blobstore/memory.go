package blobstore

import (
	"context"
	"sync"

	"github.com/yungbote/artsfront/internal/domain"
)

type Memory struct {
	mu    sync.RWMutex
	blobs map[domain.ImageHandle]Blob

	// OnChange, when set, is called with the live count after every Put/Release.
	OnChange func(live int)
}

func NewMemory() *Memory {
	return &Memory{blobs: map[domain.ImageHandle]Blob{}}
}

func (m *Memory) Put(ctx context.Context, b Blob) (domain.ImageHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h := newHandle()
	data := make([]byte, len(b.Data))
	copy(data, b.Data)

	m.mu.Lock()
	m.blobs[h] = Blob{Data: data, ContentType: b.ContentType}
	live := len(m.blobs)
	m.mu.Unlock()

	m.notify(live)
	return h, nil
}

func (m *Memory) Get(_ context.Context, h domain.ImageHandle) (Blob, error) {
	m.mu.RLock()
	b, ok := m.blobs[h]
	m.mu.RUnlock()
	if !ok {
		return Blob{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) Release(_ context.Context, h domain.ImageHandle) error {
	m.mu.Lock()
	_, ok := m.blobs[h]
	delete(m.blobs, h)
	live := len(m.blobs)
	m.mu.Unlock()

	if ok {
		m.notify(live)
	}
	return nil
}

func (m *Memory) Live() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *Memory) notify(live int) {
	if m.OnChange != nil {
		m.OnChange(live)
	}
}
