package blobstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/artsfront/internal/domain"
)

var ErrNotFound = errors.New("blob not found")

type Blob struct {
	Data        []byte
	ContentType string
}

// Store holds decoded image payloads behind opaque handles. A handle stays
// dereferenceable until it is released; releasing an unknown handle is a no-op.
type Store interface {
	Put(ctx context.Context, b Blob) (domain.ImageHandle, error)
	Get(ctx context.Context, h domain.ImageHandle) (Blob, error)
	Release(ctx context.Context, h domain.ImageHandle) error
}

// Counter is implemented by stores that can report how many handles are live.
type Counter interface {
	Live() int
}

func newHandle() domain.ImageHandle {
	return domain.ImageHandle(uuid.NewString())
}
