package summary

import (
	"context"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/domain"
)

// ImageSet is the settled outcome of one resolution pass: a handle per id that
// resolved. Ids missing from the set render the fallback image.
type ImageSet struct {
	store   blobstore.Store
	handles map[domain.ID]domain.ImageHandle
}

func newImageSet(store blobstore.Store, handles map[domain.ID]domain.ImageHandle) *ImageSet {
	if handles == nil {
		handles = map[domain.ID]domain.ImageHandle{}
	}
	return &ImageSet{store: store, handles: handles}
}

func (s *ImageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.handles)
}

func (s *ImageSet) Handle(id domain.ID) (domain.ImageHandle, bool) {
	if s == nil {
		return "", false
	}
	h, ok := s.handles[id]
	return h, ok
}

// Map returns a copy of the id → handle table.
func (s *ImageSet) Map() map[domain.ID]domain.ImageHandle {
	out := make(map[domain.ID]domain.ImageHandle, s.Len())
	if s == nil {
		return out
	}
	for id, h := range s.handles {
		out[id] = h
	}
	return out
}

// Release revokes every handle in the set. The set is empty afterwards.
func (s *ImageSet) Release(ctx context.Context) {
	if s == nil || s.store == nil {
		return
	}
	for id, h := range s.handles {
		_ = s.store.Release(ctx, h)
		delete(s.handles, id)
	}
}

// overlay returns a set holding s's handles overwritten by next's, and the
// handles of s that next replaced. Neither input is modified.
func (s *ImageSet) overlay(next *ImageSet) (*ImageSet, []domain.ImageHandle) {
	merged := s.Map()
	var superseded []domain.ImageHandle
	for id, h := range next.Map() {
		if old, ok := merged[id]; ok && old != h {
			superseded = append(superseded, old)
		}
		merged[id] = h
	}
	store := next.storeOr(s)
	return newImageSet(store, merged), superseded
}

func (s *ImageSet) storeOr(other *ImageSet) blobstore.Store {
	if s != nil && s.store != nil {
		return s.store
	}
	if other != nil {
		return other.store
	}
	return nil
}
