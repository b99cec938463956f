package summary

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/catalog"
	"github.com/yungbote/artsfront/internal/domain"
)

func pngFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xAA
	}
	img.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

// hugePNG is a few hundred bytes on the wire but declares w x h pixels.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	raw := buf.Bytes()
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

// fakeFetcher serves a fixed payload per id. Ids in fail return an upstream
// error; ids in block wait for ctx to be canceled.
type fakeFetcher struct {
	payload []byte
	fail    map[domain.ID]error
	block   map[domain.ID]bool

	blocked  chan domain.ID
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration

	mu  sync.Mutex
	ids []domain.ID
}

func (f *fakeFetcher) GetArtworkImage(ctx context.Context, id domain.ID) (*catalog.Image, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.ids = append(f.ids, id)
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	if f.block[id] {
		if f.blocked != nil {
			f.blocked <- id
		}
		<-ctx.Done()
		return nil, &catalog.TransportError{Op: "GET image", Err: ctx.Err()}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	return &catalog.Image{Bytes: f.payload, ContentType: "image/png"}, nil
}

func newTestAggregator(t *testing.T, f *fakeFetcher, store blobstore.Store, maxConc int) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(AggregatorOptions{Fetcher: f, Store: store, MaxConcurrency: maxConc})
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return agg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
