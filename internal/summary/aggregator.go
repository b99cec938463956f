package summary

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/catalog"
	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/imaging"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/ctxutil"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/artsfront/internal/summary")

// ImageFetcher is the slice of the catalog client the aggregator needs.
type ImageFetcher interface {
	GetArtworkImage(ctx context.Context, id domain.ID) (*catalog.Image, error)
}

type AggregatorOptions struct {
	Fetcher ImageFetcher
	Store   blobstore.Store
	Log     *logger.Logger
	Metrics *observability.Metrics

	// MaxConcurrency caps in-flight image fetches; <= 0 means one per item.
	MaxConcurrency int
	// ThumbnailSize bounds the longest side of stored images; <= 0 keeps originals.
	ThumbnailSize int
	// MaxPixels rejects payloads declaring larger dimensions; <= 0 uses imaging.DefaultMaxPixels.
	MaxPixels int64
}

type Aggregator struct {
	fetcher        ImageFetcher
	store          blobstore.Store
	log            *logger.Logger
	metrics        *observability.Metrics
	maxConcurrency int
	thumbnailSize  int
	maxPixels      int64
}

func NewAggregator(opts AggregatorOptions) (*Aggregator, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("image fetcher required")
	}
	if opts.Store == nil {
		return nil, errors.New("blob store required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		fetcher:        opts.Fetcher,
		store:          opts.Store,
		log:            log.With("component", "SummaryAggregator"),
		metrics:        opts.Metrics,
		maxConcurrency: opts.MaxConcurrency,
		thumbnailSize:  opts.ThumbnailSize,
		maxPixels:      opts.MaxPixels,
	}, nil
}

type imageResult struct {
	id     domain.ID
	handle domain.ImageHandle
	err    error
}

// ResolveImages fetches one image per distinct item id concurrently and waits
// for every fetch to settle before returning. Per-item failures are logged and
// leave the id out of the set; the pass itself never fails.
func (a *Aggregator) ResolveImages(ctx context.Context, items []domain.CartLineItem) *ImageSet {
	ids := domain.DistinctIDs(items)
	if len(ids) == 0 {
		return newImageSet(a.store, nil)
	}

	ctx, span := tracer.Start(ctx, "summary.ResolveImages")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(ids)))

	results := make([]imageResult, len(ids))

	// Tasks never return an error, so gctx is only canceled by the parent.
	g, gctx := errgroup.WithContext(ctx)
	limit := a.maxConcurrency
	if limit <= 0 || limit > len(ids) {
		limit = len(ids)
	}
	g.SetLimit(limit)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = a.resolveOne(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	handles := make(map[domain.ID]domain.ImageHandle, len(results))
	for _, r := range results {
		if r.err != nil || r.handle.IsZero() {
			continue
		}
		handles[r.id] = r.handle
	}
	span.SetAttributes(attribute.Int("images.resolved", len(handles)))
	return newImageSet(a.store, handles)
}

func (a *Aggregator) resolveOne(ctx context.Context, id domain.ID) imageResult {
	handle, err := a.fetchAndStore(ctx, id)
	if err != nil {
		reason := catalog.Classify(err)
		a.metrics.ObserveImageFetch(string(reason))
		fields := append([]interface{}{"artwork_id", id.String(), "reason", reason, "error", err}, ctxutil.LogFields(ctx)...)
		if reason == catalog.ReasonCanceled {
			a.log.Debug("artwork image fetch canceled", fields...)
		} else {
			a.log.Warn("artwork image fetch failed", fields...)
		}
		return imageResult{id: id, err: err}
	}
	a.metrics.ObserveImageFetch("ok")
	return imageResult{id: id, handle: handle}
}

func (a *Aggregator) fetchAndStore(ctx context.Context, id domain.ID) (domain.ImageHandle, error) {
	img, err := a.fetcher.GetArtworkImage(ctx, id)
	if err != nil {
		return "", err
	}
	png, err := imaging.Normalize(img.Bytes, a.thumbnailSize, a.maxPixels)
	if err != nil {
		return "", &catalog.DecodeError{What: "image", Err: err}
	}
	h, err := a.store.Put(ctx, blobstore.Blob{Data: png, ContentType: imaging.PNGContentType})
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return h, nil
}
