package app

import (
	"context"
	"fmt"

	"github.com/yungbote/artsfront/internal/blobstore"
	"github.com/yungbote/artsfront/internal/catalog"
	"github.com/yungbote/artsfront/internal/config"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

type Clients struct {
	Catalog *catalog.Client
	Blobs   blobstore.Store
	// Ready is non-nil when the blob store has a remote dependency to probe.
	Ready func(ctx context.Context) error
	Close func(ctx context.Context) error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...", "catalog", cfg.Catalog.BaseURL, "blobstore", cfg.Blobstore.Driver)

	cat, err := catalog.New(catalog.Options{
		BaseURL:       cfg.Catalog.BaseURL,
		LookupTimeout: cfg.Catalog.LookupTimeout.Duration,
		ImageTimeout:  cfg.Catalog.ImageTimeout.Duration,
		MaxRetries:    cfg.Catalog.MaxRetries,
		MaxImageBytes: cfg.Catalog.MaxImageBytes,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init catalog client: %w", err)
	}

	out := Clients{Catalog: cat}
	if err := resolveBlobStore(ctx, log, cfg.Blobstore, metrics, &out); err != nil {
		return Clients{}, err
	}
	return out, nil
}
