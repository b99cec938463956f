package app

import (
	"fmt"

	"github.com/yungbote/artsfront/internal/artwork"
	"github.com/yungbote/artsfront/internal/config"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
	"github.com/yungbote/artsfront/internal/summary"
)

type Services struct {
	Lookup     *artwork.Lookup
	Aggregator *summary.Aggregator
	Sessions   *summary.Manager
}

func wireServices(log *logger.Logger, cfg *config.Config, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	lookup, err := artwork.NewLookup(clients.Catalog, log, metrics)
	if err != nil {
		return Services{}, fmt.Errorf("init artwork lookup: %w", err)
	}
	agg, err := summary.NewAggregator(summary.AggregatorOptions{
		Fetcher:        clients.Catalog,
		Store:          clients.Blobs,
		Log:            log,
		Metrics:        metrics,
		MaxConcurrency: cfg.Images.MaxConcurrency,
		ThumbnailSize:  cfg.Images.ThumbnailSize,
		MaxPixels:      cfg.Images.MaxPixels,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init summary aggregator: %w", err)
	}
	sessions := summary.NewManager(agg, summary.ManagerOptions{
		Log:        log,
		Metrics:    metrics,
		SessionTTL: cfg.Summary.SessionTTL.Duration,
	})

	return Services{Lookup: lookup, Aggregator: agg, Sessions: sessions}, nil
}
