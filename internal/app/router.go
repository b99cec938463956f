package app

import (
	"github.com/yungbote/artsfront/internal/config"
	httpx "github.com/yungbote/artsfront/internal/http"
	"github.com/yungbote/artsfront/internal/http/views"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, h Handlers) *httpx.Server {
	log.Info("Wiring router...")

	// The templates are embedded, so a parse failure is a build defect.
	tmpl, err := views.Load()
	if err != nil {
		log.Fatal("parse page templates", "error", err)
	}

	return httpx.NewServer(cfg.HTTP, httpx.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.Telemetry.ServiceName,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		FallbackPath:    cfg.Images.FallbackPath,
		Templates:       tmpl,
		HealthHandler:   h.Health,
		ArtworkHandler:  h.Artwork,
		SummaryHandler:  h.Summary,
		BlobHandler:     h.Blob,
	})
}
