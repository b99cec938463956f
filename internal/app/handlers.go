package app

import (
	"fmt"

	"github.com/yungbote/artsfront/internal/config"
	"github.com/yungbote/artsfront/internal/http/handlers"
	"github.com/yungbote/artsfront/internal/imaging"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

const placeholderSize = 160

type Handlers struct {
	Health  *handlers.HealthHandler
	Artwork *handlers.ArtworkHandler
	Summary *handlers.SummaryHandler
	Blob    *handlers.BlobHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, clients Clients, services Services) (Handlers, error) {
	log.Info("Wiring handlers...")

	placeholder, err := imaging.Placeholder(placeholderSize, "No image")
	if err != nil {
		return Handlers{}, fmt.Errorf("render placeholder image: %w", err)
	}

	checks := map[string]handlers.Check{}
	if clients.Ready != nil {
		checks["blobstore"] = handlers.Check(clients.Ready)
	}

	return Handlers{
		Health:  handlers.NewHealthHandler(checks),
		Artwork: handlers.NewArtworkHandler(services.Lookup),
		Summary: handlers.NewSummaryHandler(services.Sessions, cfg.Images.FallbackPath),
		Blob:    handlers.NewBlobHandler(clients.Blobs, placeholder),
	}, nil
}
