package http

import (
	"html/template"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/artsfront/internal/http/handlers"
	httpMW "github.com/yungbote/artsfront/internal/http/middleware"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string

	CORSOrigins     []string
	MaxRequestBytes int64
	FallbackPath    string
	Templates       *template.Template

	HealthHandler  *httpH.HealthHandler
	ArtworkHandler *httpH.ArtworkHandler
	SummaryHandler *httpH.SummaryHandler
	BlobHandler    *httpH.BlobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))
	if cfg.Templates != nil {
		r.SetHTMLTemplate(cfg.Templates)
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Pages
	if cfg.ArtworkHandler != nil {
		r.GET("/artworks/:id", cfg.ArtworkHandler.ArtworkPage)
	}
	if cfg.SummaryHandler != nil {
		r.GET("/summaries/:id", cfg.SummaryHandler.SummaryPage)
	}

	// Images
	if cfg.BlobHandler != nil {
		r.GET("/blobs/:handle", cfg.BlobHandler.GetBlob)
		fallback := cfg.FallbackPath
		if fallback == "" {
			fallback = "/placeholder-image.png"
		}
		r.GET(fallback, cfg.BlobHandler.Placeholder)
	}

	api := r.Group("/api")
	{
		if cfg.ArtworkHandler != nil {
			api.GET("/artworks/:id", cfg.ArtworkHandler.GetArtwork)
		}
		if cfg.SummaryHandler != nil {
			api.POST("/summaries", cfg.SummaryHandler.CreateSummary)
			api.GET("/summaries/:id", cfg.SummaryHandler.GetSummary)
			api.POST("/summaries/:id/refresh", cfg.SummaryHandler.RefreshSummary)
			api.DELETE("/summaries/:id", cfg.SummaryHandler.DeleteSummary)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(nethttp.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})

	return r
}
