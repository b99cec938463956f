package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/artsfront/internal/config"
	httpx "github.com/yungbote/artsfront/internal/http"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/logger"
	"github.com/yungbote/artsfront/internal/platform/shutdown"
)

type App struct {
	Log      *logger.Logger
	Config   *config.Config
	Metrics  *observability.Metrics
	Clients  Clients
	Services Services

	server *httpx.Server
	hooks  shutdown.Hooks
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Config: cfg, Metrics: observability.NewMetrics()}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Telemetry.OtelEnabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Telemetry.Version,
		Endpoint:    cfg.Telemetry.OtelEndpoint,
		Insecure:    cfg.Telemetry.OtelInsecure,
		Headers:     cfg.Telemetry.OtelHeaders,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	a.hooks.Add(otelShutdown)

	clients, err := wireClients(ctx, log, cfg, a.Metrics)
	if err != nil {
		_ = a.hooks.Run(context.Background())
		log.Sync()
		return nil, err
	}
	a.Clients = clients
	if clients.Close != nil {
		a.hooks.Add(clients.Close)
	}

	services, err := wireServices(log, cfg, clients, a.Metrics)
	if err != nil {
		_ = a.hooks.Run(context.Background())
		log.Sync()
		return nil, err
	}
	a.Services = services
	a.hooks.Add(services.Sessions.Shutdown)

	handlers, err := wireHandlers(log, cfg, clients, services)
	if err != nil {
		_ = a.hooks.Run(context.Background())
		log.Sync()
		return nil, err
	}
	a.server = wireServer(log, cfg, a.Metrics, handlers)

	return a, nil
}

// Run serves until ctx is canceled or the listener fails, then shuts down
// the HTTP server, open summary views and telemetry in that order.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go a.Services.Sessions.Run(janitorCtx, a.Config.Summary.JanitorInterval.Duration)

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.server.Addr())
		errCh <- a.server.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.Log.Info("shutdown requested")
	case runErr = <-errCh:
		if runErr != nil {
			a.Log.Error("HTTP server failed", "error", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	stopJanitor()
	if err := a.Close(shutdownCtx); err != nil {
		a.Log.Warn("shutdown hooks failed", "error", err)
	}
	return runErr
}

// Close releases everything New acquired. Safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	err := a.hooks.Run(ctx)
	if a.Log != nil {
		a.Log.Sync()
	}
	return err
}
