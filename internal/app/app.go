package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/embedding"
	"github.com/yungbote/articlerec/internal/http"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/recommend"
)

type App struct {
	Log     *logger.Logger
	Cfg     *config.Config
	Metrics *observability.Metrics
	Storage *Storage
	Clients Clients
	Service *recommend.Service
	Server  *http.Server

	shutdownOTel func(context.Context) error
}

// New wires the engine from cfg. The returned App owns every connection it
// opened; call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.NewWithOptions(logger.Options{Mode: cfg.Env, Level: cfg.LogLevel, Redact: true})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithLogger(ctx, cfg, log)
}

func NewWithLogger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	a := &App{Log: log, Cfg: cfg}
	a.shutdownOTel = observability.InitOTel(ctx, log, cfg.Otel, cfg.Env)
	a.Metrics = observability.Init(log)

	storage, err := wireStorage(cfg, log, a.Metrics)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init store: %w", err)
	}
	a.Storage = storage

	clients, err := wireClients(cfg, log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Clients = clients

	a.Service = NewService(cfg, log, a.Metrics, storage, clients.embeddingSource(storage.Store, cfg.Redis, log, a.Metrics))
	a.Server = wireServer(cfg, log, a.Metrics, wireHandlers(log, a.Service, storage))
	return a, nil
}

// NewService builds the recommendation service over an already wired store.
func NewService(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics, storage *Storage, src embedding.Source) *recommend.Service {
	log.Info("Wiring recommendation service...")
	return recommend.NewService(storage.Store, src, log, recommend.Options{
		Scoring:  cfg.Scoring,
		Content:  cfg.Content,
		Defaults: cfg.Defaults,
		Metrics:  metrics,
	})
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close()
	if err := a.Storage.Close(ctx); err != nil && a.Log != nil {
		a.Log.Warn("store close failed", "error", err)
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
