package app

import (
	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/http"
	httpH "github.com/yungbote/articlerec/internal/http/handlers"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/recommend"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Recommend *httpH.RecommendHandler
	Catalog   *httpH.CatalogHandler
}

func wireHandlers(log *logger.Logger, svc *recommend.Service, storage *Storage) Handlers {
	log.Info("Wiring handlers...")
	var breaker httpH.BreakerReporter
	if storage.Breaker != nil {
		breaker = storage.Breaker
	}
	return Handlers{
		Health:    httpH.NewHealthHandler(breaker),
		Recommend: httpH.NewRecommendHandler(svc, log),
		Catalog:   httpH.NewCatalogHandler(storage.Store, log),
	}
}

func wireServer(cfg *config.Config, log *logger.Logger, metrics *observability.Metrics, handlers Handlers) *http.Server {
	service := ""
	if cfg.Otel.Enabled {
		service = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		HTTP:             cfg.HTTP,
		ServiceName:      service,
		HealthHandler:    handlers.Health,
		RecommendHandler: handlers.Recommend,
		CatalogHandler:   handlers.Catalog,
	})
}
