package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/articlerec/internal/config"
	httpH "github.com/yungbote/articlerec/internal/http/handlers"
	httpMW "github.com/yungbote/articlerec/internal/http/middleware"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	HTTP        config.HTTPConfig
	ServiceName string

	RecommendHandler *httpH.RecommendHandler
	CatalogHandler   *httpH.CatalogHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.HTTP.AllowOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/")
	api.Use(httpMW.AttachRequestContext(cfg.HTTP.RequestTimeout.Duration))
	{
		if cfg.RecommendHandler != nil {
			api.POST("/search", cfg.RecommendHandler.Search)
			api.POST("/recommend", cfg.RecommendHandler.Recommend)
		}

		if cfg.CatalogHandler != nil {
			api.GET("/users", cfg.CatalogHandler.ListUsers)
			api.GET("/articles/*uri", cfg.CatalogHandler.GetArticle)
			api.POST("/concepts/search", cfg.CatalogHandler.SearchConcept)
		}
	}

	return r
}
