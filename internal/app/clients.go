package app

import (
	"fmt"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/embedding"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/platform/redisdb"
)

type Clients struct {
	Redis *redisdb.Client
}

func wireClients(cfg *config.Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional; nil means the embedding pool is read from the store each time.
	rc, err := redisdb.New(cfg.Redis, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	return Clients{Redis: rc}, nil
}

// embeddingSource layers the redis pool cache over src when redis is configured.
func (c Clients) embeddingSource(src embedding.Source, cfg config.RedisConfig, log *logger.Logger, metrics *observability.Metrics) embedding.Source {
	if c.Redis == nil {
		return src
	}
	cached := embedding.NewCachedSource(src, c.Redis.RDB, cfg.PoolKey, cfg.PoolTTL.Duration, log.With("component", "EmbeddingCache"))
	cached.Observe = metrics.ObserveCache
	return cached
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
