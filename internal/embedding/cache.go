package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

// KV is the subset of the redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// CachedSource keeps the raw work embedding set in redis so each request does
// not re-read every vector from the graph. Cache failures fall through to the
// wrapped source; they never fail the request.
type CachedSource struct {
	next Source
	kv   KV
	key  string
	ttl  time.Duration
	log  *logger.Logger

	// Observe, when set, receives "hit", "miss" or "error" for each lookup.
	Observe func(result string)
}

func NewCachedSource(next Source, kv KV, key string, ttl time.Duration, log *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedSource{next: next, kv: kv, key: key, ttl: ttl, log: log}
}

type cachedWork struct {
	ID           string    `json:"id"`
	Title        *string   `json:"title,omitempty"`
	Domain       *string   `json:"domain,omitempty"`
	CitedByCount int       `json:"cited_by_count,omitempty"`
	Embedding    []float32 `json:"embedding"`
}

func (s *CachedSource) WorkEmbeddings(ctx context.Context) ([]domain.Work, error) {
	if s.kv != nil {
		raw, err := s.kv.Get(ctx, s.key).Bytes()
		switch {
		case err == nil:
			var rows []cachedWork
			if jerr := json.Unmarshal(raw, &rows); jerr == nil {
				s.observe("hit")
				return fromCached(rows), nil
			} else if s.log != nil {
				s.log.Warn("embedding cache decode failed (reloading)", "key", s.key, "error", jerr)
			}
			s.observe("error")
		case errors.Is(err, goredis.Nil):
			s.observe("miss")
		default:
			s.observe("error")
			if s.log != nil {
				s.log.Warn("embedding cache read failed (continuing)", "key", s.key, "error", err)
			}
		}
	}

	works, err := s.next.WorkEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	if s.kv != nil {
		if b, jerr := json.Marshal(toCached(works)); jerr == nil {
			if serr := s.kv.Set(ctx, s.key, b, s.ttl).Err(); serr != nil && s.log != nil {
				s.log.Warn("embedding cache write failed (continuing)", "key", s.key, "error", serr)
			}
		}
	}
	return works, nil
}

func (s *CachedSource) observe(result string) {
	if s.Observe != nil {
		s.Observe(result)
	}
}

func toCached(works []domain.Work) []cachedWork {
	out := make([]cachedWork, 0, len(works))
	for _, w := range works {
		out = append(out, cachedWork{
			ID:           w.ID,
			Title:        w.Title,
			Domain:       w.Domain,
			CitedByCount: w.CitedByCount,
			Embedding:    w.Embedding,
		})
	}
	return out
}

func fromCached(rows []cachedWork) []domain.Work {
	out := make([]domain.Work, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Work{
			ID:           r.ID,
			Title:        r.Title,
			Domain:       r.Domain,
			CitedByCount: r.CitedByCount,
			Embedding:    r.Embedding,
		})
	}
	return out
}
