package signals

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/embedding"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/store"
	"github.com/yungbote/articlerec/internal/vecmath"
)

// ContentMode selects how the content signal derives its query vector.
type ContentMode int

const (
	// ByTopic uses the embedding of the first concept matching Query.Topic.
	ByTopic ContentMode = iota
	// ByUser mean-pools the embeddings of the user's interest concepts.
	ByUser
)

func (m ContentMode) String() string {
	if m == ByUser {
		return "user"
	}
	return "topic"
}

// Content ranks the embedding pool by cosine similarity to a query vector and
// returns every work with strictly positive similarity.
type Content struct {
	store   store.CandidateStore
	source  embedding.Source
	mode    ContentMode
	dim     int
	workers int
	log     *logger.Logger
	onPool  func(*embedding.Pool)
}

type ContentOptions struct {
	Mode    ContentMode
	Dim     int
	Workers int
	// OnPool, when set, is called with every pool the signal builds.
	OnPool func(*embedding.Pool)
}

func NewContent(st store.CandidateStore, src embedding.Source, log *logger.Logger, opts ContentOptions) *Content {
	if opts.Dim <= 0 {
		opts.Dim = domain.EmbeddingDim
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Content{store: st, source: src, mode: opts.Mode, dim: opts.Dim, workers: opts.Workers, log: log, onPool: opts.OnPool}
}

func (s *Content) Name() string { return domain.SignalContent }

func (s *Content) Candidates(ctx context.Context, q Query) ([]domain.CandidateRecord, error) {
	hits, err := s.Similar(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CandidateRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, domain.CandidateFromWork(h.Work, domain.SignalContent))
	}
	return out, nil
}

// Similar returns the pool entries with positive similarity to the query, in
// pool order. An absent query vector yields no hits.
func (s *Content) Similar(ctx context.Context, q Query) ([]Hit, error) {
	var (
		qv  []float64
		err error
	)
	switch s.mode {
	case ByUser:
		if blank(q.UserID) {
			return nil, nil
		}
		qv, err = UserQueryVector(ctx, s.store, q.UserID, s.dim, s.log)
	default:
		if blank(q.Topic) {
			return nil, nil
		}
		qv, err = TopicQueryVector(ctx, s.store, q.Topic, s.dim)
	}
	if err != nil {
		return nil, err
	}
	if qv == nil {
		return nil, nil
	}

	pool, err := embedding.LoadPool(ctx, s.source, s.dim)
	if err != nil {
		return nil, err
	}
	if s.onPool != nil {
		s.onPool(pool)
	}
	if len(pool.Invalid) > 0 && s.log != nil {
		s.log.Debug("embedding pool excluded works", "excluded", len(pool.Invalid), "valid", pool.Len())
	}

	hits, err := RankPool(ctx, pool, qv, s.workers)
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Debug("content candidates", "mode", s.mode, "pool", pool.Len(), "hits", len(hits))
	}
	return hits, nil
}

// Hit is one pool entry with its similarity to the query vector.
type Hit struct {
	Work       domain.Work
	Similarity float64
}

// RankPool computes the similarity of every pool entry to query across workers
// goroutines and keeps those strictly above zero. Output follows pool order
// regardless of how the work was partitioned.
func RankPool(ctx context.Context, pool *embedding.Pool, query []float64, workers int) ([]Hit, error) {
	n := pool.Len()
	if n == 0 {
		return nil, nil
	}
	if len(query) != pool.Dim {
		return nil, fmt.Errorf("%w: query has %d dims, pool has %d", vecmath.ErrDimensionMismatch, len(query), pool.Dim)
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	parts := make([][]Hit, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		idx := w
		g.Go(func() error {
			local := make([]Hit, 0, hi-lo)
			for i := lo; i < hi; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				e := pool.Entries[i]
				sim, err := vecmath.UnitCosine(query, e.Vector)
				if err != nil {
					return fmt.Errorf("similarity %s: %w", e.Work.ID, err)
				}
				if sim > 0 {
					local = append(local, Hit{Work: e.Work, Similarity: sim})
				}
			}
			parts[idx] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Hit, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// TopicQueryVector returns the normalized embedding of the first concept
// (label order, then id) matching topic that carries a usable embedding. It
// returns nil when no match has one.
func TopicQueryVector(ctx context.Context, st store.CandidateStore, topic string, dim int) ([]float64, error) {
	concepts, err := st.FindConceptsByLabel(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("find concepts: %w", err)
	}
	for _, c := range concepts {
		if len(c.Embedding) != dim || !finite32(c.Embedding) {
			continue
		}
		unit, err := vecmath.Normalize(vecmath.FromFloat32(c.Embedding))
		if err != nil {
			return nil, fmt.Errorf("concept %s: %w", c.ID, err)
		}
		return unit, nil
	}
	return nil, nil
}

// UserQueryVector mean-pools the user's interest embeddings and normalizes the
// result. Interests without a usable embedding are skipped; when none remain
// it returns nil. A pooled vector of zero norm is an error, not a zero profile.
func UserQueryVector(ctx context.Context, st store.CandidateStore, userID string, dim int, log *logger.Logger) ([]float64, error) {
	interests, err := st.UserInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user interests: %w", err)
	}
	vecs := make([][]float64, 0, len(interests))
	for _, c := range interests {
		if len(c.Embedding) != dim || !finite32(c.Embedding) {
			if log != nil {
				log.Debug("skipping interest without usable embedding", "concept", c.ID, "user_id", userID)
			}
			continue
		}
		vecs = append(vecs, vecmath.FromFloat32(c.Embedding))
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	mean, err := vecmath.MeanPool(vecs)
	if err != nil {
		return nil, fmt.Errorf("pool interests: %w", err)
	}
	unit, err := vecmath.Normalize(mean)
	if err != nil {
		return nil, fmt.Errorf("user %s profile: %w", userID, err)
	}
	return unit, nil
}

func finite32(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
