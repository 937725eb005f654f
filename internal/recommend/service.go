// Package recommend runs the signal producers for a request and hands their
// output to the aggregator.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/articlerec/internal/aggregate"
	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/embedding"
	"github.com/yungbote/articlerec/internal/observability"
	"github.com/yungbote/articlerec/internal/platform/ctxutil"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/signals"
	"github.com/yungbote/articlerec/internal/store"
	"github.com/yungbote/articlerec/internal/vecmath"
)

// ErrInvalidInput marks requests rejected before any store call.
var ErrInvalidInput = errors.New("invalid input")

type RecommendRequest struct {
	UserID      string
	Topic       string
	SearchQuery string
	// Weighted selects the scored path and attaches a score to every record.
	Weighted bool
	// TopN bounds weighted output; zero or less uses the configured default.
	TopN int
}

type Options struct {
	Scoring  config.ScoringConfig
	Content  config.ContentConfig
	Defaults config.DefaultsConfig
	Metrics  *observability.Metrics
	Tracer   trace.Tracer
}

type Service struct {
	store   store.Store
	log     *logger.Logger
	scoring config.ScoringConfig
	topic   string
	metrics *observability.Metrics
	tracer  trace.Tracer

	ontology      signals.Signal
	userInterest  signals.Signal
	collaborative signals.Signal
	contentTopic  signals.Signal
	contentUser   signals.Signal
	// userVectors backs the scored content category, which needs similarities
	// and not only candidates.
	userVectors *signals.Content
	// vectorErrs empty the content signal instead of failing the request.
	vectorErrs []error
}

func NewService(st store.Store, src embedding.Source, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "RecommendService")
	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.Tracer()
	}
	topic := strings.TrimSpace(opts.Defaults.Topic)
	if topic == "" {
		topic = "Neural Networks"
	}

	onPool := func(p *embedding.Pool) {
		kinds := make([]string, 0, len(p.Invalid))
		for _, inv := range p.Invalid {
			kinds = append(kinds, inv.Kind)
		}
		opts.Metrics.ObservePool(p.Len(), kinds)
	}
	contentOpts := signals.ContentOptions{
		Dim:     opts.Content.EmbeddingDim,
		Workers: opts.Content.Workers,
		OnPool:  onPool,
	}
	byTopic := contentOpts
	byTopic.Mode = signals.ByTopic
	byUser := contentOpts
	byUser.Mode = signals.ByUser
	userVectors := signals.NewContent(st, src, log, byUser)

	collab := signals.NewCollaborative(st, log)

	s := &Service{
		store:         st,
		log:           log,
		scoring:       opts.Scoring,
		topic:         topic,
		metrics:       opts.Metrics,
		tracer:        tracer,
		ontology:      signals.NewOntology(st, log),
		userInterest:  signals.NewUserInterest(st, log),
		collaborative: collab,
		contentTopic:  signals.NewContent(st, src, log, byTopic),
		contentUser:   userVectors,
		userVectors:   userVectors,
		vectorErrs:    []error{vecmath.ErrDegenerateVector},
	}
	if opts.Content.DegradeOnVectorError {
		s.vectorErrs = append(s.vectorErrs, vecmath.ErrDimensionMismatch)
	}
	s.contentTopic = signals.DegradeOn(s.contentTopic, log, s.vectorErrs...)
	s.contentUser = signals.DegradeOn(s.contentUser, log, s.vectorErrs...)
	return s
}

// Search merges the ontology and topic-content signals for topic. A blank
// topic falls back to the configured default.
func (s *Service) Search(ctx context.Context, topic, searchQuery string) ([]domain.RankedRecord, error) {
	ctx, span := s.tracer.Start(ctx, "recommend.Search")
	defer span.End()

	q := signals.Query{Topic: s.resolveTopic(topic), SearchQuery: strings.TrimSpace(searchQuery)}
	span.SetAttributes(attribute.String("topic", q.Topic), attribute.Bool("search_query", q.SearchQuery != ""))

	streams, err := s.fanOut(ctx, q, s.ontology, s.contentTopic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	out := aggregate.Merge(streams...)
	s.metrics.ObserveRanked("search", len(out))
	s.log.Debug("search complete", append([]interface{}{"topic", q.Topic, "results", len(out)}, ctxutil.LogFields(ctx)...)...)
	return out, nil
}

// Recommend merges all four signals for a user. With Weighted set it runs the
// scored path and returns at most TopN records ordered by score.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) ([]domain.RankedRecord, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if req.TopN < 0 {
		return nil, fmt.Errorf("%w: top_n must not be negative", ErrInvalidInput)
	}

	ctx, span := s.tracer.Start(ctx, "recommend.Recommend")
	defer span.End()
	span.SetAttributes(attribute.Bool("weighted", req.Weighted))

	q := signals.Query{
		Topic:       s.resolveTopic(req.Topic),
		SearchQuery: strings.TrimSpace(req.SearchQuery),
		UserID:      userID,
	}

	var (
		out []domain.RankedRecord
		err error
	)
	if req.Weighted {
		topN := req.TopN
		if topN == 0 {
			topN = s.scoring.TopN
		}
		out, err = s.weighted(ctx, q, topN)
	} else {
		var streams [][]domain.CandidateRecord
		streams, err = s.fanOut(ctx, q, s.ontology, s.userInterest, s.collaborative, s.contentUser)
		if err == nil {
			out = aggregate.Merge(streams...)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recommend failed")
		return nil, err
	}

	op := "recommend"
	if req.Weighted {
		op = "recommend_weighted"
	}
	s.metrics.ObserveRanked(op, len(out))
	s.log.Debug("recommend complete", append([]interface{}{"user_id", userID, "weighted", req.Weighted, "results", len(out)}, ctxutil.LogFields(ctx)...)...)
	return out, nil
}

func (s *Service) resolveTopic(topic string) string {
	if t := strings.TrimSpace(topic); t != "" {
		return t
	}
	return s.topic
}

// fanOut runs each signal concurrently. The first failure cancels the rest and
// is returned wrapped with the signal name.
func (s *Service) fanOut(ctx context.Context, q signals.Query, sigs ...signals.Signal) ([][]domain.CandidateRecord, error) {
	out := make([][]domain.CandidateRecord, len(sigs))
	g, gctx := errgroup.WithContext(ctx)
	for i, sig := range sigs {
		i, sig := i, sig
		g.Go(func() error {
			recs, err := s.runSignal(gctx, sig.Name(), func(ctx context.Context) ([]domain.CandidateRecord, error) {
				return sig.Candidates(ctx, q)
			})
			if err != nil {
				return fmt.Errorf("%s signal: %w", strings.ToLower(sig.Name()), err)
			}
			out[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func runTraced[T any](s *Service, ctx context.Context, name string, fn func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := s.tracer.Start(ctx, "signal."+strings.ToLower(name))
	defer span.End()
	start := time.Now()
	res, err := fn(ctx)
	s.metrics.ObserveSignal(name, len(res), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "signal failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("candidates", len(res)))
	return res, nil
}

func (s *Service) runSignal(ctx context.Context, name string, fn func(context.Context) ([]domain.CandidateRecord, error)) ([]domain.CandidateRecord, error) {
	return runTraced(s, ctx, name, fn)
}
