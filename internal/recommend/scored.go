package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/articlerec/internal/aggregate"
	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/signals"
)

// weighted builds raw-scored candidates for the content, ontology and
// collaborative categories concurrently and ranks them with WeightedRank.
func (s *Service) weighted(ctx context.Context, q signals.Query, topN int) ([]domain.RankedRecord, error) {
	var content, ontology, collab []domain.ScoredCandidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		content, err = runTraced(s, gctx, domain.SignalContent, func(ctx context.Context) ([]domain.ScoredCandidate, error) {
			return s.scoredContent(ctx, q, topN)
		})
		if err != nil {
			return fmt.Errorf("content signal: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ontology, err = runTraced(s, gctx, domain.SignalOntology, func(ctx context.Context) ([]domain.ScoredCandidate, error) {
			return s.scoredOntology(ctx, q, topN)
		})
		if err != nil {
			return fmt.Errorf("ontology signal: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		collab, err = runTraced(s, gctx, domain.SignalCollaborative, func(ctx context.Context) ([]domain.ScoredCandidate, error) {
			return s.scoredCollaborative(ctx, q, topN)
		})
		if err != nil {
			return fmt.Errorf("collaborative signal: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]domain.ScoredCandidate, 0, len(content)+len(ontology)+len(collab))
	all = append(all, content...)
	all = append(all, ontology...)
	all = append(all, collab...)
	return aggregate.WeightedRank(all, s.scoring.ContentWeight, s.scoring.OntologyWeight, topN), nil
}

func (s *Service) domainBoost(d *string) float64 {
	if d != nil && s.scoring.PrimaryDomain != "" && *d == s.scoring.PrimaryDomain {
		return s.scoring.PrimaryDomainBoost
	}
	return 1.0
}

func (s *Service) citationFactor(cites int) float64 {
	if s.scoring.CitationBoost <= 0 || cites <= 0 {
		return 1.0
	}
	return 1 + s.scoring.CitationBoost*math.Log1p(float64(cites))
}

func scored(w domain.Work, signal string, raw float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		CandidateRecord: domain.CandidateFromWork(w, signal),
		RawScore:        raw,
		CitedByCount:    w.CitedByCount,
	}
}

func (s *Service) scoredContent(ctx context.Context, q signals.Query, topN int) ([]domain.ScoredCandidate, error) {
	hits, err := s.userVectors.Similar(ctx, q)
	if err != nil {
		for _, target := range s.vectorErrs {
			if errors.Is(err, target) {
				s.log.Warn("scored content degraded to empty", "user_id", q.UserID, "error", err)
				return nil, nil
			}
		}
		return nil, err
	}
	out := make([]domain.ScoredCandidate, 0, len(hits))
	for _, h := range hits {
		raw := h.Similarity * s.domainBoost(h.Work.Domain) * s.citationFactor(h.Work.CitedByCount)
		if raw <= 0 {
			continue
		}
		out = append(out, scored(h.Work, domain.SignalContent, raw))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RawScore > out[j].RawScore })
	return truncate(out, topN), nil
}

// scoredOntology ranks works under the user's interest labels, or under the
// request topic when the user has none, by citation count.
func (s *Service) scoredOntology(ctx context.Context, q signals.Query, topN int) ([]domain.ScoredCandidate, error) {
	interests, err := s.store.UserInterests(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("user interests: %w", err)
	}
	labels := make([]string, 0, len(interests))
	for _, c := range interests {
		if c.Label != "" {
			labels = append(labels, c.Label)
		}
	}
	if len(labels) == 0 {
		labels = append(labels, q.Topic)
	}

	seen := map[string]struct{}{}
	works := make([]domain.Work, 0)
	for _, label := range labels {
		top, err := s.store.TopWorksByConceptLabel(ctx, label, q.SearchQuery, topN)
		if err != nil {
			return nil, fmt.Errorf("top works for %q: %w", label, err)
		}
		for _, w := range top {
			if _, ok := seen[w.ID]; ok {
				continue
			}
			seen[w.ID] = struct{}{}
			works = append(works, w)
		}
	}
	sortByCitations(works)

	out := make([]domain.ScoredCandidate, 0, len(works))
	for _, w := range works {
		out = append(out, scored(w, domain.SignalOntology, 1.0*s.domainBoost(w.Domain)))
	}
	return truncate(out, topN), nil
}

// scoredCollaborative takes up to MaxPeers peers, most shared interests first,
// and each peer's topN most cited interest works.
func (s *Service) scoredCollaborative(ctx context.Context, q signals.Query, topN int) ([]domain.ScoredCandidate, error) {
	peers, err := s.store.PeersSharingInterest(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("peers sharing interest: %w", err)
	}
	if s.scoring.MaxPeers > 0 && len(peers) > s.scoring.MaxPeers {
		peers = peers[:s.scoring.MaxPeers]
	}

	seen := map[string]struct{}{}
	out := make([]domain.ScoredCandidate, 0)
	for _, peer := range peers {
		interests, err := s.store.UserInterests(ctx, peer)
		if err != nil {
			return nil, fmt.Errorf("peer interests: %w", err)
		}
		if len(interests) == 0 {
			continue
		}
		works, err := s.store.WorksByConcepts(ctx, interests)
		if err != nil {
			return nil, fmt.Errorf("works by concepts: %w", err)
		}
		sortByCitations(works)
		if topN > 0 && len(works) > topN {
			works = works[:topN]
		}
		for _, w := range works {
			if _, ok := seen[w.ID]; ok {
				continue
			}
			seen[w.ID] = struct{}{}
			out = append(out, scored(w, domain.SignalCollaborative, s.scoring.CollaborativeScore*s.domainBoost(w.Domain)))
		}
	}
	return truncate(out, topN), nil
}

func sortByCitations(works []domain.Work) {
	sort.SliceStable(works, func(i, j int) bool { return works[i].CitedByCount > works[j].CitedByCount })
}

func truncate(in []domain.ScoredCandidate, n int) []domain.ScoredCandidate {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}
