package signals

import (
	"context"
	"fmt"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/platform/logger"
	"github.com/yungbote/articlerec/internal/store"
)

// Ontology matches concepts by label, widens each match up the is-subclass-of
// hierarchy by store.MaxHierarchyDepth hops and returns the linked works.
type Ontology struct {
	store store.CandidateStore
	log   *logger.Logger
}

func NewOntology(st store.CandidateStore, log *logger.Logger) *Ontology {
	return &Ontology{store: st, log: log}
}

func (s *Ontology) Name() string { return domain.SignalOntology }

func (s *Ontology) Candidates(ctx context.Context, q Query) ([]domain.CandidateRecord, error) {
	if blank(q.Topic) {
		return nil, nil
	}
	matched, err := s.store.FindConceptsByLabel(ctx, q.Topic)
	if err != nil {
		return nil, fmt.Errorf("find concepts: %w", err)
	}
	if len(matched) == 0 {
		return nil, nil
	}

	seen := map[string]struct{}{}
	expanded := make([]domain.Concept, 0, len(matched)*3)
	for _, c := range matched {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		hier, err := s.store.ExpandHierarchy(ctx, c, store.MaxHierarchyDepth)
		if err != nil {
			return nil, fmt.Errorf("expand hierarchy %s: %w", c.ID, err)
		}
		for _, h := range hier {
			if _, ok := seen[h.ID]; ok {
				continue
			}
			seen[h.ID] = struct{}{}
			expanded = append(expanded, h)
		}
	}

	works, err := s.store.WorksByConcepts(ctx, expanded)
	if err != nil {
		return nil, fmt.Errorf("works by concepts: %w", err)
	}

	if !blank(q.SearchQuery) {
		hits, err := s.store.WorksByTitleOrAbstract(ctx, q.SearchQuery)
		if err != nil {
			return nil, fmt.Errorf("works by title or abstract: %w", err)
		}
		allowed := workSet(hits)
		filtered := works[:0:0]
		for _, w := range works {
			if _, ok := allowed[w.ID]; ok {
				filtered = append(filtered, w)
			}
		}
		works = filtered
	}

	if s.log != nil {
		s.log.Debug("ontology candidates", "topic", q.Topic, "matched", len(matched), "expanded", len(expanded), "works", len(works))
	}
	return toCandidates(works, domain.SignalOntology), nil
}

// UserInterest returns works linked to the concepts a user declared interest in.
type UserInterest struct {
	store store.CandidateStore
	log   *logger.Logger
}

func NewUserInterest(st store.CandidateStore, log *logger.Logger) *UserInterest {
	return &UserInterest{store: st, log: log}
}

func (s *UserInterest) Name() string { return domain.SignalUser }

func (s *UserInterest) Candidates(ctx context.Context, q Query) ([]domain.CandidateRecord, error) {
	if blank(q.UserID) {
		return nil, nil
	}
	interests, err := s.store.UserInterests(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("user interests: %w", err)
	}
	if len(interests) == 0 {
		return nil, nil
	}
	works, err := s.store.WorksByConcepts(ctx, interests)
	if err != nil {
		return nil, fmt.Errorf("works by concepts: %w", err)
	}
	if s.log != nil {
		s.log.Debug("user interest candidates", "user_id", q.UserID, "interests", len(interests), "works", len(works))
	}
	return toCandidates(works, domain.SignalUser), nil
}

// Collaborative returns works linked to the interests of peers who share at
// least one interest concept with the user.
type Collaborative struct {
	store store.CandidateStore
	log   *logger.Logger
	// MaxPeers caps how many peers are consulted; zero means all of them.
	MaxPeers int
}

func NewCollaborative(st store.CandidateStore, log *logger.Logger) *Collaborative {
	return &Collaborative{store: st, log: log}
}

func (s *Collaborative) Name() string { return domain.SignalCollaborative }

func (s *Collaborative) Candidates(ctx context.Context, q Query) ([]domain.CandidateRecord, error) {
	if blank(q.UserID) {
		return nil, nil
	}
	peers, err := s.store.PeersSharingInterest(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("peers sharing interest: %w", err)
	}
	if s.MaxPeers > 0 && len(peers) > s.MaxPeers {
		peers = peers[:s.MaxPeers]
	}

	seen := map[string]struct{}{}
	concepts := make([]domain.Concept, 0)
	for _, peer := range peers {
		if peer == q.UserID {
			continue
		}
		interests, err := s.store.UserInterests(ctx, peer)
		if err != nil {
			return nil, fmt.Errorf("peer interests: %w", err)
		}
		for _, c := range interests {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			concepts = append(concepts, c)
		}
	}
	if len(concepts) == 0 {
		return nil, nil
	}

	works, err := s.store.WorksByConcepts(ctx, concepts)
	if err != nil {
		return nil, fmt.Errorf("works by concepts: %w", err)
	}
	if s.log != nil {
		s.log.Debug("collaborative candidates", "user_id", q.UserID, "peers", len(peers), "concepts", len(concepts), "works", len(works))
	}
	return toCandidates(works, domain.SignalCollaborative), nil
}
