// Package store defines the read contract the recommendation engine consumes
// from the article graph, plus a bounded hierarchy walker and an in-memory
// implementation loaded from YAML fixtures.
//
// Every method takes a context and may fail with an *UnavailableError when the
// backing store cannot be reached or the call times out. Empty results are
// never errors. Implementations must be safe for concurrent use; callers get no
// snapshot guarantee across separate calls.
package store

import (
	"context"

	"github.com/yungbote/articlerec/internal/domain"
)

// MaxHierarchyDepth is the fixed is-subclass-of expansion depth used by the ontology signal.
const MaxHierarchyDepth = 2

type CandidateStore interface {
	// FindConceptsByLabel returns concepts whose label contains text, case-insensitively,
	// ordered by label then id.
	FindConceptsByLabel(ctx context.Context, text string) ([]domain.Concept, error)

	// ExpandHierarchy returns c (depth 0) and every concept reachable through
	// is-subclass-of in at most maxDepth hops. It terminates on cyclic hierarchies.
	ExpandHierarchy(ctx context.Context, c domain.Concept, maxDepth int) ([]domain.Concept, error)

	// WorksByConcepts returns distinct works linked (hasTopic or hasConcept) to any of concepts.
	WorksByConcepts(ctx context.Context, concepts []domain.Concept) ([]domain.Work, error)

	// WorksByTitleOrAbstract returns works whose title or abstract contains text, case-insensitively.
	WorksByTitleOrAbstract(ctx context.Context, text string) ([]domain.Work, error)

	UserInterests(ctx context.Context, userID string) ([]domain.Concept, error)

	// PeersSharingInterest returns other users sharing at least one interest concept with
	// userID, most shared interests first. userID itself is never included.
	PeersSharingInterest(ctx context.Context, userID string) ([]string, error)

	// WorkByID returns nil and no error when the work does not exist. No signal
	// calls it: pool entries already carry title and domain.
	WorkByID(ctx context.Context, id string) (*domain.Work, error)
}

// Catalog is the browsing surface used outside the signal producers.
type Catalog interface {
	ListUsers(ctx context.Context) ([]string, error)
	// WorkDetail returns nil and no error when the work does not exist.
	WorkDetail(ctx context.Context, id string) (*domain.WorkDetail, error)
	// ConceptNeighborhood returns nil and no error when no concept label matches.
	ConceptNeighborhood(ctx context.Context, label string) (*domain.ConceptNeighborhood, error)
	// TopWorksByConceptLabel returns up to limit works linked to a concept whose label
	// contains label, most cited first, filtered by searchQuery on title or abstract when set.
	TopWorksByConceptLabel(ctx context.Context, label, searchQuery string, limit int) ([]domain.Work, error)
}

type Store interface {
	CandidateStore
	Catalog
}
