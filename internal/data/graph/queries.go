package graph

import (
	"context"
	"strings"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/pkg/pointers"
	"github.com/yungbote/articlerec/internal/store"
)

const workFields = `w.uri AS uri, w.hasTitle AS title, w.domain AS domain,
       w.hasAbstract AS abstract, coalesce(w.citedByCount, 0) AS cited_by_count`

const conceptFields = `c.uri AS uri, c.skos__prefLabel AS label, c.hasLevel AS level,
       c.hasNameEmbedding AS embedding`

func (s *Store) FindConceptsByLabel(ctx context.Context, text string) ([]domain.Concept, error) {
	records, err := s.read(ctx, "find_concepts_by_label", `
MATCH (c:Concept)
WHERE toLower(c.skos__prefLabel) CONTAINS toLower($text)
RETURN `+conceptFields+`
ORDER BY label, uri
`, map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	return conceptsFrom(records), nil
}

// ExpandHierarchy walks outgoing isSubclassOf edges one level per query.
func (s *Store) ExpandHierarchy(ctx context.Context, c domain.Concept, maxDepth int) ([]domain.Concept, error) {
	return store.ExpandBFS(ctx, c, maxDepth, func(ctx context.Context, frontier []string) (map[string][]domain.Concept, error) {
		records, err := s.read(ctx, "expand_hierarchy", `
UNWIND $ids AS id
MATCH (:Concept {uri: id})-[:isSubclassOf]->(c:Concept)
RETURN id AS child, `+conceptFields+`
`, map[string]any{"ids": frontier})
		if err != nil {
			return nil, err
		}
		out := make(map[string][]domain.Concept, len(frontier))
		for _, r := range records {
			child := getString(r, "child")
			p := conceptFrom(r)
			if child == "" || p.ID == "" {
				continue
			}
			out[child] = append(out[child], p)
		}
		return out, nil
	})
}

func (s *Store) WorksByConcepts(ctx context.Context, concepts []domain.Concept) ([]domain.Work, error) {
	uris := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c.ID != "" {
			uris = append(uris, c.ID)
		}
	}
	if len(uris) == 0 {
		return []domain.Work{}, nil
	}
	records, err := s.read(ctx, "works_by_concepts", `
MATCH (w:Work)-[:hasTopic|hasConcept]->(c:Concept)
WHERE c.uri IN $uris
RETURN DISTINCT `+workFields+`
ORDER BY uri
`, map[string]any{"uris": uris})
	if err != nil {
		return nil, err
	}
	return worksFrom(records), nil
}

func (s *Store) WorksByTitleOrAbstract(ctx context.Context, text string) ([]domain.Work, error) {
	records, err := s.read(ctx, "works_by_title_or_abstract", `
MATCH (w:Work)
WHERE toLower(coalesce(w.hasTitle, '')) CONTAINS toLower($text)
   OR toLower(coalesce(w.hasAbstract, '')) CONTAINS toLower($text)
RETURN `+workFields+`
ORDER BY uri
`, map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	return worksFrom(records), nil
}

func (s *Store) UserInterests(ctx context.Context, userID string) ([]domain.Concept, error) {
	records, err := s.read(ctx, "user_interests", `
MATCH (:User {has_id: $user_id})-[:hasInterest]->(c:Concept)
RETURN DISTINCT `+conceptFields+`
ORDER BY label, uri
`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return conceptsFrom(records), nil
}

func (s *Store) PeersSharingInterest(ctx context.Context, userID string) ([]string, error) {
	records, err := s.read(ctx, "peers_sharing_interest", `
MATCH (:User {has_id: $user_id})-[:hasInterest]->(c:Concept)<-[:hasInterest]-(o:User)
WHERE o.has_id IS NOT NULL AND o.has_id <> $user_id
RETURN o.has_id AS user_id, count(DISTINCT c) AS shared
ORDER BY shared DESC, user_id
`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		if id := getString(r, "user_id"); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) WorkByID(ctx context.Context, id string) (*domain.Work, error) {
	records, err := s.read(ctx, "work_by_id", `
MATCH (w:Work {uri: $uri})
RETURN `+workFields+`
LIMIT 1
`, map[string]any{"uri": id})
	if err != nil {
		return nil, err
	}
	works := worksFrom(records)
	if len(works) == 0 {
		return nil, nil
	}
	return &works[0], nil
}

// WorkEmbeddings returns every work carrying an abstract embedding.
func (s *Store) WorkEmbeddings(ctx context.Context) ([]domain.Work, error) {
	records, err := s.read(ctx, "work_embeddings", `
MATCH (w:Work)
WHERE w.hasAbstractEmbedding IS NOT NULL
RETURN `+workFields+`, w.hasAbstractEmbedding AS embedding
ORDER BY uri
`, nil)
	if err != nil {
		return nil, err
	}
	return worksFrom(records), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	records, err := s.read(ctx, "list_users", `
MATCH (u:User)
WHERE u.has_id IS NOT NULL
RETURN u.has_id AS user_id
ORDER BY user_id
`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(records))
	for _, r := range records {
		if id := getString(r, "user_id"); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) WorkDetail(ctx context.Context, id string) (*domain.WorkDetail, error) {
	records, err := s.read(ctx, "work_detail", `
MATCH (w:Work {uri: $uri})
OPTIONAL MATCH (w)-[:hasAuthor]->(a:Author)
WITH w, collect(DISTINCT a.foaf__name) AS authors
OPTIONAL MATCH (w)-[:hasTopic|hasConcept]->(c:Concept)
RETURN w.uri AS uri, w.hasTitle AS title, w.hasAbstract AS abstract,
       w.hasOpenAlexId AS openalex_id, w.domain AS domain,
       coalesce(w.citedByCount, 0) AS cited_by_count,
       authors, collect(DISTINCT c.skos__prefLabel) AS topics
`, map[string]any{"uri": id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	r := records[0]
	return &domain.WorkDetail{
		ID:           pointers.StringOr(pointers.NonEmpty(getString(r, "uri")), id),
		Title:        pointers.StringOr(pointers.NonEmpty(getString(r, "title")), domain.UntitledSentinel),
		Abstract:     pointers.StringOr(pointers.NonEmpty(getString(r, "abstract")), domain.NoAbstractSentinel),
		OpenAlexID:   pointers.StringOr(pointers.NonEmpty(getString(r, "openalex_id")), domain.NoOpenAlexID),
		Domain:       pointers.StringOr(pointers.NonEmpty(getString(r, "domain")), domain.UnknownDomain),
		CitedByCount: getInt(r, "cited_by_count"),
		Authors:      getStringSlice(r, "authors"),
		Topics:       getStringSlice(r, "topics"),
	}, nil
}

func (s *Store) ConceptNeighborhood(ctx context.Context, label string) (*domain.ConceptNeighborhood, error) {
	records, err := s.read(ctx, "concept_neighborhood", `
MATCH (c:Concept)
WHERE toLower(c.skos__prefLabel) CONTAINS toLower($label)
WITH c ORDER BY c.skos__prefLabel, c.uri LIMIT 1
OPTIONAL MATCH (c)-[:isSubclassOf]->(super:Concept)
WITH c, collect(DISTINCT super.skos__prefLabel) AS superclasses
OPTIONAL MATCH (sub:Concept)-[:isSubclassOf]->(c)
WITH c, superclasses, collect(DISTINCT sub.skos__prefLabel) AS subclasses
OPTIONAL MATCH (w:Work)-[:hasTopic|hasConcept]->(c)
RETURN c.skos__prefLabel AS label, c.uri AS uri, superclasses, subclasses,
       collect(DISTINCT w.hasTitle) AS related_works
`, map[string]any{"label": label})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	r := records[0]
	return &domain.ConceptNeighborhood{
		Label:        getString(r, "label"),
		URI:          getString(r, "uri"),
		Superclasses: getStringSlice(r, "superclasses"),
		Subclasses:   getStringSlice(r, "subclasses"),
		RelatedWorks: getStringSlice(r, "related_works"),
	}, nil
}

func (s *Store) TopWorksByConceptLabel(ctx context.Context, label, searchQuery string, limit int) ([]domain.Work, error) {
	if limit <= 0 {
		limit = 10
	}
	records, err := s.read(ctx, "top_works_by_concept_label", `
MATCH (w:Work)-[:hasTopic|hasConcept]->(c:Concept)
WHERE toLower(c.skos__prefLabel) CONTAINS toLower($label)
  AND ($query = '' OR toLower(coalesce(w.hasTitle, '')) CONTAINS toLower($query)
       OR toLower(coalesce(w.hasAbstract, '')) CONTAINS toLower($query))
WITH DISTINCT w
RETURN `+workFields+`
ORDER BY cited_by_count DESC, uri
LIMIT $limit
`, map[string]any{"label": label, "query": strings.TrimSpace(searchQuery), "limit": int64(limit)})
	if err != nil {
		return nil, err
	}
	return worksFrom(records), nil
}
