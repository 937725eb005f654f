package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/pkg/pointers"
)

// Fixture is the YAML layout accepted by LoadFixture.
type Fixture struct {
	Concepts []FixtureConcept `yaml:"concepts"`
	Works    []FixtureWork    `yaml:"works"`
	Users    []FixtureUser    `yaml:"users"`
}

type FixtureConcept struct {
	URI       string    `yaml:"uri"`
	Label     string    `yaml:"label"`
	Level     int       `yaml:"level"`
	Embedding []float32 `yaml:"embedding"`
	// SubclassOf lists the uris this concept is-subclass-of.
	SubclassOf []string `yaml:"subclass_of"`
}

type FixtureWork struct {
	URI          string    `yaml:"uri"`
	Title        string    `yaml:"title"`
	Domain       string    `yaml:"domain"`
	Abstract     string    `yaml:"abstract"`
	OpenAlexID   string    `yaml:"openalex_id"`
	CitedByCount int       `yaml:"cited_by_count"`
	Embedding    []float32 `yaml:"embedding"`
	Concepts     []string  `yaml:"concepts"`
	Authors      []string  `yaml:"authors"`
}

type FixtureUser struct {
	ID        string   `yaml:"id"`
	Interests []string `yaml:"interests"`
}

// Memory is a read-only Store over an in-process graph. It is safe for
// concurrent use because nothing mutates it after construction.
type Memory struct {
	concepts     map[string]domain.Concept
	conceptOrder []string
	parents      map[string][]string
	children     map[string][]string

	works     map[string]FixtureWork
	workOrder []string
	byConcept map[string][]string

	users     map[string][]string
	userOrder []string
}

func LoadFixture(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(b, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return NewMemory(fx), nil
}

func NewMemory(fx Fixture) *Memory {
	m := &Memory{
		concepts:  map[string]domain.Concept{},
		parents:   map[string][]string{},
		children:  map[string][]string{},
		works:     map[string]FixtureWork{},
		byConcept: map[string][]string{},
		users:     map[string][]string{},
	}
	for _, c := range fx.Concepts {
		if c.URI == "" {
			continue
		}
		if _, dup := m.concepts[c.URI]; !dup {
			m.conceptOrder = append(m.conceptOrder, c.URI)
		}
		m.concepts[c.URI] = domain.Concept{ID: c.URI, Label: c.Label, Level: c.Level, Embedding: c.Embedding}
		for _, p := range c.SubclassOf {
			m.parents[c.URI] = append(m.parents[c.URI], p)
			m.children[p] = append(m.children[p], c.URI)
		}
	}
	for _, w := range fx.Works {
		if w.URI == "" {
			continue
		}
		if _, dup := m.works[w.URI]; !dup {
			m.workOrder = append(m.workOrder, w.URI)
		}
		m.works[w.URI] = w
		for _, c := range w.Concepts {
			m.byConcept[c] = append(m.byConcept[c], w.URI)
		}
	}
	for _, u := range fx.Users {
		if u.ID == "" {
			continue
		}
		if _, dup := m.users[u.ID]; !dup {
			m.userOrder = append(m.userOrder, u.ID)
		}
		m.users[u.ID] = u.Interests
	}
	sort.Strings(m.workOrder)
	sort.Strings(m.userOrder)
	return m
}

func (m *Memory) FindConceptsByLabel(ctx context.Context, text string) ([]domain.Concept, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("find_concepts_by_label", err)
	}
	needle := strings.ToLower(text)
	out := make([]domain.Concept, 0)
	for _, id := range m.conceptOrder {
		c := m.concepts[id]
		if strings.Contains(strings.ToLower(c.Label), needle) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) ExpandHierarchy(ctx context.Context, c domain.Concept, maxDepth int) ([]domain.Concept, error) {
	return ExpandBFS(ctx, c, maxDepth, func(ctx context.Context, frontier []string) (map[string][]domain.Concept, error) {
		if err := ctx.Err(); err != nil {
			return nil, Unavailable("expand_hierarchy", err)
		}
		out := make(map[string][]domain.Concept, len(frontier))
		for _, id := range frontier {
			for _, pid := range m.parents[id] {
				p, ok := m.concepts[pid]
				if !ok {
					p = domain.Concept{ID: pid}
				}
				out[id] = append(out[id], p)
			}
		}
		return out, nil
	})
}

func (m *Memory) WorksByConcepts(ctx context.Context, concepts []domain.Concept) ([]domain.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("works_by_concepts", err)
	}
	seen := map[string]struct{}{}
	out := make([]domain.Work, 0)
	for _, c := range concepts {
		for _, wid := range m.byConcept[c.ID] {
			if _, ok := seen[wid]; ok {
				continue
			}
			seen[wid] = struct{}{}
			out = append(out, m.work(wid))
		}
	}
	return out, nil
}

func (m *Memory) WorksByTitleOrAbstract(ctx context.Context, text string) ([]domain.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("works_by_title_or_abstract", err)
	}
	needle := strings.ToLower(text)
	out := make([]domain.Work, 0)
	for _, id := range m.workOrder {
		w := m.works[id]
		if strings.Contains(strings.ToLower(w.Title), needle) || strings.Contains(strings.ToLower(w.Abstract), needle) {
			out = append(out, m.work(id))
		}
	}
	return out, nil
}

func (m *Memory) UserInterests(ctx context.Context, userID string) ([]domain.Concept, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("user_interests", err)
	}
	ids := m.users[userID]
	out := make([]domain.Concept, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.concepts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) PeersSharingInterest(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("peers_sharing_interest", err)
	}
	mine := map[string]struct{}{}
	for _, c := range m.users[userID] {
		mine[c] = struct{}{}
	}
	type peer struct {
		id     string
		shared int
	}
	peers := make([]peer, 0)
	for _, other := range m.userOrder {
		if other == userID {
			continue
		}
		n := 0
		for _, c := range m.users[other] {
			if _, ok := mine[c]; ok {
				n++
			}
		}
		if n > 0 {
			peers = append(peers, peer{id: other, shared: n})
		}
	}
	sort.SliceStable(peers, func(i, j int) bool { return peers[i].shared > peers[j].shared })
	out := make([]string, 0, len(peers))
	for _, p := range peers {
		out = append(out, p.id)
	}
	return out, nil
}

func (m *Memory) WorkByID(ctx context.Context, id string) (*domain.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("work_by_id", err)
	}
	if _, ok := m.works[id]; !ok {
		return nil, nil
	}
	w := m.work(id)
	return &w, nil
}

// WorkEmbeddings returns every work that carries an embedding property.
func (m *Memory) WorkEmbeddings(ctx context.Context) ([]domain.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("work_embeddings", err)
	}
	out := make([]domain.Work, 0, len(m.works))
	for _, id := range m.workOrder {
		if len(m.works[id].Embedding) == 0 {
			continue
		}
		out = append(out, m.work(id))
	}
	return out, nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("list_users", err)
	}
	return append([]string(nil), m.userOrder...), nil
}

func (m *Memory) WorkDetail(ctx context.Context, id string) (*domain.WorkDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable("work_detail", err)
	}
	w, ok := m.works[id]
	if !ok {
		return nil, nil
	}
	topics := make([]string, 0, len(w.Concepts))
	for _, cid := range w.Concepts {
		if c, ok := m.concepts[cid]; ok {
			topics = append(topics, c.Label)
		}
	}
	authors := append([]string{}, w.Authors...)
	return &domain.WorkDetail{
		ID:           w.URI,
		Title:        pointers.StringOr(pointers.NonEmpty(w.Title), domain.UntitledSentinel),
		Abstract:     pointers.StringOr(pointers.NonEmpty(w.Abstract), domain.NoAbstractSentinel),
		OpenAlexID:   pointers.StringOr(pointers.NonEmpty(w.OpenAlexID), domain.NoOpenAlexID),
		Domain:       pointers.StringOr(pointers.NonEmpty(w.Domain), domain.UnknownDomain),
		CitedByCount: w.CitedByCount,
		Authors:      authors,
		Topics:       topics,
	}, nil
}

func (m *Memory) ConceptNeighborhood(ctx context.Context, label string) (*domain.ConceptNeighborhood, error) {
	matches, err := m.FindConceptsByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	c := matches[0]
	n := &domain.ConceptNeighborhood{
		Label:        c.Label,
		URI:          c.ID,
		Superclasses: m.labels(m.parents[c.ID]),
		Subclasses:   m.labels(m.children[c.ID]),
		RelatedWorks: []string{},
	}
	for _, wid := range m.byConcept[c.ID] {
		if t := m.works[wid].Title; t != "" {
			n.RelatedWorks = append(n.RelatedWorks, t)
		}
	}
	return n, nil
}

func (m *Memory) TopWorksByConceptLabel(ctx context.Context, label, searchQuery string, limit int) ([]domain.Work, error) {
	concepts, err := m.FindConceptsByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	works, err := m.WorksByConcepts(ctx, concepts)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(searchQuery)
	out := make([]domain.Work, 0, len(works))
	for _, w := range works {
		if q != "" {
			fw := m.works[w.ID]
			if !strings.Contains(strings.ToLower(fw.Title), q) && !strings.Contains(strings.ToLower(fw.Abstract), q) {
				continue
			}
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CitedByCount > out[j].CitedByCount })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) work(id string) domain.Work {
	w := m.works[id]
	return domain.Work{
		ID:           w.URI,
		Title:        pointers.NonEmpty(w.Title),
		Domain:       pointers.NonEmpty(w.Domain),
		Abstract:     pointers.NonEmpty(w.Abstract),
		CitedByCount: w.CitedByCount,
		Embedding:    w.Embedding,
	}
}

func (m *Memory) labels(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.concepts[id]; ok && c.Label != "" {
			out = append(out, c.Label)
		}
	}
	sort.Strings(out)
	return out
}
