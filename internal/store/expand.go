package store

import (
	"context"
	"sort"

	"github.com/yungbote/articlerec/internal/domain"
)

// ParentsFunc returns the direct is-subclass-of targets for each concept id in frontier.
type ParentsFunc func(ctx context.Context, frontier []string) (map[string][]domain.Concept, error)

// ExpandBFS walks the hierarchy breadth-first from seed for at most maxDepth
// levels, one ParentsFunc call per level. A visited set keeps cycles from
// re-entering the frontier, so the walk ends after maxDepth calls at most.
// The seed is always first; the rest follow in BFS order, ids sorted within a level.
func ExpandBFS(ctx context.Context, seed domain.Concept, maxDepth int, parents ParentsFunc) ([]domain.Concept, error) {
	out := []domain.Concept{seed}
	if maxDepth <= 0 || parents == nil {
		return out, nil
	}
	visited := map[string]struct{}{seed.ID: {}}
	frontier := []string{seed.ID}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		byChild, err := parents(ctx, frontier)
		if err != nil {
			return nil, err
		}
		next := make([]domain.Concept, 0)
		for _, child := range frontier {
			for _, p := range byChild[child] {
				if p.ID == "" {
					continue
				}
				if _, seen := visited[p.ID]; seen {
					continue
				}
				visited[p.ID] = struct{}{}
				next = append(next, p)
			}
		}
		sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
		frontier = make([]string, 0, len(next))
		for _, c := range next {
			out = append(out, c)
			frontier = append(frontier, c.ID)
		}
	}
	return out, nil
}
