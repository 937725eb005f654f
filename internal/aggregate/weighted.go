package aggregate

import (
	"sort"

	"github.com/yungbote/articlerec/internal/domain"
)

var categoryPriority = map[string]int{
	domain.SignalContent:       0,
	domain.SignalOntology:      1,
	domain.SignalCollaborative: 2,
	domain.SignalUser:          3,
}

func priority(signal string) int {
	if p, ok := categoryPriority[signal]; ok {
		return p
	}
	return len(categoryPriority)
}

// WeightedRank scores raw-scored candidates and returns the best topN.
//
// Candidates are ordered by category (content, ontology, collaborative) and
// deduplicated by item id keeping the first instance. The kept raw score is
// multiplied by contentWeight when any content record surfaced the item, and by
// ontologyWeight otherwise. Ties keep category order. topN <= 0 keeps everything.
func WeightedRank(records []domain.ScoredCandidate, contentWeight, ontologyWeight float64, topN int) []domain.RankedRecord {
	if len(records) == 0 {
		return []domain.RankedRecord{}
	}
	ordered := make([]domain.ScoredCandidate, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priority(ordered[i].Signal) < priority(ordered[j].Signal)
	})

	type entry struct {
		first   domain.ScoredCandidate
		title   *string
		domain  *string
		signals map[string]struct{}
	}
	byID := map[string]*entry{}
	order := make([]*entry, 0, len(ordered))
	for _, c := range ordered {
		if c.ItemID == "" {
			continue
		}
		e, ok := byID[c.ItemID]
		if !ok {
			e = &entry{first: c, title: c.Title, domain: c.Domain, signals: map[string]struct{}{}}
			byID[c.ItemID] = e
			order = append(order, e)
		}
		if e.title == nil {
			e.title = c.Title
		}
		if e.domain == nil {
			e.domain = c.Domain
		}
		if c.Signal != "" {
			e.signals[c.Signal] = struct{}{}
		}
	}

	out := make([]domain.RankedRecord, 0, len(order))
	for _, e := range order {
		w := ontologyWeight
		if _, ok := e.signals[domain.SignalContent]; ok {
			w = contentWeight
		}
		score := e.first.RawScore * w
		out = append(out, domain.RankedRecord{
			ItemID:   e.first.ItemID,
			Title:    e.title,
			Domain:   e.domain,
			Approach: Label(e.signals),
			Score:    &score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Score > *out[j].Score })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
