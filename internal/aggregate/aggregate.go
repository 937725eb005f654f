// Package aggregate folds candidate streams from independent signals into one
// deduplicated list keyed by item id. It never touches the store.
package aggregate

import (
	"sort"
	"strings"

	"github.com/yungbote/articlerec/internal/domain"
)

const labelSep = ", "

// fieldPriority ranks signals as sources of title and domain. Graph signals read
// the store directly; content reads the embedding pool, which may be cached.
var fieldPriority = map[string]int{
	domain.SignalOntology:      0,
	domain.SignalUser:          1,
	domain.SignalCollaborative: 2,
	domain.SignalContent:       3,
}

func fieldRank(signal string) int {
	if p, ok := fieldPriority[signal]; ok {
		return p
	}
	return len(fieldPriority)
}

// field is a display field together with the rank of the signal that set it.
type field struct {
	val  *string
	rank int
}

// offer keeps the value from the best-ranked signal, then the smallest value.
func (f *field) offer(val *string, rank int) {
	if val == nil {
		return
	}
	if f.val == nil || rank < f.rank || (rank == f.rank && *val < *f.val) {
		f.val, f.rank = val, rank
	}
}

type group struct {
	rec     domain.RankedRecord
	title   field
	domain  field
	signals map[string]struct{}
}

func (g *group) absorb(c domain.CandidateRecord) {
	rank := fieldRank(c.Signal)
	g.title.offer(c.Title, rank)
	g.domain.offer(c.Domain, rank)
	if c.Signal != "" {
		g.signals[c.Signal] = struct{}{}
	}
}

// Merge concatenates streams, groups records by item id and labels each group
// with the sorted set of signal names that surfaced it. Title and domain come
// from the highest-precedence signal carrying a non-null value (Ontology, User,
// Collaborative, Content), the smaller value on a tie, so stream order never
// matters. Output is sorted by item id.
func Merge(streams ...[]domain.CandidateRecord) []domain.RankedRecord {
	groups := map[string]*group{}
	for _, stream := range streams {
		for _, c := range stream {
			if c.ItemID == "" {
				continue
			}
			g, ok := groups[c.ItemID]
			if !ok {
				g = &group{rec: domain.RankedRecord{ItemID: c.ItemID}, signals: map[string]struct{}{}}
				groups[c.ItemID] = g
			}
			g.absorb(c)
		}
	}

	out := make([]domain.RankedRecord, 0, len(groups))
	for _, g := range groups {
		g.rec.Title = g.title.val
		g.rec.Domain = g.domain.val
		g.rec.Approach = Label(g.signals)
		out = append(out, g.rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// Label renders a signal set as its sorted names joined by ", ".
func Label(signals map[string]struct{}) string {
	names := make([]string, 0, len(signals))
	for s := range signals {
		names = append(names, s)
	}
	sort.Strings(names)
	return strings.Join(names, labelSep)
}

// SortByTitle orders records by display title, then item id. It sorts in place.
func SortByTitle(records []domain.RankedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].View().Title, records[j].View().Title
		if ti != tj {
			return strings.ToLower(ti) < strings.ToLower(tj)
		}
		return records[i].ItemID < records[j].ItemID
	})
}
