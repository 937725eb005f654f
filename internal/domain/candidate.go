package domain

// Signal names double as provenance labels in RankedRecord.Approach.
const (
	SignalOntology      = "Ontology"
	SignalUser          = "User"
	SignalCollaborative = "Collaborative"
	SignalContent       = "Content"
)

// CandidateRecord is one item surfaced by one signal.
type CandidateRecord struct {
	ItemID string
	Title  *string
	Domain *string
	Signal string
}

// ScoredCandidate is a candidate carrying a raw relevance score, used by the
// weighted ranking path.
type ScoredCandidate struct {
	CandidateRecord
	RawScore     float64
	CitedByCount int
}

// RankedRecord is one deduplicated output item. Score is set only by weighted ranking.
type RankedRecord struct {
	ItemID   string
	Title    *string
	Domain   *string
	Approach string
	Score    *float64
}

// RankedView is the wire shape of a RankedRecord.
type RankedView struct {
	ItemID   string   `json:"item_id"`
	Title    string   `json:"title"`
	Domain   *string  `json:"domain"`
	Approach string   `json:"approach"`
	Score    *float64 `json:"score,omitempty"`
}

func (r RankedRecord) View() RankedView {
	title := UntitledSentinel
	if r.Title != nil && *r.Title != "" {
		title = *r.Title
	}
	return RankedView{
		ItemID:   r.ItemID,
		Title:    title,
		Domain:   r.Domain,
		Approach: r.Approach,
		Score:    r.Score,
	}
}

func Views(records []RankedRecord) []RankedView {
	out := make([]RankedView, 0, len(records))
	for _, r := range records {
		out = append(out, r.View())
	}
	return out
}

func CandidateFromWork(w Work, signal string) CandidateRecord {
	return CandidateRecord{
		ItemID: w.ID,
		Title:  w.Title,
		Domain: w.Domain,
		Signal: signal,
	}
}
