// Package embedding turns precomputed work embeddings into a normalized
// similarity pool. It never generates embeddings itself.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/vecmath"
)

// Source supplies the bulk set of works carrying an embedding property.
type Source interface {
	WorkEmbeddings(ctx context.Context) ([]domain.Work, error)
}

// InvalidEmbeddingError describes one work excluded from the pool.
type InvalidEmbeddingError struct {
	ItemID string
	Kind   string
	Reason string
}

// Invalid embedding kinds.
const (
	KindAbsent    = "absent"
	KindLength    = "length"
	KindNonFinite = "non_finite"
	KindZeroNorm  = "zero_norm"
)

func (e *InvalidEmbeddingError) Error() string {
	return fmt.Sprintf("invalid embedding for %s: %s", e.ItemID, e.Reason)
}

// Entry is one work with its unit-length embedding.
type Entry struct {
	Work   domain.Work
	Vector []float64
}

// Pool is an immutable set of valid, normalized work embeddings.
type Pool struct {
	Dim     int
	Entries []Entry
	Invalid []*InvalidEmbeddingError
}

func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// BuildPool keeps works whose embedding has exactly dim finite components and a
// non-zero norm. Everything else is reported in Pool.Invalid, never zero-filled.
func BuildPool(works []domain.Work, dim int) *Pool {
	if dim <= 0 {
		dim = domain.EmbeddingDim
	}
	p := &Pool{Dim: dim, Entries: make([]Entry, 0, len(works))}
	seen := make(map[string]struct{}, len(works))
	for _, w := range works {
		if w.ID == "" {
			continue
		}
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}

		vec, err := ValidVector(w.ID, w.Embedding, dim)
		if err != nil {
			var inv *InvalidEmbeddingError
			if errors.As(err, &inv) {
				p.Invalid = append(p.Invalid, inv)
			}
			continue
		}
		w.Embedding = nil
		p.Entries = append(p.Entries, Entry{Work: w, Vector: vec})
	}
	return p
}

// ValidVector checks raw against dim and returns it normalized.
func ValidVector(id string, raw []float32, dim int) ([]float64, error) {
	switch {
	case len(raw) == 0:
		return nil, &InvalidEmbeddingError{ItemID: id, Kind: KindAbsent, Reason: "absent"}
	case len(raw) != dim:
		return nil, &InvalidEmbeddingError{ItemID: id, Kind: KindLength, Reason: fmt.Sprintf("length %d, want %d", len(raw), dim)}
	}
	v := vecmath.FromFloat32(raw)
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &InvalidEmbeddingError{ItemID: id, Kind: KindNonFinite, Reason: "non-finite component"}
		}
	}
	unit, err := vecmath.Normalize(v)
	if err != nil {
		return nil, &InvalidEmbeddingError{ItemID: id, Kind: KindZeroNorm, Reason: "zero norm"}
	}
	return unit, nil
}

// LoadPool reads every work embedding from src and builds a pool.
func LoadPool(ctx context.Context, src Source, dim int) (*Pool, error) {
	works, err := src.WorkEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load work embeddings: %w", err)
	}
	return BuildPool(works, dim), nil
}
