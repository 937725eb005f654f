package graph

import (
	"encoding/json"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/pkg/pointers"
)

func getString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func getStringSlice(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	slice, ok := val.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(slice))
	for _, v := range slice {
		if str, ok := v.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	return out
}

// getVector reads an embedding property stored either as a list of numbers or
// as a JSON-encoded list. Anything else yields nil, which the pool reports as
// an absent embedding.
func getVector(record *neo4j.Record, key string) []float32 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	switch v := val.(type) {
	case []any:
		out := make([]float32, 0, len(v))
		for _, x := range v {
			switch n := x.(type) {
			case float64:
				out = append(out, float32(n))
			case int64:
				out = append(out, float32(n))
			default:
				return nil
			}
		}
		return out
	case []float64:
		out := make([]float32, len(v))
		for i, x := range v {
			out[i] = float32(x)
		}
		return out
	case string:
		var out []float32
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &out); err != nil {
			return nil
		}
		return out
	}
	return nil
}

func conceptFrom(record *neo4j.Record) domain.Concept {
	return domain.Concept{
		ID:        getString(record, "uri"),
		Label:     getString(record, "label"),
		Level:     getInt(record, "level"),
		Embedding: getVector(record, "embedding"),
	}
}

func workFrom(record *neo4j.Record) domain.Work {
	return domain.Work{
		ID:           getString(record, "uri"),
		Title:        pointers.NonEmpty(getString(record, "title")),
		Domain:       pointers.NonEmpty(getString(record, "domain")),
		Abstract:     pointers.NonEmpty(getString(record, "abstract")),
		CitedByCount: getInt(record, "cited_by_count"),
		Embedding:    getVector(record, "embedding"),
	}
}

func worksFrom(records []*neo4j.Record) []domain.Work {
	out := make([]domain.Work, 0, len(records))
	for _, r := range records {
		w := workFrom(r)
		if w.ID == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}

func conceptsFrom(records []*neo4j.Record) []domain.Concept {
	out := make([]domain.Concept, 0, len(records))
	for _, r := range records {
		c := conceptFrom(r)
		if c.ID == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
