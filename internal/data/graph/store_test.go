package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker/v2"

	"github.com/yungbote/articlerec/internal/domain"
)

func rec(kv ...any) *neo4j.Record {
	r := &neo4j.Record{}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Keys = append(r.Keys, kv[i].(string))
		r.Values = append(r.Values, kv[i+1])
	}
	return r
}

func TestWorkFromRecord(t *testing.T) {
	r := rec(
		"uri", "w:1",
		"title", "Deep Nets",
		"domain", nil,
		"abstract", "",
		"cited_by_count", int64(42),
		"embedding", []any{float64(1), int64(2), float64(0.5)},
	)
	w := workFrom(r)
	if w.ID != "w:1" || w.Title == nil || *w.Title != "Deep Nets" {
		t.Fatalf("work: got=%+v", w)
	}
	if w.Domain != nil || w.Abstract != nil {
		t.Fatalf("absent properties must stay nil: domain=%v abstract=%v", w.Domain, w.Abstract)
	}
	if w.CitedByCount != 42 {
		t.Fatalf("cited_by_count: want=42 got=%d", w.CitedByCount)
	}
	if diff := cmp.Diff([]float32{1, 2, 0.5}, w.Embedding); diff != "" {
		t.Fatalf("embedding (-want +got):\n%s", diff)
	}
}

func TestGetVectorFormats(t *testing.T) {
	cases := []struct {
		name string
		val  any
		want []float32
	}{
		{"list", []any{float64(0.25), float64(-1)}, []float32{0.25, -1}},
		{"json string", "[0.25, -1]", []float32{0.25, -1}},
		{"bad json", "[0.25,", nil},
		{"mixed list", []any{float64(1), "x"}, nil},
		{"missing", nil, nil},
		{"wrong type", int64(3), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := getVector(rec("embedding", tc.val), "embedding")
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("vector (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConceptsFromSkipsMissingIDs(t *testing.T) {
	got := conceptsFrom([]*neo4j.Record{
		rec("uri", "c:1", "label", "Neural Networks", "level", int64(2)),
		rec("uri", nil, "label", "Orphan"),
	})
	want := []domain.Concept{{ID: "c:1", Label: "Neural Networks", Level: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("concepts (-want +got):\n%s", diff)
	}
}

func TestGetStringSliceDropsEmpty(t *testing.T) {
	got := getStringSlice(rec("topics", []any{"AI", nil, "", "ML"}), "topics")
	if diff := cmp.Diff([]string{"AI", "ML"}, got); diff != "" {
		t.Fatalf("topics (-want +got):\n%s", diff)
	}
	if got := getStringSlice(rec(), "topics"); got == nil || len(got) != 0 {
		t.Fatalf("missing key: want empty non-nil got=%#v", got)
	}
}

func TestIsUnavailable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("run: %w", context.Canceled), true},
		{gobreaker.ErrOpenState, true},
		{gobreaker.ErrTooManyRequests, true},
		{&neo4j.ConnectivityError{Inner: errors.New("connection refused")}, true},
		{&neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError"}, false},
		{&neo4j.Neo4jError{Code: "Neo.TransientError.General.DatabaseUnavailable"}, true},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := isUnavailable(tc.err); got != tc.want {
			t.Fatalf("isUnavailable(%v): want=%v got=%v", tc.err, tc.want, got)
		}
	}
}
