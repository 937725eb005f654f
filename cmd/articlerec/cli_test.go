package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yungbote/articlerec/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	searchQuery, recTopic, recWeighted, recTopN, byTitle = "", "", false, 0, false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--config", "testdata/config.yaml"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, "search", "Neural Networks")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var views []domain.RankedView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode: %v output=%s", err, out)
	}
	if len(views) != 2 || views[0].ItemID != "w:deep-nets" || views[0].Approach != "Content, Ontology" {
		t.Fatalf("views: got=%+v", views)
	}
}

func TestSearchCommandByTitle(t *testing.T) {
	out, err := execute(t, "search", "Neural Networks", "--by-title")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var views []domain.RankedView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode: %v output=%s", err, out)
	}
	if len(views) != 2 || views[0].Title != "Deep Nets" || views[1].Title != "Learning Theory" {
		t.Fatalf("views: got=%+v", views)
	}
}

func TestRecommendWeightedCommand(t *testing.T) {
	out, err := execute(t, "recommend", "User_0", "--weighted", "--top-n", "1")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var views []domain.RankedView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode: %v output=%s", err, out)
	}
	if len(views) != 1 || views[0].Score == nil {
		t.Fatalf("weighted views: got=%+v", views)
	}
}

func TestRecommendRequiresUser(t *testing.T) {
	if _, err := execute(t, "recommend"); err == nil {
		t.Fatalf("recommend without user must fail")
	}
}

func TestArticleCommand(t *testing.T) {
	out, err := execute(t, "article", "w:learning-theory")
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	var detail domain.WorkDetail
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Abstract != domain.NoAbstractSentinel || detail.OpenAlexID != domain.NoOpenAlexID {
		t.Fatalf("sentinels: got=%+v", detail)
	}

	if _, err := execute(t, "article", "w:missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("missing article: want not found got=%v", err)
	}
}

func TestUsersAndConceptCommands(t *testing.T) {
	out, err := execute(t, "users")
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	var users []string
	if err := json.Unmarshal([]byte(out), &users); err != nil || len(users) != 2 {
		t.Fatalf("users: got=%v err=%v", users, err)
	}

	out, err = execute(t, "concept", "neural")
	if err != nil {
		t.Fatalf("concept: %v", err)
	}
	var hood domain.ConceptNeighborhood
	if err := json.Unmarshal([]byte(out), &hood); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hood.URI != "c:nn" || len(hood.Superclasses) != 1 || hood.Superclasses[0] != "Machine Learning" {
		t.Fatalf("neighborhood: got=%+v", hood)
	}
}
