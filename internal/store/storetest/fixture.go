// Package storetest provides a small article graph shared by package tests.
package storetest

import (
	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/store"
)

const (
	ConceptAI      = "c:artificial-intelligence"
	ConceptML      = "c:machine-learning"
	ConceptNN      = "c:neural-networks"
	ConceptDL      = "c:deep-learning"
	ConceptBio     = "c:biology"
	ConceptCycleA  = "c:cycle-a"
	ConceptCycleB  = "c:cycle-b"
	ConceptNoEmbed = "c:graph-theory"

	WorkDeepNets   = "w:deep-nets"
	WorkTheory     = "w:learning-theory"
	WorkProtein    = "w:protein-folding"
	WorkUntitled   = "w:untitled"
	WorkBadVector  = "w:bad-vector"
	WorkNoVector   = "w:no-vector"
	WorkGraphNotes = "w:graph-notes"

	UserNN   = "User_0"
	UserPeer = "User_1"
	UserBio  = "User_2"
	UserCold = "User_cold"
)

// Axis returns a domain.EmbeddingDim vector with weight w at index i for each (i, w) pair.
func Axis(pairs ...float64) []float32 {
	v := make([]float32, domain.EmbeddingDim)
	for k := 0; k+1 < len(pairs); k += 2 {
		v[int(pairs[k])] = float32(pairs[k+1])
	}
	return v
}

// Fixture is the shared graph:
//
//	AI <- ML <- NN <- DL, Biology, Graph Theory (no embedding), CycleA <-> CycleB
//
// Work embeddings are chosen so that against the Neural Networks concept only
// Deep Nets and the untitled work have positive cosine similarity.
func Fixture() store.Fixture {
	return store.Fixture{
		Concepts: []store.FixtureConcept{
			{URI: ConceptAI, Label: "Artificial Intelligence", Level: 0, Embedding: Axis(3, 1)},
			{URI: ConceptML, Label: "Machine Learning", Level: 1, Embedding: Axis(0, 1), SubclassOf: []string{ConceptAI}},
			{URI: ConceptNN, Label: "Neural Networks", Level: 2, Embedding: Axis(1, 1), SubclassOf: []string{ConceptML}},
			{URI: ConceptDL, Label: "Deep Learning", Level: 3, Embedding: Axis(1, 1, 2, 1), SubclassOf: []string{ConceptNN}},
			{URI: ConceptBio, Label: "Biology", Level: 0, Embedding: Axis(5, 1)},
			{URI: ConceptNoEmbed, Label: "Graph Theory", Level: 0},
			{URI: ConceptCycleA, Label: "Cycle A", Level: 0, Embedding: Axis(6, 1), SubclassOf: []string{ConceptCycleB}},
			{URI: ConceptCycleB, Label: "Cycle B", Level: 0, Embedding: Axis(7, 1), SubclassOf: []string{ConceptCycleA}},
		},
		Works: []store.FixtureWork{
			{
				URI: WorkDeepNets, Title: "Deep Nets", Domain: "Artificial Intelligence",
				Abstract: "Training deep neural networks.", CitedByCount: 120,
				Embedding: Axis(1, 1, 0, 0.2), Concepts: []string{ConceptNN}, Authors: []string{"A. Turing"},
			},
			{
				URI: WorkTheory, Title: "Learning Theory", Domain: "Computer Science",
				Abstract: "Bounds for statistical learning.", CitedByCount: 40,
				Embedding: Axis(0, 1), Concepts: []string{ConceptML},
			},
			{
				URI: WorkProtein, Title: "Protein Folding", Domain: "Biology",
				Abstract: "Structure prediction.", CitedByCount: 300,
				Embedding: Axis(5, 1), Concepts: []string{ConceptBio},
			},
			{
				URI: WorkUntitled, Domain: "Artificial Intelligence",
				Abstract: "A work without a title about convolution.", CitedByCount: 3,
				Embedding: Axis(1, 1, 2, 1), Concepts: []string{ConceptDL},
			},
			{
				URI: WorkBadVector, Title: "Short Vector", Domain: "Artificial Intelligence",
				Embedding: []float32{1, 2, 3}, Concepts: []string{ConceptAI},
			},
			{
				URI: WorkNoVector, Title: "Symbolic Reasoning", Concepts: []string{ConceptAI},
			},
			{
				URI: WorkGraphNotes, Title: "Graph Notes", Domain: "Mathematics",
				Embedding: Axis(6, 1), Concepts: []string{ConceptCycleA},
			},
		},
		Users: []store.FixtureUser{
			{ID: UserNN, Interests: []string{ConceptNN}},
			{ID: UserPeer, Interests: []string{ConceptNN, ConceptBio}},
			{ID: UserBio, Interests: []string{ConceptBio}},
			{ID: UserCold},
		},
	}
}

func Memory() *store.Memory {
	return store.NewMemory(Fixture())
}
