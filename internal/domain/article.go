package domain

const (
	// EmbeddingDim is the length of every work and concept embedding.
	EmbeddingDim = 768

	UntitledSentinel   = "Untitled"
	UnknownDomain      = "Unknown"
	NoAbstractSentinel = "No abstract available"
	NoOpenAlexID       = "N/A"
)

// Work is a scientific article node. Optional graph properties are pointers;
// nil means the property is absent, not empty.
type Work struct {
	ID           string
	Title        *string
	Domain       *string
	Abstract     *string
	CitedByCount int
	Embedding    []float32
}

// Concept is an ontology node in the is-subclass-of hierarchy.
type Concept struct {
	ID        string
	Label     string
	Level     int
	Embedding []float32
}

type User struct {
	ID        string
	Interests []Concept
}

// WorkDetail is the full article view served to the article page.
type WorkDetail struct {
	ID           string   `json:"uri"`
	Title        string   `json:"title"`
	Abstract     string   `json:"abstract"`
	OpenAlexID   string   `json:"openalex_id"`
	Domain       string   `json:"domain"`
	CitedByCount int      `json:"cited_by_count"`
	Authors      []string `json:"authors"`
	Topics       []string `json:"topics"`
}

// ConceptNeighborhood is one concept with its direct hierarchy neighbours.
type ConceptNeighborhood struct {
	Label        string   `json:"label"`
	URI          string   `json:"uri"`
	Superclasses []string `json:"superclasses"`
	Subclasses   []string `json:"subclasses"`
	RelatedWorks []string `json:"related_works"`
}
