package domain

import "context"

// Page is a single physical page of the source manual. Text may be empty
// when extraction fails for that page; pages are never dropped.
type Page struct {
	Number int
	Text   string
}

// Section is a heading detected on a contiguous span of pages.
type Section struct {
	Chapter   string
	Heading   string
	PageStart int
	PageEnd   int
}

// Chunk is a bounded span of cleaned manual text plus its source
// metadata. It is the unit of retrieval and is never mutated after
// ingestion.
type Chunk struct {
	ID      string
	Text    string
	Chapter string
	Heading string
	Page    int
	Index   int
}

// SearchResult is a matching chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Filter restricts a similarity search to chunks whose metadata matches
// the non-empty fields exactly.
type Filter struct {
	Chapter string
	Heading string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool { return f.Chapter == "" && f.Heading == "" }

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorStore persists chunk vectors and supports filtered similarity
// search. Ingestion writes, querying only reads.
type VectorStore interface {
	Init(dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int, filter Filter) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// Generator produces a text completion for a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces a brief extractive summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
