package vector

import (
	"context"
	"time"
)

// Passage is a chunk of source text plus its embedding. Passages are
// immutable once indexed and owned by the store.
type Passage struct {
	ID        string
	Text      string
	Page      int // 1-based source page, 0 when unknown
	Index     int // position within the source document
	Embedding []float32
}

// SearchResult pairs a passage with its similarity to the query vector.
type SearchResult struct {
	Passage Passage
	Score   float32
}

// Manifest identifies a collection: which document it was built from and
// which embedding model produced its vectors. Mixing embedding models in
// one collection silently ruins retrieval, so the manifest is validated
// whenever the collection is bound to a chain.
type Manifest struct {
	Name         string    `json:"name"`
	SourceFile   string    `json:"source_file"`
	EmbedModel   string    `json:"embed_model"`
	Dimensions   int       `json:"dimensions"`
	PassageCount int       `json:"passage_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists passage vectors plus source text under one on-disk
// collection and answers similarity queries over them.
type Store interface {
	// Manifest returns the collection manifest, or nil if the
	// collection has never been indexed.
	Manifest(ctx context.Context) (*Manifest, error)

	// Index bulk-writes the passages and the manifest, replacing any
	// prior content, and durably flushes before returning.
	Index(ctx context.Context, m Manifest, passages []Passage) error

	// Add appends passages to an existing collection without discarding
	// prior content.
	Add(ctx context.Context, passages []Passage) error

	// SearchSimilar returns up to topK passages ordered by descending
	// similarity to the query vector. Ties keep insertion order.
	SearchSimilar(ctx context.Context, query []float32, topK int) ([]SearchResult, error)

	// Close releases the on-disk collection.
	Close() error
}
