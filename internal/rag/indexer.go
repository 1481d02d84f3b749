package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docuchat/internal/document"
	"docuchat/internal/logging"
	"docuchat/internal/registry"
	"docuchat/internal/vector"
)

// PageLoader reads a source file into page-level text units.
type PageLoader interface {
	Load(path string) ([]document.Page, error)
}

// Indexer turns one source document into one knowledge base: load pages,
// chunk, embed, persist. The collection is built in a staging directory
// and published atomically, so a failure at any step leaves no
// half-written knowledge base behind.
type Indexer struct {
	registry *registry.Registry
	loader   PageLoader
	chunker  *document.Chunker
	embedder Embedder
}

func NewIndexer(reg *registry.Registry, loader PageLoader, chunker *document.Chunker, embedder Embedder) *Indexer {
	return &Indexer{
		registry: reg,
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
	}
}

// Index builds a knowledge base from filePath and returns its storage
// name. Indexing into an existing name is rejected, not merged.
func (ix *Indexer) Index(ctx context.Context, filePath string) (string, error) {
	name := registry.NameFor(filePath)
	stored := registry.Normalize(name)

	if ix.registry.Exists(name) {
		return "", fmt.Errorf("%w: %q at %s", ErrDuplicateKnowledgeBase, stored, ix.registry.PathFor(name))
	}

	pages, err := ix.loader.Load(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLoad, err)
	}

	chunks := ix.chunker.ChunkPages(pages)
	logging.Info("indexing %s: %d pages, %d chunks", filePath, len(pages), len(chunks))

	passages := make([]vector.Passage, len(chunks))
	dimensions := 0
	for i, chunk := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return "", fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		if dimensions == 0 {
			dimensions = len(vec)
		}
		passages[i] = vector.Passage{
			ID:        uuid.New().String(),
			Text:      chunk.Content,
			Page:      chunk.Page,
			Index:     chunk.Index,
			Embedding: vec,
		}
	}

	stagePath, err := ix.registry.Stage(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := ix.writeCollection(ctx, stagePath, filePath, stored, dimensions, passages); err != nil {
		ix.registry.DiscardStage(name)
		return "", err
	}

	if _, err := ix.registry.Publish(name); err != nil {
		ix.registry.DiscardStage(name)
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return stored, nil
}

func (ix *Indexer) writeCollection(ctx context.Context, stagePath, sourceFile, stored string, dimensions int, passages []vector.Passage) error {
	store, err := vector.OpenBadgerStore(stagePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer store.Close()

	manifest := vector.Manifest{
		Name:       stored,
		SourceFile: sourceFile,
		EmbedModel: ix.embedder.Model(),
		Dimensions: dimensions,
		CreatedAt:  time.Now(),
	}
	if err := store.Index(ctx, manifest, passages); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}
