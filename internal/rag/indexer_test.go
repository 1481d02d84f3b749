package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docuchat/internal/document"
	"docuchat/internal/registry"
	"docuchat/internal/vector"
)

type fakeLoader struct {
	pages []document.Page
	err   error
}

func (f *fakeLoader) Load(path string) ([]document.Page, error) {
	return f.pages, f.err
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("model server unreachable")
}

func (failingEmbedder) Model() string { return "fake-embed" }

func TestIndexBuildsKnowledgeBase(t *testing.T) {
	root := t.TempDir()
	reg := registry.New(root)
	loader := &fakeLoader{pages: []document.Page{
		{Number: 1, Text: "Orchards produce apples in autumn."},
		{Number: 2, Text: "Cider presses run through October."},
	}}
	embedder := &fakeEmbedder{vec: []float32{0.5, 0.5}}
	indexer := NewIndexer(reg, loader, document.NewChunker(), embedder)

	name, err := indexer.Index(context.Background(), "/tmp/Harvest Notes.pdf")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if name != "harvest_notes" {
		t.Errorf("Expected storage name harvest_notes, got %q", name)
	}
	if !reg.Exists("harvest_notes") {
		t.Fatal("Expected knowledge base directory to be published")
	}

	store, err := vector.OpenBadgerStore(reg.PathFor(name))
	if err != nil {
		t.Fatalf("Failed to open published collection: %v", err)
	}
	defer store.Close()

	m, err := store.Manifest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("Expected a manifest in the published collection")
	}
	if m.EmbedModel != "fake-embed" {
		t.Errorf("Expected manifest to record the embedding model, got %q", m.EmbedModel)
	}
	if m.Dimensions != 2 {
		t.Errorf("Expected 2 dimensions, got %d", m.Dimensions)
	}
	if m.PassageCount < 1 {
		t.Errorf("Expected at least one passage, got %d", m.PassageCount)
	}

	results, err := store.SearchSimilar(context.Background(), []float32{0.5, 0.5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Passage.Text, "apples") {
		t.Errorf("Expected indexed text to be retrievable, got %v", results)
	}
}

func TestIndexRejectsDuplicate(t *testing.T) {
	reg := registry.New(t.TempDir())
	if _, err := reg.Create("harvest_notes"); err != nil {
		t.Fatal(err)
	}
	indexer := NewIndexer(reg, &fakeLoader{}, document.NewChunker(), &fakeEmbedder{vec: []float32{1}})

	_, err := indexer.Index(context.Background(), "/tmp/Harvest Notes.pdf")
	if !errors.Is(err, ErrDuplicateKnowledgeBase) {
		t.Fatalf("Expected duplicate error, got %v", err)
	}
	// The error names the existing path so the user can act on it
	if !strings.Contains(err.Error(), reg.PathFor("harvest_notes")) {
		t.Errorf("Expected existing path in error, got %v", err)
	}
}

func TestIndexLoadFailure(t *testing.T) {
	reg := registry.New(t.TempDir())
	loader := &fakeLoader{err: errors.New("not a PDF")}
	indexer := NewIndexer(reg, loader, document.NewChunker(), &fakeEmbedder{vec: []float32{1}})

	_, err := indexer.Index(context.Background(), "/tmp/broken.pdf")
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("Expected load error, got %v", err)
	}
	if reg.Exists("broken") {
		t.Error("Expected no knowledge base after a failed load")
	}
}

func TestIndexEmbedFailureLeavesNothing(t *testing.T) {
	root := t.TempDir()
	reg := registry.New(root)
	loader := &fakeLoader{pages: []document.Page{{Number: 1, Text: "some text"}}}
	indexer := NewIndexer(reg, loader, document.NewChunker(), failingEmbedder{})

	if _, err := indexer.Index(context.Background(), "/tmp/doc.pdf"); err == nil {
		t.Fatal("Expected embedding failure to be reported")
	}
	if reg.Exists("doc") {
		t.Error("Expected no published knowledge base after embedding failure")
	}

	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".staging-") {
			t.Errorf("Expected staging directory to be cleaned up, found %s", filepath.Join(root, e.Name()))
		}
	}
}
