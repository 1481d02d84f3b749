package vector

import (
	"context"
	"testing"
	"time"
)

func testManifest(dims, count int) Manifest {
	return Manifest{
		Name:         "test_doc",
		SourceFile:   "/tmp/test_doc.pdf",
		EmbedModel:   "nomic-embed-text",
		Dimensions:   dims,
		PassageCount: count,
		CreatedAt:    time.Now(),
	}
}

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestManifestBeforeIndex(t *testing.T) {
	store := openTestStore(t)

	m, err := store.Manifest(context.Background())
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	if m != nil {
		t.Errorf("Expected nil manifest before indexing, got %+v", m)
	}
}

func TestIndexAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	passages := []Passage{
		{ID: "a", Text: "about cats", Page: 1, Index: 0, Embedding: []float32{1, 0, 0}},
		{ID: "b", Text: "about dogs", Page: 1, Index: 1, Embedding: []float32{0, 1, 0}},
		{ID: "c", Text: "about birds", Page: 2, Index: 2, Embedding: []float32{0.9, 0.1, 0}},
	}

	if err := store.Index(ctx, testManifest(3, 0), passages); err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	m, err := store.Manifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.PassageCount != 3 {
		t.Fatalf("Expected manifest with 3 passages, got %+v", m)
	}

	results, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("SearchSimilar failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Passage.ID != "a" {
		t.Errorf("Expected best match a, got %s", results[0].Passage.ID)
	}
	if results[1].Passage.ID != "c" {
		t.Errorf("Expected second match c, got %s", results[1].Passage.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("Expected descending scores, got %f then %f", results[0].Score, results[1].Score)
	}
}

func TestSearchMoreThanStored(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	passages := []Passage{
		{ID: "a", Text: "one", Embedding: []float32{1, 0}},
		{ID: "b", Text: "two", Embedding: []float32{0, 1}},
	}
	if err := store.Index(ctx, testManifest(2, 0), passages); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchSimilar(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("Expected all 2 stored passages, got %d", len(results))
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Identical embeddings score identically against any query
	passages := []Passage{
		{ID: "first", Text: "x", Embedding: []float32{1, 1}},
		{ID: "second", Text: "y", Embedding: []float32{1, 1}},
		{ID: "third", Text: "z", Embedding: []float32{1, 1}},
	}
	if err := store.Index(ctx, testManifest(2, 0), passages); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchSimilar(ctx, []float32{1, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, id := range []string{"first", "second", "third"} {
		if results[i].Passage.ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, results[i].Passage.ID)
		}
	}
}

func TestIndexRejectsWrongDimensions(t *testing.T) {
	store := openTestStore(t)

	passages := []Passage{
		{ID: "a", Text: "x", Embedding: []float32{1, 0, 0}},
	}
	if err := store.Index(context.Background(), testManifest(2, 0), passages); err == nil {
		t.Error("Expected dimension mismatch to be rejected")
	}
}

func TestAddAppends(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Index(ctx, testManifest(2, 0), []Passage{
		{ID: "a", Text: "x", Embedding: []float32{1, 0}},
	}); err != nil {
		t.Fatal(err)
	}

	if err := store.Add(ctx, []Passage{
		{ID: "b", Text: "y", Embedding: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	m, err := store.Manifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m.PassageCount != 2 {
		t.Errorf("Expected passage count 2 after append, got %d", m.PassageCount)
	}

	results, err := store.SearchSimilar(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Passage.ID != "b" {
		t.Errorf("Expected appended passage to be searchable, got %v", results)
	}
}

func TestAddRequiresManifest(t *testing.T) {
	store := openTestStore(t)

	err := store.Add(context.Background(), []Passage{
		{ID: "a", Text: "x", Embedding: []float32{1, 0}},
	})
	if err == nil {
		t.Error("Expected add on an unindexed collection to fail")
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Index(ctx, testManifest(2, 0), []Passage{
		{ID: "a", Text: "remembered", Embedding: []float32{1, 0}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	m, err := reopened.Manifest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.PassageCount != 1 {
		t.Fatalf("Expected persisted manifest, got %+v", m)
	}
	results, err := reopened.SearchSimilar(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Passage.Text != "remembered" {
		t.Errorf("Expected persisted passage after reopen, got %v", results)
	}
}
