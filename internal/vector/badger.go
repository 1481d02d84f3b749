package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

const (
	manifestKey   = "manifest"
	passagePrefix = "passage:"
)

// BadgerStore keeps one knowledge base's passages in a badger directory.
// Retrieval is a brute-force cosine scan; collections hold one document's
// chunks, so a scan over a few hundred records beats maintaining an index.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens the collection at dbPath, initializing an empty
// one if the directory holds no data. Idempotent.
func OpenBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection at %s: %w", dbPath, err)
	}

	return &BadgerStore{db: db}, nil
}

// passageKey orders passages by insertion sequence so iteration, and
// therefore tie-breaking, is stable.
func passageKey(seq int) []byte {
	return []byte(fmt.Sprintf("%s%08d", passagePrefix, seq))
}

func (s *BadgerStore) Manifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(manifestKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection manifest: %w", err)
	}
	return &m, nil
}

func (s *BadgerStore) Index(ctx context.Context, m Manifest, passages []Passage) error {
	if err := validateDimensions(m.Dimensions, passages); err != nil {
		return err
	}

	// Bulk overwrite: any prior content goes first
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	m.PassageCount = len(passages)
	if err := s.writePassages(m, passages, 0); err != nil {
		return err
	}

	// Persistence is explicit, not deferred
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("failed to sync collection to disk: %w", err)
	}

	return nil
}

func (s *BadgerStore) Add(ctx context.Context, passages []Passage) error {
	m, err := s.Manifest(ctx)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("cannot add to a collection that was never indexed")
	}
	if err := validateDimensions(m.Dimensions, passages); err != nil {
		return err
	}

	start := m.PassageCount
	m.PassageCount += len(passages)
	if err := s.writePassages(*m, passages, start); err != nil {
		return err
	}

	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("failed to sync collection to disk: %w", err)
	}

	return nil
}

// writePassages stores passages under sequential keys starting at seq and
// rewrites the manifest in the same set of transactions. Batches keep each
// transaction under badger's size limits.
func (s *BadgerStore) writePassages(m Manifest, passages []Passage, seq int) error {
	const batchSize = 100

	for i := 0; i < len(passages); i += batchSize {
		end := i + batchSize
		if end > len(passages) {
			end = len(passages)
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			for j, p := range passages[i:end] {
				data, err := json.Marshal(p)
				if err != nil {
					return fmt.Errorf("failed to marshal passage %s: %w", p.ID, err)
				}
				if err := txn.Set(passageKey(seq+i+j), data); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to store passages: %w", err)
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(manifestKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store manifest: %w", err)
	}

	return nil
}

func (s *BadgerStore) SearchSimilar(ctx context.Context, query []float32, topK int) ([]SearchResult, error) {
	if topK < 1 {
		topK = 1
	}

	var scored []SearchResult
	prefix := []byte(passagePrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p Passage
				if err := json.Unmarshal(val, &p); err != nil {
					return err
				}
				if len(p.Embedding) > 0 {
					scored = append(scored, SearchResult{
						Passage: p,
						Score:   CosineSimilarity(query, p.Embedding),
					})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	// Stable sort: equal scores keep insertion order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	return scored, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func validateDimensions(dims int, passages []Passage) error {
	for _, p := range passages {
		if len(p.Embedding) != dims {
			return fmt.Errorf("passage %s has %d-dimensional embedding, collection expects %d",
				p.ID, len(p.Embedding), dims)
		}
	}
	return nil
}
