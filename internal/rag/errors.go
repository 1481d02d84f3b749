package rag

import "errors"

// Sentinel errors for the failure modes callers are expected to
// distinguish. Wrapped with context via fmt.Errorf("...: %w", ...) and
// checked with errors.Is.
var (
	// ErrLoad means the source file is missing, unreadable, or not a
	// valid document of a supported format.
	ErrLoad = errors.New("document load failed")

	// ErrEmbeddingUnavailable means the embedding model service could
	// not be reached or errored. Not retried: a local service outage
	// needs operator intervention, not busy-looping.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable means the generation model service could
	// not be reached or errored.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrUnknownKnowledgeBase means activation named a knowledge base
	// the registry does not know. The session keeps its prior state.
	ErrUnknownKnowledgeBase = errors.New("unknown knowledge base")

	// ErrDuplicateKnowledgeBase means indexing targeted a name that
	// already exists. Indexing is rejected, never silently skipped.
	ErrDuplicateKnowledgeBase = errors.New("knowledge base already exists")

	// ErrStorage means persisting or reading the vector collection
	// failed. Fatal to the operation in progress.
	ErrStorage = errors.New("vector storage failure")

	// ErrBusy means another long-running operation is in flight on this
	// session. At most one runs at a time.
	ErrBusy = errors.New("session is busy with another operation")
)
