package rag

import (
	"context"
	"fmt"
	"strings"

	"docuchat/internal/logging"
	"docuchat/internal/registry"
	"docuchat/internal/vector"
)

// Chain is a compiled query pipeline: one knowledge base bound to one
// configuration. Chains are immutable; configuration changes compile a
// new chain.
type Chain struct {
	kb       string
	store    vector.Store
	embedder Embedder
	gen      Generator
	cfg      ChainConfig
}

// Answer is the result of one question.
type Answer struct {
	Text     string
	Thinking string // stripped reasoning segment, diagnostic only
	Sources  []vector.SearchResult
}

// KnowledgeBase returns the name of the bound knowledge base.
func (c *Chain) KnowledgeBase() string {
	return c.kb
}

// Config returns the configuration the chain was compiled with.
func (c *Chain) Config() ChainConfig {
	return c.cfg
}

// Ask embeds the question, retrieves the top-K most similar passages,
// and generates a grounded answer. Finding no passages is not an error:
// generation still runs with empty context and the prompt's no-fabrication
// instruction produces an honest answer.
func (c *Chain) Ask(ctx context.Context, question string) (Answer, error) {
	queryVec, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := c.store.SearchSimilar(ctx, queryVec, c.cfg.TopK)
	if err != nil {
		return Answer{}, fmt.Errorf("%w: similarity search: %v", ErrStorage, err)
	}

	prompt := buildPrompt(results, question)
	logging.Debug("chain %s: retrieved %d passages for question", c.kb, len(results))

	raw, err := c.gen.Generate(ctx, GenerateParams{
		Model:         c.cfg.Model,
		Prompt:        prompt,
		Temperature:   c.cfg.Temperature,
		ContextWindow: c.cfg.ContextWindow,
		MaxTokens:     c.cfg.MaxTokens,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	text, thinking := StripThinking(raw)
	return Answer{
		Text:     text,
		Thinking: thinking,
		Sources:  results,
	}, nil
}

// WithConfig returns a chain over the same collection with new
// parameters. The collection handle is shared; badger allows only one
// open handle per directory, so rebinding never reopens it.
func (c *Chain) WithConfig(cfg ChainConfig) *Chain {
	clone := *c
	clone.cfg = cfg
	return &clone
}

// Close releases the chain's handle on the vector collection.
func (c *Chain) Close() error {
	return c.store.Close()
}

// buildPrompt concatenates the retrieved passages verbatim as context and
// instructs the model to answer from that context only.
func buildPrompt(results []vector.SearchResult, question string) string {
	var builder strings.Builder

	builder.WriteString("Answer the question based ONLY on the following context:\n")
	for i, r := range results {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(r.Passage.Text)
	}
	builder.WriteString("\n\nQuestion: ")
	builder.WriteString(question)
	builder.WriteString("\nNote: Do not make up any information. Small talk is allowed.\n")

	return builder.String()
}

// Compiler builds chains. The session depends on this interface so chain
// compilation can be observed and faked in tests.
type Compiler interface {
	Compile(ctx context.Context, kbName string, cfg ChainConfig) (*Chain, error)
}

// StoreCompiler compiles chains against on-disk badger collections.
type StoreCompiler struct {
	registry *registry.Registry
	embedder Embedder
	gen      Generator
}

func NewStoreCompiler(reg *registry.Registry, embedder Embedder, gen Generator) *StoreCompiler {
	return &StoreCompiler{registry: reg, embedder: embedder, gen: gen}
}

// Compile opens the knowledge base's collection and validates that it was
// built with the embedder the chain will query with. A mismatch would not
// fail at query time, it would just retrieve garbage, so it fails loudly
// here instead.
func (sc *StoreCompiler) Compile(ctx context.Context, kbName string, cfg ChainConfig) (*Chain, error) {
	store, err := vector.OpenBadgerStore(sc.registry.PathFor(kbName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	manifest, err := store.Manifest(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if manifest != nil && manifest.EmbedModel != sc.embedder.Model() {
		store.Close()
		return nil, fmt.Errorf("knowledge base %q was indexed with embedding model %q but %q is configured",
			kbName, manifest.EmbedModel, sc.embedder.Model())
	}

	return &Chain{
		kb:       registry.Normalize(kbName),
		store:    store,
		embedder: sc.embedder,
		gen:      sc.gen,
		cfg:      cfg,
	}, nil
}
