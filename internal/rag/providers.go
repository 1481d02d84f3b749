package rag

import (
	"context"
	"fmt"

	"docuchat/internal/ollama"
)

// Embedder converts text into a fixed-dimension vector. The same embedder
// must serve both indexing and querying for one knowledge base.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model identifies the embedding model. Recorded in each knowledge
	// base's manifest and validated at activation.
	Model() string
}

// GenerateParams are the per-call parameters for the generation model.
type GenerateParams struct {
	Model         string
	Prompt        string
	Temperature   float64
	ContextWindow int
	MaxTokens     int
}

// Generator invokes the generation model and returns its raw output,
// reasoning markers included.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (string, error)
}

// OllamaEmbedder adapts the Ollama client to the Embedder interface,
// binding it to one embedding model.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

func NewOllamaEmbedder(client *ollama.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return vec, nil
}

func (e *OllamaEmbedder) Model() string {
	return e.model
}

// OllamaGenerator adapts the Ollama client to the Generator interface.
type OllamaGenerator struct {
	client *ollama.Client
}

func NewOllamaGenerator(client *ollama.Client) *OllamaGenerator {
	return &OllamaGenerator{client: client}
}

func (g *OllamaGenerator) Generate(ctx context.Context, params GenerateParams) (string, error) {
	out, err := g.client.Generate(ctx, ollama.GenerateRequest{
		Model:         params.Model,
		Prompt:        params.Prompt,
		Temperature:   params.Temperature,
		ContextWindow: params.ContextWindow,
		MaxTokens:     params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	return out, nil
}
