package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, model, text string) ([]float32, error) {
	req := embeddingRequest{
		Model:  model,
		Prompt: text,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/embeddings", req)
	if err != nil {
		return nil, fmt.Errorf("failed to make embeddings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embedResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode embeddings response: %w", err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned an empty vector")
	}

	return embedResp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts. The server handles one
// prompt per request, so texts are embedded sequentially in input order.
func (c *Client) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided for embedding")
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, model, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d of %d: %w", i+1, len(texts), err)
		}
		embeddings[i] = vec
	}

	return embeddings, nil
}
