package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GenerateRequest holds the parameters for one completion call.
type GenerateRequest struct {
	Model         string
	Prompt        string
	Temperature   float64
	ContextWindow int
	MaxTokens     int // 0 means no explicit cap
}

// generateOptions maps to Ollama's model options. num_ctx sets the context
// window the model considers; num_predict caps the generated length.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumCtx      int     `json:"num_ctx,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs a single non-streaming completion and returns the full
// model output, including any inline reasoning markers the model emits.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body := generateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumCtx:      req.ContextWindow,
			NumPredict:  req.MaxTokens,
		},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		return "", fmt.Errorf("failed to make generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generate API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}

	return genResp.Response, nil
}
