package embedder

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Ollama implements rag.Embedder against the Ollama /api/embed endpoint.
// Safe for concurrent use; no API key is needed for a local Ollama.
type Ollama struct {
	// host is the Ollama base URL (e.g. "http://localhost:11434").
	host string
	// model is the embedding model name (e.g. "nomic-embed-text").
	model string
	// client is the shared HTTP client.
	client *http.Client
}

// NewOllama constructs an Ollama embedder for the given host and model.
func NewOllama(host, model string) *Ollama {
	return &Ollama{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed returns one vector per input text, in input order.
func (e *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result ollamaResponse
	code, err := postJSON(ctx, e.client, e.host+"/api/embed", nil, ollamaRequest{
		Model: e.model,
		Input: texts,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: %w", err)
	}

	if code < 200 || code >= 300 {
		msg := fmt.Sprintf("HTTP %d", code)
		if result.Error != "" {
			msg = result.Error
		}
		return nil, fmt.Errorf("ollama embedder: %s", msg)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embedder: expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}
	return result.Embeddings, nil
}
