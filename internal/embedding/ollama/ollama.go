// Package ollama implements the embedder contract on top of a local
// Ollama runtime's /api/embeddings endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Embedder calls a local Ollama instance for embeddings. The vector
// dimension is learned from the first successful call.
type Embedder struct {
	baseURL   string
	model     string
	client    *http.Client
	dimension int
}

// Config configures the Ollama embeddings client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewEmbedder creates an embedder against the configured Ollama
// endpoint. Defaults: http://localhost:11434, nomic-embed-text, 90s.
func NewEmbedder(cfg Config) *Embedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Embedder{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (e *Embedder) Name() string { return "ollama" }

// Prepare is a no-op; the model holds the vocabulary.
func (e *Embedder) Prepare(corpus []string) error { return nil }

// Dimension returns the vector size, or 0 before the first Embed call.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed requests an embedding for text from the local runtime.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	payload, _ := json.Marshal(map[string]any{
		"model":  e.model,
		"prompt": text,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ollama embedding error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode ollama embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}
	if e.dimension == 0 {
		e.dimension = len(parsed.Embedding)
	}
	return parsed.Embedding, nil
}
