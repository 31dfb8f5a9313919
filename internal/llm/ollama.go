// Package llm talks to the local Ollama generation runtime and builds
// the grounded prompts it consumes.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

// Client generates completions via Ollama's /api/generate endpoint.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	topP        float64
	numCtx      int
	client      *http.Client

	warmOnce sync.Once
}

// Config configures the generation client.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	NumCtx      int
	Timeout     time.Duration
}

// NewClient creates a generation client. Defaults match the local
// llama3.1 setup: temperature 0.1, top_p 0.9, num_ctx 4096.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:8b-instruct-q4_K_M"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.TopP == 0 {
		cfg.TopP = 0.9
	}
	if cfg.NumCtx == 0 {
		cfg.NumCtx = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		numCtx:      cfg.NumCtx,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Warmup loads the model once per process with a single-token request
// so the first real query does not pay the cold-start cost. Up to
// three attempts with a short pause; failure is logged, not fatal.
func (c *Client) Warmup(ctx context.Context) {
	c.warmOnce.Do(func() {
		payload := map[string]any{
			"model":  c.model,
			"prompt": "ok",
			"stream": false,
			"options": map[string]any{
				"num_predict": 1,
			},
		}
		for attempt := 1; attempt <= 3; attempt++ {
			if err := c.post(ctx, payload, nil); err != nil {
				log.Printf("llm: warm-up attempt %d failed: %v", attempt, err)
				if attempt < 3 {
					time.Sleep(2 * time.Second)
				}
				continue
			}
			return
		}
	})
}

// Generate sends the prompt to the local runtime and returns the text
// completion. Connectivity and timeout failures wrap
// domain.ErrGeneration; there is no retry loop here beyond warm-up.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.Warmup(ctx)
	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": c.temperature,
			"top_p":       c.topP,
			"num_ctx":     c.numCtx,
		},
	}
	var parsed struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, payload, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	answer := strings.TrimSpace(parsed.Response)
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion from %s", domain.ErrGeneration, c.model)
	}
	return answer, nil
}

func (c *Client) post(ctx context.Context, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ollama generate %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
