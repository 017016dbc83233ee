package ai

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

// NoResponseSentinel is returned when the backend answers successfully but the
// completion field is absent.
const NoResponseSentinel = "No response received."

// GenerateConfig holds settings for the Ollama generate endpoint.
type GenerateConfig struct {
	BaseURL    string
	Model      string
	NumPredict int
}

// EmbeddingConfig holds settings for the Ollama embeddings endpoint.
type EmbeddingConfig struct {
	BaseURL string
	Model   string
}

// OllamaClient talks to a locally reachable Ollama server.
type OllamaClient struct {
	httpClient *http.Client
}

func NewOllamaClient() *OllamaClient {
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate sends a single non-streaming prompt and returns the textual completion.
func (c *OllamaClient) Generate(ctx context.Context, cfg GenerateConfig, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  cfg.Model,
		"prompt": prompt,
		"stream": false,
	}
	if cfg.NumPredict > 0 {
		reqBody["options"] = map[string]interface{}{"num_predict": cfg.NumPredict}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal generate request failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build generate request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("generate response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse generate json failed: %w", err)
	}
	field, ok := parsed["response"]
	if !ok {
		return NoResponseSentinel, nil
	}
	var completion string
	if err := json.Unmarshal(field, &completion); err != nil {
		return "", fmt.Errorf("parse completion field failed: %w", err)
	}
	return completion, nil
}
