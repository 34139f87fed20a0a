// internal/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"offr-workers/internal/common/config"
)

// Client is the single seam to the generative-AI provider. Callers hold a
// handle rather than reaching for a package global so tests can inject fakes.
type Client interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// HTTPClient talks to the provider's JSON-generation endpoint.
type HTTPClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	http        *http.Client
}

// NewHTTPClient builds the provider client. The http.Client carries no
// timeout of its own; deadlines come from the request context.
func NewHTTPClient(cfg config.GenAIConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		http:        &http.Client{},
	}
}

func (c *HTTPClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model":              c.model,
		"prompt":             prompt,
		"temperature":        c.temperature,
		"response_mime_type": "application/json",
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/generate", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("provider status %d: %s", resp.StatusCode, string(excerpt))
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}

	return apiResponse.Text, nil
}
