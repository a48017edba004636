package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"seoscout/internal/config"
	"seoscout/pkg/models"
)

// ollamaProvider talks to a local Ollama instance over its generate API.
type ollamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func newOllamaProvider(cfg config.OllamaConfig) *ollamaProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &ollamaProvider{
		baseURL: baseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *ollamaProvider) Name() string { return "ollama" }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *ollamaProvider) Recommend(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error) {
	body := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: systemPrompt + "\n\n" + buildPrompt(req),
		Stream: false,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.RecommendationResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return models.RecommendationResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.RecommendationResponse{}, transportErr("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RecommendationResponse{}, fmt.Errorf("%w: ollama returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.RecommendationResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return parseResponse(parsed.Response, p.model)
}

var _ models.AIProvider = (*ollamaProvider)(nil)
