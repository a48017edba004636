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

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 2048
)

// anthropicProvider talks to the Anthropic Messages API.
type anthropicProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func newAnthropicProvider(cfg config.AnthropicConfig) *anthropicProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &anthropicProvider{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string                 `json:"role"`
	Content []anthropicTextContent `json:"content"`
}

type anthropicTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicTextContent `json:"content"`
}

func (p *anthropicProvider) Recommend(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error) {
	body := anthropicRequest{
		Model:     p.model,
		MaxTokens: anthropicMaxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: []anthropicTextContent{{Type: "text", Text: buildPrompt(req)}},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return models.RecommendationResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return models.RecommendationResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.RecommendationResponse{}, transportErr("anthropic", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.RecommendationResponse{}, fmt.Errorf("%w: anthropic returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.RecommendationResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(parsed.Content) == 0 {
		return models.RecommendationResponse{}, fmt.Errorf("%w: empty content returned", ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range parsed.Content {
		sb.WriteString(part.Text)
	}
	return parseResponse(sb.String(), p.model)
}

var _ models.AIProvider = (*anthropicProvider)(nil)
