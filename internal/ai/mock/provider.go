package mock

import (
	"context"

	"seoscout/internal/ai"
	"seoscout/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_         string
	RecommendFunc func(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Recommend(ctx context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, req)
	}
	return models.RecommendationResponse{}, nil
}

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		RecommendFunc: func(_ context.Context, req models.RecommendationRequest) (models.RecommendationResponse, error) {
			return models.RecommendationResponse{
				Recommendations: []models.Recommendation{
					{Category: "meta tags", Detail: "Write a meta description between 120 and 160 characters"},
					{Category: "headings", Detail: "Use exactly one h1 per page"},
				},
				Summary: "Mock recommendation summary for testing",
				Model:   "mock-v1",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		RecommendFunc: func(_ context.Context, _ models.RecommendationRequest) (models.RecommendationResponse, error) {
			return models.RecommendationResponse{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		RecommendFunc: func(ctx context.Context, _ models.RecommendationRequest) (models.RecommendationResponse, error) {
			<-ctx.Done()
			return models.RecommendationResponse{}, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
