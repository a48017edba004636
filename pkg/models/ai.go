// Package models contains shared data models used across the seoscout codebase.
package models

import "context"

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type AIProvider interface {
	// Recommend produces SEO recommendations for an audited page.
	Recommend(ctx context.Context, req RecommendationRequest) (RecommendationResponse, error)
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string
}

// RecommendationRequest is the input to a recommendation operation. Content
// is the page rendered as markdown, truncated to fit the provider's context.
type RecommendationRequest struct {
	WebsiteURL string
	Content    string
	Findings   AuditFindings
}

// AuditFindings is the condensed analysis the provider reasons over.
// TopSubpages is only populated for deep audits.
type AuditFindings struct {
	MetaTags     MetaTags      `json:"meta_tags"`
	Headings     Headings      `json:"headings"`
	TopKeywords  []KeywordStat `json:"top_keywords"`
	Links        LinkStats     `json:"links"`
	Images       ImageStats    `json:"images"`
	ContentStats ContentStats  `json:"content_stats"`
	LoadRating   string        `json:"load_rating"`
	TopSubpages  []Subpage     `json:"top_subpages,omitempty"`
}

// RecommendationResponse is the provider's structured output.
type RecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
	Model           string           `json:"model"`
}
