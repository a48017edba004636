package ai

import (
	"errors"
	"strings"
	"testing"

	"seoscout/pkg/models"
)

const recommendationJSON = `{"summary":"Needs work","recommendations":[{"category":"meta tags","detail":"Add a meta description"}]}`

func testRecommendationRequest() models.RecommendationRequest {
	return models.RecommendationRequest{
		WebsiteURL: "https://example.com",
		Content:    "# Welcome\n\nSome page content.",
		Findings: models.AuditFindings{
			MetaTags:   models.MetaTags{Title: "Example", TitleLength: 7},
			LoadRating: "Good (2-3 seconds)",
		},
	}
}

// --- buildPrompt tests ---

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(testRecommendationRequest())

	if !strings.Contains(prompt, "https://example.com") {
		t.Error("expected website URL in prompt")
	}
	if !strings.Contains(prompt, "Findings:") {
		t.Error("expected findings section in prompt")
	}
	if !strings.Contains(prompt, "Some page content.") {
		t.Error("expected page content in prompt")
	}
	if !strings.Contains(prompt, `"recommendations"`) {
		t.Error("expected output schema in prompt")
	}
}

func TestBuildPrompt_NoContentSection(t *testing.T) {
	req := testRecommendationRequest()
	req.Content = ""

	prompt := buildPrompt(req)
	if strings.Contains(prompt, "Page content") {
		t.Error("expected no content section for empty content")
	}
}

// --- parseResponse tests ---

func TestParseResponse_CleanJSON(t *testing.T) {
	resp, err := parseResponse(recommendationJSON, "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Summary != "Needs work" {
		t.Errorf("unexpected summary %q", resp.Summary)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(resp.Recommendations))
	}
	if resp.Recommendations[0].Category != "meta tags" {
		t.Errorf("unexpected category %q", resp.Recommendations[0].Category)
	}
	if resp.Model != "gpt-4o" {
		t.Errorf("unexpected model %q", resp.Model)
	}
}

func TestParseResponse_CodeFence(t *testing.T) {
	content := "```json\n" + recommendationJSON + "\n```"

	resp, err := parseResponse(content, "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary != "Needs work" {
		t.Errorf("unexpected summary %q", resp.Summary)
	}
}

func TestParseResponse_NoObject(t *testing.T) {
	_, err := parseResponse("I cannot help with that.", "gpt-4o")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestParseResponse_MalformedObject(t *testing.T) {
	_, err := parseResponse(`{"summary": }`, "gpt-4o")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestParseResponse_MissingRecommendations(t *testing.T) {
	resp, err := parseResponse(`{"summary":"all good"}`, "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Recommendations == nil {
		t.Error("expected non-nil recommendations slice")
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("expected empty recommendations, got %d", len(resp.Recommendations))
	}
}
