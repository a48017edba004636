package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"seoscout/pkg/models"
)

// systemPrompt pins every provider to strict JSON output so responses can be
// parsed instead of scraped out of prose.
const systemPrompt = "You are an SEO consultant. Respond with a single JSON object and no extra text."

// buildPrompt renders the audit findings and page content into the user
// message shared by all providers.
func buildPrompt(req models.RecommendationRequest) string {
	findings, _ := json.Marshal(req.Findings)

	var sb strings.Builder
	sb.WriteString("Review the SEO audit findings and page content below and produce concrete improvement recommendations.\n\n")
	fmt.Fprintf(&sb, "Website: %s\n\n", req.WebsiteURL)
	fmt.Fprintf(&sb, "Findings:\n%s\n\n", findings)
	if req.Content != "" {
		fmt.Fprintf(&sb, "Page content (markdown):\n%s\n\n", req.Content)
	}
	sb.WriteString(`Respond with a JSON object of the form {"summary": string, "recommendations": [{"category": string, "detail": string}]}. Use categories like "meta tags", "headings", "content", "keywords", "links", "images" or "performance".`)
	return sb.String()
}

// parseResponse extracts the structured recommendation payload from raw model
// output. Models sometimes wrap the object in code fences or prose, so when a
// straight unmarshal fails it retries on the outermost {...} block.
func parseResponse(content, model string) (models.RecommendationResponse, error) {
	var resp models.RecommendationResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start == -1 || end <= start {
			return models.RecommendationResponse{}, fmt.Errorf("%w: no JSON object in model output", ErrInvalidResponse)
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &resp); err != nil {
			return models.RecommendationResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	resp.Model = model
	if resp.Recommendations == nil {
		resp.Recommendations = []models.Recommendation{}
	}
	return resp, nil
}
