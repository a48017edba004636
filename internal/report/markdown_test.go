package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"seoscout/pkg/models"
)

func sampleResult() *models.AuditResult {
	return &models.AuditResult{
		ID:         uuid.New(),
		JobID:      uuid.New(),
		WebsiteURL: "https://example.com",
		MetaTags: models.MetaTags{
			Title:             "Example Site",
			TitleLength:       12,
			Description:       "An example website",
			DescriptionLength: 18,
			HasKeywords:       false,
			Canonical:         "https://example.com/",
			HasOpenGraph:      true,
		},
		Headings: models.Headings{
			Counts:  map[string]int{"h1": 1, "h2": 3},
			H1Texts: []string{"Welcome to Example"},
			Total:   4,
		},
		Keywords: []models.KeywordStat{
			{Keyword: "coffee", Count: 12, Density: 4.5},
			{Keyword: "roast", Count: 8, Density: 3.0},
		},
		Links:        models.LinkStats{InternalCount: 10, ExternalCount: 4, NofollowCount: 1},
		Images:       models.ImageStats{Total: 6, MissingAlt: 2},
		ContentStats: models.ContentStats{WordCount: 420, SentenceCount: 30, ParagraphCount: 12, AvgWordsPerParagraph: 35, ReadingEase: 65.2, ReadingLevel: "Standard"},
		Performance: models.PerformanceStats{
			Samples: 3, AvgSeconds: 2.5, MinSeconds: 2.1, MaxSeconds: 2.9,
			StddevSeconds: 0.4, AvgPageSizeMB: 1.2, Rating: "Good (2-3 seconds)",
		},
		Subpages: []models.Subpage{
			{URL: "https://example.com/about", Title: "About", Importance: 12.5, Source: "sitemap"},
			{URL: "https://example.com/blog", Title: "Blog", Importance: 7.5, Source: "sitemap"},
		},
		Recommendations: []models.Recommendation{
			{Category: "meta tags", Detail: "Add a longer meta description"},
		},
		Summary:   "Solid site with room to grow.",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// --- Build tests ---

func TestBuild_FullReport(t *testing.T) {
	md := Build(sampleResult())

	for _, want := range []string{
		"# SEO Analysis Report",
		"Website: https://example.com",
		"Generated: 2025-06-01T12:00:00Z",
		"## 1. Meta Tags",
		`- Title: "Example Site" (12 characters)`,
		"- Canonical URL: https://example.com/",
		"- Open Graph tags: present",
		"## 2. Heading Structure",
		"- h1: 1",
		"  * Welcome to Example",
		"- Total headings: 4",
		"## 3. Keyword Analysis",
		"- coffee: 12 occurrences (4.50%)",
		"## 4. Links Analysis",
		"- Internal links: 10",
		"## 5. Images Analysis",
		"- Missing alt text: 2",
		"## 6. Content Statistics",
		"- Readability score: 65.2 (Standard)",
		"## 7. Loading Performance",
		"- Average load time: 2.50 seconds",
		"- Rating: Good (2-3 seconds)",
		"## 8. Top Subpages",
		"1. About",
		"   - Importance score: 12.50",
		"- Average importance score: 10.00",
		"## 9. Recommendations",
		"- (meta tags) Add a longer meta description",
		"## Summary",
		"Solid site with room to grow.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBuild_SectionOrder(t *testing.T) {
	md := Build(sampleResult())

	sections := []string{"## 1.", "## 2.", "## 3.", "## 4.", "## 5.", "## 6.", "## 7.", "## 8.", "## 9.", "## Summary"}
	last := -1
	for _, section := range sections {
		idx := strings.Index(md, section)
		if idx == -1 {
			t.Fatalf("section %q not found", section)
		}
		if idx < last {
			t.Errorf("section %q out of order", section)
		}
		last = idx
	}
}

func TestBuild_NoSubpages(t *testing.T) {
	result := sampleResult()
	result.Subpages = nil

	md := Build(result)
	if strings.Contains(md, "## 8. Top Subpages") {
		t.Error("expected no subpage section for empty subpages")
	}
	if !strings.Contains(md, "## 9. Recommendations") {
		t.Error("expected recommendation section to remain")
	}
}

func TestBuild_NoRecommendations(t *testing.T) {
	result := sampleResult()
	result.Recommendations = nil
	result.Summary = ""

	md := Build(result)
	if !strings.Contains(md, "No recommendations available.") {
		t.Error("expected placeholder for missing recommendations")
	}
	if strings.Contains(md, "## Summary") {
		t.Error("expected no summary section for empty summary")
	}
}

func TestBuild_NoCanonical(t *testing.T) {
	result := sampleResult()
	result.MetaTags.Canonical = ""

	md := Build(result)
	if strings.Contains(md, "Canonical URL") {
		t.Error("expected no canonical line for empty canonical")
	}
}

func TestBuild_NoKeywords(t *testing.T) {
	result := sampleResult()
	result.Keywords = nil

	md := Build(result)
	if !strings.Contains(md, "No significant keywords found.") {
		t.Error("expected placeholder for missing keywords")
	}
}
