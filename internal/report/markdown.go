// Package report renders a completed audit into the markdown document that
// is stored alongside the structured result and served verbatim by the API.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"seoscout/pkg/models"
)

// Build renders an audit result as a markdown report. The result must have
// CreatedAt set; everything else degrades to sensible placeholder lines.
func Build(result *models.AuditResult) string {
	var b strings.Builder

	b.WriteString("# SEO Analysis Report\n\n")
	fmt.Fprintf(&b, "Website: %s\n", result.WebsiteURL)
	fmt.Fprintf(&b, "Generated: %s\n\n", result.CreatedAt.UTC().Format(time.RFC3339))

	writeMetaTags(&b, result.MetaTags)
	writeHeadings(&b, result.Headings)
	writeKeywords(&b, result.Keywords)
	writeLinks(&b, result.Links)
	writeImages(&b, result.Images)
	writeContent(&b, result.ContentStats)
	writePerformance(&b, result.Performance)
	writeSubpages(&b, result.Subpages)
	writeRecommendations(&b, result.Recommendations)

	if result.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(strings.TrimSpace(result.Summary))
		b.WriteString("\n")
	}

	return b.String()
}

func writeMetaTags(b *strings.Builder, m models.MetaTags) {
	b.WriteString("## 1. Meta Tags\n\n")
	fmt.Fprintf(b, "- Title: %q (%d characters)\n", m.Title, m.TitleLength)
	fmt.Fprintf(b, "- Description length: %d characters\n", m.DescriptionLength)
	fmt.Fprintf(b, "- Keywords meta: %s\n", presence(m.HasKeywords))
	if m.Canonical != "" {
		fmt.Fprintf(b, "- Canonical URL: %s\n", m.Canonical)
	}
	fmt.Fprintf(b, "- Open Graph tags: %s\n\n", presence(m.HasOpenGraph))
}

func writeHeadings(b *strings.Builder, h models.Headings) {
	b.WriteString("## 2. Heading Structure\n\n")

	levels := make([]string, 0, len(h.Counts))
	for level := range h.Counts {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Fprintf(b, "- %s: %d\n", level, h.Counts[level])
	}
	for _, text := range h.H1Texts {
		fmt.Fprintf(b, "  * %s\n", text)
	}
	fmt.Fprintf(b, "- Total headings: %d\n\n", h.Total)
}

func writeKeywords(b *strings.Builder, keywords []models.KeywordStat) {
	b.WriteString("## 3. Keyword Analysis\n\n")
	if len(keywords) == 0 {
		b.WriteString("No significant keywords found.\n\n")
		return
	}
	b.WriteString("Top keywords (with density):\n")
	for _, kw := range keywords {
		fmt.Fprintf(b, "- %s: %d occurrences (%.2f%%)\n", kw.Keyword, kw.Count, kw.Density)
	}
	b.WriteString("\n")
}

func writeLinks(b *strings.Builder, l models.LinkStats) {
	b.WriteString("## 4. Links Analysis\n\n")
	fmt.Fprintf(b, "- Internal links: %d\n", l.InternalCount)
	fmt.Fprintf(b, "- External links: %d\n", l.ExternalCount)
	fmt.Fprintf(b, "- Nofollow links: %d\n\n", l.NofollowCount)
}

func writeImages(b *strings.Builder, i models.ImageStats) {
	b.WriteString("## 5. Images Analysis\n\n")
	fmt.Fprintf(b, "- Total images: %d\n", i.Total)
	fmt.Fprintf(b, "- Missing alt text: %d\n\n", i.MissingAlt)
}

func writeContent(b *strings.Builder, c models.ContentStats) {
	b.WriteString("## 6. Content Statistics\n\n")
	fmt.Fprintf(b, "- Words: %d\n", c.WordCount)
	fmt.Fprintf(b, "- Sentences: %d\n", c.SentenceCount)
	fmt.Fprintf(b, "- Paragraphs: %d\n", c.ParagraphCount)
	fmt.Fprintf(b, "- Average words per paragraph: %.1f\n", c.AvgWordsPerParagraph)
	fmt.Fprintf(b, "- Readability score: %.1f (%s)\n\n", c.ReadingEase, c.ReadingLevel)
}

func writePerformance(b *strings.Builder, p models.PerformanceStats) {
	b.WriteString("## 7. Loading Performance\n\n")
	fmt.Fprintf(b, "- Samples collected: %d\n", p.Samples)
	fmt.Fprintf(b, "- Average load time: %.2f seconds\n", p.AvgSeconds)
	fmt.Fprintf(b, "- Minimum load time: %.2f seconds\n", p.MinSeconds)
	fmt.Fprintf(b, "- Maximum load time: %.2f seconds\n", p.MaxSeconds)
	fmt.Fprintf(b, "- Standard deviation: %.2f seconds\n", p.StddevSeconds)
	fmt.Fprintf(b, "- Average page size: %.2f MB\n", p.AvgPageSizeMB)
	fmt.Fprintf(b, "- Rating: %s\n\n", p.Rating)
}

func writeSubpages(b *strings.Builder, subpages []models.Subpage) {
	if len(subpages) == 0 {
		return
	}
	b.WriteString("## 8. Top Subpages\n\n")

	total := 0.0
	for i, sp := range subpages {
		fmt.Fprintf(b, "%d. %s\n", i+1, sp.Title)
		fmt.Fprintf(b, "   - URL: %s\n", sp.URL)
		fmt.Fprintf(b, "   - Importance score: %.2f\n", sp.Importance)
		total += sp.Importance
	}
	fmt.Fprintf(b, "\n- Total pages analyzed: %d\n", len(subpages))
	fmt.Fprintf(b, "- Average importance score: %.2f\n\n", total/float64(len(subpages)))
}

func writeRecommendations(b *strings.Builder, recs []models.Recommendation) {
	b.WriteString("## 9. Recommendations\n\n")
	if len(recs) == 0 {
		b.WriteString("No recommendations available.\n\n")
		return
	}
	for _, rec := range recs {
		fmt.Fprintf(b, "- (%s) %s\n", rec.Category, rec.Detail)
	}
	b.WriteString("\n")
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
