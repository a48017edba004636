package seo

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"seoscout/pkg/models"
)

const sampleLinks = 5

// ParseHTML parses page markup for analysis.
func ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// AnalyzeMetaTags inspects the title, description, and social metadata of a
// page. The canonical URL is resolved against base when relative.
func AnalyzeMetaTags(doc *goquery.Document, base *url.URL) models.MetaTags {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	desc := strings.TrimSpace(doc.Find("meta[name='description']").AttrOr("content", ""))
	keywords := strings.TrimSpace(doc.Find("meta[name='keywords']").AttrOr("content", ""))

	canonical := strings.TrimSpace(doc.Find("link[rel='canonical']").AttrOr("href", ""))
	if canonical != "" && base != nil {
		if cu, err := url.Parse(canonical); err == nil {
			if !cu.IsAbs() {
				cu = base.ResolveReference(cu)
			}
			canonical = cu.String()
		}
	}

	hasOG := doc.Find("meta[property='og:title']").Length() > 0 ||
		doc.Find("meta[property='og:description']").Length() > 0

	return models.MetaTags{
		Title:             title,
		TitleLength:       utf8.RuneCountInString(title),
		Description:       desc,
		DescriptionLength: utf8.RuneCountInString(desc),
		HasKeywords:       keywords != "",
		Canonical:         canonical,
		HasOpenGraph:      hasOG,
	}
}

// AnalyzeHeadings counts heading tags by level. Only levels that appear on
// the page show up in Counts.
func AnalyzeHeadings(doc *goquery.Document) models.Headings {
	counts := make(map[string]int)
	total := 0
	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		n := doc.Find(level).Length()
		if n > 0 {
			counts[level] = n
			total += n
		}
	}

	var h1s []string
	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			h1s = append(h1s, text)
		}
	})

	return models.Headings{Counts: counts, H1Texts: h1s, Total: total}
}

// AnalyzeLinks classifies anchors as internal or external by host, resolving
// relative hrefs against base.
func AnalyzeLinks(doc *goquery.Document, base *url.URL) models.LinkStats {
	var stats models.LinkStats
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		if !linkURL.IsAbs() && base != nil {
			linkURL = base.ResolveReference(linkURL)
		}
		if linkURL.Scheme != "http" && linkURL.Scheme != "https" {
			return
		}
		linkURL.Fragment = ""
		final := linkURL.String()

		if strings.Contains(sel.AttrOr("rel", ""), "nofollow") {
			stats.NofollowCount++
		}

		if base != nil && strings.EqualFold(linkURL.Hostname(), base.Hostname()) {
			stats.InternalCount++
			if len(stats.SampleInternal) < sampleLinks {
				stats.SampleInternal = append(stats.SampleInternal, final)
			}
		} else {
			stats.ExternalCount++
			if len(stats.SampleExternal) < sampleLinks {
				stats.SampleExternal = append(stats.SampleExternal, final)
			}
		}
	})
	return stats
}

// AnalyzeImages counts images and flags those without alt text.
func AnalyzeImages(doc *goquery.Document) models.ImageStats {
	var stats models.ImageStats
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		stats.Total++
		if strings.TrimSpace(sel.AttrOr("alt", "")) == "" {
			stats.MissingAlt++
			if src := strings.TrimSpace(sel.AttrOr("src", "")); src != "" && len(stats.SampleMissingAlt) < sampleLinks {
				stats.SampleMissingAlt = append(stats.SampleMissingAlt, src)
			}
		}
	})
	return stats
}
