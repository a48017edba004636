package seo

import (
	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
)

// PageMarkdown converts page HTML to markdown, which reads better in an AI
// prompt than raw markup. Falls back to plain text when conversion fails.
func PageMarkdown(html, hostname string) string {
	converter := htmlmd.NewConverter(hostname, true, nil)
	markdown, err := converter.ConvertString(html)
	if err == nil {
		return markdown
	}

	doc, docErr := ParseHTML(html)
	if docErr != nil {
		return ""
	}
	return doc.Text()
}
