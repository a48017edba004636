package seo

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"seoscout/pkg/models"
)

var reSentenceEnd = regexp.MustCompile(`[.!?]+`)

// AnalyzeContent measures the paragraph text of a page: volume, structure,
// and a Flesch reading-ease score.
func AnalyzeContent(doc *goquery.Document) models.ContentStats {
	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(sel.Text()))
	})
	paragraphCount := len(parts)
	text := strings.Join(parts, " ")

	wordCount := len(tokenize(text))
	sentenceCount := countSentences(text)

	avgWords := 0.0
	if paragraphCount > 0 {
		avgWords = float64(wordCount) / float64(paragraphCount)
	}

	ease := fleschReadingEase(text, wordCount, sentenceCount)

	return models.ContentStats{
		WordCount:            wordCount,
		SentenceCount:        sentenceCount,
		ParagraphCount:       paragraphCount,
		AvgWordsPerParagraph: avgWords,
		ReadingEase:          ease,
		ReadingLevel:         readingLevel(ease),
	}
}

func countSentences(text string) int {
	count := 0
	for _, part := range reSentenceEnd.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// fleschReadingEase computes 206.835 - 1.015*(words/sentences) -
// 84.6*(syllables/words). Returns 0 when there is nothing to score.
func fleschReadingEase(text string, words, sentences int) float64 {
	if sentences == 0 || words == 0 {
		return 0
	}
	syllables := countSyllables(text)
	return 206.835 - 1.015*(float64(words)/float64(sentences)) - 84.6*(float64(syllables)/float64(words))
}

// readingLevel maps a Flesch score to the conventional difficulty band.
func readingLevel(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy"
	case score >= 80:
		return "Easy"
	case score >= 70:
		return "Fairly Easy"
	case score >= 60:
		return "Standard"
	case score >= 50:
		return "Fairly Difficult"
	case score >= 30:
		return "Difficult"
	default:
		return "Very Confusing"
	}
}
