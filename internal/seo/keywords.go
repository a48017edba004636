package seo

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"seoscout/pkg/models"
)

const maxKeywords = 20

// Tokenization regexes compiled once at package init.
var (
	reWord  = regexp.MustCompile(`\w+`)
	reVowel = regexp.MustCompile(`[aeiou]+`)
)

// stopWords are excluded from keyword counts.
var stopWords = map[string]bool{
	"the": true, "be": true, "to": true, "of": true, "and": true,
	"a": true, "in": true, "that": true, "have": true, "i": true,
	"it": true, "for": true, "not": true, "on": true, "with": true,
	"he": true, "as": true, "you": true, "do": true, "at": true,
}

// ExtractKeywords returns the most frequent content words with their density
// as a percentage of all counted words. Stop words and words shorter than
// three characters are skipped. Returns at most 20 keywords sorted by
// (Count DESC, Keyword ASC).
func ExtractKeywords(doc *goquery.Document) []models.KeywordStat {
	words := tokenize(doc.Text())

	freq := make(map[string]int)
	total := 0
	for _, w := range words {
		if stopWords[w] || len(w) <= 2 {
			continue
		}
		freq[w]++
		total++
	}
	if total == 0 {
		return []models.KeywordStat{}
	}

	stats := make([]models.KeywordStat, 0, len(freq))
	for word, count := range freq {
		stats = append(stats, models.KeywordStat{
			Keyword: word,
			Count:   count,
			Density: float64(count) / float64(total) * 100,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Keyword < stats[j].Keyword
	})

	if len(stats) > maxKeywords {
		stats = stats[:maxKeywords]
	}
	return stats
}

// tokenize lowercases text and splits it into word tokens.
func tokenize(text string) []string {
	return reWord.FindAllString(strings.ToLower(text), -1)
}

// countSyllables estimates syllables as vowel groups, which is rough but
// stable enough for a readability score.
func countSyllables(text string) int {
	return len(reVowel.FindAllString(strings.ToLower(text), -1))
}
