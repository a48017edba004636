package seo

import (
	"math"
	"testing"
)

// --- AnalyzeContent tests ---

func TestAnalyzeContent(t *testing.T) {
	doc := mustParse(t, `<html><body>
		<p>The cat sat on the mat. It purred!</p>
		<p>Dogs bark loudly.</p>
	</body></html>`)

	stats := AnalyzeContent(doc)

	if stats.WordCount != 11 {
		t.Errorf("expected 11 words, got %d", stats.WordCount)
	}
	if stats.SentenceCount != 3 {
		t.Errorf("expected 3 sentences, got %d", stats.SentenceCount)
	}
	if stats.ParagraphCount != 2 {
		t.Errorf("expected 2 paragraphs, got %d", stats.ParagraphCount)
	}
	if math.Abs(stats.AvgWordsPerParagraph-5.5) > 0.001 {
		t.Errorf("expected 5.5 words per paragraph, got %f", stats.AvgWordsPerParagraph)
	}
	if stats.ReadingEase == 0 {
		t.Error("expected a nonzero reading ease score")
	}
	if stats.ReadingLevel == "" {
		t.Error("expected a reading level")
	}
}

func TestAnalyzeContent_NoParagraphs(t *testing.T) {
	doc := mustParse(t, `<html><body><div>bare text outside paragraphs</div></body></html>`)

	stats := AnalyzeContent(doc)

	if stats.WordCount != 0 {
		t.Errorf("expected 0 words, got %d", stats.WordCount)
	}
	if stats.ParagraphCount != 0 {
		t.Errorf("expected 0 paragraphs, got %d", stats.ParagraphCount)
	}
	if stats.AvgWordsPerParagraph != 0 {
		t.Errorf("expected 0 words per paragraph, got %f", stats.AvgWordsPerParagraph)
	}
	if stats.ReadingEase != 0 {
		t.Errorf("expected 0 reading ease, got %f", stats.ReadingEase)
	}
}

// --- fleschReadingEase tests ---

func TestFleschReadingEase_Formula(t *testing.T) {
	// 3 words, 1 sentence, 3 vowel groups:
	// 206.835 - 1.015*(3/1) - 84.6*(3/3) = 119.19
	text := "The cat sat."
	got := fleschReadingEase(text, 3, 1)
	if math.Abs(got-119.19) > 0.001 {
		t.Errorf("expected 119.19, got %f", got)
	}
}

func TestFleschReadingEase_ZeroInputs(t *testing.T) {
	if got := fleschReadingEase("", 0, 0); got != 0 {
		t.Errorf("expected 0 for empty text, got %f", got)
	}
	if got := fleschReadingEase("words", 5, 0); got != 0 {
		t.Errorf("expected 0 for zero sentences, got %f", got)
	}
}

// --- readingLevel tests ---

func TestReadingLevel(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{95, "Very Easy"},
		{90, "Very Easy"},
		{85, "Easy"},
		{75, "Fairly Easy"},
		{65, "Standard"},
		{55, "Fairly Difficult"},
		{40, "Difficult"},
		{10, "Very Confusing"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := readingLevel(tt.score)
			if got != tt.expected {
				t.Errorf("readingLevel(%f) = %q, want %q", tt.score, got, tt.expected)
			}
		})
	}
}
