package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditResult holds the full output of a completed website audit. Each
// section is persisted as its own JSONB column so downstream consumers can
// pull individual sections without decoding the whole report.
type AuditResult struct {
	ID              uuid.UUID        `db:"id"                json:"id"`
	JobID           uuid.UUID        `db:"job_id"            json:"job_id"`
	WebsiteURL      string           `db:"website_url"       json:"website_url"`
	MetaTags        MetaTags         `db:"meta_tags"         json:"meta_tags"`
	Headings        Headings         `db:"headings"          json:"headings"`
	Keywords        []KeywordStat    `db:"keywords"          json:"keywords"`
	Links           LinkStats        `db:"links"             json:"links"`
	Images          ImageStats       `db:"images"            json:"images"`
	ContentStats    ContentStats     `db:"content_stats"     json:"content_stats"`
	Performance     PerformanceStats `db:"performance_stats" json:"performance_stats"`
	Subpages        []Subpage        `db:"subpages"          json:"subpages,omitempty"`
	Recommendations []Recommendation `db:"recommendations"   json:"recommendations,omitempty"`
	Summary         string           `db:"summary"           json:"summary,omitempty"`
	ReportMarkdown  string           `db:"report_markdown"   json:"-"`
	Provider        string           `db:"provider"          json:"provider,omitempty"`
	Model           string           `db:"model"             json:"model,omitempty"`
	CreatedAt       time.Time        `db:"created_at"        json:"created_at"`
}

// MetaTags captures the head-level SEO signals of a page.
type MetaTags struct {
	Title             string `json:"title"`
	TitleLength       int    `json:"title_length"`
	Description       string `json:"description"`
	DescriptionLength int    `json:"description_length"`
	HasKeywords       bool   `json:"has_keywords"`
	Canonical         string `json:"canonical,omitempty"`
	HasOpenGraph      bool   `json:"has_open_graph"`
}

// Headings summarizes the h1-h6 structure of a page.
type Headings struct {
	Counts  map[string]int `json:"counts"`
	H1Texts []string       `json:"h1_texts,omitempty"`
	Total   int            `json:"total"`
}

// KeywordStat is one entry of the keyword frequency table. Density is the
// share of total words, as a percentage.
type KeywordStat struct {
	Keyword string  `json:"keyword"`
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// LinkStats counts outgoing links by destination.
type LinkStats struct {
	InternalCount  int      `json:"internal_count"`
	ExternalCount  int      `json:"external_count"`
	NofollowCount  int      `json:"nofollow_count"`
	SampleInternal []string `json:"sample_internal,omitempty"`
	SampleExternal []string `json:"sample_external,omitempty"`
}

// ImageStats counts images and accessibility gaps.
type ImageStats struct {
	Total            int      `json:"total"`
	MissingAlt       int      `json:"missing_alt"`
	SampleMissingAlt []string `json:"sample_missing_alt,omitempty"`
}

// ContentStats describes the textual content of a page, including the
// Flesch reading ease score.
type ContentStats struct {
	WordCount            int     `json:"word_count"`
	SentenceCount        int     `json:"sentence_count"`
	ParagraphCount       int     `json:"paragraph_count"`
	AvgWordsPerParagraph float64 `json:"avg_words_per_paragraph"`
	ReadingEase          float64 `json:"reading_ease"`
	ReadingLevel         string  `json:"reading_level"`
}

// PerformanceStats aggregates repeated load-time samples of the page.
type PerformanceStats struct {
	Samples       int     `json:"samples"`
	AvgSeconds    float64 `json:"avg_seconds"`
	MinSeconds    float64 `json:"min_seconds"`
	MaxSeconds    float64 `json:"max_seconds"`
	StddevSeconds float64 `json:"stddev_seconds"`
	AvgPageSizeMB float64 `json:"avg_page_size_mb"`
	Rating        string  `json:"rating"`
}

// Subpage is a discovered page ranked by estimated importance.
type Subpage struct {
	URL        string  `json:"url"`
	Title      string  `json:"title,omitempty"`
	Importance float64 `json:"importance"`
	Depth      int     `json:"depth"`
	Source     string  `json:"source"`
}

// Recommendation is a single AI-generated improvement suggestion.
type Recommendation struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}
