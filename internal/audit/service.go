package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"seoscout/internal/ai"
	"seoscout/internal/config"
	"seoscout/internal/fetch"
	"seoscout/internal/report"
	"seoscout/internal/seo"
	"seoscout/pkg/models"
)

// maxPromptContentBytes caps the page markdown sent to the AI provider so
// large pages do not blow the model's context window.
const maxPromptContentBytes = 16000

// Service runs the full analysis pipeline for one audit job.
type Service struct {
	fetcher   fetch.Fetcher
	timing    fetch.Fetcher
	provider  models.AIProvider
	client    *http.Client
	userAgent string
	samples   int
	aiTimeout time.Duration
}

// NewService wires the audit pipeline. fetcher serves analysis reads and may
// cache; timing must hit the network on every call or the load-time numbers
// mean nothing.
func NewService(fetcher, timing fetch.Fetcher, provider models.AIProvider, cfg config.Config) *Service {
	return &Service{
		fetcher:   fetcher,
		timing:    timing,
		provider:  provider,
		client:    &http.Client{Timeout: cfg.Fetch.Timeout},
		userAgent: cfg.Fetch.UserAgent,
		samples:   cfg.Audit.TimingSamples,
		aiTimeout: cfg.AI.InferenceTimeout,
	}
}

// Analyze audits the job's website and assembles the result. Returned errors
// wrap sentinels that IsRetryable understands; panics inside the pipeline
// are converted to terminal errors.
func (s *Service) Analyze(ctx context.Context, job *models.Job) (result *models.AuditResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic during audit", "error", r, "job_id", job.ID)
			result = nil
			err = fmt.Errorf("audit panic: %v", r)
		}
	}()

	page, err := s.fetcher.Fetch(ctx, job.WebsiteURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", job.WebsiteURL, err)
	}

	doc, err := seo.ParseHTML(page.HTML)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing final url %q: %w", page.URL, err)
	}

	meta := seo.AnalyzeMetaTags(doc, base)
	headings := seo.AnalyzeHeadings(doc)
	keywords := seo.ExtractKeywords(doc)
	links := seo.AnalyzeLinks(doc, base)
	images := seo.AnalyzeImages(doc)
	content := seo.AnalyzeContent(doc)

	perf, err := seo.MeasureLoading(ctx, s.timing, job.WebsiteURL, s.samples)
	if err != nil {
		return nil, fmt.Errorf("measuring load times: %w", err)
	}

	subpages, err := seo.DiscoverSubpages(ctx, s.fetcher, job.WebsiteURL, seo.DiscoverOptions{
		MaxPages:  job.MaxPages,
		UserAgent: s.userAgent,
		Client:    s.client,
	})
	if err != nil {
		// Discovery is best effort: the main page analysis stands on its own.
		slog.Warn("subpage discovery failed", "error", err, "job_id", job.ID)
		subpages = nil
	}

	findings := models.AuditFindings{
		MetaTags:     meta,
		Headings:     headings,
		TopKeywords:  keywords,
		Links:        links,
		Images:       images,
		ContentStats: content,
		LoadRating:   perf.Rating,
	}
	if job.AnalysisDepth == models.AnalysisDepthDeep {
		findings.TopSubpages = subpages
	}

	markdown := seo.PageMarkdown(page.HTML, base.Hostname())

	recCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	resp, aiErr := s.provider.Recommend(recCtx, models.RecommendationRequest{
		WebsiteURL: job.WebsiteURL,
		Content:    truncateString(markdown, maxPromptContentBytes),
		Findings:   findings,
	})
	if aiErr != nil {
		if job.AnalysisDepth == models.AnalysisDepthDeep && !errors.Is(aiErr, ai.ErrInvalidResponse) {
			return nil, fmt.Errorf("generating recommendations: %w", aiErr)
		}
		slog.Warn("recommendations unavailable, continuing without them",
			"error", aiErr, "job_id", job.ID, "provider", s.provider.Name())
		resp = models.RecommendationResponse{Recommendations: []models.Recommendation{}}
	}

	resp.Summary = truncateString(resp.Summary, 2000)
	for i := range resp.Recommendations {
		resp.Recommendations[i].Detail = truncateString(resp.Recommendations[i].Detail, 2000)
	}

	result = &models.AuditResult{
		ID:              uuid.New(),
		JobID:           job.ID,
		WebsiteURL:      job.WebsiteURL,
		MetaTags:        meta,
		Headings:        headings,
		Keywords:        keywords,
		Links:           links,
		Images:          images,
		ContentStats:    content,
		Performance:     perf,
		Subpages:        subpages,
		Recommendations: resp.Recommendations,
		Summary:         resp.Summary,
		Provider:        s.provider.Name(),
		Model:           resp.Model,
		CreatedAt:       time.Now().UTC(),
	}
	result.ReportMarkdown = report.Build(result)

	return result, nil
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
