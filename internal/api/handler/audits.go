package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"seoscout/internal/api/response"
	"seoscout/internal/cache"
	"seoscout/internal/config"
	"seoscout/internal/payment"
	"seoscout/internal/queue"
	"seoscout/internal/store"
	"seoscout/internal/telemetry"
	"seoscout/pkg/models"
)

// Completed results are cached briefly so status polling doesn't hammer the
// database for the same JSONB blob.
const resultCacheTTL = 10 * time.Minute

// AuditStore is the subset of the job store the audit handlers depend on.
type AuditStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...store.JobUpdateOption) error
	GetResultByJobID(ctx context.Context, jobID uuid.UUID) (*models.AuditResult, error)
}

// Publisher is the queue subset used at submission time.
type Publisher interface {
	Publish(ctx context.Context, msg queue.Message) error
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/v1/audits.
// pay may be nil when the payment service is disabled; submissions then carry
// the fallback payment id.
func NewSubmitHandler(st AuditStore, pub Publisher, pay payment.Client, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WebsiteURL    string `json:"website_url"`
			MaxPages      int    `json:"max_pages"`
			AnalysisDepth string `json:"analysis_depth"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.WebsiteURL) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "website_url is required", nil)
			return
		}
		websiteURL, err := normalizeURL(req.WebsiteURL)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_URL",
				"website_url must be a valid http or https URL", nil)
			return
		}

		maxPages := req.MaxPages
		if maxPages == 0 {
			maxPages = cfg.Audit.DefaultMaxPages
		}
		if maxPages < 1 || maxPages > cfg.Audit.MaxPagesLimit {
			response.Error(w, http.StatusBadRequest, "INVALID_MAX_PAGES",
				fmt.Sprintf("max_pages must be between 1 and %d", cfg.Audit.MaxPagesLimit), nil)
			return
		}

		depth := req.AnalysisDepth
		if depth == "" {
			depth = models.AnalysisDepthStandard
		}
		if depth != models.AnalysisDepthStandard && depth != models.AnalysisDepthDeep {
			response.Error(w, http.StatusBadRequest, "INVALID_DEPTH",
				"analysis_depth must be standard or deep", nil)
			return
		}

		job := &models.Job{
			ID:            uuid.New(),
			WebsiteURL:    websiteURL,
			MaxPages:      maxPages,
			AnalysisDepth: depth,
			Status:        models.JobStatusPending,
			CreatedAt:     time.Now().UTC(),
		}
		if err := st.CreateJob(r.Context(), job); err != nil {
			slog.Error("create job", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create job", nil)
			return
		}

		paymentID := payment.FallbackID(job.ID)
		if pay != nil {
			p, err := pay.Create(r.Context(), job.ID, cfg.Payment.Amount)
			if err != nil {
				// Payments degrade; the audit proceeds with the fallback id.
				slog.Warn("payment create failed", "job_id", job.ID, "error", err)
			} else if p.PaymentID != "" {
				paymentID = p.PaymentID
			}
		}

		msg := queue.Message{
			JobID:         job.ID,
			WebsiteURL:    job.WebsiteURL,
			MaxPages:      job.MaxPages,
			AnalysisDepth: job.AnalysisDepth,
			Attempt:       1,
		}
		if err := pub.Publish(r.Context(), msg); err != nil {
			telemetry.PublishFailures.Inc()
			slog.Error("publish audit job", "job_id", job.ID, "error", err)
			if uerr := st.UpdateJobStatus(r.Context(), job.ID, models.JobStatusFailed,
				store.WithErrorMessage("failed to enqueue audit job")); uerr != nil {
				slog.Error("mark job failed after publish failure", "job_id", job.ID, "error", uerr)
			}
			response.Error(w, http.StatusServiceUnavailable, "PUBLISH_FAILED",
				"Could not enqueue the audit job", map[string]any{"job_id": job.ID.String()})
			return
		}

		telemetry.JobsSubmitted.Inc()
		response.Accepted(w, submitResponse{
			JobID:     job.ID.String(),
			Status:    job.Status,
			PaymentID: paymentID,
		})
	}
}

// NewGetAuditHandler returns an http.HandlerFunc for GET /api/v1/audits/{jobID}.
// Completed jobs include the full result, read through the cache.
func NewGetAuditHandler(st AuditStore, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_JOB_ID", "Invalid job id format", nil)
			return
		}

		job, err := st.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that id", nil)
				return
			}
			slog.Error("get job", "job_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		resp := auditStatusResponse{Job: job}
		if job.Status == models.JobStatusCompleted {
			result, err := loadResult(r.Context(), st, c, id)
			if err != nil {
				slog.Error("load audit result", "job_id", id, "error", err)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to load audit result", nil)
				return
			}
			resp.Result = result
		}

		response.JSON(w, resp)
	}
}

// NewReportHandler returns an http.HandlerFunc for
// GET /api/v1/audits/{jobID}/report, serving the markdown report of a
// completed audit. The markdown column is excluded from the cached JSON, so
// this reads the store directly.
func NewReportHandler(st AuditStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_JOB_ID", "Invalid job id format", nil)
			return
		}

		job, err := st.GetJob(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No job with that id", nil)
				return
			}
			slog.Error("get job", "job_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		if job.Status != models.JobStatusCompleted {
			response.Error(w, http.StatusConflict, "JOB_NOT_COMPLETED",
				"Report is only available for completed audits",
				map[string]any{"status": job.Status})
			return
		}

		result, err := st.GetResultByJobID(r.Context(), id)
		if err != nil {
			slog.Error("load audit result", "job_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load audit result", nil)
			return
		}

		response.Markdown(w, result.ReportMarkdown)
	}
}

// loadResult reads a completed audit result through the cache. Cache failures
// fall back to the store; a store hit is written back for the next poll.
func loadResult(ctx context.Context, st AuditStore, c cache.Cache, jobID uuid.UUID) (*models.AuditResult, error) {
	key := cache.ResultKey(jobID)
	if b, ok, err := c.Get(ctx, key); err == nil && ok {
		var cached models.AuditResult
		if json.Unmarshal(b, &cached) == nil {
			return &cached, nil
		}
	}

	result, err := st.GetResultByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(result); err == nil {
		if err := c.Set(ctx, key, b, resultCacheTTL); err != nil {
			slog.Warn("cache audit result", "job_id", jobID, "error", err)
		}
	}
	return result, nil
}

// normalizeURL validates a submitted website URL, assuming https when the
// scheme is missing.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	return u.String(), nil
}

type submitResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

type auditStatusResponse struct {
	*models.Job
	Result *models.AuditResult `json:"result,omitempty"`
}
