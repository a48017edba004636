package handler

import (
	"context"
	"net/http"
	"time"

	"seoscout/internal/api/response"
	"seoscout/internal/config"
	"seoscout/internal/queue"
	"seoscout/pkg/models"
)

// Pinger is the probe interface health checks use for each dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 2 * time.Second

// NewHealthHandler returns an http.HandlerFunc for GET /health. It probes
// the database and cache and reports degraded with a 503 when either fails.
func NewHealthHandler(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		services := map[string]any{
			"database": probe(ctx, db),
			"cache":    probe(ctx, cache),
		}

		for _, status := range services {
			if status != "ok" {
				response.Error(w, http.StatusServiceUnavailable,
					"DEGRADED", "One or more services degraded", services)
				return
			}
		}

		response.JSON(w, map[string]any{"status": "ok", "services": services})
	}
}

// NewAvailabilityHandler returns an http.HandlerFunc for
// GET /api/v1/availability: the full readiness picture including the broker
// and the current ready-queue depth.
func NewAvailabilityHandler(db, cache Pinger, q queue.Queue, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		services := map[string]any{
			"database": probe(ctx, db),
			"cache":    probe(ctx, cache),
			"broker":   probe(ctx, q),
		}

		for _, status := range services {
			if status != "ok" {
				response.Error(w, http.StatusServiceUnavailable,
					"UNAVAILABLE", "One or more services unavailable", services)
				return
			}
		}

		var depth int64
		if d, err := q.Depth(ctx); err == nil {
			depth = d
		}

		response.JSON(w, availabilityResponse{
			Status:        "available",
			Services:      services,
			QueueDepth:    depth,
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		})
	}
}

// NewSchemaHandler returns an http.HandlerFunc for GET /api/v1/schema,
// describing the submission payload so clients can validate before posting.
func NewSchemaHandler(cfg config.AuditConfig) http.HandlerFunc {
	schema := map[string]any{
		"type":     "object",
		"required": []string{"website_url"},
		"properties": map[string]any{
			"website_url": map[string]any{
				"type":        "string",
				"description": "URL of the website to audit. https:// is assumed when no scheme is given.",
			},
			"max_pages": map[string]any{
				"type":    "integer",
				"default": cfg.DefaultMaxPages,
				"minimum": 1,
				"maximum": cfg.MaxPagesLimit,
			},
			"analysis_depth": map[string]any{
				"type":    "string",
				"enum":    []string{models.AnalysisDepthStandard, models.AnalysisDepthDeep},
				"default": models.AnalysisDepthStandard,
			},
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, schema)
	}
}

func probe(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "degraded"
	}
	return "ok"
}

type availabilityResponse struct {
	Status        string         `json:"status"`
	Services      map[string]any `json:"services"`
	QueueDepth    int64          `json:"queue_depth"`
	UptimeSeconds int64          `json:"uptime_seconds"`
}
