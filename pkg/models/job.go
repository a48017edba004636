package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

const (
	AnalysisDepthStandard = "standard"
	AnalysisDepthDeep     = "deep"
)

// Job tracks an asynchronous website audit. The API returns a job_id on
// POST /api/v1/audits; the client polls GET /api/v1/audits/{job_id} until
// status is completed or failed.
type Job struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	WebsiteURL    string     `db:"website_url"    json:"website_url"`
	MaxPages      int        `db:"max_pages"      json:"max_pages"`
	AnalysisDepth string     `db:"analysis_depth" json:"analysis_depth"`
	Status        string     `db:"status"         json:"status"`
	Attempts      int        `db:"attempts"       json:"attempts"`
	ErrorMessage  *string    `db:"error_message"  json:"error_message,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	StartedAt     *time.Time `db:"started_at"     json:"started_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at"   json:"completed_at,omitempty"`
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}
