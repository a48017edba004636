package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"seoscout/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrConflict signals that a conditional status update found the job in a
// different state than expected. Callers treat it as a no-op, not a failure.
var ErrConflict = errors.New("job status conflict")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	SetJobAttempts(ctx context.Context, id uuid.UUID, attempts int) error

	// CompleteJob persists the audit result and the completed status in one
	// transaction, so a broker ack never races a half-written terminal state.
	CompleteJob(ctx context.Context, result *models.AuditResult) error
	GetResultByJobID(ctx context.Context, jobID uuid.UUID) (*models.AuditResult, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
	CountAPIKeys(ctx context.Context) (int, error)
}

type jobUpdateParams struct {
	ErrorMessage *string
	Attempts     *int
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithAttempts(n int) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Attempts = &n
	}
}
