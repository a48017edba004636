package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"seoscout/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Jobs ---

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_jobs (id, website_url, max_pages, analysis_depth, status, attempts, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.WebsiteURL, job.MaxPages, job.AnalysisDepth, job.Status, job.Attempts, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, website_url, max_pages, analysis_depth, status, attempts, error_message, created_at, started_at, completed_at
		 FROM audit_jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.WebsiteURL, &j.MaxPages, &j.AnalysisDepth, &j.Status, &j.Attempts,
		&j.ErrorMessage, &j.CreatedAt, &j.StartedAt, &j.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

var validTransitions = map[string][]string{
	"pending": {"running", "failed"},
	"running": {"completed", "failed"},
}

// UpdateJobStatus moves a job to a new status. The write is conditional on
// the status observed at read time, so two workers racing the same job
// cannot both win; the loser gets ErrConflict. started_at is recorded on the
// transition to running and completed_at on either terminal state, each at
// most once.
func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}

	// Fetch current status
	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM audit_jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	// Validate transition
	allowed := validTransitions[currentStatus]
	valid := false
	for _, a := range allowed {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s -> %s", ErrConflict, currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE audit_jobs SET status = $2`
	args := []any{id, status}
	argIdx := 3

	if status == models.JobStatusRunning {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.Attempts != nil {
		query += fmt.Sprintf(", attempts = $%d", argIdx)
		args = append(args, *params.Attempts)
		argIdx++
	}

	query += fmt.Sprintf(" WHERE id = $1 AND status = $%d", argIdx)
	args = append(args, currentStatus)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Status changed between read and write
		return fmt.Errorf("%w: job %s no longer %s", ErrConflict, id, currentStatus)
	}
	return nil
}

// SetJobAttempts records the delivery attempt count without touching status.
func (s *PostgresStore) SetJobAttempts(ctx context.Context, id uuid.UUID, attempts int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audit_jobs SET attempts = $2 WHERE id = $1`, id, attempts)
	if err != nil {
		return fmt.Errorf("set job attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Audit Results ---

// CompleteJob inserts the audit result and flips the job running -> completed
// in a single transaction. If the job is not in running state anymore (a
// duplicate delivery lost the race) nothing is written and ErrConflict is
// returned.
func (s *PostgresStore) CompleteJob(ctx context.Context, result *models.AuditResult) error {
	sections, err := marshalSections(result)
	if err != nil {
		return fmt.Errorf("encode audit result: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete job: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	tag, err := tx.Exec(ctx,
		`UPDATE audit_jobs SET status = $2, completed_at = $3 WHERE id = $1 AND status = $4`,
		result.JobID, models.JobStatusCompleted, now, models.JobStatusRunning)
	if err != nil {
		return fmt.Errorf("complete job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s not running", ErrConflict, result.JobID)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO audit_results (id, job_id, website_url, meta_tags, headings, keywords, links, images,
		  content_stats, performance_stats, subpages, recommendations, summary, report_markdown, provider, model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		result.ID, result.JobID, result.WebsiteURL,
		sections.metaTags, sections.headings, sections.keywords, sections.links, sections.images,
		sections.contentStats, sections.performance, sections.subpages, sections.recommendations,
		result.Summary, result.ReportMarkdown, result.Provider, result.Model, result.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert audit result: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit complete job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetResultByJobID(ctx context.Context, jobID uuid.UUID) (*models.AuditResult, error) {
	var (
		r        models.AuditResult
		sections rawSections
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, job_id, website_url, meta_tags, headings, keywords, links, images,
		  content_stats, performance_stats, subpages, recommendations, summary, report_markdown, provider, model, created_at
		 FROM audit_results WHERE job_id = $1`, jobID,
	).Scan(&r.ID, &r.JobID, &r.WebsiteURL,
		&sections.metaTags, &sections.headings, &sections.keywords, &sections.links, &sections.images,
		&sections.contentStats, &sections.performance, &sections.subpages, &sections.recommendations,
		&r.Summary, &r.ReportMarkdown, &r.Provider, &r.Model, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get audit result by job: %w", err)
	}

	if err := sections.decodeInto(&r); err != nil {
		return nil, fmt.Errorf("decode audit result: %w", err)
	}
	return &r, nil
}

// rawSections carries the JSONB columns between the row and the model.
type rawSections struct {
	metaTags        []byte
	headings        []byte
	keywords        []byte
	links           []byte
	images          []byte
	contentStats    []byte
	performance     []byte
	subpages        []byte
	recommendations []byte
}

func marshalSections(r *models.AuditResult) (*rawSections, error) {
	var (
		out rawSections
		err error
	)
	encode := func(v any) []byte {
		if err != nil {
			return nil
		}
		var b []byte
		b, err = json.Marshal(v)
		return b
	}

	out.metaTags = encode(r.MetaTags)
	out.headings = encode(r.Headings)
	out.keywords = encode(r.Keywords)
	out.links = encode(r.Links)
	out.images = encode(r.Images)
	out.contentStats = encode(r.ContentStats)
	out.performance = encode(r.Performance)
	out.subpages = encode(r.Subpages)
	out.recommendations = encode(r.Recommendations)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (raw *rawSections) decodeInto(r *models.AuditResult) error {
	decode := func(data []byte, v any) error {
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, v)
	}

	if err := decode(raw.metaTags, &r.MetaTags); err != nil {
		return err
	}
	if err := decode(raw.headings, &r.Headings); err != nil {
		return err
	}
	if err := decode(raw.keywords, &r.Keywords); err != nil {
		return err
	}
	if err := decode(raw.links, &r.Links); err != nil {
		return err
	}
	if err := decode(raw.images, &r.Images); err != nil {
		return err
	}
	if err := decode(raw.contentStats, &r.ContentStats); err != nil {
		return err
	}
	if err := decode(raw.performance, &r.Performance); err != nil {
		return err
	}
	if err := decode(raw.subpages, &r.Subpages); err != nil {
		return err
	}
	return decode(raw.recommendations, &r.Recommendations)
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, created_at, last_used_at, revoked_at
		 FROM api_keys WHERE key_prefix = $1 AND revoked_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, created_at, last_used_at, revoked_at
		 FROM api_keys WHERE revoked_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountAPIKeys(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_keys`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count api keys: %w", err)
	}
	return count, nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.CreatedAt, &k.LastUsedAt, &k.RevokedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
