package worker

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"seoscout/internal/audit"
	"seoscout/internal/config"
	"seoscout/internal/queue"
	"seoscout/internal/store"
	"seoscout/internal/telemetry"
	"seoscout/pkg/models"
)

// maintenanceBatch bounds how many messages one maintenance tick moves.
const maintenanceBatch = 100

// Analyzer runs the audit pipeline for one job. *audit.Service satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, job *models.Job) (*models.AuditResult, error)
}

// Worker consumes audit deliveries and drives each job to a terminal state.
// Deliveries are at-least-once: every step tolerates seeing a job that
// another delivery already moved forward.
type Worker struct {
	cfg      config.Config
	queue    queue.Queue
	store    store.Store
	analyzer Analyzer
}

func New(cfg config.Config, q queue.Queue, st store.Store, analyzer Analyzer) *Worker {
	return &Worker{
		cfg:      cfg,
		queue:    q,
		store:    st,
		analyzer: analyzer,
	}
}

// Run consumes deliveries until ctx is cancelled. Start one goroutine per
// configured concurrency slot; Run itself is single-threaded.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d, err := w.queue.Consume(ctx)
		if err != nil {
			slog.Error("consuming delivery", "error", err)
			w.sleep(ctx, w.cfg.Queue.PollInterval)
			continue
		}
		if d == nil {
			w.sleep(ctx, w.cfg.Queue.PollInterval)
			continue
		}

		w.process(ctx, d)
	}
}

// process drives one delivery. Leaving without ack or nack is deliberate in
// the error paths: the visibility timeout redelivers the message unchanged,
// which is the recovery path for transient store failures.
func (w *Worker) process(ctx context.Context, d *queue.Delivery) {
	msg := d.Message
	log := slog.With("job_id", msg.JobID, "attempt", msg.Attempt)

	job, err := w.store.GetJob(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("dropping delivery for unknown job")
			_ = w.queue.Ack(ctx, d)
			return
		}
		log.Error("loading job", "error", err)
		return
	}

	if models.IsTerminal(job.Status) {
		log.Info("duplicate delivery for terminal job", "status", job.Status)
		telemetry.DuplicateDeliveries.Inc()
		_ = w.queue.Ack(ctx, d)
		return
	}

	err = w.store.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning, store.WithAttempts(msg.Attempt))
	switch {
	case errors.Is(err, store.ErrConflict):
		// Already running from a crashed delivery. Record the attempt and
		// run it again; CompleteJob resolves any race at the finish line.
		_ = w.store.SetJobAttempts(ctx, job.ID, msg.Attempt)
	case err != nil:
		log.Error("marking job running", "error", err)
		return
	}

	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.Worker.JobTimeout)
	result, auditErr := w.analyzer.Analyze(jobCtx, job)
	cancel()
	telemetry.AuditDuration.Observe(time.Since(start).Seconds())

	if auditErr != nil {
		w.fail(ctx, d, job, auditErr, log)
		return
	}

	if err := w.store.CompleteJob(ctx, result); err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Info("job already finished by another worker")
			_ = w.queue.Ack(ctx, d)
			return
		}
		log.Error("persisting result", "error", err)
		return
	}

	telemetry.JobsCompleted.Inc()
	log.Info("audit completed", "duration", time.Since(start))
	_ = w.queue.Ack(ctx, d)
}

// fail classifies an audit error: retryable failures under the attempt
// budget go back on the queue with a delay, everything else marks the job
// failed for good.
func (w *Worker) fail(ctx context.Context, d *queue.Delivery, job *models.Job, auditErr error, log *slog.Logger) {
	if audit.IsRetryable(auditErr) && d.Message.Attempt < w.cfg.Queue.MaxAttempts {
		delay := backoffWithJitter(w.cfg.Queue.RetryBackoffBase, w.cfg.Queue.RetryBackoffMax, d.Message.Attempt)
		if err := w.queue.Nack(ctx, d, delay); err != nil {
			log.Error("re-enqueueing delivery", "error", err)
			return
		}
		telemetry.JobRetries.Inc()
		log.Warn("audit failed, retrying", "error", auditErr, "delay", delay)
		return
	}

	if err := w.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed, store.WithErrorMessage(auditErr.Error())); err != nil {
		log.Error("marking job failed", "error", err)
		return
	}
	telemetry.JobsFailed.Inc()
	log.Error("audit failed for good", "error", auditErr)
	_ = w.queue.Ack(ctx, d)
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// RunMaintenance promotes due retries, reclaims expired leases and samples
// queue depth. Run exactly one per process.
func (w *Worker) RunMaintenance(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Queue.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := time.Now()
		if _, err := w.queue.PromoteScheduled(ctx, now, maintenanceBatch); err != nil {
			slog.Error("promoting scheduled messages", "error", err)
		}
		if n, err := w.queue.RequeueExpired(ctx, now, maintenanceBatch); err != nil {
			slog.Error("requeueing expired leases", "error", err)
		} else if n > 0 {
			slog.Warn("reclaimed expired leases", "count", n)
		}
		if depth, err := w.queue.Depth(ctx); err == nil {
			telemetry.QueueReadyDepth.Set(float64(depth))
		}
	}
}

func backoffWithJitter(base, max time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return base
	}
	exp := float64(base) * math.Pow(2, float64(attempt-1))
	wait := time.Duration(exp)
	if wait > max {
		wait = max
	}
	jitter := time.Duration(rand.Int63n(int64(wait / 2)))
	return wait/2 + jitter
}
