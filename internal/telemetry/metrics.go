package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsSubmitted       = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_submitted_total", Help: "Audit jobs accepted for processing"})
	JobsCompleted       = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_completed_total", Help: "Audit jobs that finished with a result"})
	JobsFailed          = prometheus.NewCounter(prometheus.CounterOpts{Name: "jobs_failed_total", Help: "Audit jobs that ended in failure"})
	JobRetries          = prometheus.NewCounter(prometheus.CounterOpts{Name: "job_retries_total", Help: "Deliveries re-enqueued for another attempt"})
	PublishFailures     = prometheus.NewCounter(prometheus.CounterOpts{Name: "publish_failures_total", Help: "Submissions rejected because the broker was unavailable"})
	DuplicateDeliveries = prometheus.NewCounter(prometheus.CounterOpts{Name: "duplicate_deliveries_total", Help: "Deliveries skipped because the job was already terminal"})
	RateLimitRejects    = prometheus.NewCounter(prometheus.CounterOpts{Name: "rate_limit_rejects_total", Help: "Requests rejected by the rate limiter"})
	AuditDuration       = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_duration_seconds",
		Help:    "Wall-clock time spent analyzing a site",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	QueueReadyDepth = prometheus.NewGauge(prometheus.GaugeOpts{Name: "queue_ready_depth", Help: "Messages waiting in the ready queue"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsSubmitted,
			JobsCompleted,
			JobsFailed,
			JobRetries,
			PublishFailures,
			DuplicateDeliveries,
			RateLimitRejects,
			AuditDuration,
			QueueReadyDepth,
		)
	})
	return promhttp.Handler()
}
