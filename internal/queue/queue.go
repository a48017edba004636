package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrPublishFailed means the broker rejected a message after all publish
// retries. The submitting side must not leave the job pending when it sees
// this error.
var ErrPublishFailed = errors.New("queue publish failed")

// Message is the payload carried through the queue for one audit job.
// Attempt starts at 1 on first publish and is bumped on every retry
// re-enqueue, never on crash redelivery.
type Message struct {
	JobID         uuid.UUID `json:"job_id"`
	WebsiteURL    string    `json:"website_url"`
	MaxPages      int       `json:"max_pages"`
	AnalysisDepth string    `json:"analysis_depth"`
	Attempt       int       `json:"attempt"`
}

// Delivery is one leased message. Ack and Nack need the exact payload that
// was leased, so the raw bytes travel with the parsed message.
type Delivery struct {
	Message Message
	raw     string
}

// Queue is the broker interface. All queue operations go through here.
// Implementations must be safe for concurrent use.
type Queue interface {
	// Publish enqueues a message, retrying transient failures a bounded
	// number of times before giving up with ErrPublishFailed.
	Publish(ctx context.Context, msg Message) error

	// Consume leases the next ready message under a visibility timeout.
	// Returns (nil, nil) when the queue is empty.
	Consume(ctx context.Context) (*Delivery, error)

	// Ack removes a delivered message for good.
	Ack(ctx context.Context, d *Delivery) error

	// Nack re-enqueues a delivered message with its attempt counter bumped,
	// after the given delay.
	Nack(ctx context.Context, d *Delivery, delay time.Duration) error

	// PromoteScheduled moves due delayed messages into the ready queue.
	PromoteScheduled(ctx context.Context, now time.Time, limit int64) (int, error)

	// RequeueExpired reclaims leases whose visibility timeout passed,
	// re-enqueuing the messages unchanged.
	RequeueExpired(ctx context.Context, now time.Time, limit int64) (int, error)

	// Depth returns the number of ready messages.
	Depth(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}
