package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"seoscout/internal/config"
)

// RedisQueue implements Queue on Redis: a ready list, an in-flight sorted set
// scored by lease deadline, and a scheduled sorted set scored by delivery time.
type RedisQueue struct {
	client         *redis.Client
	readyKey       string
	inflightKey    string
	scheduledKey   string
	visibilityTTL  time.Duration
	publishRetries int
	publishBackoff time.Duration
}

// NewRedisQueue creates a queue client from a Redis URL and queue config.
func NewRedisQueue(redisURL string, cfg config.QueueConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisQueue{
		client:         redis.NewClient(opts),
		readyKey:       cfg.KeyPrefix + ":ready",
		inflightKey:    cfg.KeyPrefix + ":inflight",
		scheduledKey:   cfg.KeyPrefix + ":scheduled",
		visibilityTTL:  cfg.VisibilityTimeout,
		publishRetries: cfg.PublishRetries,
		publishBackoff: cfg.PublishBackoff,
	}, nil
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Publish enqueues msg onto the ready list, retrying transient failures.
// After publishRetries failed pushes it gives up with ErrPublishFailed.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= q.publishRetries; attempt++ {
		lastErr = q.client.RPush(ctx, q.readyKey, payload).Err()
		if lastErr == nil {
			return nil
		}
		if attempt < q.publishRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrPublishFailed, ctx.Err())
			case <-time.After(q.publishBackoff):
			}
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrPublishFailed, q.publishRetries, lastErr)
}

// Consume pops the next ready message and leases it until the visibility
// deadline. Malformed payloads are dropped instead of redelivered forever.
func (q *RedisQueue) Consume(ctx context.Context) (*Delivery, error) {
	deadline := time.Now().Add(q.visibilityTTL).UnixMilli()
	res, err := dequeueScript.Run(ctx, q.client, []string{q.readyKey, q.inflightKey}, deadline).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	raw, ok := res.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected type from dequeue script: %T", res)
	}

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		q.client.ZRem(ctx, q.inflightKey, raw)
		return nil, fmt.Errorf("malformed queue message dropped: %w", err)
	}
	return &Delivery{Message: msg, raw: raw}, nil
}

// Ack removes the delivered message from in-flight tracking.
func (q *RedisQueue) Ack(ctx context.Context, d *Delivery) error {
	return q.client.ZRem(ctx, q.inflightKey, d.raw).Err()
}

// Nack releases the lease and re-enqueues the message with Attempt+1: onto
// the scheduled set when a delay is given, straight onto the ready list
// otherwise.
func (q *RedisQueue) Nack(ctx context.Context, d *Delivery, delay time.Duration) error {
	next := d.Message
	next.Attempt++
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal queue message: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.inflightKey, d.raw)
	if delay > 0 {
		pipe.ZAdd(ctx, q.scheduledKey, redis.Z{
			Score:  float64(time.Now().Add(delay).UnixMilli()),
			Member: payload,
		})
	} else {
		pipe.RPush(ctx, q.readyKey, payload)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// PromoteScheduled moves due scheduled messages into the ready list. It
// returns how many were promoted.
func (q *RedisQueue) PromoteScheduled(ctx context.Context, now time.Time, limit int64) (int, error) {
	payloads, err := q.client.ZRangeByScore(ctx, q.scheduledKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%d", now.UnixMilli()),
		Offset: 0,
		Count:  limit,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(payloads) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, p := range payloads {
		pipe.ZRem(ctx, q.scheduledKey, p)
		pipe.RPush(ctx, q.readyKey, p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(payloads), nil
}

// RequeueExpired reclaims leases that timed out, re-enqueuing the messages
// unchanged so a crashed worker's jobs get redelivered.
func (q *RedisQueue) RequeueExpired(ctx context.Context, now time.Time, limit int64) (int, error) {
	payloads, err := q.client.ZRangeByScore(ctx, q.inflightKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%d", now.UnixMilli()),
		Offset: 0,
		Count:  limit,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(payloads) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, p := range payloads {
		pipe.ZRem(ctx, q.inflightKey, p)
		pipe.RPush(ctx, q.readyKey, p)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(payloads), nil
}

// Depth returns the length of the ready list.
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.readyKey).Result()
}

var dequeueScript = redis.NewScript(`
local job = redis.call('LPOP', KEYS[1])
if job then
  redis.call('ZADD', KEYS[2], ARGV[1], job)
  return job
end
return nil
`)
