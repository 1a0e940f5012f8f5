package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stage identifies one unit of pipeline work.
type Stage string

const (
	StageTranscription Stage = "transcribe_conversation"
	StageSummarization Stage = "summarize_conversation"
)

// ErrDuplicateJob is returned when an explicit job ID is already in
// flight. Callers wanting to prevent duplicate concurrent submissions
// (the force-retry action) treat it as a conflict, not a failure.
var ErrDuplicateJob = errors.New("a job with this ID is already in flight")

// Job is one queued stage execution bound to a conversation.
type Job struct {
	ID             string    `json:"id,omitempty"`
	Stage          Stage     `json:"stage"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Attempt        int       `json:"attempt"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

const (
	readyKey   = "pipeline:jobs:ready"
	delayedKey = "pipeline:jobs:delayed"

	// inflightTTL bounds how long an explicit job ID blocks duplicate
	// submissions if a worker dies without acking.
	inflightTTL = 15 * time.Minute
)

// RedisQueue is an at-least-once job queue over a Redis list plus a
// sorted set for delayed delivery. Duplicate delivery of the same job is
// possible; stages guard against it with idempotency checks.
type RedisQueue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisQueue creates a queue over an existing Redis client.
func NewRedisQueue(client *redis.Client, logger *zap.Logger) *RedisQueue {
	return &RedisQueue{client: client, logger: logger}
}

func inflightKey(jobID string) string {
	return "pipeline:jobs:inflight:" + jobID
}

// Enqueue pushes a job onto the ready list. When the job carries an
// explicit ID, a second submission with the same ID before Ack returns
// ErrDuplicateJob.
func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if job.Attempt == 0 {
		job.Attempt = 1
	}
	job.EnqueuedAt = time.Now()

	if job.ID != "" {
		ok, err := q.client.SetNX(ctx, inflightKey(job.ID), "1", inflightTTL).Result()
		if err != nil {
			return fmt.Errorf("reserve job id: %w", err)
		}
		if !ok {
			return ErrDuplicateJob
		}
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, readyKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// EnqueueIn schedules a job for delivery after the given delay. The
// in-flight reservation, if any, is kept as is so retries of an
// explicitly-identified job stay deduplicated.
func (q *RedisQueue) EnqueueIn(ctx context.Context, job Job, delay time.Duration) error {
	if job.Attempt == 0 {
		job.Attempt = 1
	}
	job.EnqueuedAt = time.Now()

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	due := float64(time.Now().Add(delay).UnixMilli())
	if err := q.client.ZAdd(ctx, delayedKey, redis.Z{Score: due, Member: payload}).Err(); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next ready job. Returns (nil, nil)
// when the timeout elapses with nothing to do.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.client.BRPop(ctx, timeout, readyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Ack releases a job's in-flight reservation, if it has one.
func (q *RedisQueue) Ack(ctx context.Context, job Job) error {
	if job.ID == "" {
		return nil
	}
	return q.client.Del(ctx, inflightKey(job.ID)).Err()
}

// InFlight reports whether an explicit job ID currently holds a
// reservation (queued, delayed, or executing).
func (q *RedisQueue) InFlight(ctx context.Context, jobID string) (bool, error) {
	n, err := q.client.Exists(ctx, inflightKey(jobID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RunScheduler promotes due delayed jobs onto the ready list until ctx is
// cancelled. One scheduler per process is enough; running several is
// harmless because promotion removes the member it pushed.
func (q *RedisQueue) RunScheduler(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := q.promoteDue(ctx); err != nil && ctx.Err() == nil {
				if q.logger != nil {
					q.logger.Error("failed to promote delayed jobs", zap.Error(err))
				}
			}
		}
	}
}

func (q *RedisQueue) promoteDue(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())
	members, err := q.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: 100,
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range members {
		// Only the remover gets to push, so concurrent schedulers do
		// not duplicate the promotion.
		removed, err := q.client.ZRem(ctx, delayedKey, member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, readyKey, member).Err(); err != nil {
			return err
		}
	}
	return nil
}
