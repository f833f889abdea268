// Package delayqueue is a durable delayed job queue on Redis.
//
// A job waits in a sorted set scored by its due time. Claiming moves it to a
// processing set scored by its visibility deadline; a job that is neither
// acked nor nacked before the deadline is put back by RequeueStale, so
// delivery is at least once. Jobs that keep failing end up in a dead list.
package delayqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyJobID     = errors.New("job id is empty")
	ErrUnexpectedType = errors.New("unexpected reply type")
)

type Job struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	// Attempts counts claims including the current one.
	Attempts int64 `json:"-"`
}

type Config struct {
	Prefix            string
	VisibilityTimeout time.Duration
	MaxAttempts       int64
}

type Queue struct {
	client redis.UniversalClient
	config Config
	now    func() time.Time

	delayedKey    string
	processingKey string
	jobsKey       string
	attemptsKey   string
	deadKey       string
}

type Option func(*Queue)

func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

func New(client redis.UniversalClient, config Config, opts ...Option) *Queue {
	if config.Prefix == "" {
		config.Prefix = "delayqueue"
	}
	if config.VisibilityTimeout <= 0 {
		config.VisibilityTimeout = time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}
	q := &Queue{
		client:        client,
		config:        config,
		now:           time.Now,
		delayedKey:    config.Prefix + ":delayed",
		processingKey: config.Prefix + ":processing",
		jobsKey:       config.Prefix + ":jobs",
		attemptsKey:   config.Prefix + ":attempts",
		deadKey:       config.Prefix + ":dead",
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) score(t time.Time) int64 {
	return t.UnixMilli()
}

// Enqueue schedules the job to become due after delay. A job whose id is
// already queued is left untouched and false is returned.
func (q *Queue) Enqueue(ctx context.Context, job Job, delay time.Duration) (bool, error) {
	if job.ID == "" {
		return false, ErrEmptyJobID
	}
	if delay < 0 {
		delay = 0
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return false, fmt.Errorf("failed to marshal job: %w", err)
	}
	added, err := enqueueScript.Run(
		ctx,
		q.client,
		[]string{q.delayedKey, q.processingKey, q.jobsKey},
		job.ID,
		q.score(q.now().Add(delay)),
		raw,
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis enqueue error: %w", err)
	}
	return added == 1, nil
}

// Claim takes up to limit due jobs and hides them for the visibility timeout.
func (q *Queue) Claim(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		return nil, nil
	}
	reply, err := claimScript.Run(
		ctx,
		q.client,
		[]string{q.delayedKey, q.processingKey, q.jobsKey, q.attemptsKey},
		q.score(q.now()),
		limit,
		q.config.VisibilityTimeout.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("redis claim error: %w", err)
	}
	jobs := make([]Job, 0, len(reply)/2)
	for i := 0; i+1 < len(reply); i += 2 {
		raw, ok := reply[i].(string)
		if !ok {
			return nil, fmt.Errorf("%w: job body is %T", ErrUnexpectedType, reply[i])
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w", err)
		}
		attempts, err := toInt64(reply[i+1])
		if err != nil {
			return nil, err
		}
		job.Attempts = attempts
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Ack removes a finished job.
func (q *Queue) Ack(ctx context.Context, jobID string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.processingKey, jobID)
		pipe.HDel(ctx, q.jobsKey, jobID)
		pipe.HDel(ctx, q.attemptsKey, jobID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis ack error: %w", err)
	}
	return nil
}

// Nack makes the job due again after retryDelay, or moves it to the dead
// list once it has been claimed MaxAttempts times. It reports whether the job
// was buried.
func (q *Queue) Nack(ctx context.Context, job Job, retryDelay time.Duration) (bool, error) {
	if job.Attempts >= q.config.MaxAttempts {
		if err := buryScript.Run(
			ctx,
			q.client,
			[]string{q.processingKey, q.jobsKey, q.attemptsKey, q.deadKey},
			job.ID,
		).Err(); err != nil {
			return false, fmt.Errorf("redis bury error: %w", err)
		}
		return true, nil
	}
	if retryDelay < 0 {
		retryDelay = 0
	}
	if err := retryScript.Run(
		ctx,
		q.client,
		[]string{q.delayedKey, q.processingKey},
		job.ID,
		q.score(q.now().Add(retryDelay)),
	).Err(); err != nil {
		return false, fmt.Errorf("redis retry error: %w", err)
	}
	return false, nil
}

// RequeueStale returns jobs whose visibility deadline passed to the delayed set.
func (q *Queue) RequeueStale(ctx context.Context) (int, error) {
	n, err := requeueScript.Run(
		ctx,
		q.client,
		[]string{q.delayedKey, q.processingKey},
		q.score(q.now()),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("redis requeue error: %w", err)
	}
	return n, nil
}

// Dead lists buried jobs, oldest first.
func (q *Queue) Dead(ctx context.Context) ([]Job, error) {
	raws, err := q.client.LRange(ctx, q.deadKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange error: %w", err)
	}
	jobs := make([]Job, 0, len(raws))
	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Pending counts jobs waiting or in flight.
func (q *Queue) Pending(ctx context.Context) (int64, error) {
	n, err := q.client.HLen(ctx, q.jobsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hlen error: %w", err)
	}
	return n, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrUnexpectedType, err)
		}
		return parsed, nil
	}
	return 0, fmt.Errorf("%w: attempts is %T", ErrUnexpectedType, v)
}
