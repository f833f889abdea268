package expiry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-settlement/pkg/delayqueue"
	"go-settlement/pkg/logging"
	"go-settlement/pkg/taskpool"
	"go-settlement/pkg/timeutils"
)

type Queue interface {
	Claim(ctx context.Context, limit int) ([]delayqueue.Job, error)
	Ack(ctx context.Context, jobID string) error
	Nack(ctx context.Context, job delayqueue.Job, retryDelay time.Duration) (bool, error)
	RequeueStale(ctx context.Context) (int, error)
}

type JobHandler interface {
	Handle(ctx context.Context, job delayqueue.Job) error
}

type Recorder interface {
	Job(jobType string, outcome string)
}

type ConsumerConfig struct {
	Pool        taskpool.Config
	RetryDelays []time.Duration
}

type Consumer struct {
	queue    Queue
	handler  JobHandler
	recorder Recorder
	config   ConsumerConfig
	logger   *logging.ZapLogger
	pool     *taskpool.Pool[delayqueue.Job]
}

func NewConsumer(
	config ConsumerConfig,
	queue Queue,
	handler JobHandler,
	recorder Recorder,
	logger *logging.ZapLogger,
) *Consumer {
	c := &Consumer{
		queue:    queue,
		handler:  handler,
		recorder: recorder,
		config:   config,
		logger:   logger,
	}
	c.pool = taskpool.New[delayqueue.Job](
		"expiry-consumer",
		config.Pool,
		c.fetch,
		func(job delayqueue.Job) string { return job.ID },
		c.Process,
		logger,
	)
	return c
}

func (c *Consumer) Run(ctx context.Context) {
	c.pool.Run(ctx)
}

func (c *Consumer) Stop() {
	c.pool.Stop()
}

func (c *Consumer) fetch(ctx context.Context, limit int) ([]delayqueue.Job, error) {
	requeued, err := c.queue.RequeueStale(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // unnecessary
	}
	if requeued > 0 {
		c.logger.WarnCtx(ctx, "requeued jobs past visibility timeout", zap.Int("count", requeued))
	}
	return c.queue.Claim(ctx, limit) //nolint:wrapcheck // unnecessary
}

// Process runs one claimed job and settles it with the queue.
func (c *Consumer) Process(ctx context.Context, job delayqueue.Job) error {
	ctx = logging.WithContextFields(ctx, zap.String("jobID", job.ID), zap.Int64("attempt", job.Attempts))

	if job.Type != JobType {
		c.logger.ErrorCtx(ctx, "dropping job of unknown type", zap.String("type", job.Type))
		c.recorder.Job(job.Type, "dropped")
		return c.queue.Ack(ctx, job.ID) //nolint:wrapcheck // unnecessary
	}

	handleErr := c.handler.Handle(ctx, job)
	if handleErr == nil {
		c.recorder.Job(job.Type, "done")
		return c.queue.Ack(ctx, job.ID) //nolint:wrapcheck // unnecessary
	}

	if errors.Is(handleErr, ErrBadPayload) {
		c.recorder.Job(job.Type, "dropped")
		c.logger.ErrorCtx(ctx, "dropping job with bad payload", zap.Error(handleErr))
		return c.queue.Ack(ctx, job.ID) //nolint:wrapcheck // unnecessary
	}

	delay := timeutils.Backoff(c.config.RetryDelays, int(job.Attempts))
	buried, err := c.queue.Nack(ctx, job, delay)
	if err != nil {
		return errors.Join(handleErr, err)
	}
	if buried {
		c.recorder.Job(job.Type, "dead")
		c.logger.ErrorCtx(ctx, "job moved to dead letter list", zap.Error(handleErr))
		return nil
	}
	c.recorder.Job(job.Type, "retry")
	c.logger.WarnCtx(ctx, "job failed, retry scheduled", zap.Duration("retryIn", delay), zap.Error(handleErr))
	return nil
}
