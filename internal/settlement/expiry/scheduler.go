// Package expiry closes deposits whose payment window elapsed. The producer
// schedules one delayed job per deposit at creation time and the consumer
// drives the scheduler transition when the job comes due.
package expiry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-settlement/pkg/delayqueue"
	"go-settlement/pkg/logging"
)

const JobType = "expire-deposit"

func JobID(depositID string) string {
	return JobType + ":" + depositID
}

type payload struct {
	DepositID string `json:"depositId"`
}

type Producer interface {
	Enqueue(ctx context.Context, job delayqueue.Job, delay time.Duration) (bool, error)
}

type Scheduler struct {
	queue  Producer
	logger *logging.ZapLogger
	now    func() time.Time
}

func NewScheduler(queue Producer, logger *logging.ZapLogger) *Scheduler {
	return &Scheduler{
		queue:  queue,
		logger: logger,
		now:    time.Now,
	}
}

// ScheduleDepositExpiry enqueues the expiry job to run at expiredAt, or right
// away when that moment has passed.
func (s *Scheduler) ScheduleDepositExpiry(ctx context.Context, depositID string, expiredAt time.Time) error {
	raw, err := json.Marshal(payload{DepositID: depositID})
	if err != nil {
		return fmt.Errorf("failed to marshal expiry payload: %w", err)
	}
	delay := max(expiredAt.Sub(s.now()), 0)
	added, err := s.queue.Enqueue(ctx, delayqueue.Job{
		ID:      JobID(depositID),
		Type:    JobType,
		Payload: raw,
	}, delay)
	if err != nil {
		return fmt.Errorf("failed to schedule deposit expiry: %w", err)
	}
	s.logger.InfoCtx(
		ctx,
		"deposit expiry scheduled",
		zap.String("depositID", depositID),
		zap.Duration("delay", delay),
		zap.Bool("alreadyQueued", !added),
	)
	return nil
}
