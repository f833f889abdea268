package expiry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/delayqueue"
	"go-settlement/pkg/logging"
)

var ErrBadPayload = errors.New("bad expiry job payload")

type Expirer interface {
	ExpireDeposit(ctx context.Context, depositID string) (statemachine.Outcome, error)
}

type Handler struct {
	expirer Expirer
	logger  *logging.ZapLogger
}

func NewHandler(expirer Expirer, logger *logging.ZapLogger) *Handler {
	return &Handler{
		expirer: expirer,
		logger:  logger,
	}
}

// Handle returns nil when the deposit is gone or no longer pending; only
// errors worth retrying are returned.
func (h *Handler) Handle(ctx context.Context, job delayqueue.Job) error {
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	if p.DepositID == "" {
		return fmt.Errorf("%w: depositId is empty", ErrBadPayload)
	}
	ctx = logging.WithContextFields(ctx, zap.String("jobID", job.ID), zap.String("depositID", p.DepositID))

	_, err := h.expirer.ExpireDeposit(ctx, p.DepositID)
	switch {
	case err == nil:
		h.logger.InfoCtx(ctx, "deposit expired")
		return nil
	case errors.Is(err, statemachine.ErrNotFoundOrAlreadyProcessed):
		h.logger.InfoCtx(ctx, "deposit not pending, expiry skipped", zap.Error(err))
		return nil
	}
	return fmt.Errorf("expiring deposit failed: %w", err)
}
