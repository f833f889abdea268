package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
	"go-settlement/pkg/logging"
)

type DepositsConfig struct {
	TTL       time.Duration
	Providers []string
}

type CreateDeposit struct {
	Provider  string
	AmountPay int64
	AmountFee int64
}

type Deposits struct {
	repository DepositRepository
	scheduler  ExpiryScheduler
	config     DepositsConfig
	logger     *logging.ZapLogger
	now        func() time.Time
	newID      func() string
}

func NewDeposits(
	config DepositsConfig,
	repository DepositRepository,
	scheduler ExpiryScheduler,
	logger *logging.ZapLogger,
) *Deposits {
	return &Deposits{
		repository: repository,
		scheduler:  scheduler,
		config:     config,
		logger:     logger,
		now:        time.Now,
		newID: func() string {
			return data.DepositRefPrefix + strings.ToUpper(uuid.NewString())
		},
	}
}

// Create stores a pending deposit and schedules its expiry. When scheduling
// fails the stored deposit is returned together with the error.
func (d *Deposits) Create(ctx context.Context, userID int64, req CreateDeposit) (data.Deposit, error) {
	if req.AmountPay <= 0 || req.AmountFee < 0 || req.AmountFee >= req.AmountPay {
		return data.Deposit{}, ErrInvalidAmount
	}
	provider := strings.ToLower(req.Provider)
	if !slices.Contains(d.config.Providers, provider) {
		return data.Deposit{}, fmt.Errorf("%w: %q", ErrUnknownProvider, req.Provider)
	}

	deposit := data.Deposit{
		DepositID:      d.newID(),
		UserID:         userID,
		Provider:       provider,
		AmountPay:      req.AmountPay,
		AmountFee:      req.AmountFee,
		AmountReceived: req.AmountPay - req.AmountFee,
		ExpiredAt:      d.now().Add(d.config.TTL),
	}
	if err := d.repository.InsertDeposit(ctx, &deposit); err != nil {
		if errors.Is(err, data.ErrForeignKeyViolation) {
			return data.Deposit{}, data.ErrUserNotFound
		}
		return data.Deposit{}, fmt.Errorf("failed to insert deposit: %w", err)
	}

	ctx = logging.WithContextFields(ctx, zap.String("depositID", deposit.DepositID))
	d.logger.InfoCtx(ctx, "deposit created", zap.Int64("userID", userID), zap.Int64("amountPay", deposit.AmountPay))

	if err := d.scheduler.ScheduleDepositExpiry(ctx, deposit.DepositID, deposit.ExpiredAt); err != nil {
		d.logger.ErrorCtx(ctx, "failed to schedule deposit expiry", zap.Error(err))
		return deposit, fmt.Errorf("deposit %s created but expiry not scheduled: %w", deposit.DepositID, err)
	}
	return deposit, nil
}
