package service

import (
	"context"
	"time"

	"go-settlement/internal/settlement/data"
)

type DepositRepository interface {
	InsertDeposit(ctx context.Context, deposit *data.Deposit) error
}

type ExpiryScheduler interface {
	ScheduleDepositExpiry(ctx context.Context, depositID string, expiredAt time.Time) error
}
