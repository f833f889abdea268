package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/settlementtest"
	"go-settlement/pkg/logging"
)

type scheduled struct {
	depositID string
	expiredAt time.Time
}

type fakeScheduler struct {
	calls []scheduled
	err   error
}

func (s *fakeScheduler) ScheduleDepositExpiry(_ context.Context, depositID string, expiredAt time.Time) error {
	s.calls = append(s.calls, scheduled{depositID: depositID, expiredAt: expiredAt})
	return s.err
}

func newTestDeposits(scheduler *fakeScheduler) (*Deposits, *settlementtest.Store, time.Time) {
	store := settlementtest.NewStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeposits(
		DepositsConfig{TTL: 60 * time.Second, Providers: []string{"paygate", "qrpay"}},
		store,
		scheduler,
		logging.NewNopLogger(),
	)
	d.now = func() time.Time { return now }
	return d, store, now
}

func TestCreateDepositSchedulesExpiry(t *testing.T) {
	scheduler := &fakeScheduler{}
	d, store, now := newTestDeposits(scheduler)
	store.AddUser(1, 0)

	deposit, err := d.Create(context.Background(), 1, CreateDeposit{Provider: "PayGate", AmountPay: 50000, AmountFee: 1500})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(deposit.DepositID, data.DepositRefPrefix))
	assert.Equal(t, data.DepositPending, deposit.Status)
	assert.Equal(t, int64(48500), deposit.AmountReceived)
	assert.Equal(t, "paygate", deposit.Provider)
	assert.Equal(t, now.Add(time.Minute), deposit.ExpiredAt)
	assert.Equal(t, []scheduled{{depositID: deposit.DepositID, expiredAt: now.Add(time.Minute)}}, scheduler.calls)
	assert.Equal(t, deposit.DepositID, store.Deposit(deposit.DepositID).DepositID)
}

func TestCreateDepositValidation(t *testing.T) {
	d, store, _ := newTestDeposits(&fakeScheduler{})
	store.AddUser(1, 0)

	tests := []struct {
		name    string
		req     CreateDeposit
		wantErr error
	}{
		{name: "zero amount", req: CreateDeposit{Provider: "paygate"}, wantErr: ErrInvalidAmount},
		{name: "fee eats amount", req: CreateDeposit{Provider: "paygate", AmountPay: 100, AmountFee: 100}, wantErr: ErrInvalidAmount},
		{name: "negative fee", req: CreateDeposit{Provider: "paygate", AmountPay: 100, AmountFee: -1}, wantErr: ErrInvalidAmount},
		{name: "unknown provider", req: CreateDeposit{Provider: "cash", AmountPay: 100}, wantErr: ErrUnknownProvider},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := d.Create(context.Background(), 1, test.req)
			require.ErrorIs(t, err, test.wantErr)
		})
	}
}

func TestCreateDepositSchedulingFailureKeepsPendingDeposit(t *testing.T) {
	scheduler := &fakeScheduler{err: errors.New("redis unavailable")}
	d, store, _ := newTestDeposits(scheduler)
	store.AddUser(1, 0)

	deposit, err := d.Create(context.Background(), 1, CreateDeposit{Provider: "qrpay", AmountPay: 1000})

	require.Error(t, err)
	assert.Equal(t, data.DepositPending, store.Deposit(deposit.DepositID).Status)
}

func TestCreateDepositUnknownUser(t *testing.T) {
	d, store, _ := newTestDeposits(&fakeScheduler{})
	store.FailOn("InsertDeposit", data.ErrForeignKeyViolation)

	_, err := d.Create(context.Background(), 42, CreateDeposit{Provider: "qrpay", AmountPay: 1000})

	require.ErrorIs(t, err, data.ErrUserNotFound)
}
