// Package statemachine owns every status change of deposits and orders. The
// allowed moves are declared in transition tables; a move is applied with a
// conditional update that repeats the expected source status, so a replayed
// event finds no row and is reported as already processed.
package statemachine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/compensation"
	"go-settlement/internal/settlement/data"
	"go-settlement/pkg/logging"
)

var (
	ErrNotFoundOrAlreadyProcessed = errors.New("entity not found or already processed")
	ErrProviderMismatch           = errors.New("provider does not match entity")
	ErrPaymentWindowClosed        = errors.New("payment window closed")
	ErrNotOrderOwner              = errors.New("order belongs to another user")
	ErrNoTransition               = errors.New("no transition for event")
)

// Source tells who raised an event.
type Source string

const (
	SourceProvider  Source = "provider"
	SourceScheduler Source = "scheduler"
	SourceUser      Source = "user"
	SourceMonitor   Source = "monitor"
)

// BalanceProvider is the payment provider of orders paid from the user balance.
const BalanceProvider = "balance"

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type Repository interface {
	GetDeposit(ctx context.Context, depositID string) (data.Deposit, error)
	TransitionDeposit(
		ctx context.Context,
		id int64,
		from, to data.DepositStatus,
		providerRef *string,
		paidAt *time.Time,
	) (bool, error)
	GetOrder(ctx context.Context, orderID string) (data.Order, error)
	TransitionOrder(ctx context.Context, id int64, from, to data.OrderState, patch data.OrderPatch) (bool, error)
}

type Ledger interface {
	Credit(
		ctx context.Context,
		userID int64,
		amount int64,
		refType data.RefType,
		refID string,
		notes string,
	) (data.BalanceMutation, error)
	Debit(
		ctx context.Context,
		userID int64,
		amount int64,
		refType data.RefType,
		refID string,
		notes string,
	) (data.BalanceMutation, error)
}

type Compensator interface {
	RestoreReservation(ctx context.Context, order data.Order) (compensation.Outcome, error)
	Compensate(ctx context.Context, order data.Order) (compensation.Outcome, error)
}

type Recorder interface {
	Transition(entity data.EntityKind, transition string, outcome string)
}

// Outcome describes what a single event did.
type Outcome struct {
	Entity     data.EntityKind
	Ref        string
	Transition string
	Message    string
	Applied    bool
}

type Machine struct {
	transactionManager TransactionManager
	repository         Repository
	ledger             Ledger
	compensator        Compensator
	recorder           Recorder
	logger             *logging.ZapLogger
	now                func() time.Time
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

func New(
	transactionManager TransactionManager,
	repository Repository,
	ledger Ledger,
	compensator Compensator,
	recorder Recorder,
	logger *logging.ZapLogger,
	opts ...Option,
) *Machine {
	m := &Machine{
		transactionManager: transactionManager,
		repository:         repository,
		ledger:             ledger,
		compensator:        compensator,
		recorder:           recorder,
		logger:             logger,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

const (
	outcomeApplied  = "applied"
	outcomeSkipped  = "skipped"
	outcomeRejected = "rejected"
	outcomeFailed   = "error"
)

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return outcomeApplied
	case errors.Is(err, ErrNotFoundOrAlreadyProcessed):
		return outcomeSkipped
	case errors.Is(err, ErrProviderMismatch),
		errors.Is(err, ErrPaymentWindowClosed),
		errors.Is(err, ErrNotOrderOwner),
		errors.Is(err, data.ErrInsufficientBalance):
		return outcomeRejected
	}
	return outcomeFailed
}

func ptr[T any](v T) *T {
	return &v
}

// checkPaidAmount warns when a provider reports a total other than expected.
func (m *Machine) checkPaidAmount(ctx context.Context, expected int64, reported *int64) {
	if reported == nil || *reported == expected {
		return
	}
	m.logger.WarnCtx(
		ctx,
		"paid amount differs from expected",
		zap.Int64("expected", expected),
		zap.Int64("reported", *reported),
	)
}
