// Package ledger is the only code allowed to change a user balance. Every
// change appends one immutable balance mutation and moves the projection on
// the user row inside the same transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
	"go-settlement/pkg/logging"
)

var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrInvalidRefType = errors.New("invalid reference type")
)

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type Repository interface {
	LockUserBalance(ctx context.Context, userID int64) (int64, error)
	GetUserBalance(ctx context.Context, userID int64) (int64, error)
	SetUserBalance(ctx context.Context, userID int64, balance int64) error
	InsertMutation(ctx context.Context, mutation *data.BalanceMutation) error
	GetMutations(ctx context.Context, userID int64, filter data.MutationFilter) ([]data.BalanceMutation, error)
	GetMutationsAscending(ctx context.Context, userID int64) ([]data.BalanceMutation, error)
}

type Ledger struct {
	transactionManager TransactionManager
	repository         Repository
	logger             *logging.ZapLogger
}

func New(transactionManager TransactionManager, repository Repository, logger *logging.ZapLogger) *Ledger {
	return &Ledger{
		transactionManager: transactionManager,
		repository:         repository,
		logger:             logger,
	}
}

func (l *Ledger) Credit(
	ctx context.Context,
	userID int64,
	amount int64,
	refType data.RefType,
	refID string,
	notes string,
) (data.BalanceMutation, error) {
	return l.apply(ctx, userID, amount, data.CreditMutation, refType, refID, notes)
}

// Debit fails with data.ErrInsufficientBalance, writing nothing, when amount exceeds the balance.
func (l *Ledger) Debit(
	ctx context.Context,
	userID int64,
	amount int64,
	refType data.RefType,
	refID string,
	notes string,
) (data.BalanceMutation, error) {
	return l.apply(ctx, userID, amount, data.DebitMutation, refType, refID, notes)
}

func (l *Ledger) apply(
	ctx context.Context,
	userID int64,
	amount int64,
	mutationType data.MutationType,
	refType data.RefType,
	refID string,
	notes string,
) (data.BalanceMutation, error) {
	if amount <= 0 {
		return data.BalanceMutation{}, ErrInvalidAmount
	}
	if !refType.Valid() {
		return data.BalanceMutation{}, fmt.Errorf("%w: %q", ErrInvalidRefType, refType)
	}

	signed := amount
	if mutationType == data.DebitMutation {
		signed = -amount
	}

	var mutation data.BalanceMutation
	err := l.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		before, err := l.repository.LockUserBalance(ctx, userID)
		if err != nil {
			return fmt.Errorf("locking user balance failed: %w", err)
		}
		if mutationType == data.DebitMutation && amount > before {
			return data.ErrInsufficientBalance
		}
		mutation = data.BalanceMutation{
			UserID:        userID,
			Amount:        signed,
			Type:          mutationType,
			RefType:       refType,
			RefID:         refID,
			BalanceBefore: before,
			BalanceAfter:  before + signed,
			Notes:         notes,
		}
		if err := l.repository.InsertMutation(ctx, &mutation); err != nil {
			return err
		}
		if err := l.repository.SetUserBalance(ctx, userID, mutation.BalanceAfter); err != nil {
			return fmt.Errorf("setting user balance failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return data.BalanceMutation{}, err //nolint:wrapcheck // unnecessary
	}

	l.logger.InfoCtx(
		ctx,
		"balance mutated",
		zap.Int64("userID", userID),
		zap.String("type", string(mutationType)),
		zap.Int64("amount", signed),
		zap.Int64("balanceBefore", mutation.BalanceBefore),
		zap.Int64("balanceAfter", mutation.BalanceAfter),
		zap.String("refType", string(refType)),
		zap.String("refID", refID),
	)
	return mutation, nil
}

func (l *Ledger) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, err := l.repository.GetUserBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("getting user balance failed: %w", err)
	}
	return balance, nil
}

func (l *Ledger) Mutations(
	ctx context.Context,
	userID int64,
	filter data.MutationFilter,
) ([]data.BalanceMutation, error) {
	if _, err := l.repository.GetUserBalance(ctx, userID); err != nil {
		return nil, fmt.Errorf("getting user failed: %w", err)
	}
	mutations, err := l.repository.GetMutations(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("getting balance mutations failed: %w", err)
	}
	return mutations, nil
}
