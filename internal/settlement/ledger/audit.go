package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
)

type AuditReport struct {
	UserID         int64
	Balance        int64
	Replayed       int64
	MutationsCount int
	// BrokenChainAt is the id of the first mutation whose balance_before does
	// not match the previous balance_after, or 0.
	BrokenChainAt int64
	Consistent    bool
}

// Audit replays the mutation log in insertion order and compares the result
// with the projected balance.
func (l *Ledger) Audit(ctx context.Context, userID int64) (AuditReport, error) {
	report := AuditReport{UserID: userID}
	err := l.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		balance, err := l.repository.LockUserBalance(ctx, userID)
		if err != nil {
			return fmt.Errorf("locking user balance failed: %w", err)
		}
		mutations, err := l.repository.GetMutationsAscending(ctx, userID)
		if err != nil {
			return fmt.Errorf("getting balance mutations failed: %w", err)
		}
		report.Balance = balance
		report.MutationsCount = len(mutations)
		report.Replayed, report.BrokenChainAt = Replay(mutations)
		return nil
	})
	if err != nil {
		return AuditReport{}, err //nolint:wrapcheck // unnecessary
	}
	if report.MutationsCount == 0 {
		report.Replayed = report.Balance
	}
	report.Consistent = report.BrokenChainAt == 0 && report.Replayed == report.Balance
	if !report.Consistent {
		l.logger.ErrorCtx(
			ctx,
			"ledger and balance diverged",
			zap.Int64("userID", userID),
			zap.Int64("balance", report.Balance),
			zap.Int64("replayed", report.Replayed),
			zap.Int64("brokenChainAt", report.BrokenChainAt),
		)
	}
	return report, nil
}

// Replay folds mutations in insertion order starting from the oldest
// balance_before. It also returns the id of the first row breaking the
// before/after chain, or 0.
func Replay(mutations []data.BalanceMutation) (balance int64, brokenAt int64) {
	if len(mutations) == 0 {
		return 0, 0
	}
	balance = mutations[0].BalanceBefore
	for _, m := range mutations {
		if brokenAt == 0 && (m.BalanceBefore != balance || m.BalanceAfter != m.BalanceBefore+m.Amount) {
			brokenAt = m.ID
		}
		balance += m.Amount
	}
	return balance, brokenAt
}
