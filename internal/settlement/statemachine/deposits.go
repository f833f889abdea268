package statemachine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
	"go-settlement/pkg/logging"
)

// DepositEvent asks to move a pending deposit to Target.
type DepositEvent struct {
	DepositID   string
	Provider    string
	ProviderRef string
	Target      data.DepositStatus
	Source      Source
	// Amount is the paid total reported by the provider, if any.
	Amount *int64
}

type depositTransition struct {
	name  string
	to    data.DepositStatus
	guard func(d data.Deposit, ev DepositEvent) error
	inTx  func(ctx context.Context, m *Machine, d data.Deposit) error
}

// Every deposit transition starts from pending.
var depositTransitions = map[data.DepositStatus]depositTransition{
	data.DepositCompleted: {
		name:  "complete",
		to:    data.DepositCompleted,
		guard: depositProviderGuard,
		inTx:  creditDeposit,
	},
	data.DepositFailed: {
		name:  "fail",
		to:    data.DepositFailed,
		guard: depositProviderGuard,
	},
	data.DepositCancelled: {
		name:  "cancel",
		to:    data.DepositCancelled,
		guard: depositProviderGuard,
	},
	data.DepositExpired: {
		name:  "expire",
		to:    data.DepositExpired,
		guard: depositProviderGuard,
	},
}

func depositProviderGuard(d data.Deposit, ev DepositEvent) error {
	if ev.Source == SourceScheduler {
		return nil
	}
	if !strings.EqualFold(d.Provider, ev.Provider) {
		return fmt.Errorf("%w: deposit %s is paid through %s", ErrProviderMismatch, d.DepositID, d.Provider)
	}
	return nil
}

func creditDeposit(ctx context.Context, m *Machine, d data.Deposit) error {
	_, err := m.ledger.Credit(ctx, d.UserID, d.AmountReceived, data.DepositRef, d.DepositID, "deposit "+d.DepositID)
	if err != nil {
		return fmt.Errorf("crediting deposit failed: %w", err)
	}
	return nil
}

// ExpireDeposit is the scheduler entry point.
func (m *Machine) ExpireDeposit(ctx context.Context, depositID string) (Outcome, error) {
	return m.ApplyDepositEvent(ctx, DepositEvent{
		DepositID: depositID,
		Target:    data.DepositExpired,
		Source:    SourceScheduler,
	})
}

func (m *Machine) ApplyDepositEvent(ctx context.Context, ev DepositEvent) (Outcome, error) {
	ctx = logging.WithContextFields(
		ctx,
		zap.String("depositID", ev.DepositID),
		zap.String("source", string(ev.Source)),
	)
	outcome := Outcome{Entity: data.DepositEntity, Ref: ev.DepositID}

	transition, ok := depositTransitions[ev.Target]
	if !ok {
		return outcome, fmt.Errorf("%w: deposit to %q", ErrNoTransition, ev.Target)
	}
	outcome.Transition = transition.name

	err := m.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		deposit, err := m.repository.GetDeposit(ctx, ev.DepositID)
		if err != nil {
			if errors.Is(err, data.ErrDepositNotFound) {
				return fmt.Errorf("%w: %w", ErrNotFoundOrAlreadyProcessed, err)
			}
			return fmt.Errorf("loading deposit failed: %w", err)
		}
		if err := transition.guard(deposit, ev); err != nil {
			return err
		}
		if deposit.Status != data.DepositPending {
			return fmt.Errorf("%w: deposit is %s", ErrNotFoundOrAlreadyProcessed, deposit.Status)
		}
		if transition.to == data.DepositCompleted {
			m.checkPaidAmount(ctx, deposit.AmountPay, ev.Amount)
		}

		var providerRef *string
		if ev.ProviderRef != "" {
			providerRef = ptr(ev.ProviderRef)
		}
		var paidAt *time.Time
		if transition.to == data.DepositCompleted {
			paidAt = ptr(m.now())
		}
		changed, err := m.repository.TransitionDeposit(
			ctx,
			deposit.ID,
			data.DepositPending,
			transition.to,
			providerRef,
			paidAt,
		)
		if err != nil {
			return fmt.Errorf("updating deposit status failed: %w", err)
		}
		if !changed {
			return ErrNotFoundOrAlreadyProcessed
		}
		if transition.inTx != nil {
			return transition.inTx(ctx, m, deposit)
		}
		return nil
	})

	m.recorder.Transition(data.DepositEntity, transition.name, outcomeLabel(err))
	if err != nil {
		m.logger.InfoCtx(ctx, "deposit transition not applied", zap.String("transition", transition.name), zap.Error(err))
		return outcome, err
	}
	outcome.Applied = true
	outcome.Message = "deposit " + string(transition.to)
	m.logger.InfoCtx(ctx, "deposit transition applied", zap.String("transition", transition.name))
	return outcome, nil
}
