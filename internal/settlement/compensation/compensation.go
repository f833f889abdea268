package compensation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
	"go-settlement/pkg/logging"
)

const refundNotes = "refund for failed order"

type TransactionManager interface {
	DoWithTransaction(ctx context.Context, f func(ctx context.Context) error) error
}

type Repository interface {
	RestoreStock(ctx context.Context, productID int64) error
	ReleaseOffer(ctx context.Context, offerID int64) (bool, error)
	TransitionRefund(ctx context.Context, id int64, from, to data.RefundStatus) (bool, error)
	FlagManualRefund(ctx context.Context, id int64) error
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
}

type Recorder interface {
	Compensation(action string, err error)
}

type Outcome struct {
	Refunded       int64
	StockRestored  bool
	OffersReleased int
	ManualRefund   bool
}

type Engine struct {
	transactionManager TransactionManager
	repository         Repository
	ledger             Ledger
	recorder           Recorder
	logger             *logging.ZapLogger
}

func New(
	transactionManager TransactionManager,
	repository Repository,
	ledger Ledger,
	recorder Recorder,
	logger *logging.ZapLogger,
) *Engine {
	return &Engine{
		transactionManager: transactionManager,
		repository:         repository,
		ledger:             ledger,
		recorder:           recorder,
		logger:             logger,
	}
}

// RestoreReservation puts the reserved unit back into stock and returns one
// unit of quota to every offer the order consumed.
func (e *Engine) RestoreReservation(ctx context.Context, order data.Order) (Outcome, error) {
	var outcome Outcome
	err := e.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		outcome = Outcome{}
		if err := e.repository.RestoreStock(ctx, order.Product.ProductID); err != nil {
			return fmt.Errorf("restoring stock of product %d failed: %w", order.Product.ProductID, err)
		}
		outcome.StockRestored = true
		for _, offer := range order.Offers {
			released, err := e.repository.ReleaseOffer(ctx, offer.OfferID)
			if err != nil {
				return fmt.Errorf("releasing offer %d failed: %w", offer.OfferID, err)
			}
			if !released {
				e.logger.WarnCtx(ctx, "offer usage already at zero", zap.Int64("offerID", offer.OfferID))
				continue
			}
			outcome.OffersReleased++
		}
		return nil
	})
	e.recorder.Compensation("restore_reservation", err)
	if err != nil {
		return Outcome{}, err //nolint:wrapcheck // unnecessary
	}
	return outcome, nil
}

// Compensate reverses an order whose fulfillment failed after payment. It runs
// after the failure transition committed, so errors are reported to the caller
// for logging and never undo that transition. Guest orders are flagged for a
// manual refund and keep their refund status.
func (e *Engine) Compensate(ctx context.Context, order data.Order) (Outcome, error) {
	ctx = logging.WithContextFields(ctx, zap.String("orderID", order.OrderID))

	outcome, restoreErr := e.RestoreReservation(ctx, order)
	if restoreErr != nil {
		e.logger.ErrorCtx(ctx, "failed to restore reservation", zap.Error(restoreErr))
	}

	if order.IsGuest() {
		err := e.repository.FlagManualRefund(ctx, order.ID)
		e.recorder.Compensation("flag_manual_refund", err)
		if err != nil {
			return outcome, errors.Join(restoreErr, fmt.Errorf("flagging manual refund failed: %w", err))
		}
		outcome.ManualRefund = true
		e.logger.WarnCtx(ctx, "guest order failed, manual refund required", zap.Int64("amount", order.RefundAmount()))
		return outcome, restoreErr
	}

	refunded, refundErr := e.refund(ctx, order)
	e.recorder.Compensation("refund", refundErr)
	if refundErr != nil {
		e.logger.ErrorCtx(ctx, "refund failed", zap.Error(refundErr))
		return outcome, errors.Join(restoreErr, refundErr)
	}
	outcome.Refunded = refunded
	return outcome, restoreErr
}

func (e *Engine) refund(ctx context.Context, order data.Order) (int64, error) {
	amount := order.RefundAmount()
	userID := *order.UserID
	var refunded int64
	err := e.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		refunded = 0
		changed, err := e.repository.TransitionRefund(ctx, order.ID, data.RefundNone, data.RefundCompleted)
		if err != nil {
			return fmt.Errorf("updating refund status failed: %w", err)
		}
		if !changed {
			e.logger.InfoCtx(ctx, "refund already settled")
			return nil
		}
		if amount <= 0 {
			return nil
		}
		if _, err := e.ledger.Credit(ctx, userID, amount, data.OrderRef, order.OrderID, refundNotes); err != nil {
			return fmt.Errorf("crediting refund failed: %w", err)
		}
		refunded = amount
		return nil
	})
	if err == nil {
		return refunded, nil
	}
	if _, markErr := e.repository.TransitionRefund(ctx, order.ID, data.RefundNone, data.RefundFailed); markErr != nil {
		return 0, errors.Join(err, fmt.Errorf("marking refund failed: %w", markErr))
	}
	return 0, err //nolint:wrapcheck // unnecessary
}
