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

type OrderEventKind string

const (
	PaymentSucceeded       OrderEventKind = "payment_succeeded"
	BalancePaymentCaptured OrderEventKind = "balance_payment_captured"
	PaymentFailed          OrderEventKind = "payment_failed"
	PaymentExpired         OrderEventKind = "payment_expired"
	PaymentCancelled       OrderEventKind = "payment_cancelled"
	PaymentPending         OrderEventKind = "payment_pending"
	FulfillmentSucceeded   OrderEventKind = "fulfillment_succeeded"
	FulfillmentFailed      OrderEventKind = "fulfillment_failed"
	FulfillmentPending     OrderEventKind = "fulfillment_pending"
)

type OrderEvent struct {
	Kind         OrderEventKind
	OrderID      string
	Provider     string
	ProviderRef  string
	SerialNumber string
	Message      string
	Source       Source
	// Cost is the supplier price reported with a fulfillment, if any.
	Cost *int64
	// Amount is the paid total reported by the provider, if any.
	Amount *int64
	// UserID is the paying user of a balance payment.
	UserID int64
}

// identity guards run before the state check so a foreign sender is rejected
// even for a settled order; guards run after it.
type orderTransition struct {
	name        string
	from        data.OrderState
	to          data.OrderState
	identity    []guard
	guards      []guard
	patch       func(o data.Order, ev OrderEvent, now time.Time) data.OrderPatch
	inTx        func(ctx context.Context, m *Machine, o data.Order) error
	afterCommit func(ctx context.Context, m *Machine, o data.Order) error
}

var (
	awaitingPayment     = data.OrderState{Payment: data.PaymentPending, Order: data.OrderNone}
	awaitingFulfillment = data.OrderState{Payment: data.PaymentSuccess, Order: data.OrderPending}
)

var orderTransitions = map[OrderEventKind]orderTransition{
	PaymentSucceeded: {
		name:     "pay",
		from:     awaitingPayment,
		to:       awaitingFulfillment,
		identity: guards(paymentProviderGuard),
		guards:   guards(paymentWindowGuard),
		patch:    paidPatch,
	},
	BalancePaymentCaptured: {
		name:     "pay_from_balance",
		from:     awaitingPayment,
		to:       awaitingFulfillment,
		identity: guards(orderOwnerGuard, paymentProviderGuard),
		guards:   guards(paymentWindowGuard),
		patch:    paidPatch,
		inTx:     debitOrder,
	},
	PaymentFailed: {
		name:     "fail_payment",
		from:     awaitingPayment,
		to:       data.OrderState{Payment: data.PaymentFailed, Order: data.OrderNone},
		identity: guards(paymentProviderGuard),
		inTx:     restoreReservation,
	},
	PaymentExpired: {
		name:     "expire_payment",
		from:     awaitingPayment,
		to:       data.OrderState{Payment: data.PaymentExpired, Order: data.OrderNone},
		identity: guards(paymentProviderGuard),
		inTx:     restoreReservation,
	},
	PaymentCancelled: {
		name:     "cancel_payment",
		from:     awaitingPayment,
		to:       data.OrderState{Payment: data.PaymentCancelled, Order: data.OrderNone},
		identity: guards(paymentProviderGuard),
		inTx:     restoreReservation,
	},
	FulfillmentSucceeded: {
		name:     "fulfill",
		from:     awaitingFulfillment,
		to:       data.OrderState{Payment: data.PaymentSuccess, Order: data.OrderCompleted},
		identity: guards(supplierGuard),
		patch:    fulfilledPatch,
	},
	FulfillmentFailed: {
		name:        "fail_fulfillment",
		from:        awaitingFulfillment,
		to:          data.OrderState{Payment: data.PaymentSuccess, Order: data.OrderFailed},
		identity:    guards(supplierGuard),
		afterCommit: compensate,
	},
}

// Pending callbacks carry no state change.
var informationalEvents = map[OrderEventKind]bool{
	PaymentPending:     true,
	FulfillmentPending: true,
}

type guard func(m *Machine, o data.Order, ev OrderEvent) error

func guards(g ...guard) []guard {
	return g
}

func paymentProviderGuard(_ *Machine, o data.Order, ev OrderEvent) error {
	if !strings.EqualFold(o.Payment.Provider, ev.Provider) {
		return fmt.Errorf("%w: order %s is paid through %s", ErrProviderMismatch, o.OrderID, o.Payment.Provider)
	}
	return nil
}

func paymentWindowGuard(m *Machine, o data.Order, _ OrderEvent) error {
	if !m.now().Before(o.Payment.ExpiredAt) {
		return fmt.Errorf("%w: expired at %s", ErrPaymentWindowClosed, o.Payment.ExpiredAt.Format(time.RFC3339))
	}
	return nil
}

func orderOwnerGuard(_ *Machine, o data.Order, ev OrderEvent) error {
	if o.IsGuest() || *o.UserID != ev.UserID {
		return ErrNotOrderOwner
	}
	return nil
}

func supplierGuard(_ *Machine, o data.Order, ev OrderEvent) error {
	if !strings.EqualFold(o.Product.Supplier, ev.Provider) {
		return fmt.Errorf("%w: order %s is fulfilled by %s", ErrProviderMismatch, o.OrderID, o.Product.Supplier)
	}
	return nil
}

func paidPatch(_ data.Order, ev OrderEvent, now time.Time) data.OrderPatch {
	patch := data.OrderPatch{PaidAt: ptr(now)}
	if ev.ProviderRef != "" {
		patch.ProviderRef = ptr(ev.ProviderRef)
	}
	return patch
}

func fulfilledPatch(o data.Order, ev OrderEvent, _ time.Time) data.OrderPatch {
	cost := o.Product.CostPrice
	if ev.Cost != nil {
		cost = *ev.Cost
	}
	patch := data.OrderPatch{
		SerialNumber: ptr(ev.SerialNumber),
		CostPrice:    ptr(cost),
		Profit:       ptr(o.TotalPrice - o.Payment.Fee - cost),
	}
	if ev.ProviderRef != "" {
		patch.ProviderRef = ptr(ev.ProviderRef)
	}
	return patch
}

func debitOrder(ctx context.Context, m *Machine, o data.Order) error {
	_, err := m.ledger.Debit(ctx, *o.UserID, o.TotalPrice, data.OrderRef, o.OrderID, "payment for order "+o.OrderID)
	if err != nil {
		return fmt.Errorf("debiting order total failed: %w", err)
	}
	return nil
}

func restoreReservation(ctx context.Context, m *Machine, o data.Order) error {
	if _, err := m.compensator.RestoreReservation(ctx, o); err != nil {
		return fmt.Errorf("restoring reservation failed: %w", err)
	}
	return nil
}

func compensate(ctx context.Context, m *Machine, o data.Order) error {
	_, err := m.compensator.Compensate(ctx, o)
	return err //nolint:wrapcheck // logged by caller
}

// PayWithBalance settles a pending order from the balance of its owner.
func (m *Machine) PayWithBalance(ctx context.Context, userID int64, orderID string) (Outcome, error) {
	return m.ApplyOrderEvent(ctx, OrderEvent{
		Kind:     BalancePaymentCaptured,
		OrderID:  orderID,
		Provider: BalanceProvider,
		Source:   SourceUser,
		UserID:   userID,
	})
}

func (m *Machine) ApplyOrderEvent(ctx context.Context, ev OrderEvent) (Outcome, error) {
	ctx = logging.WithContextFields(
		ctx,
		zap.String("orderID", ev.OrderID),
		zap.String("event", string(ev.Kind)),
		zap.String("source", string(ev.Source)),
	)
	outcome := Outcome{Entity: data.OrderEntity, Ref: ev.OrderID}

	if informationalEvents[ev.Kind] {
		m.logger.InfoCtx(ctx, "order still pending at provider", zap.String("message", ev.Message))
		outcome.Message = "pending"
		return outcome, nil
	}
	transition, ok := orderTransitions[ev.Kind]
	if !ok {
		return outcome, fmt.Errorf("%w: order event %q", ErrNoTransition, ev.Kind)
	}
	outcome.Transition = transition.name

	var updated data.Order
	err := m.transactionManager.DoWithTransaction(ctx, func(ctx context.Context) error {
		order, err := m.repository.GetOrder(ctx, ev.OrderID)
		if err != nil {
			if errors.Is(err, data.ErrOrderNotFound) {
				return fmt.Errorf("%w: %w", ErrNotFoundOrAlreadyProcessed, err)
			}
			return fmt.Errorf("loading order failed: %w", err)
		}
		for _, check := range transition.identity {
			if err := check(m, order, ev); err != nil {
				return err
			}
		}
		if order.State() != transition.from {
			return fmt.Errorf(
				"%w: order is %s/%s",
				ErrNotFoundOrAlreadyProcessed,
				order.PaymentStatus,
				order.OrderStatus,
			)
		}
		for _, check := range transition.guards {
			if err := check(m, order, ev); err != nil {
				return err
			}
		}
		m.checkPaidAmount(ctx, order.TotalPrice, ev.Amount)

		var patch data.OrderPatch
		if transition.patch != nil {
			patch = transition.patch(order, ev, m.now())
		}
		changed, err := m.repository.TransitionOrder(ctx, order.ID, transition.from, transition.to, patch)
		if err != nil {
			return fmt.Errorf("updating order status failed: %w", err)
		}
		if !changed {
			return ErrNotFoundOrAlreadyProcessed
		}
		updated = applyPatch(order, transition.to, patch)
		if transition.inTx != nil {
			return transition.inTx(ctx, m, updated)
		}
		return nil
	})

	m.recorder.Transition(data.OrderEntity, transition.name, outcomeLabel(err))
	if err != nil {
		m.logger.InfoCtx(ctx, "order transition not applied", zap.String("transition", transition.name), zap.Error(err))
		return outcome, err
	}
	outcome.Applied = true
	outcome.Message = fmt.Sprintf("order %s/%s", transition.to.Payment, transition.to.Order)
	m.logger.InfoCtx(ctx, "order transition applied", zap.String("transition", transition.name))

	if transition.afterCommit != nil {
		if err := transition.afterCommit(context.WithoutCancel(ctx), m, updated); err != nil {
			m.logger.ErrorCtx(ctx, "post-commit effect failed", zap.String("transition", transition.name), zap.Error(err))
		}
	}
	return outcome, nil
}

func applyPatch(o data.Order, to data.OrderState, patch data.OrderPatch) data.Order {
	o.PaymentStatus = to.Payment
	o.OrderStatus = to.Order
	if patch.SerialNumber != nil {
		o.SerialNumber = *patch.SerialNumber
	}
	if patch.ProviderRef != nil {
		o.ProviderRef = *patch.ProviderRef
	}
	if patch.CostPrice != nil {
		o.CostPrice = *patch.CostPrice
	}
	if patch.Profit != nil {
		o.Profit = *patch.Profit
	}
	return o
}
