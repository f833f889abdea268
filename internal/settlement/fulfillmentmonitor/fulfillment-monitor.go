// Package fulfillmentmonitor polls the supplier for orders that were paid but
// never received a fulfillment callback, and feeds the answers through the
// same transitions a callback would take.
package fulfillmentmonitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-settlement/internal/common/supplierprotocol"
	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/providers/supplier"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/logging"
	"go-settlement/pkg/taskpool"
)

type OrdersRepository interface {
	GetOrdersAwaitingFulfillment(ctx context.Context, limit int, updatedBefore time.Time) ([]data.Order, error)
}

type SupplierClient interface {
	GetTransaction(ctx context.Context, refID string) (supplierprotocol.Transaction, error)
}

type OrderSettler interface {
	ApplyOrderEvent(ctx context.Context, ev statemachine.OrderEvent) (statemachine.Outcome, error)
}

type Config struct {
	Pool taskpool.Config
	// StaleAfter is how long an order may wait for a callback before it is polled.
	StaleAfter time.Duration
}

type FulfillmentMonitor struct {
	repository OrdersRepository
	supplier   SupplierClient
	settler    OrderSettler
	config     Config
	logger     *logging.ZapLogger
	pool       *taskpool.Pool[data.Order]
	now        func() time.Time
}

func New(
	config Config,
	repository OrdersRepository,
	supplierClient SupplierClient,
	settler OrderSettler,
	logger *logging.ZapLogger,
) *FulfillmentMonitor {
	fm := &FulfillmentMonitor{
		repository: repository,
		supplier:   supplierClient,
		settler:    settler,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
	fm.pool = taskpool.New[data.Order](
		"fulfillment-monitor",
		config.Pool,
		fm.fetch,
		func(o data.Order) string { return o.OrderID },
		fm.handleOrder,
		logger,
	)
	return fm
}

func (fm *FulfillmentMonitor) Run(ctx context.Context) {
	fm.pool.Run(ctx)
}

func (fm *FulfillmentMonitor) Stop() {
	fm.pool.Stop()
}

func (fm *FulfillmentMonitor) fetch(ctx context.Context, limit int) ([]data.Order, error) {
	orders, err := fm.repository.GetOrdersAwaitingFulfillment(ctx, limit, fm.now().Add(-fm.config.StaleAfter))
	if err != nil {
		return nil, fmt.Errorf("failed to get orders awaiting fulfillment: %w", err)
	}
	return orders, nil
}

func (fm *FulfillmentMonitor) handleOrder(ctx context.Context, order data.Order) error {
	ctx = logging.WithContextFields(ctx, zap.String("orderID", order.OrderID))
	if !strings.EqualFold(order.Product.Supplier, supplier.Name) {
		fm.logger.DebugCtx(ctx, "order fulfilled by another supplier", zap.String("supplier", order.Product.Supplier))
		return nil
	}

	tx, err := fm.supplier.GetTransaction(ctx, order.OrderID)
	if err != nil {
		if errors.Is(err, supplier.ErrTransactionNotFound) {
			fm.logger.WarnCtx(ctx, "supplier has no transaction for paid order")
			return nil
		}
		return fmt.Errorf("failed to get supplier transaction: %w", err)
	}
	cb, err := supplier.ToCallback(tx)
	if err != nil {
		return fmt.Errorf("failed to map supplier transaction: %w", err)
	}
	if cb.MerchantRef != order.OrderID {
		return fmt.Errorf("supplier answered for %q instead of %q", cb.MerchantRef, order.OrderID)
	}

	kind, ok := reconciler.FulfillmentEvent(cb.Outcome)
	if !ok {
		return fmt.Errorf("supplier outcome %q drives no order event", cb.Outcome)
	}
	_, err = fm.settler.ApplyOrderEvent(ctx, statemachine.OrderEvent{
		Kind:         kind,
		OrderID:      order.OrderID,
		Provider:     supplier.Name,
		SerialNumber: cb.SerialNumber,
		Message:      cb.Message,
		Cost:         cb.Cost,
		Source:       statemachine.SourceMonitor,
	})
	if err != nil && !errors.Is(err, statemachine.ErrNotFoundOrAlreadyProcessed) {
		return fmt.Errorf("failed to apply supplier status: %w", err)
	}
	return nil
}
