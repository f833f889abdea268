package fulfillmentmonitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/common/supplierprotocol"
	"go-settlement/internal/settlement/compensation"
	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/ledger"
	"go-settlement/internal/settlement/providers/supplier"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/internal/settlement/settlementtest"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/logging"
	"go-settlement/pkg/taskpool"
)

type nopRecorder struct{}

func (nopRecorder) Transition(data.EntityKind, string, string) {}
func (nopRecorder) Compensation(string, error)                 {}

type fakeSupplier map[string]supplierprotocol.Transaction

func (f fakeSupplier) GetTransaction(_ context.Context, refID string) (supplierprotocol.Transaction, error) {
	tx, ok := f[refID]
	if !ok {
		return supplierprotocol.Transaction{}, supplier.ErrTransactionNotFound
	}
	return tx, nil
}

func newMonitor(t *testing.T, client SupplierClient) (*FulfillmentMonitor, *settlementtest.Store) {
	t.Helper()
	store := settlementtest.NewStore()
	logger := logging.NewNopLogger()
	l := ledger.New(store, store, logger)
	engine := compensation.New(store, store, l, nopRecorder{}, logger)
	machine := statemachine.New(store, store, l, engine, nopRecorder{}, logger)
	fm := New(
		Config{Pool: taskpool.Config{TickPeriod: 5 * time.Millisecond, WorkersCount: 2}, StaleAfter: -time.Hour},
		store,
		client,
		machine,
		logger,
	)
	return fm, store
}

func paidOrder(id string, userID *int64) data.Order {
	return data.Order{
		OrderID:       id,
		UserID:        userID,
		PaymentStatus: data.PaymentSuccess,
		OrderStatus:   data.OrderPending,
		RefundStatus:  data.RefundNone,
		TotalPrice:    20000,
		Product:       data.ProductSnapshot{ProductID: 1, Supplier: supplier.Name, CostPrice: 18000},
		Payment:       data.PaymentSnapshot{Provider: "paygate", Fee: 500},
	}
}

func TestMonitorSettlesStuckOrders(t *testing.T) {
	fm, store := newMonitor(t, fakeSupplier{
		"ORD-1": {RefID: "ORD-1", Status: supplierprotocol.Success, SerialNumber: "SN-1", Price: decimal.NewFromInt(17500)},
		"ORD-2": {RefID: "ORD-2", Status: supplierprotocol.Failed},
		"ORD-3": {RefID: "ORD-3", Status: supplierprotocol.Pending},
	})
	userID := int64(1)
	store.AddUser(userID, 0)
	store.AddOrder(paidOrder("ORD-1", &userID), 0, 0)
	store.AddOrder(paidOrder("ORD-2", &userID), 0, 0)
	store.AddOrder(paidOrder("ORD-3", &userID), 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fm.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return store.Order("ORD-1").OrderStatus == data.OrderCompleted &&
			store.Order("ORD-2").RefundStatus == data.RefundCompleted
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	first := store.Order("ORD-1")
	assert.Equal(t, "SN-1", first.SerialNumber)
	assert.Equal(t, int64(2000), first.Profit)
	assert.Equal(t, data.OrderFailed, store.Order("ORD-2").OrderStatus)
	assert.Equal(t, int64(19500), store.User(userID).Balance)
	assert.Equal(t, data.OrderPending, store.Order("ORD-3").OrderStatus)
}

func TestHandleOrderSkipsOtherSuppliers(t *testing.T) {
	fm, _ := newMonitor(t, fakeSupplier{})
	order := paidOrder("ORD-1", nil)
	order.Product.Supplier = "another"

	require.NoError(t, fm.handleOrder(context.Background(), order))
}

type brokenSupplier struct{}

func (brokenSupplier) GetTransaction(context.Context, string) (supplierprotocol.Transaction, error) {
	return supplierprotocol.Transaction{}, errors.New("connection refused")
}

func TestHandleOrderReportsSupplierErrors(t *testing.T) {
	fm, _ := newMonitor(t, brokenSupplier{})

	require.Error(t, fm.handleOrder(context.Background(), paidOrder("ORD-1", nil)))
}

func TestHandleOrderUnknownAtSupplier(t *testing.T) {
	fm, store := newMonitor(t, fakeSupplier{})
	store.AddOrder(paidOrder("ORD-9", nil), 0, 0)

	require.NoError(t, fm.handleOrder(context.Background(), store.Order("ORD-9")))
	assert.Equal(t, data.OrderPending, store.Order("ORD-9").OrderStatus)
}

func TestHandleOrderMatchesCallbackMapping(t *testing.T) {
	statuses := []supplierprotocol.Status{supplierprotocol.Success, supplierprotocol.Failed, supplierprotocol.Pending}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			tx := supplierprotocol.Transaction{RefID: "ORD-1", Status: status, SerialNumber: "SN-1"}
			cb, err := supplier.ToCallback(tx)
			require.NoError(t, err)
			kind, ok := reconciler.FulfillmentEvent(cb.Outcome)
			require.True(t, ok)

			fm, store := newMonitor(t, fakeSupplier{"ORD-1": tx})
			store.AddOrder(paidOrder("ORD-1", nil), 0, 0)
			require.NoError(t, fm.handleOrder(context.Background(), store.Order("ORD-1")))

			want := map[statemachine.OrderEventKind]data.OrderStatus{
				statemachine.FulfillmentSucceeded: data.OrderCompleted,
				statemachine.FulfillmentFailed:    data.OrderFailed,
				statemachine.FulfillmentPending:   data.OrderPending,
			}[kind]
			assert.Equal(t, want, store.Order("ORD-1").OrderStatus)
		})
	}
}
