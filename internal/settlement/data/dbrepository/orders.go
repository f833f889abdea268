package dbrepository

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
)

//go:embed sql/select_order.sql
var selectOrderQuery string

// GetOrder loads the order with both snapshots and its offers in one read.
func (db *DBRepository) GetOrder(ctx context.Context, orderID string) (data.Order, error) {
	row, err := db.storage.QueryRow(ctx, selectOrderQuery, orderID)
	if err != nil {
		return data.Order{}, handleSQLError(err)
	}
	order, err := scanOrder(row)
	if err != nil {
		return data.Order{}, notFound(err, data.ErrOrderNotFound)
	}
	return order, nil
}

//go:embed sql/select_orders_awaiting_fulfillment.sql
var selectOrdersAwaitingFulfillmentQuery string

func (db *DBRepository) GetOrdersAwaitingFulfillment(
	ctx context.Context,
	limit int,
	updatedBefore time.Time,
) ([]data.Order, error) {
	rows, err := db.storage.Query(ctx, selectOrdersAwaitingFulfillmentQuery, limit, updatedBefore)
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close()

	result := make([]data.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, order)
	}
	if err = rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}

func scanOrder(row pgx.Row) (data.Order, error) {
	var o data.Order
	err := row.Scan(
		&o.ID,
		&o.OrderID,
		&o.UserID,
		&o.PaymentStatus,
		&o.OrderStatus,
		&o.RefundStatus,
		&o.TotalPrice,
		&o.CostPrice,
		&o.Profit,
		&o.DiscountPrice,
		&o.SerialNumber,
		&o.ProviderRef,
		&o.ManualRefund,
		&o.Product.ProductID,
		&o.Product.Code,
		&o.Product.Name,
		&o.Product.Price,
		&o.Product.CostPrice,
		&o.Product.Supplier,
		&o.Product.SupplierSKU,
		&o.Payment.Provider,
		&o.Payment.Method,
		&o.Payment.Fee,
		&o.Payment.ExpiredAt,
		&o.Offers,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err //nolint:wrapcheck // mapped by callers
}

//go:embed sql/update_order_status.sql
var updateOrderStatusQuery string

// TransitionOrder applies the status pair and patch only if the order is still in from.
func (db *DBRepository) TransitionOrder(
	ctx context.Context,
	id int64,
	from, to data.OrderState,
	patch data.OrderPatch,
) (bool, error) {
	tag, err := db.storage.Exec(
		ctx,
		updateOrderStatusQuery,
		id,
		string(from.Payment),
		string(from.Order),
		string(to.Payment),
		string(to.Order),
		patch.SerialNumber,
		patch.ProviderRef,
		patch.CostPrice,
		patch.Profit,
		patch.PaidAt,
	)
	if err != nil {
		return false, handleSQLError(err)
	}
	changed := tag.RowsAffected() == 1
	db.logger.DebugCtx(
		ctx,
		"order status update",
		zap.Int64("id", id),
		zap.String("fromPayment", string(from.Payment)),
		zap.String("fromOrder", string(from.Order)),
		zap.String("toPayment", string(to.Payment)),
		zap.String("toOrder", string(to.Order)),
		zap.Bool("changed", changed),
	)
	return changed, nil
}
