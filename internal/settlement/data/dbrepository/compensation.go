package dbrepository

import (
	"context"
	_ "embed"

	"go-settlement/internal/settlement/data"
)

//go:embed sql/increment_product_stock.sql
var incrementProductStockQuery string

func (db *DBRepository) RestoreStock(ctx context.Context, productID int64) error {
	_, err := db.storage.Exec(ctx, incrementProductStockQuery, productID)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/decrement_offer_usage.sql
var decrementOfferUsageQuery string

// ReleaseOffer gives one unit of quota back. It reports false when usage was already zero.
func (db *DBRepository) ReleaseOffer(ctx context.Context, offerID int64) (bool, error) {
	tag, err := db.storage.Exec(ctx, decrementOfferUsageQuery, offerID)
	if err != nil {
		return false, handleSQLError(err)
	}
	return tag.RowsAffected() == 1, nil
}

//go:embed sql/update_order_refund_status.sql
var updateOrderRefundStatusQuery string

func (db *DBRepository) TransitionRefund(ctx context.Context, id int64, from, to data.RefundStatus) (bool, error) {
	tag, err := db.storage.Exec(ctx, updateOrderRefundStatusQuery, id, string(from), string(to))
	if err != nil {
		return false, handleSQLError(err)
	}
	return tag.RowsAffected() == 1, nil
}

//go:embed sql/update_order_manual_refund.sql
var updateOrderManualRefundQuery string

func (db *DBRepository) FlagManualRefund(ctx context.Context, id int64) error {
	_, err := db.storage.Exec(ctx, updateOrderManualRefundQuery, id)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}
