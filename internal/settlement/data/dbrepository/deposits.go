package dbrepository

import (
	"context"
	_ "embed"
	"time"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
)

//go:embed sql/insert_deposit.sql
var insertDepositQuery string

func (db *DBRepository) InsertDeposit(ctx context.Context, deposit *data.Deposit) error {
	err := db.storage.QueryValue(
		ctx,
		insertDepositQuery,
		[]any{
			deposit.DepositID,
			deposit.UserID,
			deposit.Provider,
			deposit.AmountPay,
			deposit.AmountReceived,
			deposit.AmountFee,
			deposit.ExpiredAt,
		},
		[]any{&deposit.ID, &deposit.Status, &deposit.CreatedAt, &deposit.UpdatedAt},
	)
	if err != nil {
		return handleSQLError(err)
	}
	return nil
}

//go:embed sql/select_deposit.sql
var selectDepositQuery string

func (db *DBRepository) GetDeposit(ctx context.Context, depositID string) (data.Deposit, error) {
	var d data.Deposit
	err := db.storage.QueryValue(
		ctx,
		selectDepositQuery,
		[]any{depositID},
		[]any{
			&d.ID,
			&d.DepositID,
			&d.UserID,
			&d.Provider,
			&d.RefID,
			&d.Status,
			&d.AmountPay,
			&d.AmountReceived,
			&d.AmountFee,
			&d.ExpiredAt,
			&d.PaidAt,
			&d.CreatedAt,
			&d.UpdatedAt,
		},
	)
	if err != nil {
		return data.Deposit{}, notFound(err, data.ErrDepositNotFound)
	}
	return d, nil
}

//go:embed sql/update_deposit_status.sql
var updateDepositStatusQuery string

// TransitionDeposit moves the deposit from one status to another only if it
// is still in from. It reports whether a row changed.
func (db *DBRepository) TransitionDeposit(
	ctx context.Context,
	id int64,
	from, to data.DepositStatus,
	providerRef *string,
	paidAt *time.Time,
) (bool, error) {
	tag, err := db.storage.Exec(
		ctx,
		updateDepositStatusQuery,
		id,
		string(from),
		string(to),
		providerRef,
		paidAt,
	)
	if err != nil {
		return false, handleSQLError(err)
	}
	changed := tag.RowsAffected() == 1
	db.logger.DebugCtx(
		ctx,
		"deposit status update",
		zap.Int64("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Bool("changed", changed),
	)
	return changed, nil
}
