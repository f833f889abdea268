package dbrepository

import (
	"context"
	_ "embed"
	"fmt"

	"go-settlement/internal/settlement/data"
)

const defaultMutationsLimit = 50

//go:embed sql/lock_user_balance.sql
var lockUserBalanceQuery string

// LockUserBalance reads the balance holding the row lock until the transaction ends.
func (db *DBRepository) LockUserBalance(ctx context.Context, userID int64) (balance int64, err error) {
	err = db.storage.QueryValue(ctx, lockUserBalanceQuery, []any{userID}, []any{&balance})
	if err != nil {
		return 0, notFound(err, data.ErrUserNotFound)
	}
	return balance, nil
}

//go:embed sql/select_user_balance.sql
var selectUserBalanceQuery string

func (db *DBRepository) GetUserBalance(ctx context.Context, userID int64) (balance int64, err error) {
	err = db.storage.QueryValue(ctx, selectUserBalanceQuery, []any{userID}, []any{&balance})
	if err != nil {
		return 0, notFound(err, data.ErrUserNotFound)
	}
	return balance, nil
}

//go:embed sql/update_user_balance.sql
var updateUserBalanceQuery string

func (db *DBRepository) SetUserBalance(ctx context.Context, userID int64, balance int64) error {
	tag, err := db.storage.Exec(ctx, updateUserBalanceQuery, userID, balance)
	if err != nil {
		return handleSQLError(err)
	}
	if tag.RowsAffected() == 0 {
		return data.ErrUserNotFound
	}
	return nil
}

//go:embed sql/insert_balance_mutation.sql
var insertBalanceMutationQuery string

func (db *DBRepository) InsertMutation(ctx context.Context, mutation *data.BalanceMutation) error {
	err := db.storage.QueryValue(
		ctx,
		insertBalanceMutationQuery,
		[]any{
			mutation.UserID,
			mutation.Amount,
			string(mutation.Type),
			string(mutation.RefType),
			mutation.RefID,
			mutation.BalanceBefore,
			mutation.BalanceAfter,
			mutation.Notes,
		},
		[]any{&mutation.ID, &mutation.CreatedAt, &mutation.UpdatedAt},
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance mutation: %w", handleSQLError(err))
	}
	return nil
}

//go:embed sql/select_mutations.sql
var selectMutationsQuery string

func (db *DBRepository) GetMutations(
	ctx context.Context,
	userID int64,
	filter data.MutationFilter,
) ([]data.BalanceMutation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultMutationsLimit
	}
	return db.queryMutations(ctx, selectMutationsQuery, userID, filter.BeforeID, limit)
}

//go:embed sql/select_mutations_ascending.sql
var selectMutationsAscendingQuery string

func (db *DBRepository) GetMutationsAscending(ctx context.Context, userID int64) ([]data.BalanceMutation, error) {
	return db.queryMutations(ctx, selectMutationsAscendingQuery, userID)
}

func (db *DBRepository) queryMutations(ctx context.Context, query string, args ...any) ([]data.BalanceMutation, error) {
	rows, err := db.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, handleSQLError(err)
	}
	defer rows.Close()

	result := make([]data.BalanceMutation, 0)
	for rows.Next() {
		var m data.BalanceMutation
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Amount,
			&m.Type,
			&m.RefType,
			&m.RefID,
			&m.BalanceBefore,
			&m.BalanceAfter,
			&m.Notes,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, handleSQLError(err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, handleSQLError(err)
	}
	return result, nil
}
