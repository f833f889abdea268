package handlers

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"net/http"

	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/ledger"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/internal/settlement/service"
	"go-settlement/internal/settlement/statemachine"
)

type CallbackReconciler interface {
	HandlePayment(ctx context.Context, provider string, header http.Header, body []byte) (reconciler.Result, error)
	HandleFulfillment(ctx context.Context, provider string, header http.Header, body []byte) (reconciler.Result, error)
}

type LedgerService interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Mutations(ctx context.Context, userID int64, filter data.MutationFilter) ([]data.BalanceMutation, error)
	Audit(ctx context.Context, userID int64) (ledger.AuditReport, error)
}

type DepositService interface {
	Create(ctx context.Context, userID int64, req service.CreateDeposit) (data.Deposit, error)
}

type BalancePayer interface {
	PayWithBalance(ctx context.Context, userID int64, orderID string) (statemachine.Outcome, error)
}
