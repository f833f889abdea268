package reconciler

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"net/http"

	"go-settlement/internal/settlement/statemachine"
)

// Provider is one external payment gateway or supplier. Adding a provider
// means implementing this interface and registering it.
type Provider interface {
	Name() string
	Capability() Capability
	VerifySignature(header http.Header, body []byte) error
	MapToTransition(body []byte) (Callback, error)
}

type DepositSettler interface {
	ApplyDepositEvent(ctx context.Context, ev statemachine.DepositEvent) (statemachine.Outcome, error)
}

type OrderSettler interface {
	ApplyOrderEvent(ctx context.Context, ev statemachine.OrderEvent) (statemachine.Outcome, error)
}

type Recorder interface {
	Callback(provider string, outcome string)
}
