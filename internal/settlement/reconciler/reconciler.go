// Package reconciler turns provider callbacks into state machine events. The
// signature is checked before anything is looked up or decoded.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"go-settlement/internal/settlement/data"
	"go-settlement/internal/settlement/statemachine"
	"go-settlement/pkg/logging"
)

var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrMalformedPayload    = errors.New("malformed payload")
	ErrUnroutableReference = errors.New("unroutable merchant reference")
)

type Capability string

const (
	PaymentCapability     Capability = "payment"
	FulfillmentCapability Capability = "fulfillment"
)

type CallbackOutcome string

const (
	Succeeded CallbackOutcome = "succeeded"
	Failed    CallbackOutcome = "failed"
	Expired   CallbackOutcome = "expired"
	Cancelled CallbackOutcome = "cancelled"
	Pending   CallbackOutcome = "pending"
)

// Callback is a verified provider payload in provider independent form.
type Callback struct {
	MerchantRef  string
	ProviderRef  string
	SerialNumber string
	Message      string
	Outcome      CallbackOutcome
	Cost         *int64
	// Amount is the paid total in minor units, when the provider reports it.
	Amount *int64
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const alreadyProcessed = "already processed"

var paymentDepositTargets = map[CallbackOutcome]data.DepositStatus{
	Succeeded: data.DepositCompleted,
	Failed:    data.DepositFailed,
	Expired:   data.DepositExpired,
	Cancelled: data.DepositCancelled,
}

var paymentOrderEvents = map[CallbackOutcome]statemachine.OrderEventKind{
	Succeeded: statemachine.PaymentSucceeded,
	Failed:    statemachine.PaymentFailed,
	Expired:   statemachine.PaymentExpired,
	Cancelled: statemachine.PaymentCancelled,
	Pending:   statemachine.PaymentPending,
}

var fulfillmentOrderEvents = map[CallbackOutcome]statemachine.OrderEventKind{
	Succeeded: statemachine.FulfillmentSucceeded,
	Failed:    statemachine.FulfillmentFailed,
	Pending:   statemachine.FulfillmentPending,
}

// FulfillmentEvent maps a supplier outcome to the order event it drives.
func FulfillmentEvent(outcome CallbackOutcome) (statemachine.OrderEventKind, bool) {
	kind, ok := fulfillmentOrderEvents[outcome]
	return kind, ok
}

type Reconciler struct {
	providers map[string]Provider
	deposits  DepositSettler
	orders    OrderSettler
	recorder  Recorder
	logger    *logging.ZapLogger
}

func New(
	deposits DepositSettler,
	orders OrderSettler,
	recorder Recorder,
	logger *logging.ZapLogger,
	providers ...Provider,
) *Reconciler {
	r := &Reconciler{
		providers: make(map[string]Provider, len(providers)),
		deposits:  deposits,
		orders:    orders,
		recorder:  recorder,
		logger:    logger,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

func (r *Reconciler) Register(p Provider) {
	r.providers[strings.ToLower(p.Name())] = p
}

func (r *Reconciler) HandlePayment(ctx context.Context, provider string, header http.Header, body []byte) (Result, error) {
	return r.handle(ctx, PaymentCapability, provider, header, body)
}

// HandleFulfillment accepts order references only.
func (r *Reconciler) HandleFulfillment(
	ctx context.Context,
	provider string,
	header http.Header,
	body []byte,
) (Result, error) {
	return r.handle(ctx, FulfillmentCapability, provider, header, body)
}

func (r *Reconciler) handle(
	ctx context.Context,
	capability Capability,
	name string,
	header http.Header,
	body []byte,
) (Result, error) {
	name = strings.ToLower(name)
	ctx = logging.WithContextFields(
		ctx,
		zap.String("provider", name),
		zap.String("capability", string(capability)),
	)
	res, err := r.reconcile(ctx, capability, name, header, body)
	r.recorder.Callback(name, callbackLabel(res, err))
	return res, err
}

func (r *Reconciler) reconcile(
	ctx context.Context,
	capability Capability,
	name string,
	header http.Header,
	body []byte,
) (Result, error) {
	provider, ok := r.providers[name]
	if !ok || provider.Capability() != capability {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	if err := provider.VerifySignature(header, body); err != nil {
		r.logger.WarnCtx(ctx, "callback signature rejected", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	callback, err := provider.MapToTransition(body)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	ctx = logging.WithContextFields(
		ctx,
		zap.String("merchantRef", callback.MerchantRef),
		zap.String("outcome", string(callback.Outcome)),
	)
	r.logger.InfoCtx(ctx, "callback accepted")

	kind, ok := data.KindOfRef(callback.MerchantRef)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnroutableReference, callback.MerchantRef)
	}
	switch {
	case capability == PaymentCapability && kind == data.DepositEntity:
		return r.settleDeposit(ctx, provider.Name(), callback)
	case capability == PaymentCapability && kind == data.OrderEntity:
		return r.settleOrder(ctx, provider.Name(), callback, paymentOrderEvents)
	case capability == FulfillmentCapability && kind == data.OrderEntity:
		return r.settleOrder(ctx, provider.Name(), callback, fulfillmentOrderEvents)
	}
	return Result{}, fmt.Errorf("%w: %s callback for %q", ErrUnroutableReference, capability, callback.MerchantRef)
}

func (r *Reconciler) settleDeposit(ctx context.Context, provider string, cb Callback) (Result, error) {
	if cb.Outcome == Pending {
		r.logger.InfoCtx(ctx, "deposit still pending at provider")
		return Result{Success: true, Message: "pending"}, nil
	}
	target, ok := paymentDepositTargets[cb.Outcome]
	if !ok {
		return Result{}, fmt.Errorf("%w: outcome %q", ErrMalformedPayload, cb.Outcome)
	}
	outcome, err := r.deposits.ApplyDepositEvent(ctx, statemachine.DepositEvent{
		DepositID:   cb.MerchantRef,
		Provider:    provider,
		ProviderRef: cb.ProviderRef,
		Target:      target,
		Source:      statemachine.SourceProvider,
		Amount:      cb.Amount,
	})
	return r.result(ctx, outcome, err)
}

func (r *Reconciler) settleOrder(
	ctx context.Context,
	provider string,
	cb Callback,
	events map[CallbackOutcome]statemachine.OrderEventKind,
) (Result, error) {
	kind, ok := events[cb.Outcome]
	if !ok {
		return Result{}, fmt.Errorf("%w: outcome %q", ErrMalformedPayload, cb.Outcome)
	}
	outcome, err := r.orders.ApplyOrderEvent(ctx, statemachine.OrderEvent{
		Kind:         kind,
		OrderID:      cb.MerchantRef,
		Provider:     provider,
		ProviderRef:  cb.ProviderRef,
		SerialNumber: cb.SerialNumber,
		Message:      cb.Message,
		Cost:         cb.Cost,
		Amount:       cb.Amount,
		Source:       statemachine.SourceProvider,
	})
	return r.result(ctx, outcome, err)
}

func (r *Reconciler) result(ctx context.Context, outcome statemachine.Outcome, err error) (Result, error) {
	switch {
	case err == nil:
		return Result{Success: true, Message: outcome.Message}, nil
	case errors.Is(err, statemachine.ErrNotFoundOrAlreadyProcessed):
		r.logger.InfoCtx(ctx, "callback already processed", zap.Error(err))
		return Result{Success: true, Message: alreadyProcessed}, nil
	case errors.Is(err, statemachine.ErrPaymentWindowClosed):
		return Result{Success: false, Message: "payment window closed"}, nil
	case errors.Is(err, statemachine.ErrProviderMismatch):
		r.logger.WarnCtx(ctx, "callback provider mismatch", zap.Error(err))
	}
	return Result{}, err //nolint:wrapcheck // sentinel errors are matched by handlers
}

func callbackLabel(res Result, err error) string {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrUnknownProvider):
		return "unknown_provider"
	case errors.Is(err, ErrMalformedPayload), errors.Is(err, ErrUnroutableReference):
		return "malformed"
	case err != nil:
		return "error"
	case res.Message == alreadyProcessed:
		return "duplicate"
	case !res.Success:
		return "rejected"
	}
	return "ok"
}
