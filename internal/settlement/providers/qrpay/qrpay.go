// Package qrpay adapts the QR payment aggregator. Its callbacks carry the
// signature in the body: hex HMAC-SHA256 of merchant_ref, reference, status
// and amount concatenated in that order.
package qrpay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"go-settlement/internal/settlement/reconciler"
	"go-settlement/pkg/signature"
)

const Name = "qrpay"

var errUnreadableBody = errors.New("body cannot be decoded for signature check")

var statuses = map[string]reconciler.CallbackOutcome{
	"SUCCESS":   reconciler.Succeeded,
	"FAILED":    reconciler.Failed,
	"EXPIRED":   reconciler.Expired,
	"CANCELLED": reconciler.Cancelled,
	"PENDING":   reconciler.Pending,
}

type Config struct {
	Secret string
}

// Amount is kept as sent so the signed string matches byte for byte.
type callback struct {
	MerchantRef string `json:"merchant_ref"`
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Signature   string `json:"signature"`
	Message     string `json:"message"`
}

type Provider struct {
	secret []byte
}

func New(cfg Config) *Provider {
	return &Provider{secret: []byte(cfg.Secret)}
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Capability() reconciler.Capability {
	return reconciler.PaymentCapability
}

func (p *Provider) VerifySignature(_ http.Header, body []byte) error {
	var cb callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return errUnreadableBody
	}
	return signature.Verify(
		signature.SHA256,
		p.secret,
		cb.Signature,
		[]byte(cb.MerchantRef),
		[]byte(cb.Reference),
		[]byte(cb.Status),
		[]byte(cb.Amount),
	)
}

func Sign(secret, merchantRef, reference, status, amount string) string {
	return signature.Sign(
		signature.SHA256,
		[]byte(secret),
		[]byte(merchantRef),
		[]byte(reference),
		[]byte(status),
		[]byte(amount),
	)
}

func (p *Provider) MapToTransition(body []byte) (reconciler.Callback, error) {
	var cb callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return reconciler.Callback{}, fmt.Errorf("%w: %w", reconciler.ErrMalformedPayload, err)
	}
	if cb.MerchantRef == "" {
		return reconciler.Callback{}, fmt.Errorf("%w: merchant_ref is empty", reconciler.ErrMalformedPayload)
	}
	paid, err := decimal.NewFromString(cb.Amount)
	if err != nil {
		return reconciler.Callback{}, fmt.Errorf("%w: amount %q: %w", reconciler.ErrMalformedPayload, cb.Amount, err)
	}
	outcome, ok := statuses[strings.ToUpper(cb.Status)]
	if !ok {
		return reconciler.Callback{}, fmt.Errorf("%w: unknown status %q", reconciler.ErrMalformedPayload, cb.Status)
	}
	amount := paid.Round(0).IntPart()
	return reconciler.Callback{
		MerchantRef: cb.MerchantRef,
		ProviderRef: cb.Reference,
		Outcome:     outcome,
		Message:     cb.Message,
		Amount:      &amount,
	}, nil
}
