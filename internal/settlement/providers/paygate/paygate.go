// Package paygate adapts the hosted payment gateway callbacks. The gateway
// signs the raw JSON body with HMAC-SHA256 keyed by the merchant private key
// and sends the hex digest in a header.
package paygate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"go-settlement/internal/settlement/reconciler"
	"go-settlement/pkg/signature"
)

const (
	Name            = "paygate"
	SignatureHeader = "X-Callback-Signature"
)

var statuses = map[string]reconciler.CallbackOutcome{
	"PAID":    reconciler.Succeeded,
	"FAILED":  reconciler.Failed,
	"EXPIRED": reconciler.Expired,
	"REFUND":  reconciler.Cancelled,
	"UNPAID":  reconciler.Pending,
}

type Config struct {
	PrivateKey string
}

type callback struct {
	Reference   string          `json:"reference"`
	MerchantRef string          `json:"merchant_ref"`
	Status      string          `json:"status"`
	Method      string          `json:"payment_method"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Note        string          `json:"note"`
}

type Provider struct {
	privateKey []byte
}

func New(cfg Config) *Provider {
	return &Provider{privateKey: []byte(cfg.PrivateKey)}
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Capability() reconciler.Capability {
	return reconciler.PaymentCapability
}

func (p *Provider) VerifySignature(header http.Header, body []byte) error {
	if err := signature.Verify(signature.SHA256, p.privateKey, header.Get(SignatureHeader), body); err != nil {
		return fmt.Errorf("%s header: %w", SignatureHeader, err)
	}
	return nil
}

func (p *Provider) MapToTransition(body []byte) (reconciler.Callback, error) {
	var cb callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return reconciler.Callback{}, fmt.Errorf("%w: %w", reconciler.ErrMalformedPayload, err)
	}
	if cb.MerchantRef == "" {
		return reconciler.Callback{}, fmt.Errorf("%w: merchant_ref is empty", reconciler.ErrMalformedPayload)
	}
	if cb.TotalAmount.IsNegative() {
		return reconciler.Callback{}, fmt.Errorf("%w: negative total_amount", reconciler.ErrMalformedPayload)
	}
	outcome, ok := statuses[strings.ToUpper(cb.Status)]
	if !ok {
		return reconciler.Callback{}, fmt.Errorf("%w: unknown status %q", reconciler.ErrMalformedPayload, cb.Status)
	}
	res := reconciler.Callback{
		MerchantRef: cb.MerchantRef,
		ProviderRef: cb.Reference,
		Outcome:     outcome,
		Message:     cb.Note,
	}
	if !cb.TotalAmount.IsZero() {
		amount := cb.TotalAmount.Round(0).IntPart()
		res.Amount = &amount
	}
	return res, nil
}
