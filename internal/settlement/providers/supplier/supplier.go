// Package supplier adapts the digital goods supplier. Fulfillment webhooks
// are signed with HMAC-SHA1 over the raw body in the X-Hub-Signature header,
// and transactions can also be polled through the status API.
package supplier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go-settlement/internal/common/supplierprotocol"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/pkg/signature"
)

const (
	Name            = "supplier"
	SignatureHeader = "X-Hub-Signature"
	signaturePrefix = "sha1="
)

var statuses = map[supplierprotocol.Status]reconciler.CallbackOutcome{
	supplierprotocol.Success: reconciler.Succeeded,
	supplierprotocol.Failed:  reconciler.Failed,
	supplierprotocol.Pending: reconciler.Pending,
}

type Webhook struct {
	secret []byte
}

func NewWebhook(secret string) *Webhook {
	return &Webhook{secret: []byte(secret)}
}

func (w *Webhook) Name() string {
	return Name
}

func (w *Webhook) Capability() reconciler.Capability {
	return reconciler.FulfillmentCapability
}

func (w *Webhook) VerifySignature(header http.Header, body []byte) error {
	value := header.Get(SignatureHeader)
	if !strings.HasPrefix(value, signaturePrefix) {
		return fmt.Errorf("%s header: %w", SignatureHeader, signature.ErrMismatch)
	}
	return signature.Verify(signature.SHA1, w.secret, strings.TrimPrefix(value, signaturePrefix), body)
}

func (w *Webhook) MapToTransition(body []byte) (reconciler.Callback, error) {
	var envelope supplierprotocol.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return reconciler.Callback{}, fmt.Errorf("%w: %w", reconciler.ErrMalformedPayload, err)
	}
	return ToCallback(envelope.Data)
}

// ToCallback converts a supplier transaction, pushed or polled, into a callback.
func ToCallback(tx supplierprotocol.Transaction) (reconciler.Callback, error) {
	if tx.RefID == "" {
		return reconciler.Callback{}, fmt.Errorf("%w: ref_id is empty", reconciler.ErrMalformedPayload)
	}
	outcome, ok := statuses[tx.Status]
	if !ok {
		return reconciler.Callback{}, fmt.Errorf("%w: unknown status %q", reconciler.ErrMalformedPayload, tx.Status)
	}
	if tx.Price.IsNegative() {
		return reconciler.Callback{}, fmt.Errorf("%w: negative price", reconciler.ErrMalformedPayload)
	}
	cb := reconciler.Callback{
		MerchantRef:  tx.RefID,
		SerialNumber: tx.SerialNumber,
		Message:      tx.Message,
		Outcome:      outcome,
	}
	if !tx.Price.IsZero() {
		cost := tx.Price.Round(0).IntPart()
		cb.Cost = &cost
	}
	return cb, nil
}
