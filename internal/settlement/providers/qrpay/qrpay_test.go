package qrpay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/settlement/reconciler"
)

const secret = "qr-secret"

func body(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	b, err := json.Marshal(fields)
	require.NoError(t, err)
	return b
}

func TestVerifySignature(t *testing.T) {
	p := New(Config{Secret: secret})
	fields := map[string]string{
		"merchant_ref": "DEP-42",
		"reference":    "QR-1",
		"status":       "SUCCESS",
		"amount":       "50000",
	}
	fields["signature"] = Sign(secret, "DEP-42", "QR-1", "SUCCESS", "50000")

	require.NoError(t, p.VerifySignature(nil, body(t, fields)))

	fields["amount"] = "500000"
	require.Error(t, p.VerifySignature(nil, body(t, fields)))
	require.Error(t, p.VerifySignature(nil, []byte("{")))
}

func TestMapToTransition(t *testing.T) {
	p := New(Config{Secret: secret})

	got, err := p.MapToTransition(body(t, map[string]string{
		"merchant_ref": "ORD-3",
		"reference":    "QR-9",
		"status":       "expired",
		"amount":       "12500.50",
	}))
	require.NoError(t, err)
	paid := int64(12501)
	assert.Equal(t, reconciler.Callback{
		MerchantRef: "ORD-3",
		ProviderRef: "QR-9",
		Outcome:     reconciler.Expired,
		Amount:      &paid,
	}, got)

	_, err = p.MapToTransition(body(t, map[string]string{"merchant_ref": "ORD-3", "status": "SUCCESS", "amount": "ten"}))
	require.ErrorIs(t, err, reconciler.ErrMalformedPayload)

	_, err = p.MapToTransition(body(t, map[string]string{"merchant_ref": "ORD-3", "status": "SETTLED", "amount": "1"}))
	require.ErrorIs(t, err, reconciler.ErrMalformedPayload)
}
