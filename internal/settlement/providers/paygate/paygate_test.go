package paygate

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/settlement/reconciler"
	"go-settlement/pkg/signature"
)

const key = "merchant-private-key"

func signedHeader(body []byte) http.Header {
	h := http.Header{}
	h.Set(SignatureHeader, signature.Sign(signature.SHA256, []byte(key), body))
	return h
}

func TestVerifySignature(t *testing.T) {
	p := New(Config{PrivateKey: key})
	body := []byte(`{"merchant_ref":"DEP-1","status":"PAID"}`)

	require.NoError(t, p.VerifySignature(signedHeader(body), body))

	tampered := []byte(`{"merchant_ref":"DEP-2","status":"PAID"}`)
	require.ErrorIs(t, p.VerifySignature(signedHeader(body), tampered), signature.ErrMismatch)
	require.Error(t, p.VerifySignature(http.Header{}, body))
}

func amount(v int64) *int64 {
	return &v
}

func TestMapToTransition(t *testing.T) {
	p := New(Config{PrivateKey: key})

	tests := []struct {
		name    string
		body    string
		want    reconciler.Callback
		wantErr bool
	}{
		{
			name: "paid",
			body: `{"reference":"T1","merchant_ref":"ORD-9","status":"PAID","total_amount":"30000.00"}`,
			want: reconciler.Callback{
				MerchantRef: "ORD-9",
				ProviderRef: "T1",
				Outcome:     reconciler.Succeeded,
				Amount:      amount(30000),
			},
		},
		{
			name: "refund means cancelled",
			body: `{"reference":"T2","merchant_ref":"DEP-1","status":"REFUND","total_amount":10}`,
			want: reconciler.Callback{
				MerchantRef: "DEP-1",
				ProviderRef: "T2",
				Outcome:     reconciler.Cancelled,
				Amount:      amount(10),
			},
		},
		{
			name: "unpaid",
			body: `{"merchant_ref":"DEP-1","status":"unpaid"}`,
			want: reconciler.Callback{MerchantRef: "DEP-1", Outcome: reconciler.Pending},
		},
		{name: "unknown status", body: `{"merchant_ref":"DEP-1","status":"HELD"}`, wantErr: true},
		{name: "missing ref", body: `{"status":"PAID"}`, wantErr: true},
		{name: "not json", body: `status=PAID`, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := p.MapToTransition([]byte(test.body))
			if test.wantErr {
				require.ErrorIs(t, err, reconciler.ErrMalformedPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
