package supplier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-settlement/internal/common/supplierprotocol"
	"go-settlement/internal/settlement/reconciler"
	"go-settlement/pkg/logging"
	"go-settlement/pkg/signature"
)

const secret = "hub-secret"

func TestWebhookSignature(t *testing.T) {
	w := NewWebhook(secret)
	body := []byte(`{"data":{"ref_id":"ORD-1","status":"Sukses"}}`)
	header := http.Header{}
	header.Set(SignatureHeader, "sha1="+signature.Sign(signature.SHA1, []byte(secret), body))

	require.NoError(t, w.VerifySignature(header, body))

	header.Set(SignatureHeader, signature.Sign(signature.SHA1, []byte(secret), body))
	require.Error(t, w.VerifySignature(header, body), "prefix is required")

	header.Set(SignatureHeader, "sha1="+signature.Sign(signature.SHA1, []byte("other"), body))
	require.Error(t, w.VerifySignature(header, body))
}

func TestWebhookMapToTransition(t *testing.T) {
	w := NewWebhook(secret)

	cb, err := w.MapToTransition([]byte(`{"data":{"ref_id":"ORD-1","status":"Sukses","sn":"SN-55","price":9750.4}}`))
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", cb.MerchantRef)
	assert.Equal(t, reconciler.Succeeded, cb.Outcome)
	assert.Equal(t, "SN-55", cb.SerialNumber)
	require.NotNil(t, cb.Cost)
	assert.Equal(t, int64(9750), *cb.Cost)

	cb, err = w.MapToTransition([]byte(`{"data":{"ref_id":"ORD-1","status":"Gagal","message":"out of stock"}}`))
	require.NoError(t, err)
	assert.Equal(t, reconciler.Failed, cb.Outcome)
	assert.Nil(t, cb.Cost)

	_, err = w.MapToTransition([]byte(`{"data":{"ref_id":"ORD-1","status":"Unknown"}}`))
	require.ErrorIs(t, err, reconciler.ErrMalformedPayload)

	_, err = w.MapToTransition([]byte(`{"data":{"status":"Sukses"}}`))
	require.ErrorIs(t, err, reconciler.ErrMalformedPayload)
}

func TestToCallbackRoundsPrice(t *testing.T) {
	cb, err := ToCallback(supplierprotocol.Transaction{
		RefID:  "ORD-2",
		Status: supplierprotocol.Success,
		Price:  decimal.NewFromFloat(100.5),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(101), *cb.Cost)
}

func TestClientGetTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/api/transactions/ORD-1":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":{"ref_id":"ORD-1","status":"Pending"}}`)
		case "/api/transactions/ORD-404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(Config{ServerAddress: server.URL, APIKey: "key"}, logging.NewNopLogger())

	tx, err := client.GetTransaction(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, supplierprotocol.Pending, tx.Status)

	_, err = client.GetTransaction(context.Background(), "ORD-404")
	require.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = client.GetTransaction(context.Background(), "ORD-500")
	require.Error(t, err)

	unauthorized := NewClient(Config{ServerAddress: server.URL, APIKey: "wrong"}, logging.NewNopLogger())
	_, err = unauthorized.GetTransaction(context.Background(), "ORD-1")
	require.Error(t, err)
}
