package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfRef(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		wantKind EntityKind
		wantOK   bool
	}{
		{name: "deposit", ref: "DEP-9F1C2A7B", wantKind: DepositEntity, wantOK: true},
		{name: "order", ref: "ORD-20261014-0001", wantKind: OrderEntity, wantOK: true},
		{name: "bare prefix", ref: "DEP-", wantOK: false},
		{name: "lower case", ref: "dep-123", wantOK: false},
		{name: "unknown", ref: "INV-1", wantOK: false},
		{name: "empty", ref: "", wantOK: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kind, ok := KindOfRef(test.ref)
			assert.Equal(t, test.wantOK, ok)
			assert.Equal(t, test.wantKind, kind)
		})
	}
}

func TestOrderRefundAmount(t *testing.T) {
	userID := int64(7)
	order := Order{
		UserID:     &userID,
		TotalPrice: 30000,
		Payment:    PaymentSnapshot{Fee: 1500},
	}
	assert.Equal(t, int64(28500), order.RefundAmount())
	assert.False(t, order.IsGuest())
	assert.True(t, Order{}.IsGuest())
}
