package data

import (
	"strings"
	"time"
)

const (
	DepositRefPrefix = "DEP-"
	OrderRefPrefix   = "ORD-"
)

type MutationType string

const (
	CreditMutation MutationType = "credit"
	DebitMutation  MutationType = "debit"
)

type RefType string

const (
	OrderRef      RefType = "order"
	DepositRef    RefType = "deposit"
	WithdrawalRef RefType = "withdrawal"
	OtherRef      RefType = "other"
)

func (r RefType) Valid() bool {
	switch r {
	case OrderRef, DepositRef, WithdrawalRef, OtherRef:
		return true
	}
	return false
}

type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositCompleted DepositStatus = "completed"
	DepositFailed    DepositStatus = "failed"
	DepositCancelled DepositStatus = "cancelled"
	DepositExpired   DepositStatus = "expired"
)

func (s DepositStatus) Terminal() bool {
	return s != DepositPending
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentExpired   PaymentStatus = "expired"
	PaymentCancelled PaymentStatus = "cancelled"
)

type OrderStatus string

const (
	OrderNone      OrderStatus = "none"
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderFailed    OrderStatus = "failed"
)

type RefundStatus string

const (
	RefundNone       RefundStatus = "none"
	RefundProcessing RefundStatus = "processing"
	RefundCompleted  RefundStatus = "completed"
	RefundFailed     RefundStatus = "failed"
)

type User struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
	ID        int64
	Balance   int64
}

// BalanceMutation is an immutable ledger row. Amount is negative for debits.
type BalanceMutation struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Type          MutationType
	RefType       RefType
	RefID         string
	Notes         string
	ID            int64
	UserID        int64
	Amount        int64
	BalanceBefore int64
	BalanceAfter  int64
}

type MutationFilter struct {
	Limit    int
	BeforeID int64
}

type Deposit struct {
	ExpiredAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
	DepositID      string
	Provider       string
	RefID          string
	Status         DepositStatus
	ID             int64
	UserID         int64
	AmountPay      int64
	AmountReceived int64
	AmountFee      int64
}

// ProductSnapshot is the catalog entry as it was at checkout.
type ProductSnapshot struct {
	Code        string
	Name        string
	Supplier    string
	SupplierSKU string
	ProductID   int64
	Price       int64
	CostPrice   int64
}

// PaymentSnapshot is the payment method as it was at checkout.
type PaymentSnapshot struct {
	ExpiredAt time.Time
	Provider  string
	Method    string
	Fee       int64
}

type OfferOnOrder struct {
	OfferID       int64 `json:"offer_id"`
	DiscountTotal int64 `json:"discount_total"`
}

type Order struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        *int64
	Payment       PaymentSnapshot
	OrderID       string
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus
	RefundStatus  RefundStatus
	SerialNumber  string
	ProviderRef   string
	Product       ProductSnapshot
	Offers        []OfferOnOrder
	ID            int64
	TotalPrice    int64
	CostPrice     int64
	Profit        int64
	DiscountPrice int64
	ManualRefund  bool
}

func (o Order) IsGuest() bool {
	return o.UserID == nil
}

func (o Order) RefundAmount() int64 {
	return o.TotalPrice - o.Payment.Fee
}

// OrderState is the pair of status axes the transition tables key on.
type OrderState struct {
	Payment PaymentStatus
	Order   OrderStatus
}

func (o Order) State() OrderState {
	return OrderState{Payment: o.PaymentStatus, Order: o.OrderStatus}
}

// OrderPatch carries the optional columns a transition writes along with the statuses.
type OrderPatch struct {
	SerialNumber *string
	ProviderRef  *string
	CostPrice    *int64
	Profit       *int64
	PaidAt       *time.Time
}

type EntityKind string

const (
	DepositEntity EntityKind = "deposit"
	OrderEntity   EntityKind = "order"
)

// KindOfRef routes a merchant reference by its prefix.
func KindOfRef(ref string) (EntityKind, bool) {
	switch {
	case strings.HasPrefix(ref, DepositRefPrefix) && len(ref) > len(DepositRefPrefix):
		return DepositEntity, true
	case strings.HasPrefix(ref, OrderRefPrefix) && len(ref) > len(OrderRefPrefix):
		return OrderEntity, true
	}
	return "", false
}
