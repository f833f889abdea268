package clientprotocol

import "time"

type CallbackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Balance struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type Mutation struct {
	ID            int64     `json:"id"`
	Amount        int64     `json:"amount"`
	Type          string    `json:"type"`
	RefType       string    `json:"ref_type"`
	RefID         string    `json:"ref_id"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type Audit struct {
	UserID         int64 `json:"user_id"`
	Balance        int64 `json:"balance"`
	Replayed       int64 `json:"replayed"`
	MutationsCount int   `json:"mutations_count"`
	BrokenChainAt  int64 `json:"broken_chain_at,omitempty"`
	Consistent     bool  `json:"consistent"`
}

type CreateDepositRequest struct {
	Provider string `json:"provider"`
	Amount   int64  `json:"amount"`
	Fee      int64  `json:"fee"`
}

type Deposit struct {
	DepositID      string    `json:"deposit_id"`
	Provider       string    `json:"provider"`
	Status         string    `json:"status"`
	AmountPay      int64     `json:"amount_pay"`
	AmountFee      int64     `json:"amount_fee"`
	AmountReceived int64     `json:"amount_received"`
	ExpiredAt      time.Time `json:"expired_at"`
}

type OrderPayment struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}
