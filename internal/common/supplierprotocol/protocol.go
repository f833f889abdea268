package supplierprotocol

import "github.com/shopspring/decimal"

const (
	Success Status = "Sukses"
	Failed  Status = "Gagal"
	Pending Status = "Pending"
)

type Status string

type Transaction struct {
	RefID        string          `json:"ref_id"`
	Status       Status          `json:"status"`
	SerialNumber string          `json:"sn"`
	Price        decimal.Decimal `json:"price"`
	Message      string          `json:"message"`
}

// Envelope wraps both the webhook body and the status lookup response.
type Envelope struct {
	Data Transaction `json:"data"`
}
