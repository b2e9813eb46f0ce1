package order

import "time"

// Status is the terminal outcome recorded for one workflow step.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusPlaced            Status = "ORDER_PLACED"
	StatusApprovedReceipt   Status = "APPROVED_RECEIPT"
	StatusDeniedReceipt     Status = "DENIED_RECEIPT"
	StatusInsufficientFunds Status = "FAILED_INSUFFICIENT_FUNDS"
)

// Order is one append-only audit record. Rows are never updated; every
// workflow outcome appends a fresh record.
type Order struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	ProductKey     string    `json:"product_key"`
	PriceAmount    int64     `json:"price_amount"` // source-currency amount
	CoinAmount     int64     `json:"coin_amount"`
	Phone          string    `json:"phone"`
	TargetUsername string    `json:"target_username"`
	Status         Status    `json:"status"`
	ProcessedBy    string    `json:"processed_by"`
	CreatedAt      time.Time `json:"created_at"`
}
