package user

import "time"

// User is one ledger row. ID is the Telegram user ID; CoinBalance is the
// spendable internal balance and is kept non-negative by the store.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	CoinBalance   int64     `json:"coin_balance"`
	TotalPurchase int64     `json:"total_purchase"`
	Banned        bool      `json:"banned"`
	RegisteredAt  time.Time `json:"registered_at"`
	LastActiveAt  time.Time `json:"last_active_at"`
}
