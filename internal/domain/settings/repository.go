// Package settings defines the flat key/value configuration table the bot
// reads its runtime knobs from: admin identity, pricing, payment
// instructions, and the maintenance flag.
package settings

import "context"

// Well-known keys. Unknown keys pass through untouched.
const (
	KeyAdminContactID         = "admin_contact_id"
	KeyCoinsPerUnit           = "coins_per_unit"
	KeyCoinsPerCurrencyUnit   = "coins_per_currency_unit"
	KeyTopUpAmounts           = "topup_amounts"
	KeyPaymentInfo            = "payment_info"
	KeyMaintenanceMode        = "maintenance_mode"
	KeyBroadcastIncludeBanned = "broadcast_include_banned"

	// PriceKeyPrefix prefixes per-product price keys, e.g. price_premium_1m.
	PriceKeyPrefix = "price_"
)

// Repository reads the external configuration table.
type Repository interface {
	// GetAll returns the whole table as a flat map.
	GetAll(ctx context.Context) (map[string]string, error)
}
