// Package pricing holds the two money conversions the bot performs. Both are
// deterministic integer results; coin prices are floored and never below one.
package pricing

import "math"

// CoinPrice converts a source-currency price into coins at rate units per
// coin. The result is floored and clamped to a minimum of one coin, so a
// positive price is never free.
func CoinPrice(priceInSourceCurrency, unitsPerCoin int64) int64 {
	if unitsPerCoin <= 0 {
		unitsPerCoin = 1
	}
	coins := priceInSourceCurrency / unitsPerCoin
	if coins < 1 {
		return 1
	}
	return coins
}

// CreditForAmount converts an approved receipt amount into coins at the given
// coins-per-currency-unit ratio, flooring the product.
func CreditForAmount(amount int64, coinsPerCurrencyUnit float64) int64 {
	if amount <= 0 || coinsPerCurrencyUnit <= 0 {
		return 0
	}
	return int64(math.Floor(float64(amount) * coinsPerCurrencyUnit))
}
