package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoinPrice(t *testing.T) {
	tests := []struct {
		name         string
		price        int64
		unitsPerCoin int64
		want         int64
	}{
		{name: "exact division", price: 15000, unitsPerCoin: 1000, want: 15},
		{name: "floors the remainder", price: 15999, unitsPerCoin: 1000, want: 15},
		{name: "never free", price: 500, unitsPerCoin: 1000, want: 1},
		{name: "minimum one coin at tiny price", price: 1, unitsPerCoin: 1000, want: 1},
		{name: "zero rate treated as one", price: 42, unitsPerCoin: 0, want: 42},
		{name: "negative rate treated as one", price: 42, unitsPerCoin: -5, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoinPrice(tt.price, tt.unitsPerCoin))
		})
	}
}

func TestCoinPriceDeterministic(t *testing.T) {
	first := CoinPrice(15000, 1000)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CoinPrice(15000, 1000))
	}
}

func TestCreditForAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		ratio  float64
		want   int64
	}{
		{name: "half ratio", amount: 20000, ratio: 0.5, want: 10000},
		{name: "unit ratio", amount: 5000, ratio: 1.0, want: 5000},
		{name: "floors the product", amount: 333, ratio: 0.5, want: 166},
		{name: "zero amount", amount: 0, ratio: 1.0, want: 0},
		{name: "negative amount", amount: -100, ratio: 1.0, want: 0},
		{name: "zero ratio", amount: 1000, ratio: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CreditForAmount(tt.amount, tt.ratio))
		})
	}
}
