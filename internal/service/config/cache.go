// Package config implements the TTL-cached view of the external settings
// table. Reads serve the last good snapshot when the store is unreachable;
// only a process that has never loaded anything sees an empty map.
package config

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/domain/settings"
)

// DefaultCoinsPerUnit is the compiled-in exchange rate (source-currency units
// per coin) used when coins_per_unit is unset or non-positive.
const DefaultCoinsPerUnit = 1000

// DefaultCoinsPerCurrencyUnit is the compiled-in credit ratio for approved
// receipts.
const DefaultCoinsPerCurrencyUnit = 1.0

type Cache struct {
	repo settings.Repository
	ttl  time.Duration

	mu        sync.RWMutex
	values    map[string]string
	fetchedAt time.Time
	loaded    bool
}

func NewCache(repo settings.Repository, ttl time.Duration) *Cache {
	return &Cache{repo: repo, ttl: ttl, values: map[string]string{}}
}

// Get returns the settings snapshot, refreshing from the store when forced or
// when the cached copy is older than the TTL. A failed refresh keeps the last
// good snapshot.
func (c *Cache) Get(ctx context.Context, forceRefresh bool) map[string]string {
	c.mu.RLock()
	fresh := c.loaded && time.Since(c.fetchedAt) < c.ttl
	c.mu.RUnlock()

	if forceRefresh || !fresh {
		c.refresh(ctx)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make(map[string]string, len(c.values))
	for k, v := range c.values {
		snapshot[k] = v
	}
	return snapshot
}

func (c *Cache) refresh(ctx context.Context) {
	values, err := c.repo.GetAll(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Settings refresh failed, serving cached values")
		return
	}

	c.mu.Lock()
	c.values = values
	c.fetchedAt = time.Now()
	c.loaded = true
	c.mu.Unlock()
}

// Typed accessors over the current snapshot. Each takes the map returned by
// Get so that one handler invocation sees one consistent snapshot.

// CoinsPerUnit returns the source-currency units per coin.
func CoinsPerUnit(values map[string]string) int64 {
	raw, ok := values[settings.KeyCoinsPerUnit]
	if !ok {
		return DefaultCoinsPerUnit
	}
	rate, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || rate <= 0 {
		return DefaultCoinsPerUnit
	}
	return rate
}

// CoinsPerCurrencyUnit returns the coins credited per source-currency unit on
// receipt approval.
func CoinsPerCurrencyUnit(values map[string]string) float64 {
	raw, ok := values[settings.KeyCoinsPerCurrencyUnit]
	if !ok {
		return DefaultCoinsPerCurrencyUnit
	}
	ratio, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || ratio <= 0 {
		return DefaultCoinsPerCurrencyUnit
	}
	return ratio
}

// MaintenanceMode reports whether selling is paused.
func MaintenanceMode(values map[string]string) bool {
	return parseBool(values[settings.KeyMaintenanceMode])
}

// BroadcastIncludeBanned reports whether banned users receive broadcasts.
func BroadcastIncludeBanned(values map[string]string) bool {
	return parseBool(values[settings.KeyBroadcastIncludeBanned])
}

// PaymentInfo returns the manual bank-transfer instructions shown on top-up.
func PaymentInfo(values map[string]string) string {
	return values[settings.KeyPaymentInfo]
}

// TopUpAmounts returns the configured quick-approve amounts in order.
func TopUpAmounts(values map[string]string) []int64 {
	raw := values[settings.KeyTopUpAmounts]
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	amounts := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		amounts = append(amounts, n)
	}
	return amounts
}

// ProductPrice returns the source-currency price for a product key, or false
// when the product is not configured.
func ProductPrice(values map[string]string, productKey string) (int64, bool) {
	raw, ok := values[settings.PriceKeyPrefix+productKey]
	if !ok {
		return 0, false
	}
	price, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// Products lists the configured product keys in stable order.
func Products(values map[string]string) []string {
	var keys []string
	for k := range values {
		if strings.HasPrefix(k, settings.PriceKeyPrefix) {
			keys = append(keys, strings.TrimPrefix(k, settings.PriceKeyPrefix))
		}
	}
	sort.Strings(keys)
	return keys
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
