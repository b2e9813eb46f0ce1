package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----- Fake settings repo -----

type fakeSettingsRepo struct {
	values map[string]string
	err    error
	calls  int
}

func (r *fakeSettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

// ----- Cache tests -----

func TestCacheServesWithinTTLWithoutRefetch(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"payment_info": "bank A"}}
	cache := NewCache(repo, time.Hour)

	first := cache.Get(context.Background(), false)
	second := cache.Get(context.Background(), false)

	assert.Equal(t, "bank A", first["payment_info"])
	assert.Equal(t, "bank A", second["payment_info"])
	assert.Equal(t, 1, repo.calls)
}

func TestCacheForceRefresh(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"payment_info": "bank A"}}
	cache := NewCache(repo, time.Hour)

	cache.Get(context.Background(), false)
	repo.values["payment_info"] = "bank B"

	refreshed := cache.Get(context.Background(), true)
	assert.Equal(t, "bank B", refreshed["payment_info"])
	assert.Equal(t, 2, repo.calls)
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"k": "v1"}}
	cache := NewCache(repo, 10*time.Millisecond)

	cache.Get(context.Background(), false)
	repo.values["k"] = "v2"
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, "v2", cache.Get(context.Background(), false)["k"])
}

func TestCacheServesStaleOnSourceFailure(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"k": "good"}}
	cache := NewCache(repo, time.Hour)

	cache.Get(context.Background(), false)
	repo.err = errors.New("store unreachable")

	stale := cache.Get(context.Background(), true)
	assert.Equal(t, "good", stale["k"], "last good snapshot must survive a failed refresh")
}

func TestCacheEmptyOnlyBeforeFirstSuccess(t *testing.T) {
	repo := &fakeSettingsRepo{err: errors.New("store unreachable")}
	cache := NewCache(repo, time.Hour)

	assert.Empty(t, cache.Get(context.Background(), false))
}

// ----- Typed accessor tests -----

func TestCoinsPerUnit(t *testing.T) {
	assert.Equal(t, int64(1000), CoinsPerUnit(map[string]string{}))
	assert.Equal(t, int64(500), CoinsPerUnit(map[string]string{"coins_per_unit": "500"}))
	assert.Equal(t, int64(DefaultCoinsPerUnit), CoinsPerUnit(map[string]string{"coins_per_unit": "banana"}))
	assert.Equal(t, int64(DefaultCoinsPerUnit), CoinsPerUnit(map[string]string{"coins_per_unit": "-3"}))
}

func TestCoinsPerCurrencyUnit(t *testing.T) {
	assert.Equal(t, 1.0, CoinsPerCurrencyUnit(map[string]string{}))
	assert.Equal(t, 0.5, CoinsPerCurrencyUnit(map[string]string{"coins_per_currency_unit": "0.5"}))
	assert.Equal(t, 1.0, CoinsPerCurrencyUnit(map[string]string{"coins_per_currency_unit": "zero"}))
}

func TestTopUpAmounts(t *testing.T) {
	amounts := TopUpAmounts(map[string]string{"topup_amounts": "5000, 10000,abc,-2,20000"})
	assert.Equal(t, []int64{5000, 10000, 20000}, amounts)
	assert.Nil(t, TopUpAmounts(map[string]string{}))
}

func TestProductPrice(t *testing.T) {
	values := map[string]string{"price_premium_1m": "15000", "price_bad": "x"}

	price, ok := ProductPrice(values, "premium_1m")
	require.True(t, ok)
	assert.Equal(t, int64(15000), price)

	_, ok = ProductPrice(values, "bad")
	assert.False(t, ok)
	_, ok = ProductPrice(values, "missing")
	assert.False(t, ok)
}

func TestProducts(t *testing.T) {
	values := map[string]string{
		"price_b":      "2",
		"price_a":      "1",
		"payment_info": "bank",
	}
	assert.Equal(t, []string{"a", "b"}, Products(values))
}

func TestMaintenanceMode(t *testing.T) {
	assert.False(t, MaintenanceMode(map[string]string{}))
	assert.True(t, MaintenanceMode(map[string]string{"maintenance_mode": "true"}))
	assert.True(t, MaintenanceMode(map[string]string{"maintenance_mode": "1"}))
	assert.False(t, MaintenanceMode(map[string]string{"maintenance_mode": "off"}))
}

// ----- Admin resolver tests -----

func TestResolveAdminID(t *testing.T) {
	cache := NewCache(&fakeSettingsRepo{}, time.Hour)
	resolver := NewAdminResolver(cache, 111)

	assert.Equal(t, int64(222), resolver.ResolveAdminID(map[string]string{"admin_contact_id": "222"}))
	assert.Equal(t, int64(111), resolver.ResolveAdminID(map[string]string{}))
	assert.Equal(t, int64(111), resolver.ResolveAdminID(map[string]string{"admin_contact_id": "not-a-number"}))
	assert.Equal(t, int64(111), resolver.ResolveAdminID(map[string]string{"admin_contact_id": "-5"}))
}

func TestIsAdminFollowsSettingWithinTTL(t *testing.T) {
	repo := &fakeSettingsRepo{values: map[string]string{"admin_contact_id": "222"}}
	cache := NewCache(repo, 10*time.Millisecond)
	resolver := NewAdminResolver(cache, 111)

	assert.True(t, resolver.IsAdmin(context.Background(), 222))
	assert.False(t, resolver.IsAdmin(context.Background(), 111))

	repo.values["admin_contact_id"] = "333"
	time.Sleep(20 * time.Millisecond)

	assert.True(t, resolver.IsAdmin(context.Background(), 333))
	assert.False(t, resolver.IsAdmin(context.Background(), 222))
}
