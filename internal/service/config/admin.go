package config

import (
	"context"
	"strconv"
	"strings"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/domain/settings"
)

// AdminResolver determines the effective administrator identity. The
// admin_contact_id setting wins; an absent or malformed value falls back to
// the compiled-in id. A settings edit takes effect within one cache TTL.
type AdminResolver struct {
	cache      *Cache
	fallbackID int64
}

func NewAdminResolver(cache *Cache, fallbackID int64) *AdminResolver {
	return &AdminResolver{cache: cache, fallbackID: fallbackID}
}

// ResolveAdminID reads the admin identity from a settings snapshot.
func (r *AdminResolver) ResolveAdminID(values map[string]string) int64 {
	raw, ok := values[settings.KeyAdminContactID]
	if !ok || strings.TrimSpace(raw) == "" {
		return r.fallbackID
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		logger.Warn().
			Str("value", raw).
			Int64("fallback", r.fallbackID).
			Msg("Malformed admin_contact_id setting, using fallback")
		return r.fallbackID
	}
	return id
}

// AdminID resolves the administrator through the cache.
func (r *AdminResolver) AdminID(ctx context.Context) int64 {
	return r.ResolveAdminID(r.cache.Get(ctx, false))
}

// IsAdmin reports whether userID is the currently resolved administrator.
func (r *AdminResolver) IsAdmin(ctx context.Context, userID int64) bool {
	return userID == r.AdminID(ctx)
}
