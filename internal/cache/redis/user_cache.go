package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "meowpremium-bot/internal/common/errors"
	domain "meowpremium-bot/internal/domain/user"
	rplatform "meowpremium-bot/internal/platform/redis"
)

// UserCache is a write-through cache of ledger profiles keyed by id and by
// username. It only serves reads that do not need balance freshness; any
// mutation invalidates both keys.
type UserCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewUserCache(client *rplatform.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

func (c *UserCache) keyByID(id int64) string { return fmt.Sprintf("user:id:%d", id) }
func (c *UserCache) keyByUsername(username string) string {
	return "user:username:" + strings.ToLower(username)
}

// Set stores the profile under both keys.
func (c *UserCache) Set(ctx context.Context, u *domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.keyByID(u.ID), b, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache profile by id")
	}
	if u.Username != "" {
		if err := c.client.Set(ctx, c.keyByUsername(u.Username), b, c.ttl).Err(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache profile by username")
		}
	}
	return nil
}

// GetByID returns the cached profile by id, or (nil, nil) on a miss.
func (c *UserCache) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return c.get(ctx, c.keyByID(id))
}

// GetByUsername returns the cached profile by username, or (nil, nil) on a miss.
func (c *UserCache) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return c.get(ctx, c.keyByUsername(username))
}

func (c *UserCache) get(ctx context.Context, key string) (*domain.User, error) {
	v, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if rplatform.IsMiss(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "read cached profile")
	}
	var u domain.User
	if err := json.Unmarshal(v, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Invalidate removes both keys for the user.
func (c *UserCache) Invalidate(ctx context.Context, u *domain.User) error {
	if err := c.client.Del(ctx, c.keyByID(u.ID)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "drop profile keys")
	}
	if u.Username != "" {
		if err := c.client.Del(ctx, c.keyByUsername(u.Username)).Err(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "drop username key")
		}
	}
	return nil
}

// InvalidateID removes the id key when only the id is known.
func (c *UserCache) InvalidateID(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, c.keyByID(id)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "drop profile key")
	}
	return nil
}
