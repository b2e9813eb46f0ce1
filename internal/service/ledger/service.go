// Package ledger is the balance façade the flows talk to. It resolves
// identifiers, registers users on first contact, and routes every balance
// mutation through the store's single atomic add operation.
package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/domain/user"
)

// ErrNotFound and ErrBalanceRejected are re-exported so callers do not import
// the domain package just for error checks.
var (
	ErrNotFound        = user.ErrNotFound
	ErrBalanceRejected = user.ErrBalanceRejected
)

// ProfileCache is the optional read cache in front of the repository.
type ProfileCache interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	Set(ctx context.Context, u *user.User) error
	Invalidate(ctx context.Context, u *user.User) error
	InvalidateID(ctx context.Context, id int64) error
}

type Service struct {
	repo  user.Repository
	cache ProfileCache // nil when Redis is not configured
}

func NewService(repo user.Repository, cache ProfileCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// RegisterIfAbsent creates the ledger row on first contact. Re-registering is
// a no-op: the stored display name is not refreshed here, only by Touch.
func (s *Service) RegisterIfAbsent(ctx context.Context, id int64, username, displayName string) error {
	return s.repo.RegisterIfAbsent(ctx, &user.User{
		ID:          id,
		Username:    strings.TrimPrefix(username, "@"),
		DisplayName: displayName,
	})
}

// Touch refreshes profile names and the last-active timestamp on activity.
func (s *Service) Touch(ctx context.Context, id int64, username, displayName string) {
	if err := s.repo.Touch(ctx, id, strings.TrimPrefix(username, "@"), displayName); err != nil && !errors.Is(err, user.ErrNotFound) {
		logger.Warn().Err(err).Int64("user_id", id).Msg("Profile touch failed")
	}
	s.invalidate(ctx, id)
}

// Find returns the ledger row for an id.
func (s *Service) Find(ctx context.Context, id int64) (*user.User, error) {
	if s.cache != nil {
		if u, err := s.cache.GetByID(ctx, id); err == nil && u != nil {
			return u, nil
		}
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, u)
	return u, nil
}

// Resolve maps a free-form identifier to a user id. Numeric strings are
// treated as ids and existence-checked; @-prefixed or bare strings are
// resolved through the secondary username lookup.
func (s *Service) Resolve(ctx context.Context, identifier string) (int64, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return 0, user.ErrNotFound
	}

	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		u, err := s.Find(ctx, id)
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}

	username := strings.ToLower(strings.TrimPrefix(identifier, "@"))
	if s.cache != nil {
		if u, err := s.cache.GetByUsername(ctx, username); err == nil && u != nil {
			return u.ID, nil
		}
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	s.cacheSet(ctx, u)
	return u.ID, nil
}

// Credit adds amount coins and returns the new balance.
func (s *Service) Credit(ctx context.Context, id int64, amount int64) (int64, error) {
	return s.adjust(ctx, id, amount)
}

// Debit removes amount coins. The store rejects a debit that would make the
// balance negative; nothing is read first, so no interleaving can slip a
// stale balance into the computation.
func (s *Service) Debit(ctx context.Context, id int64, amount int64) (int64, error) {
	return s.adjust(ctx, id, -amount)
}

// Adjust applies a signed delta (the cash-control path).
func (s *Service) Adjust(ctx context.Context, id int64, delta int64) (int64, error) {
	return s.adjust(ctx, id, delta)
}

func (s *Service) adjust(ctx context.Context, id int64, delta int64) (int64, error) {
	newBalance, err := s.repo.AddToBalance(ctx, id, delta)
	s.invalidate(ctx, id)
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// RecordPurchase accumulates the lifetime purchase total after a confirmed
// debit.
func (s *Service) RecordPurchase(ctx context.Context, id int64, priceAmount int64) {
	if err := s.repo.AddToTotalPurchase(ctx, id, priceAmount); err != nil {
		logger.Warn().Err(err).Int64("user_id", id).Msg("Total purchase update failed")
	}
	s.invalidate(ctx, id)
}

// SetBanned flips the banned flag.
func (s *Service) SetBanned(ctx context.Context, id int64, banned bool) error {
	err := s.repo.SetBanned(ctx, id, banned)
	s.invalidate(ctx, id)
	return err
}

// RecipientIDs enumerates broadcast recipients: every user, or only unbanned
// ones, excluding the admin id.
func (s *Service) RecipientIDs(ctx context.Context, includeBanned bool, excludeID int64) ([]int64, error) {
	var (
		ids []int64
		err error
	)
	if includeBanned {
		ids, err = s.repo.ListIDs(ctx)
	} else {
		ids, err = s.repo.ListActiveIDs(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := ids[:0]
	for _, id := range ids {
		if id != excludeID {
			out = append(out, id)
		}
	}
	return out, nil
}

// CountUsers returns the number of registered users.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) cacheSet(ctx context.Context, u *user.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, u); err != nil {
		logger.Debug().Err(err).Int64("user_id", u.ID).Msg("Profile cache set failed")
	}
}

// invalidate drops the cached profile after a mutation. When the cached row
// is still readable both keys go, so a username lookup cannot serve the
// pre-mutation profile for the rest of the TTL.
func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if u, err := s.cache.GetByID(ctx, id); err == nil && u != nil {
		if err := s.cache.Invalidate(ctx, u); err != nil {
			logger.Debug().Err(err).Int64("user_id", id).Msg("Profile cache invalidate failed")
		}
		return
	}
	if err := s.cache.InvalidateID(ctx, id); err != nil {
		logger.Debug().Err(err).Int64("user_id", id).Msg("Profile cache invalidate failed")
	}
}
