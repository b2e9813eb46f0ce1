package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no ledger row exists for the key.
	ErrNotFound = errors.New("user not found")

	// ErrBalanceRejected means the balance mutation would drive the balance
	// negative and was refused by the store without committing anything.
	ErrBalanceRejected = errors.New("balance change rejected")
)

// Repository defines persistence operations for the user ledger.
type Repository interface {
	// RegisterIfAbsent inserts a row only when none exists; an existing row
	// is left untouched, including its stored display name.
	RegisterIfAbsent(ctx context.Context, u *User) error

	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// AddToBalance applies delta as one serialized operation at the store and
	// returns the resulting balance. A delta that would make the balance
	// negative returns ErrBalanceRejected with no change committed. The row's
	// last-active timestamp is refreshed as part of the same statement.
	AddToBalance(ctx context.Context, id int64, delta int64) (int64, error)

	// AddToTotalPurchase accumulates the lifetime purchase counter.
	AddToTotalPurchase(ctx context.Context, id int64, amount int64) error

	SetBanned(ctx context.Context, id int64, banned bool) error

	// Touch refreshes the last-active timestamp and current profile names.
	Touch(ctx context.Context, id int64, username, displayName string) error

	// ListIDs returns every registered user id.
	ListIDs(ctx context.Context) ([]int64, error)

	// ListActiveIDs returns ids of users that are not banned.
	ListActiveIDs(ctx context.Context) ([]int64, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int64, error)
}
