package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "meowpremium-bot/internal/common/errors"
	"meowpremium-bot/internal/domain/user"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) user.Repository {
	return &userRepository{db: db}
}

// RegisterIfAbsent вставляет нового пользователя; существующая строка не меняется
func (r *userRepository) RegisterIfAbsent(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, display_name, coin_balance, total_purchase, banned, registered_at, last_active_at)
		VALUES ($1, $2, $3, 0, 0, FALSE, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, u.ID, strings.ToLower(u.Username), u.DisplayName)
	if err != nil {
		return apperrors.NewDatabaseError("register user", err)
	}

	return nil
}

const userColumns = `id, username, display_name, coin_balance, total_purchase, banned, registered_at, last_active_at`

func scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.CoinBalance,
		&u.TotalPurchase, &u.Banned, &u.RegisteredAt, &u.LastActiveAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return &u, nil
}

// GetByID получает пользователя по ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername получает пользователя по username (вторичный индекс)
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(username)))
}

// AddToBalance применяет дельту одной командой; отрицательный результат
// отклоняется самим запросом, читать-потом-писать здесь нет.
func (r *userRepository) AddToBalance(ctx context.Context, id int64, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET coin_balance = coin_balance + $2, last_active_at = NOW()
		WHERE id = $1 AND coin_balance + $2 >= 0
		RETURNING coin_balance
	`

	var newBalance int64
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&newBalance)
	if err == nil {
		return newBalance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NewDatabaseError("update balance", err)
	}

	// The guarded UPDATE matched nothing: either the row is missing or the
	// delta would make the balance negative.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, apperrors.NewDatabaseError("check user existence", err)
	}
	if !exists {
		return 0, user.ErrNotFound
	}
	return 0, user.ErrBalanceRejected
}

// AddToTotalPurchase наращивает накопленную сумму покупок
func (r *userRepository) AddToTotalPurchase(ctx context.Context, id int64, amount int64) error {
	query := `UPDATE users SET total_purchase = total_purchase + $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return apperrors.NewDatabaseError("update total purchase", err)
	}
	return requireRow(result)
}

// SetBanned выставляет флаг бана
func (r *userRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET banned = $2 WHERE id = $1`, id, banned)
	if err != nil {
		return apperrors.NewDatabaseError("set banned flag", err)
	}
	return requireRow(result)
}

// Touch обновляет имя и отметку активности
func (r *userRepository) Touch(ctx context.Context, id int64, username, displayName string) error {
	query := `
		UPDATE users
		SET username = $2, display_name = $3, last_active_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, strings.ToLower(username), displayName)
	if err != nil {
		return apperrors.NewDatabaseError("touch user", err)
	}
	return requireRow(result)
}

// ListIDs возвращает все ID пользователей
func (r *userRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, `SELECT id FROM users ORDER BY id`)
}

// ListActiveIDs возвращает ID пользователей без бана
func (r *userRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	return r.listIDs(ctx, `SELECT id FROM users WHERE NOT banned ORDER BY id`)
}

func (r *userRepository) listIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list users", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewDatabaseError("scan user id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate users", err)
	}
	return ids, nil
}

// Count возвращает количество пользователей
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, apperrors.NewDatabaseError("count users", err)
	}
	return n, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewDatabaseError("rows affected", err)
	}
	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}
