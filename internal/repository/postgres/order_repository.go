package postgres

import (
	"context"
	"database/sql"

	apperrors "meowpremium-bot/internal/common/errors"
	"meowpremium-bot/internal/domain/order"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) order.Repository {
	return &orderRepository{db: db}
}

// Append добавляет запись аудита; записи никогда не изменяются
func (r *orderRepository) Append(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (id, user_id, product_key, price_amount, coin_amount, phone, target_username, status, processed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.UserID, o.ProductKey, o.PriceAmount, o.CoinAmount,
		o.Phone, o.TargetUsername, string(o.Status), o.ProcessedBy, o.CreatedAt)
	if err != nil {
		return apperrors.NewLedgerWriteError("append order", err)
	}

	return nil
}

// Stats агрегирует таблицу заказов для панели администратора
func (r *orderRepository) Stats(ctx context.Context) (*order.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(price_amount) FILTER (WHERE status IN ($1, $2)), 0)
		FROM orders
	`

	var s order.Stats
	err := r.db.QueryRowContext(ctx, query,
		string(order.StatusPlaced), string(order.StatusApprovedReceipt)).
		Scan(&s.TotalOrders, &s.TotalRevenue)
	if err != nil {
		return nil, apperrors.NewDatabaseError("aggregate orders", err)
	}

	return &s, nil
}
