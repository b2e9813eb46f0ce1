package postgres

import (
	"context"
	"database/sql"

	apperrors "meowpremium-bot/internal/common/errors"
	"meowpremium-bot/internal/domain/settings"
)

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) settings.Repository {
	return &settingsRepository{db: db}
}

// GetAll читает всю таблицу настроек одним запросом
func (r *settingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("read settings", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, apperrors.NewDatabaseError("scan setting", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("iterate settings", err)
	}

	return values, nil
}
