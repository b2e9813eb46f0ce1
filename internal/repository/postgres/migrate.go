package postgres

import "database/sql"

// Migrate creates the three tables the bot relies on: the user ledger, the
// append-only order audit, and the flat settings table.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			coin_balance BIGINT NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
			total_purchase BIGINT NOT NULL DEFAULT 0,
			banned BOOLEAN NOT NULL DEFAULT FALSE,
			registered_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			last_active_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_users_username ON users (username) WHERE username <> '';
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			product_key TEXT NOT NULL DEFAULT '',
			price_amount BIGINT NOT NULL DEFAULT 0,
			coin_amount BIGINT NOT NULL DEFAULT 0,
			phone TEXT NOT NULL DEFAULT '',
			target_username TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			processed_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}
