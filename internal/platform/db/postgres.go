package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"meowpremium-bot/internal/common/logger"
)

const (
	openAttempts   = 5
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// Open initializes a PostgreSQL connection using database/sql and lib/pq.
// Establishing the connection is retried with capped backoff; individual
// statement failures later on are the caller's problem.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= openAttempts {
			break
		}
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Postgres ping failed, retrying")
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", openAttempts, err)
}
