package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS scrum_entries (
	id             uuid PRIMARY KEY,
	user_id        text NOT NULL,
	yesterday_work text NOT NULL DEFAULT '',
	today_plan     text NOT NULL DEFAULT '',
	comment        text NOT NULL DEFAULT '',
	message_id     text NOT NULL UNIQUE,
	channel_id     text NOT NULL,
	created_at     timestamptz NOT NULL DEFAULT now(),
	updated_at     timestamptz,
	is_edited      boolean NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id      text PRIMARY KEY,
	monthly_goal text,
	weekly_goal  text,
	routine      text,
	updated_at   timestamptz NOT NULL DEFAULT now()
);`

// Migrate creates the bot's tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
