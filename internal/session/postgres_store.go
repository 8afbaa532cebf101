package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createClientStateTable = `CREATE TABLE IF NOT EXISTS client_state (
    session_id TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (session_id, key)
)`

// PostgresStore keeps visitor state in the client_state table.
type PostgresStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
}

// NewPostgresStore builds a Postgres-backed store. Call EnsureSchema once at
// startup.
func NewPostgresStore(db *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl}
}

// EnsureSchema creates the client_state table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createClientStateTable); err != nil {
		return fmt.Errorf("create client_state: %w", err)
	}
	return nil
}

func (s *PostgresStore) expiry(now time.Time) time.Time {
	if s.ttl <= 0 {
		return now.AddDate(100, 0, 0)
	}
	return now.Add(s.ttl)
}

// Get returns a non-expired value for key and pushes its expiry forward,
// matching the sliding TTL of the Redis store.
func (s *PostgresStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	row := s.db.QueryRow(ctx, `UPDATE client_state SET expires_at = $3
        WHERE session_id = $1 AND key = $2 AND expires_at > now()
        RETURNING value`, sessionID, key, s.expiry(time.Now().UTC()))
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts the value and pushes its expiry forward.
func (s *PostgresStore) Set(ctx context.Context, sessionID, key, value string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `INSERT INTO client_state (session_id, key, value, updated_at, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (session_id, key) DO UPDATE
        SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`,
		sessionID, key, value, now, s.expiry(now))
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM client_state WHERE session_id = $1 AND key = $2`, sessionID, key)
	return err
}

// Purge removes expired rows and returns how many were deleted.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	cmd, err := s.db.Exec(ctx, `DELETE FROM client_state WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
