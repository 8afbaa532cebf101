package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key has no value for the session.
var ErrNotFound = errors.New("session: key not found")

// Store persists per-visitor key/value pairs that must survive page reloads.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Purger is implemented by stores that need explicit removal of expired entries.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Client gives typed access to a single visitor's persisted state.
type Client struct {
	store Store
	id    string
	now   func() time.Time
}

// NewClient binds store to the visitor identified by sessionID.
func NewClient(store Store, sessionID string) *Client {
	return &Client{store: store, id: sessionID, now: time.Now}
}

// ID returns the visitor session identifier.
func (c *Client) ID() string { return c.id }

// PendingSignup loads the stored signup hand-off. A record that cannot be
// decoded is treated as absent.
func (c *Client) PendingSignup(ctx context.Context) (PendingSignup, bool, error) {
	raw, err := c.store.Get(ctx, c.id, KeyPendingSignup)
	if errors.Is(err, ErrNotFound) {
		return PendingSignup{}, false, nil
	}
	if err != nil {
		return PendingSignup{}, false, fmt.Errorf("load pending signup: %w", err)
	}
	var pending PendingSignup
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return PendingSignup{}, false, nil
	}
	return pending, true, nil
}

// SavePendingSignup stores the signup hand-off record.
func (c *Client) SavePendingSignup(ctx context.Context, pending PendingSignup) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode pending signup: %w", err)
	}
	if err := c.store.Set(ctx, c.id, KeyPendingSignup, string(payload)); err != nil {
		return fmt.Errorf("save pending signup: %w", err)
	}
	return nil
}

// ClearPendingSignup removes the signup hand-off record.
func (c *Client) ClearPendingSignup(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.id, KeyPendingSignup); err != nil {
		return fmt.Errorf("clear pending signup: %w", err)
	}
	return nil
}

// AuthToken returns the stored bearer token. An expired JWT is removed and
// reported as absent.
func (c *Client) AuthToken(ctx context.Context) (string, bool, error) {
	token, err := c.store.Get(ctx, c.id, KeyAuthToken)
	if errors.Is(err, ErrNotFound) || (err == nil && token == "") {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load auth token: %w", err)
	}
	if Expired(token, c.now()) {
		if err := c.store.Delete(ctx, c.id, KeyAuthToken); err != nil {
			return "", false, fmt.Errorf("drop expired auth token: %w", err)
		}
		return "", false, nil
	}
	return token, true, nil
}

// SaveAuthToken stores the bearer token.
func (c *Client) SaveAuthToken(ctx context.Context, token string) error {
	if err := c.store.Set(ctx, c.id, KeyAuthToken, token); err != nil {
		return fmt.Errorf("save auth token: %w", err)
	}
	return nil
}
