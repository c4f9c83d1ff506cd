package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SessionDenylist implements ports.SessionDenylist using Redis SET NX.
// Entries expire together with the token they revoke.
type SessionDenylist struct {
	client *goredis.Client
	prefix string
}

// NewSessionDenylist creates a new Redis-backed session denylist.
func NewSessionDenylist(client *goredis.Client) *SessionDenylist {
	return &SessionDenylist{
		client: client,
		prefix: keyPrefix + "revoked:",
	}
}

// Revoke marks tokenID as ended for ttl. Revoking twice is a no-op.
func (s *SessionDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	err := s.client.SetArgs(ctx, s.prefix+tokenID, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis session revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was ended before it expired.
func (s *SessionDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis session lookup: %w", err)
	}
	return n > 0, nil
}
