package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"retail-bank-ledger/internal/core/domain"
)

// JournalRepository is the write-mostly copy of committed ledger entries.
// It is never read back to rebuild account state.
type JournalRepository interface {
	Append(ctx context.Context, entries []*domain.Transaction) error
	ListByAccount(ctx context.Context, accountNo string, limit int) ([]domain.Transaction, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// IdempotencyCache stores serialized operation results by idempotency key.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SessionDenylist remembers session tokens ended before they expired.
type SessionDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
