package postgres

import (
	"context"
	"fmt"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"

	"github.com/google/uuid"
)

// JournalRepo implements ports.JournalRepository. Each repo writes and reads
// under its own run id, matching the in-memory ledger it mirrors.
type JournalRepo struct {
	pool  Pool
	runID uuid.UUID
}

// NewJournalRepo creates a new JournalRepo with a fresh run id.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool, runID: uuid.New()}
}

// RunID identifies the process run whose entries this repo holds.
func (r *JournalRepo) RunID() uuid.UUID {
	return r.runID
}

var _ ports.JournalRepository = (*JournalRepo)(nil)

const insertEntry = `INSERT INTO ledger_entries (id, run_id, account_no, seq, entry_type, channel_kind, channel_id,
		amount, balance, counterparty, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

// Append writes a batch of entries in one database transaction.
func (r *JournalRepo) Append(ctx context.Context, entries []*domain.Transaction) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, e := range entries {
		_, err := tx.Exec(ctx, insertEntry,
			e.ID, r.runID, e.AccountNo, e.Seq, string(e.Type), string(e.ChannelKind), e.ChannelID,
			e.Amount, e.Balance, e.Counterparty, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert ledger entry %s#%d: %w", e.AccountNo, e.Seq, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit journal tx: %w", err)
	}
	return nil
}

// ListByAccount returns the newest limit entries of an account written in
// this run, oldest first.
func (r *JournalRepo) ListByAccount(ctx context.Context, accountNo string, limit int) ([]domain.Transaction, error) {
	query := `SELECT id, account_no, seq, entry_type, channel_kind, channel_id, amount, balance, counterparty, created_at
		FROM (
			SELECT id, account_no, seq, entry_type, channel_kind, channel_id, amount, balance, counterparty, created_at
			FROM ledger_entries WHERE run_id = $1 AND account_no = $2 ORDER BY seq DESC LIMIT $3
		) recent ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, r.runID, accountNo, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var (
			t           domain.Transaction
			entryType   string
			channelKind string
		)
		if err := rows.Scan(&t.ID, &t.AccountNo, &t.Seq, &entryType, &channelKind, &t.ChannelID,
			&t.Amount, &t.Balance, &t.Counterparty, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		t.Type = domain.TransactionType(entryType)
		t.ChannelKind = domain.ChannelKind(channelKind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return out, nil
}
