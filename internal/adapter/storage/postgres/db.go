package postgres

import (
	"context"
	"fmt"

	"retail-bank-ledger/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Pool is the subset of *pgxpool.Pool the repositories use.
// pgxmock pools satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewPool creates a PostgreSQL connection pool using pgx.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

// Sequence numbers restart with every process, so journal rows are keyed by
// the run that wrote them. The ALTER statements upgrade tables created
// before run_id existed.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id           UUID PRIMARY KEY,
		run_id       UUID        NOT NULL,
		account_no   TEXT        NOT NULL,
		seq          INTEGER     NOT NULL,
		entry_type   TEXT        NOT NULL,
		channel_kind TEXT        NOT NULL,
		channel_id   TEXT        NOT NULL,
		amount       NUMERIC     NOT NULL,
		balance      NUMERIC     NOT NULL,
		counterparty TEXT        NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`ALTER TABLE ledger_entries ADD COLUMN IF NOT EXISTS run_id UUID NOT NULL DEFAULT '00000000-0000-0000-0000-000000000000'`,
	`ALTER TABLE ledger_entries DROP CONSTRAINT IF EXISTS ledger_entries_account_no_seq_key`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ledger_entries_run_account_seq ON ledger_entries (run_id, account_no, seq)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id            UUID PRIMARY KEY,
		channel_id    TEXT        NOT NULL DEFAULT '',
		action        TEXT        NOT NULL,
		resource_type TEXT        NOT NULL,
		resource_id   TEXT        NOT NULL DEFAULT '',
		details       JSONB,
		ip_address    TEXT        NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the journal and audit tables if they are missing.
func EnsureSchema(ctx context.Context, pool Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
