package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hookScope/internal/model"
	"hookScope/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS chain_events (
	event_key    TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	tx_id        TEXT NOT NULL,
	event_index  INTEGER NOT NULL,
	block_height BIGINT NOT NULL,
	block_hash   TEXT NOT NULL,
	ts           TIMESTAMPTZ NOT NULL,
	sender       TEXT NOT NULL,
	is_whale     BOOLEAN NOT NULL,
	data         JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chain_events_kind_ts ON chain_events (kind, ts DESC);
`

// Store archives events in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the archive table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate chain_events: %w", err)
	}
	return nil
}

// PutEvents inserts events, ignoring keys that are already archived.
func (s *Store) PutEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		record, err := storage.NewRecord(ev)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO chain_events (
				event_key, kind, tx_id, event_index, block_height, block_hash, ts, sender, is_whale, data
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (event_key) DO NOTHING
		`,
			record.Key,
			string(record.Kind),
			record.TxID,
			record.EventIndex,
			int64(record.BlockHeight),
			record.BlockHash,
			time.Unix(record.Timestamp, 0).UTC(),
			record.Sender,
			record.IsWhale,
			[]byte(record.Data),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert chain event: %w", err)
		}
	}
	return nil
}
