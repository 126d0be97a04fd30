package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/pulse/internal/domain"
)

type Store struct {
	pool   *pgxpool.Pool
	events *EventRepo
}

// schema is applied on every startup; all statements are idempotent.
// created_at holds the resolved event timestamp in epoch milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		session_id        TEXT   NOT NULL,
		event_type        TEXT   NOT NULL,
		source_app        TEXT   NOT NULL DEFAULT 'unknown',
		payload           JSONB  NOT NULL DEFAULT '{}',
		tags              JSONB  NOT NULL DEFAULT '[]',
		parent_session_id TEXT,
		trace_id          TEXT   NOT NULL,
		created_at        BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session    ON events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_event_type ON events(event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_source_app ON events(source_app)`,
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres.New: apply schema: %w", err)
		}
	}

	return &Store{
		pool:   pool,
		events: NewEventRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Events() domain.EventRepository { return s.events }
