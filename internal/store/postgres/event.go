package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/pulse/internal/domain"
)

const (
	// Query limit is clamped to maxQueryLimit to bound scan cost; defaults
	// to defaultQueryLimit when the caller passes zero.
	maxQueryLimit     = 500
	defaultQueryLimit = 200

	// DistinctValues caps the session list to the most recently active
	// identifiers so a long-lived log cannot blow up the dropdown query.
	maxDistinctSessions = 200

	// DeleteOlderThan works in bounded batches so a large backlog deletion
	// never holds one long transaction open against concurrent writers.
	pruneBatchSize = 5000
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// storageErr tags an underlying pg failure with the domain sentinel so the
// API layer can map it to a server-side fault.
func storageErr(caller string, err error) error {
	return fmt.Errorf("%s: %w: %w", caller, domain.ErrStorage, err)
}

func (r *EventRepo) Append(ctx context.Context, e *domain.Event) (int64, error) {
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return 0, fmt.Errorf("eventRepo.Append: marshal tags: %w", err)
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return 0, fmt.Errorf("eventRepo.Append: marshal payload: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO events (session_id, event_type, source_app, payload, tags, parent_session_id, trace_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		e.SessionID, e.EventType, e.SourceApp, payload, tags,
		e.ParentSessionID, e.TraceID, e.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("eventRepo.Append", err)
	}

	e.ID = id
	return id, nil
}

// filterClause builds the WHERE clause shared by Query's count and page
// statements. All filters are ANDed; Tag tests membership in the JSONB tag
// array via the ? operator.
func filterClause(f domain.EventFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.SourceApp != "" {
		add("source_app = $%d", f.SourceApp)
	}
	if f.SessionID != "" {
		add("session_id = $%d", f.SessionID)
	}
	if f.EventType != "" {
		add("event_type = $%d", f.EventType)
	}
	if f.Tag != "" {
		add("tags ? $%d", f.Tag)
	}
	if f.Since > 0 {
		add("created_at > $%d", f.Since)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *EventRepo) Query(ctx context.Context, f domain.EventFilter, limit, offset int) ([]*domain.Event, int64, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	if offset < 0 {
		offset = 0
	}

	where, args := filterClause(f)

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM events"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, storageErr("eventRepo.Query", err)
	}

	pageArgs := append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(
			`SELECT id, session_id, event_type, source_app, payload, tags, parent_session_id, trace_id, created_at
			 FROM events%s
			 ORDER BY created_at DESC, id DESC
			 LIMIT $%d OFFSET $%d`,
			where, len(args)+1, len(args)+2),
		pageArgs...,
	)
	if err != nil {
		return nil, 0, storageErr("eventRepo.Query", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows, "eventRepo.Query")
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *EventRepo) DistinctValues(ctx context.Context) (*domain.FilterOptions, error) {
	opts := &domain.FilterOptions{
		SourceApps: []string{},
		Sessions:   []string{},
		EventTypes: []string{},
		Tags:       []string{},
	}

	queries := []struct {
		sql  string
		dest *[]string
	}{
		{`SELECT DISTINCT source_app FROM events ORDER BY source_app`, &opts.SourceApps},
		{`SELECT DISTINCT event_type FROM events ORDER BY event_type`, &opts.EventTypes},
		{fmt.Sprintf(
			`SELECT session_id FROM (
				SELECT session_id, max(created_at) AS last_seen
				FROM events GROUP BY session_id
				ORDER BY last_seen DESC LIMIT %d
			 ) recent`, maxDistinctSessions), &opts.Sessions},
		{`SELECT DISTINCT tag FROM events, jsonb_array_elements_text(tags) AS tag ORDER BY tag`, &opts.Tags},
	}

	for _, q := range queries {
		rows, err := r.pool.Query(ctx, q.sql)
		if err != nil {
			return nil, storageErr("eventRepo.DistinctValues", err)
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, storageErr("eventRepo.DistinctValues", err)
			}
			*q.dest = append(*q.dest, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, storageErr("eventRepo.DistinctValues", err)
		}
		rows.Close()
	}

	return opts, nil
}

func (r *EventRepo) DeleteOlderThan(ctx context.Context, cutoffMs int64) (int64, error) {
	var total int64
	for {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM events WHERE id IN (
				SELECT id FROM events WHERE created_at < $1 LIMIT $2
			 )`,
			cutoffMs, pruneBatchSize,
		)
		if err != nil {
			return total, storageErr("eventRepo.DeleteOlderThan", err)
		}

		total += tag.RowsAffected()
		if tag.RowsAffected() < pruneBatchSize {
			return total, nil
		}
	}
}

func scanEvents(rows pgx.Rows, caller string) ([]*domain.Event, error) {
	events := []*domain.Event{}
	for rows.Next() {
		var e domain.Event
		var payload, tags []byte

		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.EventType, &e.SourceApp,
			&payload, &tags, &e.ParentSessionID, &e.TraceID, &e.Timestamp,
		); err != nil {
			return nil, storageErr(caller+": scan", err)
		}
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("%s: unmarshal payload: %w", caller, err)
		}
		if err := json.Unmarshal(tags, &e.Tags); err != nil {
			return nil, fmt.Errorf("%s: unmarshal tags: %w", caller, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(caller+": rows", err)
	}

	return events, nil
}
