package domain

import "context"

// Event is one immutable record of an agent lifecycle occurrence. Events are
// append-only: once stored they are never updated, only deleted whole by the
// retention pruner.
type Event struct {
	ID        int64  `json:"id"`
	EventType string `json:"event_type"`
	SessionID string `json:"session_id"`
	TraceID   string `json:"trace_id"`
	// ParentSessionID links a subagent to the session that spawned it. Nil
	// means root. Producers sometimes send the literal string "null"; the
	// ingest validator normalizes that to nil before the event reaches here.
	ParentSessionID *string        `json:"parent_session_id,omitempty"`
	SourceApp       string         `json:"source_app"`
	Tags            []string       `json:"tags"`
	Payload         map[string]any `json:"payload"`
	Timestamp       int64          `json:"timestamp"` // epoch milliseconds
}

// Stopped event types mark a session as finished regardless of arrival order.
const (
	EventSessionStart       = "SessionStart"
	EventSessionEnd         = "SessionEnd"
	EventStop               = "Stop"
	EventSubagentStart      = "SubagentStart"
	EventSubagentStop       = "SubagentStop"
	EventPreToolUse         = "PreToolUse"
	EventPostToolUse        = "PostToolUse"
	EventPostToolUseFailure = "PostToolUseFailure"
	EventPreCompact         = "PreCompact"
)

// EventFilter is an exact-match conjunction over event columns. Zero values
// mean "no constraint". Tag matches membership in the event's tag set; Since
// is an exclusive epoch-ms lower bound.
type EventFilter struct {
	SourceApp string
	SessionID string
	EventType string
	Tag       string
	Since     int64
}

// FilterOptions holds the distinct values currently present in the log, used
// to populate dashboard filter dropdowns.
type FilterOptions struct {
	SourceApps []string `json:"source_apps"`
	Sessions   []string `json:"sessions"`
	EventTypes []string `json:"event_types"`
	Tags       []string `json:"tags"`
}

// EventRepository is the durable event log.
type EventRepository interface {
	// Append inserts one event and returns the assigned id. The id sequence
	// is strictly increasing in insertion order.
	Append(ctx context.Context, e *Event) (int64, error)
	// Query returns matching events ordered newest-first (timestamp desc,
	// id desc for same-millisecond bursts) plus the total match count
	// before limit/offset.
	Query(ctx context.Context, f EventFilter, limit, offset int) ([]*Event, int64, error)
	// DistinctValues lists current filter choices. Sessions are capped to
	// the most recently active ones.
	DistinctValues(ctx context.Context) (*FilterOptions, error)
	// DeleteOlderThan removes events with timestamp < cutoffMs and returns
	// the number deleted.
	DeleteOlderThan(ctx context.Context, cutoffMs int64) (int64, error)
}
