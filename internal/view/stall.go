package view

import (
	"time"

	"github.com/gosuda/pulse/internal/domain"
)

// StallThresholdMs is how long a live session may stay silent before it is
// reported as stalled.
const StallThresholdMs = 60_000

type StallInfo struct {
	ElapsedMs     int64  `json:"elapsed_ms"`
	LastEventType string `json:"last_event_type"`
}

// StalledSessions reports unstopped sessions whose most recent event is older
// than the stall threshold at the given instant. A session with any Stop,
// SubagentStop, or SessionEnd event is never stalled, regardless of arrival
// order. This is a point-in-time judgment, not a background timer.
func StalledSessions(events []*domain.Event, now time.Time) map[string]StallInfo {
	type last struct {
		timestamp int64
		eventType string
	}

	stopped := make(map[string]bool)
	lastBySession := make(map[string]last)

	for _, e := range events {
		switch e.EventType {
		case domain.EventStop, domain.EventSubagentStop, domain.EventSessionEnd:
			stopped[e.SessionID] = true
		}
		if cur, ok := lastBySession[e.SessionID]; !ok || e.Timestamp > cur.timestamp {
			lastBySession[e.SessionID] = last{timestamp: e.Timestamp, eventType: e.EventType}
		}
	}

	nowMs := now.UnixMilli()
	stalled := make(map[string]StallInfo)
	for sid, l := range lastBySession {
		if stopped[sid] {
			continue
		}
		elapsed := nowMs - l.timestamp
		if elapsed > StallThresholdMs {
			stalled[sid] = StallInfo{ElapsedMs: elapsed, LastEventType: l.eventType}
		}
	}

	return stalled
}
