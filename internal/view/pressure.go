package view

import (
	"time"

	"github.com/gosuda/pulse/internal/domain"
)

type PressureStatus string

const (
	PressureGreen PressureStatus = "green"
	PressureAmber PressureStatus = "amber"
	PressureRed   PressureStatus = "red"
)

// pressureWindowMs is the trailing window in which PreCompact events count
// toward context pressure.
const pressureWindowMs = 10 * 60 * 1000

type SessionPressure struct {
	Status       PressureStatus `json:"status"`
	CompactCount int            `json:"compact_count"`
	FillPercent  int            `json:"fill_percent"`
}

// ContextPressure rates each session by PreCompact events in the trailing
// ten minutes: three or more is red (a compaction spiral), exactly two is
// amber, fewer is green. FillPercent is a display hint, 40 points per
// compaction capped at 100.
func ContextPressure(events []*domain.Event, now time.Time) map[string]SessionPressure {
	nowMs := now.UnixMilli()
	windowStart := nowMs - pressureWindowMs

	counts := make(map[string]int)
	for _, e := range events {
		if _, seen := counts[e.SessionID]; !seen {
			counts[e.SessionID] = 0
		}
		if e.EventType == domain.EventPreCompact && e.Timestamp >= windowStart {
			counts[e.SessionID]++
		}
	}

	result := make(map[string]SessionPressure)
	for sid, count := range counts {
		fill := count * 40
		if fill > 100 {
			fill = 100
		}

		status := PressureGreen
		switch {
		case count >= 3:
			status = PressureRed
		case fill >= 80:
			status = PressureAmber
		}

		result[sid] = SessionPressure{Status: status, CompactCount: count, FillPercent: fill}
	}

	return result
}
