// Package ingest normalizes inbound hook records into domain events. It runs
// before any storage attempt; the store is never asked to persist an invalid
// event.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gosuda/pulse/internal/domain"
)

var requiredStringFields = []string{"event_type", "session_id", "trace_id"}

// Validate checks a raw inbound record and produces a normalized Event.
// Failures wrap domain.ErrValidation and name the offending field.
func Validate(raw map[string]any, now time.Time) (*domain.Event, error) {
	for _, field := range requiredStringFields {
		s, ok := raw[field].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("missing or invalid required field %q: %w", field, domain.ErrValidation)
		}
	}

	timestamp := now.UnixMilli()
	if v, present := raw["timestamp"]; present {
		ts, ok := toNumber(v)
		if !ok || math.IsNaN(ts) || math.IsInf(ts, 0) || ts <= 0 {
			return nil, fmt.Errorf("timestamp must be a positive finite number: %w", domain.ErrValidation)
		}
		timestamp = int64(math.Round(ts))
	}

	var tags []string
	if v, present := raw["tags"]; present {
		arr, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("tags must be an array: %w", domain.ErrValidation)
		}
		// Non-string elements are dropped, not errors.
		tags = make([]string, 0, len(arr))
		for _, t := range arr {
			if s, isStr := t.(string); isStr {
				tags = append(tags, s)
			}
		}
	}
	if tags == nil {
		tags = []string{}
	}

	// Producers serialize an absent parent as the literal string "null";
	// both spellings mean root.
	var parent *string
	if s, ok := raw["parent_session_id"].(string); ok && s != "null" {
		parent = &s
	}

	sourceApp := "unknown"
	if s, ok := raw["source_app"].(string); ok && s != "" {
		sourceApp = s
	}

	payload, ok := raw["payload"].(map[string]any)
	if !ok {
		payload = map[string]any{}
	}

	return &domain.Event{
		EventType:       raw["event_type"].(string),
		SessionID:       raw["session_id"].(string),
		TraceID:         raw["trace_id"].(string),
		ParentSessionID: parent,
		SourceApp:       sourceApp,
		Tags:            tags,
		Payload:         payload,
		Timestamp:       timestamp,
	}, nil
}

// toNumber coerces the JSON representations a producer may use for the
// timestamp field. Booleans, objects and arrays are rejected.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
