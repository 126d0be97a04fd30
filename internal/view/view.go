// Package view derives session-level state from the raw event log. Every
// view is a pure function over a snapshot slice ordered newest-first (the
// order the store's Query returns) plus, where time matters, an explicit
// evaluation instant. Nothing here caches or mutates: views are recomputed
// from the log on every call, which is cheap because retention bounds the
// log size.
package view

import "math"

// payloadString returns the payload field as a string, or fallback when the
// field is absent or not a string.
func payloadString(p map[string]any, key, fallback string) string {
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// payloadInt coerces a payload field to a non-negative integer. Non-numeric,
// missing, negative, and non-finite values all collapse to zero; token
// counts are never an error source.
func payloadInt(p map[string]any, key string) int64 {
	switch n := p[key].(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return 0
		}
		return int64(n)
	case int64:
		if n < 0 {
			return 0
		}
		return n
	case int:
		if n < 0 {
			return 0
		}
		return int64(n)
	default:
		return 0
	}
}

// payloadBool reports whether a payload flag is set.
func payloadBool(p map[string]any, key string) bool {
	b, ok := p[key].(bool)
	return ok && b
}
