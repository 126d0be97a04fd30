package ingest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/pulse/internal/domain"
	"github.com/gosuda/pulse/internal/ingest"
)

func validRecord() map[string]any {
	return map[string]any{
		"event_type": "PreToolUse",
		"session_id": "sess-1",
		"trace_id":   "trace-1",
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing_event_type", func(r map[string]any) { delete(r, "event_type") }},
		{"missing_session_id", func(r map[string]any) { delete(r, "session_id") }},
		{"missing_trace_id", func(r map[string]any) { delete(r, "trace_id") }},
		{"empty_event_type", func(r map[string]any) { r["event_type"] = "" }},
		{"whitespace_session_id", func(r map[string]any) { r["session_id"] = "   " }},
		{"non_string_trace_id", func(r map[string]any) { r["trace_id"] = 42.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := validRecord()
			tt.mutate(record)

			_, err := ingest.Validate(record, now)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestValidate_Timestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("absent_defaults_to_server_time", func(t *testing.T) {
		t.Parallel()

		e, err := ingest.Validate(validRecord(), now)
		require.NoError(t, err)
		assert.Equal(t, now.UnixMilli(), e.Timestamp)
	})

	t.Run("client_supplied", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["timestamp"] = 1700000000123.0

		e, err := ingest.Validate(record, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000123), e.Timestamp)
	})

	t.Run("numeric_string_accepted", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["timestamp"] = "1700000000123"

		e, err := ingest.Validate(record, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000123), e.Timestamp)
	})

	t.Run("rejects_invalid", func(t *testing.T) {
		t.Parallel()

		for _, bad := range []any{0.0, -5.0, "soon", true, []any{1}} {
			record := validRecord()
			record["timestamp"] = bad

			_, err := ingest.Validate(record, now)
			assert.ErrorIs(t, err, domain.ErrValidation, "timestamp=%v", bad)
		}
	})
}

func TestValidate_Tags(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("non_string_elements_dropped", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["tags"] = []any{"ci", 7.0, "prod", nil, true}

		e, err := ingest.Validate(record, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"ci", "prod"}, e.Tags)
	})

	t.Run("non_array_rejected", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["tags"] = "ci"

		_, err := ingest.Validate(record, now)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("absent_defaults_to_empty", func(t *testing.T) {
		t.Parallel()

		e, err := ingest.Validate(validRecord(), now)
		require.NoError(t, err)
		assert.Empty(t, e.Tags)
		assert.NotNil(t, e.Tags)
	})
}

func TestValidate_Normalization(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("parent_null_string_means_root", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["parent_session_id"] = "null"

		e, err := ingest.Validate(record, now)
		require.NoError(t, err)
		assert.Nil(t, e.ParentSessionID)
	})

	t.Run("parent_preserved", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["parent_session_id"] = "lead"

		e, err := ingest.Validate(record, now)
		require.NoError(t, err)
		require.NotNil(t, e.ParentSessionID)
		assert.Equal(t, "lead", *e.ParentSessionID)
	})

	t.Run("source_app_defaults_to_unknown", func(t *testing.T) {
		t.Parallel()

		e, err := ingest.Validate(validRecord(), now)
		require.NoError(t, err)
		assert.Equal(t, "unknown", e.SourceApp)
	})

	t.Run("non_object_payload_replaced", func(t *testing.T) {
		t.Parallel()

		for _, bad := range []any{nil, []any{"a"}, "text", 3.0} {
			record := validRecord()
			record["payload"] = bad

			e, err := ingest.Validate(record, now)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{}, e.Payload, "payload=%v", bad)
		}
	})

	t.Run("object_payload_passed_through", func(t *testing.T) {
		t.Parallel()

		record := validRecord()
		record["payload"] = map[string]any{"tool_name": "Bash", "command": "ls"}

		e, err := ingest.Validate(record, now)
		require.NoError(t, err)
		assert.Equal(t, "Bash", e.Payload["tool_name"])
	})
}
