package v1_test

import (
	"context"

	"github.com/gosuda/pulse/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	events domain.EventRepository
}

func (m *mockDataStore) Events() domain.EventRepository { return m.events }

// ---------------------------------------------------------------------------
// Mock EventRepository
// ---------------------------------------------------------------------------

type mockEventRepo struct {
	appendFunc         func(ctx context.Context, e *domain.Event) (int64, error)
	queryFunc          func(ctx context.Context, f domain.EventFilter, limit, offset int) ([]*domain.Event, int64, error)
	distinctValuesFunc func(ctx context.Context) (*domain.FilterOptions, error)
	deleteFunc         func(ctx context.Context, cutoffMs int64) (int64, error)
}

func (m *mockEventRepo) Append(ctx context.Context, e *domain.Event) (int64, error) {
	return m.appendFunc(ctx, e)
}

func (m *mockEventRepo) Query(ctx context.Context, f domain.EventFilter, limit, offset int) ([]*domain.Event, int64, error) {
	return m.queryFunc(ctx, f, limit, offset)
}

func (m *mockEventRepo) DistinctValues(ctx context.Context) (*domain.FilterOptions, error) {
	return m.distinctValuesFunc(ctx)
}

func (m *mockEventRepo) DeleteOlderThan(ctx context.Context, cutoffMs int64) (int64, error) {
	return m.deleteFunc(ctx, cutoffMs)
}

// ---------------------------------------------------------------------------
// Mock Broadcaster
// ---------------------------------------------------------------------------

type mockBroadcaster struct {
	published []any
	clients   int
}

func (m *mockBroadcaster) Publish(v any) { m.published = append(m.published, v) }

func (m *mockBroadcaster) ClientCount() int { return m.clients }
