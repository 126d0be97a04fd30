package pruner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/pulse/internal/domain"
	"github.com/gosuda/pulse/internal/pruner"
)

type mockEventRepo struct {
	deleteOlderThanFunc func(ctx context.Context, cutoffMs int64) (int64, error)
}

func (m *mockEventRepo) Append(context.Context, *domain.Event) (int64, error) {
	panic("not used")
}

func (m *mockEventRepo) Query(context.Context, domain.EventFilter, int, int) ([]*domain.Event, int64, error) {
	panic("not used")
}

func (m *mockEventRepo) DistinctValues(context.Context) (*domain.FilterOptions, error) {
	panic("not used")
}

func (m *mockEventRepo) DeleteOlderThan(ctx context.Context, cutoffMs int64) (int64, error) {
	return m.deleteOlderThanFunc(ctx, cutoffMs)
}

func TestSweep_CutoffIsNowMinusTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ttl := 7 * 24 * time.Hour

	var gotCutoff int64
	repo := &mockEventRepo{
		deleteOlderThanFunc: func(_ context.Context, cutoffMs int64) (int64, error) {
			gotCutoff = cutoffMs
			return 3, nil
		},
	}

	p := pruner.New(repo, ttl, time.Hour)
	deleted, err := p.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, now.Add(-ttl).UnixMilli(), gotCutoff)
}

func TestSweep_SurfacesStorageFault(t *testing.T) {
	t.Parallel()

	repo := &mockEventRepo{
		deleteOlderThanFunc: func(context.Context, int64) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}

	p := pruner.New(repo, time.Hour, time.Hour)
	_, err := p.Sweep(context.Background(), time.Now())
	require.Error(t, err)
}

func TestRun_SweepsImmediatelyAndSurvivesFaults(t *testing.T) {
	t.Parallel()

	calls := make(chan struct{}, 4)
	repo := &mockEventRepo{
		deleteOlderThanFunc: func(context.Context, int64) (int64, error) {
			calls <- struct{}{}
			// The first sweep fails; Run must keep ticking.
			return 0, errors.New("locked")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := pruner.New(repo, time.Hour, 10*time.Millisecond)
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// Immediate sweep plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("expected sweep call")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
