package view_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/pulse/internal/domain"
	"github.com/gosuda/pulse/internal/view"
)

func TestContextPressure_Thresholds(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(20 * 60 * 1000)

	tests := []struct {
		compacts int
		want     view.PressureStatus
		fill     int
	}{
		{0, view.PressureGreen, 0},
		{1, view.PressureGreen, 40},
		{2, view.PressureAmber, 80},
		{3, view.PressureRed, 100},
		{5, view.PressureRed, 100},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_compacts", tt.compacts), func(t *testing.T) {
			t.Parallel()

			events := []*domain.Event{
				startEvent("SessionStart", "s1", "tr-1", "", now.UnixMilli()-1000, nil),
			}
			for i := 0; i < tt.compacts; i++ {
				events = append(events, startEvent("PreCompact", "s1", "tr-1", "", now.UnixMilli()-int64(i+1)*1000, nil))
			}

			pressure := view.ContextPressure(events, now)
			require.Contains(t, pressure, "s1")
			assert.Equal(t, tt.want, pressure["s1"].Status)
			assert.Equal(t, tt.compacts, pressure["s1"].CompactCount)
			assert.Equal(t, tt.fill, pressure["s1"].FillPercent)
		})
	}
}

func TestContextPressure_WindowExcludesOldCompacts(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(60 * 60 * 1000)

	events := eventsNewestFirst(
		// Three compactions, but only one inside the trailing ten minutes.
		startEvent("PreCompact", "s1", "tr-1", "", now.UnixMilli()-30*60*1000, nil),
		startEvent("PreCompact", "s1", "tr-1", "", now.UnixMilli()-20*60*1000, nil),
		startEvent("PreCompact", "s1", "tr-1", "", now.UnixMilli()-60*1000, nil),
	)

	pressure := view.ContextPressure(events, now)
	require.Contains(t, pressure, "s1")
	assert.Equal(t, view.PressureGreen, pressure["s1"].Status)
	assert.Equal(t, 1, pressure["s1"].CompactCount)
}

func TestContextPressure_EverySessionRated(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(60 * 60 * 1000)

	events := eventsNewestFirst(
		startEvent("SessionStart", "quiet", "tr-1", "", now.UnixMilli()-1000, nil),
		startEvent("PreCompact", "busy", "tr-2", "", now.UnixMilli()-1000, nil),
	)

	pressure := view.ContextPressure(events, now)
	assert.Equal(t, view.PressureGreen, pressure["quiet"].Status)
	assert.Equal(t, 0, pressure["quiet"].CompactCount)
	assert.Contains(t, pressure, "busy")
}
