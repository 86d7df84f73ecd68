package engine

import (
	"math"
	"testing"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_TotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int
		first int
		later int
		want  int
	}{
		{name: "single record", total: 1, first: 28, later: 35, want: 1},
		{name: "fills first page", total: 28, first: 28, later: 35, want: 1},
		{name: "spills one record", total: 29, first: 28, later: 35, want: 2},
		{name: "thirty records", total: 30, first: 28, later: 35, want: 2},
		{name: "fills second page", total: 63, first: 28, later: 35, want: 2},
		{name: "third page", total: 64, first: 28, later: 35, want: 3},
		{name: "fund capacities", total: 100, first: 26, later: 31, want: 4},
		{name: "capacity of one", total: 5, first: 1, later: 1, want: 5},
		{name: "huge later capacity", total: 30, first: 28, later: math.MaxInt, want: 2},
		{name: "huge capacities", total: 30, first: math.MaxInt, later: math.MaxInt, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.total, tt.first, tt.later)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.TotalPages)

			last := plan.Page(plan.TotalPages - 1)
			assert.Equal(t, plan.TotalPages-1, last.Index)
			assert.True(t, last.RenderSummary())
			assert.Equal(t, tt.total, last.End())
		})
	}
}

func TestPlan_CoversEveryRecordOnce(t *testing.T) {
	for total := 1; total <= 120; total++ {
		for _, caps := range [][2]int{{28, 35}, {26, 31}, {1, 1}, {3, 2}} {
			plan, err := Plan(total, caps[0], caps[1])
			require.NoError(t, err)

			next := 0
			summaries := 0
			for p := 0; p < plan.TotalPages; p++ {
				s := plan.Page(p)
				require.Equal(t, next, s.Start, "total=%d caps=%v page=%d", total, caps, p)
				require.Positive(t, s.Count)
				if p == 0 {
					require.LessOrEqual(t, s.Count, caps[0])
				} else {
					require.LessOrEqual(t, s.Count, caps[1])
				}
				if s.RenderSummary() {
					summaries++
					require.Equal(t, plan.TotalPages-1, p)
				}
				next = s.End()
			}
			require.Equal(t, total, next)
			require.Equal(t, 1, summaries)

			// No smaller page count could hold every record.
			capacity := caps[0] + (plan.TotalPages-2)*caps[1]
			if plan.TotalPages > 1 {
				require.Less(t, capacity, total)
			}
		}
	}
}

func TestPlan_Slices(t *testing.T) {
	plan, err := Plan(30, 28, 35)
	require.NoError(t, err)

	start, count := plan.Slice(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 28, count)

	start, count = plan.Slice(1)
	assert.Equal(t, 28, start)
	assert.Equal(t, 2, count)

	_, count = plan.Slice(2)
	assert.Zero(t, count)
	_, count = plan.Slice(-1)
	assert.Zero(t, count)

	first, last := plan.Page(0), plan.Page(1)
	assert.True(t, first.IsFirst)
	assert.False(t, first.RenderSummary())
	assert.True(t, last.IsLast)
	assert.True(t, last.RenderSummary())
}

func TestPlan_Errors(t *testing.T) {
	_, err := Plan(0, 28, 35)
	assert.ErrorIs(t, err, common.ErrEmptyStatement)

	_, err = Plan(10, 0, 35)
	assert.ErrorIs(t, err, common.ErrInvalidCapacity)

	_, err = Plan(10, 28, -1)
	assert.ErrorIs(t, err, common.ErrInvalidCapacity)

	// Capacity is checked before the record count.
	_, err = Plan(0, 0, 0)
	assert.ErrorIs(t, err, common.ErrInvalidCapacity)
}
