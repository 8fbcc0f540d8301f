package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeanAbsoluteDistance(t *testing.T) {
	require.Zero(t, MeanAbsoluteDistance(nil, nil))
	require.Zero(t, MeanAbsoluteDistance([]float64{1, 2, 3}, []float64{1, 2, 3}))
	require.InDelta(t, 0.5, MeanAbsoluteDistance([]float64{0, 0}, []float64{1, 0}), 1e-12)
	require.InDelta(t, 2.0, MeanAbsoluteDistance([]float64{1, -1}, []float64{-1, 1}), 1e-12)

	// symmetric
	a, b := []float64{1, 5, 9}, []float64{2, 3, 4}
	require.Equal(t, MeanAbsoluteDistance(a, b), MeanAbsoluteDistance(b, a))
}

func constWindow(device uint64, start int64, count int, value float64) Window {
	values := make([]float64, count)
	for i := range values {
		values[i] = value
	}

	return Window{Device: device, StartTime: start, Count: count, Arity: 1, Values: values}
}

func TestNearest(t *testing.T) {
	t.Run("EmptyPool", func(t *testing.T) {
		p, err := NewPool(4)
		require.NoError(t, err)

		w := constWindow(1, 0, 4, 1)
		slot, dist := Nearest(&w, p, MeanAbsoluteDistance)
		require.Equal(t, NoSlot, slot)
		require.True(t, math.IsInf(dist, 1))
	})

	t.Run("PicksClosest", func(t *testing.T) {
		p, err := NewPool(4)
		require.NoError(t, err)
		p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 10))
		p.CommitInsert(p.PlanInsert(), constWindow(1, 4, 4, 20))

		w := constWindow(1, 8, 4, 19)
		slot, dist := Nearest(&w, p, MeanAbsoluteDistance)
		require.Equal(t, 1, slot)
		require.InDelta(t, 1.0, dist, 1e-12)
	})

	t.Run("ShapeMismatchSkipped", func(t *testing.T) {
		p, err := NewPool(4)
		require.NoError(t, err)
		p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 1))

		short := constWindow(1, 8, 3, 1)
		slot, dist := Nearest(&short, p, MeanAbsoluteDistance)
		require.Equal(t, NoSlot, slot)
		require.True(t, math.IsInf(dist, 1))
	})

	t.Run("TieKeepsLowerSlot", func(t *testing.T) {
		p, err := NewPool(4)
		require.NoError(t, err)
		p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 5))
		p.CommitInsert(p.PlanInsert(), constWindow(1, 4, 4, 5))

		w := constWindow(1, 8, 4, 6)
		slot, _ := Nearest(&w, p, MeanAbsoluteDistance)
		require.Equal(t, 0, slot)
	})
}
