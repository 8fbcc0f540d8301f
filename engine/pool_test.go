package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensorstream/windowpack/errs"
)

func TestNewPool_RejectsZeroCapacity(t *testing.T) {
	_, err := NewPool(0)
	require.ErrorIs(t, err, errs.ErrPoolInsertFailure)

	_, err = NewPool(-1)
	require.ErrorIs(t, err, errs.ErrPoolInsertFailure)
}

func TestPool_FillsLowestFreeSlotFirst(t *testing.T) {
	p, err := NewPool(3)
	require.NoError(t, err)

	for want := range 3 {
		plan := p.PlanInsert()
		require.Equal(t, want, plan.Slot)
		require.False(t, plan.Evicts)
		p.CommitInsert(plan, constWindow(1, int64(want), 4, float64(want)))
	}
	require.Equal(t, 3, p.Len())
}

func TestPool_EvictsLeastRecentlyUsed(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)
	p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 0))
	p.CommitInsert(p.PlanInsert(), constWindow(1, 4, 4, 1))

	// slot 0 was used least recently until touched
	require.NoError(t, p.Touch(0))

	plan := p.PlanInsert()
	require.True(t, plan.Evicts)
	require.Equal(t, 1, plan.Slot)

	p.CommitInsert(plan, constWindow(1, 8, 4, 2))
	require.Equal(t, 2, p.Len())

	ex, err := p.Get(1)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 2, 2, 2}, ex.Window.Values)
}

func TestPool_EvictionTieBreaksByInsertionOrder(t *testing.T) {
	// Exemplars never share a LastUsed sequence in normal operation, so force
	// the tie directly to pin the tie-break rule.
	p, err := NewPool(2)
	require.NoError(t, err)
	p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 0))
	p.CommitInsert(p.PlanInsert(), constWindow(1, 4, 4, 1))

	ex0, err := p.Get(0)
	require.NoError(t, err)
	ex1, err := p.Get(1)
	require.NoError(t, err)
	ex1.LastUsed = ex0.LastUsed

	plan := p.PlanInsert()
	require.True(t, plan.Evicts)
	require.Equal(t, 0, plan.Slot)
}

func TestPool_PlanInsertDoesNotMutate(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 0))

	plan1 := p.PlanInsert()
	plan2 := p.PlanInsert()
	require.Equal(t, plan1, plan2)
	require.Equal(t, 1, p.Len())

	ex, err := p.Get(0)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 0}, ex.Window.Values)
}

func TestPool_CapacityInvariant(t *testing.T) {
	p, err := NewPool(3)
	require.NoError(t, err)

	for i := range 20 {
		require.LessOrEqual(t, p.Len(), p.Capacity())
		p.CommitInsert(p.PlanInsert(), constWindow(1, int64(i), 4, float64(i)))
	}
	require.Equal(t, 3, p.Len())
}

func TestPool_TouchAndGetErrors(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)

	require.ErrorIs(t, p.Touch(0), errs.ErrSlotNotFound)
	require.ErrorIs(t, p.Touch(5), errs.ErrSlotNotFound)

	_, err = p.Get(-1)
	require.ErrorIs(t, err, errs.ErrSlotNotFound)

	p.CommitInsert(p.PlanInsert(), constWindow(1, 0, 4, 1))
	ex, err := p.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ex.UseCount)

	require.NoError(t, p.Touch(0))
	require.Equal(t, uint64(2), ex.UseCount)
}
