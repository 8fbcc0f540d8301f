package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
	"github.com/sensorstream/windowpack/stats"
)

// constWindowSamples builds windowSize arity-1 samples holding value,
// starting at start with 1s spacing.
func constWindowSamples(device uint64, start int64, windowSize int, value float64) []Sample {
	values := make([]float64, windowSize)
	for i := range values {
		values[i] = value
	}

	return scalarSamples(device, start, values...)
}

func TestCompressor_MatchScenario(t *testing.T) {
	// Window size 4, capacity 2, threshold pinned at 0.05. Window 2 sits
	// 0.01 from window 1, window 3 sits 0.5 from both.
	var records Records
	c, err := NewCompressor(1, &records,
		WithWindowSize(4),
		WithPoolCapacity(2),
		FixedThreshold(0.05),
	)
	require.NoError(t, err)
	require.Equal(t, StateIdle, c.State())

	require.NoError(t, c.Push(constWindowSamples(1, 0, 4, 1.0)...))
	require.Equal(t, StateSteady, c.State())
	require.NoError(t, c.Push(constWindowSamples(1, 4_000_000, 4, 1.01)...))
	require.NoError(t, c.Push(constWindowSamples(1, 8_000_000, 4, 1.5)...))
	require.NoError(t, c.Finish())
	require.Equal(t, StateClosed, c.State())

	require.Len(t, records, 3)

	first, ok := records[0].(*NewExemplar)
	require.True(t, ok)
	require.Equal(t, 0, first.Slot)
	require.Equal(t, []float64{1, 1, 1, 1}, first.Window.Values)

	second, ok := records[1].(*Reference)
	require.True(t, ok)
	require.Equal(t, 0, second.Slot)
	require.Equal(t, int64(4_000_000), second.WindowStart)

	third, ok := records[2].(*NewExemplar)
	require.True(t, ok)
	require.Equal(t, 1, third.Slot)
}

func TestCompressor_EvictionChurnRoundTrip(t *testing.T) {
	// Capacity 1, three mutually dissimilar windows: every window re-inserts
	// into slot 0. Decompression must still recover all three exactly since
	// each carried its full payload.
	var records Records
	c, err := NewCompressor(9, &records,
		WithWindowSize(4),
		WithPoolCapacity(1),
		FixedThreshold(0.05),
	)
	require.NoError(t, err)

	require.NoError(t, c.Push(constWindowSamples(9, 0, 4, 1)...))
	require.NoError(t, c.Push(constWindowSamples(9, 4_000_000, 4, 10)...))
	require.NoError(t, c.Push(constWindowSamples(9, 8_000_000, 4, 100)...))
	require.NoError(t, c.Finish())

	require.Len(t, records, 3)
	for _, rec := range records {
		ne, ok := rec.(*NewExemplar)
		require.True(t, ok)
		require.Equal(t, 0, ne.Slot)
	}

	d, err := NewDecompressor(9, 1)
	require.NoError(t, err)
	windows, err := d.ApplyAll(records)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	require.Equal(t, []float64{1, 1, 1, 1}, windows[0].Values)
	require.Equal(t, []float64{10, 10, 10, 10}, windows[1].Values)
	require.Equal(t, []float64{100, 100, 100, 100}, windows[2].Values)
}

func TestCompressor_Deterministic(t *testing.T) {
	run := func() Records {
		var records Records
		c, err := NewCompressor(5, &records,
			WithWindowSize(8),
			WithPoolCapacity(3),
			WithInitialThreshold(0.2),
			WithTargetRatio(3),
		)
		require.NoError(t, err)

		for i := range 40 {
			value := float64(i%4) * 0.7
			require.NoError(t, c.Push(constWindowSamples(5, int64(i)*8_000_000, 8, value)...))
		}
		require.NoError(t, c.Finish())

		return records
	}

	first := run()
	second := run()
	require.Equal(t, first, second)
}

func TestCompressor_ClosedSessionRejectsWork(t *testing.T) {
	var records Records
	c, err := NewCompressor(1, &records, WithWindowSize(4))
	require.NoError(t, err)
	require.NoError(t, c.Finish())

	require.ErrorIs(t, c.Push(constWindowSamples(1, 0, 4, 1)...), errs.ErrSessionClosed)
	require.ErrorIs(t, c.Finish(), errs.ErrSessionClosed)
}

func TestCompressor_MalformedInputClosesSession(t *testing.T) {
	var records Records
	c, err := NewCompressor(2, &records, WithWindowSize(4))
	require.NoError(t, err)

	err = c.Push(
		Sample{Device: 2, Timestamp: 100, Values: []float64{1}},
		Sample{Device: 2, Timestamp: 90, Values: []float64{2}},
	)
	require.ErrorIs(t, err, errs.ErrMalformedInputOrder)
	require.Equal(t, StateClosed, c.State())
	require.ErrorIs(t, c.Push(constWindowSamples(2, 200, 4, 1)...), errs.ErrSessionClosed)
}

func TestCompressor_TrailingModes(t *testing.T) {
	t.Run("FlushEmitsShortFinalWindow", func(t *testing.T) {
		var records Records
		c, err := NewCompressor(1, &records,
			WithWindowSize(4),
			WithTrailingMode(format.TrailingFlush),
		)
		require.NoError(t, err)

		require.NoError(t, c.Push(scalarSamples(1, 0, 1, 2, 3, 4, 5, 6)...))
		require.NoError(t, c.Finish())

		require.Len(t, records, 2)
		short, ok := records[1].(*NewExemplar)
		require.True(t, ok)
		require.Equal(t, 2, short.Window.Count)
	})

	t.Run("BufferRetainsTail", func(t *testing.T) {
		var records Records
		c, err := NewCompressor(1, &records,
			WithWindowSize(4),
			WithTrailingMode(format.TrailingBuffer),
		)
		require.NoError(t, err)

		require.NoError(t, c.Push(scalarSamples(1, 0, 1, 2, 3, 4, 5, 6)...))
		require.Equal(t, 2, c.PendingSamples())
		require.NoError(t, c.Finish())
		require.Len(t, records, 1)
	})
}

func TestCompressor_ShortWindowOnlyMatchesEqualLength(t *testing.T) {
	// A short trailing window identical in value to a full exemplar must not
	// reference it; shapes differ.
	var records Records
	c, err := NewCompressor(1, &records,
		WithWindowSize(4),
		FixedThreshold(1.0),
	)
	require.NoError(t, err)

	require.NoError(t, c.Push(constWindowSamples(1, 0, 4, 7)...))
	require.NoError(t, c.Push(constWindowSamples(1, 4_000_000, 2, 7)...))
	require.NoError(t, c.Finish())

	require.Len(t, records, 2)
	require.IsType(t, &NewExemplar{}, records[1])
}

func TestCompressor_InvalidOptions(t *testing.T) {
	var records Records

	_, err := NewCompressor(1, &records, WithWindowSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewCompressor(1, &records, WithTargetRatio(0.5))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewCompressor(1, &records, WithControllerStep(1.5))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewCompressor(1, &records, WithThresholdBounds(0.5, 0.1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewCompressor(1, &records, WithDistanceFunc(nil))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestCompressor_GainTracksMatchFraction(t *testing.T) {
	// 200 windows: every fifth is a unique far outlier, the rest duplicate
	// the first exemplar exactly. Duplicates always match (distance 0),
	// outliers never do (distance far above the threshold ceiling), so the
	// achieved gain is a closed-form function of the match fraction.
	session := stats.NewSession()
	var records Records
	c, err := NewCompressor(3, &records,
		WithWindowSize(16),
		WithPoolCapacity(4),
		WithTargetRatio(2.8),
		WithStats(session),
	)
	require.NoError(t, err)

	for i := range 200 {
		value := 1.0
		if i%5 == 4 {
			value = 1000 + 50*float64(i)
		}
		require.NoError(t, c.Push(constWindowSamples(3, int64(i)*16_000_000, 16, value)...))
	}
	require.NoError(t, c.Finish())

	// 1 priming exemplar + 40 outliers; 159 references
	require.Equal(t, uint64(159), session.Matches)
	require.Equal(t, uint64(200), session.Windows)

	// raw 128 B/window; reference 20 B, exemplar 148 B
	want := float64(128*200) / float64(148*41+20*159)
	require.InDelta(t, want, c.Gain(), 1e-9)
	require.InDelta(t, want, session.Gain(), 1e-9)
	require.InDelta(t, 2.8, c.Gain(), 0.15)
}
