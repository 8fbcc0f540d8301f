package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
	"github.com/sensorstream/windowpack/section"
)

func testStreamRecords() []Record {
	return []Record{
		&NewExemplar{Slot: 0, WindowStart: 1_000_000, Window: constWindow(99, 1_000_000, 4, 1.5)},
		&Reference{Slot: 0, WindowStart: 5_000_000, Count: 4},
		&NewExemplar{Slot: 1, WindowStart: 9_000_000, Window: constWindow(99, 9_000_000, 4, -3.25)},
		&Reference{Slot: 1, WindowStart: 13_000_000, Count: 4},
	}
}

func writeTestStream(t *testing.T, compression format.CompressionType, records []Record) []byte {
	t.Helper()

	header, err := section.NewStreamHeader(99, 4, 2, 1)
	require.NoError(t, err)
	header.Flag.SetCompression(compression)

	sw, err := NewStreamWriter(header)
	require.NoError(t, err)
	defer sw.Close()

	for _, rec := range records {
		require.NoError(t, sw.Append(rec))
	}

	return sw.Bytes()
}

func TestStream_RoundTrip(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, compression := range compressions {
		t.Run(compression.String(), func(t *testing.T) {
			records := testStreamRecords()
			data := writeTestStream(t, compression, records)

			sr, err := NewStreamReader(data)
			require.NoError(t, err)
			require.Equal(t, uint64(99), sr.Header().DeviceID)
			require.Equal(t, uint32(4), sr.Header().RecordCount)
			require.Equal(t, int64(1_000_000), sr.Header().StartTime)

			decoded, err := sr.Records()
			require.NoError(t, err)
			require.Equal(t, records, decoded)
		})
	}
}

func TestStream_WriterIsDeterministic(t *testing.T) {
	first := writeTestStream(t, format.CompressionNone, testStreamRecords())
	second := writeTestStream(t, format.CompressionNone, testStreamRecords())
	require.Equal(t, first, second)
}

func TestStream_ReaderIsReReadable(t *testing.T) {
	data := writeTestStream(t, format.CompressionS2, testStreamRecords())

	sr, err := NewStreamReader(data)
	require.NoError(t, err)

	firstPass, err := sr.Records()
	require.NoError(t, err)

	sr.Reset()
	secondPass, err := sr.Records()
	require.NoError(t, err)
	require.Equal(t, firstPass, secondPass)
}

func TestStream_FinishedWriterRejectsAppend(t *testing.T) {
	header, err := section.NewStreamHeader(1, 4, 2, 1)
	require.NoError(t, err)

	sw, err := NewStreamWriter(header)
	require.NoError(t, err)
	defer sw.Close()

	_ = sw.Bytes()
	err = sw.Append(&Reference{Slot: 0, WindowStart: 0, Count: 4})
	require.ErrorIs(t, err, errs.ErrSessionClosed)
}

func TestStream_CorruptionErrors(t *testing.T) {
	t.Run("BadHeader", func(t *testing.T) {
		_, err := NewStreamReader(make([]byte, 10))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("TruncatedFrames", func(t *testing.T) {
		data := writeTestStream(t, format.CompressionNone, testStreamRecords())

		sr, err := NewStreamReader(data[:len(data)-5])
		require.NoError(t, err)

		_, err = sr.Records()
		require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	})

	t.Run("MissingRecords", func(t *testing.T) {
		// drop the last frame entirely; the header's record count exposes it
		data := writeTestStream(t, format.CompressionNone, testStreamRecords())

		sr, err := NewStreamReader(data[:len(data)-section.RecordHeaderSize])
		require.NoError(t, err)

		_, err = sr.Records()
		require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	})
}

func TestStream_EndToEnd(t *testing.T) {
	// compress → serialize → parse → replay, checking the reconstruction
	header, err := section.NewStreamHeader(77, 4, 2, 1)
	require.NoError(t, err)
	header.Flag.SetCompression(format.CompressionZstd)

	sw, err := NewStreamWriter(header)
	require.NoError(t, err)
	defer sw.Close()

	c, err := NewCompressor(77, sw,
		WithWindowSize(4),
		WithPoolCapacity(2),
		FixedThreshold(0.05),
	)
	require.NoError(t, err)

	require.NoError(t, c.Push(constWindowSamples(77, 0, 4, 1.0)...))
	require.NoError(t, c.Push(constWindowSamples(77, 4_000_000, 4, 1.01)...))
	require.NoError(t, c.Push(constWindowSamples(77, 8_000_000, 4, 1.5)...))
	require.NoError(t, c.Finish())

	sr, err := NewStreamReader(sw.Bytes())
	require.NoError(t, err)
	records, err := sr.Records()
	require.NoError(t, err)
	require.Len(t, records, 3)

	d, err := NewDecompressor(77, int(sr.Header().PoolCapacity))
	require.NoError(t, err)
	windows, err := d.ApplyAll(records)
	require.NoError(t, err)

	require.Equal(t, []float64{1, 1, 1, 1}, windows[0].Values)
	require.Equal(t, []float64{1, 1, 1, 1}, windows[1].Values) // approximated by slot 0
	require.Equal(t, []float64{1.5, 1.5, 1.5, 1.5}, windows[2].Values)
}
