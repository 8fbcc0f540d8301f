package engine

import (
	"fmt"

	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/format"
)

// Segmenter slices one device's ordered sample stream into non-overlapping
// windows of a fixed length. Timestamps must be strictly increasing; an
// out-of-order or duplicate timestamp fails the session with
// ErrMalformedInputOrder naming the device and the absolute sample index.
//
// A partial tail (fewer than windowSize samples at the end of the input) is
// held in an internal buffer. What happens to it at session end depends on
// the trailing mode, see Flush.
type Segmenter struct {
	device     uint64
	windowSize int
	arity      int
	mode       format.TrailingMode

	values []float64 // buffered tail, row-major
	times  []int64   // timestamps of buffered samples

	lastTime int64
	seen     uint64 // total samples consumed, for error reporting
}

// NewSegmenter creates a segmenter for one device. windowSize and arity must
// be positive.
func NewSegmenter(device uint64, windowSize, arity int, mode format.TrailingMode) (*Segmenter, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size %d must be positive", errs.ErrInvalidConfig, windowSize)
	}
	if arity <= 0 {
		return nil, fmt.Errorf("%w: arity %d must be positive", errs.ErrInvalidConfig, arity)
	}
	switch mode {
	case format.TrailingFlush, format.TrailingBuffer:
	default:
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrInvalidTrailingMode, uint8(mode))
	}

	return &Segmenter{
		device:     device,
		windowSize: windowSize,
		arity:      arity,
		mode:       mode,
		values:     make([]float64, 0, windowSize*arity),
		times:      make([]int64, 0, windowSize),
	}, nil
}

// Push consumes a batch of samples and returns the complete windows they
// finish, in order. The batch may be any size; leftovers stay buffered for
// the next call.
func (s *Segmenter) Push(samples ...Sample) ([]Window, error) {
	var windows []Window

	for _, sample := range samples {
		if len(sample.Values) != s.arity {
			return windows, fmt.Errorf("%w: device %d sample %d has %d values, want %d",
				errs.ErrArityMismatch, s.device, s.seen, len(sample.Values), s.arity)
		}
		if s.seen > 0 && sample.Timestamp <= s.lastTime {
			return windows, fmt.Errorf("%w: device %d sample %d timestamp %d not after %d",
				errs.ErrMalformedInputOrder, s.device, s.seen, sample.Timestamp, s.lastTime)
		}

		s.values = append(s.values, sample.Values...)
		s.times = append(s.times, sample.Timestamp)
		s.lastTime = sample.Timestamp
		s.seen++

		if len(s.times) == s.windowSize {
			windows = append(windows, s.cut())
		}
	}

	return windows, nil
}

// Flush returns the buffered partial tail as a short final window, or nil if
// nothing should be emitted. In TrailingFlush mode a non-empty tail becomes a
// short window; in TrailingBuffer mode the tail is retained (Pending reports
// its size) and nil is returned.
func (s *Segmenter) Flush() *Window {
	if s.mode != format.TrailingFlush || len(s.times) == 0 {
		return nil
	}

	w := s.cut()

	return &w
}

// Pending returns the number of buffered samples not yet part of a window.
func (s *Segmenter) Pending() int { return len(s.times) }

func (s *Segmenter) cut() Window {
	count := len(s.times)
	w := Window{
		Device:    s.device,
		StartTime: s.times[0],
		Count:     count,
		Arity:     s.arity,
		Values:    make([]float64, count*s.arity),
	}
	copy(w.Values, s.values)

	s.values = s.values[:0]
	s.times = s.times[:0]

	return w
}
