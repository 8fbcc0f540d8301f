package engine

// Sample is one time-ordered reading from a device. Values has the session's
// configured arity; readings are immutable once ingested.
type Sample struct {
	Device    uint64
	Timestamp int64 // unix microseconds
	Values    []float64
}

// Window is a contiguous run of samples for one device, stored row-major:
// Values[i*Arity : (i+1)*Arity] is the value vector of sample i. Count is
// normally the session's window size; a trailing window may be shorter.
type Window struct {
	Device    uint64
	StartTime int64 // timestamp of the first sample, unix microseconds
	Count     int
	Arity     int
	Values    []float64
}

// Row returns the value vector of sample i. The returned slice aliases the
// window's backing array.
func (w *Window) Row(i int) []float64 {
	return w.Values[i*w.Arity : (i+1)*w.Arity]
}

// Clone returns a deep copy of the window.
func (w *Window) Clone() Window {
	c := *w
	c.Values = make([]float64, len(w.Values))
	copy(c.Values, w.Values)

	return c
}

// SameShape reports whether two windows have equal sample count and arity.
// Windows of different shapes are never comparable by distance.
func (w *Window) SameShape(other *Window) bool {
	return w.Count == other.Count && w.Arity == other.Arity
}
