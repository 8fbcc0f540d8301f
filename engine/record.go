package engine

import "github.com/sensorstream/windowpack/format"

// Record is one compressed output frame. It is a sealed sum type: the only
// implementations are Reference and NewExemplar, so switches over records can
// be exhaustive at both the compressor and the decompressor.
//
// Records for one device form a strictly increasing sequence by window start
// timestamp.
type Record interface {
	// Kind returns the wire-level record kind tag.
	Kind() format.RecordKind
	// Start returns the window start timestamp in unix microseconds.
	Start() int64

	sealed()
}

// Reference records that a window matched the exemplar in Slot within the
// acceptance threshold. It carries no raw payload; the decompressor emits the
// referenced exemplar's values for this window's time span.
type Reference struct {
	Slot        int
	WindowStart int64
	Count       int
}

func (r *Reference) Kind() format.RecordKind { return format.KindReference }
func (r *Reference) Start() int64            { return r.WindowStart }
func (r *Reference) sealed()                 {}

// NewExemplar records that a window had no acceptable match and was inserted
// into pool Slot, evicting the previous occupant when the pool was full. It
// carries the full raw window.
type NewExemplar struct {
	Slot        int
	WindowStart int64
	Window      Window
}

func (r *NewExemplar) Kind() format.RecordKind { return format.KindNewExemplar }
func (r *NewExemplar) Start() int64            { return r.WindowStart }
func (r *NewExemplar) sealed()                 {}

// RecordSink receives records in window order during compression. Appends are
// never reordered or retried; a sink error fails the session.
type RecordSink interface {
	Append(rec Record) error
}

// Records is a slice-backed RecordSink for in-memory collection.
type Records []Record

func (r *Records) Append(rec Record) error {
	*r = append(*r, rec)
	return nil
}
