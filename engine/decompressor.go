package engine

import (
	"fmt"

	"github.com/sensorstream/windowpack/errs"
)

// Decompressor replays one device's record sequence against its own exemplar
// pool and emits the reconstructed windows. It never recomputes distances or
// consults a threshold; the record stream alone drives the pool trajectory.
//
// The decompressor re-derives each insertion slot from its own pool replay
// and cross-checks it against the slot declared in the record. A mismatch
// means the stream was corrupted or reordered and fails the session rather
// than silently diverging from the compression-side trajectory.
type Decompressor struct {
	device      uint64
	pool        *Pool
	recordIndex uint64
}

// NewDecompressor creates a replay session. poolCapacity must equal the
// capacity the stream was compressed with.
func NewDecompressor(device uint64, poolCapacity int) (*Decompressor, error) {
	pool, err := NewPool(poolCapacity)
	if err != nil {
		return nil, err
	}

	return &Decompressor{device: device, pool: pool}, nil
}

// Apply consumes the next record in stream order and returns the
// reconstructed window for its time span. For a NewExemplar that is the
// carried raw window (exact); for a Reference it is a copy of the referenced
// exemplar's values stamped with the record's window start (approximate,
// bounded by the threshold in effect at compression time).
func (d *Decompressor) Apply(rec Record) (Window, error) {
	index := d.recordIndex

	switch r := rec.(type) {
	case *NewExemplar:
		plan := d.pool.PlanInsert()
		if plan.Slot != r.Slot {
			return Window{}, fmt.Errorf("%w: device %d record %d declares slot %d, replay expects %d",
				errs.ErrSlotMismatch, d.device, index, r.Slot, plan.Slot)
		}

		w := r.Window.Clone()
		w.Device = d.device
		w.StartTime = r.WindowStart
		d.pool.CommitInsert(plan, w)
		d.recordIndex++

		return w.Clone(), nil

	case *Reference:
		ex, err := d.pool.Get(r.Slot)
		if err != nil {
			return Window{}, fmt.Errorf("%w: device %d record %d slot %d",
				errs.ErrDanglingReference, d.device, index, r.Slot)
		}
		if ex.Window.Count != r.Count {
			return Window{}, fmt.Errorf("%w: device %d record %d slot %d holds %d samples, record declares %d",
				errs.ErrSlotMismatch, d.device, index, r.Slot, ex.Window.Count, r.Count)
		}

		if err := d.pool.Touch(r.Slot); err != nil {
			return Window{}, err
		}
		d.recordIndex++

		w := ex.Window.Clone()
		w.StartTime = r.WindowStart

		return w, nil

	default:
		return Window{}, fmt.Errorf("%w: device %d record %d", errs.ErrInvalidRecordKind, d.device, index)
	}
}

// ApplyAll replays a full record sequence and returns the reconstructed
// windows in window start order. The first failing record aborts the replay.
func (d *Decompressor) ApplyAll(records []Record) ([]Window, error) {
	windows := make([]Window, 0, len(records))
	for _, rec := range records {
		w, err := d.Apply(rec)
		if err != nil {
			return windows, err
		}
		windows = append(windows, w)
	}

	return windows, nil
}

// Records returns the number of records replayed so far.
func (d *Decompressor) Records() uint64 { return d.recordIndex }

// ReconstructSamples materializes a window into per-sample readings, spacing
// timestamps by interval microseconds from the window start. This is the
// hand-off shape for serialization layers that want rows rather than
// windows.
func ReconstructSamples(w Window, interval int64) []Sample {
	samples := make([]Sample, w.Count)
	for i := range w.Count {
		row := make([]float64, w.Arity)
		copy(row, w.Row(i))
		samples[i] = Sample{
			Device:    w.Device,
			Timestamp: w.StartTime + int64(i)*interval,
			Values:    row,
		}
	}

	return samples
}
