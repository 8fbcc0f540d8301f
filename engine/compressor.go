package engine

import (
	"fmt"

	"github.com/sensorstream/windowpack/encoding"
	"github.com/sensorstream/windowpack/errs"
	"github.com/sensorstream/windowpack/section"
	"github.com/sensorstream/windowpack/stats"
)

// SessionState is the compressor's lifecycle state.
type SessionState uint8

const (
	// StateIdle means no sample has been pushed yet.
	StateIdle SessionState = iota
	// StatePriming means the pool is still empty; the first window always
	// becomes a new exemplar.
	StatePriming
	// StateSteady is the normal operating state with a populated pool.
	StateSteady
	// StateDraining is the transient state inside Finish while the trailing
	// window is flushed.
	StateDraining
	// StateClosed is terminal; further pushes fail with ErrSessionClosed.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePriming:
		return "priming"
	case StateSteady:
		return "steady"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Compressor runs one device's compression session: it segments pushed
// samples into windows, matches each window against the exemplar pool, emits
// one record per window to the sink, and adapts the acceptance threshold
// after every window.
//
// A compressor is single-owner and not safe for concurrent use. Exclusive
// per-device ownership is enforced one level up by runner.Registry.
type Compressor struct {
	device uint64
	sink   RecordSink

	seg       *Segmenter
	pool      *Pool
	threshold ThresholdState
	dist      DistanceFunc
	stats     *stats.Session

	state       SessionState
	windowIndex uint64

	// byte accounting feeding the controller's gain observation; sizes are
	// the canonical wire sizes (record header plus uncompressed payload) so
	// the trajectory does not depend on the sink or payload codec
	rawBytes     uint64
	encodedBytes uint64
}

// NewCompressor creates a compression session for one device, emitting
// records to sink. Defaults: window size 16, pool capacity 8, arity 1,
// MeanAbsoluteDistance, batch trailing mode; see the With* options.
func NewCompressor(device uint64, sink RecordSink, opts ...CompressorOption) (*Compressor, error) {
	cfg := defaultSessionConfig()
	if err := applyCompressorOptions(&cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seg, err := NewSegmenter(device, cfg.windowSize, cfg.arity, cfg.trailing)
	if err != nil {
		return nil, err
	}

	pool, err := NewPool(cfg.poolCapacity)
	if err != nil {
		return nil, err
	}

	return &Compressor{
		device: device,
		sink:   sink,
		seg:    seg,
		pool:   pool,
		threshold: NewThresholdState(
			cfg.initialThreshold, cfg.minThreshold, cfg.maxThreshold,
			cfg.targetRatio, cfg.errorBudget, cfg.controllerStep, cfg.lastK,
		),
		dist:  cfg.dist,
		stats: cfg.stats,
		state: StateIdle,
	}, nil
}

// Push feeds a batch of ordered samples into the session. Complete windows
// are processed immediately; a partial tail stays buffered. Any error is
// fatal to the session.
func (c *Compressor) Push(samples ...Sample) error {
	if c.state == StateClosed {
		return fmt.Errorf("%w: device %d", errs.ErrSessionClosed, c.device)
	}
	if c.state == StateIdle && len(samples) > 0 {
		c.state = StatePriming
	}

	windows, err := c.seg.Push(samples...)
	for i := range windows {
		if perr := c.processWindow(&windows[i]); perr != nil {
			c.state = StateClosed
			return perr
		}
	}
	if err != nil {
		c.state = StateClosed
		return err
	}

	return nil
}

// Finish drains the session per its trailing mode and closes it. In batch
// mode a buffered partial tail is emitted as a short final window; in
// streaming mode the tail is discarded from this session (PendingSamples
// reports it beforehand). Finish is not idempotent; a second call fails with
// ErrSessionClosed.
func (c *Compressor) Finish() error {
	if c.state == StateClosed {
		return fmt.Errorf("%w: device %d", errs.ErrSessionClosed, c.device)
	}

	c.state = StateDraining
	if w := c.seg.Flush(); w != nil {
		if err := c.processWindow(w); err != nil {
			c.state = StateClosed
			return err
		}
	}
	c.state = StateClosed

	return nil
}

// processWindow is the per-window pipeline: evaluate, emit, commit, adapt.
// The record is appended to the sink before the pool mutation is committed,
// so an eviction is only observable after the record that caused it.
func (c *Compressor) processWindow(w *Window) error {
	slot, distance := Nearest(w, c.pool, c.dist)
	matched := slot != NoSlot && distance <= c.threshold.Threshold

	rawSize := encoding.ValuesSize(len(w.Values))
	encodedSize := section.RecordHeaderSize

	if matched {
		rec := &Reference{Slot: slot, WindowStart: w.StartTime, Count: w.Count}
		if err := c.sink.Append(rec); err != nil {
			return fmt.Errorf("device %d window %d: %w", c.device, c.windowIndex, err)
		}
		if err := c.pool.Touch(slot); err != nil {
			return fmt.Errorf("device %d window %d: %w", c.device, c.windowIndex, err)
		}
	} else {
		plan := c.pool.PlanInsert()
		rec := &NewExemplar{Slot: plan.Slot, WindowStart: w.StartTime, Window: w.Clone()}
		if err := c.sink.Append(rec); err != nil {
			return fmt.Errorf("device %d window %d: %w", c.device, c.windowIndex, err)
		}
		c.pool.CommitInsert(plan, *w)
		encodedSize += rawSize
	}

	c.rawBytes += uint64(rawSize)
	c.encodedBytes += uint64(encodedSize)
	c.windowIndex++

	c.threshold = StepThreshold(c.threshold, Observation{
		Matched:  matched,
		Distance: distance,
		Ratio:    float64(c.rawBytes) / float64(c.encodedBytes),
	})

	if c.stats != nil {
		c.stats.ObserveWindow(matched, distance, rawSize, encodedSize)
	}
	if c.state == StatePriming {
		c.state = StateSteady
	}

	return nil
}

// State returns the session's current lifecycle state.
func (c *Compressor) State() SessionState { return c.state }

// Threshold returns the acceptance threshold for the next window.
func (c *Compressor) Threshold() float64 { return c.threshold.Threshold }

// Gain returns the cumulative compression gain so far, raw bytes over
// encoded bytes, or 0 before any window has been processed.
func (c *Compressor) Gain() float64 {
	if c.encodedBytes == 0 {
		return 0
	}

	return float64(c.rawBytes) / float64(c.encodedBytes)
}

// Windows returns the number of windows processed so far.
func (c *Compressor) Windows() uint64 { return c.windowIndex }

// PendingSamples returns the buffered partial-tail size.
func (c *Compressor) PendingSamples() int { return c.seg.Pending() }
