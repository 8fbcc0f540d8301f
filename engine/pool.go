package engine

import (
	"fmt"

	"github.com/sensorstream/windowpack/errs"
)

// Exemplar is a window retained in a pool slot together with the usage
// metadata that drives eviction.
type Exemplar struct {
	Slot   int
	Window Window

	// LastUsed is the logical sequence number of the most recent insertion
	// or touch. Eviction compares these, never wall-clock time, so replaying
	// the same operation sequence always yields the same victim.
	LastUsed uint64

	// InsertionOrder is a monotonic per-pool counter assigned at insertion,
	// used to break LastUsed ties.
	InsertionOrder uint64

	UseCount uint64
}

// Pool is a bounded per-device collection of exemplars with deterministic
// LRU eviction. It is not safe for concurrent use; a session owns its pool
// exclusively.
type Pool struct {
	slots   []*Exemplar // nil entries are free
	size    int
	seq     uint64 // logical clock for LastUsed
	inserts uint64
}

// NewPool creates a pool with the given capacity. Capacity must be positive;
// a zero capacity can never accept an insertion, so it is rejected up front
// with ErrPoolInsertFailure.
func NewPool(capacity int) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: pool capacity %d must be positive", errs.ErrPoolInsertFailure, capacity)
	}

	return &Pool{slots: make([]*Exemplar, capacity)}, nil
}

// Len returns the number of live exemplars.
func (p *Pool) Len() int { return p.size }

// Capacity returns the configured slot count.
func (p *Pool) Capacity() int { return len(p.slots) }

// InsertPlan describes where the next insertion will land. Evicts reports
// whether the slot currently holds a live exemplar that the commit will
// replace.
type InsertPlan struct {
	Slot   int
	Evicts bool
}

// PlanInsert determines the slot the next insertion will use without
// mutating the pool. While the pool has free capacity the lowest free slot
// index is chosen; once full, the victim is the exemplar with the smallest
// LastUsed sequence, ties broken by smallest InsertionOrder.
//
// Separating planning from commit lets the compressor emit the record that
// triggers an eviction before the evicted slot is actually reused.
func (p *Pool) PlanInsert() InsertPlan {
	if p.size < len(p.slots) {
		for slot, ex := range p.slots {
			if ex == nil {
				return InsertPlan{Slot: slot}
			}
		}
	}

	victim := 0
	var best *Exemplar
	for slot, ex := range p.slots {
		if best == nil ||
			ex.LastUsed < best.LastUsed ||
			(ex.LastUsed == best.LastUsed && ex.InsertionOrder < best.InsertionOrder) {
			victim = slot
			best = ex
		}
	}

	return InsertPlan{Slot: victim, Evicts: true}
}

// CommitInsert applies a previously returned plan, evicting the slot's
// current occupant if any and installing the window as a fresh exemplar. The
// pool takes ownership of the window.
func (p *Pool) CommitInsert(plan InsertPlan, w Window) *Exemplar {
	if p.slots[plan.Slot] == nil {
		p.size++
	}

	p.seq++
	p.inserts++
	ex := &Exemplar{
		Slot:           plan.Slot,
		Window:         w,
		LastUsed:       p.seq,
		InsertionOrder: p.inserts,
		UseCount:       1,
	}
	p.slots[plan.Slot] = ex

	return ex
}

// Touch marks the exemplar in slot as just used. Called on every Reference
// hit so the LRU ordering tracks actual reuse.
func (p *Pool) Touch(slot int) error {
	ex, err := p.Get(slot)
	if err != nil {
		return err
	}

	p.seq++
	ex.LastUsed = p.seq
	ex.UseCount++

	return nil
}

// Get returns the live exemplar in slot, or ErrSlotNotFound if the slot is
// out of range or free.
func (p *Pool) Get(slot int) (*Exemplar, error) {
	if slot < 0 || slot >= len(p.slots) || p.slots[slot] == nil {
		return nil, fmt.Errorf("%w: slot %d", errs.ErrSlotNotFound, slot)
	}

	return p.slots[slot], nil
}
