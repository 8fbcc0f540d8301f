package runner

import (
	"fmt"
	"sync"

	"github.com/sensorstream/windowpack/errs"
)

// Registry enforces exclusive session ownership per device. Interleaving two
// sessions on one device would make the pool trajectory non-deterministic
// and break decompression symmetry, so a second Acquire fails instead of
// queueing; the caller retries after the prior session releases.
type Registry struct {
	mu   sync.Mutex
	live map[uint64]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[uint64]struct{})}
}

// Acquire claims the device for one session. Fails with ErrSessionConflict
// while another session holds it.
func (r *Registry) Acquire(device uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[device]; ok {
		return fmt.Errorf("%w: device %d", errs.ErrSessionConflict, device)
	}
	r.live[device] = struct{}{}

	return nil
}

// Release ends the device's session. Releasing an unheld device is a no-op.
func (r *Registry) Release(device uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.live, device)
}

// Live returns the number of devices with an active session.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.live)
}
