package energymodel

import (
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/energyctl/internal/errors"
)

// Registry maps unit identity to the performance domain the unit belongs to.
// Slots are write-once: once a unit's slot holds a domain it is never
// overwritten or cleared. Lookups are lock-free and safe from any number of
// goroutines at any time, including while a registration is in flight.
type Registry struct {
	// mu serializes registrations and lets sampler callbacks block while
	// it is held. Lookup never takes it.
	mu    sync.Mutex
	slots []atomic.Pointer[PerformanceDomain]
	caps  CapacityQuerier
}

// NewRegistry creates a registry for unit identifiers in [0, maxUnits).
// caps reports each unit's scaling capacity for the cross-unit consistency
// check during registration; a nil caps skips that check.
func NewRegistry(maxUnits int, caps CapacityQuerier) *Registry {
	return &Registry{
		slots: make([]atomic.Pointer[PerformanceDomain], maxUnits),
		caps:  caps,
	}
}

// MaxUnits returns the number of unit slots the registry was sized for.
func (r *Registry) MaxUnits() int {
	return len(r.slots)
}

// Lookup returns the performance domain unit belongs to, or nil if none has
// been registered. A non-nil result is always fully built and immutable: the
// atomic load pairs with the store in publish, so a populated slot can only
// reveal a finished domain.
func (r *Registry) Lookup(unit UnitID) *PerformanceDomain {
	if unit < 0 || int(unit) >= len(r.slots) {
		return nil
	}

	return r.slots[unit].Load()
}

// claim verifies that every slot of the set is still empty, so a domain is
// never registered twice. Caller holds r.mu.
func (r *Registry) claim(units []UnitID) error {
	errFactory := errors.New()

	for _, unit := range units {
		if r.slots[unit].Load() != nil {
			return errFactory.WithData(ErrAlreadyRegistered, struct{ Unit UnitID }{unit})
		}
	}

	return nil
}

// publish installs the same domain into every unit's slot. Each slot flips
// from empty to populated atomically; concurrent lookups either miss or
// observe the finished domain, never anything in between. Caller holds r.mu.
func (r *Registry) publish(units []UnitID, pd *PerformanceDomain) {
	for _, unit := range units {
		r.slots[unit].Store(pd)
	}
}
