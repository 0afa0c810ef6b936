package energymodel

import (
	"codeberg.org/mutker/energyctl/internal/errors"
	"codeberg.org/mutker/energyctl/internal/logger"
)

// Register builds, validates, cost-annotates and publishes the energy model
// of one performance domain spanning units. The table holds exactly nrStates
// operating points obtained from sampler.
//
// Registrations serialize on the registry mutex, which stays held across
// sampler calls; samplers may block. If multiple clients register overlapping
// domains, all but the first registration fail with ErrAlreadyRegistered and
// the original tables are untouched. A registration that fails at any step
// commits nothing: every unit of the set still resolves to no domain.
func (r *Registry) Register(units []UnitID, nrStates int, sampler Sampler) error {
	errFactory := errors.New()

	if len(units) == 0 || nrStates <= 0 || sampler == nil {
		return errFactory.New(errors.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateUnits(units); err != nil {
		return err
	}

	if err := r.claim(units); err != nil {
		return err
	}

	if err := r.checkCapacities(units); err != nil {
		return err
	}

	table, err := buildTable(units, nrStates, sampler)
	if err != nil {
		return errFactory.Wrap(ErrBuildFailed, err)
	}

	deriveCosts(table)

	pd := &PerformanceDomain{
		units: append([]UnitID(nil), units...),
		table: table,
	}

	r.publish(units, pd)

	logger.Debug().
		Interface("units", pd.Units()).
		Int("states", nrStates).
		Uint64("max_frequency_hz", pd.MaxFrequency()).
		Msg("Created performance domain")

	return nil
}

// validateUnits rejects out-of-range and duplicate identifiers before any
// slot is touched. Caller holds r.mu.
func (r *Registry) validateUnits(units []UnitID) error {
	errFactory := errors.New()

	seen := make(map[UnitID]struct{}, len(units))
	for _, unit := range units {
		if unit < 0 || int(unit) >= len(r.slots) {
			return errFactory.WithData(ErrUnknownUnit, struct{ Unit UnitID }{unit})
		}
		if _, dup := seen[unit]; dup {
			return errFactory.WithMessage(errors.ErrInvalidArgument, "duplicate unit in domain set")
		}
		seen[unit] = struct{}{}
	}

	return nil
}

// checkCapacities verifies all units of the set report the same scaling
// capacity. Units of one domain share a single table, so they must have the
// same micro-architecture; the capacity value is the only identity signal
// available here. Caller holds r.mu.
func (r *Registry) checkCapacities(units []UnitID) error {
	if r.caps == nil {
		return nil
	}

	errFactory := errors.New()

	var prevCap uint64
	for _, unit := range units {
		c := r.caps.CapacityOf(unit)
		if prevCap != 0 && prevCap != c {
			return errFactory.WithData(ErrInconsistentCapacity, struct {
				Unit     UnitID
				Capacity uint64
				Expected uint64
			}{unit, c, prevCap})
		}
		prevCap = c
	}

	return nil
}
