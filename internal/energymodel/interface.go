package energymodel

// UnitID identifies one processing unit (a CPU core, a GPU) for registry
// indexing. Valid identifiers are in [0, maxUnits) of the owning registry.
type UnitID int

// Sampler supplies achievable operating points for a unit's hardware.
//
// Sample returns the lowest achievable operating point at or above floorHz
// for the unit, as active power draw in milliwatts and frequency in hertz.
// Implementations are driver-supplied and may block, e.g. to wait on
// hardware; the registration path tolerates this.
type Sampler interface {
	Sample(floorHz uint64, unit UnitID) (powerMilliWatts uint32, frequencyHz uint64, err error)
}

// SamplerFunc adapts a function to the Sampler interface
type SamplerFunc func(floorHz uint64, unit UnitID) (uint32, uint64, error)

func (f SamplerFunc) Sample(floorHz uint64, unit UnitID) (uint32, uint64, error) {
	return f(floorHz, unit)
}

// CapacityQuerier reports the fixed scaling capacity of a unit. All units
// sharing a performance domain must report the same value, since they share
// one table.
type CapacityQuerier interface {
	CapacityOf(unit UnitID) uint64
}

// CapacityFunc adapts a function to the CapacityQuerier interface
type CapacityFunc func(unit UnitID) uint64

func (f CapacityFunc) CapacityOf(unit UnitID) uint64 {
	return f(unit)
}
