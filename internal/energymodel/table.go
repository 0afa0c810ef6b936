package energymodel

// MaxPower is the highest active power a capacity state may report, in
// milliwatts. Power values must fit into 16 bits.
const MaxPower uint32 = 0xFFFF

// OperatingPoint is one capacity state of a performance domain: the active
// power drawn while running at a discrete frequency, plus the derived cost
// used to rank states across domains. Cost is zero until the table has been
// cost-annotated during registration and never changes afterwards.
type OperatingPoint struct {
	Frequency uint64 // Hz
	Power     uint32 // mW
	Cost      uint64
}

// PerformanceDomain is the immutable energy model of a set of units sharing
// one frequency/voltage scaling domain. Every unit of the set references the
// same instance. Domains are created by Registry.Register, fully validated
// before they become visible, and live for the registry's lifetime.
type PerformanceDomain struct {
	units []UnitID
	table []OperatingPoint
}

// NrStates returns the number of capacity states in the domain's table.
func (pd *PerformanceDomain) NrStates() int {
	return len(pd.table)
}

// At returns the i-th capacity state. States are ordered by strictly
// increasing frequency.
func (pd *PerformanceDomain) At(i int) OperatingPoint {
	return pd.table[i]
}

// MaxFrequency returns the highest frequency the domain can run at.
func (pd *PerformanceDomain) MaxFrequency() uint64 {
	return pd.table[len(pd.table)-1].Frequency
}

// States returns a copy of the capacity state table in frequency order.
func (pd *PerformanceDomain) States() []OperatingPoint {
	states := make([]OperatingPoint, len(pd.table))
	copy(states, pd.table)

	return states
}

// Units returns a copy of the unit set sharing this domain.
func (pd *PerformanceDomain) Units() []UnitID {
	units := make([]UnitID, len(pd.units))
	copy(units, pd.units)

	return units
}
