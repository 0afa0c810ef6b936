package energymodel

import (
	"math"

	"codeberg.org/mutker/energyctl/internal/errors"
	"codeberg.org/mutker/energyctl/internal/logger"
)

// buildTable assembles the capacity state table of one performance domain by
// probing the sampler with increasing frequency floors. The first unit of the
// set acts as the representative for sampling; all units of a domain are
// assumed electrically identical.
//
// The table is built in a private buffer: on any failure nothing of it is
// observable elsewhere.
func buildTable(units []UnitID, nrStates int, sampler Sampler) ([]OperatingPoint, error) {
	errFactory := errors.New()
	rep := units[0]

	table := make([]OperatingPoint, nrStates)

	var floor, prevFreq uint64
	prevEff := uint64(math.MaxUint64)

	for i := 0; i < nrStates; i++ {
		// The sampler ceils the floor to the lowest achievable state
		// of the representative unit at or above it.
		power, freq, err := sampler.Sample(floor, rep)
		if err != nil {
			return nil, errFactory.Wrap(ErrInvalidState, err).WithData(struct {
				Unit  UnitID
				State int
			}{rep, i})
		}

		// The sampler must report a higher frequency for every higher
		// capacity state.
		if freq <= prevFreq {
			return nil, errFactory.WithData(ErrNonIncreasingFrequency, struct {
				Unit      UnitID
				State     int
				Frequency uint64
			}{rep, i, freq})
		}

		// Power is positive, in milliwatts, and fits into 16 bits.
		if power == 0 || power > MaxPower {
			return nil, errFactory.WithData(ErrInvalidPower, struct {
				Unit  UnitID
				State int
				Power uint32
			}{rep, i, power})
		}

		table[i] = OperatingPoint{Frequency: freq, Power: power}
		prevFreq = freq
		floor = freq + 1

		// The hertz/watts ratio should decrease as the frequency grows
		// on sane hardware, but not all platforms respect this. Warn
		// when a higher state is more power efficient than a lower one
		// and keep going.
		eff := freq / uint64(power)
		if eff >= prevEff {
			logger.Warn().
				Int("unit", int(rep)).
				Int("state", i).
				Uint64("frequency_hz", freq).
				Uint32("power_mw", power).
				Msg("hertz/watts ratio not monotonically decreasing")
		}
		prevEff = eff
	}

	return table, nil
}
