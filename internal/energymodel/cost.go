package energymodel

// deriveCosts fills in the cost of every capacity state:
//
//	cost = fmax * power / frequency
//
// i.e. the milliwatts a state costs once normalized to the domain's maximum
// frequency, which lets consumers rank states across domains of different
// sizes. 64-bit arithmetic keeps fmax * power from overflowing 32 bits;
// division truncates toward zero. Runs before publication, never after.
func deriveCosts(table []OperatingPoint) {
	fmax := table[len(table)-1].Frequency
	for i := range table {
		table[i].Cost = fmax * uint64(table[i].Power) / table[i].Frequency
	}
}
