// Package export provides the read-only inspection surfaces for registered
// performance domains: a plain-text attribute dump and a prometheus
// collector. Both consume finished domains through their accessors only and
// cannot mutate them.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/mutker/energyctl/internal/energymodel"
)

// WriteDomain writes one attribute line each for power, frequency and cost,
// space-separated in table order, followed by the domain's unit set.
func WriteDomain(w io.Writer, pd *energymodel.PerformanceDomain) error {
	states := pd.States()

	var power, frequency, cost strings.Builder
	for i, s := range states {
		if i > 0 {
			power.WriteByte(' ')
			frequency.WriteByte(' ')
			cost.WriteByte(' ')
		}
		power.WriteString(strconv.FormatUint(uint64(s.Power), 10))
		frequency.WriteString(strconv.FormatUint(s.Frequency, 10))
		cost.WriteString(strconv.FormatUint(s.Cost, 10))
	}

	_, err := fmt.Fprintf(w, "power: %s\nfrequency: %s\ncost: %s\nunits: %s\n",
		power.String(), frequency.String(), cost.String(), FormatUnits(pd.Units()))

	return err
}

// FormatUnits renders a unit set as a comma-separated list, e.g. "0,1,2".
func FormatUnits(units []energymodel.UnitID) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(u)))
	}

	return b.String()
}
