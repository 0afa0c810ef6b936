package export

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"codeberg.org/mutker/energyctl/internal/energymodel"
)

const namespace = "energyctl"

// Collector exposes every registered performance domain's capacity states as
// prometheus metrics. It reads exclusively through Registry.Lookup, so
// collection is safe while registrations are in flight. Domains are labelled
// by their representative unit (the lowest unit of the set); states by table
// index.
type Collector struct {
	registry *energymodel.Registry

	statesDesc    *prometheus.Desc
	powerDesc     *prometheus.Desc
	frequencyDesc *prometheus.Desc
	costDesc      *prometheus.Desc
}

// NewCollector creates a collector reading from registry.
func NewCollector(registry *energymodel.Registry) *Collector {
	return &Collector{
		registry: registry,
		statesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "domain", "states"),
			"Number of capacity states in the performance domain",
			[]string{"domain"}, nil,
		),
		powerDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "domain", "power_milliwatts"),
			"Active power draw of the capacity state in milliwatts",
			[]string{"domain", "state"}, nil,
		),
		frequencyDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "domain", "frequency_hertz"),
			"Frequency of the capacity state in hertz",
			[]string{"domain", "state"}, nil,
		),
		costDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "domain", "cost"),
			"Power cost of the capacity state normalized to the domain's maximum frequency",
			[]string{"domain", "state"}, nil,
		),
	}
}

// Describe implements the prometheus.Collector interface
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.statesDesc
	ch <- c.powerDesc
	ch <- c.frequencyDesc
	ch <- c.costDesc
}

// Collect implements the prometheus.Collector interface
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	seen := make(map[*energymodel.PerformanceDomain]struct{})

	for unit := 0; unit < c.registry.MaxUnits(); unit++ {
		pd := c.registry.Lookup(energymodel.UnitID(unit))
		if pd == nil {
			continue
		}
		if _, dup := seen[pd]; dup {
			continue
		}
		seen[pd] = struct{}{}

		domain := strconv.Itoa(int(pd.Units()[0]))

		ch <- prometheus.MustNewConstMetric(
			c.statesDesc, prometheus.GaugeValue, float64(pd.NrStates()), domain,
		)

		for i, s := range pd.States() {
			state := strconv.Itoa(i)
			ch <- prometheus.MustNewConstMetric(
				c.powerDesc, prometheus.GaugeValue, float64(s.Power), domain, state,
			)
			ch <- prometheus.MustNewConstMetric(
				c.frequencyDesc, prometheus.GaugeValue, float64(s.Frequency), domain, state,
			)
			ch <- prometheus.MustNewConstMetric(
				c.costDesc, prometheus.GaugeValue, float64(s.Cost), domain, state,
			)
		}
	}
}
