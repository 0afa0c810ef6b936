package export_test

import (
	"strings"
	"testing"

	"codeberg.org/mutker/energyctl/internal/energymodel"
	"codeberg.org/mutker/energyctl/internal/export"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceRegistry(t *testing.T, units []energymodel.UnitID) *energymodel.Registry {
	t.Helper()

	points := []struct {
		power uint32
		freq  uint64
	}{
		{10, 100}, {15, 200}, {25, 400}, {60, 800},
	}
	sampler := energymodel.SamplerFunc(func(floorHz uint64, _ energymodel.UnitID) (uint32, uint64, error) {
		for _, p := range points {
			if p.freq >= floorHz {
				return p.power, p.freq, nil
			}
		}

		return 0, 0, assert.AnError
	})

	registry := energymodel.NewRegistry(8, nil)
	require.NoError(t, registry.Register(units, 4, sampler))

	return registry
}

func TestWriteDomain(t *testing.T) {
	registry := referenceRegistry(t, []energymodel.UnitID{0, 1})

	var buf strings.Builder
	require.NoError(t, export.WriteDomain(&buf, registry.Lookup(0)))

	want := "power: 10 15 25 60\n" +
		"frequency: 100 200 400 800\n" +
		"cost: 80 60 50 60\n" +
		"units: 0,1\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "3", export.FormatUnits([]energymodel.UnitID{3}))
	assert.Equal(t, "0,2,7", export.FormatUnits([]energymodel.UnitID{0, 2, 7}))
	assert.Equal(t, "", export.FormatUnits(nil))
}

func TestCollectorExposesDomainStates(t *testing.T) {
	registry := referenceRegistry(t, []energymodel.UnitID{0, 1})
	collector := export.NewCollector(registry)

	expected := `
# HELP energyctl_domain_cost Power cost of the capacity state normalized to the domain's maximum frequency
# TYPE energyctl_domain_cost gauge
energyctl_domain_cost{domain="0",state="0"} 80
energyctl_domain_cost{domain="0",state="1"} 60
energyctl_domain_cost{domain="0",state="2"} 50
energyctl_domain_cost{domain="0",state="3"} 60
# HELP energyctl_domain_frequency_hertz Frequency of the capacity state in hertz
# TYPE energyctl_domain_frequency_hertz gauge
energyctl_domain_frequency_hertz{domain="0",state="0"} 100
energyctl_domain_frequency_hertz{domain="0",state="1"} 200
energyctl_domain_frequency_hertz{domain="0",state="2"} 400
energyctl_domain_frequency_hertz{domain="0",state="3"} 800
# HELP energyctl_domain_power_milliwatts Active power draw of the capacity state in milliwatts
# TYPE energyctl_domain_power_milliwatts gauge
energyctl_domain_power_milliwatts{domain="0",state="0"} 10
energyctl_domain_power_milliwatts{domain="0",state="1"} 15
energyctl_domain_power_milliwatts{domain="0",state="2"} 25
energyctl_domain_power_milliwatts{domain="0",state="3"} 60
# HELP energyctl_domain_states Number of capacity states in the performance domain
# TYPE energyctl_domain_states gauge
energyctl_domain_states{domain="0"} 4
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}

func TestCollectorDeduplicatesSharedDomains(t *testing.T) {
	registry := referenceRegistry(t, []energymodel.UnitID{0, 1, 2})
	collector := export.NewCollector(registry)

	// One shared domain: 1 states metric + 4 states * 3 attributes.
	assert.Equal(t, 13, testutil.CollectAndCount(collector))
}

func TestCollectorEmptyRegistry(t *testing.T) {
	registry := energymodel.NewRegistry(4, nil)
	collector := export.NewCollector(registry)

	assert.Equal(t, 0, testutil.CollectAndCount(collector))
}
