package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/energyctl/internal/energymodel"
	"codeberg.org/mutker/energyctl/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDomain(t *testing.T, units []energymodel.UnitID) *energymodel.PerformanceDomain {
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

	return registry.Lookup(units[0])
}

func TestSaveDomainRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "domains.db")

	repo, err := store.NewRepository(store.Config{DBPath: dbPath, Enabled: true})
	require.NoError(t, err)

	pd := testDomain(t, []energymodel.UnitID{0, 1})
	require.NoError(t, repo.SaveDomain(context.Background(), pd))
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var units string
	var nrStates int
	err = db.QueryRow("SELECT units, nr_states FROM domains").Scan(&units, &nrStates)
	require.NoError(t, err)
	assert.Equal(t, "0,1", units)
	assert.Equal(t, 4, nrStates)

	rows, err := db.Query(
		"SELECT state, frequency_hz, power_mw, cost FROM capacity_states ORDER BY state")
	require.NoError(t, err)
	defer rows.Close()

	wantFreqs := []int64{100, 200, 400, 800}
	wantPowers := []int64{10, 15, 25, 60}
	wantCosts := []int64{80, 60, 50, 60}

	var count int
	for rows.Next() {
		var state int
		var freq, power, cost int64
		require.NoError(t, rows.Scan(&state, &freq, &power, &cost))
		assert.Equal(t, count, state)
		assert.Equal(t, wantFreqs[state], freq)
		assert.Equal(t, wantPowers[state], power)
		assert.Equal(t, wantCosts[state], cost)
		count++
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 4, count)
}

func TestSaveDomainRejectsDuplicateUnitSet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "domains.db")

	repo, err := store.NewRepository(store.Config{DBPath: dbPath, Enabled: true})
	require.NoError(t, err)
	defer repo.Close()

	pd := testDomain(t, []energymodel.UnitID{2})
	require.NoError(t, repo.SaveDomain(context.Background(), pd))

	err = repo.SaveDomain(context.Background(), pd)
	require.Error(t, err)
}

func TestSaveDomainNil(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "domains.db")

	repo, err := store.NewRepository(store.Config{DBPath: dbPath, Enabled: true})
	require.NoError(t, err)
	defer repo.Close()

	require.Error(t, repo.SaveDomain(context.Background(), nil))
}

func TestNewRepositoryInvalidPath(t *testing.T) {
	_, err := store.NewRepository(store.Config{DBPath: "", Enabled: true})
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, store.Config{Enabled: false}.Validate())
	assert.Error(t, store.Config{Enabled: true, DBPath: ""}.Validate())
	assert.NoError(t, store.DefaultConfig().Validate())
}
