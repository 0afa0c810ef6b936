package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/energyctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setArgs replaces os.Args for the duration of the test so Load does not see
// the test runner's flags.
func setArgs(t *testing.T, args ...string) {
	t.Helper()

	oldArgs := os.Args
	os.Args = append([]string{"energyctl"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "energyctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	setArgs(t)

	configPath := writeConfigFile(t, `
states = 16
dump = true
persist = true
database = "/path/to/domains.db"
listen = "localhost:9410"
log_level = "debug"
`)
	t.Setenv("ENERGYCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.States, "Expected States 16")
	assert.True(t, cfg.Dump, "Expected Dump true")
	assert.True(t, cfg.Persist, "Expected Persist true")
	assert.Equal(t, "/path/to/domains.db", cfg.Database, "Expected Database /path/to/domains.db")
	assert.Equal(t, "localhost:9410", cfg.Listen, "Expected Listen localhost:9410")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	setArgs(t)
	t.Setenv("ENERGYCTL_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultStates, cfg.States, "Expected default States")
	assert.False(t, cfg.Dump, "Expected default Dump false")
	assert.False(t, cfg.Persist, "Expected default Persist false")
	assert.Equal(t, config.DefaultDatabase, cfg.Database, "Expected default Database")
	assert.Equal(t, "", cfg.Listen, "Expected default Listen empty")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	setArgs(t)

	configPath := writeConfigFile(t, `
This is not a valid TOML file
`)
	t.Setenv("ENERGYCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

func TestInvalidLogLevel(t *testing.T) {
	setArgs(t)

	configPath := writeConfigFile(t, `
log_level = "invalid"
`)
	t.Setenv("ENERGYCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestNegativeStates(t *testing.T) {
	setArgs(t)

	configPath := writeConfigFile(t, `
states = -1
`)
	t.Setenv("ENERGYCTL_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	setArgs(t, "--log-level", "debug", "--states", "4")

	configPath := writeConfigFile(t, `
states = 16
log_level = "error"
`)
	t.Setenv("ENERGYCTL_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel set by flag")
	assert.Equal(t, 4, cfg.States, "Expected States set by flag")
}

func TestLogLevelValidation(t *testing.T) {
	assert.True(t, config.LogLevel("debug").IsValid())
	assert.True(t, config.LogLevel("warning").IsValid())
	assert.False(t, config.LogLevel("trace").IsValid())
	assert.Equal(t, "info", config.LogLevel("info").String())
}
