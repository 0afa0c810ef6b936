package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/mutker/energyctl/internal/errors"
)

const (
	DefaultLogLevel = "info"
	DefaultStates   = 8
	DefaultDatabase = "/var/lib/energyctl/domains.db"

	configEnvVar = "ENERGYCTL_CONFIG"
	envPrefix    = "ENERGYCTL"
)

type Config struct {
	// States is the number of capacity states per performance domain.
	// Zero selects the driver's full state grid.
	States   int    `mapstructure:"states"`
	Dump     bool   `mapstructure:"dump"`
	Persist  bool   `mapstructure:"persist"`
	Database string `mapstructure:"database"`
	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("energyctl", pflag.ContinueOnError)
	fs.Int("states", DefaultStates, "Number of capacity states per performance domain (0 = full driver grid)")
	fs.Bool("dump", false, "Print registered domain tables to stdout")
	fs.Bool("persist", false, "Persist registered domain tables to the database")
	fs.String("database", DefaultDatabase, "Path to the domain database")
	fs.String("listen", "", "Address to serve domain metrics on (empty disables)")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("states", DefaultStates)
	v.SetDefault("dump", false)
	v.SetDefault("persist", false)
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("listen", "")
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)

	// Load configuration from file
	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("energyctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Command line flags take precedence over file and environment
	bindings := map[string]string{
		"states":    "states",
		"dump":      "dump",
		"persist":   "persist",
		"database":  "database",
		"listen":    "listen",
		"log_level": "log-level",
		"debug":     "debug",
		"verbose":   "verbose",
	}
	for key, flagName := range bindings {
		flag := fs.Lookup(flagName)
		if flag.Changed {
			v.Set(key, flag.Value.String())
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.States < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, struct{ States int }{c.States})
	}

	if c.Persist && c.Database == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "persist requires a database path")
	}

	return nil
}
