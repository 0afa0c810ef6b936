package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/mutker/energyctl/internal/config"
	"codeberg.org/mutker/energyctl/internal/energymodel"
	"codeberg.org/mutker/energyctl/internal/errors"
	"codeberg.org/mutker/energyctl/internal/export"
	"codeberg.org/mutker/energyctl/internal/logger"
	"codeberg.org/mutker/energyctl/internal/nvml"
	"codeberg.org/mutker/energyctl/internal/pid"
	"codeberg.org/mutker/energyctl/internal/store"
)

const shutdownTimeout = 5 * time.Second

var (
	cfg      *config.Config
	provider *nvml.Provider
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		applyLogLevel(cfg.LogLevel)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	var err error
	provider, err = nvml.NewProvider()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize NVML")
	}
	defer func() {
		if err := provider.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown NVML")
		}
	}()

	registry := energymodel.NewRegistry(provider.UnitCount(), provider)

	errFactory := errors.New()

	if registerDomains(registry) == 0 {
		logger.FatalWithCode(errFactory.New(errors.ErrRegisterDomains)).
			Msg("no performance domain could be registered")
	}

	domains := distinctDomains(registry)

	if cfg.Dump {
		for _, pd := range domains {
			if err := export.WriteDomain(os.Stdout, pd); err != nil {
				logger.ErrorWithCode(errFactory.Wrap(errors.ErrExportDomains, err)).
					Msg("failed to dump performance domain")
			}
		}
	}

	if cfg.Persist {
		if err := persistDomains(domains); err != nil {
			logger.ErrorWithCode(errFactory.Wrap(errors.ErrExportDomains, err)).
				Msg("failed to persist performance domains")
		}
	}

	if cfg.Listen == "" {
		logger.Info().Msg("Exiting...")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := serveMetrics(ctx, registry); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("error serving metrics")
	}
	logger.Info().Msg("Exiting...")
}

// registerDomains registers one single-unit performance domain per detected
// device and reports how many succeeded. A failure on one device does not
// prevent the others from registering.
func registerDomains(registry *energymodel.Registry) int {
	registered := 0

	for unit := 0; unit < registry.MaxUnits(); unit++ {
		id := energymodel.UnitID(unit)

		states := cfg.States
		if states == 0 {
			states = provider.StateCount(id)
		}
		if states == 0 {
			logger.Warn().Int("unit", unit).Msg("No capacity states available, skipping")
			continue
		}

		if err := registry.Register([]energymodel.UnitID{id}, states, provider); err != nil {
			logger.Error().Err(err).Int("unit", unit).Msg("Failed to register performance domain")
			continue
		}

		logger.Info().Int("unit", unit).Int("states", states).Msg("Registered performance domain")
		registered++
	}

	return registered
}

// distinctDomains walks the registry and returns every registered domain
// once, in representative-unit order.
func distinctDomains(registry *energymodel.Registry) []*energymodel.PerformanceDomain {
	var domains []*energymodel.PerformanceDomain

	seen := make(map[*energymodel.PerformanceDomain]struct{})
	for unit := 0; unit < registry.MaxUnits(); unit++ {
		pd := registry.Lookup(energymodel.UnitID(unit))
		if pd == nil {
			continue
		}
		if _, dup := seen[pd]; dup {
			continue
		}
		seen[pd] = struct{}{}
		domains = append(domains, pd)
	}

	return domains
}

func persistDomains(domains []*energymodel.PerformanceDomain) error {
	repo, err := store.NewRepository(store.Config{DBPath: cfg.Database, Enabled: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close domain repository")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, pd := range domains {
		if err := repo.SaveDomain(ctx, pd); err != nil {
			return err
		}
	}

	return nil
}

func serveMetrics(ctx context.Context, registry *energymodel.Registry) error {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(export.NewCollector(registry))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info().Str("listen", cfg.Listen).Msg("Serving domain metrics")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func applyLogLevel(level string) {
	switch config.LogLevel(level) {
	case config.LogLevelDebug:
		logger.SetLogLevel(logger.DebugLevel)
	case config.LogLevelInfo:
		logger.SetLogLevel(logger.InfoLevel)
	case config.LogLevelWarning:
		logger.SetLogLevel(logger.WarnLevel)
	case config.LogLevelError:
		logger.SetLogLevel(logger.ErrorLevel)
	}
}
