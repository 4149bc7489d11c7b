// Package commands implements CLI command handlers for filterphrase.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/filterphrase/pkg/config"
	"github.com/Sumatoshi-tech/filterphrase/pkg/filter"
	"github.com/Sumatoshi-tech/filterphrase/pkg/lister"
	"github.com/Sumatoshi-tech/filterphrase/pkg/observability"
	"github.com/Sumatoshi-tech/filterphrase/pkg/version"
)

const (
	// projectRoot is the tree candidates are listed from.
	projectRoot = "."

	// queryCacheSize bounds how many distinct prompts keep their ranking.
	queryCacheSize = 64
)

type configLoader func() (*config.Config, error)

type listerFactory func(cfg *config.Config, root string) (lister.Lister, error)

// deps are the seams tests replace.
type deps struct {
	loadConfig configLoader
	newLister  listerFactory
	obsConfig  func(cfg *config.Config, mode observability.AppMode) observability.Config
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		newLister:  defaultLister,
		obsConfig:  observabilityConfig,
	}
}

func defaultLister(cfg *config.Config, root string) (lister.Lister, error) {
	return lister.New(cfg.Lister.Backend, root, lister.Options{SkipVendor: cfg.Lister.SkipVendor})
}

func observabilityConfig(cfg *config.Config, mode observability.AppMode) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.LogLevel = cfg.Logging.SlogLevel()
	obsCfg.LogJSON = cfg.Logging.JSON()

	return obsCfg
}

// app is everything a command needs once startup is done.
type app struct {
	engine    *filter.Engine
	logger    *slog.Logger
	providers observability.Providers
}

// close flushes telemetry.
func (a *app) close(ctx context.Context) error {
	err := a.providers.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown telemetry: %w", err)
	}

	return nil
}

// start loads config, initializes telemetry and lists the candidates once.
func start(ctx context.Context, d deps, mode observability.AppMode) (*app, error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	providers, err := observability.Init(d.obsConfig(cfg, mode))
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	logger := providers.Logger
	slog.SetDefault(logger)

	l, err := d.newLister(cfg, projectRoot)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create lister: %w", err), providers.Shutdown(ctx))
	}

	logger.DebugContext(ctx, "listing candidates", "backend", cfg.Lister.Backend)

	candidates := lister.Load(ctx, l, logger)

	metrics, err := observability.NewQueryMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(ctx))
	}

	engine := filter.NewEngine(candidates,
		filter.WithTracer(providers.Tracer),
		filter.WithRecorder(metrics),
		filter.WithCacheSize(queryCacheSize),
	)

	return &app{
		engine:    engine,
		logger:    logger,
		providers: providers,
	}, nil
}
