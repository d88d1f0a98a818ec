package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/dataset"
	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/ranking"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/UnknownOlympus/hestia/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app is the wired application shared by every command.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	pool     *pgxpool.Pool
	catalog  *service.Catalog
	finder   *service.Finder
}

// newApp loads the configuration and builds the geocoding, ranking and catalog
// components on top of the configured dataset source.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		BaseURL:   cfg.Provider.BaseURL,
		UserAgent: cfg.Provider.UserAgent,
		RateLimit: cfg.Provider.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	provider = geocoding.Instrument(provider, cfg.Provider.Type, appMetrics)
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type)

	resolver := geocoding.NewResolver(provider, geocoding.RetryPolicy{
		Attempts: cfg.Geocode.Attempts,
		Timeout:  cfg.Geocode.Timeout,
		Delay:    cfg.Geocode.RetryDelay,
	}, appMetrics, logger)
	validator := geocoding.NewValidator(provider, cfg.Geocode.Timeout, logger)

	measure, err := ranking.MeasureFor(ranking.Method(cfg.DistanceMethod))
	if err != nil {
		return nil, err
	}

	policy, err := service.ParseCoordinatePolicy(cfg.Dataset.CoordinatePolicy)
	if err != nil {
		return nil, err
	}

	application := &app{cfg: cfg, log: logger, registry: reg, metrics: appMetrics}

	restaurants, sink, err := application.loadRestaurants(ctx)
	if err != nil {
		application.Close()
		return nil, err
	}
	logger.InfoContext(ctx, "Restaurants loaded",
		"source", cfg.Dataset.Source,
		"count", len(restaurants),
		"coordinate_policy", policy,
	)

	application.catalog = service.NewCatalog(logger, restaurants, resolver, sink, appMetrics, cfg.Workers, policy)
	application.finder = service.NewFinder(
		logger, validator, resolver, application.catalog, ranking.NewRanker(measure), appMetrics,
	)

	return application, nil
}

func (a *app) loadRestaurants(ctx context.Context) ([]models.Restaurant, service.CoordinateSink, error) {
	switch a.cfg.Dataset.Source {
	case config.SourceFile:
		restaurants, err := dataset.Load(a.cfg.Dataset.Path)
		if err != nil {
			return nil, nil, err
		}
		return restaurants, nil, nil
	case config.SourcePostgres:
		db := a.cfg.Database
		pool, err := repository.NewDatabase(ctx, db.Host, db.Port, db.User, db.Password, db.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		a.pool = pool

		repo := repository.NewRepository(pool, a.log)
		if err = repo.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}

		var source repository.Interface = repo
		restaurants, err := source.LoadRestaurants(ctx)
		if err != nil {
			return nil, nil, err
		}
		return restaurants, source, nil
	default:
		return nil, nil, fmt.Errorf("unsupported dataset source: %s", a.cfg.Dataset.Source)
	}
}

// ready reports whether the application can serve searches.
func (a *app) ready(ctx context.Context) error {
	if a.catalog == nil || a.catalog.Len() == 0 {
		return errCatalogEmpty
	}
	if a.pool != nil {
		if err := a.pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", errDatabaseUnavailable, err)
		}
	}

	return nil
}

// Close releases the database pool, if any.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
