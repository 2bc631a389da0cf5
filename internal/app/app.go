// Package app is the composition root shared by the HTTP server and the CLI.
// It wires concrete adapters behind ports from a loaded Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"homerank/internal/adapters/cache"
	"homerank/internal/adapters/repositories"
	"homerank/internal/adapters/routing"
	"homerank/internal/config"
	"homerank/internal/domain"
	"homerank/internal/platform/db"
	"homerank/internal/platform/obs"
	"homerank/internal/ports"
	"homerank/internal/services"

	"github.com/rs/zerolog/log"
)

type App struct {
	Config    config.Config
	Counters  *obs.Counters
	Provider  ports.RoutingProvider
	Locations ports.LocationRepository
	Profile   domain.Profile

	closers []func() error
}

// New builds the provider, cache and location repository described by cfg.
// A cache that cannot be opened is logged and skipped; the app then runs
// uncached.
func New(ctx context.Context, cfg config.Config, counters *obs.Counters) (*App, error) {
	a := &App{Config: cfg, Counters: counters}

	profile, err := domain.ParseProfile(cfg.DefaultProfile)
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}
	a.Profile = profile

	provider, err := newProvider(cfg, counters)
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	store, closeStore, err := cache.Open(ctx, cache.Settings{
		Backend:       cache.Backend(cfg.CacheBackend),
		Path:          cfg.CachePath,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddress:  cfg.RedisAddress,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		TTL:           cfg.CacheTTL,
	})
	if err != nil {
		log.Warn().
			Err(&domain.CacheUnavailableError{Op: "open", Err: err}).
			Str("backend", cfg.CacheBackend).
			Msg("cache unavailable, running uncached")
		store = nil
	}
	a.closers = append(a.closers, closeStore)

	a.Provider = cache.NewCachedProvider(provider, store,
		cache.WithStoreTimeout(cfg.CacheTimeout),
		cache.WithCounters(counters),
	)

	locations, err := a.newLocations(ctx)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("new app: %w", err)
	}
	a.Locations = locations

	log.Info().
		Str("provider", provider.Name()).
		Str("cache", cfg.CacheBackend).
		Bool("cached", store != nil).
		Str("profile", string(profile)).
		Msg("app ready")

	return a, nil
}

func newProvider(cfg config.Config, counters *obs.Counters) (ports.RoutingProvider, error) {
	kind, err := routing.ParseKind(cfg.RoutingProvider)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return routing.New(routing.Settings{
		Kind:                kind,
		ValhallaURL:         cfg.ValhallaURL,
		NominatimURL:        cfg.NominatimURL,
		NominatimRatePerSec: cfg.NominatimRatePerSec,
		UserAgent:           cfg.UserAgent,
		GoogleAPIKey:        cfg.GoogleAPIKey,
		GoogleBaseURL:       cfg.GoogleBaseURL,
		Location:            loc,
		ORSAPIKey:           cfg.ORSAPIKey,
		ORSBaseURL:          cfg.ORSBaseURL,
		ORSCountry:          cfg.ORSCountry,
		GazetteerPath:       cfg.OfflineGazetteerPath,
		HTTPTimeout:         cfg.ProviderTimeout,
	}, counters)
}

func (a *App) newLocations(ctx context.Context) (ports.LocationRepository, error) {
	if a.Config.LocationsDBPath == "" {
		return repositories.NewJSONLocationRepository(a.Config.DestinationsPath, a.Config.OriginsPath), nil
	}

	if err := os.MkdirAll(filepath.Dir(a.Config.LocationsDBPath), 0o755); err != nil {
		return nil, fmt.Errorf("locations db: %w", err)
	}
	conn, err := db.OpenSQLite(a.Config.LocationsDBPath)
	if err != nil {
		return nil, fmt.Errorf("locations db: %w", err)
	}
	a.closers = append(a.closers, conn.Close)

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return nil, fmt.Errorf("locations db: %w", err)
	}
	return repositories.NewSqliteLocationRepository(conn), nil
}

// Engine returns a scoring engine over the app's provider. A non-empty
// profile overrides the configured default.
func (a *App) Engine(profile domain.Profile, opts ...services.EngineOption) *services.Engine {
	if profile == "" {
		profile = a.Profile
	}

	base := []services.EngineOption{
		services.WithProfile(profile),
		services.WithCallTimeout(a.Config.ProviderTimeout),
		services.WithConcurrency(a.Config.ScoringConcurrency),
		services.WithCounters(a.Counters),
	}
	return services.NewEngine(a.Provider, append(base, opts...)...)
}

// Close releases every resource opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
