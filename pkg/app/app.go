// Package app assembles the repository, cache, services and router from
// configuration. Every entrypoint (server, CLI, serverless) goes through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/deeplinker/pkg/adapters/cache"
	"github.com/wadjakorntonsri/deeplinker/pkg/adapters/geoip"
	"github.com/wadjakorntonsri/deeplinker/pkg/adapters/handler"
	"github.com/wadjakorntonsri/deeplinker/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/deeplinker/pkg/config"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/geo"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/services"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

// App holds the wired components
type App struct {
	Repo      *sqlite.SQLiteRepository
	Cache     ports.LinkCache
	Links     *services.LinkService
	Analytics *services.AnalyticsService
	Accounts  *services.AuthService
	Recorder  *services.ClickRecorder
	Redirects *services.RedirectService
	Handler   http.Handler
}

// New opens storage and builds every service. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	linkCache, err := newCache(ctx, cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	links, err := services.NewLinkService(repo, linkCache)
	if err != nil {
		repo.Close()
		return nil, err
	}

	var locator ports.GeoLocator
	if cfg.GeoAPIURL != "" {
		locator = geoip.NewClient(cfg.GeoAPIURL, cfg.GeoTimeout)
	}
	recorder := services.NewClickRecorder(repo, geo.NewEnricher(locator), cfg.RecordTimeout)

	opts := RedirectOptions(cfg)
	redirects := services.NewRedirectService(links, recorder, opts)
	log.Printf("Redirects: %s", opts)

	a := &App{
		Repo:      repo,
		Cache:     linkCache,
		Links:     links,
		Analytics: services.NewAnalyticsService(repo, cfg.Location()),
		Accounts:  services.NewAuthService(repo),
		Recorder:  recorder,
		Redirects: redirects,
	}
	a.Handler = handler.NewRouter(cfg, handler.Dependencies{
		Links:     a.Links,
		Analytics: a.Analytics,
		Accounts:  a.Accounts,
		Visits:    a.Redirects,
		Ping:      repo.Ping,
	})
	return a, nil
}

// RedirectOptions reads the redirect settings from cfg
func RedirectOptions(cfg *config.Config) services.RedirectOptions {
	return services.RedirectOptions{
		Policy:        services.ParseBreakoutPolicy(cfg.BreakoutPolicy),
		RecordBots:    cfg.RecordBots,
		SyncRecording: strings.EqualFold(cfg.RecordMode, "sync"),
	}
}

func newCache(ctx context.Context, cfg *config.Config) (ports.LinkCache, error) {
	switch strings.ToLower(cfg.CacheDriver) {
	case "", "none":
		return nil, nil
	case "memory":
		return cache.NewBigCacheStore(cfg.CacheTTL)
	case "redis":
		return cache.NewRedisStore(ctx, cfg.RedisURL, cfg.CacheTTL)
	}
	return nil, fmt.Errorf("unknown CACHE_DRIVER %q", cfg.CacheDriver)
}

// Close waits for pending click writes, then releases the cache and database
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Recorder.Wait(ctx); err != nil {
		errs = append(errs, fmt.Errorf("pending clicks: %w", err))
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := a.Repo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
