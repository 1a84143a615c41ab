package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/asx-screener/internal/external/tradingview"
	"github.com/wonny/asx-screener/internal/presets"
	"github.com/wonny/asx-screener/internal/screener"
	"github.com/wonny/asx-screener/internal/snapshot"
	"github.com/wonny/asx-screener/pkg/config"
	"github.com/wonny/asx-screener/pkg/database"
	"github.com/wonny/asx-screener/pkg/httputil"
	"github.com/wonny/asx-screener/pkg/logger"
	"github.com/wonny/asx-screener/pkg/redis"
)

// keyPrefix namespaces every Redis key of this service
const keyPrefix = "screener"

// app bundles the shared dependencies of the commands. Database and Redis
// are optional: a missing or unreachable backend is logged and skipped.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB // nil when not configured
	redis *redis.Client
	store *snapshot.Store
	repo  *snapshot.Repository // nil without db
	cache *snapshot.Cache      // nil when Redis is disabled
}

// newApp loads config and connects the optional backends
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	a := &app{
		cfg:   cfg,
		log:   log,
		store: snapshot.NewStore(cfg.Snapshot.Dir),
	}

	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		log.Debug("Database not configured, using files only")
	case err != nil:
		log.WithError(err).Warn("Database unavailable, using files only")
	default:
		a.db = db
		a.repo = snapshot.NewRepository(db.Pool)
	}

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		rc = redis.NewFromRedis(nil)
	}
	a.redis = rc
	if rc.Enabled() {
		a.cache = snapshot.NewCache(redis.NewCache(rc, keyPrefix), cfg.Snapshot.CacheTTL)
	}

	return a, nil
}

// Close releases the backends
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis")
	}
}

// loader reads snapshots through cache, files and database
func (a *app) loader() *snapshot.Loader {
	l := snapshot.NewLoader(a.store, a.log)
	if a.repo != nil {
		l = l.WithRepository(a.repo)
	}
	if a.cache != nil {
		l = l.WithCache(a.cache)
	}
	return l
}

// scanner builds the TradingView client, paced in-process and, with Redis,
// across processes
func (a *app) scanner() *tradingview.Client {
	httpClient := httputil.New(a.cfg, a.log).WithLimiter(a.cfg.Snapshot.RatePerSec)
	if a.redis.Enabled() {
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(a.redis, keyPrefix), redis.ScannerRateLimit)
	}
	return tradingview.NewClient(httpClient, a.log, tradingview.Options{
		URL:       a.cfg.Snapshot.ScannerURL,
		Market:    a.cfg.Snapshot.Market,
		BatchSize: a.cfg.Snapshot.BatchSize,
	})
}

// collector builds the daily snapshot pipeline
func (a *app) collector(ctx context.Context) (*snapshot.Collector, error) {
	col := snapshot.NewCollector(a.scanner(), a.store, a.log)
	if a.repo != nil {
		if err := a.repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		col = col.WithRepository(a.repo)
	}
	if a.cache != nil {
		col = col.WithCache(a.cache)
	}
	return col, nil
}

// presets returns the built-in presets merged with PRESETS_FILE
func (a *app) presets() ([]screener.Preset, error) {
	list, err := presets.Resolve(a.cfg.Screener.PresetsFile)
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	return list, nil
}
