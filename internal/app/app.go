// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the goleet gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"goleet/config"
	"goleet/internal/auditlog"
	"goleet/internal/catalog"
	"goleet/internal/leetcode"
	"goleet/internal/observability"
	"goleet/internal/server"
	"goleet/internal/store"
)

// App represents the gateway with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config  *config.Config
	store   store.Store
	client  *leetcode.Client
	catalog *catalog.Cache
	audit   *auditlog.Result
	metrics *observability.Collector
	server  *server.Server

	stopRefresh func()

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{
		config: cfg,
	}

	st, err := buildStore(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog store: %w", err)
	}
	app.store = st

	app.client = leetcode.New(leetcode.Config{
		Endpoint:      cfg.Upstream.Endpoint,
		Timeout:       time.Duration(cfg.Upstream.Timeout) * time.Second,
		RetryAttempts: cfg.Upstream.RetryAttempts,
		RetryBackoff:  time.Duration(cfg.Upstream.RetryBackoffMS) * time.Millisecond,
		UserAgent:     cfg.Upstream.UserAgent,
	})

	app.catalog = catalog.New(st, app.client, catalog.Config{
		RefreshInterval: time.Duration(cfg.Catalog.RefreshInterval) * time.Second,
		DetailCapacity:  cfg.Catalog.DetailCapacity,
		PageSize:        cfg.Upstream.PageSize,
		PageDelay:       time.Duration(cfg.Upstream.PageDelayMS) * time.Millisecond,
	})

	auditResult, err := auditlog.New(auditlog.Config{
		Enabled:       cfg.Logging.Enabled,
		Path:          cfg.Logging.Path,
		BufferSize:    cfg.Logging.BufferSize,
		FlushInterval: time.Duration(cfg.Logging.FlushInterval) * time.Second,
		RetentionDays: cfg.Logging.RetentionDays,
	})
	if err != nil {
		closeErr := st.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize request logging: %w (also: store close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize request logging: %w", err)
	}
	app.audit = auditResult

	if cfg.Server.MetricsEnabled {
		app.metrics = observability.NewCollector("goleet")
		app.catalog.SetHooks(app.metrics)
		app.client.SetHooks(app.metrics)
	}

	bodySizeLimit, err := config.ParseBodySizeLimit(cfg.Server.BodySizeLimit)
	if err != nil {
		closeErr := errors.Join(app.audit.Close(), st.Close())
		if closeErr != nil {
			return nil, fmt.Errorf("invalid body size limit: %w (also: close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("invalid body size limit: %w", err)
	}

	app.logStartupInfo()

	serverCfg := &server.Config{
		MasterKey:       cfg.Server.MasterKey,
		MetricsEnabled:  cfg.Server.MetricsEnabled,
		MetricsEndpoint: cfg.Server.MetricsEndpoint,
		SwaggerEnabled:  cfg.Server.SwaggerEnabled,
		BodySizeLimit:   bodySizeLimit,
		AuditLogger:     auditResult.Logger,
		AuditReader:     auditResult.Reader,
		Metrics:         app.metrics,
	}

	if cfg.Server.SwaggerEnabled {
		slog.Info("swagger UI enabled", "path", "/swagger/index.html")
	}

	app.server = server.New(app.catalog, app.client, serverCfg)

	return app, nil
}

// Catalog returns the catalog cache.
func (a *App) Catalog() *catalog.Cache {
	return a.catalog
}

// AuditLogger returns the audit logger interface.
func (a *App) AuditLogger() auditlog.LoggerInterface {
	if a.audit == nil {
		return nil
	}
	return a.audit.Logger
}

// WarmUp loads the bootstrap artifact, kicks off the first upstream refresh
// without blocking, and starts the periodic refresh loop when configured.
func (a *App) WarmUp(ctx context.Context) {
	a.catalog.InitializeAsync(ctx)

	if a.config.Catalog.BackgroundRefresh {
		interval := time.Duration(a.config.Catalog.RefreshInterval) * time.Second
		a.stopRefresh = a.catalog.StartBackgroundRefresh(interval)
		slog.Info("background refresh enabled", "interval", interval)
	}
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order.
// Order:
// 1. HTTP server shutdown via server.Shutdown(ctx), honoring the passed context timeout/cancellation.
// 2. Background refresh loop stop.
// 3. Audit logger close (flushes pending request logs).
// 4. Catalog store close.
//
// Shutdown is idempotent and safe for repeated calls; after the first call, subsequent calls are no-ops.
// It attempts every close step, aggregates failures, and returns a joined error if any step fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	// 1. Shutdown HTTP server first (stop accepting new requests)
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	// 2. Stop the periodic catalog refresh
	if a.stopRefresh != nil {
		a.stopRefresh()
	}

	// 3. Close request logging (flushes pending entries)
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			slog.Error("request log close error", "error", err)
			errs = append(errs, fmt.Errorf("audit close: %w", err))
		}
	}

	// 4. Close the catalog store
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Error("catalog store close error", "error", err)
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	// Security warnings
	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: GOLEET_MASTER_KEY not set - admin API accepts unauthenticated requests",
			"recommendation", "set GOLEET_MASTER_KEY environment variable to secure the admin endpoints")
	} else {
		slog.Info("admin authentication enabled", "mode", "master_key")
	}
	slog.Info("admin API enabled", "api", "/admin/api/v1")

	// Metrics configuration
	if cfg.Server.MetricsEnabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Server.MetricsEndpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	// Catalog configuration
	slog.Info("catalog store configured",
		"type", cfg.Catalog.Store,
		"refresh_interval", cfg.Catalog.RefreshInterval,
		"detail_capacity", cfg.Catalog.DetailCapacity,
	)

	// Request logging configuration
	if cfg.Logging.Enabled {
		slog.Info("request logging enabled",
			"path", cfg.Logging.Path,
			"buffer_size", cfg.Logging.BufferSize,
			"retention_days", cfg.Logging.RetentionDays,
		)
	} else {
		slog.Info("request logging disabled")
	}
}

// buildStore selects the bootstrap artifact store from configuration.
func buildStore(cfg config.CatalogConfig) (store.Store, error) {
	switch cfg.Store {
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			URL: cfg.RedisURL,
			Key: cfg.RedisKey,
			TTL: time.Duration(cfg.RedisTTL) * time.Second,
		})
	default:
		return store.NewFileStore(cfg.Path), nil
	}
}
