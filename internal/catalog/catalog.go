package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"goleet/internal/core"
	"goleet/internal/leetcode"
	"goleet/internal/store"
)

// Defaults applied by New when the corresponding Config field is unset.
const (
	DefaultRefreshInterval = time.Hour
	DefaultPageSize        = 100
	DefaultPageDelay       = 300 * time.Millisecond
)

// Refresh outcomes reported through Hooks.
const (
	RefreshSuccess = "success"
	RefreshAborted = "aborted"
	RefreshEmpty   = "empty"
)

// initTimeout bounds a single full catalog refresh, including the warm-up
// one started by InitializeAsync.
const initTimeout = 10 * time.Minute

// FetchClient is the slice of the upstream client the catalog depends on.
type FetchClient interface {
	FetchCatalogPage(ctx context.Context, skip, limit int) (*leetcode.CatalogPage, error)
}

// Config tunes catalog refresh behavior.
type Config struct {
	// RefreshInterval is how long a snapshot stays fresh.
	RefreshInterval time.Duration
	// DetailCapacity bounds the per-problem detail LRU.
	DetailCapacity int
	// PageSize is the number of entries requested per catalog page.
	PageSize int
	// PageDelay is the pause between consecutive page fetches.
	PageDelay time.Duration
}

// Hooks receives catalog cache events. Implementations must be safe for
// concurrent use.
type Hooks interface {
	CatalogRefresh(outcome string)
	CatalogEntries(count int)
	DetailHit()
	DetailMiss()
}

// Cache owns the published catalog snapshot and the detail LRU. Reads go
// through Snapshot and never block on refreshes; writes replace the whole
// snapshot at once.
type Cache struct {
	mu            sync.RWMutex
	snap          *Snapshot
	lastRefreshed time.Time

	// refreshMu serializes EnsureFresh so at most one caller talks to the
	// store or the upstream at a time.
	refreshMu sync.Mutex

	store   store.Store
	client  FetchClient
	cfg     Config
	details *DetailCache
	hooks   Hooks
}

// New creates a catalog cache backed by the given artifact store and
// upstream client. Zero Config fields take package defaults.
func New(st store.Store, client FetchClient, cfg Config) *Cache {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = DefaultPageDelay
	}
	return &Cache{
		snap:    emptySnapshot(),
		store:   st,
		client:  client,
		cfg:     cfg,
		details: NewDetailCache(cfg.DetailCapacity),
	}
}

// SetHooks installs event hooks. Call before the cache is shared between
// goroutines.
func (c *Cache) SetHooks(h Hooks) {
	c.hooks = h
}

// Snapshot returns the currently published snapshot. The result is
// immutable and safe to read without coordination.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// LastRefreshed returns when a snapshot was last published. The zero time
// means nothing has been published yet.
func (c *Cache) LastRefreshed() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefreshed
}

// Age returns how long ago the current snapshot was published. ok is false
// when nothing has been published yet.
func (c *Cache) Age() (age time.Duration, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastRefreshed.IsZero() {
		return 0, false
	}
	return time.Since(c.lastRefreshed), true
}

// Detail returns the cached detail record for a question id, marking it
// most recently used.
func (c *Cache) Detail(id string) (*core.ProblemDetail, bool) {
	detail, ok := c.details.Get(id)
	if c.hooks != nil {
		if ok {
			c.hooks.DetailHit()
		} else {
			c.hooks.DetailMiss()
		}
	}
	return detail, ok
}

// StoreDetail caches a freshly fetched detail record under its question id.
func (c *Cache) StoreDetail(id string, detail *core.ProblemDetail) {
	c.details.Set(id, detail)
}

// DetailCount returns the number of cached detail records.
func (c *Cache) DetailCount() int {
	return c.details.Len()
}

// EnsureFresh brings the catalog up to date before a read: an empty catalog
// is bootstrapped from the store, and a stale or still-empty one is rebuilt
// from upstream. Only one caller refreshes at a time; concurrent callers
// block on the same mutex and then observe the winner's result. Failures
// are logged, never returned, so readers always get whatever snapshot is
// current.
func (c *Cache) EnsureFresh(ctx context.Context) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if c.Snapshot().Len() == 0 {
		c.loadBootstrap(ctx)
	}

	c.mu.RLock()
	stale := c.snap.Len() == 0 || time.Since(c.lastRefreshed) > c.cfg.RefreshInterval
	c.mu.RUnlock()
	if stale {
		c.refreshFromUpstream(ctx)
	}
}

// InitializeAsync loads the stored artifact synchronously, so a warm
// instance answers its first request from the bootstrap snapshot, then
// finishes the first upstream refresh in the background.
func (c *Cache) InitializeAsync(ctx context.Context) {
	c.refreshMu.Lock()
	if c.Snapshot().Len() == 0 {
		c.loadBootstrap(ctx)
	}
	c.refreshMu.Unlock()

	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		c.EnsureFresh(warmCtx)
	}()
}

// ForceRefresh marks the snapshot stale and kicks off a refresh in the
// background. The current snapshot keeps serving until the refresh swaps
// it out.
func (c *Cache) ForceRefresh() {
	c.mu.Lock()
	c.lastRefreshed = time.Time{}
	c.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		c.EnsureFresh(ctx)
	}()
}

// StartBackgroundRefresh re-checks freshness every interval until the
// returned stop function is called.
func (c *Cache) StartBackgroundRefresh(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
				c.EnsureFresh(ctx)
				cancel()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	slog.Info("background catalog refresh started", "interval", interval)
	return func() { close(done) }
}

// loadBootstrap publishes a snapshot decoded from the artifact store.
// Callers hold refreshMu.
func (c *Cache) loadBootstrap(ctx context.Context) {
	raw, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("bootstrap load failed", "error", err)
		}
		return
	}

	entries, err := decodeBootstrap(raw)
	if err != nil {
		slog.Warn("bootstrap artifact unusable", "error", err)
		return
	}
	if len(entries) == 0 {
		slog.Warn("bootstrap artifact held no usable entries")
		return
	}

	snap := buildSnapshot(entries, SourceBootstrap)
	c.publish(snap)
	slog.Info("catalog loaded from bootstrap artifact",
		"entries", snap.Len(),
		"tags", len(snap.TagCounts()))
}

// refreshFromUpstream walks the paginated catalog and swaps in a fresh
// snapshot. Any page failure aborts the cycle and leaves the current
// snapshot exactly as it was. Callers hold refreshMu.
func (c *Cache) refreshFromUpstream(ctx context.Context) {
	start := time.Now()
	slog.Info("refreshing catalog from upstream", "page_size", c.cfg.PageSize)

	var acc []core.Problem
	total := -1
	for skip := 0; ; skip += c.cfg.PageSize {
		page, err := c.client.FetchCatalogPage(ctx, skip, c.cfg.PageSize)
		if err != nil {
			slog.Warn("catalog page fetch failed, keeping current snapshot",
				"skip", skip, "collected", len(acc), "error", err)
			c.observeRefresh(RefreshAborted)
			return
		}
		total = page.Total
		if len(page.Problems) == 0 {
			break
		}
		acc = append(acc, page.Problems...)
		if total >= 0 && len(acc) >= total {
			break
		}

		select {
		case <-ctx.Done():
			slog.Warn("catalog refresh canceled, keeping current snapshot",
				"collected", len(acc), "error", ctx.Err())
			c.observeRefresh(RefreshAborted)
			return
		case <-time.After(c.cfg.PageDelay):
		}
	}

	if len(acc) == 0 {
		slog.Warn("upstream returned an empty catalog, keeping current snapshot")
		c.observeRefresh(RefreshEmpty)
		return
	}

	snap := buildSnapshot(acc, SourceRemote)
	c.publish(snap)
	c.observeRefresh(RefreshSuccess)
	slog.Info("catalog refreshed",
		"entries", snap.Len(),
		"total_reported", total,
		"elapsed", time.Since(start).Round(time.Millisecond))

	c.seedStore(ctx, snap)
}

// seedStore persists the refreshed catalog, but only when the store holds
// nothing yet. An artifact written by the bulk exporter carries topic tags
// the lightweight list query does not return; overwriting it would lose
// them.
func (c *Cache) seedStore(ctx context.Context, snap *Snapshot) {
	if _, err := c.store.Load(ctx); !errors.Is(err, store.ErrNotFound) {
		return
	}
	raw, err := encodeBootstrap(snap.Entries())
	if err != nil {
		slog.Warn("catalog seed encode failed", "error", err)
		return
	}
	if err := c.store.Save(ctx, raw); err != nil {
		slog.Warn("catalog seed save failed", "error", err)
		return
	}
	slog.Info("seeded catalog store", "entries", snap.Len())
}

func (c *Cache) publish(snap *Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.lastRefreshed = time.Now()
	c.mu.Unlock()

	if c.hooks != nil {
		c.hooks.CatalogEntries(snap.Len())
	}
}

func (c *Cache) observeRefresh(outcome string) {
	if c.hooks != nil {
		c.hooks.CatalogRefresh(outcome)
	}
}
