// Package auditlog records one row per served HTTP request. Entries are
// buffered in memory and flushed to SQLite in batches; the reader side
// backs the admin request-log endpoints.
package auditlog

import (
	"context"
	"time"
)

// LogStore is the write side of an audit log backend. Implementations must
// be safe for concurrent use.
type LogStore interface {
	// WriteBatch persists a batch of entries. Called by the Logger when
	// flushing its buffer.
	WriteBatch(ctx context.Context, entries []*LogEntry) error

	// Flush forces pending writes to complete. Called during shutdown.
	Flush(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// LogEntry is one served request. The cache and problem fields are filled
// by handlers through the enrichment helpers; everything else comes from
// the middleware.
type LogEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	DurationNs int64     `json:"duration_ns"`

	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	Method string `json:"method"`
	Route  string `json:"route,omitempty"`
	Path   string `json:"path"`
	Query  string `json:"query,omitempty"`

	StatusCode int `json:"status_code"`

	// CacheState records how the catalog answered: "hit", "miss" or
	// "bypass" for endpoints that always go upstream.
	CacheState string `json:"cache_state,omitempty"`
	// Problem is the resolved problem slug for per-problem endpoints.
	Problem string `json:"problem,omitempty"`

	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Cache states recorded on log entries.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
)

// Config holds audit logging configuration.
type Config struct {
	// Enabled controls whether request logging is active.
	Enabled bool

	// Path is the SQLite database file.
	Path string

	// BufferSize is the number of entries buffered before writes drop.
	BufferSize int

	// FlushInterval is how often buffered entries are written out.
	FlushInterval time.Duration

	// RetentionDays is how long entries are kept (0 = forever).
	RetentionDays int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		Path:          ".cache/goleet.db",
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		RetentionDays: 30,
	}
}
