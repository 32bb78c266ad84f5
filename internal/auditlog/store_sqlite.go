package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLite allows 999 bindable parameters per statement by default. With 15
// columns per entry that caps a multi-row insert at 66 entries, so larger
// batches are chunked.
const (
	maxSQLiteParams    = 999
	columnsPerEntry    = 15
	maxEntriesPerBatch = maxSQLiteParams / columnsPerEntry
)

// cleanupInterval is how often expired entries are deleted.
const cleanupInterval = 1 * time.Hour

// OpenDatabase opens the SQLite database at path, creating the parent
// directory if needed. WAL mode allows concurrent reads while the flush
// loop writes.
func OpenDatabase(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultConfig().Path
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return db, nil
}

// SQLiteStore implements LogStore on a SQLite database.
type SQLiteStore struct {
	db            *sql.DB
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewSQLiteStore creates the request_logs table if needed and starts the
// retention cleanup goroutine when retention is configured. The database
// handle stays owned by the caller.
func NewSQLiteStore(db *sql.DB, retentionDays int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS request_logs (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			duration_ns INTEGER DEFAULT 0,
			request_id TEXT,
			client_ip TEXT,
			user_agent TEXT,
			method TEXT,
			route TEXT,
			path TEXT,
			query TEXT,
			status_code INTEGER DEFAULT 0,
			cache_state TEXT,
			problem TEXT,
			error_type TEXT,
			error_message TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create request_logs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON request_logs(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_requests_route ON request_logs(route)",
		"CREATE INDEX IF NOT EXISTS idx_requests_status ON request_logs(status_code)",
		"CREATE INDEX IF NOT EXISTS idx_requests_request_id ON request_logs(request_id)",
		"CREATE INDEX IF NOT EXISTS idx_requests_problem ON request_logs(problem)",
		"CREATE INDEX IF NOT EXISTS idx_requests_error_type ON request_logs(error_type)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &SQLiteStore{
		db:            db,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go store.cleanupLoop()
	}

	return store, nil
}

// WriteBatch inserts entries with multi-row statements, chunked to stay
// under the SQLite parameter limit.
func (s *SQLiteStore) WriteBatch(ctx context.Context, entries []*LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	for i := 0; i < len(entries); i += maxEntriesPerBatch {
		end := i + maxEntriesPerBatch
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[i:end]

		placeholders := make([]string, len(chunk))
		values := make([]interface{}, 0, len(chunk)*columnsPerEntry)

		for j, e := range chunk {
			placeholders[j] = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
			values = append(values,
				e.ID,
				e.Timestamp.UTC().Format(time.RFC3339Nano),
				e.DurationNs,
				e.RequestID,
				e.ClientIP,
				e.UserAgent,
				e.Method,
				e.Route,
				e.Path,
				e.Query,
				e.StatusCode,
				e.CacheState,
				e.Problem,
				e.ErrorType,
				e.ErrorMessage,
			)
		}

		query := `INSERT OR IGNORE INTO request_logs (id, timestamp, duration_ns, request_id,
			client_ip, user_agent, method, route, path, query, status_code, cache_state,
			problem, error_type, error_message) VALUES ` + strings.Join(placeholders, ",")

		if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
			return fmt.Errorf("failed to insert request log batch %d: %w", i/maxEntriesPerBatch, err)
		}
	}

	return nil
}

// Flush is a no-op: SQLite writes are synchronous.
func (s *SQLiteStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. The database handle is left open for
// its owner to close. Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

func (s *SQLiteStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup deletes entries older than the retention period.
func (s *SQLiteStore) cleanup() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays).UTC().Format(time.RFC3339)

	result, err := s.db.Exec("DELETE FROM request_logs WHERE timestamp < ?", cutoff)
	if err != nil {
		slog.Error("failed to clean up old request logs", "error", err)
		return
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected > 0 {
		slog.Info("cleaned up old request logs", "deleted", rowsAffected)
	}
}
