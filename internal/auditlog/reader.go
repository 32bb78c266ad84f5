package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// LogQueryParams filters and paginates request log retrieval.
type LogQueryParams struct {
	Since      time.Time // inclusive lower bound
	Until      time.Time // exclusive upper bound
	Route      string
	Method     string
	Problem    string
	ErrorType  string
	Search     string
	StatusCode *int
	Limit      int
	Offset     int
}

// LogListResult holds one page of request log entries.
type LogListResult struct {
	Entries []LogEntry `json:"entries"`
	Total   int        `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
}

// Reader provides read access to the request log for the admin API.
type Reader struct {
	db *sql.DB
}

// NewReader creates a reader over the same database the store writes to.
func NewReader(db *sql.DB) (*Reader, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &Reader{db: db}, nil
}

const logColumns = `id, timestamp, duration_ns, request_id, client_ip, user_agent,
	method, route, path, query, status_code, cache_state, problem, error_type, error_message`

// Logs returns a filtered, newest-first page of request log entries.
func (r *Reader) Logs(ctx context.Context, params LogQueryParams) (*LogListResult, error) {
	limit, offset := clampLimitOffset(params.Limit, params.Offset)

	var conditions []string
	var args []interface{}

	if !params.Since.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, params.Since.UTC().Format(time.RFC3339Nano))
	}
	if !params.Until.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, params.Until.UTC().Format(time.RFC3339Nano))
	}
	if params.Route != "" {
		conditions = append(conditions, "route = ?")
		args = append(args, params.Route)
	}
	if params.Method != "" {
		conditions = append(conditions, "method = ?")
		args = append(args, params.Method)
	}
	if params.Problem != "" {
		conditions = append(conditions, "problem = ?")
		args = append(args, params.Problem)
	}
	if params.ErrorType != "" {
		conditions = append(conditions, "error_type LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLikeWildcards(params.ErrorType)+"%")
	}
	if params.StatusCode != nil {
		conditions = append(conditions, "status_code = ?")
		args = append(args, *params.StatusCode)
	}
	if params.Search != "" {
		s := "%" + escapeLikeWildcards(params.Search) + "%"
		conditions = append(conditions, `(request_id LIKE ? ESCAPE '\' OR path LIKE ? ESCAPE '\' OR query LIKE ? ESCAPE '\' OR problem LIKE ? ESCAPE '\' OR error_message LIKE ? ESCAPE '\')`)
		args = append(args, s, s, s, s, s)
	}

	where := buildWhereClause(conditions)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM request_logs"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count request log entries: %w", err)
	}

	dataQuery := "SELECT " + logColumns + " FROM request_logs" + where +
		" ORDER BY timestamp DESC LIMIT ? OFFSET ?"
	dataArgs := append(append([]interface{}(nil), args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query request logs: %w", err)
	}
	defer rows.Close()

	entries := make([]LogEntry, 0)
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating request log rows: %w", err)
	}

	return &LogListResult{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// LogByID returns a single entry, or (nil, nil) when no entry exists.
func (r *Reader) LogByID(ctx context.Context, id string) (*LogEntry, error) {
	query := "SELECT " + logColumns + " FROM request_logs WHERE id = ? LIMIT 1"

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query request log by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanLogEntry(rows)
}

// RouteStat aggregates served requests per route.
type RouteStat struct {
	Route    string `json:"route"`
	Count    int    `json:"count"`
	Errors   int    `json:"errors"`
	AvgNanos int64  `json:"avg_duration_ns"`
}

// RouteStats returns per-route request counts since the given time,
// busiest routes first.
func (r *Reader) RouteStats(ctx context.Context, since time.Time) ([]RouteStat, error) {
	query := `SELECT route, COUNT(*),
			SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END),
			CAST(AVG(duration_ns) AS INTEGER)
		FROM request_logs
		WHERE timestamp >= ? AND route != ''
		GROUP BY route
		ORDER BY COUNT(*) DESC`

	rows, err := r.db.QueryContext(ctx, query, since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to query route stats: %w", err)
	}
	defer rows.Close()

	stats := make([]RouteStat, 0)
	for rows.Next() {
		var s RouteStat
		if err := rows.Scan(&s.Route, &s.Count, &s.Errors, &s.AvgNanos); err != nil {
			return nil, fmt.Errorf("failed to scan route stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route stats: %w", err)
	}
	return stats, nil
}

func scanLogEntry(rows *sql.Rows) (*LogEntry, error) {
	var e LogEntry
	var ts string

	if err := rows.Scan(&e.ID, &ts, &e.DurationNs, &e.RequestID, &e.ClientIP, &e.UserAgent,
		&e.Method, &e.Route, &e.Path, &e.Query, &e.StatusCode, &e.CacheState,
		&e.Problem, &e.ErrorType, &e.ErrorMessage); err != nil {
		return nil, fmt.Errorf("failed to scan request log row: %w", err)
	}

	e.Timestamp = parseSQLTimestamp(ts, e.ID)
	return &e, nil
}

func parseSQLTimestamp(ts string, entryID string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999999999-07:00", ts); err == nil {
		return t
	}

	slog.Warn("failed to parse request log timestamp", "id", entryID, "raw_timestamp", ts)
	return time.Time{}
}

func clampLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func buildWhereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// escapeLikeWildcards escapes %, _ and \ so user input matches literally
// inside a LIKE pattern.
func escapeLikeWildcards(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
