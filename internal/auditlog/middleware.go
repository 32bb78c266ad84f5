package auditlog

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

// logEntryKey is the echo context key holding the in-flight log entry.
const logEntryKey contextKey = "auditlog_entry"

// Middleware records one LogEntry per request. The entry is placed in the
// echo context so handlers can enrich it, and written asynchronously after
// the handler returns.
func Middleware(logger LoggerInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if logger == nil || !logger.Config().Enabled {
				return next(c)
			}

			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set("X-Request-ID", requestID)

			entry := &LogEntry{
				ID:        uuid.NewString(),
				Timestamp: start,
				RequestID: requestID,
				ClientIP:  c.RealIP(),
				UserAgent: req.UserAgent(),
				Method:    req.Method,
				Path:      req.URL.Path,
				Query:     req.URL.RawQuery,
			}
			c.Set(string(logEntryKey), entry)

			err := next(c)

			// The route pattern is only known after routing ran.
			entry.Route = c.Path()
			entry.DurationNs = time.Since(start).Nanoseconds()
			entry.StatusCode = c.Response().Status

			logger.Write(entry)
			return err
		}
	}
}

func entryFromContext(c echo.Context) *LogEntry {
	entry, _ := c.Get(string(logEntryKey)).(*LogEntry)
	return entry
}

// MarkCacheState records whether the catalog answered locally. Handlers
// call this with CacheHit, CacheMiss or CacheBypass.
func MarkCacheState(c echo.Context, state string) {
	if entry := entryFromContext(c); entry != nil {
		entry.CacheState = state
	}
}

// MarkProblem records the resolved problem slug on the log entry.
func MarkProblem(c echo.Context, slug string) {
	if entry := entryFromContext(c); entry != nil {
		entry.Problem = slug
	}
}

// MarkError records the error taxonomy on the log entry.
func MarkError(c echo.Context, errorType, message string) {
	if entry := entryFromContext(c); entry != nil {
		entry.ErrorType = errorType
		entry.ErrorMessage = message
	}
}
