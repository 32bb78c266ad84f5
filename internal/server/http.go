package server

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "goleet/docs"
	"goleet/internal/auditlog"
	"goleet/internal/catalog"
	"goleet/internal/observability"
)

// DefaultBodySizeLimit caps request bodies. The API is read-only, so
// anything beyond a small margin is noise.
const DefaultBodySizeLimit int64 = 1 << 20 // 1MB

// Server wraps the Echo instance and the route handlers.
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options.
type Config struct {
	MasterKey       string // Optional: bearer key guarding the admin API
	MetricsEnabled  bool   // Whether to expose the Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for the metrics endpoint (default: /metrics)
	SwaggerEnabled  bool   // Whether to serve the Swagger UI at /swagger
	BodySizeLimit   int64  // Max request body size in bytes (default: 1MB)

	AuditLogger auditlog.LoggerInterface // nil disables request logging
	AuditReader *auditlog.Reader         // nil disables the admin log endpoints
	Metrics     *observability.Collector // nil disables HTTP metrics
}

// New assembles the HTTP server around the catalog cache and the upstream
// client.
func New(cache *catalog.Cache, client UpstreamClient, cfg *Config) *Server {
	if cfg == nil {
		cfg = &Config{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := NewHandler(cache, client, cfg.AuditReader)

	// Global middleware stack (order matters): recovery outermost, then
	// CORS and compression mirroring the original service, then request
	// accounting so metrics and audit entries see the final status.
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())

	bodySizeLimit := cfg.BodySizeLimit
	if bodySizeLimit <= 0 {
		bodySizeLimit = DefaultBodySizeLimit
	}
	e.Use(middleware.BodyLimit(strconv.FormatInt(bodySizeLimit, 10)))

	if cfg.Metrics != nil {
		e.Use(metricsMiddleware(cfg.Metrics))
	}
	e.Use(auditlog.Middleware(cfg.AuditLogger))

	e.GET("/", handler.Home)
	e.GET("/health", handler.Health)

	if cfg.MetricsEnabled {
		metricsPath := "/metrics"
		if cfg.MetricsEndpoint != "" {
			// Normalize path to prevent traversal attacks
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		h := promhttp.Handler()
		if cfg.Metrics != nil {
			h = promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})
		}
		e.GET(metricsPath, echo.WrapHandler(h))
	}

	if cfg.SwaggerEnabled {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// Catalog routes
	e.GET("/problems", handler.ListProblems)
	e.GET("/problems/filter", handler.FilterProblems)
	e.GET("/problems/tag/:tag", handler.ProblemsByTag)
	e.GET("/problem/:key", handler.GetProblem)
	e.GET("/problem/:key/similar", handler.SimilarProblems)
	e.GET("/search", handler.SearchProblems)
	e.GET("/random", handler.RandomProblem)
	e.GET("/stats", handler.Stats)
	e.GET("/tags", handler.ListTags)

	// Upstream passthrough routes
	e.GET("/daily", handler.DailyChallenge)
	e.GET("/user/:username", handler.UserProfile)
	e.GET("/user/:username/contests", handler.UserContests)
	e.GET("/user/:username/submissions", handler.UserSubmissions)

	// Admin API (master key required when configured)
	admin := e.Group("/admin/api/v1", AuthMiddleware(cfg.MasterKey))
	admin.GET("/requests", handler.AdminRequests)
	admin.GET("/requests/:id", handler.AdminRequestByID)
	admin.GET("/stats/routes", handler.AdminRouteStats)
	admin.POST("/refresh", handler.AdminRefresh)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// metricsMiddleware records one observation per request. Runs after routing
// so the route pattern, not the raw path, becomes the label.
func metricsMiddleware(m *observability.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			m.ObserveHTTP(c.Request().Method, route, c.Response().Status, time.Since(start))
			return err
		}
	}
}
