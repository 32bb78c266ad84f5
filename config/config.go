// Package config loads the gateway configuration. Values are layered:
// compiled-in defaults, then an optional YAML file, then flat environment
// variables. A .env file in the working directory seeds the environment
// without overriding variables that are already set.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the full gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      string `yaml:"port"`
	MasterKey string `yaml:"master_key"`
	// BodySizeLimit is a human-readable size such as "512K" or "10M".
	BodySizeLimit   string `yaml:"body_size_limit"`
	MetricsEnabled  bool   `yaml:"metrics_enabled"`
	MetricsEndpoint string `yaml:"metrics_endpoint"`
	SwaggerEnabled  bool   `yaml:"swagger_enabled"`
}

// UpstreamConfig tunes the GraphQL client. Durations are plain numbers:
// timeout in seconds, backoff and page delay in milliseconds.
type UpstreamConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Timeout        int    `yaml:"timeout"`
	RetryAttempts  int    `yaml:"retry_attempts"`
	RetryBackoffMS int    `yaml:"retry_backoff_ms"`
	PageSize       int    `yaml:"page_size"`
	PageDelayMS    int    `yaml:"page_delay_ms"`
	UserAgent      string `yaml:"user_agent"`
}

// CatalogConfig selects the bootstrap artifact store and tunes the cache.
// RedisTTL and RefreshInterval are in seconds.
type CatalogConfig struct {
	// Store is "file" or "redis".
	Store             string `yaml:"store"`
	Path              string `yaml:"path"`
	RedisURL          string `yaml:"redis_url"`
	RedisKey          string `yaml:"redis_key"`
	RedisTTL          int    `yaml:"redis_ttl"`
	RefreshInterval   int    `yaml:"refresh_interval"`
	DetailCapacity    int    `yaml:"detail_capacity"`
	BackgroundRefresh bool   `yaml:"background_refresh"`
}

// LoggingConfig controls the request audit log. FlushInterval is in
// seconds.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	BufferSize    int    `yaml:"buffer_size"`
	FlushInterval int    `yaml:"flush_interval"`
	RetentionDays int    `yaml:"retention_days"`
}

// buildDefaultConfig returns the compiled-in defaults every load starts
// from.
func buildDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			BodySizeLimit:   "1M",
			MetricsEndpoint: "/metrics",
		},
		Upstream: UpstreamConfig{
			Endpoint:       "https://leetcode.com/graphql",
			Timeout:        30,
			RetryAttempts:  3,
			RetryBackoffMS: 1000,
			PageSize:       100,
			PageDelayMS:    300,
		},
		Catalog: CatalogConfig{
			Store:             "file",
			Path:              "data/leetcode_questions.json",
			RedisKey:          "goleet:catalog",
			RedisTTL:          86400,
			RefreshInterval:   3600,
			DetailCapacity:    500,
			BackgroundRefresh: true,
		},
		Logging: LoggingConfig{
			Path:          ".cache/goleet.db",
			BufferSize:    1000,
			FlushInterval: 5,
			RetentionDays: 30,
		},
	}
}

// Load reads configuration from defaults, the optional YAML file named by
// GOLEET_CONFIG (falling back to ./config.yaml when present), and the
// environment. String values in the YAML file may use ${VAR} and
// ${VAR:-default} placeholders.
func Load() (*Config, error) {
	// Seeds the environment; already-set variables win.
	_ = godotenv.Load()

	cfg := buildDefaultConfig()

	path := os.Getenv("GOLEET_CONFIG")
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(expandString(string(raw))), cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case explicit || !os.IsNotExist(err):
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// placeholderRE matches ${VAR} and ${VAR:-default} tokens.
var placeholderRE = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*(?::-[^}]*)?\}`)

// expandString substitutes environment variables into placeholder tokens.
// A token without a default stays verbatim when the variable is unset or
// empty, so a missing required value is visible in the loaded config.
func expandString(s string) string {
	return placeholderRE.ReplaceAllStringFunc(s, func(token string) string {
		name, def, hasDefault := strings.Cut(token[2:len(token)-1], ":-")
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return token
	})
}

// applyEnvOverrides copies flat environment variables over the config.
// Unset variables leave the current value alone.
func applyEnvOverrides(cfg *Config) error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.MasterKey, "GOLEET_MASTER_KEY")
	setString(&cfg.Server.BodySizeLimit, "BODY_SIZE_LIMIT")
	setString(&cfg.Server.MetricsEndpoint, "METRICS_ENDPOINT")
	setString(&cfg.Upstream.Endpoint, "UPSTREAM_ENDPOINT")
	setString(&cfg.Upstream.UserAgent, "UPSTREAM_USER_AGENT")
	setString(&cfg.Catalog.Store, "CATALOG_STORE")
	setString(&cfg.Catalog.Path, "CATALOG_PATH")
	setString(&cfg.Catalog.RedisURL, "REDIS_URL")
	setString(&cfg.Catalog.RedisKey, "REDIS_KEY")
	setString(&cfg.Logging.Path, "LOGGING_PATH")

	bools := []struct {
		dst *bool
		key string
	}{
		{&cfg.Server.MetricsEnabled, "METRICS_ENABLED"},
		{&cfg.Server.SwaggerEnabled, "SWAGGER_ENABLED"},
		{&cfg.Catalog.BackgroundRefresh, "BACKGROUND_REFRESH"},
		{&cfg.Logging.Enabled, "LOGGING_ENABLED"},
	}
	for _, b := range bools {
		if err := setBool(b.dst, b.key); err != nil {
			return err
		}
	}

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Upstream.Timeout, "UPSTREAM_TIMEOUT"},
		{&cfg.Upstream.RetryAttempts, "UPSTREAM_RETRY_ATTEMPTS"},
		{&cfg.Upstream.RetryBackoffMS, "UPSTREAM_RETRY_BACKOFF_MS"},
		{&cfg.Upstream.PageSize, "UPSTREAM_PAGE_SIZE"},
		{&cfg.Upstream.PageDelayMS, "UPSTREAM_PAGE_DELAY_MS"},
		{&cfg.Catalog.RedisTTL, "REDIS_TTL"},
		{&cfg.Catalog.RefreshInterval, "CATALOG_REFRESH_INTERVAL"},
		{&cfg.Catalog.DetailCapacity, "DETAIL_CACHE_CAPACITY"},
		{&cfg.Logging.BufferSize, "LOGGING_BUFFER_SIZE"},
		{&cfg.Logging.FlushInterval, "LOGGING_FLUSH_INTERVAL"},
		{&cfg.Logging.RetentionDays, "LOGGING_RETENTION_DAYS"},
	}
	for _, n := range ints {
		if err := setInt(n.dst, n.key); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: must be true or false", key, v)
	}
	*dst = parsed
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: must be an integer", key, v)
	}
	*dst = parsed
	return nil
}

// Validate checks the loaded configuration and returns the first problem
// found, phrased so the fix is obvious.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid server port %q: must be a number between 1 and 65535", c.Server.Port)
	}
	if err := ValidateBodySizeLimit(c.Server.BodySizeLimit); err != nil {
		return err
	}

	switch c.Catalog.Store {
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog store \"file\" needs a path (CATALOG_PATH or catalog.path)")
		}
	case "redis":
		if c.Catalog.RedisURL == "" {
			return fmt.Errorf("catalog store \"redis\" needs a connection URL (REDIS_URL or catalog.redis_url)")
		}
	default:
		return fmt.Errorf("unknown catalog store %q: use \"file\" or \"redis\"", c.Catalog.Store)
	}

	if c.Upstream.RetryAttempts < 1 {
		return fmt.Errorf("upstream retry attempts must be at least 1, got %d", c.Upstream.RetryAttempts)
	}
	if c.Upstream.PageSize < 1 {
		return fmt.Errorf("upstream page size must be at least 1, got %d", c.Upstream.PageSize)
	}
	if c.Catalog.RefreshInterval < 1 {
		return fmt.Errorf("catalog refresh interval must be at least 1 second, got %d", c.Catalog.RefreshInterval)
	}
	if c.Logging.Enabled && c.Logging.Path == "" {
		return fmt.Errorf("request logging is enabled but no database path is set (LOGGING_PATH or logging.path)")
	}
	return nil
}

// Body size limits are bounded to catch unit mistakes: below 1K the server
// could not accept a request body at all, above 100M the limit stops
// limiting anything.
const (
	minBodySizeLimit = 1 << 10
	maxBodySizeLimit = 100 << 20
)

var bodySizeRE = regexp.MustCompile(`^([0-9]+)([KkMm][Bb]?)?$`)

// ParseBodySizeLimit converts a size string such as "512K" or "10M" to
// bytes. The empty string parses to 0, meaning the server default applies.
func ParseBodySizeLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	m := bodySizeRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid body size limit %q: use a byte count or a K/M suffix such as \"512K\" or \"10M\"", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid body size limit %q: %w", s, err)
	}
	switch {
	case m[2] == "":
	case m[2][0] == 'K' || m[2][0] == 'k':
		n <<= 10
	default:
		n <<= 20
	}

	if n < minBodySizeLimit || n > maxBodySizeLimit {
		return 0, fmt.Errorf("body size limit %q out of range: must be between 1K and 100M", s)
	}
	return n, nil
}

// ValidateBodySizeLimit reports whether a size string is acceptable.
func ValidateBodySizeLimit(s string) error {
	_, err := ParseBodySizeLimit(s)
	return err
}
