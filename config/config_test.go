package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// clearLoadEnv neutralizes the environment variables Load reads, so tests
// are not affected by whatever the host has set.
func clearLoadEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOLEET_CONFIG", "PORT", "GOLEET_MASTER_KEY", "BODY_SIZE_LIMIT",
		"METRICS_ENABLED", "METRICS_ENDPOINT", "SWAGGER_ENABLED",
		"UPSTREAM_ENDPOINT", "UPSTREAM_TIMEOUT", "UPSTREAM_PAGE_SIZE",
		"CATALOG_STORE", "CATALOG_PATH", "REDIS_URL", "REDIS_KEY",
		"CATALOG_REFRESH_INTERVAL", "LOGGING_ENABLED", "LOGGING_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearLoadEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.MetricsEndpoint != "/metrics" {
		t.Errorf("expected default metrics endpoint /metrics, got %s", cfg.Server.MetricsEndpoint)
	}
	if cfg.Upstream.Timeout != 30 {
		t.Errorf("expected default upstream timeout 30, got %d", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Endpoint != "https://leetcode.com/graphql" {
		t.Errorf("unexpected default endpoint %s", cfg.Upstream.Endpoint)
	}
	if cfg.Catalog.Store != "file" {
		t.Errorf("expected default store file, got %s", cfg.Catalog.Store)
	}
	if cfg.Catalog.DetailCapacity != 500 {
		t.Errorf("expected default detail capacity 500, got %d", cfg.Catalog.DetailCapacity)
	}
	if cfg.Logging.Enabled {
		t.Error("expected request logging to default off")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearLoadEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	configContent := `
server:
  port: "${GOLEET_TEST_PORT:-9999}"
  master_key: "${GOLEET_TEST_KEY:-}"
  swagger_enabled: true
catalog:
  store: file
  path: custom/questions.json
  refresh_interval: 900
`
	writeConfig := func(t *testing.T) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(configContent), 0644); err != nil {
			t.Fatalf("write config file: %v", err)
		}
		t.Setenv("GOLEET_CONFIG", path)
	}

	t.Run("PlaceholderDefaults", func(t *testing.T) {
		clearLoadEnv(t)
		writeConfig(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}

		if cfg.Server.Port != "9999" {
			t.Errorf("expected port 9999 from placeholder default, got %s", cfg.Server.Port)
		}
		if cfg.Server.MasterKey != "" {
			t.Errorf("expected empty master key, got %q", cfg.Server.MasterKey)
		}
		if !cfg.Server.SwaggerEnabled {
			t.Error("expected swagger to be enabled from the file")
		}
		if cfg.Catalog.Path != "custom/questions.json" {
			t.Errorf("unexpected catalog path %s", cfg.Catalog.Path)
		}
		if cfg.Catalog.RefreshInterval != 900 {
			t.Errorf("expected refresh interval 900, got %d", cfg.Catalog.RefreshInterval)
		}
		// Values the file does not mention keep their defaults.
		if cfg.Upstream.Timeout != 30 {
			t.Errorf("expected default upstream timeout to survive, got %d", cfg.Upstream.Timeout)
		}
	})

	t.Run("EnvironmentFillsPlaceholder", func(t *testing.T) {
		clearLoadEnv(t)
		writeConfig(t)
		t.Setenv("GOLEET_TEST_PORT", "1111")
		t.Setenv("GOLEET_TEST_KEY", "real-key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}

		if cfg.Server.Port != "1111" {
			t.Errorf("expected port 1111 from environment, got %s", cfg.Server.Port)
		}
		if cfg.Server.MasterKey != "real-key" {
			t.Errorf("expected master key from environment, got %q", cfg.Server.MasterKey)
		}
	})

	t.Run("FlatEnvironmentBeatsFile", func(t *testing.T) {
		clearLoadEnv(t)
		writeConfig(t)
		t.Setenv("PORT", "2222")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}

		if cfg.Server.Port != "2222" {
			t.Errorf("expected flat PORT to win over the file, got %s", cfg.Server.Port)
		}
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		clearLoadEnv(t)
		t.Setenv("GOLEET_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

		if _, err := Load(); err == nil {
			t.Fatal("expected an error for a missing explicit config file")
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "PORT override",
			envVars: map[string]string{"PORT": "3000"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != "3000" {
					t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "3000")
				}
			},
		},
		{
			name:    "GOLEET_MASTER_KEY override",
			envVars: map[string]string{"GOLEET_MASTER_KEY": "my-secret"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.MasterKey != "my-secret" {
					t.Errorf("Server.MasterKey = %q, want %q", cfg.Server.MasterKey, "my-secret")
				}
			},
		},
		{
			name: "redis store overrides",
			envVars: map[string]string{
				"CATALOG_STORE": "redis",
				"REDIS_URL":     "redis://localhost:6379",
				"REDIS_TTL":     "7200",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Catalog.Store != "redis" {
					t.Errorf("Catalog.Store = %q, want %q", cfg.Catalog.Store, "redis")
				}
				if cfg.Catalog.RedisURL != "redis://localhost:6379" {
					t.Errorf("Catalog.RedisURL = %q, want redis://localhost:6379", cfg.Catalog.RedisURL)
				}
				if cfg.Catalog.RedisTTL != 7200 {
					t.Errorf("Catalog.RedisTTL = %d, want 7200", cfg.Catalog.RedisTTL)
				}
			},
		},
		{
			name: "bool overrides",
			envVars: map[string]string{
				"METRICS_ENABLED":    "true",
				"SWAGGER_ENABLED":    "1",
				"LOGGING_ENABLED":    "true",
				"BACKGROUND_REFRESH": "false",
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Server.MetricsEnabled {
					t.Error("Server.MetricsEnabled should be true")
				}
				if !cfg.Server.SwaggerEnabled {
					t.Error("Server.SwaggerEnabled should be true")
				}
				if !cfg.Logging.Enabled {
					t.Error("Logging.Enabled should be true")
				}
				if cfg.Catalog.BackgroundRefresh {
					t.Error("Catalog.BackgroundRefresh should be false")
				}
			},
		},
		{
			name: "upstream tuning overrides",
			envVars: map[string]string{
				"UPSTREAM_TIMEOUT":          "60",
				"UPSTREAM_PAGE_SIZE":        "50",
				"UPSTREAM_RETRY_BACKOFF_MS": "250",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Upstream.Timeout != 60 {
					t.Errorf("Upstream.Timeout = %d, want 60", cfg.Upstream.Timeout)
				}
				if cfg.Upstream.PageSize != 50 {
					t.Errorf("Upstream.PageSize = %d, want 50", cfg.Upstream.PageSize)
				}
				if cfg.Upstream.RetryBackoffMS != 250 {
					t.Errorf("Upstream.RetryBackoffMS = %d, want 250", cfg.Upstream.RetryBackoffMS)
				}
			},
		},
		{
			name:    "no env vars set preserves defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != "8080" {
					t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
				}
				if cfg.Upstream.Timeout != 30 {
					t.Errorf("Upstream.Timeout = %d, want 30", cfg.Upstream.Timeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearLoadEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := buildDefaultConfig()
			require.NoError(t, applyEnvOverrides(cfg))
			tt.check(t, cfg)
		})
	}

	t.Run("invalid integer", func(t *testing.T) {
		clearLoadEnv(t)
		t.Setenv("UPSTREAM_TIMEOUT", "soon")

		err := applyEnvOverrides(buildDefaultConfig())
		require.Error(t, err)
		require.Contains(t, err.Error(), "UPSTREAM_TIMEOUT")
	})

	t.Run("invalid bool", func(t *testing.T) {
		clearLoadEnv(t)
		t.Setenv("METRICS_ENABLED", "maybe")

		err := applyEnvOverrides(buildDefaultConfig())
		require.Error(t, err)
		require.Contains(t, err.Error(), "METRICS_ENABLED")
	})
}

func TestExpandString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "string without placeholders",
			input:    "simple-string",
			expected: "simple-string",
		},
		{
			name:     "simple variable expansion",
			input:    "${API_KEY}",
			envVars:  map[string]string{"API_KEY": "sk-12345"},
			expected: "sk-12345",
		},
		{
			name:     "variable in middle of string",
			input:    "prefix-${API_KEY}-suffix",
			envVars:  map[string]string{"API_KEY": "sk-12345"},
			expected: "prefix-sk-12345-suffix",
		},
		{
			name:     "multiple variables",
			input:    "${SCHEME}://${HOST}:${PORT}",
			envVars:  map[string]string{"SCHEME": "https", "HOST": "api.example.com", "PORT": "8080"},
			expected: "https://api.example.com:8080",
		},
		{
			name:     "default used when variable missing",
			input:    "${API_KEY:-default-key}",
			expected: "default-key",
		},
		{
			name:     "default used when variable empty",
			input:    "${API_KEY:-default-key}",
			envVars:  map[string]string{"API_KEY": ""},
			expected: "default-key",
		},
		{
			name:     "default ignored when variable set",
			input:    "${API_KEY:-default-key}",
			envVars:  map[string]string{"API_KEY": "sk-real-key"},
			expected: "sk-real-key",
		},
		{
			name:     "default with colon in it",
			input:    "${URL:-http://localhost:8080}",
			expected: "http://localhost:8080",
		},
		{
			name:     "empty default",
			input:    "${OPTIONAL_VAR:-}",
			expected: "",
		},
		{
			name:     "unresolved variable without default stays verbatim",
			input:    "${MISSING_VAR}",
			expected: "${MISSING_VAR}",
		},
		{
			name:     "partially resolved string",
			input:    "${RESOLVED}-${UNRESOLVED}",
			envVars:  map[string]string{"RESOLVED": "value1"},
			expected: "value1-${UNRESOLVED}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			if _, set := tt.envVars["API_KEY"]; !set {
				t.Setenv("API_KEY", "")
			}

			if got := expandString(tt.input); got != tt.expected {
				t.Errorf("expandString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return buildDefaultConfig() }

	t.Run("defaults pass", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatalf("default config should validate, got %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "non-numeric port",
			mutate:  func(cfg *Config) { cfg.Server.Port = "http" },
			wantErr: "port",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = "0" },
			wantErr: "port",
		},
		{
			name:    "unknown store",
			mutate:  func(cfg *Config) { cfg.Catalog.Store = "s3" },
			wantErr: "catalog store",
		},
		{
			name: "redis store without URL",
			mutate: func(cfg *Config) {
				cfg.Catalog.Store = "redis"
				cfg.Catalog.RedisURL = ""
			},
			wantErr: "redis",
		},
		{
			name:    "file store without path",
			mutate:  func(cfg *Config) { cfg.Catalog.Path = "" },
			wantErr: "path",
		},
		{
			name:    "zero retry attempts",
			mutate:  func(cfg *Config) { cfg.Upstream.RetryAttempts = 0 },
			wantErr: "retry attempts",
		},
		{
			name:    "zero refresh interval",
			mutate:  func(cfg *Config) { cfg.Catalog.RefreshInterval = 0 },
			wantErr: "refresh interval",
		},
		{
			name: "logging enabled without path",
			mutate: func(cfg *Config) {
				cfg.Logging.Enabled = true
				cfg.Logging.Path = ""
			},
			wantErr: "logging",
		},
		{
			name:    "bad body size limit",
			mutate:  func(cfg *Config) { cfg.Server.BodySizeLimit = "10X" },
			wantErr: "body size limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseBodySizeLimit(t *testing.T) {
	values := []struct {
		input string
		want  int64
	}{
		{"", 0},
		{"1048576", 1 << 20},
		{"512K", 512 << 10},
		{"512KB", 512 << 10},
		{"512k", 512 << 10},
		{"10M", 10 << 20},
		{"10MB", 10 << 20},
		{"10m", 10 << 20},
		{"  10M  ", 10 << 20},
		{"1K", 1 << 10},
		{"100M", 100 << 20},
	}
	for _, tt := range values {
		got, err := ParseBodySizeLimit(tt.input)
		if err != nil {
			t.Errorf("ParseBodySizeLimit(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBodySizeLimit(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}

	invalid := []string{
		"abc",
		"10X",
		"-10M",
		"10.5M",
		"10B",
		"100",  // below 1K
		"200M", // above 100M
		"1G",
	}
	for _, input := range invalid {
		if _, err := ParseBodySizeLimit(input); err == nil {
			t.Errorf("ParseBodySizeLimit(%q) expected an error, got nil", input)
		}
	}
}
