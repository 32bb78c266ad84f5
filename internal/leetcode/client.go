// Package leetcode provides the GraphQL client for the upstream API with:
// - Request marshaling and tolerant response decoding
// - Bounded retries with a fixed pause
// - Standardized error mapping (timeouts, transport, non-2xx)
// - Circuit breaking
package leetcode

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"goleet/internal/core"
)

// Operation names as they appear in logs, metrics and error messages.
const (
	opProblemList       = "problemsetQuestionList"
	opQuestionData      = "questionData"
	opUserProfile       = "userPublicProfile"
	opUserContests      = "userContestRankingInfo"
	opRecentSubmissions = "recentSubmissions"
	opDailyChallenge    = "questionOfToday"
)

// maxResponseBytes caps how much of an upstream response we read (10MB).
const maxResponseBytes = 10 << 20

// Config holds configuration for the upstream client
type Config struct {
	// Endpoint is the GraphQL endpoint URL
	Endpoint string

	// Timeout is the per-request deadline (default: 30s)
	Timeout time.Duration

	// RetryAttempts is the total number of attempts made by the retrying
	// calls, including the first (default: 3)
	RetryAttempts int

	// RetryBackoff is the fixed pause between attempts (default: 1s)
	RetryBackoff time.Duration

	// UserAgent is sent on every request
	UserAgent string
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:      "https://leetcode.com/graphql",
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryBackoff:  1 * time.Second,
		UserAgent:     "Mozilla/5.0 (compatible; goleet/1.0)",
	}
}

// Hooks receives upstream request observations. Implementations must be
// safe for concurrent use. A nil Hooks disables observation.
type Hooks interface {
	UpstreamRequest(operation, outcome string, elapsed time.Duration)
}

// Client posts GraphQL queries to the upstream API
type Client struct {
	httpClient *http.Client
	cfg        Config
	breaker    *gobreaker.CircuitBreaker
	hooks      Hooks
}

// New creates a new upstream client with the given configuration
func New(cfg Config) *Client {
	return NewWithHTTPClient(newHTTPClient(), cfg)
}

// NewWithHTTPClient creates a new upstream client with a custom HTTP client
func NewWithHTTPClient(httpClient *http.Client, cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultConfig().Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = DefaultConfig().RetryAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultConfig().RetryBackoff
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		breaker:    newBreaker(),
	}
}

// SetHooks installs observation hooks. Must be called before the client
// is shared across goroutines.
func (c *Client) SetHooks(hooks Hooks) {
	c.hooks = hooks
}

// newHTTPClient builds the transport shared by all requests. Keep-alive
// pooling matters here: a full refresh walks dozens of pages against the
// same host.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}

	// The overall deadline comes from the per-request context.
	return &http.Client{Transport: transport}
}

func newBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "leetcode-graphql",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Only infrastructure failures count against the breaker. A 4xx
			// from a bad username must not take the upstream offline for
			// everyone else.
			var gerr *core.GatewayError
			if errors.As(err, &gerr) {
				switch gerr.Type {
				case core.ErrorTypeTimeout, core.ErrorTypeTransport:
					return false
				case core.ErrorTypeUpstream:
					return gerr.StatusCode < 500 && gerr.StatusCode != http.StatusTooManyRequests
				}
				return true
			}
			return false
		},
	})
}

// Query posts a single GraphQL request and returns the parsed response
// document. No retries; the circuit breaker may short-circuit the call.
func (c *Client) Query(ctx context.Context, operation, query string, variables map[string]any) (gjson.Result, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, operation, query, variables)
	})
	c.observe(operation, err, time.Since(start))
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return gjson.Result{}, core.NewTransportError(operation, err)
		}
		return gjson.Result{}, err
	}
	return result.(gjson.Result), nil
}

// QueryWithRetry posts a GraphQL request with up to RetryAttempts total
// attempts and a fixed pause between them. The pause is abandoned early if
// the context is canceled.
func (c *Client) QueryWithRetry(ctx context.Context, operation, query string, variables map[string]any) (gjson.Result, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return gjson.Result{}, ctx.Err()
			case <-time.After(c.cfg.RetryBackoff):
			}
		}

		doc, err := c.Query(ctx, operation, query, variables)
		if err != nil {
			lastErr = err
			slog.Debug("upstream request failed, retrying",
				"operation", operation,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}
		return doc, nil
	}
	return gjson.Result{}, lastErr
}

// do executes a single HTTP request without retries
func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any) (gjson.Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload := struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}{Query: query, Variables: variables}

	body, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, core.NewTransportError(operation, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, core.NewTransportError(operation, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Referer", "https://leetcode.com")
	// Declaring encodings ourselves disables the transport's transparent
	// gzip, so decompression below is on us.
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return gjson.Result{}, core.NewTimeoutError(operation, err)
		}
		return gjson.Result{}, core.NewTransportError(operation, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return gjson.Result{}, core.NewTimeoutError(operation, err)
		}
		return gjson.Result{}, core.NewTransportError(operation, fmt.Errorf("failed to read response: %w", err))
	}

	data, err := decompress(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return gjson.Result{}, core.NewMalformedDataError(operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, core.NewUpstreamError(operation, resp.StatusCode,
			fmt.Sprintf("upstream answered %s", resp.Status), nil)
	}

	if !gjson.ValidBytes(data) {
		return gjson.Result{}, core.NewMalformedDataError(operation, errors.New("response is not valid JSON"))
	}

	return gjson.ParseBytes(data), nil
}

func (c *Client) observe(operation string, err error, elapsed time.Duration) {
	if c.hooks == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		var gerr *core.GatewayError
		if errors.As(err, &gerr) {
			outcome = string(gerr.Type)
		}
	}
	c.hooks.UpstreamRequest(operation, outcome, elapsed)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// decompress decodes a response body according to its Content-Encoding.
func decompress(encoding string, data []byte) ([]byte, error) {
	var reader io.Reader
	switch encoding {
	case "", "identity":
		return data, nil
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		reader = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(data))
		defer func() {
			_ = fl.Close()
		}()
		reader = fl
	case "br":
		reader = brotli.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported content encoding: %q", encoding)
	}

	decoded, err := io.ReadAll(io.LimitReader(reader, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s response: %w", encoding, err)
	}
	return decoded, nil
}
