// Package export implements the bulk catalog download behind the leetsync
// command: it walks the full problem list, fetches every problem's detail
// record and writes the artifact the gateway bootstraps from.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"goleet/internal/core"
	"goleet/internal/leetcode"
	"goleet/internal/store"
)

// Defaults applied by New when the corresponding Config field is unset.
const (
	// DefaultPageSize matches the upstream cap on list page length.
	DefaultPageSize = 100
	// DefaultPageDelay spaces out list page fetches.
	DefaultPageDelay = 500 * time.Millisecond
	// DefaultSaveEvery is how many fetched records trigger an
	// intermediate artifact save.
	DefaultSaveEvery = 100
	// DefaultMaxAttempts bounds retries per problem.
	DefaultMaxAttempts = 5
	// DefaultRateLimitPause is the long sleep after an upstream 429.
	DefaultRateLimitPause = 30 * time.Second
	// DefaultBackoffBase seeds the exponential backoff for transport
	// failures: base<<attempt plus up to one base of jitter.
	DefaultBackoffBase = time.Second
)

// Client is the subset of the upstream client the exporter drives.
type Client interface {
	FetchCatalogPage(ctx context.Context, skip, limit int) (*leetcode.CatalogPage, error)
	FetchDetail(ctx context.Context, slug string) (*core.ProblemDetail, error)
}

// Config tunes an export run.
type Config struct {
	// Limit caps how many problems are exported. Zero means all.
	Limit int
	// PageSize is the number of entries requested per list page.
	PageSize int
	// PageDelay is the pause between consecutive list pages.
	PageDelay time.Duration
	// Details controls whether per-problem detail records are fetched.
	// When false the artifact only carries the lightweight list rows.
	Details bool
	// Resume reuses records already present in the output artifact
	// instead of fetching them again.
	Resume bool
	// SaveEvery persists the partial artifact after this many fetched
	// records so an interrupted run loses little work.
	SaveEvery int
	// MaxAttempts bounds fetch retries (and separately rate-limit
	// pauses) per problem.
	MaxAttempts int
	// RateLimitPause is the sleep after the upstream answers 429.
	RateLimitPause time.Duration
	// BackoffBase seeds the exponential backoff for other failures.
	BackoffBase time.Duration
}

// Result summarizes a finished run.
type Result struct {
	// Problems holds the exported records in catalog order, each the
	// wrapped {"data":{"question":{...}}} form the bootstrap loader
	// accepts.
	Problems []json.RawMessage
	// Listed is how many entries the problem list produced.
	Listed int
	// Fetched counts records downloaded this run.
	Fetched int
	// Reused counts records carried over from a previous artifact.
	Reused int
	// Failed counts problems given up on after retries.
	Failed int
}

// Exporter downloads the catalog and writes the bootstrap artifact.
type Exporter struct {
	client Client
	store  store.Store
	cfg    Config
}

// New creates an exporter writing through the given artifact store. Zero
// Config fields take package defaults.
func New(client Client, st store.Store, cfg Config) *Exporter {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = DefaultPageDelay
	}
	if cfg.SaveEvery <= 0 {
		cfg.SaveEvery = DefaultSaveEvery
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RateLimitPause <= 0 {
		cfg.RateLimitPause = DefaultRateLimitPause
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	return &Exporter{client: client, store: st, cfg: cfg}
}

// Run walks the problem list, fetches detail records and saves the
// artifact. A partial artifact is saved even when Run returns an error,
// so a rerun with Resume picks up where this one stopped.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	list, err := e.fetchList(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Listed: len(list)}

	if !e.cfg.Details {
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode list artifact: %w", err)
		}
		if err := e.store.Save(ctx, data); err != nil {
			return nil, fmt.Errorf("save list artifact: %w", err)
		}
		slog.Info("list export complete", "problems", len(list))
		return res, nil
	}

	existing := map[string]json.RawMessage{}
	if e.cfg.Resume {
		existing = e.loadExisting(ctx)
		if len(existing) > 0 {
			slog.Info("resuming export", "already_have", len(existing))
		}
	}

	runErr := e.fetchDetails(ctx, list, existing, res)

	data, err := encodeRecords(res.Problems)
	if err != nil {
		return res, err
	}
	if err := e.store.Save(ctx, data); err != nil {
		return res, fmt.Errorf("save artifact: %w", err)
	}

	slog.Info("export complete",
		"problems", len(res.Problems),
		"fetched", res.Fetched,
		"reused", res.Reused,
		"failed", res.Failed,
	)
	return res, runErr
}

// fetchList pages through the lightweight problem list. A page failure
// past the first ends the walk with whatever was collected, matching the
// best-effort nature of a bulk export.
func (e *Exporter) fetchList(ctx context.Context) ([]core.Problem, error) {
	slog.Info("fetching problem list", "page_size", e.cfg.PageSize)

	var acc []core.Problem
	total := -1
	for skip := 0; ; skip += e.cfg.PageSize {
		page, err := e.client.FetchCatalogPage(ctx, skip, e.cfg.PageSize)
		if err != nil {
			if len(acc) == 0 {
				return nil, fmt.Errorf("fetch problem list: %w", err)
			}
			slog.Warn("list page failed, continuing with partial list",
				"skip", skip, "collected", len(acc), "error", err)
			break
		}
		total = page.Total
		acc = append(acc, page.Problems...)
		slog.Info("list progress", "collected", len(acc), "total", total)

		if len(page.Problems) == 0 || (total >= 0 && len(acc) >= total) {
			break
		}
		if e.cfg.Limit > 0 && len(acc) >= e.cfg.Limit {
			break
		}
		if err := sleepCtx(ctx, e.cfg.PageDelay); err != nil {
			return nil, err
		}
	}

	if e.cfg.Limit > 0 && len(acc) > e.cfg.Limit {
		acc = acc[:e.cfg.Limit]
	}
	slog.Info("problem list retrieved", "problems", len(acc))
	return acc, nil
}

// fetchDetails downloads the detail record for every listed problem,
// reusing records from a prior artifact when available. Failed problems
// are skipped; a canceled context stops the walk.
func (e *Exporter) fetchDetails(ctx context.Context, list []core.Problem, existing map[string]json.RawMessage, res *Result) error {
	for _, p := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if prior, ok := existing[p.Slug]; ok {
			res.Problems = append(res.Problems, prior)
			res.Reused++
			continue
		}

		detail, err := e.fetchDetailWithRetry(ctx, p.Slug)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("giving up on problem", "slug", p.Slug, "error", err)
			res.Failed++
			continue
		}

		record, err := wrapRecord(detail)
		if err != nil {
			return err
		}
		res.Problems = append(res.Problems, record)
		res.Fetched++
		slog.Info("processed",
			"done", len(res.Problems),
			"total", len(list),
			"id", detail.ID,
			"title", detail.Title,
		)

		if res.Fetched%e.cfg.SaveEvery == 0 {
			if err := e.saveProgress(ctx, res.Problems); err != nil {
				slog.Warn("intermediate save failed", "error", err)
			}
		}
	}
	return nil
}

// fetchDetailWithRetry layers the export retry policy over the client: a
// 429 waits out the rate limit without consuming an attempt, transient
// failures back off exponentially with jitter, and permanent errors
// (not found, bad request) give up immediately.
func (e *Exporter) fetchDetailWithRetry(ctx context.Context, slug string) (*core.ProblemDetail, error) {
	var lastErr error
	throttled := 0
	for attempt := 1; attempt <= e.cfg.MaxAttempts; {
		detail, err := e.client.FetchDetail(ctx, slug)
		if err == nil {
			return detail, nil
		}
		lastErr = err

		var gerr *core.GatewayError
		if errors.As(err, &gerr) {
			switch {
			case gerr.Type == core.ErrorTypeNotFound || gerr.Type == core.ErrorTypeInvalidRequest:
				return nil, err
			case gerr.StatusCode == http.StatusTooManyRequests:
				throttled++
				if throttled > e.cfg.MaxAttempts {
					return nil, fmt.Errorf("rate limited %d times: %w", throttled-1, err)
				}
				slog.Warn("rate limit hit, sleeping",
					"slug", slug, "pause", e.cfg.RateLimitPause)
				if err := sleepCtx(ctx, e.cfg.RateLimitPause); err != nil {
					return nil, err
				}
				continue
			}
		}

		wait := e.cfg.BackoffBase<<attempt + time.Duration(rand.Int63n(int64(e.cfg.BackoffBase)))
		slog.Warn("fetch failed, retrying",
			"slug", slug,
			"attempt", attempt,
			"max", e.cfg.MaxAttempts,
			"wait", wait,
			"error", err,
		)
		attempt++
		if attempt > e.cfg.MaxAttempts {
			break
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", e.cfg.MaxAttempts, lastErr)
}

func (e *Exporter) saveProgress(ctx context.Context, records []json.RawMessage) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	if err := e.store.Save(ctx, data); err != nil {
		return err
	}
	slog.Info("progress backed up", "records", len(records))
	return nil
}

// loadExisting reads the current artifact and indexes its records by
// slug. Both the wrapped and the flattened record shapes are accepted; a
// missing or unreadable artifact just means nothing to resume from.
func (e *Exporter) loadExisting(ctx context.Context) map[string]json.RawMessage {
	existing := map[string]json.RawMessage{}

	data, err := e.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("could not read prior artifact, starting fresh", "error", err)
		}
		return existing
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		slog.Warn("prior artifact is not a record array, starting fresh")
		return existing
	}
	for _, item := range parsed.Array() {
		slug := item.Get("data.question.titleSlug").String()
		if slug == "" {
			slug = item.Get("titleSlug").String()
		}
		if slug == "" {
			continue
		}
		existing[slug] = json.RawMessage(item.Raw)
	}
	return existing
}

// wrapRecord encodes a detail record in the artifact shape the original
// GraphQL response had, so the file doubles as a response archive.
func wrapRecord(detail *core.ProblemDetail) (json.RawMessage, error) {
	record := struct {
		Data struct {
			Question *core.ProblemDetail `json:"question"`
		} `json:"data"`
	}{}
	record.Data.Question = detail

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record for %s: %w", detail.Slug, err)
	}
	return raw, nil
}

func encodeRecords(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return data, nil
}

// DecodeRecords unpacks wrapped artifact records into detail structs,
// skipping anything that does not parse.
func DecodeRecords(records []json.RawMessage) []*core.ProblemDetail {
	details := make([]*core.ProblemDetail, 0, len(records))
	for _, raw := range records {
		q := gjson.GetBytes(raw, "data.question")
		if !q.Exists() {
			q = gjson.ParseBytes(raw)
		}
		var d core.ProblemDetail
		if err := json.Unmarshal([]byte(q.Raw), &d); err != nil || d.Slug == "" {
			continue
		}
		details = append(details, &d)
	}
	return details
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
