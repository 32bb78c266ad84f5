package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"goleet/internal/core"
	"goleet/internal/leetcode"
	"goleet/internal/store"
)

// fakeUpstream serves list pages from a fixed problem slice and builds
// detail records on demand. Per-slug error queues are drained before a
// fetch succeeds.
type fakeUpstream struct {
	problems []core.Problem
	pageErr  error

	errs  map[string][]error
	calls map[string]int
}

func newFakeUpstream(problems []core.Problem) *fakeUpstream {
	return &fakeUpstream{
		problems: problems,
		errs:     map[string][]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeUpstream) FetchCatalogPage(ctx context.Context, skip, limit int) (*leetcode.CatalogPage, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	page := &leetcode.CatalogPage{Total: len(f.problems)}
	if skip < len(f.problems) {
		page.Problems = f.problems[skip:min(skip+limit, len(f.problems))]
	}
	return page, nil
}

func (f *fakeUpstream) FetchDetail(ctx context.Context, slug string) (*core.ProblemDetail, error) {
	f.calls[slug]++
	if q := f.errs[slug]; len(q) > 0 {
		err := q[0]
		f.errs[slug] = q[1:]
		return nil, err
	}
	var id string
	for _, p := range f.problems {
		if p.Slug == slug {
			id = p.ID
		}
	}
	return &core.ProblemDetail{
		ID:         id,
		DisplayID:  id,
		Title:      "Problem " + id,
		Slug:       slug,
		Difficulty: core.DifficultyEasy,
		URL:        fmt.Sprintf("https://leetcode.com/problems/%s/", slug),
	}, nil
}

type memStore struct {
	data  []byte
	saves int
}

func (m *memStore) Load(ctx context.Context) ([]byte, error) {
	if m.data == nil {
		return nil, store.ErrNotFound
	}
	return m.data, nil
}

func (m *memStore) Save(ctx context.Context, data []byte) error {
	m.data = data
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

func listFixture(n int) []core.Problem {
	problems := make([]core.Problem, 0, n)
	for i := 1; i <= n; i++ {
		problems = append(problems, core.Problem{
			ID:    fmt.Sprintf("%d", i),
			Title: fmt.Sprintf("Problem %d", i),
			Slug:  fmt.Sprintf("problem-%d", i),
		})
	}
	return problems
}

// fastConfig keeps retry pauses at test speed.
func fastConfig() Config {
	return Config{
		Details:        true,
		PageDelay:      time.Millisecond,
		BackoffBase:    time.Millisecond,
		RateLimitPause: time.Millisecond,
	}
}

func TestRun_FullExport(t *testing.T) {
	upstream := newFakeUpstream(listFixture(3))
	st := &memStore{}
	cfg := fastConfig()
	cfg.SaveEvery = 2

	res, err := New(upstream, st, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Listed != 3 || res.Fetched != 3 || res.Failed != 0 {
		t.Errorf("unexpected result: %+v", res)
	}

	parsed := gjson.ParseBytes(st.data)
	if !parsed.IsArray() {
		t.Fatalf("artifact is not an array: %s", st.data)
	}
	records := parsed.Array()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	first := records[0].Get("data.question")
	if !first.Exists() {
		t.Fatalf("record missing data.question wrapper: %s", records[0].Raw)
	}
	if first.Get("questionId").String() != "1" || first.Get("titleSlug").String() != "problem-1" {
		t.Errorf("unexpected first record: %s", first.Raw)
	}
	if first.Get("url").String() != "https://leetcode.com/problems/problem-1/" {
		t.Errorf("url not carried into artifact: %s", first.Raw)
	}

	// One intermediate save after the second record plus the final save.
	if st.saves != 2 {
		t.Errorf("expected 2 saves, got %d", st.saves)
	}
}

func TestRun_ListOnly(t *testing.T) {
	upstream := newFakeUpstream(listFixture(4))
	st := &memStore{}
	cfg := fastConfig()
	cfg.Details = false

	res, err := New(upstream, st, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Listed != 4 || res.Fetched != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(upstream.calls) != 0 {
		t.Errorf("list-only export fetched details: %v", upstream.calls)
	}

	records := gjson.ParseBytes(st.data).Array()
	if len(records) != 4 {
		t.Fatalf("expected 4 flattened records, got %d", len(records))
	}
	if records[0].Get("questionId").String() != "1" {
		t.Errorf("expected flattened shape, got %s", records[0].Raw)
	}
}

func TestRun_Limit(t *testing.T) {
	upstream := newFakeUpstream(listFixture(5))
	st := &memStore{}
	cfg := fastConfig()
	cfg.Limit = 2
	cfg.PageSize = 2

	res, err := New(upstream, st, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Listed != 2 || res.Fetched != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(gjson.ParseBytes(st.data).Array()) != 2 {
		t.Errorf("artifact not capped at limit: %s", st.data)
	}
}

func TestRun_ResumeReusesPriorRecords(t *testing.T) {
	prior := `[{"data": {"question": {"questionId": "1", "titleSlug": "problem-1", "likes": 999}}}]`

	upstream := newFakeUpstream(listFixture(2))
	st := &memStore{data: []byte(prior)}
	cfg := fastConfig()
	cfg.Resume = true

	res, err := New(upstream, st, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Reused != 1 || res.Fetched != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if upstream.calls["problem-1"] != 0 {
		t.Errorf("resumed record was fetched again: %v", upstream.calls)
	}

	records := gjson.ParseBytes(st.data).Array()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Get("data.question.likes").Int() != 999 {
		t.Errorf("prior record not carried verbatim: %s", records[0].Raw)
	}
}

func TestRun_SkipsFailedProblem(t *testing.T) {
	upstream := newFakeUpstream(listFixture(3))
	transport := core.NewTransportError("questionData", errors.New("connection reset"))
	upstream.errs["problem-2"] = []error{transport, transport, transport, transport}

	st := &memStore{}
	cfg := fastConfig()
	cfg.MaxAttempts = 2

	res, err := New(upstream, st, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Fetched != 2 || res.Failed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if upstream.calls["problem-2"] != 2 {
		t.Errorf("expected 2 attempts on the failing slug, got %d", upstream.calls["problem-2"])
	}

	records := gjson.ParseBytes(st.data).Array()
	if len(records) != 2 {
		t.Fatalf("failed problem should be absent, got %d records", len(records))
	}
}

func TestFetchDetailRetry_RateLimitDoesNotConsumeAttempts(t *testing.T) {
	upstream := newFakeUpstream(listFixture(1))
	throttle := core.NewUpstreamError("questionData", http.StatusTooManyRequests, "upstream returned status 429", nil)
	upstream.errs["problem-1"] = []error{throttle, throttle}

	cfg := fastConfig()
	cfg.MaxAttempts = 2
	exp := New(upstream, &memStore{}, cfg)

	detail, err := exp.fetchDetailWithRetry(context.Background(), "problem-1")
	if err != nil {
		t.Fatalf("expected success after rate-limit pauses, got %v", err)
	}
	if detail.Slug != "problem-1" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if upstream.calls["problem-1"] != 3 {
		t.Errorf("expected 3 calls (two 429s then success), got %d", upstream.calls["problem-1"])
	}
}

func TestFetchDetailRetry_NotFoundIsPermanent(t *testing.T) {
	upstream := newFakeUpstream(listFixture(1))
	upstream.errs["problem-1"] = []error{core.NewNotFoundError("Question data not found")}

	exp := New(upstream, &memStore{}, fastConfig())

	_, err := exp.fetchDetailWithRetry(context.Background(), "problem-1")
	var gerr *core.GatewayError
	if !errors.As(err, &gerr) || gerr.Type != core.ErrorTypeNotFound {
		t.Fatalf("expected a not-found error, got %v", err)
	}
	if upstream.calls["problem-1"] != 1 {
		t.Errorf("not-found should not be retried, got %d calls", upstream.calls["problem-1"])
	}
}

func TestRun_CanceledContextStopsWalk(t *testing.T) {
	upstream := newFakeUpstream(listFixture(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(upstream, &memStore{}, fastConfig()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDecodeRecords(t *testing.T) {
	details := DecodeRecords([]json.RawMessage{
		json.RawMessage(`{"data": {"question": {"questionId": "1", "titleSlug": "alpha", "likes": 3}}}`),
		json.RawMessage(`{"questionId": "2", "titleSlug": "beta"}`),
		json.RawMessage(`{"noise": true}`),
	})
	if len(details) != 2 {
		t.Fatalf("expected 2 decoded records, got %d", len(details))
	}
	if details[0].Slug != "alpha" || details[0].Likes != 3 {
		t.Errorf("unexpected wrapped decode: %+v", details[0])
	}
	if details[1].Slug != "beta" {
		t.Errorf("unexpected flattened decode: %+v", details[1])
	}
}
