// Package server provides the REST surface of the catalog gateway.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"

	"goleet/internal/auditlog"
	"goleet/internal/catalog"
	"goleet/internal/core"
	"goleet/internal/leetcode"
)

const (
	filterDefaultLimit = 50
	filterMaxLimit     = 200

	submissionsDefaultLimit = 20
	submissionsMaxLimit     = 100

	// Upstream page cap for the tag passthrough; the list query never
	// returns more than 100 rows per request regardless of the limit.
	tagFetchLimit = 100
)

// UpstreamClient is the slice of the GraphQL client the handlers consume.
type UpstreamClient interface {
	FetchDetail(ctx context.Context, slug string) (*core.ProblemDetail, error)
	FetchProblemsByTag(ctx context.Context, tag string, limit int) (*leetcode.CatalogPage, error)
	FetchDaily(ctx context.Context) (json.RawMessage, error)
	FetchUserProfile(ctx context.Context, username string) (json.RawMessage, error)
	FetchUserContests(ctx context.Context, username string) (json.RawMessage, error)
	FetchRecentSubmissions(ctx context.Context, username string, limit int) (json.RawMessage, error)
}

var _ UpstreamClient = (*leetcode.Client)(nil)

// Handler holds the HTTP handlers
type Handler struct {
	cache  *catalog.Cache
	client UpstreamClient
	audit  *auditlog.Reader
}

// NewHandler creates a new handler over the catalog cache and upstream client.
// audit may be nil when request logging is disabled.
func NewHandler(cache *catalog.Cache, client UpstreamClient, audit *auditlog.Reader) *Handler {
	return &Handler{
		cache:  cache,
		client: client,
		audit:  audit,
	}
}

// problemSummary is the list-endpoint projection of a catalog entry.
type problemSummary struct {
	ID               string `json:"id"`
	FrontendID       string `json:"frontend_id"`
	Title            string `json:"title"`
	TitleSlug        string `json:"title_slug"`
	URL              string `json:"url"`
	Difficulty       string `json:"difficulty"`
	PaidOnly         bool   `json:"paid_only"`
	HasSolution      bool   `json:"has_solution"`
	HasVideoSolution bool   `json:"has_video_solution"`
}

// problemRef is the short projection used by search results and similar
// problem lists.
type problemRef struct {
	ID         string `json:"id"`
	FrontendID string `json:"frontend_id"`
	Title      string `json:"title"`
	TitleSlug  string `json:"title_slug"`
	URL        string `json:"url"`
}

func problemURL(slug string) string {
	return "https://leetcode.com/problems/" + slug + "/"
}

func summaryOf(p *core.Problem) problemSummary {
	return problemSummary{
		ID:               p.ID,
		FrontendID:       p.DisplayID,
		Title:            p.Title,
		TitleSlug:        p.Slug,
		URL:              problemURL(p.Slug),
		Difficulty:       p.Difficulty,
		PaidOnly:         p.PaidOnly,
		HasSolution:      p.HasSolution,
		HasVideoSolution: p.HasVideoSolution,
	}
}

func refOf(p *core.Problem) problemRef {
	return problemRef{
		ID:         p.ID,
		FrontendID: p.DisplayID,
		Title:      p.Title,
		TitleSlug:  p.Slug,
		URL:        problemURL(p.Slug),
	}
}

func summariesOf(entries []core.Problem) []problemSummary {
	out := make([]problemSummary, 0, len(entries))
	for i := range entries {
		out = append(out, summaryOf(&entries[i]))
	}
	return out
}

type healthResponse struct {
	Status          string `json:"status"`
	Timestamp       int64  `json:"timestamp"`
	QuestionsCached int    `json:"questions_cached"`
	DetailsCached   int    `json:"details_cached"`
	// Nil (null in JSON) until the first snapshot is published.
	CacheAgeSeconds *int64 `json:"cache_age_seconds"`
}

// Health handles GET /health. It reports on the caches without touching
// them, so it stays cheap even while a refresh is running.
//
//	@Summary	Gateway liveness and cache freshness
//	@Tags		utility
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Router		/health [get]
func (h *Handler) Health(c echo.Context) error {
	snap := h.cache.Snapshot()
	resp := healthResponse{
		Status:          "ok",
		Timestamp:       time.Now().Unix(),
		QuestionsCached: snap.Len(),
		DetailsCached:   h.cache.DetailCount(),
	}
	if age, ok := h.cache.Age(); ok {
		secs := int64(age.Seconds())
		resp.CacheAgeSeconds = &secs
	}
	return c.JSON(http.StatusOK, resp)
}

// ListProblems handles GET /problems.
//
//	@Summary	Full problem catalog
//	@Tags		problems
//	@Produce	json
//	@Success	200	{array}	problemSummary
//	@Router		/problems [get]
func (h *Handler) ListProblems(c echo.Context) error {
	h.cache.EnsureFresh(c.Request().Context())
	return respondCachedJSON(c, summariesOf(h.cache.Snapshot().Entries()))
}

type filterResponse struct {
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Skip     int              `json:"skip"`
	Problems []problemSummary `json:"problems"`
}

// FilterProblems handles GET /problems/filter.
//
//	@Summary	Filtered, paginated catalog window
//	@Tags		problems
//	@Produce	json
//	@Param		difficulty		query		string	false	"Easy, Medium or Hard"
//	@Param		paid_only		query		bool	false	"premium access filter"
//	@Param		has_solution	query		bool	false	"official solution filter"
//	@Param		limit			query		int		false	"page size, 1-200"	default(50)
//	@Param		skip			query		int		false	"offset into the filtered set"
//	@Success	200				{object}	filterResponse
//	@Failure	400				{object}	errorResponse
//	@Router		/problems/filter [get]
func (h *Handler) FilterProblems(c echo.Context) error {
	difficulty, err := difficultyParam(c)
	if err != nil {
		return handleError(c, err)
	}
	paidOnly, err := boolParam(c, "paid_only")
	if err != nil {
		return handleError(c, err)
	}
	hasSolution, err := boolParam(c, "has_solution")
	if err != nil {
		return handleError(c, err)
	}
	limit, err := intParam(c, "limit", filterDefaultLimit)
	if err != nil {
		return handleError(c, err)
	}
	if limit < 1 || limit > filterMaxLimit {
		return handleError(c, core.NewInvalidRequestError("limit must be between 1 and 200"))
	}
	skip, err := intParam(c, "skip", 0)
	if err != nil {
		return handleError(c, err)
	}
	if skip < 0 {
		return handleError(c, core.NewInvalidRequestError("skip must not be negative"))
	}

	h.cache.EnsureFresh(c.Request().Context())
	entries := h.cache.Snapshot().Entries()

	matched := make([]problemSummary, 0)
	for i := range entries {
		p := &entries[i]
		if difficulty != "" && p.Difficulty != difficulty {
			continue
		}
		if paidOnly != nil && p.PaidOnly != *paidOnly {
			continue
		}
		if hasSolution != nil && p.HasSolution != *hasSolution {
			continue
		}
		matched = append(matched, summaryOf(p))
	}

	window := matched[min(skip, len(matched)):]
	if len(window) > limit {
		window = window[:limit]
	}

	return c.JSON(http.StatusOK, filterResponse{
		Total:    len(matched),
		Limit:    limit,
		Skip:     skip,
		Problems: window,
	})
}

// SearchProblems handles GET /search.
//
//	@Summary	Case-insensitive title search
//	@Tags		problems
//	@Produce	json
//	@Param		query	query	string	true	"substring to match against titles"
//	@Success	200		{array}	problemRef
//	@Failure	400		{object}	errorResponse
//	@Router		/search [get]
func (h *Handler) SearchProblems(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return handleError(c, core.NewInvalidRequestError("query parameter is required"))
	}

	h.cache.EnsureFresh(c.Request().Context())
	entries := h.cache.Snapshot().Entries()

	needle := strings.ToLower(query)
	results := make([]problemRef, 0)
	for i := range entries {
		if strings.Contains(strings.ToLower(entries[i].Title), needle) {
			results = append(results, refOf(&entries[i]))
		}
	}
	return c.JSON(http.StatusOK, results)
}

// RandomProblem handles GET /random.
//
//	@Summary	Uniformly random problem
//	@Tags		problems
//	@Produce	json
//	@Param		difficulty	query		string	false	"restrict the pool to one difficulty"
//	@Success	200			{object}	problemSummary
//	@Failure	404			{object}	errorResponse
//	@Router		/random [get]
func (h *Handler) RandomProblem(c echo.Context) error {
	difficulty, err := difficultyParam(c)
	if err != nil {
		return handleError(c, err)
	}

	h.cache.EnsureFresh(c.Request().Context())
	entries := h.cache.Snapshot().Entries()

	pool := make([]int, 0, len(entries))
	for i := range entries {
		if difficulty == "" || entries[i].Difficulty == difficulty {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		return handleError(c, core.NewNotFoundError("No questions available"))
	}

	pick := pool[rand.Intn(len(pool))]
	return c.JSON(http.StatusOK, summaryOf(&entries[pick]))
}

type statsResponse struct {
	Total        int            `json:"total"`
	ByDifficulty map[string]int `json:"by_difficulty"`
	ByAccess     map[string]int `json:"by_access"`
	BySolutions  map[string]int `json:"by_solutions"`
}

// Stats handles GET /stats.
//
//	@Summary	Catalog breakdown by difficulty, access and solutions
//	@Tags		problems
//	@Produce	json
//	@Success	200	{object}	statsResponse
//	@Router		/stats [get]
func (h *Handler) Stats(c echo.Context) error {
	h.cache.EnsureFresh(c.Request().Context())
	entries := h.cache.Snapshot().Entries()

	resp := statsResponse{
		Total:        len(entries),
		ByDifficulty: map[string]int{"easy": 0, "medium": 0, "hard": 0},
		ByAccess:     map[string]int{"free": 0, "paid": 0},
		BySolutions:  map[string]int{"with_solution": 0, "with_video": 0},
	}
	for i := range entries {
		p := &entries[i]
		switch p.Difficulty {
		case core.DifficultyEasy:
			resp.ByDifficulty["easy"]++
		case core.DifficultyMedium:
			resp.ByDifficulty["medium"]++
		case core.DifficultyHard:
			resp.ByDifficulty["hard"]++
		}
		if p.PaidOnly {
			resp.ByAccess["paid"]++
		} else {
			resp.ByAccess["free"]++
		}
		if p.HasSolution {
			resp.BySolutions["with_solution"]++
		}
		if p.HasVideoSolution {
			resp.BySolutions["with_video"]++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ListTags handles GET /tags.
//
//	@Summary	Aggregated topic tags, most common first
//	@Tags		tags
//	@Produce	json
//	@Success	200	{array}	core.TagCount
//	@Router		/tags [get]
func (h *Handler) ListTags(c echo.Context) error {
	h.cache.EnsureFresh(c.Request().Context())
	tags := h.cache.Snapshot().TagCounts()
	if tags == nil {
		tags = []core.TagCount{}
	}
	return respondCachedJSON(c, tags)
}

type tagResponse struct {
	Tag      string           `json:"tag"`
	Total    int              `json:"total"`
	Problems []problemSummary `json:"problems"`
}

// ProblemsByTag handles GET /problems/tag/:tag. Served from the snapshot
// when the catalog was loaded from a tagged bootstrap artifact, otherwise
// passed through to the upstream tag filter (the lightweight list query
// carries no tags, so a remote-built snapshot cannot answer locally).
//
//	@Summary	Problems carrying one topic tag
//	@Tags		tags
//	@Produce	json
//	@Param		tag	path		string	true	"tag slug, e.g. dynamic-programming"
//	@Success	200	{object}	tagResponse
//	@Router		/problems/tag/{tag} [get]
func (h *Handler) ProblemsByTag(c echo.Context) error {
	tag := c.Param("tag")

	ctx := c.Request().Context()
	h.cache.EnsureFresh(ctx)
	snap := h.cache.Snapshot()

	if snap.HasTopics() {
		auditlog.MarkCacheState(c, auditlog.CacheHit)
		entries := snap.EntriesByTag(tag)
		return c.JSON(http.StatusOK, tagResponse{
			Tag:      tag,
			Total:    len(entries),
			Problems: summariesOf(entries),
		})
	}

	auditlog.MarkCacheState(c, auditlog.CacheBypass)
	page, err := h.client.FetchProblemsByTag(ctx, tag, tagFetchLimit)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, tagResponse{
		Tag:      tag,
		Total:    page.Total,
		Problems: summariesOf(page.Problems),
	})
}

// GetProblem handles GET /problem/:key.
//
//	@Summary	Full problem record by display id or slug
//	@Tags		problems
//	@Produce	json
//	@Param		key	path		string	true	"display id (e.g. 1) or slug (e.g. two-sum)"
//	@Success	200	{object}	core.ProblemDetail
//	@Failure	404	{object}	errorResponse
//	@Router		/problem/{key} [get]
func (h *Handler) GetProblem(c echo.Context) error {
	detail, err := h.resolveDetail(c)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// resolveDetail resolves the :key route param against the snapshot and
// reads the detail record through the LRU, fetching from upstream on a miss.
func (h *Handler) resolveDetail(c echo.Context) (*core.ProblemDetail, error) {
	ctx := c.Request().Context()
	h.cache.EnsureFresh(ctx)

	key := c.Param("key")
	entry, ok := h.cache.Snapshot().Resolve(key)
	if !ok {
		return nil, core.NewNotFoundError("Question not found")
	}
	auditlog.MarkProblem(c, entry.Slug)

	if detail, ok := h.cache.Detail(entry.ID); ok {
		auditlog.MarkCacheState(c, auditlog.CacheHit)
		return detail, nil
	}
	auditlog.MarkCacheState(c, auditlog.CacheMiss)

	detail, err := h.client.FetchDetail(ctx, entry.Slug)
	if err != nil {
		var gerr *core.GatewayError
		if errors.As(err, &gerr) && gerr.Type == core.ErrorTypeNotFound {
			return nil, err
		}
		// Once the retry budget is spent the route reports only that the
		// item could not be produced; the transport failure stays in the
		// logs and the audit trail.
		slog.Warn("detail fetch failed", "slug", entry.Slug, "error", err)
		return nil, core.NewNotFoundError("Question data not found")
	}
	h.cache.StoreDetail(entry.ID, detail)
	return detail, nil
}

type similarRef struct {
	Title      string `json:"title"`
	TitleSlug  string `json:"title_slug"`
	Difficulty string `json:"difficulty"`
	URL        string `json:"url"`
}

type similarResponse struct {
	Problem problemRef   `json:"problem"`
	Similar []similarRef `json:"similar"`
}

// SimilarProblems handles GET /problem/:key/similar. The upstream delivers
// the related list as a JSON-encoded string inside the detail record; this
// endpoint decodes it into a proper array.
//
//	@Summary	Problems related to one problem
//	@Tags		problems
//	@Produce	json
//	@Param		key	path		string	true	"display id or slug"
//	@Success	200	{object}	similarResponse
//	@Failure	404	{object}	errorResponse
//	@Router		/problem/{key}/similar [get]
func (h *Handler) SimilarProblems(c echo.Context) error {
	detail, err := h.resolveDetail(c)
	if err != nil {
		return handleError(c, err)
	}

	similar := make([]similarRef, 0)
	gjson.Parse(detail.SimilarQuestions).ForEach(func(_, item gjson.Result) bool {
		slug := item.Get("titleSlug").String()
		similar = append(similar, similarRef{
			Title:      item.Get("title").String(),
			TitleSlug:  slug,
			Difficulty: item.Get("difficulty").String(),
			URL:        problemURL(slug),
		})
		return true
	})

	return c.JSON(http.StatusOK, similarResponse{
		Problem: problemRef{
			ID:         detail.ID,
			FrontendID: detail.DisplayID,
			Title:      detail.Title,
			TitleSlug:  detail.Slug,
			URL:        detail.URL,
		},
		Similar: similar,
	})
}

// DailyChallenge handles GET /daily.
//
//	@Summary	Today's challenge, straight from the upstream
//	@Tags		daily
//	@Produce	json
//	@Success	200	{object}	object
//	@Router		/daily [get]
func (h *Handler) DailyChallenge(c echo.Context) error {
	auditlog.MarkCacheState(c, auditlog.CacheBypass)
	data, err := h.client.FetchDaily(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSONBlob(http.StatusOK, data)
}

// UserProfile handles GET /user/:username.
//
//	@Summary	Public user profile
//	@Tags		users
//	@Produce	json
//	@Param		username	path		string	true	"LeetCode username"
//	@Success	200			{object}	object
//	@Failure	404			{object}	errorResponse
//	@Router		/user/{username} [get]
func (h *Handler) UserProfile(c echo.Context) error {
	auditlog.MarkCacheState(c, auditlog.CacheBypass)
	data, err := h.client.FetchUserProfile(c.Request().Context(), c.Param("username"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSONBlob(http.StatusOK, data)
}

// UserContests handles GET /user/:username/contests.
//
//	@Summary	Contest rating and attendance history
//	@Tags		users
//	@Produce	json
//	@Param		username	path		string	true	"LeetCode username"
//	@Success	200			{object}	object
//	@Failure	404			{object}	errorResponse
//	@Router		/user/{username}/contests [get]
func (h *Handler) UserContests(c echo.Context) error {
	auditlog.MarkCacheState(c, auditlog.CacheBypass)
	data, err := h.client.FetchUserContests(c.Request().Context(), c.Param("username"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSONBlob(http.StatusOK, data)
}

// UserSubmissions handles GET /user/:username/submissions.
//
//	@Summary	Recent submissions
//	@Tags		users
//	@Produce	json
//	@Param		username	path		string	true	"LeetCode username"
//	@Param		limit		query		int		false	"number of submissions, 1-100"	default(20)
//	@Success	200			{array}		object
//	@Failure	400			{object}	errorResponse
//	@Router		/user/{username}/submissions [get]
func (h *Handler) UserSubmissions(c echo.Context) error {
	limit, err := intParam(c, "limit", submissionsDefaultLimit)
	if err != nil {
		return handleError(c, err)
	}
	if limit < 1 || limit > submissionsMaxLimit {
		return handleError(c, core.NewInvalidRequestError("limit must be between 1 and 100"))
	}

	auditlog.MarkCacheState(c, auditlog.CacheBypass)
	data, err := h.client.FetchRecentSubmissions(c.Request().Context(), c.Param("username"), limit)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSONBlob(http.StatusOK, data)
}

// errorResponse documents the error envelope for swagger; handlers build
// the envelope through core.GatewayError.
type errorResponse struct {
	Detail string `json:"detail"`
}

// handleError converts gateway errors to the client-facing envelope and
// tags the audit entry with the failure.
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		auditlog.MarkError(c, string(gatewayErr.Type), gatewayErr.Message)
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	// Fallback for unexpected errors
	auditlog.MarkError(c, "internal_error", err.Error())
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"detail": "an unexpected error occurred",
	})
}

// difficultyParam reads and normalizes the optional difficulty query
// parameter. Accepts any casing; returns the canonical upstream form.
func difficultyParam(c echo.Context) (string, error) {
	raw := c.QueryParam("difficulty")
	if raw == "" {
		return "", nil
	}
	for _, d := range []string{core.DifficultyEasy, core.DifficultyMedium, core.DifficultyHard} {
		if strings.EqualFold(raw, d) {
			return d, nil
		}
	}
	return "", core.NewInvalidRequestError("difficulty must be one of Easy, Medium, Hard")
}

func boolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, core.NewInvalidRequestError(name + " must be true or false")
	}
	return &v, nil
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewInvalidRequestError(name + " must be an integer")
	}
	return v, nil
}
