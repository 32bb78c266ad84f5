//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestListPage struct {
	Entries []requestEntry `json:"entries"`
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

type requestEntry struct {
	ID         string `json:"id"`
	Method     string `json:"method"`
	Route      string `json:"route"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	CacheState string `json:"cache_state"`
	Problem    string `json:"problem"`
	ErrorType  string `json:"error_type"`
}

// listRequests queries the admin request log with the master key.
func listRequests(t *testing.T, query string) requestListPage {
	t.Helper()
	resp := adminGet(t, "/admin/api/v1/requests"+query, masterKey)
	defer closeBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page requestListPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func TestAdminAuth(t *testing.T) {
	cases := []struct {
		name   string
		header string
		detail string
	}{
		{name: "missing header", header: "", detail: "missing authorization header"},
		{name: "wrong scheme", header: "Token abc", detail: "invalid authorization header format, expected 'Bearer <token>'"},
		{name: "wrong key", header: "Bearer not-the-key", detail: "invalid master key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, gatewayURL+"/admin/api/v1/requests", nil)
			require.NoError(t, err)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			body := bodyString(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Contains(t, body, tc.detail)
		})
	}

	resp := adminGet(t, "/admin/api/v1/requests", masterKey)
	closeBody(resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestAdminRequestLog drives one cache miss and one cache hit through a
// problem route, then waits for the async writer to surface both in the
// request log.
func TestAdminRequestLog(t *testing.T) {
	warmCatalog(t)

	for i := 0; i < 2; i++ {
		resp := get(t, "/problem/combine-two-tables")
		closeBody(resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var page requestListPage
	eventually(t, 5*time.Second, func() bool {
		page = listRequests(t, "?problem=combine-two-tables")
		return page.Total >= 2
	})

	states := make(map[string]int)
	for _, e := range page.Entries {
		assert.Equal(t, http.MethodGet, e.Method)
		assert.Equal(t, "/problem/:key", e.Route)
		assert.Equal(t, "/problem/combine-two-tables", e.Path)
		assert.Equal(t, http.StatusOK, e.StatusCode)
		assert.Equal(t, "combine-two-tables", e.Problem)
		states[e.CacheState]++
	}
	assert.Equal(t, 1, states["miss"])
	assert.Equal(t, 1, states["hit"])
}

func TestAdminRequestFilters(t *testing.T) {
	warmCatalog(t)

	resp := get(t, "/problem/no-such-problem")
	closeBody(resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var page requestListPage
	eventually(t, 5*time.Second, func() bool {
		page = listRequests(t, "?error_type=not_found&search=no-such-problem")
		return page.Total >= 1
	})
	assert.Equal(t, "not_found", page.Entries[0].ErrorType)
	assert.Equal(t, http.StatusNotFound, page.Entries[0].StatusCode)

	// Mismatched filter combinations return an empty page, not an error.
	empty := listRequests(t, "?method=DELETE")
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Entries)

	resp = adminGet(t, "/admin/api/v1/requests?since=yesterday", masterKey)
	body := bodyString(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "since must be an RFC 3339 timestamp")
}

func TestAdminRequestByID(t *testing.T) {
	warmCatalog(t)

	resp := get(t, "/health")
	closeBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page requestListPage
	eventually(t, 5*time.Second, func() bool {
		page = listRequests(t, "?route=/health&limit=1")
		return len(page.Entries) == 1
	})
	id := page.Entries[0].ID
	require.NotEmpty(t, id)

	var entry requestEntry
	resp = adminGet(t, "/admin/api/v1/requests/"+id, masterKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
	closeBody(resp)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, "/health", entry.Route)

	resp = adminGet(t, "/admin/api/v1/requests/no-such-id", masterKey)
	body := bodyString(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Request log not found")
}

func TestAdminRouteStats(t *testing.T) {
	warmCatalog(t)

	// The listing from warmCatalog is enough traffic for a stats row.
	var stats struct {
		Hours  int `json:"hours"`
		Routes []struct {
			Route string `json:"route"`
			Count int    `json:"count"`
		} `json:"routes"`
	}
	eventually(t, 5*time.Second, func() bool {
		resp := adminGet(t, "/admin/api/v1/stats/routes", masterKey)
		defer closeBody(resp)
		if resp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return false
		}
		for _, r := range stats.Routes {
			if r.Route == "/problems" && r.Count > 0 {
				return true
			}
		}
		return false
	})
	assert.Equal(t, 24, stats.Hours)

	resp := adminGet(t, "/admin/api/v1/stats/routes?hours=0", masterKey)
	body := bodyString(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "hours must be between 1 and 720")
}

// TestAdminRefresh schedules a catalog refresh and waits for the resulting
// upstream list fetch.
func TestAdminRefresh(t *testing.T) {
	warmCatalog(t)
	baseline := upstream.CountFor("problemsetQuestionList")

	resp := adminPost(t, "/admin/api/v1/refresh", masterKey)
	body := bodyString(t, resp)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Contains(t, body, "refresh scheduled")

	eventually(t, 5*time.Second, func() bool {
		return upstream.CountFor("problemsetQuestionList") > baseline
	})
}
