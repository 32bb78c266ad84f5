//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"goleet/internal/core"
)

// MockUpstream simulates the upstream GraphQL API. It dispatches on the
// operation name in the query document and serves a small fixed catalog.
type MockUpstream struct {
	server *httptest.Server

	mu       sync.Mutex
	counts   map[string]int
	failNext int // status code forced on the next request, 0 = off

	problems []core.Problem
	topics   map[string][]core.Topic
	users    map[string]bool
}

// NewMockUpstream starts the fake endpoint with the built-in catalog.
func NewMockUpstream() *MockUpstream {
	m := &MockUpstream{
		counts: map[string]int{},
		problems: []core.Problem{
			{ID: "1", DisplayID: "1", Title: "Two Sum", Slug: "two-sum", Difficulty: core.DifficultyEasy, HasSolution: true},
			{ID: "2", DisplayID: "2", Title: "Add Two Numbers", Slug: "add-two-numbers", Difficulty: core.DifficultyMedium},
			{ID: "3", DisplayID: "3", Title: "Longest Substring Without Repeating Characters", Slug: "longest-substring-without-repeating-characters", Difficulty: core.DifficultyMedium},
			{ID: "4", DisplayID: "4", Title: "Median of Two Sorted Arrays", Slug: "median-of-two-sorted-arrays", Difficulty: core.DifficultyHard},
			{ID: "175", DisplayID: "175", Title: "Combine Two Tables", Slug: "combine-two-tables", Difficulty: core.DifficultyEasy},
			{ID: "528", DisplayID: "528", Title: "Random Pick with Weight", Slug: "random-pick-with-weight", Difficulty: core.DifficultyMedium, PaidOnly: true},
		},
		topics: map[string][]core.Topic{
			"two-sum":         {{Name: "Array", Slug: "array"}, {Name: "Hash Table", Slug: "hash-table"}},
			"add-two-numbers": {{Name: "Linked List", Slug: "linked-list"}, {Name: "Math", Slug: "math"}},
			"longest-substring-without-repeating-characters": {{Name: "Hash Table", Slug: "hash-table"}, {Name: "String", Slug: "string"}},
			"median-of-two-sorted-arrays":                    {{Name: "Array", Slug: "array"}, {Name: "Binary Search", Slug: "binary-search"}},
			"combine-two-tables":                             {{Name: "Database", Slug: "database"}},
			"random-pick-with-weight":                        {{Name: "Math", Slug: "math"}},
		},
		users: map[string]bool{"alice": true},
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the endpoint the gateway client should post to.
func (m *MockUpstream) URL() string { return m.server.URL }

// Close shuts the fake endpoint down.
func (m *MockUpstream) Close() { m.server.Close() }

// CountFor returns how many requests carried the given operation.
func (m *MockUpstream) CountFor(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[operation]
}

// FailNextWith forces the next request to fail with the given status.
func (m *MockUpstream) FailNextWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = status
}

func (m *MockUpstream) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"errors": [{"message": "bad request body"}]}`, http.StatusBadRequest)
		return
	}

	op := operationOf(req.Query)
	key := op
	if op == "problemsetQuestionList" && requestedTag(req.Variables) != "" {
		key = op + ":tagged"
	}

	m.mu.Lock()
	m.counts[key]++
	fail := m.failNext
	m.failNext = 0
	m.mu.Unlock()

	if fail != 0 {
		w.WriteHeader(fail)
		fmt.Fprint(w, `{"errors": [{"message": "induced failure"}]}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch op {
	case "problemsetQuestionList":
		m.serveList(w, req.Variables)
	case "questionData":
		m.serveDetail(w, req.Variables)
	case "userPublicProfile":
		m.serveProfile(w, req.Variables)
	case "userContestRankingInfo":
		m.serveContests(w)
	case "recentSubmissions":
		m.serveSubmissions(w, req.Variables)
	case "questionOfToday":
		m.serveDaily(w)
	default:
		http.Error(w, fmt.Sprintf(`{"errors": [{"message": "unknown operation %s"}]}`, op), http.StatusBadRequest)
	}
}

// operationOf extracts the operation name from a query document, e.g.
// "query questionData($titleSlug: String!) {" yields "questionData".
func operationOf(query string) string {
	fields := strings.Fields(query)
	if len(fields) < 2 || fields[0] != "query" {
		return ""
	}
	name, _, _ := strings.Cut(fields[1], "(")
	return name
}

func requestedTag(variables map[string]any) string {
	filters, _ := variables["filters"].(map[string]any)
	tags, _ := filters["tags"].([]any)
	if len(tags) == 0 {
		return ""
	}
	tag, _ := tags[0].(string)
	return tag
}

func (m *MockUpstream) serveList(w http.ResponseWriter, variables map[string]any) {
	pool := m.problems
	if tag := requestedTag(variables); tag != "" {
		pool = nil
		for _, p := range m.problems {
			for _, t := range m.topics[p.Slug] {
				if t.Slug == tag {
					pool = append(pool, p)
					break
				}
			}
		}
	}

	skip := int(toNumber(variables["skip"]))
	limit := int(toNumber(variables["limit"]))
	if limit <= 0 {
		limit = len(pool)
	}

	page := []core.Problem{}
	if skip < len(pool) {
		end := skip + limit
		if end > len(pool) {
			end = len(pool)
		}
		page = pool[skip:end]
	}

	writeJSON(w, map[string]any{
		"data": map[string]any{
			"problemsetQuestionList": map[string]any{
				"total":     len(pool),
				"questions": page,
			},
		},
	})
}

func (m *MockUpstream) serveDetail(w http.ResponseWriter, variables map[string]any) {
	slug, _ := variables["titleSlug"].(string)
	for _, p := range m.problems {
		if p.Slug != slug {
			continue
		}
		question := map[string]any{
			"questionId":         p.ID,
			"questionFrontendId": p.DisplayID,
			"title":              p.Title,
			"titleSlug":          p.Slug,
			"content":            fmt.Sprintf("<p>Description of %s.</p>", p.Title),
			"likes":              1000,
			"dislikes":           50,
			"stats":              `{"totalAccepted": "2M", "totalSubmission": "4M", "totalAcceptedRaw": 2000000, "totalSubmissionRaw": 4000000, "acRate": "50.0%"}`,
			"similarQuestions":   `[{"title": "3Sum", "titleSlug": "3sum", "difficulty": "Medium", "translatedTitle": null}]`,
			"categoryTitle":      "Algorithms",
			"hints":              []string{"Think about complements."},
			"topicTags":          m.topics[p.Slug],
			"companyTags":        nil,
			"difficulty":         p.Difficulty,
			"isPaidOnly":         p.PaidOnly,
			"solution":           map[string]any{"canSeeDetail": p.HasSolution, "content": ""},
			"hasSolution":        p.HasSolution,
			"hasVideoSolution":   p.HasVideoSolution,
		}
		writeJSON(w, map[string]any{"data": map[string]any{"question": question}})
		return
	}
	writeJSON(w, map[string]any{"data": map[string]any{"question": nil}})
}

func (m *MockUpstream) serveProfile(w http.ResponseWriter, variables map[string]any) {
	username, _ := variables["username"].(string)
	if !m.users[username] {
		writeJSON(w, map[string]any{"data": map[string]any{"matchedUser": nil}})
		return
	}
	writeJSON(w, map[string]any{
		"data": map[string]any{
			"matchedUser": map[string]any{
				"username": username,
				"profile": map[string]any{
					"realName": "Alice Example",
					"ranking":  1234,
				},
				"submitStats": map[string]any{
					"acSubmissionNum": []map[string]any{
						{"difficulty": "All", "count": 250, "submissions": 400},
					},
				},
			},
		},
	})
}

func (m *MockUpstream) serveContests(w http.ResponseWriter) {
	writeJSON(w, map[string]any{
		"data": map[string]any{
			"userContestRanking": map[string]any{
				"attendedContestsCount": 12,
				"rating":                1650.5,
				"globalRanking":         80000,
				"topPercentage":         15.2,
			},
			"userContestRankingHistory": []map[string]any{
				{"attended": true, "rating": 1650.5, "ranking": 900, "contest": map[string]any{"title": "Weekly Contest 400"}},
			},
		},
	})
}

func (m *MockUpstream) serveSubmissions(w http.ResponseWriter, variables map[string]any) {
	username, _ := variables["username"].(string)
	if !m.users[username] {
		writeJSON(w, map[string]any{
			"errors": []map[string]any{{"message": "That user does not exist."}},
			"data":   map[string]any{"recentSubmissionList": nil},
		})
		return
	}
	limit := int(toNumber(variables["limit"]))
	subs := []map[string]any{
		{"title": "Two Sum", "titleSlug": "two-sum", "statusDisplay": "Accepted", "lang": "golang", "timestamp": "1717200000"},
		{"title": "Add Two Numbers", "titleSlug": "add-two-numbers", "statusDisplay": "Wrong Answer", "lang": "golang", "timestamp": "1717100000"},
	}
	if limit > 0 && limit < len(subs) {
		subs = subs[:limit]
	}
	writeJSON(w, map[string]any{"data": map[string]any{"recentSubmissionList": subs}})
}

func (m *MockUpstream) serveDaily(w http.ResponseWriter) {
	writeJSON(w, map[string]any{
		"data": map[string]any{
			"activeDailyCodingChallengeQuestion": map[string]any{
				"date": "2024-06-01",
				"link": "/problems/two-sum/",
				"question": map[string]any{
					"questionId":         "1",
					"questionFrontendId": "1",
					"title":              "Two Sum",
					"titleSlug":          "two-sum",
					"difficulty":         "Easy",
				},
			},
		},
	})
}

func toNumber(v any) float64 {
	n, _ := v.(float64)
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"errors": [{"message": "encode failure"}]}`, http.StatusInternalServerError)
	}
}
