package export

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"goleet/internal/core"
)

func sheetDetails() []*core.ProblemDetail {
	return []*core.ProblemDetail{
		{
			DisplayID:  "1",
			Title:      "Two Sum",
			Slug:       "two-sum",
			Difficulty: core.DifficultyEasy,
			Likes:      100,
			Dislikes:   25,
			Stats:      `{"totalAcceptedRaw": 800, "totalSubmissionRaw": 1000}`,
			Topics:     []core.Topic{{Name: "Array"}, {Name: "Hash Table"}},
			URL:        "https://leetcode.com/problems/two-sum/",

			HasSolution:   true,
			CategoryTitle: "Algorithms",
		},
		{
			DisplayID:  "175",
			Title:      "Combine Two Tables",
			Slug:       "combine-two-tables",
			Difficulty: core.DifficultyMedium,
			Likes:      300,
			PaidOnly:   true,
			Stats:      `{}`,

			CategoryTitle: "Database",
		},
	}
}

func TestSummaryRows(t *testing.T) {
	rows := summaryRows(sheetDetails())
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}

	header := rows[0]
	if header[0] != "ID" || header[1] != "Problem Name" || header[13] != "Category" {
		t.Errorf("unexpected header: %v", header)
	}

	// Sorted by likes descending, so the 300-like problem leads.
	if rows[1][0] != "175" || rows[2][0] != "1" {
		t.Errorf("rows not sorted by likes: %v / %v", rows[1][0], rows[2][0])
	}

	twoSum := rows[2]
	if got := twoSum[1].(string); !strings.Contains(got, "HYPERLINK") || !strings.Contains(got, "two-sum") {
		t.Errorf("title cell not a hyperlink: %s", got)
	}
	if twoSum[4] != "80.0%" {
		t.Errorf("unexpected like ratio: %v", twoSum[4])
	}
	if twoSum[5] != "Array, Hash Table" {
		t.Errorf("unexpected topics: %v", twoSum[5])
	}
	if twoSum[7] != int64(800) || twoSum[8] != int64(1000) || twoSum[9] != "80.0%" {
		t.Errorf("unexpected stats columns: %v %v %v", twoSum[7], twoSum[8], twoSum[9])
	}
	if twoSum[10] != "Yes" || twoSum[11] != "Yes" || twoSum[12] != "No" {
		t.Errorf("unexpected flag columns: %v", twoSum[10:13])
	}

	paid := rows[1]
	if paid[9] != "0.0%" {
		t.Errorf("missing stats should read 0.0%%, got %v", paid[9])
	}
	if paid[10] != "No" {
		t.Errorf("paid problem should not be marked free: %v", paid[10])
	}
}

func TestTitleCellEscapesQuotes(t *testing.T) {
	cell := titleCell(&core.ProblemDetail{
		Title: `Say "hello"`,
		URL:   "https://leetcode.com/problems/say-hello/",
	})
	if !strings.Contains(cell, `""hello""`) {
		t.Errorf("quotes not doubled for the formula: %s", cell)
	}
}

func TestUploadSummary_BelowMinRows(t *testing.T) {
	err := UploadSummary(context.Background(), SheetConfig{SpreadsheetID: "sheet-1"}, sheetDetails())
	if !errors.Is(err, ErrBelowMinRows) {
		t.Fatalf("expected ErrBelowMinRows, got %v", err)
	}
}

func TestUploadSummary_WritesSheet(t *testing.T) {
	type call struct {
		path  string
		query string
		body  string
	}
	var mu sync.Mutex
	var calls []call

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer fake.Close()

	cfg := SheetConfig{
		SpreadsheetID: "sheet-1",
		MinRows:       1,
		Endpoint:      fake.URL + "/",
	}
	if err := UploadSummary(context.Background(), cfg, sheetDetails()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 4 {
		t.Fatalf("expected 4 API calls (title, clear, info, data), got %d", len(calls))
	}

	find := func(substr string) *call {
		for i := range calls {
			if strings.Contains(calls[i].path, substr) {
				return &calls[i]
			}
		}
		return nil
	}

	title := find(":batchUpdate")
	if title == nil || !strings.Contains(title.body, "Last Updated") {
		t.Errorf("missing or wrong title update: %+v", title)
	}
	if find(":clear") == nil {
		t.Error("values were not cleared before the write")
	}

	var data *call
	for i := range calls {
		if strings.Contains(calls[i].body, "HYPERLINK") {
			data = &calls[i]
		}
	}
	if data == nil {
		t.Fatal("no data write carried the summary rows")
	}
	if !strings.Contains(data.query, "valueInputOption=USER_ENTERED") {
		t.Errorf("data write missing USER_ENTERED input option: %s", data.query)
	}
	if !strings.Contains(data.body, "Combine Two Tables") {
		t.Errorf("summary rows missing problem data: %s", data.body)
	}
}
