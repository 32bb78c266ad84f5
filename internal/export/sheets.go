package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"goleet/internal/core"
)

// DefaultMinUploadRows is the minimum record count before the summary
// sheet is touched. A short export overwriting a full sheet would be
// data loss, so small runs skip the upload.
const DefaultMinUploadRows = 1000

// DefaultSheetName is the tab the summary lands on.
const DefaultSheetName = "LeetCode Questions"

// ErrBelowMinRows is returned when an export is too small to overwrite
// the summary sheet.
var ErrBelowMinRows = errors.New("too few records to overwrite summary sheet")

// SheetConfig describes the target spreadsheet.
type SheetConfig struct {
	// SpreadsheetID is the target document.
	SpreadsheetID string
	// SheetName is the tab name. Empty means DefaultSheetName.
	SheetName string
	// CredentialsFile is a service-account key file. When empty the
	// GOOGLE_CREDENTIALS environment variable is read as inline JSON.
	CredentialsFile string
	// MinRows overrides DefaultMinUploadRows when positive.
	MinRows int
	// Endpoint overrides the Sheets API base URL. Used by tests.
	Endpoint string
}

// UploadSummary replaces the summary sheet with one row per problem,
// sorted by like count. The spreadsheet title is stamped with the upload
// time so readers can tell how stale the data is.
func UploadSummary(ctx context.Context, cfg SheetConfig, details []*core.ProblemDetail) error {
	if cfg.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet id is required")
	}
	minRows := cfg.MinRows
	if minRows <= 0 {
		minRows = DefaultMinUploadRows
	}
	if len(details) < minRows {
		return fmt.Errorf("%w: have %d, need %d", ErrBelowMinRows, len(details), minRows)
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create sheets client: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	now := time.Now().UTC().Format("2006-01-02 15:04 MST")

	// Stamp the document title with the refresh time.
	_, err = svc.Spreadsheets.BatchUpdate(cfg.SpreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			UpdateSpreadsheetProperties: &sheets.UpdateSpreadsheetPropertiesRequest{
				Properties: &sheets.SpreadsheetProperties{
					Title: fmt.Sprintf("%s - Last Updated %s", DefaultSheetName, now),
				},
				Fields: "title",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update spreadsheet title: %w", err)
	}

	rng := fmt.Sprintf("'%s'!A:Z", sheetName)
	if _, err := svc.Spreadsheets.Values.Clear(cfg.SpreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	info := &sheets.ValueRange{Values: [][]interface{}{
		{fmt.Sprintf("Total Problems: %d", len(details))},
		{fmt.Sprintf("Last Updated: %s", now)},
	}}
	infoRng := fmt.Sprintf("'%s'!A1:A2", sheetName)
	if _, err := svc.Spreadsheets.Values.Update(cfg.SpreadsheetID, infoRng, info).ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write info rows: %w", err)
	}

	dataRng := fmt.Sprintf("'%s'!A3", sheetName)
	body := &sheets.ValueRange{Values: summaryRows(details)}
	if _, err := svc.Spreadsheets.Values.Update(cfg.SpreadsheetID, dataRng, body).ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write summary rows: %w", err)
	}

	return nil
}

func newSheetsService(ctx context.Context, cfg SheetConfig) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case os.Getenv("GOOGLE_CREDENTIALS") != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(os.Getenv("GOOGLE_CREDENTIALS"))))
	}
	return sheets.NewService(ctx, opts...)
}

// summaryRows converts detail records to the spreadsheet layout: a header
// row followed by one row per problem, sorted by like count descending.
func summaryRows(details []*core.ProblemDetail) [][]interface{} {
	header := []interface{}{
		"ID", "Problem Name", "Likes", "Dislikes", "Like Ratio",
		"Topics", "Difficulty", "Accepted", "Submissions", "Accept Rate",
		"Free?", "Solution?", "Video Solution?", "Category",
	}

	sorted := make([]*core.ProblemDetail, len(details))
	copy(sorted, details)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Likes > sorted[j].Likes
	})

	rows := make([][]interface{}, 0, len(sorted)+1)
	rows = append(rows, header)
	for _, d := range sorted {
		accepted := gjson.Get(d.Stats, "totalAcceptedRaw").Int()
		submissions := gjson.Get(d.Stats, "totalSubmissionRaw").Int()
		acceptRate := 0.0
		if submissions > 0 {
			acceptRate = float64(accepted) / float64(submissions) * 100
		}
		likeRatio := 0.0
		if d.Likes+d.Dislikes > 0 {
			likeRatio = float64(d.Likes) / float64(d.Likes+d.Dislikes) * 100
		}

		topics := make([]string, 0, len(d.Topics))
		for _, t := range d.Topics {
			topics = append(topics, t.Name)
		}

		rows = append(rows, []interface{}{
			d.DisplayID,
			titleCell(d),
			d.Likes,
			d.Dislikes,
			fmt.Sprintf("%.1f%%", likeRatio),
			strings.Join(topics, ", "),
			d.Difficulty,
			accepted,
			submissions,
			fmt.Sprintf("%.1f%%", acceptRate),
			yesNo(!d.PaidOnly),
			yesNo(d.HasSolution),
			yesNo(d.HasVideoSolution),
			d.CategoryTitle,
		})
	}
	return rows
}

// titleCell renders the problem name as a link to the problem page.
func titleCell(d *core.ProblemDetail) string {
	if d.URL == "" {
		return d.Title
	}
	escaped := strings.ReplaceAll(d.Title, `"`, `""`)
	return fmt.Sprintf(`=HYPERLINK("%s", "%s")`, d.URL, escaped)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
