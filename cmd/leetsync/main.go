// Package main implements leetsync, the bulk catalog downloader. It
// walks the upstream problem list, fetches every detail record, writes
// the bootstrap artifact the gateway warms up from and optionally
// refreshes the shared summary spreadsheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"goleet/internal/export"
	"goleet/internal/leetcode"
	"goleet/internal/store"
	"goleet/internal/version"
)

func main() {
	var (
		output      = flag.String("output", "data/leetcode_questions.json", "Path of the bootstrap artifact to write")
		endpoint    = flag.String("endpoint", "", "Upstream GraphQL endpoint (default: the public API)")
		limit       = flag.Int("limit", 0, "Export at most this many problems (0 = all)")
		pageSize    = flag.Int("page-size", export.DefaultPageSize, "Problems requested per list page")
		details     = flag.Bool("details", true, "Fetch the full detail record per problem")
		resume      = flag.Bool("resume", false, "Reuse records already present in the output artifact")
		sheetID     = flag.String("sheet-id", "", "Google spreadsheet ID to refresh after the export")
		credentials = flag.String("credentials", "", "Service-account key file (default: GOOGLE_CREDENTIALS env)")
		versionFlag = flag.Bool("version", false, "Print version information")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, nil)))

	// Pick up GOOGLE_CREDENTIALS and friends from a local .env if present.
	_ = godotenv.Load()

	clientCfg := leetcode.DefaultConfig()
	if *endpoint != "" {
		clientCfg.Endpoint = *endpoint
	}

	exp := export.New(leetcode.New(clientCfg), store.NewFileStore(*output), export.Config{
		Limit:    *limit,
		PageSize: *pageSize,
		Details:  *details,
		Resume:   *resume,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := exp.Run(ctx)
	if err != nil {
		if res != nil && errors.Is(err, context.Canceled) {
			slog.Warn("export interrupted, partial artifact saved",
				"records", len(res.Problems), "output", *output)
		} else {
			slog.Error("export failed", "error", err)
		}
		os.Exit(1)
	}
	slog.Info("artifact written", "output", *output, "records", len(res.Problems))

	if *sheetID == "" {
		return
	}

	summary := export.DecodeRecords(res.Problems)
	err = export.UploadSummary(ctx, export.SheetConfig{
		SpreadsheetID:   *sheetID,
		CredentialsFile: *credentials,
	}, summary)
	switch {
	case errors.Is(err, export.ErrBelowMinRows):
		// A short run must not wipe the shared sheet.
		slog.Warn("skipping sheet upload", "reason", err)
	case err != nil:
		slog.Error("sheet upload failed", "error", err)
		os.Exit(1)
	default:
		slog.Info("summary sheet updated", "spreadsheet", *sheetID, "problems", len(summary))
	}
}
