// Package main is the entry point for the catalog gateway server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"goleet/config"
	"goleet/internal/app"
	"goleet/internal/version"
)

//	@title			goleet API
//	@version		1.0
//	@description	Read-through caching gateway republishing the LeetCode GraphQL API as REST.
//	@BasePath		/

const shutdownTimeout = 30 * time.Second

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	setupLogging()

	// Log the version immediately on startup
	slog.Info("starting goleet",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Wire store, upstream client, catalog cache, request log and server
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Load the bootstrap artifact and start the refresh loop; neither
	// blocks, so the server can accept traffic while the catalog warms.
	application.WarmUp(context.Background())

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := application.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := application.Start(":" + cfg.Server.Port); err != nil {
		slog.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}

// setupLogging installs the process-wide slog handler: JSON on stdout for
// production, or a colorized console handler when GOLEET_PRETTY_LOGS is set.
func setupLogging() {
	var handler slog.Handler
	if pretty, _ := strconv.ParseBool(os.Getenv("GOLEET_PRETTY_LOGS")); pretty {
		handler = tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
