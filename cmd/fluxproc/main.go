// Command fluxproc runs the batch flux pipeline: it reads a directory
// tree of analyzer output files, joins the valve schedule and field
// metadata, filters and time-normalizes the readings, fits one flux per
// measurement group, and writes the cleaned-reading and flux-summary
// tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"fluxcli/internal/config"
	"fluxcli/internal/infrastructure"
	"fluxcli/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	inDir := flag.String("in", "", "input directory with instrument files (overrides config)")
	outDir := flag.String("out", "", "output directory for result tables (overrides config)")
	logDir := flag.String("log", "", "log directory (overrides config)")
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// .env is a convenience for local runs; absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		return 1
	}
	if *inDir != "" {
		cfg.Paths.InputDir = *inDir
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}
	if *logDir != "" {
		cfg.Paths.LogDir = *logDir
	}

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		slog.Error("path resolution failed", "error", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("could not create run directories", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, paths.LogPath(cfg.Logging.FileName))
	if err != nil {
		slog.Error("could not initialize logger", "error", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())

	runner := pipeline.NewRunner(pipeline.DefaultSteps(logger), logger)
	report, err := runner.Run(ctx, cfg, paths)
	if err != nil {
		logger.ErrorContext(ctx, "run failed", "error", err)
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		return 1
	}

	// Operator-facing summary; the log carries the structured copy.
	fmt.Printf("Processed %d of %d files (%d skipped)\n",
		report.FilesProcessed, report.FilesDiscovered, report.FilesSkipped)
	fmt.Printf("Rows: %d read, %d after join, %d after filter\n",
		report.RowsRead, report.RowsJoined, report.RowsFiltered)
	fmt.Printf("Groups: %d fitted, %d skipped\n",
		report.GroupsFitted, report.GroupsSkipped)
	for _, path := range report.OutputPaths {
		fmt.Printf("Wrote %s\n", path)
	}
	return 0
}
