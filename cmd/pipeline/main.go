package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"autotrade/internal/clean"
	"autotrade/internal/config"
	"autotrade/internal/merge"
	"autotrade/internal/store"
	"autotrade/internal/store/sqlite"
	"autotrade/internal/tabular"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		run(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func run(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config (default: autotrade.yaml if present)")
	rawDir := fs.String("raw", "", "raw data directory (overrides config)")
	processedDir := fs.String("processed", "", "processed data directory (overrides config)")
	dbPath := fs.String("db", "", "sqlite dataset-of-record path (overrides config; empty string disables persistence)")
	verbose := fs.Bool("verbose", false, "log per-stage progress")
	fs.Parse(args)

	setupLogging(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pipeline run failed:", err)
		os.Exit(1)
	}
	if strings.TrimSpace(*rawDir) != "" {
		cfg.RawDir = *rawDir
	}
	if strings.TrimSpace(*processedDir) != "" {
		cfg.ProcessedDir = *processedDir
	}
	dbSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "db" {
			dbSet = true
		}
	})
	if dbSet {
		cfg.DBPath = *dbPath
	}

	if err := runPipeline(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "pipeline run failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pipeline run [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -config     path to YAML config (default: autotrade.yaml if present)")
	fmt.Fprintln(os.Stderr, "  -raw        raw data directory (default: data/raw)")
	fmt.Fprintln(os.Stderr, "  -processed  processed data directory (default: data/processed)")
	fmt.Fprintln(os.Stderr, "  -db         sqlite dataset-of-record path (empty disables persistence)")
	fmt.Fprintln(os.Stderr, "  -verbose    log per-stage progress")
}

func runPipeline(cfg config.Config) error {
	started := time.Now().UTC()
	runID := uuid.NewString()
	ctx := context.Background()

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	primaryFiles, err := cfg.PrimaryFiles()
	if err != nil {
		return err
	}
	trade, primaryReport, err := clean.Primary(primaryFiles)
	if err != nil {
		return err
	}
	if err := tabular.WriteCSV(cfg.TradeRecordsPath(), tabular.TradeHeader, tabular.TradeRows(trade)); err != nil {
		return err
	}
	printPrimarySummary(primaryReport)

	gdpFiles, err := cfg.GDPFiles()
	if err != nil {
		return err
	}
	tariffFiles, err := cfg.TariffFiles()
	if err != nil {
		return err
	}
	if len(gdpFiles) == 0 && len(tariffFiles) == 0 {
		return fmt.Errorf("no raw secondary files under %s", cfg.SecondaryDir())
	}
	econ, secondaryReport, err := clean.Secondary(gdpFiles, tariffFiles)
	if err != nil {
		return err
	}
	if err := tabular.WriteCSV(cfg.EconIndicatorsPath(), tabular.EconHeader, tabular.EconRows(econ)); err != nil {
		return err
	}
	printSecondarySummary(secondaryReport)

	unified, mergeReport, err := merge.Merge(trade, econ)
	if err != nil {
		return err
	}
	if err := tabular.WriteCSV(cfg.UnifiedPath(), tabular.UnifiedHeader, tabular.UnifiedRows(unified)); err != nil {
		return err
	}
	fmt.Printf("merge complete (trade=%d econ=%d unified=%d unmatched_primary=%d unused_secondary=%d)\n",
		mergeReport.TradeRecords, mergeReport.EconRecords, mergeReport.UnifiedRecords,
		mergeReport.UnmatchedPrimary, mergeReport.UnusedSecondary,
	)

	summary := store.RunSummary{
		RunID:            runID,
		StartedAt:        started,
		FinishedAt:       time.Now().UTC(),
		TradeRecords:     mergeReport.TradeRecords,
		EconRecords:      mergeReport.EconRecords,
		UnifiedRecords:   mergeReport.UnifiedRecords,
		UnmatchedPrimary: mergeReport.UnmatchedPrimary,
	}
	if err := st.ReplaceUnified(ctx, summary, unified); err != nil {
		return err
	}

	fmt.Printf("pipeline run complete (run=%s unified=%s duration=%s)\n",
		runID, cfg.UnifiedPath(), time.Since(started).Round(time.Millisecond),
	)
	return nil
}

func printPrimarySummary(report *clean.PrimaryReport) {
	fmt.Printf("primary clean complete (files=%d rows=%d records=%d dropped_missing_key=%d dropped_unknown_flow=%d dropped_unmapped_country=%d value_parse_failures=%d negative_values=%d duplicates_collapsed=%d)\n",
		report.Files, report.RowsIn, report.Records,
		report.DroppedMissingKey, report.DroppedUnknownFlow, report.DroppedUnmappedCountry,
		report.ValueParseFailures, report.NegativeValues, report.DuplicatesCollapsed,
	)
	if len(report.UnmappedSamples) > 0 {
		fmt.Printf("primary unmapped country samples: %s\n", strings.Join(report.UnmappedSamples, "; "))
	}
}

func printSecondarySummary(report *clean.SecondaryReport) {
	fmt.Printf("secondary clean complete (files=%d country_rows=%d cells=%d records=%d dropped_unmapped_country=%d value_parse_failures=%d)\n",
		report.Files, report.CountryRows, report.Cells, report.Records,
		report.DroppedUnmappedCountry, report.ValueParseFailures,
	)
	if len(report.UnmappedSamples) > 0 {
		fmt.Printf("secondary unmapped country samples: %s\n", strings.Join(report.UnmappedSamples, "; "))
	}
}

func openStore(path string) (store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
