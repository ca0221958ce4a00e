package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autotrade/internal/analysis"
	"autotrade/internal/config"
	"autotrade/internal/model"
	"autotrade/internal/store/sqlite"
	"autotrade/internal/tabular"
)

type metaFile struct {
	GeneratedAt string `json:"generated_at"`
	Source      string `json:"source"`
	RunID       string `json:"run_id,omitempty"`
	Records     int    `json:"records"`
}

type balanceFile struct {
	GeneratedAt string                 `json:"generated_at"`
	Years       []analysis.YearBalance `json:"years"`
}

type partnersFile struct {
	GeneratedAt string                  `json:"generated_at"`
	Year        int                     `json:"year"`
	Partners    []analysis.PartnerTotal `json:"partners"`
}

type tariffFile struct {
	GeneratedAt string                 `json:"generated_at"`
	Partners    []string               `json:"partners"`
	Points      []analysis.TariffPoint `json:"points"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		build(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func build(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config (default: autotrade.yaml if present)")
	processedDir := fs.String("processed", "", "processed data directory (overrides config)")
	dbPath := fs.String("db", "", "sqlite dataset-of-record path (overrides config)")
	outDir := fs.String("out", "", "report output directory (overrides config)")
	top := fs.Int("top", 0, "number of top partners (overrides config)")
	year := fs.Int("year", 0, "reference year for partner ranking (0 = latest in data)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "report build failed:", err)
		os.Exit(1)
	}
	if strings.TrimSpace(*processedDir) != "" {
		cfg.ProcessedDir = *processedDir
	}
	if strings.TrimSpace(*outDir) != "" {
		cfg.ReportDir = *outDir
	}
	if *top > 0 {
		cfg.TopPartners = *top
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

	if err := buildReports(cfg, *year, dbSet); err != nil {
		fmt.Fprintln(os.Stderr, "report build failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: report build [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -config     path to YAML config (default: autotrade.yaml if present)")
	fmt.Fprintln(os.Stderr, "  -processed  processed data directory holding unified.csv")
	fmt.Fprintln(os.Stderr, "  -db         load the unified table from sqlite instead of unified.csv")
	fmt.Fprintln(os.Stderr, "  -out        report output directory (default: site/data)")
	fmt.Fprintln(os.Stderr, "  -top        number of top partners to rank (default: 10)")
	fmt.Fprintln(os.Stderr, "  -year       reference year for partner ranking (default: latest in data)")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "writes meta.json, yearly_balance.json, top_partners.json, tariff_series.json")
}

func buildReports(cfg config.Config, year int, fromDB bool) error {
	records, source, runID, err := loadUnified(cfg, fromDB)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("unified dataset is empty (source %s)", source)
	}

	if year == 0 {
		year = latestYear(records)
	}

	balances := analysis.YearlyBalance(records)
	partners := analysis.TopPartners(records, year, cfg.TopPartners)
	partnerCodes := make([]string, 0, len(partners))
	for _, partner := range partners {
		partnerCodes = append(partnerCodes, partner.PartnerISO3)
	}
	series := analysis.TariffSeries(records, partnerCodes)

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	files := map[string]any{
		"meta.json":           metaFile{GeneratedAt: now, Source: source, RunID: runID, Records: len(records)},
		"yearly_balance.json": balanceFile{GeneratedAt: now, Years: balances},
		"top_partners.json":   partnersFile{GeneratedAt: now, Year: year, Partners: partners},
		"tariff_series.json":  tariffFile{GeneratedAt: now, Partners: partnerCodes, Points: series},
	}
	for name, value := range files {
		if err := writeJSON(filepath.Join(cfg.ReportDir, name), value); err != nil {
			return err
		}
	}

	fmt.Printf("report build complete (source=%s records=%d year=%d partners=%d out=%s)\n",
		source, len(records), year, len(partners), cfg.ReportDir,
	)
	return nil
}

func loadUnified(cfg config.Config, fromDB bool) ([]model.UnifiedRecord, string, string, error) {
	if fromDB {
		if strings.TrimSpace(cfg.DBPath) == "" {
			return nil, "", "", fmt.Errorf("-db given without a database path")
		}
		st, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, "", "", err
		}
		defer st.Close()

		ctx := context.Background()
		records, err := st.ListUnified(ctx)
		if err != nil {
			return nil, "", "", err
		}
		runID := ""
		if run, ok, err := st.LastRun(ctx); err == nil && ok {
			runID = run.RunID
		}
		return records, cfg.DBPath, runID, nil
	}

	records, err := tabular.ReadUnified(cfg.UnifiedPath())
	if err != nil {
		return nil, "", "", err
	}
	return records, cfg.UnifiedPath(), "", nil
}

func latestYear(records []model.UnifiedRecord) int {
	year := 0
	for _, record := range records {
		if record.Year > year {
			year = record.Year
		}
	}
	return year
}

func writeJSON(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
