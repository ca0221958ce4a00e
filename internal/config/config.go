// Package config holds the pipeline's external parameters: where the raw
// and processed trees live, the optional dataset-of-record database, and
// report settings. Values come from defaults, then an optional YAML file,
// then AUTOTRADE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const envPrefix = "AUTOTRADE"

type Config struct {
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	DBPath       string `yaml:"db_path" envconfig:"DB_PATH"`
	ReportDir    string `yaml:"report_dir" envconfig:"REPORT_DIR"`
	TopPartners  int    `yaml:"top_partners" envconfig:"TOP_PARTNERS"`
}

func Default() Config {
	return Config{
		RawDir:       "data/raw",
		ProcessedDir: "data/processed",
		DBPath:       "autotrade.db",
		ReportDir:    "site/data",
		TopPartners:  10,
	}
}

// Load builds the configuration. A config file named explicitly must
// exist; the default candidate (autotrade.yaml) is optional. Environment
// variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	candidate := path
	if !explicit {
		candidate = "autotrade.yaml"
	}
	data, err := os.ReadFile(candidate)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", candidate, err)
		}
	case explicit:
		return Config{}, fmt.Errorf("config: read %s: %w", candidate, err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.RawDir) == "" {
		return fmt.Errorf("config: raw_dir is required")
	}
	if strings.TrimSpace(c.ProcessedDir) == "" {
		return fmt.Errorf("config: processed_dir is required")
	}
	if c.TopPartners <= 0 {
		return fmt.Errorf("config: top_partners must be positive")
	}
	return nil
}

func (c Config) PrimaryDir() string {
	return filepath.Join(c.RawDir, "primary")
}

func (c Config) SecondaryDir() string {
	return filepath.Join(c.RawDir, "secondary")
}

func (c Config) TradeRecordsPath() string {
	return filepath.Join(c.ProcessedDir, "trade_records.csv")
}

func (c Config) EconIndicatorsPath() string {
	return filepath.Join(c.ProcessedDir, "econ_indicators.csv")
}

func (c Config) UnifiedPath() string {
	return filepath.Join(c.ProcessedDir, "unified.csv")
}

// PrimaryFiles lists the raw trade files, sorted so stage input order is
// stable across runs.
func (c Config) PrimaryFiles() ([]string, error) {
	files, err := listTables(c.PrimaryDir(), func(string) bool { return true })
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("config: no raw primary files under %s", c.PrimaryDir())
	}
	return files, nil
}

// GDPFiles and TariffFiles split the secondary tree by file-name prefix:
// gdp* carries GDP, everything starting with mfn or tariff carries the
// MFN tariff rate.
func (c Config) GDPFiles() ([]string, error) {
	return listTables(c.SecondaryDir(), func(name string) bool {
		return strings.HasPrefix(name, "gdp")
	})
}

func (c Config) TariffFiles() ([]string, error) {
	return listTables(c.SecondaryDir(), func(name string) bool {
		return strings.HasPrefix(name, "mfn") || strings.HasPrefix(name, "tariff")
	})
}

func listTables(dir string, match func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read raw dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		switch filepath.Ext(name) {
		case ".csv", ".xlsx", ".xlsm":
		default:
			continue
		}
		if match(name) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
