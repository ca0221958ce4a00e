// Package merge joins the cleaned trade table with the cleaned economic
// indicator table into the unified dataset.
package merge

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"autotrade/internal/model"
)

var ErrDuplicateKey = errors.New("merge: duplicate key in secondary table")

const duplicateKeyCap = 10

// DuplicateKeyError reports (country, year) keys that appear more than
// once in the secondary table. Silent resolution would corrupt the
// unified dataset, so the merge halts instead.
type DuplicateKeyError struct {
	Keys []model.EconKey
}

func (e *DuplicateKeyError) Error() string {
	parts := make([]string, 0, len(e.Keys))
	for _, key := range e.Keys {
		parts = append(parts, fmt.Sprintf("(%s, %d)", key.CountryISO3, key.Year))
	}
	return fmt.Sprintf("%v: %s", ErrDuplicateKey, strings.Join(parts, ", "))
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// Report carries the data-quality counters of one merge.
type Report struct {
	TradeRecords     int
	EconRecords      int
	UnifiedRecords   int
	UnmatchedPrimary int
	UnusedSecondary  int
}

// Merge left-joins trade records with economic indicators on
// (PartnerISO3, Year). Every trade record produces exactly one unified
// record; misses keep explicit nulls. Unmatched indicator rows are
// discarded (they are not a unit of analysis) but counted.
func Merge(trade []model.TradeRecord, econ []model.EconIndicator) ([]model.UnifiedRecord, *Report, error) {
	index := make(map[model.EconKey]model.EconIndicator, len(econ))
	var duplicates []model.EconKey
	for _, indicator := range econ {
		key := indicator.Key()
		if _, exists := index[key]; exists {
			if len(duplicates) < duplicateKeyCap {
				duplicates = append(duplicates, key)
			}
			continue
		}
		index[key] = indicator
	}
	if len(duplicates) > 0 {
		return nil, nil, &DuplicateKeyError{Keys: duplicates}
	}

	report := &Report{TradeRecords: len(trade), EconRecords: len(econ)}
	matched := make(map[model.EconKey]struct{})

	unified := make([]model.UnifiedRecord, 0, len(trade))
	for _, record := range trade {
		key := model.EconKey{CountryISO3: record.PartnerISO3, Year: record.Year}
		out := model.UnifiedRecord{TradeRecord: record}
		if indicator, ok := index[key]; ok {
			out.GDPUSD = indicator.GDPUSD
			out.MFNTariffRate = indicator.MFNTariffRate
			matched[key] = struct{}{}
		} else {
			report.UnmatchedPrimary++
		}
		unified = append(unified, out)
	}

	report.UnifiedRecords = len(unified)
	report.UnusedSecondary = len(econ) - len(matched)

	slog.Info("merge complete",
		slog.Int("trade_records", report.TradeRecords),
		slog.Int("econ_records", report.EconRecords),
		slog.Int("unified_records", report.UnifiedRecords),
		slog.Int("unmatched_primary", report.UnmatchedPrimary),
		slog.Int("unused_secondary", report.UnusedSecondary))

	return unified, report, nil
}
