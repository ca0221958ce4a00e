// Package clean turns raw automotive trade files and raw macroeconomic
// indicator files into the canonical record tables. Per-row problems are
// recovered and counted in a stage report; structural problems (missing
// columns, unreadable files) abort the stage.
package clean

import (
	"log/slog"
	"sort"
	"strings"

	"autotrade/internal/countries"
	"autotrade/internal/model"
	"autotrade/internal/tabular"
)

// primaryColumns enumerates, per canonical field, the raw header
// spellings the known primary sources use. Mapping is exact (trimmed,
// case-insensitive) — never inferred.
var primaryColumns = map[string][]string{
	"partner":  {"partner", "partner country", "partner_country", "country", "trading partner"},
	"year":     {"year", "time", "period"},
	"flow":     {"flow", "direction", "flow_direction", "trade flow", "trade direction"},
	"category": {"category", "vehicle type", "vehicle_type", "product", "commodity", "classification"},
	"value":    {"value", "value (us$)", "value_usd", "trade value", "customs value", "amount"},
}

// category is optional: single-category extracts omit the column.
var primaryRequired = []string{"partner", "year", "flow", "value"}

const defaultCategory = "total"

const unmappedSampleCap = 5

// PrimaryReport counts everything the primary cleaner dropped or
// recovered. Nothing leaves the stage uncounted.
type PrimaryReport struct {
	Files                  int
	RowsIn                 int
	Records                int
	DroppedMissingKey      int
	DroppedUnknownFlow     int
	DroppedUnmappedCountry int
	UnmappedSamples        []string
	ValueParseFailures     int
	NegativeValues         int
	DuplicatesCollapsed    int
}

func (r *PrimaryReport) sampleUnmapped(name string) {
	for _, seen := range r.UnmappedSamples {
		if seen == name {
			return
		}
	}
	if len(r.UnmappedSamples) < unmappedSampleCap {
		r.UnmappedSamples = append(r.UnmappedSamples, name)
	}
}

type tradeAccum struct {
	record   model.TradeRecord
	sum      float64
	anyValid bool
	rows     int
}

// Primary cleans one or more raw trade files into the TradeRecord table.
// Duplicate key tuples are summed; rows missing a key field or naming an
// unknown country are dropped and counted. Output is sorted by
// (PartnerISO3, Year, Flow, Category) so identical input yields identical
// output bytes.
func Primary(paths []string) ([]model.TradeRecord, *PrimaryReport, error) {
	report := &PrimaryReport{}
	accum := make(map[model.TradeKey]*tradeAccum)

	for _, path := range paths {
		table, err := tabular.ReadTable(path)
		if err != nil {
			return nil, nil, err
		}
		if err := cleanPrimaryFile(table, accum, report); err != nil {
			return nil, nil, err
		}
		report.Files++
	}

	records := make([]model.TradeRecord, 0, len(accum))
	for _, a := range accum {
		record := a.record
		if a.anyValid {
			record.Value = model.Float(a.sum)
		} else {
			record.Value = model.Null()
		}
		records = append(records, record)
		report.DuplicatesCollapsed += a.rows - 1
	}
	sort.Slice(records, func(i, j int) bool {
		return lessTradeKey(records[i].Key(), records[j].Key())
	})
	report.Records = len(records)

	slog.Info("primary cleaning complete",
		slog.Int("files", report.Files),
		slog.Int("rows_in", report.RowsIn),
		slog.Int("records", report.Records),
		slog.Int("dropped_missing_key", report.DroppedMissingKey),
		slog.Int("dropped_unmapped_country", report.DroppedUnmappedCountry),
		slog.Int("value_parse_failures", report.ValueParseFailures))

	return records, report, nil
}

func cleanPrimaryFile(table *tabular.Table, accum map[model.TradeKey]*tradeAccum, report *PrimaryReport) error {
	cols, err := resolveColumns(table, primaryColumns, primaryRequired)
	if err != nil {
		return err
	}

	for _, row := range table.Rows {
		if rowBlank(row) {
			continue
		}
		report.RowsIn++

		partnerRaw := table.Cell(row, cols["partner"])
		yearRaw := table.Cell(row, cols["year"])
		flowRaw := table.Cell(row, cols["flow"])
		if partnerRaw == "" || yearRaw == "" || flowRaw == "" {
			report.DroppedMissingKey++
			continue
		}

		year, ok := ParseYear(yearRaw)
		if !ok {
			report.DroppedMissingKey++
			continue
		}
		flow, ok := ParseFlow(flowRaw)
		if !ok {
			report.DroppedUnknownFlow++
			continue
		}
		iso3, ok := countries.Lookup(partnerRaw)
		if !ok {
			report.DroppedUnmappedCountry++
			report.sampleUnmapped(partnerRaw)
			continue
		}

		category := defaultCategory
		if idx, ok := cols["category"]; ok && idx >= 0 {
			if raw := table.Cell(row, idx); raw != "" {
				category = normalizeCategory(raw)
			}
		}

		value, ok := ParseMoney(table.Cell(row, cols["value"]))
		if !ok {
			report.ValueParseFailures++
		}
		if value.Valid && value.Float64 < 0 {
			report.NegativeValues++
			value = model.Null()
		}

		record := model.TradeRecord{
			Reporter:    model.ReporterISO3,
			PartnerISO3: iso3,
			PartnerName: countries.Name(iso3),
			Year:        year,
			Flow:        flow,
			Category:    category,
			Currency:    model.CurrencyUSD,
		}
		key := record.Key()
		a, exists := accum[key]
		if !exists {
			a = &tradeAccum{record: record}
			accum[key] = a
		}
		a.rows++
		if value.Valid {
			a.sum += value.Float64
			a.anyValid = true
		}
	}
	return nil
}

// resolveColumns maps each canonical field to a column position using the
// enumerated spellings; optional fields that are absent map to -1.
func resolveColumns(table *tabular.Table, mapping map[string][]string, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(mapping))
	for field, spellings := range mapping {
		cols[field] = -1
		for _, spelling := range spellings {
			if idx, ok := table.Index(spelling); ok {
				cols[field] = idx
				break
			}
		}
	}
	for _, field := range required {
		if cols[field] < 0 {
			return nil, &SchemaError{File: table.Path, Field: field}
		}
	}
	return cols, nil
}

func normalizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.Fields(category), "_")
}

func rowBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func lessTradeKey(a, b model.TradeKey) bool {
	if a.PartnerISO3 != b.PartnerISO3 {
		return a.PartnerISO3 < b.PartnerISO3
	}
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Flow != b.Flow {
		return a.Flow < b.Flow
	}
	return a.Category < b.Category
}
