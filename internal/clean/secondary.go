package clean

import (
	"log/slog"
	"sort"
	"strings"

	"autotrade/internal/countries"
	"autotrade/internal/model"
	"autotrade/internal/tabular"
)

// Indicator names the two macroeconomic series the secondary cleaner
// understands.
type Indicator string

const (
	IndicatorGDP    Indicator = "gdp"
	IndicatorTariff Indicator = "mfn_tariff_rate"
)

// secondaryCountryColumns are the accepted spellings for the country
// column of a wide indicator file.
var secondaryCountryColumns = []string{"country", "country name", "country_name", "economy", "partner"}

// secondaryMetaColumns are known non-year metadata columns excluded from
// the reshape. Everything else must parse as a year to become a cell.
var secondaryMetaColumns = map[string]struct{}{
	"country code":   {},
	"country_code":   {},
	"indicator name": {},
	"indicator code": {},
	"series name":    {},
	"series code":    {},
	"unit":           {},
	"notes":          {},
}

// SecondaryReport counts the reshape and normalization outcomes of the
// secondary cleaner.
type SecondaryReport struct {
	Files                  int
	CountryRows            int
	Cells                  int
	Records                int
	DroppedUnmappedCountry int
	UnmappedSamples        []string
	ValueParseFailures     int
}

func (r *SecondaryReport) sampleUnmapped(name string) {
	for _, seen := range r.UnmappedSamples {
		if seen == name {
			return
		}
	}
	if len(r.UnmappedSamples) < unmappedSampleCap {
		r.UnmappedSamples = append(r.UnmappedSamples, name)
	}
}

type econCell struct {
	iso3  string
	year  int
	value model.NullFloat
}

// Secondary cleans wide GDP and MFN-tariff files (one column per year)
// into the long-form EconIndicator table. Every (country, year) cell is
// emitted exactly once; missing values stay null, never imputed.
// Duplicate country rows in a raw file are deliberately carried through as
// duplicate keys so the merger can reject them loudly instead of this
// stage picking a row arbitrarily.
func Secondary(gdpPaths, tariffPaths []string) ([]model.EconIndicator, *SecondaryReport, error) {
	report := &SecondaryReport{}

	var records []model.EconIndicator
	gdpSlots := make(map[model.EconKey][]int)
	tariffSlots := make(map[model.EconKey][]int)

	attach := func(cells []econCell, indicator Indicator) {
		for _, cell := range cells {
			key := model.EconKey{CountryISO3: cell.iso3, Year: cell.year}

			own, other := gdpSlots, tariffSlots
			if indicator == IndicatorTariff {
				own, other = tariffSlots, gdpSlots
			}

			// Reuse a record for this key that has no value for this
			// indicator yet; otherwise start a new one, which preserves
			// raw duplicate rows as duplicate keys.
			idx := -1
			for _, candidate := range other[key] {
				if !containsInt(own[key], candidate) {
					idx = candidate
					break
				}
			}
			if idx < 0 {
				records = append(records, model.EconIndicator{CountryISO3: cell.iso3, Year: cell.year})
				idx = len(records) - 1
			}
			if indicator == IndicatorGDP {
				records[idx].GDPUSD = cell.value
			} else {
				records[idx].MFNTariffRate = cell.value
			}
			own[key] = append(own[key], idx)
		}
	}

	for _, path := range gdpPaths {
		cells, err := reshapeWide(path, IndicatorGDP, report)
		if err != nil {
			return nil, nil, err
		}
		attach(cells, IndicatorGDP)
		report.Files++
	}
	for _, path := range tariffPaths {
		cells, err := reshapeWide(path, IndicatorTariff, report)
		if err != nil {
			return nil, nil, err
		}
		attach(cells, IndicatorTariff)
		report.Files++
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CountryISO3 != records[j].CountryISO3 {
			return records[i].CountryISO3 < records[j].CountryISO3
		}
		return records[i].Year < records[j].Year
	})
	report.Records = len(records)

	slog.Info("secondary cleaning complete",
		slog.Int("files", report.Files),
		slog.Int("country_rows", report.CountryRows),
		slog.Int("cells", report.Cells),
		slog.Int("records", report.Records),
		slog.Int("dropped_unmapped_country", report.DroppedUnmappedCountry),
		slog.Int("value_parse_failures", report.ValueParseFailures))

	return records, report, nil
}

// reshapeWide turns one wide indicator file into long-form cells: one cell
// per (country row, year column). Non-year metadata columns are skipped by
// the enumerated exclusion list; any other column that does not parse as a
// year is a schema error, not a silent skip.
func reshapeWide(path string, indicator Indicator, report *SecondaryReport) ([]econCell, error) {
	table, err := tabular.ReadTable(path)
	if err != nil {
		return nil, err
	}

	countryIdx := -1
	for _, spelling := range secondaryCountryColumns {
		if idx, ok := table.Index(spelling); ok {
			countryIdx = idx
			break
		}
	}
	if countryIdx < 0 {
		return nil, &SchemaError{File: path, Field: "country"}
	}

	type yearCol struct {
		idx  int
		year int
	}
	var yearCols []yearCol
	for i, header := range table.Header {
		if i == countryIdx {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(header))
		if name == "" {
			continue
		}
		if _, meta := secondaryMetaColumns[name]; meta {
			continue
		}
		year, ok := yearFromHeader(header)
		if !ok {
			return nil, &SchemaError{File: path, Field: header}
		}
		yearCols = append(yearCols, yearCol{idx: i, year: year})
	}
	if len(yearCols) == 0 {
		return nil, &SchemaError{File: path, Field: "year columns"}
	}

	parse := ParseMoney
	if indicator == IndicatorTariff {
		parse = ParsePercent
	}

	var cells []econCell
	for _, row := range table.Rows {
		if rowBlank(row) {
			continue
		}
		report.CountryRows++

		rawCountry := table.Cell(row, countryIdx)
		iso3, ok := countries.Lookup(rawCountry)
		if !ok {
			report.DroppedUnmappedCountry++
			report.sampleUnmapped(rawCountry)
			continue
		}

		for _, col := range yearCols {
			value, ok := parse(table.Cell(row, col.idx))
			if !ok {
				report.ValueParseFailures++
			}
			cells = append(cells, econCell{iso3: iso3, year: col.year, value: value})
			report.Cells++
		}
	}
	return cells, nil
}

// yearFromHeader parses year column headers, including World Bank export
// forms like "2020 [YR2020]" and "YR2020".
func yearFromHeader(header string) (int, bool) {
	name := strings.TrimSpace(header)
	if idx := strings.IndexAny(name, " ["); idx > 0 {
		name = name[:idx]
	}
	upper := strings.ToUpper(name)
	name = strings.TrimPrefix(upper, "YR")
	return ParseYear(name)
}

func containsInt(values []int, want int) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
