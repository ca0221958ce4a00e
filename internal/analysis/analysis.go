// Package analysis computes the aggregates the visualization layer
// consumes: yearly trade balances, top partner rankings, and per-partner
// tariff/GDP series. Null cells never contribute to sums.
package analysis

import (
	"sort"

	"autotrade/internal/model"
)

type YearBalance struct {
	Year    int     `json:"year"`
	Exports float64 `json:"exports"`
	Imports float64 `json:"imports"`
	Balance float64 `json:"balance"`
}

// YearlyBalance totals exports and imports per year across all partners
// and categories. Balance is exports minus imports.
func YearlyBalance(records []model.UnifiedRecord) []YearBalance {
	byYear := make(map[int]*YearBalance)
	for _, record := range records {
		if !record.Value.Valid {
			continue
		}
		entry, ok := byYear[record.Year]
		if !ok {
			entry = &YearBalance{Year: record.Year}
			byYear[record.Year] = entry
		}
		switch record.Flow {
		case model.FlowExport:
			entry.Exports += record.Value.Float64
		case model.FlowImport:
			entry.Imports += record.Value.Float64
		}
	}

	results := make([]YearBalance, 0, len(byYear))
	for _, entry := range byYear {
		entry.Balance = entry.Exports - entry.Imports
		results = append(results, *entry)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Year < results[j].Year })
	return results
}

type PartnerTotal struct {
	PartnerISO3 string  `json:"partner_iso3"`
	PartnerName string  `json:"partner_name"`
	Exports     float64 `json:"exports"`
	Imports     float64 `json:"imports"`
	Total       float64 `json:"total"`
}

// TopPartners ranks partners by export+import total for one year.
// Partners with no valid value that year are absent, not zero.
func TopPartners(records []model.UnifiedRecord, year, n int) []PartnerTotal {
	byPartner := make(map[string]*PartnerTotal)
	for _, record := range records {
		if record.Year != year || !record.Value.Valid {
			continue
		}
		entry, ok := byPartner[record.PartnerISO3]
		if !ok {
			entry = &PartnerTotal{PartnerISO3: record.PartnerISO3, PartnerName: record.PartnerName}
			byPartner[record.PartnerISO3] = entry
		}
		switch record.Flow {
		case model.FlowExport:
			entry.Exports += record.Value.Float64
		case model.FlowImport:
			entry.Imports += record.Value.Float64
		}
	}

	results := make([]PartnerTotal, 0, len(byPartner))
	for _, entry := range byPartner {
		entry.Total = entry.Exports + entry.Imports
		results = append(results, *entry)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Total != results[j].Total {
			return results[i].Total > results[j].Total
		}
		return results[i].PartnerISO3 < results[j].PartnerISO3
	})
	if n > 0 && len(results) > n {
		results = results[:n]
	}
	return results
}

type TariffPoint struct {
	PartnerISO3   string   `json:"partner_iso3"`
	PartnerName   string   `json:"partner_name"`
	Year          int      `json:"year"`
	Exports       float64  `json:"exports"`
	MFNTariffRate *float64 `json:"mfn_tariff_rate"`
	GDPUSD        *float64 `json:"gdp_usd"`
}

// TariffSeries builds the per-partner export/tariff/GDP time series used
// by the export-vs-tariff and GDP-vs-tariff charts. Indicator misses stay
// null in the JSON output.
func TariffSeries(records []model.UnifiedRecord, partners []string) []TariffPoint {
	wanted := make(map[string]struct{}, len(partners))
	for _, iso3 := range partners {
		wanted[iso3] = struct{}{}
	}

	type seriesKey struct {
		iso3 string
		year int
	}
	points := make(map[seriesKey]*TariffPoint)
	for _, record := range records {
		if len(wanted) > 0 {
			if _, ok := wanted[record.PartnerISO3]; !ok {
				continue
			}
		}
		key := seriesKey{iso3: record.PartnerISO3, year: record.Year}
		point, ok := points[key]
		if !ok {
			point = &TariffPoint{
				PartnerISO3:   record.PartnerISO3,
				PartnerName:   record.PartnerName,
				Year:          record.Year,
				MFNTariffRate: optFloat(record.MFNTariffRate),
				GDPUSD:        optFloat(record.GDPUSD),
			}
			points[key] = point
		}
		if record.Flow == model.FlowExport && record.Value.Valid {
			point.Exports += record.Value.Float64
		}
	}

	results := make([]TariffPoint, 0, len(points))
	for _, point := range points {
		results = append(results, *point)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].PartnerISO3 != results[j].PartnerISO3 {
			return results[i].PartnerISO3 < results[j].PartnerISO3
		}
		return results[i].Year < results[j].Year
	})
	return results
}

func optFloat(value model.NullFloat) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}
