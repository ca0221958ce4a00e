package tabular

import (
	"fmt"
	"strconv"

	"autotrade/internal/model"
)

// Processed-table schemas. The unified header is the downstream consumer
// contract: analysis tooling loads unified.csv by these names alone.
var (
	TradeHeader = []string{
		"reporting_country", "partner_country", "partner_name",
		"year", "flow_direction", "category", "value", "unit",
	}
	EconHeader    = []string{"country", "year", "gdp", "mfn_tariff_rate"}
	UnifiedHeader = []string{
		"reporting_country", "partner_country", "partner_name",
		"year", "flow_direction", "category", "value", "unit",
		"gdp", "mfn_tariff_rate",
	}
)

func TradeRows(records []model.TradeRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Reporter, r.PartnerISO3, r.PartnerName,
			strconv.Itoa(r.Year), string(r.Flow), r.Category,
			r.Value.String(), r.Currency,
		})
	}
	return rows
}

func EconRows(records []model.EconIndicator) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CountryISO3, strconv.Itoa(r.Year),
			r.GDPUSD.String(), r.MFNTariffRate.String(),
		})
	}
	return rows
}

func UnifiedRows(records []model.UnifiedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Reporter, r.PartnerISO3, r.PartnerName,
			strconv.Itoa(r.Year), string(r.Flow), r.Category,
			r.Value.String(), r.Currency,
			r.GDPUSD.String(), r.MFNTariffRate.String(),
		})
	}
	return rows
}

// ReadUnified loads a persisted unified table back into records. It is
// strict: the file is this pipeline's own output, so any deviation from
// the schema is an error, not a cleaning problem.
func ReadUnified(path string) ([]model.UnifiedRecord, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	cols := make([]int, len(UnifiedHeader))
	for i, name := range UnifiedHeader {
		idx, ok := table.Index(name)
		if !ok {
			return nil, fmt.Errorf("tabular: %s: missing unified column %q", path, name)
		}
		cols[i] = idx
	}

	records := make([]model.UnifiedRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		year, err := strconv.Atoi(table.Cell(row, cols[3]))
		if err != nil {
			return nil, fmt.Errorf("tabular: %s row %d: bad year: %w", path, i+1, err)
		}
		value, err := cellFloat(table.Cell(row, cols[6]))
		if err != nil {
			return nil, fmt.Errorf("tabular: %s row %d: bad value: %w", path, i+1, err)
		}
		gdp, err := cellFloat(table.Cell(row, cols[8]))
		if err != nil {
			return nil, fmt.Errorf("tabular: %s row %d: bad gdp: %w", path, i+1, err)
		}
		tariff, err := cellFloat(table.Cell(row, cols[9]))
		if err != nil {
			return nil, fmt.Errorf("tabular: %s row %d: bad mfn_tariff_rate: %w", path, i+1, err)
		}

		records = append(records, model.UnifiedRecord{
			TradeRecord: model.TradeRecord{
				Reporter:    table.Cell(row, cols[0]),
				PartnerISO3: table.Cell(row, cols[1]),
				PartnerName: table.Cell(row, cols[2]),
				Year:        year,
				Flow:        model.Flow(table.Cell(row, cols[4])),
				Category:    table.Cell(row, cols[5]),
				Value:       value,
				Currency:    table.Cell(row, cols[7]),
			},
			GDPUSD:        gdp,
			MFNTariffRate: tariff,
		})
	}
	return records, nil
}

func cellFloat(cell string) (model.NullFloat, error) {
	if cell == "" {
		return model.Null(), nil
	}
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return model.Null(), err
	}
	return model.Float(value), nil
}
