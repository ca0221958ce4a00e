package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrade/internal/model"
)

func sampleUnified() []model.UnifiedRecord {
	return []model.UnifiedRecord{
		{
			TradeRecord: model.TradeRecord{
				Reporter:    "USA",
				PartnerISO3: "BRA",
				PartnerName: "Brazil",
				Year:        2021,
				Flow:        model.FlowExport,
				Category:    "truck",
				Value:       model.Float(500),
				Currency:    "USD",
			},
		},
		{
			TradeRecord: model.TradeRecord{
				Reporter:    "USA",
				PartnerISO3: "MEX",
				PartnerName: "Mexico",
				Year:        2020,
				Flow:        model.FlowExport,
				Category:    "passenger_vehicle",
				Value:       model.Float(1234.5),
				Currency:    "USD",
			},
			GDPUSD:        model.Float(1_000_000_000),
			MFNTariffRate: model.Float(2.5),
		},
	}
}

func TestUnifiedRoundTrip(t *testing.T) {
	records := sampleUnified()
	path := filepath.Join(t.TempDir(), "unified.csv")
	require.NoError(t, WriteCSV(path, UnifiedHeader, UnifiedRows(records)))

	loaded, err := ReadUnified(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestUnifiedRowsRenderNullsAsEmpty(t *testing.T) {
	rows := UnifiedRows(sampleUnified())
	require.Len(t, rows, 2)

	// Brazil has no indicator data: gdp and tariff cells are empty.
	assert.Equal(t, "", rows[0][8])
	assert.Equal(t, "", rows[0][9])
	assert.Equal(t, "1000000000", rows[1][8])
	assert.Equal(t, "2.5", rows[1][9])
}

func TestTradeRows(t *testing.T) {
	rows := TradeRows([]model.TradeRecord{
		{
			Reporter:    "USA",
			PartnerISO3: "MEX",
			PartnerName: "Mexico",
			Year:        2020,
			Flow:        model.FlowImport,
			Category:    "total",
			Value:       model.Null(),
			Currency:    "USD",
		},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"USA", "MEX", "Mexico", "2020", "import", "total", "", "USD"}, rows[0])
}

func TestEconRows(t *testing.T) {
	rows := EconRows([]model.EconIndicator{
		{CountryISO3: "MEX", Year: 2020, GDPUSD: model.Float(1.5), MFNTariffRate: model.Null()},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"MEX", "2020", "1.5", ""}, rows[0])
}

func TestReadUnifiedMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unified.csv")
	require.NoError(t, WriteCSV(path, []string{"partner_country", "year"}, [][]string{{"MEX", "2020"}}))

	_, err := ReadUnified(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing unified column")
}
