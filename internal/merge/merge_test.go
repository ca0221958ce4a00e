package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrade/internal/model"
)

func tradeRecord(iso3 string, year int, flow model.Flow, category string, value float64) model.TradeRecord {
	return model.TradeRecord{
		Reporter:    model.ReporterISO3,
		PartnerISO3: iso3,
		PartnerName: iso3,
		Year:        year,
		Flow:        flow,
		Category:    category,
		Value:       model.Float(value),
		Currency:    model.CurrencyUSD,
	}
}

func TestMergeAttachesIndicators(t *testing.T) {
	trade := []model.TradeRecord{
		tradeRecord("MEX", 2020, model.FlowExport, "passenger_vehicle", 1000),
	}
	econ := []model.EconIndicator{
		{CountryISO3: "MEX", Year: 2020, GDPUSD: model.Float(1_000_000_000), MFNTariffRate: model.Float(2.5)},
	}

	unified, report, err := Merge(trade, econ)
	require.NoError(t, err)
	require.Len(t, unified, 1)

	assert.Equal(t, "MEX", unified[0].PartnerISO3)
	assert.Equal(t, 2020, unified[0].Year)
	assert.Equal(t, model.Float(1000), unified[0].Value)
	assert.Equal(t, model.Float(1_000_000_000), unified[0].GDPUSD)
	assert.Equal(t, model.Float(2.5), unified[0].MFNTariffRate)
	assert.Zero(t, report.UnmatchedPrimary)
}

func TestMergeKeepsUnmatchedPrimaryWithNulls(t *testing.T) {
	trade := []model.TradeRecord{
		tradeRecord("BRA", 2021, model.FlowExport, "truck", 500),
	}
	econ := []model.EconIndicator{
		{CountryISO3: "BRA", Year: 2020, GDPUSD: model.Float(1800)},
	}

	unified, report, err := Merge(trade, econ)
	require.NoError(t, err)
	require.Len(t, unified, 1)

	assert.Equal(t, model.Float(500), unified[0].Value)
	assert.False(t, unified[0].GDPUSD.Valid, "gdp must be null, not zero")
	assert.False(t, unified[0].MFNTariffRate.Valid)
	assert.Equal(t, 1, report.UnmatchedPrimary)
	assert.Equal(t, 1, report.UnusedSecondary)
}

func TestMergePreservesTradeCardinality(t *testing.T) {
	trade := []model.TradeRecord{
		tradeRecord("CAN", 2019, model.FlowExport, "truck", 1),
		tradeRecord("CAN", 2019, model.FlowImport, "truck", 2),
		tradeRecord("JPN", 2020, model.FlowExport, "passenger", 3),
		tradeRecord("DEU", 2021, model.FlowImport, "bus", 4),
	}
	econ := []model.EconIndicator{
		{CountryISO3: "CAN", Year: 2019, GDPUSD: model.Float(1700)},
	}

	unified, report, err := Merge(trade, econ)
	require.NoError(t, err)
	assert.Len(t, unified, len(trade))
	assert.Equal(t, len(trade), report.UnifiedRecords)
	assert.Equal(t, 2, report.UnmatchedPrimary)
}

func TestMergeDiscardsUnmatchedSecondary(t *testing.T) {
	trade := []model.TradeRecord{
		tradeRecord("MEX", 2020, model.FlowExport, "truck", 10),
	}
	econ := []model.EconIndicator{
		{CountryISO3: "MEX", Year: 2020, GDPUSD: model.Float(1)},
		{CountryISO3: "ZAF", Year: 2020, GDPUSD: model.Float(2)},
		{CountryISO3: "MEX", Year: 1999, GDPUSD: model.Float(3)},
	}

	unified, report, err := Merge(trade, econ)
	require.NoError(t, err)
	assert.Len(t, unified, 1)
	assert.Equal(t, 2, report.UnusedSecondary)
}

func TestMergeDuplicateSecondaryKeyIsFatal(t *testing.T) {
	trade := []model.TradeRecord{
		tradeRecord("IND", 2019, model.FlowExport, "truck", 10),
	}
	econ := []model.EconIndicator{
		{CountryISO3: "IND", Year: 2019, GDPUSD: model.Float(100)},
		{CountryISO3: "IND", Year: 2019, GDPUSD: model.Float(200)},
	}

	unified, report, err := Merge(trade, econ)
	require.Error(t, err)
	assert.Nil(t, unified)
	assert.Nil(t, report)

	assert.ErrorIs(t, err, ErrDuplicateKey)
	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	require.Len(t, dupErr.Keys, 1)
	assert.Equal(t, model.EconKey{CountryISO3: "IND", Year: 2019}, dupErr.Keys[0])
	assert.Contains(t, err.Error(), "(IND, 2019)")
}

func TestMergeEmptySecondary(t *testing.T) {
	trade := []model.TradeRecord{
		tradeRecord("MEX", 2020, model.FlowExport, "truck", 10),
	}

	unified, report, err := Merge(trade, nil)
	require.NoError(t, err)
	assert.Len(t, unified, 1)
	assert.Equal(t, 1, report.UnmatchedPrimary)
}
