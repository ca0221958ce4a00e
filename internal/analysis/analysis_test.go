package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotrade/internal/model"
)

func record(iso3 string, year int, flow model.Flow, value model.NullFloat, tariff model.NullFloat) model.UnifiedRecord {
	return model.UnifiedRecord{
		TradeRecord: model.TradeRecord{
			Reporter:    "USA",
			PartnerISO3: iso3,
			PartnerName: iso3,
			Year:        year,
			Flow:        flow,
			Category:    "total",
			Value:       value,
			Currency:    "USD",
		},
		MFNTariffRate: tariff,
	}
}

func TestYearlyBalance(t *testing.T) {
	records := []model.UnifiedRecord{
		record("MEX", 2020, model.FlowExport, model.Float(100), model.Null()),
		record("MEX", 2020, model.FlowImport, model.Float(160), model.Null()),
		record("CAN", 2020, model.FlowExport, model.Float(40), model.Null()),
		record("CAN", 2021, model.FlowExport, model.Float(70), model.Null()),
		record("CAN", 2021, model.FlowImport, model.Null(), model.Null()),
	}

	years := YearlyBalance(records)
	require.Len(t, years, 2)

	assert.Equal(t, 2020, years[0].Year)
	assert.Equal(t, 140.0, years[0].Exports)
	assert.Equal(t, 160.0, years[0].Imports)
	assert.Equal(t, -20.0, years[0].Balance)

	assert.Equal(t, 2021, years[1].Year)
	assert.Equal(t, 70.0, years[1].Exports)
	assert.Equal(t, 0.0, years[1].Imports, "null import must not contribute")
}

func TestTopPartners(t *testing.T) {
	records := []model.UnifiedRecord{
		record("MEX", 2022, model.FlowExport, model.Float(300), model.Null()),
		record("MEX", 2022, model.FlowImport, model.Float(400), model.Null()),
		record("CAN", 2022, model.FlowExport, model.Float(500), model.Null()),
		record("JPN", 2022, model.FlowImport, model.Float(100), model.Null()),
		record("DEU", 2021, model.FlowExport, model.Float(9999), model.Null()),
		record("CHN", 2022, model.FlowExport, model.Null(), model.Null()),
	}

	partners := TopPartners(records, 2022, 2)
	require.Len(t, partners, 2)

	assert.Equal(t, "MEX", partners[0].PartnerISO3)
	assert.Equal(t, 700.0, partners[0].Total)
	assert.Equal(t, "CAN", partners[1].PartnerISO3)
	assert.Equal(t, 500.0, partners[1].Total)
}

func TestTopPartnersExcludesYearsWithoutData(t *testing.T) {
	records := []model.UnifiedRecord{
		record("CHN", 2022, model.FlowExport, model.Null(), model.Null()),
	}
	assert.Empty(t, TopPartners(records, 2022, 10))
}

func TestTariffSeries(t *testing.T) {
	withGDP := record("MEX", 2020, model.FlowExport, model.Float(100), model.Float(2.5))
	withGDP.GDPUSD = model.Float(1_000_000_000)

	records := []model.UnifiedRecord{
		withGDP,
		record("MEX", 2020, model.FlowImport, model.Float(50), model.Float(2.5)),
		record("MEX", 2021, model.FlowExport, model.Float(120), model.Null()),
		record("CAN", 2020, model.FlowExport, model.Float(80), model.Float(1)),
	}

	points := TariffSeries(records, []string{"MEX"})
	require.Len(t, points, 2)

	assert.Equal(t, "MEX", points[0].PartnerISO3)
	assert.Equal(t, 2020, points[0].Year)
	assert.Equal(t, 100.0, points[0].Exports, "imports must not count into export series")
	require.NotNil(t, points[0].MFNTariffRate)
	assert.Equal(t, 2.5, *points[0].MFNTariffRate)
	require.NotNil(t, points[0].GDPUSD)
	assert.Equal(t, 1_000_000_000.0, *points[0].GDPUSD)

	assert.Equal(t, 2021, points[1].Year)
	assert.Nil(t, points[1].MFNTariffRate, "missing tariff stays null in JSON")
}
