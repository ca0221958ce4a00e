package model

import "strconv"

type Flow string

const (
	FlowExport Flow = "export"
	FlowImport Flow = "import"
)

const (
	ReporterISO3 = "USA"
	CurrencyUSD  = "USD"
)

// NullFloat is an explicit value-or-null numeric cell. The zero value is
// null. CSV output renders null as an empty cell.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

func Null() NullFloat {
	return NullFloat{}
}

// String formats the value with the shortest representation that
// round-trips, so repeated runs produce identical bytes.
func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// TradeRecord is one cleaned automotive trade observation. The key tuple
// (PartnerISO3, Year, Flow, Category) is unique after cleaning.
type TradeRecord struct {
	Reporter    string
	PartnerISO3 string
	PartnerName string
	Year        int
	Flow        Flow
	Category    string
	Value       NullFloat
	Currency    string
}

type TradeKey struct {
	PartnerISO3 string
	Year        int
	Flow        Flow
	Category    string
}

func (r TradeRecord) Key() TradeKey {
	return TradeKey{
		PartnerISO3: r.PartnerISO3,
		Year:        r.Year,
		Flow:        r.Flow,
		Category:    r.Category,
	}
}

// EconIndicator is one cleaned macroeconomic observation. The key tuple
// (CountryISO3, Year) must be unique; the merger enforces it.
type EconIndicator struct {
	CountryISO3   string
	Year          int
	GDPUSD        NullFloat
	MFNTariffRate NullFloat
}

type EconKey struct {
	CountryISO3 string
	Year        int
}

func (e EconIndicator) Key() EconKey {
	return EconKey{CountryISO3: e.CountryISO3, Year: e.Year}
}

// UnifiedRecord is a trade record with economic indicators attached by a
// left join. GDPUSD and MFNTariffRate stay null when no indicator row
// matched the (PartnerISO3, Year) key.
type UnifiedRecord struct {
	TradeRecord
	GDPUSD        NullFloat
	MFNTariffRate NullFloat
}
