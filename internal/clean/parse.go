package clean

import (
	"strconv"
	"strings"

	"autotrade/internal/model"
)

// ParseMoney parses a currency cell such as "$1,234.50" or "(2,000)".
// Thousands separators, a currency symbol, and surrounding whitespace are
// stripped; parentheses mean a negative amount. An empty cell is a missing
// value (null, ok). Anything else that does not parse as a number —
// "N/A", "..", stray text — yields null with ok=false so the caller can
// count the failure.
func ParseMoney(raw string) (model.NullFloat, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return model.Null(), true
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.NewReplacer("$", "", ",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return model.Null(), false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return model.Null(), false
	}
	if negative {
		value = -value
	}
	return model.Float(value), true
}

// ParsePercent parses a tariff-rate cell such as "2.5" or "2.5%".
// Same null/failure contract as ParseMoney.
func ParsePercent(raw string) (model.NullFloat, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return model.Null(), true
	}

	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return model.Null(), false
	}
	return model.Float(value), true
}

// ParseYear accepts a four-digit year, tolerating float-formatted cells
// like "2020.0" that spreadsheet exports produce.
func ParseYear(raw string) (int, bool) {
	cleaned := strings.TrimSpace(raw)
	if idx := strings.Index(cleaned, "."); idx >= 0 {
		if rest := cleaned[idx+1:]; rest == "" || strings.Trim(rest, "0") == "" {
			cleaned = cleaned[:idx]
		}
	}
	if len(cleaned) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(cleaned)
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}

// ParseFlow maps the direction words seen in raw files onto the Flow enum.
func ParseFlow(raw string) (model.Flow, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "export", "exports", "x":
		return model.FlowExport, true
	case "import", "imports", "m":
		return model.FlowImport, true
	default:
		return "", false
	}
}
