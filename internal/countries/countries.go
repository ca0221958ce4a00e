// Package countries maps raw country spellings from trade and economic
// source files to ISO 3166-1 alpha-3 codes. The table is fixed and
// reviewable on purpose: the join key of the whole pipeline depends on it,
// so an unmapped spelling must surface as a data-quality event instead of
// being guessed at.
package countries

import "strings"

var byName = map[string]string{
	"argentina":            "ARG",
	"australia":            "AUS",
	"austria":              "AUT",
	"belgium":              "BEL",
	"brazil":               "BRA",
	"canada":               "CAN",
	"chile":                "CHL",
	"china":                "CHN",
	"colombia":             "COL",
	"czech republic":       "CZE",
	"czechia":              "CZE",
	"denmark":              "DNK",
	"finland":              "FIN",
	"france":               "FRA",
	"germany":              "DEU",
	"hungary":              "HUN",
	"india":                "IND",
	"indonesia":            "IDN",
	"ireland":              "IRL",
	"israel":               "ISR",
	"italy":                "ITA",
	"japan":                "JPN",
	"malaysia":             "MYS",
	"mexico":               "MEX",
	"netherlands":          "NLD",
	"new zealand":          "NZL",
	"norway":               "NOR",
	"philippines":          "PHL",
	"poland":               "POL",
	"portugal":             "PRT",
	"romania":              "ROU",
	"saudi arabia":         "SAU",
	"singapore":            "SGP",
	"slovakia":             "SVK",
	"south africa":         "ZAF",
	"spain":                "ESP",
	"sweden":               "SWE",
	"switzerland":          "CHE",
	"thailand":             "THA",
	"turkey":               "TUR",
	"ukraine":              "UKR",
	"united arab emirates": "ARE",
	"united kingdom":       "GBR",
	"united states":        "USA",
	"vietnam":              "VNM",
}

// aliases covers the spellings the raw sources actually use: World Bank
// long forms, comma-inverted names, and legacy short forms.
var aliases = map[string]string{
	"korea":                    "KOR",
	"korea, south":             "KOR",
	"korea, rep.":              "KOR",
	"south korea":              "KOR",
	"republic of korea":        "KOR",
	"viet nam":                 "VNM",
	"russia":                   "RUS",
	"russian federation":       "RUS",
	"slovak republic":          "SVK",
	"turkiye":                  "TUR",
	"egypt":                    "EGY",
	"egypt, arab rep.":         "EGY",
	"taiwan":                   "TWN",
	"taiwan, china":            "TWN",
	"chinese taipei":           "TWN",
	"hong kong":                "HKG",
	"hong kong sar, china":     "HKG",
	"china, hong kong sar":     "HKG",
	"uk":                       "GBR",
	"great britain":            "GBR",
	"usa":                      "USA",
	"united states of america": "USA",
	"u.s.":                     "USA",
	"uae":                      "ARE",
	"venezuela":                "VEN",
	"venezuela, rb":            "VEN",
	"iran":                     "IRN",
	"iran, islamic rep.":       "IRN",
	"bahamas, the":             "BHS",
	"gambia, the":              "GMB",
}

// names gives the display spelling the processed tables carry for each
// code, independent of which raw alias produced it.
var names = map[string]string{
	"ARE": "United Arab Emirates",
	"ARG": "Argentina",
	"AUS": "Australia",
	"AUT": "Austria",
	"BEL": "Belgium",
	"BHS": "Bahamas",
	"BRA": "Brazil",
	"CAN": "Canada",
	"CHE": "Switzerland",
	"CHL": "Chile",
	"CHN": "China",
	"COL": "Colombia",
	"CZE": "Czech Republic",
	"DEU": "Germany",
	"DNK": "Denmark",
	"EGY": "Egypt",
	"ESP": "Spain",
	"FIN": "Finland",
	"FRA": "France",
	"GBR": "United Kingdom",
	"GMB": "Gambia",
	"HKG": "Hong Kong",
	"HUN": "Hungary",
	"IDN": "Indonesia",
	"IND": "India",
	"IRL": "Ireland",
	"IRN": "Iran",
	"ISR": "Israel",
	"ITA": "Italy",
	"JPN": "Japan",
	"KOR": "South Korea",
	"MEX": "Mexico",
	"MYS": "Malaysia",
	"NLD": "Netherlands",
	"NOR": "Norway",
	"NZL": "New Zealand",
	"PHL": "Philippines",
	"POL": "Poland",
	"PRT": "Portugal",
	"ROU": "Romania",
	"RUS": "Russia",
	"SAU": "Saudi Arabia",
	"SGP": "Singapore",
	"SVK": "Slovakia",
	"SWE": "Sweden",
	"THA": "Thailand",
	"TUR": "Turkey",
	"TWN": "Taiwan",
	"UKR": "Ukraine",
	"USA": "United States",
	"VEN": "Venezuela",
	"VNM": "Vietnam",
	"ZAF": "South Africa",
}

var iso3Set = buildISO3Set()

func buildISO3Set() map[string]struct{} {
	set := make(map[string]struct{}, len(byName)+len(aliases))
	for _, code := range byName {
		set[code] = struct{}{}
	}
	for _, code := range aliases {
		set[code] = struct{}{}
	}
	return set
}

// Lookup resolves a raw country spelling to its ISO3 code. Values that
// already are a known ISO3 code pass through unchanged.
func Lookup(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}

	if len(trimmed) == 3 {
		upper := strings.ToUpper(trimmed)
		if _, ok := iso3Set[upper]; ok {
			return upper, true
		}
	}

	key := normalizeKey(trimmed)
	if code, ok := byName[key]; ok {
		return code, true
	}
	if code, ok := aliases[key]; ok {
		return code, true
	}
	return "", false
}

// Name returns the display spelling for a known ISO3 code, or the code
// itself when no spelling is on file.
func Name(iso3 string) string {
	if name, ok := names[strings.ToUpper(strings.TrimSpace(iso3))]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(iso3))
}

func normalizeKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, "*")
	return strings.Join(strings.Fields(key), " ")
}
