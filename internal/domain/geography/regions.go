package geography

// RegionOther is the bucket for countries with no region mapping.  Keeping
// unknowns visible in one bucket beats silently dropping them: a large
// "Other" share in a report is a signal that the mapping needs extending.
const RegionOther = "Other"

// Region bucket names.
const (
	RegionEurope       = "Europe"
	RegionNorthAmerica = "North America"
	RegionAsiaPacific  = "Asia Pacific"
	RegionLatinAmerica = "Latin America"
	RegionMEA          = "Middle East & Africa"
)

// builtinRegions maps ISO 3166-1 alpha-2 country codes (plus the regional
// patent offices that appear as person countries in the source data) to
// report regions.  Extend via the geo.regions configuration map rather than
// editing here.
var builtinRegions = map[string]string{
	// Europe — EPC states and the EPO itself.
	"AL": RegionEurope, "AT": RegionEurope, "BA": RegionEurope, "BE": RegionEurope,
	"BG": RegionEurope, "CH": RegionEurope, "CY": RegionEurope, "CZ": RegionEurope,
	"DE": RegionEurope, "DK": RegionEurope, "EE": RegionEurope, "EP": RegionEurope,
	"ES": RegionEurope, "FI": RegionEurope, "FR": RegionEurope, "GB": RegionEurope,
	"GR": RegionEurope, "HR": RegionEurope, "HU": RegionEurope, "IE": RegionEurope,
	"IS": RegionEurope, "IT": RegionEurope, "LI": RegionEurope, "LT": RegionEurope,
	"LU": RegionEurope, "LV": RegionEurope, "MC": RegionEurope, "ME": RegionEurope,
	"MK": RegionEurope, "MT": RegionEurope, "NL": RegionEurope, "NO": RegionEurope,
	"PL": RegionEurope, "PT": RegionEurope, "RO": RegionEurope, "RS": RegionEurope,
	"RU": RegionEurope, "SE": RegionEurope, "SI": RegionEurope, "SK": RegionEurope,
	"SM": RegionEurope, "TR": RegionEurope, "UA": RegionEurope,

	// North America.
	"CA": RegionNorthAmerica, "US": RegionNorthAmerica,

	// Asia Pacific.
	"AU": RegionAsiaPacific, "CN": RegionAsiaPacific, "HK": RegionAsiaPacific,
	"ID": RegionAsiaPacific, "IN": RegionAsiaPacific, "JP": RegionAsiaPacific,
	"KR": RegionAsiaPacific, "MY": RegionAsiaPacific, "NZ": RegionAsiaPacific,
	"PH": RegionAsiaPacific, "SG": RegionAsiaPacific, "TH": RegionAsiaPacific,
	"TW": RegionAsiaPacific, "VN": RegionAsiaPacific,

	// Latin America.
	"AR": RegionLatinAmerica, "BR": RegionLatinAmerica, "CL": RegionLatinAmerica,
	"CO": RegionLatinAmerica, "MX": RegionLatinAmerica, "PE": RegionLatinAmerica,
	"UY": RegionLatinAmerica,

	// Middle East & Africa.
	"AE": RegionMEA, "EG": RegionMEA, "IL": RegionMEA, "MA": RegionMEA,
	"SA": RegionMEA, "TN": RegionMEA, "ZA": RegionMEA,
}

// RegionFor resolves a country code to its region.  overrides (typically the
// geo.regions config map) take precedence over the builtin table; anything
// unresolved lands in RegionOther.
func RegionFor(country string, overrides map[string]string) string {
	if r, ok := overrides[country]; ok && r != "" {
		return r
	}
	if r, ok := builtinRegions[country]; ok {
		return r
	}
	return RegionOther
}
