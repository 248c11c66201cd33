package market

// Regions maps every supported region code to its display name
var Regions = map[string]string{
	"VN": "Vietnam", "US": "United States", "KR": "South Korea", "JP": "Japan",
	"IN": "India", "GB": "United Kingdom", "BR": "Brazil", "RU": "Russia",
	"DE": "Germany", "FR": "France", "ID": "Indonesia", "MX": "Mexico",
	"TH": "Thailand", "PH": "Philippines", "TR": "Turkey", "ES": "Spain",
	"IT": "Italy", "CA": "Canada", "AU": "Australia", "MY": "Malaysia",
	"TW": "Taiwan", "SA": "Saudi Arabia", "AE": "UAE", "SG": "Singapore",
	"HK": "Hong Kong", "AR": "Argentina", "ZA": "South Africa", "EG": "Egypt",
	"PK": "Pakistan", "NG": "Nigeria", "BD": "Bangladesh", "PL": "Poland",
	"NL": "Netherlands", "SE": "Sweden", "CH": "Switzerland", "BE": "Belgium",
	"AT": "Austria", "PT": "Portugal", "NO": "Norway", "DK": "Denmark",
	"FI": "Finland", "IE": "Ireland", "NZ": "New Zealand", "IL": "Israel",
	"UA": "Ukraine", "CO": "Colombia", "CL": "Chile", "PE": "Peru",
	"CZ": "Czechia", "HU": "Hungary", "RO": "Romania", "GR": "Greece",
	"SK": "Slovakia", "BG": "Bulgaria", "HR": "Croatia", "RS": "Serbia",
	"SI": "Slovenia", "LT": "Lithuania", "LV": "Latvia", "EE": "Estonia",
	"DZ": "Algeria", "MA": "Morocco", "IQ": "Iraq", "KE": "Kenya",
	"GH": "Ghana", "TZ": "Tanzania", "UG": "Uganda", "ZW": "Zimbabwe",
	"LK": "Sri Lanka", "NP": "Nepal", "KZ": "Kazakhstan", "BY": "Belarus",
	"AZ": "Azerbaijan", "GE": "Georgia", "BO": "Bolivia", "EC": "Ecuador",
	"GT": "Guatemala", "CR": "Costa Rica", "DO": "Dominican Rep.",
	"UY": "Uruguay", "PY": "Paraguay", "SV": "El Salvador", "HN": "Honduras",
	"NI": "Nicaragua", "PA": "Panama", "JM": "Jamaica", "PR": "Puerto Rico",
	"QA": "Qatar", "KW": "Kuwait", "OM": "Oman", "BH": "Bahrain",
	"LB": "Lebanon", "JO": "Jordan", "TN": "Tunisia", "YE": "Yemen",
}

// IsKnownRegion reports whether code is a supported region
func IsKnownRegion(code string) bool {
	_, ok := Regions[code]
	return ok
}

// RegionName returns the display name for a region code, falling back to the
// code itself for unknown regions.
func RegionName(code string) string {
	if name, ok := Regions[code]; ok {
		return name
	}
	return code
}
