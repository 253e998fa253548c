package parse

import (
	"regexp"
	"strings"
)

// isoCountries reproduces original_source's core/parsers/country.py
// ISO_COUNTRIES table (itself grounded on Readarr's IsoCountries), kept
// as a Go map literal rather than re-derived.
var isoCountries = map[string]string{
	"US": "United States", "CA": "Canada", "MX": "Mexico",
	"UK": "United Kingdom", "DE": "Germany", "FR": "France", "IT": "Italy",
	"ES": "Spain", "PT": "Portugal", "NL": "Netherlands", "BE": "Belgium",
	"CH": "Switzerland", "AT": "Austria", "SE": "Sweden", "NO": "Norway",
	"DK": "Denmark", "FI": "Finland", "PL": "Poland", "CZ": "Czech Republic",
	"HU": "Hungary", "RO": "Romania", "BG": "Bulgaria", "GR": "Greece",
	"IE": "Ireland", "SK": "Slovakia", "HR": "Croatia", "SI": "Slovenia",
	"LT": "Lithuania", "LV": "Latvia", "EE": "Estonia", "IS": "Iceland",
	"LU": "Luxembourg", "MT": "Malta", "CY": "Cyprus",
	"JP": "Japan", "CN": "China", "KR": "South Korea", "IN": "India",
	"ID": "Indonesia", "TH": "Thailand", "MY": "Malaysia", "SG": "Singapore",
	"PH": "Philippines", "VN": "Vietnam", "TW": "Taiwan", "HK": "Hong Kong",
	"TR": "Turkey", "SA": "Saudi Arabia", "AE": "United Arab Emirates",
	"IL": "Israel", "IR": "Iran", "IQ": "Iraq",
	"AU": "Australia", "NZ": "New Zealand",
	"BR": "Brazil", "AR": "Argentina", "CL": "Chile", "CO": "Colombia",
	"PE": "Peru",
	"ZA": "South Africa", "EG": "Egypt", "NG": "Nigeria", "KE": "Kenya",
	"RU": "Russia", "UA": "Ukraine", "BY": "Belarus",
	"SU": "Soviet Union", "YU": "Yugoslavia",
	"XE": "Europe", "XW": "Worldwide", "XU": "Unknown Country", "EU": "European Union",
	"RS": "Serbia", "BA": "Bosnia and Herzegovina", "MK": "North Macedonia",
}

var countryByName map[string]string

func init() {
	countryByName = make(map[string]string, len(isoCountries))
	for _, name := range isoCountries {
		countryByName[strings.ToLower(name)] = name
	}
}

// FindCountry resolves a 2-char ISO code, a bracketed code, or a full
// country name to its canonical name. Grounded on original_source's
// find_country.
func FindCountry(codeOrName string) (string, bool) {
	search := strings.ToUpper(strings.Trim(strings.TrimSpace(codeOrName), "[]()"))
	if search == "" {
		return "", false
	}
	if len(search) == 2 {
		if name, ok := isoCountries[search]; ok {
			return name, true
		}
	}
	if name, ok := countryByName[strings.ToLower(codeOrName)]; ok {
		return name, true
	}
	return "", false
}

var (
	bracketedCode = regexp.MustCompile(`[\[\(]([A-Za-z]{2})[\]\)]`)
	bareCode      = regexp.MustCompile(`(?:^|[\s._-])([A-Z]{2})(?:[\s._-]|$)`)
)

// DetectCountry tries ordered patterns against text: bracketed/
// parenthesized codes first, then bare codes, then a full-name scan
// over the ISO table (spec §4.2 Country detection).
func DetectCountry(text string) (string, bool) {
	if m := bracketedCode.FindStringSubmatch(text); m != nil {
		if name, ok := FindCountry(m[1]); ok {
			return name, true
		}
	}
	if m := bareCode.FindStringSubmatch(text); m != nil {
		if name, ok := FindCountry(m[1]); ok {
			return name, true
		}
	}
	lower := strings.ToLower(text)
	for name, canonical := range countryByName {
		if strings.Contains(lower, name) {
			return canonical, true
		}
	}
	return "", false
}
