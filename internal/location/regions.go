package location

import (
	"regexp"
	"strings"
)

var usStates = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV", "new hampshire": "NH",
	"new jersey": "NJ", "new mexico": "NM", "new york": "NY", "north carolina": "NC",
	"north dakota": "ND", "ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD", "tennessee": "TN",
	"texas": "TX", "utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY", "district of columbia": "DC",
}

var countries = []string{
	"united states", "usa", "canada", "mexico", "united kingdom", "england", "scotland",
	"ireland", "australia", "new zealand", "india", "germany", "france", "spain",
}

// stateCodePattern matches a trailing ", TX" style state abbreviation.
var stateCodePattern = regexp.MustCompile(`,\s*([A-Za-z]{2})\.?$`)

// looksComplete approximates completeness without a geocoder: the candidate names a
// US state (full or ", XX" abbreviation) or a country.
func looksComplete(candidate string) bool {
	lower := strings.ToLower(strings.TrimSpace(candidate))
	if lower == "" {
		return false
	}

	if m := stateCodePattern.FindStringSubmatch(lower); m != nil {
		code := strings.ToUpper(m[1])
		for _, abbr := range usStates {
			if abbr == code {
				return true
			}
		}
	}

	for name := range usStates {
		if containsPhrase(lower, name) {
			return true
		}
	}
	for _, name := range countries {
		if containsPhrase(lower, name) {
			return true
		}
	}
	return false
}

func containsPhrase(text, phrase string) bool {
	return phraseIndex(text, phrase) >= 0
}

// phraseIndex returns the byte offset of phrase in text on word boundaries, or -1.
func phraseIndex(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	idx := 0
	for idx <= len(text) {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return -1
		}
		start := idx + i
		end := start + len(phrase)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return start
		}
		idx = start + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || b == '\'' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
