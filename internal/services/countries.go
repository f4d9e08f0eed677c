package services

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var regionNames = display.English.Regions()

// CountryName resolves an ISO 3166 code to its English name. Codes that are
// not a known country come back unchanged; an empty code yields the placeholder.
func CountryName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return Placeholder
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return code
	}
	name := regionNames.Name(region)
	if name == "" {
		return code
	}
	return name
}
