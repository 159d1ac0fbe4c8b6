// Package seo parses and builds the location slugs used in public listing
// URLs such as /rentals/fl/miami-beach.
package seo

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/directory-cli/internal/normalize"
)

// Location is a parsed state and city.
type Location struct {
	State     string `json:"state" yaml:"state"`           // two-letter code, upper case
	StateName string `json:"state_name" yaml:"state_name"` // e.g. "New York"
	City      string `json:"city" yaml:"city"`             // display name, e.g. "Miami Beach"
	CitySlug  string `json:"city_slug" yaml:"city_slug"`   // e.g. "miami-beach"
}

// Path returns the canonical public path for the location.
func (l Location) Path() string {
	return "/rentals/" + strings.ToLower(l.State) + "/" + l.CitySlug
}

// ParseLocation resolves a state slug ("fl", "FL", "florida", "new-york")
// and a city slug into a Location.
func ParseLocation(stateSlug, citySlug string) (Location, error) {
	code, ok := StateCode(stateSlug)
	if !ok {
		return Location{}, eris.Errorf("seo: unknown state %q", stateSlug)
	}

	slug := Slugify(citySlug)
	if slug == "" {
		return Location{}, eris.Errorf("seo: invalid city %q", citySlug)
	}

	return Location{
		State:     code,
		StateName: stateNames[code],
		City:      cases.Title(language.AmericanEnglish).String(strings.ReplaceAll(slug, "-", " ")),
		CitySlug:  slug,
	}, nil
}

// Slugify lowercases s, folds diacritics and joins words with hyphens.
func Slugify(s string) string {
	return normalize.Slug(s)
}

// StateCode resolves a two-letter code or a (slugged) state name.
func StateCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		code := strings.ToUpper(s)
		_, ok := stateNames[code]
		return code, ok
	}
	code, ok := stateBySlug[Slugify(s)]
	return code, ok
}

var stateNames = map[string]string{
	"AL": "Alabama",
	"AK": "Alaska",
	"AZ": "Arizona",
	"AR": "Arkansas",
	"CA": "California",
	"CO": "Colorado",
	"CT": "Connecticut",
	"DE": "Delaware",
	"DC": "District of Columbia",
	"FL": "Florida",
	"GA": "Georgia",
	"HI": "Hawaii",
	"ID": "Idaho",
	"IL": "Illinois",
	"IN": "Indiana",
	"IA": "Iowa",
	"KS": "Kansas",
	"KY": "Kentucky",
	"LA": "Louisiana",
	"ME": "Maine",
	"MD": "Maryland",
	"MA": "Massachusetts",
	"MI": "Michigan",
	"MN": "Minnesota",
	"MS": "Mississippi",
	"MO": "Missouri",
	"MT": "Montana",
	"NE": "Nebraska",
	"NV": "Nevada",
	"NH": "New Hampshire",
	"NJ": "New Jersey",
	"NM": "New Mexico",
	"NY": "New York",
	"NC": "North Carolina",
	"ND": "North Dakota",
	"OH": "Ohio",
	"OK": "Oklahoma",
	"OR": "Oregon",
	"PA": "Pennsylvania",
	"RI": "Rhode Island",
	"SC": "South Carolina",
	"SD": "South Dakota",
	"TN": "Tennessee",
	"TX": "Texas",
	"UT": "Utah",
	"VT": "Vermont",
	"VA": "Virginia",
	"WA": "Washington",
	"WV": "West Virginia",
	"WI": "Wisconsin",
	"WY": "Wyoming",
}

var stateBySlug = func() map[string]string {
	m := make(map[string]string, len(stateNames))
	for code, name := range stateNames {
		m[Slugify(name)] = code
	}
	return m
}()
