package usecase

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	RegionUnknown = "Unknown"
	RegionOther   = "Other"
)

var regionMapping = map[string]string{
	"punjab":           "North",
	"jammu":            "North",
	"kashmir":          "North",
	"himachal pradesh": "North",
	"himachal":         "North",
	"chandigarh":       "North",
	"delhi":            "North",
	"new delhi":        "North",
	"haryana":          "North",
	"uttarakhand":      "North",
	"uttar pradesh":    "North",

	"tamil nadu":     "South",
	"chennai":        "South",
	"karnataka":      "South",
	"bangalore":      "South",
	"bengaluru":      "South",
	"kerala":         "South",
	"andhra pradesh": "South",
	"telangana":      "South",
	"hyderabad":      "South",
	"puducherry":     "South",

	"west bengal":       "East",
	"kolkata":           "East",
	"odisha":            "East",
	"bihar":             "East",
	"jharkhand":         "East",
	"assam":             "East",
	"meghalaya":         "East",
	"manipur":           "East",
	"mizoram":           "East",
	"nagaland":          "East",
	"tripura":           "East",
	"arunachal pradesh": "East",
	"sikkim":            "East",

	"maharashtra": "West",
	"mumbai":      "West",
	"pune":        "West",
	"gujarat":     "West",
	"ahmedabad":   "West",
	"rajasthan":   "West",
	"jaipur":      "West",
	"goa":         "West",

	"madhya pradesh": "Central",
	"chhattisgarh":   "Central",

	"usa":            "International - USA",
	"united states":  "International - USA",
	"uk":             "International - UK",
	"united kingdom": "International - UK",
	"canada":         "International - Canada",
	"australia":      "International - Australia",
	"uae":            "International - UAE",
	"dubai":          "International - UAE",
	"singapore":      "International - Singapore",
}

// RegionClassifier maps a free-text city or state to a coarse region.
type RegionClassifier struct {
	mapping map[string]string
}

func NewRegionClassifier() *RegionClassifier {
	return &RegionClassifier{mapping: regionMapping}
}

// RegionOf never fails: blank input is "Unknown" and anything unmapped is "Other".
func (c *RegionClassifier) RegionOf(city string) string {
	key := normalizeText(city)
	if key == "" {
		return RegionUnknown
	}
	if region, ok := c.mapping[key]; ok {
		return region
	}
	return RegionOther
}

// Regions lists every region the classifier can produce, sorted.
func (c *RegionClassifier) Regions() []string {
	seen := make(map[string]struct{})
	for _, r := range c.mapping {
		seen[r] = struct{}{}
	}
	seen[RegionOther] = struct{}{}

	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// normalizeText trims, lower-cases, folds accents and collapses inner whitespace.
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(removeAccents(s))), " ")
}

func removeAccents(s string) string {
	t := norm.NFD.String(s)
	stripped := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, t)
	return norm.NFC.String(stripped)
}
