package main

import (
	"strconv"
	"strings"
)

// Record is one test observation plus the report-level context
// (period, sprint) it was parsed under.
type Record struct {
	Feature string   `json:"feature"`
	Status  string   `json:"status"`
	Value   *float64 `json:"measured_value"`
	Remarks string   `json:"remarks"`
	Month   string   `json:"month,omitempty"`
	Year    int      `json:"year,omitempty"`
	Sprint  int      `json:"sprint,omitempty"`
	File    string   `json:"file,omitempty"` // source file, set by the corpus loader
}

// FilterSpec is the validated intent derived from a user query.
// Zero values mean "no restriction" for that field.
type FilterSpec struct {
	Features []string
	Month    string
	Year     int
	Sprint   int
	Status   string // "PASS" or "FAIL", empty = any
	Format   string // always a member of validFormats
}

const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusUnknown = "UNKNOWN"
)

const defaultFormat = "table"

var canonicalFeatures = []string{
	"steering",
	"braking",
	"suspension",
	"transmission",
	"engine",
	"hydraulics",
	"lights",
}

var canonicalMonths = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var validFormats = map[string]bool{
	"table":    true,
	"csv":      true,
	"json":     true,
	"markdown": true,
	"summary":  true,
	"stats":    true,
	"count":    true,
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeFeature maps free text to a canonical feature name.
// Returns "" if the token is not a known feature.
func NormalizeFeature(s string) string {
	token := normalizeToken(s)
	for _, f := range canonicalFeatures {
		if token == f {
			return f
		}
	}
	return ""
}

// NormalizeStatus maps free text to PASS/FAIL/UNKNOWN. Anything it
// does not recognize becomes UNKNOWN rather than an error.
func NormalizeStatus(s string) string {
	switch normalizeToken(s) {
	case "pass", "passed", "ok", "success":
		return StatusPass
	case "fail", "failed", "failure", "nok":
		return StatusFail
	default:
		return StatusUnknown
	}
}

// NormalizeMonth maps free text to a canonical month name, accepting
// full names and 3-letter abbreviations case-insensitively.
// Returns "" if unrecognized.
func NormalizeMonth(s string) string {
	token := normalizeToken(s)
	if token == "" {
		return ""
	}
	for _, m := range canonicalMonths {
		lower := strings.ToLower(m)
		if token == lower || (len(token) == 3 && token == lower[:3]) {
			return m
		}
	}
	return ""
}

// NormalizeFormat resolves a format token to a member of the closed
// format set, falling back to the default for anything unknown.
func NormalizeFormat(s string) string {
	token := normalizeToken(s)
	if validFormats[token] {
		return token
	}
	return defaultFormat
}

// NormalizeYear accepts only plausible 4-digit years; everything else
// is discarded (0).
func NormalizeYear(s string) int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	if year < 1900 || year > 2100 {
		return 0
	}
	return year
}

// DefaultSpec is the "no filters, table format" specification the
// extractor falls back to when every strategy fails.
func DefaultSpec() FilterSpec {
	return FilterSpec{Format: defaultFormat}
}
