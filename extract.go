package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractDiag records how a specification was obtained. It is carried
// back to the caller instead of being printed, so the shell can show
// which strategy answered and what the earlier ones choked on.
type ExtractDiag struct {
	Strategy string   // name of the strategy that produced the spec
	Attempts []string // failure notes from strategies tried before it
	Failed   bool     // true when even the keyword scan found nothing
}

type specStrategy struct {
	name string
	run  func(query, raw string) (FilterSpec, error)
}

// specStrategies is the ordered recovery chain: first success wins.
var specStrategies = []specStrategy{
	{"direct", strategyDirect},
	{"embedded", strategyEmbedded},
	{"repaired", strategyRepaired},
	{"keywords", strategyKeywords},
}

// ExtractSpec turns the oracle's raw response (plus the original query
// for the no-oracle fallback) into a validated FilterSpec. It never
// fails: if every strategy is exhausted the default specification is
// returned with the Failed flag set.
func ExtractSpec(query, raw string) (FilterSpec, ExtractDiag) {
	var diag ExtractDiag
	for _, s := range specStrategies {
		spec, err := s.run(query, raw)
		if err != nil {
			diag.Attempts = append(diag.Attempts, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		diag.Strategy = s.name
		return spec, diag
	}
	diag.Strategy = "default"
	diag.Failed = true
	return DefaultSpec(), diag
}

// --- Strategy 1: the whole response is the object literal ---

func strategyDirect(_, raw string) (FilterSpec, error) {
	return specFromJSON(strings.TrimSpace(raw))
}

// --- Strategy 2: the object literal is wrapped in prose or fences ---

var codeFenceRe = regexp.MustCompile("```(?:json)?")

func strategyEmbedded(_, raw string) (FilterSpec, error) {
	cleaned := codeFenceRe.ReplaceAllString(raw, "")
	candidate := firstBalancedObject(cleaned)
	if candidate == "" {
		return FilterSpec{}, fmt.Errorf("no balanced object literal in response")
	}
	return specFromJSON(candidate)
}

// firstBalancedObject returns the first {...} substring with balanced
// braces, honoring double-quoted strings so braces inside values do
// not miscount.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// --- Strategy 3: light textual repair, then retry ---

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	smartQuoteRe    = regexp.MustCompile("[“”]")
	smartApostRe    = regexp.MustCompile("[‘’]")
)

func strategyRepaired(_, raw string) (FilterSpec, error) {
	cleaned := codeFenceRe.ReplaceAllString(raw, "")
	candidate := firstBalancedObject(cleaned)
	if candidate == "" {
		// No brace pair survives even repair of quotes, so treat the
		// whole response as the candidate after trimming commentary.
		candidate = strings.TrimSpace(cleaned)
	}
	candidate = repairJSON(candidate)
	if candidate == "" {
		return FilterSpec{}, fmt.Errorf("nothing left to parse after repair")
	}
	return specFromJSON(candidate)
}

// repairJSON normalizes the JSON mistakes the oracle habitually makes:
// smart quotes, single quotes, trailing commas, trailing commentary.
func repairJSON(s string) string {
	s = smartQuoteRe.ReplaceAllString(s, `"`)
	s = smartApostRe.ReplaceAllString(s, `"`)
	s = strings.ReplaceAll(s, "'", `"`)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(s)
	// Trim commentary after the last closing brace.
	if end := strings.LastIndexByte(s, '}'); end >= 0 {
		s = s[:end+1]
	}
	if start := strings.IndexByte(s, '{'); start > 0 {
		s = s[start:]
	}
	return s
}

// --- Strategy 4: keyword scan of the original query, no oracle ---

var (
	yearRe   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	sprintRe = regexp.MustCompile(`(?i)\bsprint\s*#?\s*(\d+)`)
)

func strategyKeywords(query, _ string) (FilterSpec, error) {
	lower := strings.ToLower(query)
	spec := DefaultSpec()
	found := false

	for _, f := range canonicalFeatures {
		if strings.Contains(lower, f) {
			spec.Features = append(spec.Features, f)
			found = true
		}
	}
	for _, m := range canonicalMonths {
		if strings.Contains(lower, strings.ToLower(m)) {
			spec.Month = m
			found = true
			break
		}
	}
	if m := yearRe.FindString(query); m != "" {
		if y := NormalizeYear(m); y != 0 {
			spec.Year = y
			found = true
		}
	}
	if m := sprintRe.FindStringSubmatch(query); m != nil {
		if n := atoiOrZero(m[1]); n > 0 {
			spec.Sprint = n
			found = true
		}
	}
	if status, ok := statusKeyword(lower); ok {
		spec.Status = status
		found = true
	}
	if format, ok := formatKeyword(lower); ok {
		spec.Format = format
		found = true
	}
	if !found {
		return FilterSpec{}, fmt.Errorf("no recognizable keywords in query")
	}
	return spec, nil
}

func statusKeyword(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "passed") || strings.Contains(lower, " pass"):
		return StatusPass, true
	case strings.Contains(lower, "failed") || strings.Contains(lower, " fail"):
		return StatusFail, true
	}
	return "", false
}

func formatKeyword(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "csv") || strings.Contains(lower, "spreadsheet"):
		return "csv", true
	case strings.Contains(lower, "json"):
		return "json", true
	case strings.Contains(lower, "markdown"):
		return "markdown", true
	case strings.Contains(lower, "summary") || strings.Contains(lower, "summarize") || strings.Contains(lower, "overview"):
		return "summary", true
	case strings.Contains(lower, "stats") || strings.Contains(lower, "statistic") || strings.Contains(lower, "breakdown"):
		return "stats", true
	case strings.Contains(lower, "count") || strings.Contains(lower, "how many"):
		return "count", true
	case strings.Contains(lower, "table"):
		return "table", true
	}
	return "", false
}

// --- Shared decoding and validation boundary ---

// specFromJSON validates a JSON candidate and maps it into the typed
// FilterSpec. gjson tolerates the shape drift the oracle produces:
// numbers where strings were asked for, a singular "feature", or the
// period nested under a "period"/"periods" wrapper. Unknown feature
// and format tokens are dropped or defaulted, never rejected.
func specFromJSON(candidate string) (FilterSpec, error) {
	if candidate == "" {
		return FilterSpec{}, fmt.Errorf("empty candidate")
	}
	if !gjson.Valid(candidate) {
		return FilterSpec{}, fmt.Errorf("invalid JSON: %.80s", candidate)
	}
	root := gjson.Parse(candidate)
	if !root.IsObject() {
		return FilterSpec{}, fmt.Errorf("top-level value is not an object")
	}

	spec := DefaultSpec()

	for _, key := range []string{"features", "feature"} {
		value := root.Get(key)
		if !value.Exists() || value.Type == gjson.Null {
			continue
		}
		if value.IsArray() {
			for _, item := range value.Array() {
				if f := NormalizeFeature(item.String()); f != "" {
					spec.Features = append(spec.Features, f)
				}
			}
		} else if f := NormalizeFeature(value.String()); f != "" {
			spec.Features = append(spec.Features, f)
		}
	}

	period := root
	if p := root.Get("period"); p.IsObject() {
		period = p
	} else if p := root.Get("periods.0"); p.IsObject() {
		period = p
	}
	if v := period.Get("month"); v.Exists() {
		spec.Month = NormalizeMonth(v.String())
	}
	if v := period.Get("year"); v.Exists() {
		spec.Year = NormalizeYear(v.String())
	}
	if v := period.Get("sprint"); v.Exists() {
		spec.Sprint = atoiOrZero(v.String())
	} else if v := root.Get("sprint"); v.Exists() {
		spec.Sprint = atoiOrZero(v.String())
	}
	if v := root.Get("status"); v.Exists() {
		switch NormalizeStatus(v.String()) {
		case StatusPass:
			spec.Status = StatusPass
		case StatusFail:
			spec.Status = StatusFail
		}
	}
	if v := root.Get("format"); v.Exists() {
		spec.Format = NormalizeFormat(v.String())
	}
	return spec, nil
}

func atoiOrZero(s string) int {
	n := 0
	for _, c := range strings.TrimSpace(s) {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
