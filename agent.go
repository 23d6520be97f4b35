package main

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// QueryResult is everything one answered query produced: the payload
// to show and the diagnostics describing how it was obtained.
type QueryResult struct {
	Payload  string
	Spec     FilterSpec
	Diag     ExtractDiag
	Matched  int
	Usage    LLMUsage
	Duration time.Duration
}

// RunQuery processes one natural-language query against the loaded
// records: oracle translation, specification extraction, filtering,
// formatting. An oracle failure during translation degrades to the
// extractor's keyword scan; an oracle failure during summary
// generation surfaces as an error, since no local fallback can write
// prose.
func RunQuery(cfg Config, records []Record, query string) (QueryResult, error) {
	started := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return QueryResult{}, fmt.Errorf("empty query")
	}
	if len(query) > cfg.PromptMaxChars {
		query = query[:cfg.PromptMaxChars]
	}

	var result QueryResult
	raw, usage, err := TranslateQuery(cfg, query)
	result.Usage = usage
	if err != nil {
		// The extractor's keyword scan still works without the oracle.
		log.Printf("query translate failed, falling back to keyword scan: %v", err)
		raw = ""
	}

	spec, diag := ExtractSpec(query, raw)
	if diag.Failed {
		log.Printf("query extraction exhausted all strategies, using default spec (attempts: %s)", strings.Join(diag.Attempts, "; "))
	} else {
		log.Printf("query spec strategy=%s features=%v month=%s year=%d sprint=%d status=%s format=%s",
			diag.Strategy, spec.Features, spec.Month, spec.Year, spec.Sprint, spec.Status, spec.Format)
	}
	result.Spec = spec
	result.Diag = diag

	matched := FilterRecords(records, spec)
	result.Matched = len(matched)

	payload, err := FormatRecords(cfg, matched, spec.Format)
	if err != nil {
		return result, fmt.Errorf("formatting as %s: %w", spec.Format, err)
	}
	result.Payload = payload
	result.Duration = time.Since(started)
	log.Printf("query answered matched=%d format=%s strategy=%s in %s", result.Matched, spec.Format, diag.Strategy, result.Duration.Round(time.Millisecond))
	return result, nil
}
