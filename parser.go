package main

import (
	"regexp"
	"strconv"
	"strings"
)

// Report text layout: a context header of `key: value` lines (month,
// year, sprint) followed by entries separated by a delimiter line of
// dashes. Each entry is a group of `key = value` lines. One input may
// concatenate several such blocks.

var (
	delimiterRe = regexp.MustCompile(`^\s*-{3,}\s*$`)
	headerRe    = regexp.MustCompile(`^\s*([A-Za-z_ ]+?)\s*:\s*(.+?)\s*$`)
	fieldRe     = regexp.MustCompile(`^\s*([A-Za-z_ ]+?)\s*=\s*(.+?)\s*$`)
)

// blockContext is the report-level context entries inherit.
type blockContext struct {
	month  string
	year   int
	sprint int
}

// ParseReports converts raw report text into Records plus a count of
// malformed entries skipped. Failures are local to the smallest unit:
// a bad entry is counted and skipped, a bad header yields records with
// no period/sprint, and neither aborts the parse.
func ParseReports(raw string) ([]Record, int) {
	var records []Record
	malformed := 0
	var ctx blockContext

	for _, chunk := range splitChunks(raw) {
		header, fields := scanChunk(chunk)
		if header {
			// A header group starts a new report block. Unrecognized or
			// unparsable header values leave that part of the context unset.
			ctx = parseHeader(chunk)
		}
		if len(fields) == 0 {
			continue
		}
		rec, ok := buildRecord(fields, ctx)
		if !ok {
			malformed++
			continue
		}
		records = append(records, rec)
	}
	return records, malformed
}

// splitChunks splits raw text on delimiter lines. Empty chunks are
// dropped.
func splitChunks(raw string) []string {
	var chunks []string
	var current []string
	flush := func() {
		joined := strings.TrimSpace(strings.Join(current, "\n"))
		if joined != "" {
			chunks = append(chunks, joined)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if delimiterRe.MatchString(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return chunks
}

// scanChunk reports whether the chunk carries header lines and returns
// its entry fields keyed by canonical key name.
func scanChunk(chunk string) (bool, map[string]string) {
	header := false
	fields := make(map[string]string)
	for _, line := range strings.Split(chunk, "\n") {
		if m := fieldRe.FindStringSubmatch(line); m != nil {
			fields[canonicalKey(m[1])] = m[2]
			continue
		}
		if headerRe.MatchString(line) {
			header = true
		}
	}
	return header, fields
}

func parseHeader(chunk string) blockContext {
	var ctx blockContext
	for _, line := range strings.Split(chunk, "\n") {
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := m[2]
		switch canonicalKey(m[1]) {
		case "month":
			ctx.month = NormalizeMonth(value)
		case "year":
			ctx.year = NormalizeYear(value)
		case "sprint":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
				ctx.sprint = n
			}
		}
	}
	return ctx
}

// buildRecord assembles one Record from entry fields. Both a known
// feature name and a status key must be present; a numeric field that
// fails to parse only nulls that field.
func buildRecord(fields map[string]string, ctx blockContext) (Record, bool) {
	featureRaw, hasFeature := firstField(fields, "feature_name", "featurename", "feature")
	statusRaw, hasStatus := firstField(fields, "status")
	if !hasFeature || !hasStatus {
		return Record{}, false
	}
	feature := NormalizeFeature(featureRaw)
	if feature == "" {
		return Record{}, false
	}

	rec := Record{
		Feature: feature,
		Status:  NormalizeStatus(statusRaw),
		Month:   ctx.month,
		Year:    ctx.year,
		Sprint:  ctx.sprint,
	}
	if remarks, ok := firstField(fields, "remarks", "remark", "notes"); ok {
		rec.Remarks = remarks
	}
	if valueRaw, ok := firstField(fields, "measured_value", "measuredvalue", "value"); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(valueRaw), 64); err == nil {
			rec.Value = &v
		}
	}
	return rec, true
}

// canonicalKey lower-cases a key and strips internal whitespace, so
// "Feature Name", "feature_name" and "FEATURE_NAME" all match.
func canonicalKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.Join(strings.Fields(key), "_")
	return key
}

func firstField(fields map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v, true
		}
	}
	return "", false
}
