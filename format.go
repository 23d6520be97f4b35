package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// recordColumns is the canonical column order shared by the tabular
// formats.
var recordColumns = []string{"feature", "status", "measured_value", "remarks", "month", "year", "sprint", "file"}

// FormatRecords renders matched records in the requested format. All
// formats are pure and never fail except "summary", which delegates to
// the oracle; an unrecognized token falls back to the default table.
func FormatRecords(cfg Config, records []Record, format string) (string, error) {
	switch NormalizeFormat(format) {
	case "csv":
		return formatCSV(records), nil
	case "json":
		return formatJSON(records)
	case "markdown":
		return formatMarkdown(records), nil
	case "count":
		return strconv.Itoa(len(records)), nil
	case "stats":
		return formatStats(records), nil
	case "summary":
		if len(records) == 0 {
			return "No matching records.", nil
		}
		return GenerateSummary(cfg, records)
	default:
		return formatTable(records), nil
	}
}

// TableRows returns the header row plus one row per record in
// canonical column order, for callers that render their own table.
func TableRows(records []Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, recordColumns)
	for _, rec := range records {
		rows = append(rows, recordRow(rec))
	}
	return rows
}

func recordRow(rec Record) []string {
	value := ""
	if rec.Value != nil {
		value = strconv.FormatFloat(*rec.Value, 'f', -1, 64)
	}
	year := ""
	if rec.Year != 0 {
		year = strconv.Itoa(rec.Year)
	}
	sprint := ""
	if rec.Sprint != 0 {
		sprint = strconv.Itoa(rec.Sprint)
	}
	return []string{rec.Feature, rec.Status, value, rec.Remarks, rec.Month, year, sprint, rec.File}
}

func formatTable(records []Record) string {
	rows := TableRows(records)
	widths := make([]int, len(recordColumns))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCSV(records []Record) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range TableRows(records) {
		_ = w.Write(row)
	}
	w.Flush()
	return b.String()
}

func formatJSON(records []Record) (string, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}
	return string(data), nil
}

func formatMarkdown(records []Record) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(recordColumns, " | ") + " |\n")
	sep := make([]string, len(recordColumns))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, rec := range records {
		cells := recordRow(rec)
		for i, cell := range cells {
			cells[i] = strings.ReplaceAll(cell, "|", "\\|")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatStats renders counts and 1-decimal percentages grouped by
// status and by feature, computed against the matched set. An empty
// set renders explicit zero counts.
func formatStats(records []Record) string {
	total := len(records)
	statusCount := make(map[string]int)
	featureCount := make(map[string]int)
	for _, rec := range records {
		statusCount[rec.Status]++
		featureCount[rec.Feature]++
	}

	pct := func(n int) string {
		if total == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Statistics for %d record(s)\n\nBy status:\n", total)
	for _, status := range []string{StatusPass, StatusFail, StatusUnknown} {
		fmt.Fprintf(&b, "- %s: %d (%s)\n", status, statusCount[status], pct(statusCount[status]))
	}
	b.WriteString("\nBy feature:\n")
	seen := false
	for _, feature := range canonicalFeatures {
		n, ok := featureCount[feature]
		if !ok {
			continue
		}
		seen = true
		fmt.Fprintf(&b, "- %s: %d (%s)\n", feature, n, pct(n))
	}
	if !seen {
		b.WriteString("- none\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
