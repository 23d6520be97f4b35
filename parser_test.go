package main

import (
	"testing"
)

const twoBlockReport = `month: February
year: 2025
sprint: 2
---
feature_name = Steering
status = PASS
measured_value = 12.5
remarks = responsive at full lock
---
feature_name = Braking
status = FAIL
measured_value = 48.2
remarks = stopping distance over limit
---
month: March
year: 2024
sprint: 1
---
feature_name = Braking
status = PASS
`

func TestParseReportsTwoBlocks(t *testing.T) {
	records, malformed := ParseReports(twoBlockReport)
	if malformed != 0 {
		t.Fatalf("expected no malformed entries, got %d", malformed)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.Feature != "steering" || first.Status != StatusPass {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Month != "February" || first.Year != 2025 || first.Sprint != 2 {
		t.Fatalf("first record did not inherit block context: %+v", first)
	}
	if first.Value == nil || *first.Value != 12.5 {
		t.Fatalf("expected measured value 12.5, got %v", first.Value)
	}

	third := records[2]
	if third.Feature != "braking" || third.Month != "March" || third.Year != 2024 || third.Sprint != 1 {
		t.Fatalf("third record did not inherit second block context: %+v", third)
	}
}

func TestParseReportsSkipsMalformedEntries(t *testing.T) {
	raw := `month: February
year: 2025
---
feature_name = Braking
status = PASS
---
status = FAIL
---
feature_name = Engine
---
feature_name = Hydraulics
status = ok
`
	records, malformed := ParseReports(raw)
	if malformed != 2 {
		t.Fatalf("expected 2 malformed entries, got %d", malformed)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Feature != "hydraulics" || records[1].Status != StatusPass {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestParseReportsMalformedHeaderYieldsNullContext(t *testing.T) {
	raw := `month: Wibble
year: soon
---
feature_name = Lights
status = PASS
---
month: February
year: 2025
sprint: 2
---
feature_name = Braking
status = FAIL
`
	records, malformed := ParseReports(raw)
	if malformed != 0 {
		t.Fatalf("expected no malformed entries, got %d", malformed)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Month != "" || records[0].Year != 0 || records[0].Sprint != 0 {
		t.Fatalf("expected null context for record under malformed header, got %+v", records[0])
	}
	if records[1].Month != "February" || records[1].Year != 2025 {
		t.Fatalf("well-formed block should still parse, got %+v", records[1])
	}
}

func TestParseReportsUnparseableValueOnlyNullsThatField(t *testing.T) {
	raw := `feature_name = Engine
status = PASS
measured_value = n/a
remarks = idle ok
`
	records, malformed := ParseReports(raw)
	if malformed != 0 || len(records) != 1 {
		t.Fatalf("expected 1 record and 0 malformed, got %d/%d", len(records), malformed)
	}
	if records[0].Value != nil {
		t.Fatalf("expected nil value for unparseable measured_value, got %v", *records[0].Value)
	}
	if records[0].Remarks != "idle ok" {
		t.Fatalf("unexpected remarks: %q", records[0].Remarks)
	}
}

func TestParseReportsKeyMatchingIsCaseAndWhitespaceInsensitive(t *testing.T) {
	raw := `Feature Name = BRAKING
 STATUS  =  failed
Unknown_Key = ignored
`
	records, malformed := ParseReports(raw)
	if malformed != 0 || len(records) != 1 {
		t.Fatalf("expected 1 record and 0 malformed, got %d/%d", len(records), malformed)
	}
	if records[0].Feature != "braking" || records[0].Status != StatusFail {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestParseReportsEmptyInput(t *testing.T) {
	records, malformed := ParseReports("")
	if len(records) != 0 || malformed != 0 {
		t.Fatalf("expected nothing from empty input, got %d/%d", len(records), malformed)
	}
}

func TestParseReportsUnknownStatusBecomesUnknown(t *testing.T) {
	raw := `feature_name = Transmission
status = flaky
`
	records, _ := ParseReports(raw)
	if len(records) != 1 || records[0].Status != StatusUnknown {
		t.Fatalf("expected UNKNOWN status, got %+v", records)
	}
}
