package main

import "testing"

func TestNormalizeFeature(t *testing.T) {
	if got := NormalizeFeature("  BRAKING "); got != "braking" {
		t.Fatalf("expected braking, got %q", got)
	}
	if got := NormalizeFeature("flux capacitor"); got != "" {
		t.Fatalf("unknown feature should normalize to empty, got %q", got)
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"PASS":    StatusPass,
		"passed":  StatusPass,
		"ok":      StatusPass,
		"Fail":    StatusFail,
		"failure": StatusFail,
		"flaky":   StatusUnknown,
		"":        StatusUnknown,
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeMonth(t *testing.T) {
	if got := NormalizeMonth("february"); got != "February" {
		t.Fatalf("expected February, got %q", got)
	}
	if got := NormalizeMonth("FEB"); got != "February" {
		t.Fatalf("expected February from abbreviation, got %q", got)
	}
	if got := NormalizeMonth("Smarch"); got != "" {
		t.Fatalf("unknown month should normalize to empty, got %q", got)
	}
}

func TestNormalizeYear(t *testing.T) {
	if got := NormalizeYear("2025"); got != 2025 {
		t.Fatalf("expected 2025, got %d", got)
	}
	for _, in := range []string{"225", "99999", "soon", ""} {
		if got := NormalizeYear(in); got != 0 {
			t.Fatalf("NormalizeYear(%q) = %d, want 0", in, got)
		}
	}
}

func TestNormalizeFormatFallsBack(t *testing.T) {
	if got := NormalizeFormat("CSV"); got != "csv" {
		t.Fatalf("expected csv, got %q", got)
	}
	if got := NormalizeFormat("hologram"); got != "table" {
		t.Fatalf("unknown format should fall back to table, got %q", got)
	}
	if got := NormalizeFormat(""); got != "table" {
		t.Fatalf("empty format should fall back to table, got %q", got)
	}
}
