package main

import "testing"

func TestRunQueryRejectsEmptyQuery(t *testing.T) {
	if _, err := RunQuery(Config{PromptMaxChars: 800}, sampleRecords(), "   "); err == nil {
		t.Fatalf("expected error for empty query")
	}
}
