package main

// FilterRecords returns the records matching every restriction the
// spec sets, preserving source order. A field left unset in the spec
// matches everything; all comparisons are exact equality on canonical
// forms.
func FilterRecords(records []Record, spec FilterSpec) []Record {
	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if matchRecord(rec, spec) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func matchRecord(rec Record, spec FilterSpec) bool {
	if len(spec.Features) > 0 && !containsString(spec.Features, rec.Feature) {
		return false
	}
	if spec.Month != "" && rec.Month != spec.Month {
		return false
	}
	if spec.Year != 0 && rec.Year != spec.Year {
		return false
	}
	if spec.Sprint != 0 && rec.Sprint != spec.Sprint {
		return false
	}
	if spec.Status != "" && rec.Status != spec.Status {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
