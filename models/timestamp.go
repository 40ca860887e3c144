package models

import (
	"fmt"
	"time"
)

// LedgerTimeLayout is the naive UTC ISO-8601 layout used in ledger lines
const LedgerTimeLayout = "2006-01-02T15:04:05.999999"

var timestampLayouts = []string{
	time.RFC3339Nano,
	LedgerTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatTimestamp renders t in UTC using LedgerTimeLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(LedgerTimeLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
