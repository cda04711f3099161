// Package timefmt converts unix timestamps between the representations used
// across the service: raw unix seconds, the canonical ISO-8601 layout, and
// time.Time values in UTC.
package timefmt

import (
	"fmt"
	"time"
)

// Layout is the canonical ISO-8601 rendering used in serialized output and
// diagnostics, e.g. "2020-07-10 12:00:00+00". The zone is the two-digit
// numeric offset, so UTC renders as "+00" rather than "Z".
const Layout = "2006-01-02 15:04:05-07"

// ToISO8601 renders a unix timestamp in the canonical layout, always in UTC.
func ToISO8601(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(Layout)
}

// ToDate converts a unix timestamp to a time.Time in UTC.
func ToDate(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// ParseISO8601 parses a canonical-layout string back to a unix timestamp.
func ParseISO8601(s string) (int64, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.Unix(), nil
}
