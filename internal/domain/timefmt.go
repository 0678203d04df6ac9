package domain

import (
	"strings"
	"time"
)

// isoFormat mirrors the ISO-8601 shape the log has always used: local time,
// no zone designator.
const isoFormat = "2006-01-02T15:04:05"

// dateTimeLayouts is consulted in order: the first layout that parses wins,
// so the order encodes priority among ambiguous inputs.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"Jan 2, 2006 15:04",
}

// CanonicalizeDateTime reconciles a datetime string of heterogeneous source
// formats into ISO-8601. Empty or unparsable input falls back to the current
// time; callers must not treat a fallback timestamp as the true trade time.
func CanonicalizeDateTime(raw string) string {
	t, ok := ParseDateTime(raw)
	if !ok {
		return time.Now().Format(isoFormat)
	}
	return t.Format(isoFormat)
}

// ParseDateTime attempts the known layouts against the trimmed input, after
// removing the screenshot timezone suffix. The boolean reports whether any
// layout matched.
func ParseDateTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, " UTC-5", ""))
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NowISO returns the current time in the log's ISO-8601 shape.
func NowISO() string {
	return time.Now().Format(isoFormat)
}
