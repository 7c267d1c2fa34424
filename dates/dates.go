// Package dates is the single authority for parsing and formatting the
// heterogeneous date representations found on pass and principal
// records. No other package parses dates on its own.
package dates

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisplayLayout is the canonical rendering for dates exposed to callers.
const DisplayLayout = "2006-01-02"

// Layouts tried in priority order. Day-first slash dates are preferred
// over month-first, matching the data produced by the admin frontend.
var layouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"01-02-2006",
	"20060102",
	"02012006",
	"01022006",
	time.RFC3339,
}

var displayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse normalizes a stored date value into an instant. It accepts a
// native instant (time.Time, *time.Time, or a BSON datetime) or a
// string in any accepted layout. It returns nil when the value cannot
// be interpreted; callers must treat nil as unknown, never as epoch.
func Parse(v any) *time.Time {
	switch d := v.(type) {
	case nil:
		return nil
	case time.Time:
		if d.IsZero() {
			return nil
		}
		t := d.UTC()
		return &t
	case *time.Time:
		if d == nil {
			return nil
		}
		return Parse(*d)
	case primitive.DateTime:
		t := d.Time().UTC()
		return &t
	case string:
		return parseString(d)
	default:
		return nil
	}
}

func parseString(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// Format renders a date value as YYYY-MM-DD. A string already in that
// exact shape passes through unchanged. Unparsable or empty values
// render as the empty string.
func Format(v any) string {
	if t := Parse(v); t != nil {
		return t.Format(DisplayLayout)
	}
	if s, ok := v.(string); ok && displayPattern.MatchString(s) {
		return s
	}
	return ""
}
