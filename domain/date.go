package domain

import (
	"math"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD date key. Keys compare
// lexicographically in calendar order, so ordering checks work on the raw
// strings without parsing.
const DateLayout = "2006-01-02"

// Today returns the canonical key for the current local date.
func Today() string {
	return FormatDate(time.Now())
}

// ValidDate reports whether iso is a well-formed canonical date key.
func ValidDate(iso string) bool {
	_, err := time.ParseInLocation(DateLayout, iso, time.Local)
	return err == nil
}

// ParseDate converts a canonical date key to a local calendar date. Empty or
// malformed input yields the current date; this fallback is intentional, not
// an error path, so callers can feed it optional fields directly.
func ParseDate(iso string) time.Time {
	t, err := time.ParseInLocation(DateLayout, iso, time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}

// FormatDate renders the local calendar fields of t as a canonical date key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays returns t offset by n calendar days. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfWeek returns the canonical key of the Sunday on or before iso.
func StartOfWeek(iso string) string {
	d := ParseDate(iso)
	return FormatDate(AddDays(d, -int(d.Weekday())))
}

// DaysUntil returns the day offset from today to iso, positive for future
// dates. It returns nil when iso is empty.
func DaysUntil(iso string) *int {
	if iso == "" {
		return nil
	}
	target := ParseDate(iso)
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	diff := int(math.Round(target.Sub(today).Hours() / 24))
	return &diff
}

// DueLabel renders a human-readable due-date label for task cards. Empty
// input yields an empty label.
func DueLabel(iso string) string {
	diff := DaysUntil(iso)
	if diff == nil {
		return ""
	}
	switch {
	case *diff == 0:
		return "Due today"
	case *diff == 1:
		return "Due tomorrow"
	case *diff < 0:
		return "Overdue " + ParseDate(iso).Format("Jan 2")
	default:
		return "Due " + ParseDate(iso).Format("Jan 2")
	}
}

// DateHeading renders the board heading for a focus date, or "All Tasks"
// when no date is set.
func DateHeading(iso string) string {
	if iso == "" {
		return "All Tasks"
	}
	return ParseDate(iso).Format("Monday, January 2, 2006")
}

// WeekLabel renders the range covered by the week starting at startIso,
// e.g. "Aug 30 – Sep 5, 2026". The month is repeated only when the week
// spans a month boundary.
func WeekLabel(startIso string) string {
	start := ParseDate(startIso)
	end := AddDays(start, 6)
	endLayout := "Jan 2, 2006"
	if start.Month() == end.Month() {
		endLayout = "2, 2006"
	}
	return start.Format("Jan 2") + " – " + end.Format(endLayout)
}
