// Package schedule holds the date-range arithmetic shared by the
// availability listing, the booking admission check and the monthly
// audit.  Ranges are inclusive on both ends and compared at day
// granularity: two bookings conflict when they share at least one
// calendar day.
package schedule

import "time"

// Day truncates t to midnight UTC.  All range comparisons go through
// Day so that wall-clock components coming from parsed timestamps
// cannot flip an inclusive boundary.
func Day(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the inclusive day ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one calendar day.  Callers must pass
// ranges with start <= end; the classic interval test
// aStart <= bEnd && aEnd >= bStart is evaluated on truncated days.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    as, ae := Day(aStart), Day(aEnd)
    bs, be := Day(bStart), Day(bEnd)
    return !as.After(be) && !ae.Before(bs)
}

// Contains reports whether day d falls inside the inclusive range
// [start, end].
func Contains(d, start, end time.Time) bool {
    return Overlaps(d, d, start, end)
}

// MonthRange returns the first and last day of the given month as
// midnight-UTC dates.  The last day is computed by stepping to the
// first of the next month and back one day, which handles leap years.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
    first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
    last := first.AddDate(0, 1, -1)
    return first, last
}

// FormatDate renders a day as YYYY-MM-DD, the format used in API
// payloads and audit issue ranges.
func FormatDate(t time.Time) string { return Day(t).Format("2006-01-02") }

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC date.
func ParseDate(s string) (time.Time, error) {
    return time.ParseInLocation("2006-01-02", s, time.UTC)
}
