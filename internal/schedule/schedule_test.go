package schedule

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func d(s string) time.Time {
    t, err := ParseDate(s)
    if err != nil {
        panic(err)
    }
    return t
}

func TestOverlapsInclusiveBounds(t *testing.T) {
    // Booking occupies 2025-12-10..2025-12-12.
    start, end := d("2025-12-10"), d("2025-12-12")

    // Shares the single day 12/12.
    assert.True(t, Overlaps(d("2025-12-12"), d("2025-12-14"), start, end))
    // Starts the day after the booking ends.
    assert.False(t, Overlaps(d("2025-12-13"), d("2025-12-14"), start, end))
    // Ends the day before the booking starts.
    assert.False(t, Overlaps(d("2025-12-01"), d("2025-12-09"), start, end))
    // Fully inside.
    assert.True(t, Overlaps(d("2025-12-11"), d("2025-12-11"), start, end))
    // Fully covering.
    assert.True(t, Overlaps(d("2025-12-01"), d("2025-12-31"), start, end))
}

func TestOverlapsIgnoresWallClock(t *testing.T) {
    late := time.Date(2025, 12, 12, 23, 59, 0, 0, time.UTC)
    assert.True(t, Overlaps(late, late, d("2025-12-10"), d("2025-12-12")))
}

func TestContains(t *testing.T) {
    start, end := d("2025-12-10"), d("2025-12-12")

    assert.True(t, Contains(d("2025-12-10"), start, end))
    assert.True(t, Contains(d("2025-12-11"), start, end))
    assert.True(t, Contains(d("2025-12-12"), start, end))
    assert.False(t, Contains(d("2025-12-09"), start, end))
    assert.False(t, Contains(d("2025-12-13"), start, end))
}

func TestMonthRange(t *testing.T) {
    first, last := MonthRange(2025, time.December)
    assert.Equal(t, d("2025-12-01"), first)
    assert.Equal(t, d("2025-12-31"), last)

    // Leap February.
    first, last = MonthRange(2024, time.February)
    assert.Equal(t, d("2024-02-01"), first)
    assert.Equal(t, d("2024-02-29"), last)
}

func TestParseDate(t *testing.T) {
    got, err := ParseDate("2025-07-04")
    require.NoError(t, err)
    assert.Equal(t, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), got)

    _, err = ParseDate("04/07/2025")
    assert.Error(t, err)
}
