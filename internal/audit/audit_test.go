package audit

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

func date(s string) time.Time {
    t, err := schedule.ParseDate(s)
    if err != nil {
        panic(err)
    }
    return t
}

func i64(v int64) *int64 { return &v }
func u64(v uint64) *uint64 { return &v }

func trip(id uint64, start, end string, before, after *int64) model.Booking {
    return model.Booking{
        ID:             id,
        VehicleID:      1,
        StartDate:      date(start),
        EndDate:        date(end),
        Status:         model.BookingReturned,
        OdometerBefore: before,
        OdometerAfter:  after,
    }
}

func linkMap(trips ...model.Booking) map[uint64]model.Booking {
    m := make(map[uint64]model.Booking, len(trips))
    for _, b := range trips {
        m[b.ID] = b
    }
    return m
}

func TestMissingAfterOnly(t *testing.T) {
    trips := []model.Booking{trip(10, "2025-12-01", "2025-12-02", i64(20000), nil)}

    issues := VehicleMonth(1, trips, nil, nil, 0)

    require.Len(t, issues, 1)
    assert.Equal(t, MissingAfter, issues[0].Type)
    assert.Equal(t, uint64(10), issues[0].BookingID)
    assert.Equal(t, "2025-12-01..2025-12-02", issues[0].DateRange)
}

func TestMissingBothReadings(t *testing.T) {
    trips := []model.Booking{trip(11, "2025-12-03", "2025-12-03", nil, nil)}

    issues := VehicleMonth(1, trips, nil, nil, 0)

    require.Len(t, issues, 2)
    assert.Equal(t, MissingBefore, issues[0].Type)
    assert.Equal(t, MissingAfter, issues[1].Type)
}

func TestReversedOdometer(t *testing.T) {
    trips := []model.Booking{trip(12, "2025-12-04", "2025-12-05", i64(20500), i64(20400))}

    issues := VehicleMonth(1, trips, nil, nil, 0)

    require.Len(t, issues, 1)
    assert.Equal(t, ReversedOdometer, issues[0].Type)
    assert.Contains(t, issues[0].Message, "before=20500")
    assert.Contains(t, issues[0].Message, "after=20400")
}

func TestGapBetweenTrips(t *testing.T) {
    // Trip A ends at 20450 on 12-05, trip B starts at 20700 on 12-07:
    // gap 250 over the 200 km threshold.
    a := trip(1, "2025-12-03", "2025-12-05", i64(20000), i64(20450))
    b := trip(2, "2025-12-07", "2025-12-08", i64(20700), i64(20900))

    issues := VehicleMonth(1, []model.Booking{a, b}, nil, nil, 200)

    require.Len(t, issues, 1)
    got := issues[0]
    assert.Equal(t, GapBetweenTrips, got.Type)
    assert.Equal(t, uint64(2), got.BookingID)
    assert.Equal(t, "2025-12-05 -> 2025-12-07", got.DateRange)
    assert.Contains(t, got.Message, "250 km")
}

func TestGapExactlyAtThresholdNotFlagged(t *testing.T) {
    a := trip(1, "2025-12-01", "2025-12-02", i64(1000), i64(1100))
    b := trip(2, "2025-12-03", "2025-12-04", i64(1300), i64(1400))

    issues := VehicleMonth(1, []model.Booking{a, b}, nil, nil, 200)
    assert.Empty(t, issues)
}

func TestGapNegative(t *testing.T) {
    a := trip(1, "2025-12-01", "2025-12-02", i64(5000), i64(5200))
    b := trip(2, "2025-12-03", "2025-12-04", i64(5100), i64(5300))

    issues := VehicleMonth(1, []model.Booking{a, b}, nil, nil, 0)

    require.Len(t, issues, 1)
    assert.Equal(t, GapNegative, issues[0].Type)
    assert.Equal(t, uint64(2), issues[0].BookingID)
}

func TestGapSkippedWhenReadingMissing(t *testing.T) {
    a := trip(1, "2025-12-01", "2025-12-02", i64(5000), nil)
    b := trip(2, "2025-12-10", "2025-12-11", i64(9000), i64(9100))

    issues := VehicleMonth(1, []model.Booking{a, b}, nil, nil, 200)

    // Only the missing_after finding for trip A; the pair cannot be compared.
    require.Len(t, issues, 1)
    assert.Equal(t, MissingAfter, issues[0].Type)
}

func TestCancelledTripStillAudited(t *testing.T) {
    // A cancelled trip sits between two completed ones.  Its readings
    // are nil, so it is flagged for both and no trip pair around it can
    // be compared, even though the outer trips are 400 km apart.
    a := trip(1, "2025-12-01", "2025-12-02", i64(20000), i64(20100))
    c := trip(3, "2025-12-10", "2025-12-11", i64(20500), i64(20650))
    cancelled := model.Booking{
        ID:        2,
        VehicleID: 1,
        StartDate: date("2025-12-05"),
        EndDate:   date("2025-12-06"),
        Status:    model.BookingCancelled,
    }

    issues := VehicleMonth(1, []model.Booking{a, cancelled, c}, nil, nil, 200)

    require.Len(t, issues, 2)
    assert.Equal(t, MissingBefore, issues[0].Type)
    assert.Equal(t, uint64(2), issues[0].BookingID)
    assert.Equal(t, MissingAfter, issues[1].Type)
    assert.Equal(t, uint64(2), issues[1].BookingID)
}

func TestFuelOdometerBelowTrip(t *testing.T) {
    bk := trip(5, "2025-12-10", "2025-12-12", i64(20200), i64(20600))
    refill := model.FuelRefill{
        ID:         31,
        VehicleID:  1,
        BookingID:  u64(5),
        RefillDate: date("2025-12-11"),
        Odometer:   20100,
    }

    issues := VehicleMonth(1, []model.Booking{bk}, []model.FuelRefill{refill}, linkMap(bk), 0)

    require.Len(t, issues, 1)
    got := issues[0]
    assert.Equal(t, FuelOdometerOutsideTrip, got.Type)
    assert.Equal(t, uint64(5), got.BookingID)
    assert.Equal(t, uint64(31), got.RefillID)
    assert.Contains(t, got.Message, "below")
}

func TestFuelOdometerAboveTrip(t *testing.T) {
    bk := trip(5, "2025-12-10", "2025-12-12", i64(20200), i64(20600))
    refill := model.FuelRefill{
        ID: 32, VehicleID: 1, BookingID: u64(5),
        RefillDate: date("2025-12-12"), Odometer: 20700,
    }

    issues := VehicleMonth(1, []model.Booking{bk}, []model.FuelRefill{refill}, linkMap(bk), 0)

    require.Len(t, issues, 1)
    assert.Contains(t, issues[0].Message, "above")
}

func TestFuelWithinTripNoIssue(t *testing.T) {
    bk := trip(5, "2025-12-10", "2025-12-12", i64(20200), i64(20600))
    refill := model.FuelRefill{
        ID: 33, VehicleID: 1, BookingID: u64(5),
        RefillDate: date("2025-12-11"), Odometer: 20400,
    }

    issues := VehicleMonth(1, []model.Booking{bk}, []model.FuelRefill{refill}, linkMap(bk), 0)
    assert.Empty(t, issues)
}

func TestFuelWithoutBooking(t *testing.T) {
    refill := model.FuelRefill{
        ID: 40, VehicleID: 1,
        RefillDate:    date("2025-12-20"),
        Odometer:      30000,
        VoucherNumber: "V-1234",
    }

    issues := VehicleMonth(1, nil, []model.FuelRefill{refill}, nil, 0)

    require.Len(t, issues, 1)
    got := issues[0]
    assert.Equal(t, FuelWithoutBooking, got.Type)
    assert.Equal(t, uint64(40), got.RefillID)
    assert.Zero(t, got.BookingID)
    assert.Contains(t, got.Message, "V-1234")
}

func TestDeterministicRepeatRuns(t *testing.T) {
    a := trip(1, "2025-12-01", "2025-12-02", nil, i64(100))
    b := trip(2, "2025-12-05", "2025-12-06", i64(600), nil)
    refills := []model.FuelRefill{
        {ID: 7, VehicleID: 1, RefillDate: date("2025-12-06"), Odometer: 550},
        {ID: 8, VehicleID: 1, BookingID: u64(2), RefillDate: date("2025-12-06"), Odometer: 400},
    }
    linked := linkMap(a, b)

    first := VehicleMonth(1, []model.Booking{a, b}, refills, linked, 200)
    second := VehicleMonth(1, []model.Booking{a, b}, refills, linked, 200)

    assert.Equal(t, first, second)
    // Issue order follows the check order: trips, pairs, refills.
    require.Len(t, first, 5)
    assert.Equal(t, MissingBefore, first[0].Type)
    assert.Equal(t, MissingAfter, first[1].Type)
    assert.Equal(t, GapBetweenTrips, first[2].Type)
    assert.Equal(t, FuelWithoutBooking, first[3].Type)
    assert.Equal(t, FuelOdometerOutsideTrip, first[4].Type)
}
