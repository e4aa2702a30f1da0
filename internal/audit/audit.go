// Package audit implements the monthly odometer/fuel cross-check for
// one vehicle.  It is a pure report generator: it reads bookings and
// refills already loaded (and ordered) by the repository layer and
// emits advisory Issue records, never touching persisted state.  Given
// the same input it always yields the same issues in the same order.
package audit

import (
    "fmt"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

// DefaultGapThresholdKm is the distance between the end of one trip
// and the start of the next above which the gap is reported as
// unexplained (unrecorded personal use or a missing booking).
const DefaultGapThresholdKm = 200

// Issue types, in the order the engine checks them.
const (
    MissingBefore           = "missing_before"
    MissingAfter            = "missing_after"
    ReversedOdometer        = "reversed_odometer"
    GapNegative             = "gap_negative"
    GapBetweenTrips         = "gap_between_trips"
    FuelOdometerOutsideTrip = "fuel_odometer_outside_trip"
    FuelWithoutBooking      = "fuel_without_booking"
)

// Issue is one advisory finding.  BookingID and RefillID are zero when
// the finding concerns no booking or no refill.  DateRange is a
// display string: "start..end" for a trip, "aEnd -> bStart" for a gap
// between two trips, and the refill date for fuel findings.
type Issue struct {
    Type      string `json:"type"`
    VehicleID uint64 `json:"vehicle_id"`
    BookingID uint64 `json:"booking_id,omitempty"`
    RefillID  uint64 `json:"refill_id,omitempty"`
    DateRange string `json:"date_range"`
    Message   string `json:"message"`
}

// VehicleMonth scans one vehicle's month of activity.
//
// trips must be the bookings whose range overlaps the month, ordered
// by (start_date, id); refills must be the refills dated inside the
// month, ordered by (refill_date, id).  Both orderings come straight
// from the repository queries, which is what makes repeated runs over
// unchanged data produce identical output.  linked maps booking id to
// booking for every refill that references one; it may contain
// bookings outside the month.
func VehicleMonth(vehicleID uint64, trips []model.Booking, refills []model.FuelRefill, linked map[uint64]model.Booking, gapThresholdKm int64) []Issue {
    if gapThresholdKm <= 0 {
        gapThresholdKm = DefaultGapThresholdKm
    }
    issues := make([]Issue, 0)

    // 1) Per-trip reading checks.
    for _, b := range trips {
        rng := tripRange(b)
        if b.OdometerBefore == nil {
            issues = append(issues, Issue{
                Type:      MissingBefore,
                VehicleID: vehicleID,
                BookingID: b.ID,
                DateRange: rng,
                Message:   fmt.Sprintf("booking %d has no odometer reading before use", b.ID),
            })
        }
        if b.OdometerAfter == nil {
            issues = append(issues, Issue{
                Type:      MissingAfter,
                VehicleID: vehicleID,
                BookingID: b.ID,
                DateRange: rng,
                Message:   fmt.Sprintf("booking %d has no odometer reading after use", b.ID),
            })
        }
        if b.OdometerBefore != nil && b.OdometerAfter != nil && *b.OdometerAfter < *b.OdometerBefore {
            issues = append(issues, Issue{
                Type:      ReversedOdometer,
                VehicleID: vehicleID,
                BookingID: b.ID,
                DateRange: rng,
                Message: fmt.Sprintf("odometer runs backwards: before=%d, after=%d",
                    *b.OdometerBefore, *b.OdometerAfter),
            })
        }
    }

    // 2) Continuity between adjacent trips.  Only pairs where both
    // readings exist can be compared; the issue references the later
    // trip because that is the record a clerk would correct.
    for i := 0; i+1 < len(trips); i++ {
        a, b := trips[i], trips[i+1]
        if a.OdometerAfter == nil || b.OdometerBefore == nil {
            continue
        }
        gap := *b.OdometerBefore - *a.OdometerAfter
        rng := schedule.FormatDate(a.EndDate) + " -> " + schedule.FormatDate(b.StartDate)
        if gap < 0 {
            issues = append(issues, Issue{
                Type:      GapNegative,
                VehicleID: vehicleID,
                BookingID: b.ID,
                DateRange: rng,
                Message: fmt.Sprintf("booking %d starts at %d, behind where booking %d ended (%d)",
                    b.ID, *b.OdometerBefore, a.ID, *a.OdometerAfter),
            })
        } else if gap > gapThresholdKm {
            issues = append(issues, Issue{
                Type:      GapBetweenTrips,
                VehicleID: vehicleID,
                BookingID: b.ID,
                DateRange: rng,
                Message: fmt.Sprintf("unexplained gap of %d km between booking %d and booking %d (threshold %d)",
                    gap, a.ID, b.ID, gapThresholdKm),
            })
        }
    }

    // 3) Fuel refills against their trips.  The below-before and
    // above-after conditions are independent, so a refill attached to
    // a trip with reversed readings can raise both.
    for _, f := range refills {
        if f.BookingID == nil {
            issues = append(issues, Issue{
                Type:      FuelWithoutBooking,
                VehicleID: vehicleID,
                RefillID:  f.ID,
                DateRange: schedule.FormatDate(f.RefillDate),
                Message: fmt.Sprintf("refill on %s (voucher %s) is not linked to any booking",
                    schedule.FormatDate(f.RefillDate), voucherOrDash(f.VoucherNumber)),
            })
            continue
        }
        bk, ok := linked[*f.BookingID]
        if !ok {
            continue
        }
        if bk.OdometerBefore != nil && f.Odometer < *bk.OdometerBefore {
            issues = append(issues, Issue{
                Type:      FuelOdometerOutsideTrip,
                VehicleID: vehicleID,
                BookingID: bk.ID,
                RefillID:  f.ID,
                DateRange: schedule.FormatDate(f.RefillDate),
                Message: fmt.Sprintf("refill odometer (%d) is below booking %d's reading before use (%d)",
                    f.Odometer, bk.ID, *bk.OdometerBefore),
            })
        }
        if bk.OdometerAfter != nil && f.Odometer > *bk.OdometerAfter {
            issues = append(issues, Issue{
                Type:      FuelOdometerOutsideTrip,
                VehicleID: vehicleID,
                BookingID: bk.ID,
                RefillID:  f.ID,
                DateRange: schedule.FormatDate(f.RefillDate),
                Message: fmt.Sprintf("refill odometer (%d) is above booking %d's reading after use (%d)",
                    f.Odometer, bk.ID, *bk.OdometerAfter),
            })
        }
    }

    return issues
}

func tripRange(b model.Booking) string {
    return schedule.FormatDate(b.StartDate) + ".." + schedule.FormatDate(b.EndDate)
}

func voucherOrDash(v string) string {
    if v == "" {
        return "-"
    }
    return v
}
