package model

import "time"

// Booking statuses.  BOOKED and IN_USE are the two "active" states
// that block a vehicle's date range; RETURNED and CANCELLED are
// terminal and release it immediately.
const (
    BookingBooked        = "BOOKED"
    BookingInUse         = "IN_USE"
    BookingPendingReturn = "PENDING_RETURN"
    BookingReturned      = "RETURNED"
    BookingCancelled     = "CANCELLED"
)

// Booking records one loan of a vehicle for an inclusive date range.
// Odometer readings are pointers because they are unknown until the
// corresponding lifecycle transition fills them in: OdometerBefore is
// set by start-use, OdometerAfter by either return action.  Bookings
// are never hard-deleted; cancellation is a status transition.
//
// Fields:
//  ID             – primary key identifier.
//  VehicleID      – vehicle being borrowed.
//  RequesterID    – user who created the booking.
//  StartDate      – first day of the trip (inclusive).
//  EndDate        – last day of the trip (inclusive, >= StartDate).
//  Destination    – free-text destination.
//  Status         – see the status constants above.
//  OdometerBefore – reading recorded at start-use (nil until then).
//  OdometerAfter  – reading recorded at return (nil until then).
//  ReturnedByID   – user who handed the vehicle back (nil until return).
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Booking struct {
    ID             uint64     // bookings.id
    VehicleID      uint64     // bookings.vehicle_id
    RequesterID    uint64     // bookings.requester_id
    StartDate      time.Time  // bookings.start_date (DATE)
    EndDate        time.Time  // bookings.end_date (DATE)
    Destination    string     // bookings.destination
    Status         string     // bookings.status
    OdometerBefore *int64     // bookings.odometer_before (nullable)
    OdometerAfter  *int64     // bookings.odometer_after (nullable)
    ReturnedByID   *uint64    // bookings.returned_by (nullable)
    CreatedAt      time.Time  // bookings.created_at
    UpdatedAt      time.Time  // bookings.updated_at
}

// CoTraveler links a booking to an employee profile travelling along.
// Co-travelers may operate the booking (return, cancel, refill) the
// same as the requester.
//
// Fields:
//  BookingID – booking being travelled on.
//  ProfileID – employee profile of the co-traveler.
type CoTraveler struct {
    BookingID uint64 // booking_co_travelers.booking_id
    ProfileID uint64 // booking_co_travelers.profile_id
}
