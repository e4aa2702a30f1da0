// Package queue defines the domain events exchanged over RabbitMQ and
// the background consumer that turns them into the fleet log.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

// BookingReturnedEvent is published when a booking reaches RETURNED,
// either directly or through confirm-return.  EventID makes deliveries
// idempotent for consumers that deduplicate.
type BookingReturnedEvent struct {
    EventID        string  `json:"event_id"`
    BookingID      uint64  `json:"booking_id"`
    VehicleID      uint64  `json:"vehicle_id"`
    VehiclePlate   string  `json:"vehicle_plate"`
    RequesterID    uint64  `json:"requester_id"`
    ReturnedByID   uint64  `json:"returned_by_id"`
    StartDate      string  `json:"start_date"`
    EndDate        string  `json:"end_date"`
    Destination    string  `json:"destination"`
    OdometerBefore *int64  `json:"odometer_before"`
    OdometerAfter  *int64  `json:"odometer_after"`
    DistanceKm     int64   `json:"distance_km"`
    ReturnedAt     string  `json:"returned_at"`
}

// NewBookingReturnedEvent builds the event from a freshly returned
// booking.  distance is after minus before, already computed by the
// caller because either reading may be missing on corrected records.
func NewBookingReturnedEvent(b *model.Booking, plate string, distance int64) BookingReturnedEvent {
    ev := BookingReturnedEvent{
        EventID:        uuid.NewString(),
        BookingID:      b.ID,
        VehicleID:      b.VehicleID,
        VehiclePlate:   plate,
        RequesterID:    b.RequesterID,
        StartDate:      schedule.FormatDate(b.StartDate),
        EndDate:        schedule.FormatDate(b.EndDate),
        Destination:    b.Destination,
        OdometerBefore: b.OdometerBefore,
        OdometerAfter:  b.OdometerAfter,
        DistanceKm:     distance,
        ReturnedAt:     time.Now().UTC().Format(time.RFC3339),
    }
    if b.ReturnedByID != nil {
        ev.ReturnedByID = *b.ReturnedByID
    }
    return ev
}
