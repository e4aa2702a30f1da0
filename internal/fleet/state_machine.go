// Package fleet implements the booking lifecycle state machine.  The
// transitions mutate only the structs passed in; persisting the booking
// and, on confirm-return, the vehicle is the caller's job, so the
// guards here can be tested without a database.
package fleet

import (
    "errors"
    "fmt"

    "github.com/iliyamo/fleet-booking/internal/model"
)

// Guard errors returned by the transition functions.  Handlers map
// ErrBadState and ErrOdometerReversed / ErrNoRefills to 409 responses;
// none of them indicate a server fault.
var (
    ErrBadState         = errors.New("booking is not in a state that allows this action")
    ErrOdometerReversed = errors.New("odometer after must not be lower than odometer before")
    ErrNoRefills        = errors.New("at least one fuel refill is required before confirming return")
)

// allowed maps each booking status to the statuses it may move to.
// RETURNED and CANCELLED are terminal.
var allowed = map[string][]string{
    model.BookingBooked:        {model.BookingInUse, model.BookingCancelled},
    model.BookingInUse:         {model.BookingReturned, model.BookingPendingReturn},
    model.BookingPendingReturn: {model.BookingReturned},
    model.BookingReturned:      {},
    model.BookingCancelled:     {},
}

// CanTransition reports whether from -> to is a permitted lifecycle
// move.  Unknown statuses permit nothing.
func CanTransition(from, to string) bool {
    for _, s := range allowed[from] {
        if s == to {
            return true
        }
    }
    return false
}

// StartUse moves a BOOKED booking to IN_USE and records the odometer
// reading taken before driving off.  Calling it twice fails the second
// time with ErrBadState because the booking is already IN_USE.
func StartUse(b *model.Booking, odometerBefore int64) error {
    if b.Status != model.BookingBooked {
        return fmt.Errorf("start use: %w (status %s)", ErrBadState, b.Status)
    }
    before := odometerBefore
    b.OdometerBefore = &before
    b.Status = model.BookingInUse
    return nil
}

// Cancel moves a BOOKED booking to CANCELLED.  Cancellation has no
// cutoff window but is only permitted before the vehicle is taken out;
// anything past BOOKED is rejected.
func Cancel(b *model.Booking) error {
    if b.Status != model.BookingBooked {
        return fmt.Errorf("cancel: %w (status %s)", ErrBadState, b.Status)
    }
    b.Status = model.BookingCancelled
    return nil
}

// Return closes an IN_USE booking directly (no fuel was purchased).
// The after reading must not be lower than the before reading recorded
// at start-use.
func Return(b *model.Booking, odometerAfter int64, returnedBy uint64) error {
    if err := stampReturn(b, odometerAfter, returnedBy); err != nil {
        return err
    }
    b.Status = model.BookingReturned
    return nil
}

// ReturnFuelPending stamps the after reading and returned-by like
// Return but parks the booking in PENDING_RETURN until at least one
// fuel refill is attached and the return is confirmed.
func ReturnFuelPending(b *model.Booking, odometerAfter int64, returnedBy uint64) error {
    if err := stampReturn(b, odometerAfter, returnedBy); err != nil {
        return err
    }
    b.Status = model.BookingPendingReturn
    return nil
}

// ConfirmReturn completes a PENDING_RETURN booking.  refillCount is
// the number of fuel refills attached to the booking; zero refills
// reject the confirmation, which is the whole point of the pending
// state.  On success the vehicle comes back to READY and its resting
// odometer advances to the after reading; the caller persists both
// structs together.
func ConfirmReturn(b *model.Booking, v *model.Vehicle, refillCount int) error {
    if b.Status != model.BookingPendingReturn {
        return fmt.Errorf("confirm return: %w (status %s)", ErrBadState, b.Status)
    }
    if refillCount < 1 {
        return ErrNoRefills
    }
    b.Status = model.BookingReturned
    v.Status = model.VehicleReady
    if b.OdometerAfter != nil {
        v.CurrentOdometer = AdvanceOdometer(v.CurrentOdometer, *b.OdometerAfter)
    }
    return nil
}

func stampReturn(b *model.Booking, odometerAfter int64, returnedBy uint64) error {
    if b.Status != model.BookingInUse {
        return fmt.Errorf("return: %w (status %s)", ErrBadState, b.Status)
    }
    if b.OdometerBefore != nil && odometerAfter < *b.OdometerBefore {
        return ErrOdometerReversed
    }
    after := odometerAfter
    by := returnedBy
    b.OdometerAfter = &after
    b.ReturnedByID = &by
    return nil
}

// AdvanceOdometer returns the vehicle resting odometer after seeing a
// new reading: the maximum of the two, so a low or stale reading can
// never move the counter backwards.
func AdvanceOdometer(current, reading int64) int64 {
    if reading > current {
        return reading
    }
    return current
}
