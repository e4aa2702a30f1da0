package fleet

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/fleet-booking/internal/model"
)

func TestCanTransition(t *testing.T) {
    assert.True(t, CanTransition(model.BookingBooked, model.BookingInUse))
    assert.True(t, CanTransition(model.BookingBooked, model.BookingCancelled))
    assert.True(t, CanTransition(model.BookingInUse, model.BookingReturned))
    assert.True(t, CanTransition(model.BookingInUse, model.BookingPendingReturn))
    assert.True(t, CanTransition(model.BookingPendingReturn, model.BookingReturned))

    // Terminal states go nowhere.
    assert.False(t, CanTransition(model.BookingReturned, model.BookingInUse))
    assert.False(t, CanTransition(model.BookingCancelled, model.BookingBooked))
    // No skipping straight from BOOKED to RETURNED.
    assert.False(t, CanTransition(model.BookingBooked, model.BookingReturned))
    assert.False(t, CanTransition("UNKNOWN", model.BookingInUse))
}

func TestStartUse(t *testing.T) {
    b := &model.Booking{Status: model.BookingBooked}
    require.NoError(t, StartUse(b, 20000))
    assert.Equal(t, model.BookingInUse, b.Status)
    require.NotNil(t, b.OdometerBefore)
    assert.Equal(t, int64(20000), *b.OdometerBefore)

    // Second call must reject: already IN_USE.
    err := StartUse(b, 20001)
    assert.ErrorIs(t, err, ErrBadState)
    assert.Equal(t, int64(20000), *b.OdometerBefore)
}

func TestCancelOnlyFromBooked(t *testing.T) {
    b := &model.Booking{Status: model.BookingBooked}
    require.NoError(t, Cancel(b))
    assert.Equal(t, model.BookingCancelled, b.Status)

    for _, status := range []string{
        model.BookingInUse, model.BookingPendingReturn,
        model.BookingReturned, model.BookingCancelled,
    } {
        b := &model.Booking{Status: status}
        assert.ErrorIs(t, Cancel(b), ErrBadState, status)
    }
}

func TestReturnValidatesOdometer(t *testing.T) {
    before := int64(20450)
    b := &model.Booking{Status: model.BookingInUse, OdometerBefore: &before}

    err := Return(b, 20449, 7)
    assert.ErrorIs(t, err, ErrOdometerReversed)
    assert.Equal(t, model.BookingInUse, b.Status)
    assert.Nil(t, b.OdometerAfter)

    require.NoError(t, Return(b, 20700, 7))
    assert.Equal(t, model.BookingReturned, b.Status)
    require.NotNil(t, b.OdometerAfter)
    assert.Equal(t, int64(20700), *b.OdometerAfter)
    require.NotNil(t, b.ReturnedByID)
    assert.Equal(t, uint64(7), *b.ReturnedByID)
}

func TestReturnEqualReadingAllowed(t *testing.T) {
    before := int64(31000)
    b := &model.Booking{Status: model.BookingInUse, OdometerBefore: &before}
    require.NoError(t, Return(b, 31000, 2))
}

func TestReturnFuelPendingThenConfirm(t *testing.T) {
    before := int64(1000)
    b := &model.Booking{Status: model.BookingInUse, OdometerBefore: &before}
    v := &model.Vehicle{Status: model.VehicleMaintenance, CurrentOdometer: 1000}

    require.NoError(t, ReturnFuelPending(b, 1200, 3))
    assert.Equal(t, model.BookingPendingReturn, b.Status)

    // Zero refills attached: confirm must be rejected, vehicle untouched.
    err := ConfirmReturn(b, v, 0)
    assert.ErrorIs(t, err, ErrNoRefills)
    assert.Equal(t, model.BookingPendingReturn, b.Status)
    assert.Equal(t, model.VehicleMaintenance, v.Status)
    assert.Equal(t, int64(1000), v.CurrentOdometer)

    // One refill attached: confirm succeeds, the vehicle comes back to
    // READY even if it was flagged mid-trip, and its odometer advances.
    require.NoError(t, ConfirmReturn(b, v, 1))
    assert.Equal(t, model.BookingReturned, b.Status)
    assert.Equal(t, model.VehicleReady, v.Status)
    assert.Equal(t, int64(1200), v.CurrentOdometer)
}

func TestConfirmReturnOdometerStaysMonotonic(t *testing.T) {
    before, after := int64(500), int64(700)
    b := &model.Booking{Status: model.BookingPendingReturn, OdometerBefore: &before, OdometerAfter: &after}
    v := &model.Vehicle{Status: model.VehicleReady, CurrentOdometer: 900}

    require.NoError(t, ConfirmReturn(b, v, 1))
    assert.Equal(t, int64(900), v.CurrentOdometer)
}

func TestConfirmReturnWrongState(t *testing.T) {
    b := &model.Booking{Status: model.BookingInUse}
    v := &model.Vehicle{Status: model.VehicleReady}
    assert.ErrorIs(t, ConfirmReturn(b, v, 2), ErrBadState)
}

func TestAdvanceOdometer(t *testing.T) {
    assert.Equal(t, int64(20700), AdvanceOdometer(20450, 20700))
    // Never moves backwards.
    assert.Equal(t, int64(20450), AdvanceOdometer(20450, 19000))
    assert.Equal(t, int64(20450), AdvanceOdometer(20450, 20450))
}
