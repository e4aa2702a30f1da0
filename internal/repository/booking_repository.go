package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

// BookingRepo provides access to bookings and their co-traveler links.
// Lifecycle updates all run inside transactions so the booking row, the
// vehicle odometer and any refill insert commit together.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, vehicle_id, requester_id, start_date, end_date, destination,
       status, odometer_before, odometer_after, returned_by, created_at, updated_at`

// activeStatuses are the booking states that block a vehicle's dates.
const activeStatuses = `('BOOKED', 'IN_USE')`

// HasOverlapTx reports whether the vehicle already has an active booking
// whose inclusive date range touches [start, end].  Two ranges overlap
// when each starts no later than the other ends.  Must be called inside
// the same transaction as CreateTx so the check-then-insert pair is not
// interleaved with a competing request.
func (r *BookingRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, vehicleID uint64, start, end time.Time) (bool, error) {
    const q = `SELECT COUNT(*) FROM bookings
               WHERE vehicle_id = ? AND status IN ` + activeStatuses + `
                 AND start_date <= ? AND end_date >= ?
               FOR UPDATE`
    var n int
    err := tx.QueryRowContext(ctx, q, vehicleID,
        schedule.FormatDate(end), schedule.FormatDate(start)).Scan(&n)
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// EnsureVacantTx returns ErrConflict when the vehicle already has an
// active booking overlapping [start, end].  Booking creation calls it
// as the admission check right before the insert.
func (r *BookingRepo) EnsureVacantTx(ctx context.Context, tx *sql.Tx, vehicleID uint64, start, end time.Time) error {
    overlap, err := r.HasOverlapTx(ctx, tx, vehicleID, start, end)
    if err != nil {
        return err
    }
    if overlap {
        return ErrConflict
    }
    return nil
}

// CreateTx inserts a booking in BOOKED status inside the given
// transaction and populates its generated id.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings (vehicle_id, requester_id, start_date, end_date, destination, status)
               VALUES (?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        b.VehicleID, b.RequesterID,
        schedule.FormatDate(b.StartDate), schedule.FormatDate(b.EndDate),
        b.Destination, b.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// SetCoTravelersTx replaces the co-traveler set of a booking.
func (r *BookingRepo) SetCoTravelersTx(ctx context.Context, tx *sql.Tx, bookingID uint64, profileIDs []uint64) error {
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM booking_co_travelers WHERE booking_id = ?`, bookingID); err != nil {
        return err
    }
    for _, pid := range profileIDs {
        if _, err := tx.ExecContext(ctx,
            `INSERT INTO booking_co_travelers (booking_id, profile_id) VALUES (?, ?)`,
            bookingID, pid); err != nil {
            return err
        }
    }
    return nil
}

// CoTravelerIDs returns the profile ids attached to a booking.
func (r *BookingRepo) CoTravelerIDs(ctx context.Context, bookingID uint64) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT profile_id FROM booking_co_travelers WHERE booking_id = ? ORDER BY profile_id`, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    ids := make([]uint64, 0)
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return ids, nil
}

// EnsureMember returns ErrForbidden unless the user is the requester
// of the booking or owns a profile on its co-traveler list.
func (r *BookingRepo) EnsureMember(ctx context.Context, bookingID, userID uint64) error {
    const q = `SELECT COUNT(*) FROM bookings b
               WHERE b.id = ?
                 AND (b.requester_id = ?
                      OR EXISTS (SELECT 1 FROM booking_co_travelers ct
                                 JOIN employee_profiles p ON p.id = ct.profile_id
                                 WHERE ct.booking_id = b.id AND p.user_id = ?))`
    var n int
    if err := r.db.QueryRowContext(ctx, q, bookingID, userID, userID).Scan(&n); err != nil {
        return err
    }
    if n == 0 {
        return ErrForbidden
    }
    return nil
}

// GetByID loads a booking by primary key.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
    return scanBookingRow(r.db.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
}

// GetByIDTx loads a booking with a row lock for a lifecycle transition.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    return scanBookingRow(tx.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
}

// UpdateLifecycleTx persists the fields a state transition may change:
// status, both odometer readings and the returning user.
func (r *BookingRepo) UpdateLifecycleTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `UPDATE bookings
               SET status = ?, odometer_before = ?, odometer_after = ?, returned_by = ?
               WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, b.Status, b.OdometerBefore, b.OdometerAfter, b.ReturnedByID, b.ID)
    return err
}

// AdminUpdateTx rewrites the fields an administrator may correct after
// the fact.  The date range is not re-checked for overlap here; admin
// edits are trusted corrections of paper records.
func (r *BookingRepo) AdminUpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `UPDATE bookings
               SET vehicle_id = ?, start_date = ?, end_date = ?, destination = ?,
                   status = ?, odometer_before = ?, odometer_after = ?
               WHERE id = ?`
    _, err := tx.ExecContext(ctx, q,
        b.VehicleID, schedule.FormatDate(b.StartDate), schedule.FormatDate(b.EndDate),
        b.Destination, b.Status, b.OdometerBefore, b.OdometerAfter, b.ID)
    return err
}

// BusyVehicleIDs returns the ids of vehicles with an active booking
// overlapping [start, end].  The availability endpoint subtracts these
// from the READY fleet.
func (r *BookingRepo) BusyVehicleIDs(ctx context.Context, start, end time.Time) (map[uint64]bool, error) {
    const q = `SELECT DISTINCT vehicle_id FROM bookings
               WHERE status IN ` + activeStatuses + `
                 AND start_date <= ? AND end_date >= ?`
    rows, err := r.db.QueryContext(ctx, q, schedule.FormatDate(end), schedule.FormatDate(start))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    busy := make(map[uint64]bool)
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        busy[id] = true
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return busy, nil
}

// ListByMember returns bookings where the user is requester or
// co-traveler, newest trips first.
func (r *BookingRepo) ListByMember(ctx context.Context, userID uint64) ([]model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings b
               WHERE b.requester_id = ?
                  OR EXISTS (SELECT 1 FROM booking_co_travelers ct
                             JOIN employee_profiles p ON p.id = ct.profile_id
                             WHERE ct.booking_id = b.id AND p.user_id = ?)
               ORDER BY b.start_date DESC, b.id DESC`
    return r.queryBookings(ctx, q, userID, userID)
}

// AdminFilter narrows the admin booking list.  Zero values mean "any".
type AdminFilter struct {
    Year      int
    Month     time.Month
    VehicleID uint64
    Status    string
}

// ListForAdmin returns bookings matching the filter, newest first.  A
// month filter matches bookings whose range touches that month.
func (r *BookingRepo) ListForAdmin(ctx context.Context, f AdminFilter) ([]model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
    args := make([]interface{}, 0, 4)
    if f.Year != 0 && f.Month != 0 {
        first, last := schedule.MonthRange(f.Year, f.Month)
        q += ` AND start_date <= ? AND end_date >= ?`
        args = append(args, schedule.FormatDate(last), schedule.FormatDate(first))
    }
    if f.VehicleID != 0 {
        q += ` AND vehicle_id = ?`
        args = append(args, f.VehicleID)
    }
    if f.Status != "" {
        q += ` AND status = ?`
        args = append(args, f.Status)
    }
    q += ` ORDER BY start_date DESC, id DESC`
    return r.queryBookings(ctx, q, args...)
}

// ListOverlappingMonth returns a vehicle's bookings whose date range
// touches the given month, ordered by (start_date, id).  Every status
// is included: the audit wants to see cancelled trips too, both for
// their missing readings and because a trip with no readings breaks
// the adjacency chain between its neighbours.  The audit engine relies
// on the ordering to report issues deterministically.
func (r *BookingRepo) ListOverlappingMonth(ctx context.Context, vehicleID uint64, year int, month time.Month) ([]model.Booking, error) {
    first, last := schedule.MonthRange(year, month)
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE vehicle_id = ?
                 AND start_date <= ? AND end_date >= ?
               ORDER BY start_date, id`
    return r.queryBookings(ctx, q, vehicleID, schedule.FormatDate(last), schedule.FormatDate(first))
}

// FirstReturnedOdometer returns the before reading of the first booking
// returned in the given month.  The fuel export prints it as the
// month's starting odometer.  nil without error when the month has no
// returned trip with a reading.
func (r *BookingRepo) FirstReturnedOdometer(ctx context.Context, vehicleID uint64, year int, month time.Month) (*int64, error) {
    first, last := schedule.MonthRange(year, month)
    const q = `SELECT odometer_before FROM bookings
               WHERE vehicle_id = ? AND status = 'RETURNED'
                 AND odometer_before IS NOT NULL
                 AND updated_at >= ? AND updated_at < ?
               ORDER BY updated_at, id
               LIMIT 1`
    var odo int64
    err := r.db.QueryRowContext(ctx, q, vehicleID,
        schedule.FormatDate(first), schedule.FormatDate(last.AddDate(0, 0, 1))).Scan(&odo)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &odo, nil
}

// GetByIDs loads the given bookings into a map keyed by id, for joining
// refills to their trips in the audit.
func (r *BookingRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Booking, error) {
    out := make(map[uint64]model.Booking, len(ids))
    if len(ids) == 0 {
        return out, nil
    }
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id IN (`
    args := make([]interface{}, 0, len(ids))
    for i, id := range ids {
        if i > 0 {
            q += ","
        }
        q += "?"
        args = append(args, id)
    }
    q += `)`
    list, err := r.queryBookings(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    for _, b := range list {
        out[b.ID] = b
    }
    return out, nil
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        var b model.Booking
        if err := rows.Scan(
            &b.ID, &b.VehicleID, &b.RequesterID, &b.StartDate, &b.EndDate, &b.Destination,
            &b.Status, &b.OdometerBefore, &b.OdometerAfter, &b.ReturnedByID,
            &b.CreatedAt, &b.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        bookings = append(bookings, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return bookings, nil
}

func scanBookingRow(row *sql.Row) (*model.Booking, error) {
    var b model.Booking
    if err := row.Scan(
        &b.ID, &b.VehicleID, &b.RequesterID, &b.StartDate, &b.EndDate, &b.Destination,
        &b.Status, &b.OdometerBefore, &b.OdometerAfter, &b.ReturnedByID,
        &b.CreatedAt, &b.UpdatedAt,
    ); err != nil {
        return nil, err
    }
    return &b, nil
}
