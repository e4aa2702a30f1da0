package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/schedule"
)

// FuelRepo provides access to fuel_refills.
type FuelRepo struct {
    db *sql.DB
}

// NewFuelRepo returns a new FuelRepo bound to the given database.
func NewFuelRepo(db *sql.DB) *FuelRepo { return &FuelRepo{db: db} }

const fuelColumns = `id, vehicle_id, booking_id, refill_date, station, liters,
       total_price, price_per_liter, odometer, voucher_number, created_at`

// CreateTx inserts a refill inside the given transaction and populates
// its generated id.
func (r *FuelRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.FuelRefill) error {
    const q = `INSERT INTO fuel_refills
               (vehicle_id, booking_id, refill_date, station, liters, total_price,
                price_per_liter, odometer, voucher_number)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        f.VehicleID, f.BookingID, schedule.FormatDate(f.RefillDate), f.Station,
        f.Liters, f.TotalPrice, f.PricePerLiter, f.Odometer, f.VoucherNumber)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    f.ID = uint64(id)
    return nil
}

// CountByBookingTx counts the refills already attached to a booking.
// Confirm-return uses this inside its transaction: a pending booking
// needs at least one refill before it can close.
func (r *FuelRepo) CountByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int, error) {
    var n int
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM fuel_refills WHERE booking_id = ?`, bookingID).Scan(&n)
    return n, err
}

// GetByID loads a refill by primary key.
func (r *FuelRepo) GetByID(ctx context.Context, id uint64) (*model.FuelRefill, error) {
    var f model.FuelRefill
    err := r.db.QueryRowContext(ctx,
        `SELECT `+fuelColumns+` FROM fuel_refills WHERE id = ?`, id).Scan(
        &f.ID, &f.VehicleID, &f.BookingID, &f.RefillDate, &f.Station, &f.Liters,
        &f.TotalPrice, &f.PricePerLiter, &f.Odometer, &f.VoucherNumber, &f.CreatedAt)
    if err != nil {
        return nil, err
    }
    return &f, nil
}

// Update rewrites a refill's mutable fields; used by admin correction.
func (r *FuelRepo) Update(ctx context.Context, f *model.FuelRefill) error {
    const q = `UPDATE fuel_refills
               SET refill_date = ?, station = ?, liters = ?, total_price = ?,
                   price_per_liter = ?, odometer = ?, voucher_number = ?
               WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q,
        schedule.FormatDate(f.RefillDate), f.Station, f.Liters, f.TotalPrice,
        f.PricePerLiter, f.Odometer, f.VoucherNumber, f.ID)
    return err
}

// ListByBooking returns a booking's refills oldest first.
func (r *FuelRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.FuelRefill, error) {
    const q = `SELECT ` + fuelColumns + ` FROM fuel_refills
               WHERE booking_id = ? ORDER BY refill_date, id`
    return r.queryRefills(ctx, q, bookingID)
}

// ListByVehicleMonth returns a vehicle's refills dated in the given
// month, ordered by (refill_date, id) for the audit and the monthly
// fuel report.
func (r *FuelRepo) ListByVehicleMonth(ctx context.Context, vehicleID uint64, year int, month time.Month) ([]model.FuelRefill, error) {
    first, last := schedule.MonthRange(year, month)
    const q = `SELECT ` + fuelColumns + ` FROM fuel_refills
               WHERE vehicle_id = ? AND refill_date BETWEEN ? AND ?
               ORDER BY refill_date, id`
    return r.queryRefills(ctx, q, vehicleID, schedule.FormatDate(first), schedule.FormatDate(last))
}

func (r *FuelRepo) queryRefills(ctx context.Context, q string, args ...interface{}) ([]model.FuelRefill, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    refills := make([]model.FuelRefill, 0)
    for rows.Next() {
        var f model.FuelRefill
        if err := rows.Scan(
            &f.ID, &f.VehicleID, &f.BookingID, &f.RefillDate, &f.Station, &f.Liters,
            &f.TotalPrice, &f.PricePerLiter, &f.Odometer, &f.VoucherNumber, &f.CreatedAt,
        ); err != nil {
            return nil, err
        }
        refills = append(refills, f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return refills, nil
}
