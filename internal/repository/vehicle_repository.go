package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/fleet-booking/internal/model"
)

// VehicleRepo provides access to the vehicles table.
type VehicleRepo struct {
    db *sql.DB
}

// NewVehicleRepo returns a new VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// DB exposes the underlying handle for transactions spanning vehicles
// and bookings.
func (r *VehicleRepo) DB() *sql.DB { return r.db }

const vehicleColumns = `id, plate_prefix, plate_number, province, brand_name, model_name,
       color_code, seat_count, gear_type, usage_type, status, current_odometer,
       created_at, updated_at`

// Create inserts a vehicle and populates its generated id.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
    const q = `INSERT INTO vehicles
               (plate_prefix, plate_number, province, brand_name, model_name,
                color_code, seat_count, gear_type, usage_type, status, current_odometer)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        v.PlatePrefix, v.PlateNumber, v.Province, v.BrandName, v.ModelName,
        v.ColorCode, v.SeatCount, v.GearType, v.UsageType, v.Status, v.CurrentOdometer)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    v.ID = uint64(id)
    return nil
}

// Update rewrites the descriptive fields of a vehicle.  The resting
// odometer is not written here: it only moves through AdvanceOdometerTx
// so that it stays monotonic.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
    const q = `UPDATE vehicles
               SET plate_prefix = ?, plate_number = ?, province = ?, brand_name = ?,
                   model_name = ?, color_code = ?, seat_count = ?, gear_type = ?,
                   usage_type = ?, status = ?
               WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q,
        v.PlatePrefix, v.PlateNumber, v.Province, v.BrandName,
        v.ModelName, v.ColorCode, v.SeatCount, v.GearType,
        v.UsageType, v.Status, v.ID)
    return err
}

// Retire moves a vehicle to RETIRED.  This is the delete operation on
// the admin API; rows are never removed because bookings and refills
// reference them.
func (r *VehicleRepo) Retire(ctx context.Context, id uint64) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE vehicles SET status = ? WHERE id = ?`, model.VehicleRetired, id)
    return err
}

// GetByID loads a vehicle by primary key.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
    return scanVehicleRow(r.db.QueryRowContext(ctx,
        `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id))
}

// GetByIDTx loads a vehicle with a row lock so a lifecycle transition
// can update it without racing an admin edit.
func (r *VehicleRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Vehicle, error) {
    return scanVehicleRow(tx.QueryRowContext(ctx,
        `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ? FOR UPDATE`, id))
}

// List returns every vehicle, retired ones last, then by plate.
func (r *VehicleRepo) List(ctx context.Context) ([]model.Vehicle, error) {
    const q = `SELECT ` + vehicleColumns + `
               FROM vehicles
               ORDER BY CASE WHEN status = 'RETIRED' THEN 1 ELSE 0 END, plate_prefix, plate_number`
    return r.queryVehicles(ctx, q)
}

// ListReady returns vehicles in READY status, the only ones offered on
// the availability endpoint.
func (r *VehicleRepo) ListReady(ctx context.Context) ([]model.Vehicle, error) {
    const q = `SELECT ` + vehicleColumns + `
               FROM vehicles WHERE status = 'READY'
               ORDER BY plate_prefix, plate_number`
    return r.queryVehicles(ctx, q)
}

// AdvanceOdometerTx moves the resting odometer forward to reading if it
// is ahead of the stored value.  GREATEST keeps the column monotonic
// even when a late confirmation carries an older reading.
func (r *VehicleRepo) AdvanceOdometerTx(ctx context.Context, tx *sql.Tx, id uint64, reading int64) error {
    const q = `UPDATE vehicles SET current_odometer = GREATEST(current_odometer, ?) WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, reading, id)
    return err
}

// ReleaseTx persists the vehicle side of a confirmed return: the status
// stamped by the state machine and the advanced resting odometer.
// GREATEST keeps the column monotonic like AdvanceOdometerTx does.
func (r *VehicleRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, v *model.Vehicle) error {
    const q = `UPDATE vehicles SET status = ?, current_odometer = GREATEST(current_odometer, ?) WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, v.Status, v.CurrentOdometer, v.ID)
    return err
}

func (r *VehicleRepo) queryVehicles(ctx context.Context, q string, args ...interface{}) ([]model.Vehicle, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    vehicles := make([]model.Vehicle, 0)
    for rows.Next() {
        var v model.Vehicle
        if err := rows.Scan(
            &v.ID, &v.PlatePrefix, &v.PlateNumber, &v.Province, &v.BrandName, &v.ModelName,
            &v.ColorCode, &v.SeatCount, &v.GearType, &v.UsageType, &v.Status, &v.CurrentOdometer,
            &v.CreatedAt, &v.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        vehicles = append(vehicles, v)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return vehicles, nil
}

func scanVehicleRow(row *sql.Row) (*model.Vehicle, error) {
    var v model.Vehicle
    if err := row.Scan(
        &v.ID, &v.PlatePrefix, &v.PlateNumber, &v.Province, &v.BrandName, &v.ModelName,
        &v.ColorCode, &v.SeatCount, &v.GearType, &v.UsageType, &v.Status, &v.CurrentOdometer,
        &v.CreatedAt, &v.UpdatedAt,
    ); err != nil {
        return nil, err
    }
    return &v, nil
}
