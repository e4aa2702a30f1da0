package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/fleet-booking/internal/model"
)

// EmployeeRepo provides access to employee_profiles.  Profiles carry the
// organizational data (code, names, division, role) attached to a user
// account; they are deactivated rather than deleted so that historical
// bookings and co-traveler links stay intact.
type EmployeeRepo struct {
    db *sql.DB
}

// NewEmployeeRepo returns a new EmployeeRepo bound to the given database.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span users and profiles.
func (r *EmployeeRepo) DB() *sql.DB { return r.db }

const employeeColumns = `id, user_id, employee_code, first_name, last_name,
       division, department, position, role, work_status, created_at, updated_at`

// CreateTx inserts a profile for an existing user inside the given
// transaction and populates the generated id.
func (r *EmployeeRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.EmployeeProfile) error {
    const q = `INSERT INTO employee_profiles
               (user_id, employee_code, first_name, last_name, division, department, position, role, work_status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        p.UserID, p.EmployeeCode, p.FirstName, p.LastName,
        p.Division, p.Department, p.Position, p.Role, p.WorkStatus)
    if err != nil {
        if isDuplicate(err) {
            return ErrUsernameExists
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// UpdateTx rewrites the mutable profile fields inside a transaction.
func (r *EmployeeRepo) UpdateTx(ctx context.Context, tx *sql.Tx, p *model.EmployeeProfile) error {
    const q = `UPDATE employee_profiles
               SET employee_code = ?, first_name = ?, last_name = ?,
                   division = ?, department = ?, position = ?, role = ?
               WHERE id = ?`
    _, err := tx.ExecContext(ctx, q,
        p.EmployeeCode, p.FirstName, p.LastName,
        p.Division, p.Department, p.Position, p.Role, p.ID)
    if isDuplicate(err) {
        return ErrUsernameExists
    }
    return err
}

// SetWorkStatusTx flips a profile between ACTIVE and INACTIVE.
func (r *EmployeeRepo) SetWorkStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
    _, err := tx.ExecContext(ctx, `UPDATE employee_profiles SET work_status = ? WHERE id = ?`, status, id)
    return err
}

// GetByID loads a profile by primary key.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (*model.EmployeeProfile, error) {
    return r.scanOne(r.db.QueryRowContext(ctx,
        `SELECT `+employeeColumns+` FROM employee_profiles WHERE id = ?`, id))
}

// GetByUserID loads the profile belonging to a user account.
func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID uint64) (*model.EmployeeProfile, error) {
    return r.scanOne(r.db.QueryRowContext(ctx,
        `SELECT `+employeeColumns+` FROM employee_profiles WHERE user_id = ?`, userID))
}

// List returns all profiles, active ones first, then by employee code.
// The CASE ranking mirrors how the roster screen groups people.
func (r *EmployeeRepo) List(ctx context.Context) ([]model.EmployeeProfile, error) {
    const q = `SELECT ` + employeeColumns + `
               FROM employee_profiles
               ORDER BY CASE WHEN work_status = 'ACTIVE' THEN 0 ELSE 1 END, employee_code`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    profiles := make([]model.EmployeeProfile, 0)
    for rows.Next() {
        var p model.EmployeeProfile
        if err := scanEmployee(rows, &p); err != nil {
            return nil, err
        }
        profiles = append(profiles, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return profiles, nil
}

// ExistingIDs filters the given profile ids down to those that exist.
// Used to validate co-traveler sets before attaching them to a booking.
func (r *EmployeeRepo) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
    if len(ids) == 0 {
        return []uint64{}, nil
    }
    query := `SELECT id FROM employee_profiles WHERE id IN (`
    args := make([]interface{}, 0, len(ids))
    for i, id := range ids {
        if i > 0 {
            query += ","
        }
        query += "?"
        args = append(args, id)
    }
    query += `)`
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    found := make([]uint64, 0, len(ids))
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        found = append(found, id)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return found, nil
}

func (r *EmployeeRepo) scanOne(row *sql.Row) (*model.EmployeeProfile, error) {
    var p model.EmployeeProfile
    if err := row.Scan(
        &p.ID, &p.UserID, &p.EmployeeCode, &p.FirstName, &p.LastName,
        &p.Division, &p.Department, &p.Position, &p.Role, &p.WorkStatus,
        &p.CreatedAt, &p.UpdatedAt,
    ); err != nil {
        return nil, err
    }
    return &p, nil
}

func scanEmployee(rows *sql.Rows, p *model.EmployeeProfile) error {
    return rows.Scan(
        &p.ID, &p.UserID, &p.EmployeeCode, &p.FirstName, &p.LastName,
        &p.Division, &p.Department, &p.Position, &p.Role, &p.WorkStatus,
        &p.CreatedAt, &p.UpdatedAt,
    )
}
