package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/fleet-booking/internal/model"
    "github.com/iliyamo/fleet-booking/internal/utils"
)

// UserRepo provides access to the users table.  Account rows carry only
// login data; organizational data lives in employee_profiles.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that create the user and the profile together.
func (r *UserRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new user with a bcrypt-hashed password inside the
// given transaction and returns the new user id.  ErrUsernameExists is
// returned when the username is already taken.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, username, password, role string, bcryptCost int) (uint64, error) {
    hash, err := utils.HashPassword(password, bcryptCost)
    if err != nil {
        return 0, err
    }
    const q = `INSERT INTO users (username, password_hash, role, is_active) VALUES (?, ?, ?, 1)`
    res, err := tx.ExecContext(ctx, q, username, hash, role)
    if err != nil {
        if isDuplicate(err) {
            return 0, ErrUsernameExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByUsername loads a user by login name.  Returns sql.ErrNoRows when
// the account does not exist.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
    const q = `SELECT id, username, password_hash, role, is_active, created_at, updated_at
               FROM users WHERE username = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, username))
}

// GetByID loads a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    const q = `SELECT id, username, password_hash, role, is_active, created_at, updated_at
               FROM users WHERE id = ?`
    return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// UpdateCredentialsTx renames a user and, when the code changes, resets
// the password to the new code (organizational policy: password follows
// the employee code until the employee changes it).
func (r *UserRepo) UpdateCredentialsTx(ctx context.Context, tx *sql.Tx, id uint64, username, password string, bcryptCost int) error {
    if password == "" {
        const q = `UPDATE users SET username = ? WHERE id = ?`
        _, err := tx.ExecContext(ctx, q, username, id)
        if isDuplicate(err) {
            return ErrUsernameExists
        }
        return err
    }
    hash, err := utils.HashPassword(password, bcryptCost)
    if err != nil {
        return err
    }
    const q = `UPDATE users SET username = ?, password_hash = ? WHERE id = ?`
    _, err = tx.ExecContext(ctx, q, username, hash, id)
    if isDuplicate(err) {
        return ErrUsernameExists
    }
    return err
}

// SetRoleTx updates the role mirrored into freshly issued JWTs.
func (r *UserRepo) SetRoleTx(ctx context.Context, tx *sql.Tx, id uint64, role string) error {
    _, err := tx.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
    return err
}

// SetActiveTx enables or disables login for an account.  Deactivation is
// how employees are "deleted" — booking history keeps its references.
func (r *UserRepo) SetActiveTx(ctx context.Context, tx *sql.Tx, id uint64, active bool) error {
    _, err := tx.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
    return err
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
    var u model.User
    if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
        return nil, err
    }
    return &u, nil
}

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).  String matching keeps the driver dependency out of the
// repository signatures.
func isDuplicate(err error) bool {
    return err != nil && strings.Contains(err.Error(), "Error 1062")
}
