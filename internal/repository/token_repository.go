package repository

import (
    "context"
    "database/sql"
    "time"
)

// TokenRepo stores refresh tokens.  Only SHA-256 hashes of tokens are
// persisted; validation therefore compares hashes, never raw values.
type TokenRepo struct {
    db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh saves a refresh token hash for a user with its expiry.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
    const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q, userID, tokenHash, expiresAt.UTC().Format("2006-01-02 15:04:05"))
    return err
}

// ValidateRefresh returns the owning user id when the hash belongs to a
// stored token that is neither expired nor revoked.  Any other case
// yields sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
    const q = `SELECT user_id FROM refresh_tokens
               WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`
    var userID uint64
    if err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID); err != nil {
        return 0, err
    }
    return userID, nil
}

// RevokeByHash marks a single token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
    const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL`
    _, err := r.db.ExecContext(ctx, q, tokenHash)
    return err
}

// RevokeAllForUser logs the user out of every session.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
    const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL`
    _, err := r.db.ExecContext(ctx, q, userID)
    return err
}
