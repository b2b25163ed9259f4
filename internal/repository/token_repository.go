package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/jmoiron/sqlx"
)

// ErrRefreshInvalid covers unknown, expired and revoked refresh tokens.
var ErrRefreshInvalid = errors.New("refresh token invalid")

// TokenRepo persists refresh tokens by their SHA-256 hash.  A token belongs
// to a principal identified by (role, subject).
type TokenRepo struct{ DB *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a newly issued token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, role, subject, tokenHash string, exp time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO refresh_tokens (principal_role, principal_id, token_hash, expires_at) VALUES (?, ?, ?, ?)`,
        role, subject, tokenHash, exp.UTC())
    return err
}

// ValidateRefresh returns the owning principal of an active token.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (role, subject string, err error) {
    var (
        expiresAt time.Time
        revokedAt sql.NullTime
    )
    err = r.DB.QueryRowContext(ctx,
        `SELECT principal_role, principal_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`,
        tokenHash).Scan(&role, &subject, &expiresAt, &revokedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return "", "", ErrRefreshInvalid
    }
    if err != nil {
        return "", "", err
    }
    if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
        return "", "", ErrRefreshInvalid
    }
    return role, subject, nil
}

// RevokeByHash marks one token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE token_hash = ? AND revoked_at IS NULL`,
        tokenHash)
    return err
}

// RevokeAll revokes every active token of the principal.
func (r *TokenRepo) RevokeAll(ctx context.Context, role, subject string) error {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
          WHERE principal_role = ? AND principal_id = ? AND revoked_at IS NULL`,
        role, subject)
    return err
}
