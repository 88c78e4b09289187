package store

import (
	"context"
	"time"
)

// CreateSession records an issued token hash with its expiry.
func (s *Store) CreateSession(ctx context.Context, userID int64, tokenHash string, expiresAt, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, tokenHash, userID, dbFormatTime(expiresAt), dbFormatTime(now))
	return err
}

// GetUserBySessionTokenHash resolves a live session token hash to its user.
// Returns nil for unknown, revoked, or expired sessions.
func (s *Store) GetUserBySessionTokenHash(ctx context.Context, tokenHash string, now time.Time) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.login_id, u.password_hash, u.name, u.role, u.created_at
		FROM sessions sess
		JOIN users u ON u.id = sess.user_id
		WHERE sess.token_hash = ?
		  AND sess.revoked_at IS NULL
		  AND sess.expires_at > ?
		LIMIT 1
	`, tokenHash, dbFormatTime(now))
	return scanUser(row)
}

// RevokeSessionByTokenHash marks a session as revoked.
func (s *Store) RevokeSessionByTokenHash(ctx context.Context, tokenHash string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL
	`, dbFormatTime(now), tokenHash)
	return err
}
