package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"itrack/internal/models"
)

// UserRecord is a stored account including its credential hash.
type UserRecord struct {
	ID           int64
	LoginID      string
	PasswordHash string
	Name         string
	Role         models.Role
	CreatedAt    time.Time
}

// User converts the record to its wire form.
func (u *UserRecord) User() models.User {
	return models.User{ID: u.ID, LoginID: u.LoginID, Name: u.Name, Role: u.Role}
}

// UserFilter narrows ListUsers results.
type UserFilter struct {
	Query string
	Role  models.Role
	Page  int
	Size  int
}

// CreateUser inserts one account.
func (s *Store) CreateUser(ctx context.Context, loginID, passwordHash, name string, role models.Role, now time.Time) (*UserRecord, error) {
	if strings.TrimSpace(passwordHash) == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (login_id, password_hash, name, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, loginID, passwordHash, name, string(role), dbFormatTime(now))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &UserRecord{
		ID:           id,
		LoginID:      loginID,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		CreatedAt:    now.UTC(),
	}, nil
}

// GetUserByLoginID returns an account by canonical login id, or nil.
func (s *Store) GetUserByLoginID(ctx context.Context, loginID string) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, login_id, password_hash, name, role, created_at
		FROM users WHERE login_id = ? LIMIT 1
	`, loginID)
	return scanUser(row)
}

// GetUserByID returns an account by id, or nil.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, login_id, password_hash, name, role, created_at
		FROM users WHERE id = ? LIMIT 1
	`, id)
	return scanUser(row)
}

// ListUsers returns accounts matching the filter, oldest first.
func (s *Store) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := `SELECT id, login_id, password_hash, name, role, created_at FROM users`
	var conds []string
	var args []any

	if q := strings.TrimSpace(filter.Query); q != "" {
		conds = append(conds, "(name LIKE ? OR login_id LIKE ?)")
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, string(filter.Role))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if filter.Size > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Size, filter.Page*filter.Size)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		record, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, record.User())
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*UserRecord, error) {
	var record UserRecord
	var role, createdAt string
	err := row.Scan(&record.ID, &record.LoginID, &record.PasswordHash, &record.Name, &role, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record.Role = models.Role(role)
	if record.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	return &record, nil
}

func scanUserRows(rows *sql.Rows) (*UserRecord, error) {
	var record UserRecord
	var role, createdAt string
	if err := rows.Scan(&record.ID, &record.LoginID, &record.PasswordHash, &record.Name, &role, &createdAt); err != nil {
		return nil, err
	}
	record.Role = models.Role(role)
	var err error
	if record.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	return &record, nil
}

// IsUniqueConstraint reports whether err is a unique constraint violation.
func IsUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
