package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID                int64
	PublicID          uuid.UUID
	Username          string
	PasswordHash      []byte
	Salt              []byte
	Role              Role
	CreatedAt         time.Time
	PasswordChangedAt time.Time
	LastLoginAt       *time.Time
}

const userColumns = `id, public_id, username, password_hash, salt, role,
	created_at, password_changed_at, last_login_at`

// CreateUser inserts user and fills in its generated fields.
func (db *DB) CreateUser(ctx context.Context, user *User) error {
	if user.Username == "" || len(user.PasswordHash) == 0 || len(user.Salt) == 0 {
		return errors.New("invalid user parameters")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("invalid role %q", user.Role)
	}

	publicID := uuid.New()
	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO users
		(public_id, username, password_hash, salt, role, created_at, password_changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		publicID.String(), user.Username, user.PasswordHash, user.Salt, string(user.Role), now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.PublicID = publicID
	user.CreatedAt = now
	user.PasswordChangedAt = now
	return nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return user, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return users, nil
}

func (db *DB) UpdatePassword(ctx context.Context, id int64, hash, salt []byte) error {
	if len(hash) == 0 || len(salt) == 0 {
		return errors.New("invalid key parameters")
	}
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, password_changed_at = ?
		WHERE id = ?`,
		hash, salt, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectOneRow(result)
}

func (db *DB) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		"UPDATE users SET last_login_at = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return expectOneRow(result)
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOneRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		user      User
		publicID  string
		role      string
		lastLogin sql.NullTime
	)
	if err := row.Scan(
		&user.ID,
		&publicID,
		&user.Username,
		&user.PasswordHash,
		&user.Salt,
		&role,
		&user.CreatedAt,
		&user.PasswordChangedAt,
		&lastLogin,
	); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(publicID)
	if err != nil {
		return nil, fmt.Errorf("parse public id: %w", err)
	}
	user.PublicID = id
	user.Role = Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return &user, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
