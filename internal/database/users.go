package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"darbot/internal/models"
)

// UpsertUser records a user on first contact and refreshes their profile
// fields on every later one. The admin flag is never touched here.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, username, first_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name`,
		u.ID, u.Username, u.FirstName, u.LastName)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.ID, err)
	}
	return nil
}

// GetUser returns a user by telegram id.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	var username, first, last sql.NullString
	err := db.QueryRowContext(ctx,
		"SELECT id, username, first_name, last_name, is_admin, created_at FROM users WHERE id = ?", id).
		Scan(&u.ID, &username, &first, &last, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	u.Username = username.String
	u.FirstName = first.String
	u.LastName = last.String
	return &u, nil
}

// SetAdmin grants or revokes the admin flag.
func (db *DB) SetAdmin(ctx context.Context, id int64, admin bool) error {
	_, err := db.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE id = ?", admin, id)
	if err != nil {
		return fmt.Errorf("set admin for user %d: %w", id, err)
	}
	return nil
}

// IsAdmin reports whether the user carries the admin flag.
func (db *DB) IsAdmin(ctx context.Context, id int64) (bool, error) {
	var admin bool
	err := db.QueryRowContext(ctx, "SELECT is_admin FROM users WHERE id = ?", id).Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check admin for user %d: %w", id, err)
	}
	return admin, nil
}
