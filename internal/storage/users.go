package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"multi-currency-expenses/internal/models"
)

// CreateUser creates a new user with the given username and password hash.
// It returns ErrDuplicate when the username is already taken.
func (db *DB) CreateUser(username, passwordHash string) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash FROM users WHERE id = ?",
		id,
	)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash FROM users WHERE username = ?",
		username,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// UpdatePasswordHash replaces the stored hash for a user.
func (db *DB) UpdatePasswordHash(id int64, passwordHash string) error {
	result, err := db.conn.Exec(
		"UPDATE users SET password_hash = ? WHERE id = ?",
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user row and its sessions. Deleting an unknown id is a no-op.
func (db *DB) DeleteUser(id int64) error {
	if err := db.DeleteUserSessions(id); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if _, err := db.conn.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
