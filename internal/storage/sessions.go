package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"multi-currency-expenses/internal/models"
)

// CreateSession creates a new session for a user.
func (db *DB) CreateSession(s *models.Session) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, base_currency, expires_at) VALUES (?, ?, ?, ?)",
		s.Token, s.UserID, s.BaseCurrency, s.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	Session *models.Session
	User    *models.User
}

// ValidateSession checks that a session token is valid and not expired and
// returns the session with its user.
func (db *DB) ValidateSession(token string) (*SessionInfo, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.username, u.password_hash, s.token, s.base_currency, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?
	`, token, time.Now().UTC())

	var u models.User
	var s models.Session
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &s.Token, &s.BaseCurrency, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.UserID = u.ID
	return &SessionInfo{Session: &s, User: &u}, nil
}

// RenewSession moves the expiry of a session.
func (db *DB) RenewSession(token string, newExpiresAt time.Time) error {
	_, err := db.conn.Exec(
		"UPDATE sessions SET expires_at = ? WHERE token = ?",
		newExpiresAt.UTC(), token,
	)
	return err
}

// SetSessionBaseCurrency stores the base currency preference of a session.
func (db *DB) SetSessionBaseCurrency(token, code string) error {
	result, err := db.conn.Exec(
		"UPDATE sessions SET base_currency = ? WHERE token = ?",
		code, token,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
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

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// DeleteUserSessions removes every session of a user.
func (db *DB) DeleteUserSessions(userID int64) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE user_id = ?", userID)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() (int64, error) {
	result, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
