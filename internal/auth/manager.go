package auth

import (
	"errors"
	"fmt"
	"strings"

	"multi-currency-expenses/internal/models"
	"multi-currency-expenses/internal/storage"
)

var (
	// ErrEmptyUsername is returned by Register for a blank username.
	ErrEmptyUsername = errors.New("username is required")
	// ErrDuplicateUsername is returned by Register when the name is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrInvalidCredentials covers both an unknown user and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when the user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongOldPassword is returned by ChangePassword on a mismatch.
	ErrWrongOldPassword = errors.New("old password is incorrect")
)

// UserStore is the persistence the Manager needs.
type UserStore interface {
	CreateUser(username, passwordHash string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	UpdatePasswordHash(id int64, passwordHash string) error
	DeleteUser(id int64) error
}

// Manager registers and authenticates users.
type Manager struct {
	store UserStore
}

// NewManager creates a Manager backed by store.
func NewManager(store UserStore) *Manager {
	return &Manager{store: store}
}

// Register creates a user with a salted hash of password.
func (m *Manager) Register(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := m.store.CreateUser(username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when password matches. Unknown usernames and
// wrong passwords both yield ErrInvalidCredentials.
func (m *Manager) Authenticate(username, password string) (*models.User, error) {
	user, err := m.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies oldPassword and stores a fresh hash of newPassword.
func (m *Manager) ChangePassword(userID int64, oldPassword, newPassword string) error {
	user, err := m.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !CheckPassword(oldPassword, user.PasswordHash) {
		return ErrWrongOldPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := m.store.UpdatePasswordHash(userID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Delete removes the user. Unknown ids are not an error.
func (m *Manager) Delete(userID int64) error {
	return m.store.DeleteUser(userID)
}
