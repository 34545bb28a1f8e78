package models

import "time"

// DefaultCategory is used when an expense is saved without a category.
const DefaultCategory = "General"

// DateLayout is the storage and form format of expense dates.
const DateLayout = "2006-01-02"

// Expense represents a financial expense record owned by a single user.
type Expense struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	ConvertedAmount float64   `json:"converted_amount"`
	BaseCurrency    string    `json:"base_currency"`
	Category        string    `json:"category"`
	Date            time.Time `json:"date"`
	Notes           string    `json:"notes"`
}

// User represents a user account.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Session represents a login session and the preferences bound to it.
type Session struct {
	Token        string    `json:"token"`
	UserID       int64     `json:"user_id"`
	BaseCurrency string    `json:"base_currency"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
