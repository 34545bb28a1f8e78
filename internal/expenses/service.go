// Package expenses implements saving an expense: converting the entered amount
// to the base currency and persisting both values.
package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"multi-currency-expenses/internal/currency"
	"multi-currency-expenses/internal/models"
	"multi-currency-expenses/internal/storage"
)

var (
	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrMissingCurrency is returned when no currency code was entered.
	ErrMissingCurrency = errors.New("currency is required")
)

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// Store is the expense persistence used by Service.
type Store interface {
	CreateExpense(e *models.Expense) (int64, error)
	GetExpense(id, userID int64) (*models.Expense, error)
	ListExpenses(userID int64) ([]models.Expense, error)
	UpdateExpense(e *models.Expense) (bool, error)
	DeleteExpense(id, userID int64) (bool, error)
	DeleteAllExpenses(userID int64) (int64, error)
}

// AccountDeleter removes a user account.
type AccountDeleter interface {
	Delete(userID int64) error
}

// Input is an expense as submitted by the user. ID zero means a new expense.
type Input struct {
	ID       int64
	Amount   float64
	Currency string
	Category string
	Date     time.Time
	Notes    string
}

// Service saves expenses for a user.
type Service struct {
	store     Store
	converter Converter
	now       func() time.Time
}

// NewService creates a Service.
func NewService(store Store, converter Converter) *Service {
	return &Service{store: store, converter: converter, now: time.Now}
}

// Save converts in to base and creates or overwrites the expense. The currency
// is stored as entered; only the conversion uses the normalized code. Nothing
// is written when validation or conversion fails.
func (s *Service) Save(ctx context.Context, userID int64, in Input, base string) (*models.Expense, error) {
	if in.Amount < 0 {
		return nil, ErrNegativeAmount
	}
	entered := strings.TrimSpace(in.Currency)
	if entered == "" {
		return nil, ErrMissingCurrency
	}
	base = currency.Normalize(base)

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	if in.ID != 0 {
		if _, err := s.store.GetExpense(in.ID, userID); err != nil {
			return nil, err
		}
	}

	converted, err := s.converter.Convert(ctx, in.Amount, currency.Normalize(entered), base)
	if err != nil {
		return nil, err
	}

	e := &models.Expense{
		ID:              in.ID,
		UserID:          userID,
		Amount:          in.Amount,
		Currency:        entered,
		ConvertedAmount: converted,
		BaseCurrency:    base,
		Category:        category,
		Date:            models.Day(date),
		Notes:           in.Notes,
	}

	if e.ID == 0 {
		id, err := s.store.CreateExpense(e)
		if err != nil {
			return nil, err
		}
		e.ID = id
		return e, nil
	}

	changed, err := s.store.UpdateExpense(e)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, storage.ErrNotFound
	}
	return e, nil
}

// Get returns one expense of the user.
func (s *Service) Get(userID, id int64) (*models.Expense, error) {
	return s.store.GetExpense(id, userID)
}

// List returns every expense of the user.
func (s *Service) List(userID int64) ([]models.Expense, error) {
	return s.store.ListExpenses(userID)
}

// Delete removes one expense of the user.
func (s *Service) Delete(userID, id int64) error {
	deleted, err := s.store.DeleteExpense(id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteAccount removes all expenses of the user and then the user itself.
func (s *Service) DeleteAccount(userID int64, accounts AccountDeleter) error {
	if _, err := s.store.DeleteAllExpenses(userID); err != nil {
		return fmt.Errorf("delete expenses: %w", err)
	}
	if err := accounts.Delete(userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
