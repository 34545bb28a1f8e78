package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"multi-currency-expenses/internal/models"
)

const expenseColumns = "id, user_id, amount, currency, converted_amount, base_currency, category, date, notes"

// CreateExpense inserts a new expense and returns its id.
func (db *DB) CreateExpense(e *models.Expense) (int64, error) {
	result, err := db.conn.Exec(`
		INSERT INTO expenses
			(user_id, amount, currency, converted_amount, base_currency, category, date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Amount, e.Currency, e.ConvertedAmount, e.BaseCurrency,
		e.Category, e.Date.Format(models.DateLayout), e.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return result.LastInsertId()
}

// GetExpense retrieves a single expense owned by userID.
// Expenses of other users are reported as ErrNotFound.
func (db *DB) GetExpense(id, userID int64) (*models.Expense, error) {
	row := db.conn.QueryRow(
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?",
		id, userID,
	)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListExpenses retrieves every expense of a user.
func (db *DB) ListExpenses(userID int64) ([]models.Expense, error) {
	rows, err := db.conn.Query(
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}

	return expenses, rows.Err()
}

// UpdateExpense overwrites every field of an expense except id and user_id.
// It reports whether a row owned by e.UserID was changed.
func (db *DB) UpdateExpense(e *models.Expense) (bool, error) {
	result, err := db.conn.Exec(`
		UPDATE expenses
		SET amount = ?, currency = ?, converted_amount = ?, base_currency = ?,
			category = ?, date = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		e.Amount, e.Currency, e.ConvertedAmount, e.BaseCurrency,
		e.Category, e.Date.Format(models.DateLayout), e.Notes,
		e.ID, e.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("update expense: %w", err)
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// DeleteExpense removes one expense owned by userID and reports whether it existed.
func (db *DB) DeleteExpense(id, userID int64) (bool, error) {
	result, err := db.conn.Exec("DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// DeleteAllExpenses removes every expense of a user and returns how many were removed.
func (db *DB) DeleteAllExpenses(userID int64) (int64, error) {
	result, err := db.conn.Exec("DELETE FROM expenses WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete expenses: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (*models.Expense, error) {
	var (
		e                                     models.Expense
		currency, base, category, date, notes sql.NullString
		amount, converted                     sql.NullFloat64
	)
	if err := s.Scan(&e.ID, &e.UserID, &amount, &currency, &converted, &base, &category, &date, &notes); err != nil {
		return nil, err
	}
	e.Amount = amount.Float64
	e.Currency = currency.String
	e.ConvertedAmount = converted.Float64
	e.BaseCurrency = base.String
	e.Category = category.String
	e.Notes = notes.String
	if date.String != "" {
		d, err := time.Parse(models.DateLayout, date.String)
		if err != nil {
			return nil, fmt.Errorf("parse date of expense %d: %w", e.ID, err)
		}
		e.Date = d
	}
	return &e, nil
}
