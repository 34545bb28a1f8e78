package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"multi-currency-expenses/internal/models"
)

var header = []string{
	"id", "user_id", "amount", "currency", "converted_amount",
	"base_currency", "category", "date", "notes",
}

// CSV writes expenses as comma separated values with a header row.
func CSV(writer io.Writer, expenses []models.Expense) error {
	w := csv.NewWriter(writer)

	records := make([][]string, 0, len(expenses)+1)
	records = append(records, header)
	for _, e := range expenses {
		records = append(records, []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.UserID, 10),
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
			e.Currency,
			strconv.FormatFloat(e.ConvertedAmount, 'f', -1, 64),
			e.BaseCurrency,
			e.Category,
			e.Date.Format(models.DateLayout),
			e.Notes,
		})
	}

	// WriteAll flushes.
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return nil
}

// Filename is the download name of an export made on day.
func Filename(day time.Time) string {
	return "expenses_" + day.Format(models.DateLayout) + ".csv"
}
