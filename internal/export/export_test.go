package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"multi-currency-expenses/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	expenses := []models.Expense{
		{
			ID: 7, UserID: 2, Amount: 1200, Currency: "INR", ConvertedAmount: 14.4,
			BaseCurrency: "USD", Category: "Food", Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			Notes: `dinner, "biryani"`,
		},
		{
			ID: 8, UserID: 2, Amount: 3.5, Currency: "USD", ConvertedAmount: 3.5,
			BaseCurrency: "USD", Category: "General", Date: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, expenses))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "user_id", "amount", "currency", "converted_amount", "base_currency", "category", "date", "notes"}, records[0])
	assert.Equal(t, []string{"7", "2", "1200", "INR", "14.4", "USD", "Food", "2024-04-02", `dinner, "biryani"`}, records[1])
	assert.Equal(t, []string{"8", "2", "3.5", "USD", "3.5", "USD", "General", "2024-04-03", ""}, records[2])
}

func TestCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, nil))
	assert.Equal(t, "id,user_id,amount,currency,converted_amount,base_currency,category,date,notes\n", buf.String())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "expenses_2024-12-31.csv", Filename(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
}
