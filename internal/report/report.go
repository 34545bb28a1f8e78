// Package report reduces expense records into totals for the reports page.
package report

import (
	"sort"
	"strings"
	"time"

	"multi-currency-expenses/internal/models"
)

// MonthTotal is the converted spending of one calendar month.
type MonthTotal struct {
	Month time.Time
	Total float64
}

// CategoryTotal is the converted spending of one category.
type CategoryTotal struct {
	Category   string
	Total      float64
	Count      int
	Percentage float64
}

// ByMonth sums converted amounts per calendar month, oldest month first.
func ByMonth(expenses []models.Expense) []MonthTotal {
	if len(expenses) == 0 {
		return nil
	}

	totals := make(map[time.Time]float64)
	for _, e := range expenses {
		month := time.Date(e.Date.Year(), e.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[month] += e.ConvertedAmount
	}

	result := make([]MonthTotal, 0, len(totals))
	for month, total := range totals {
		result = append(result, MonthTotal{Month: month, Total: total})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month.Before(result[j].Month) })
	return result
}

// ByCategory sums converted amounts per category, compared case-sensitively,
// ordered by category name.
func ByCategory(expenses []models.Expense) []CategoryTotal {
	if len(expenses) == 0 {
		return nil
	}

	index := make(map[string]int)
	var result []CategoryTotal
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(result)
			index[e.Category] = i
			result = append(result, CategoryTotal{Category: e.Category})
		}
		result[i].Total += e.ConvertedAmount
		result[i].Count++
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result
}

// Summary is the data behind the reports page.
type Summary struct {
	Total      float64
	Count      int
	Months     []MonthTotal
	Categories []CategoryTotal
}

// Summarize builds a Summary with category percentages of the grand total.
func Summarize(expenses []models.Expense) Summary {
	s := Summary{
		Count:      len(expenses),
		Months:     ByMonth(expenses),
		Categories: ByCategory(expenses),
	}
	for _, c := range s.Categories {
		s.Total += c.Total
	}
	if s.Total > 0 {
		for i := range s.Categories {
			s.Categories[i].Percentage = s.Categories[i].Total / s.Total * 100
		}
	}
	return s
}

// AllCategories matches every category in a Filter.
const AllCategories = "All"

// Filter narrows an expense list the way the list view does.
type Filter struct {
	Category string
	From     time.Time
	To       time.Time
	Search   string
}

// Apply returns the expenses matching f. Zero From/To leave that side open
// and both bounds are inclusive.
func Apply(expenses []models.Expense, f Filter) []models.Expense {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []models.Expense
	for _, e := range expenses {
		if f.Category != "" && f.Category != AllCategories && e.Category != f.Category {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(models.Day(f.From)) {
			continue
		}
		if !f.To.IsZero() && e.Date.After(models.Day(f.To)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Notes), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Categories returns the distinct categories of expenses in sorted order.
func Categories(expenses []models.Expense) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	sort.Strings(out)
	return out
}

// SortByDateDesc orders expenses newest first, breaking ties by id.
func SortByDateDesc(expenses []models.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].ID > expenses[j].ID
	})
}
