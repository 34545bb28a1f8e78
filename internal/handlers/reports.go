package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"multi-currency-expenses/internal/export"
	"multi-currency-expenses/internal/report"
)

var palette = []string{
	"#60a5fa", "#a78bfa", "#f472b6", "#fbbf24", "#818cf8", "#fb7185", "#34d399", "#94a3b8",
}

// StatsCategoryItem represents a category with its spending statistics.
type StatsCategoryItem struct {
	report.CategoryTotal
	Color string
}

// StatsMonthItem is one bar of the monthly chart.
type StatsMonthItem struct {
	Label  string
	Total  float64
	Height float64
}

// ReportsViewModel is the data passed to the reports view template.
type ReportsViewModel struct {
	Username     string
	BaseCurrency string
	Total        float64
	Count        int
	Months       []StatsMonthItem
	Categories   []StatsCategoryItem
}

// Reports renders spending by month and by category.
func (h *Handlers) Reports(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)

	all, err := h.expenses.List(info.User.ID)
	if err != nil {
		h.serverError(w, "list expenses", err, "user_id", info.User.ID)
		return
	}

	summary := report.Summarize(all)

	var peak float64
	for _, m := range summary.Months {
		if m.Total > peak {
			peak = m.Total
		}
	}
	months := make([]StatsMonthItem, 0, len(summary.Months))
	for _, m := range summary.Months {
		height := 0.0
		if peak > 0 {
			height = m.Total / peak * 100
		}
		months = append(months, StatsMonthItem{Label: m.Month.Format("Jan 2006"), Total: m.Total, Height: height})
	}

	categories := make([]StatsCategoryItem, 0, len(summary.Categories))
	for i, c := range summary.Categories {
		categories = append(categories, StatsCategoryItem{CategoryTotal: c, Color: palette[i%len(palette)]})
	}

	h.render(w, r, "reports.html", ReportsViewModel{
		Username:     info.User.Username,
		BaseCurrency: info.Session.BaseCurrency,
		Total:        summary.Total,
		Count:        summary.Count,
		Months:       months,
		Categories:   categories,
	})
}

// ExportCSV downloads every expense of the user as CSV.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)

	all, err := h.expenses.List(info.User.ID)
	if err != nil {
		h.serverError(w, "list expenses", err, "user_id", info.User.ID)
		return
	}

	var buf bytes.Buffer
	if err := export.CSV(&buf, all); err != nil {
		h.serverError(w, "export expenses", err, "user_id", info.User.ID)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
