package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"multi-currency-expenses/internal/currency"
	"multi-currency-expenses/internal/expenses"
	"multi-currency-expenses/internal/models"
	"multi-currency-expenses/internal/report"
	"multi-currency-expenses/internal/storage"

	"github.com/go-chi/chi/v5"
)

// ExpenseGroup groups expenses by date.
type ExpenseGroup struct {
	Title string
	Date  string
	Total float64
	Items []models.Expense
}

// ListViewModel is the data passed to the list view template.
type ListViewModel struct {
	Username     string
	BaseCurrency string
	Total        float64
	Count        int
	Groups       []ExpenseGroup
	Categories   []string
	Filter       FilterView
}

// FilterView echoes the active filter back into the form.
type FilterView struct {
	Category string
	From     string
	To       string
	Search   string
}

// FormViewModel is the data passed to the create/edit form template.
type FormViewModel struct {
	Username     string
	BaseCurrency string
	Expense      *models.Expense
	IsEdit       bool
	Action       string
	Amount       string
	Date         string
	Currencies   []string
	Error        string
}

// ListExpenses renders the filtered list of the user's expenses.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)

	all, err := h.expenses.List(info.User.ID)
	if err != nil {
		h.serverError(w, "list expenses", err, "user_id", info.User.ID)
		return
	}

	q := r.URL.Query()
	fv := FilterView{
		Category: q.Get("category"),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Search:   q.Get("q"),
	}
	filter := report.Filter{Category: fv.Category, Search: fv.Search}
	filter.From, _ = time.Parse(models.DateLayout, fv.From)
	filter.To, _ = time.Parse(models.DateLayout, fv.To)

	filtered := report.Apply(all, filter)
	report.SortByDateDesc(filtered)

	vm := ListViewModel{
		Username:     info.User.Username,
		BaseCurrency: info.Session.BaseCurrency,
		Count:        len(filtered),
		Categories:   report.Categories(all),
		Filter:       fv,
	}

	groupsMap := make(map[string]*ExpenseGroup)
	for _, e := range filtered {
		dateStr := e.Date.Format(models.DateLayout)
		group, ok := groupsMap[dateStr]
		if !ok {
			group = &ExpenseGroup{Date: dateStr, Title: formatGroupTitle(e.Date)}
			groupsMap[dateStr] = group
		}
		group.Total += e.ConvertedAmount
		group.Items = append(group.Items, e)
		vm.Total += e.ConvertedAmount
	}

	vm.Groups = make([]ExpenseGroup, 0, len(groupsMap))
	for _, g := range groupsMap {
		vm.Groups = append(vm.Groups, *g)
	}
	sort.Slice(vm.Groups, func(i, j int) bool { return vm.Groups[i].Date > vm.Groups[j].Date })

	h.render(w, r, "list.html", vm)
}

// CreateExpenseForm renders the form to create a new expense.
func (h *Handlers) CreateExpenseForm(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)
	e := &models.Expense{
		Currency: info.Session.BaseCurrency,
		Category: models.DefaultCategory,
		Date:     models.Day(time.Now()),
	}
	h.render(w, r, "form.html", h.formViewModel(r, e, false, ""))
}

// EditExpenseForm renders the form to edit an existing expense.
func (h *Handlers) EditExpenseForm(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}

	e, err := h.expenses.Get(info.User.ID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "get expense", err, "id", id)
		return
	}
	h.render(w, r, "form.html", h.formViewModel(r, e, true, ""))
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.saveExpense(w, r, 0)
}

// UpdateExpense handles the update of an existing expense.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}
	h.saveExpense(w, r, id)
}

func (h *Handlers) saveExpense(w http.ResponseWriter, r *http.Request, id int64) {
	info := GetSessionFromContext(r)

	in, err := parseForm(r)
	in.ID = id
	formExpense := &models.Expense{
		ID: id, Amount: in.Amount, Currency: in.Currency, Category: in.Category, Date: in.Date, Notes: in.Notes,
	}
	if err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "form.html", h.formViewModel(r, formExpense, id != 0, err.Error()))
		return
	}

	saved, err := h.expenses.Save(r.Context(), info.User.ID, in, info.Session.BaseCurrency)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	case errors.Is(err, currency.ErrConversionFailed):
		h.logger.Warn("convert expense", "error", err, "user_id", info.User.ID)
		h.renderStatus(w, r, http.StatusBadGateway, "form.html",
			h.formViewModel(r, formExpense, id != 0, "Error converting currency: "+err.Error()))
		return
	case errors.Is(err, expenses.ErrNegativeAmount), errors.Is(err, expenses.ErrMissingCurrency):
		h.renderStatus(w, r, http.StatusBadRequest, "form.html", h.formViewModel(r, formExpense, id != 0, err.Error()))
		return
	case err != nil:
		h.serverError(w, "save expense", err, "user_id", info.User.ID)
		return
	}

	h.logger.Info("expense saved", "id", saved.ID, "user_id", info.User.ID, "edit", id != 0)
	h.redirect(w, r, "/expenses")
}

// DeleteExpense removes one of the user's expenses.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return
	}

	if err := h.expenses.Delete(info.User.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Expense not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "delete expense", err, "id", id)
		return
	}
	h.redirect(w, r, "/expenses")
}

func (h *Handlers) formViewModel(r *http.Request, e *models.Expense, isEdit bool, errMsg string) FormViewModel {
	info := GetSessionFromContext(r)
	action := "/expenses"
	if isEdit {
		action = fmt.Sprintf("/expenses/%d", e.ID)
	}

	currencies := h.rates.ListCurrencies(r.Context(), info.Session.BaseCurrency)
	if e.Currency != "" && !slices.Contains(currencies, e.Currency) {
		currencies = append([]string{e.Currency}, currencies...)
	}

	vm := FormViewModel{
		Username:     info.User.Username,
		BaseCurrency: info.Session.BaseCurrency,
		Expense:      e,
		IsEdit:       isEdit,
		Action:       action,
		Amount:       strconv.FormatFloat(e.Amount, 'f', -1, 64),
		Currencies:   currencies,
		Error:        errMsg,
	}
	if !e.Date.IsZero() {
		vm.Date = e.Date.Format(models.DateLayout)
	}
	return vm
}

func parseForm(r *http.Request) (expenses.Input, error) {
	var in expenses.Input
	if err := r.ParseForm(); err != nil {
		return in, err
	}

	in.Currency = strings.TrimSpace(r.FormValue("currency"))
	in.Category = strings.TrimSpace(r.FormValue("category"))
	in.Notes = r.FormValue("notes")

	if dateStr := r.FormValue("date"); dateStr != "" {
		date, err := time.Parse(models.DateLayout, dateStr)
		if err != nil {
			return in, errors.New("date must be in YYYY-MM-DD format")
		}
		in.Date = date
	}

	amountStr := strings.TrimSpace(r.FormValue("amount"))
	if amountStr == "" {
		return in, errors.New("amount is required")
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return in, errors.New("amount must be a number")
	}
	in.Amount = amount
	return in, nil
}

func formatGroupTitle(date time.Time) string {
	dateStr := date.Format(models.DateLayout)
	now := time.Now()

	if dateStr == now.Format(models.DateLayout) {
		return "TODAY"
	}
	if dateStr == now.AddDate(0, 0, -1).Format(models.DateLayout) {
		return "YESTERDAY"
	}
	return strings.ToUpper(date.Format("Mon, 02 Jan '06"))
}
