package handlers

import (
	"errors"
	"net/http"

	"multi-currency-expenses/internal/auth"
	"multi-currency-expenses/internal/currency"
)

// ProfileViewModel is the data passed to the profile template.
type ProfileViewModel struct {
	Username     string
	BaseCurrency string
	Currencies   []string
	Count        int
	Error        string
	Message      string
}

// Profile renders the settings page.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, http.StatusOK, "", "")
}

func (h *Handlers) renderProfile(w http.ResponseWriter, r *http.Request, status int, errMsg, msg string) {
	info := GetSessionFromContext(r)

	all, err := h.expenses.List(info.User.ID)
	if err != nil {
		h.serverError(w, "list expenses", err, "user_id", info.User.ID)
		return
	}

	h.renderStatus(w, r, status, "profile.html", ProfileViewModel{
		Username:     info.User.Username,
		BaseCurrency: info.Session.BaseCurrency,
		Currencies:   h.rates.ListCurrencies(r.Context(), info.Session.BaseCurrency),
		Count:        len(all),
		Error:        errMsg,
		Message:      msg,
	})
}

// SetBaseCurrency changes the base currency of the current session.
func (h *Handlers) SetBaseCurrency(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)
	if err := r.ParseForm(); err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, "Invalid form submission", "")
		return
	}

	code := currency.Normalize(r.FormValue("base_currency"))
	if code == "" {
		h.renderProfile(w, r, http.StatusBadRequest, "Base currency is required", "")
		return
	}

	if err := h.db.SetSessionBaseCurrency(info.Session.Token, code); err != nil {
		h.serverError(w, "set base currency", err, "user_id", info.User.ID)
		return
	}
	info.Session.BaseCurrency = code
	h.redirect(w, r, "/profile")
}

// ChangePassword verifies the old password and stores the new one. All
// sessions of the user are ended on success.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)
	if err := r.ParseForm(); err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, "Invalid form submission", "")
		return
	}

	oldPassword := r.FormValue("old_password")
	newPassword := r.FormValue("new_password")
	// Login refuses empty passwords, so accepting one here would lock the user out.
	if newPassword == "" {
		h.renderProfile(w, r, http.StatusBadRequest, "New password is required", "")
		return
	}
	if newPassword != r.FormValue("confirm_password") {
		h.renderProfile(w, r, http.StatusBadRequest, "New passwords do not match.", "")
		return
	}

	err := h.accounts.ChangePassword(info.User.ID, oldPassword, newPassword)
	switch {
	case errors.Is(err, auth.ErrWrongOldPassword):
		h.renderProfile(w, r, http.StatusBadRequest, "Old password is incorrect", "")
		return
	case errors.Is(err, auth.ErrUserNotFound):
		h.renderProfile(w, r, http.StatusNotFound, "User not found", "")
		return
	case err != nil:
		h.serverError(w, "change password", err, "user_id", info.User.ID)
		return
	}

	if err := h.db.DeleteUserSessions(info.User.ID); err != nil {
		h.logger.Error("end sessions", "error", err, "user_id", info.User.ID)
	}
	h.logger.Info("password changed", "user_id", info.User.ID)
	h.clearSessionCookie(w)
	h.render(w, r, "login.html", LoginViewModel{
		Message: "Password updated successfully. Please log in again.",
		Name:    info.User.Username,
	})
}

// DeleteAccount removes all of the user's expenses and the account itself.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	info := GetSessionFromContext(r)
	if err := r.ParseForm(); err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, "Invalid form submission", "")
		return
	}
	if r.FormValue("confirm") != "on" {
		h.renderProfile(w, r, http.StatusBadRequest, "Please confirm that you understand the consequences.", "")
		return
	}

	if err := h.expenses.DeleteAccount(info.User.ID, h.accounts); err != nil {
		h.serverError(w, "delete account", err, "user_id", info.User.ID)
		return
	}

	h.logger.Info("account deleted", "user_id", info.User.ID)
	h.clearSessionCookie(w)
	h.render(w, r, "login.html", LoginViewModel{Message: "Your account and all expenses have been deleted."})
}
