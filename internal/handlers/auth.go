package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"multi-currency-expenses/internal/auth"
	"multi-currency-expenses/internal/models"
)

// LoginViewModel holds data for the login and register pages.
type LoginViewModel struct {
	Error   string
	Message string
	Name    string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.hasValidSession(r) {
		http.Redirect(w, r, "/expenses", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", LoginViewModel{})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderStatus(w, r, http.StatusBadRequest, "login.html", LoginViewModel{
			Error: "Username and password are required", Name: username,
		})
		return
	}

	user, err := h.accounts.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("authenticate", "error", err)
		}
		h.renderStatus(w, r, http.StatusUnauthorized, "login.html", LoginViewModel{
			Error: "Invalid username or password", Name: username,
		})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.logger.Error("generate session token", "error", err)
		h.renderStatus(w, r, http.StatusInternalServerError, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	if err := h.db.CreateSession(&models.Session{
		Token:        token,
		UserID:       user.ID,
		BaseCurrency: h.settings.DefaultBaseCurrency,
		ExpiresAt:    time.Now().Add(SessionDuration),
	}); err != nil {
		h.logger.Error("create session", "error", err)
		h.renderStatus(w, r, http.StatusInternalServerError, "login.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/expenses", http.StatusFound)
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", LoginViewModel{})
}

// Register creates an account and sends the user to the login page.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "register.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderStatus(w, r, http.StatusBadRequest, "register.html", LoginViewModel{
			Error: "Username and password are required", Name: username,
		})
		return
	}

	user, err := h.accounts.Register(username, password)
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		h.renderStatus(w, r, http.StatusConflict, "register.html", LoginViewModel{
			Error: "Registration error: " + err.Error(), Name: username,
		})
		return
	case err != nil:
		h.logger.Error("register", "error", err)
		h.renderStatus(w, r, http.StatusInternalServerError, "register.html", LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.render(w, r, "login.html", LoginViewModel{Message: "Registered, please log in", Name: username})
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) hasValidSession(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = h.db.ValidateSession(cookie.Value)
	return err == nil
}
