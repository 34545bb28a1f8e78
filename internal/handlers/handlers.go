package handlers

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"multi-currency-expenses/internal/auth"
	"multi-currency-expenses/internal/expenses"
	"multi-currency-expenses/internal/models"
	"multi-currency-expenses/internal/storage"

	"github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// SessionContextKey is the context key for the authenticated session.
	SessionContextKey contextKey = "session"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
)

// Rates lists currencies and converts amounts.
type Rates interface {
	expenses.Converter
	ListCurrencies(ctx context.Context, base string) []string
}

// Settings holds presentation options.
type Settings struct {
	TemplateDir         string
	SecureCookie        bool
	DefaultBaseCurrency string
	Logger              *slog.Logger
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db       *storage.DB
	accounts *auth.Manager
	expenses *expenses.Service
	rates    Rates
	settings Settings
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, rates Rates, settings Settings) *Handlers {
	if settings.Logger == nil {
		settings.Logger = slog.Default()
	}
	if settings.DefaultBaseCurrency == "" {
		settings.DefaultBaseCurrency = "USD"
	}
	return &Handlers{
		db:       db,
		accounts: auth.NewManager(db),
		expenses: expenses.NewService(db, rates),
		rates:    rates,
		settings: settings,
		logger:   settings.Logger,
	}
}

// GetSessionFromContext retrieves the authenticated session from request context.
func GetSessionFromContext(r *http.Request) *storage.SessionInfo {
	if info, ok := r.Context().Value(SessionContextKey).(*storage.SessionInfo); ok {
		return info
	}
	return nil
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if info := GetSessionFromContext(r); info != nil {
		return info.User
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication.
// Sessions past the halfway point of their lifetime are renewed.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		info, err := h.db.ValidateSession(cookie.Value)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				h.logger.Error("validate session", "error", err)
			}
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		now := time.Now()
		if info.Session.ExpiresAt.Sub(now) < SessionDuration/2 {
			newExpiresAt := now.Add(SessionDuration)
			if err := h.db.RenewSession(cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value)
			} else {
				h.logger.Warn("renew session", "error", err)
			}
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LogRequests logs one line per request with status and duration.
func (h *Handlers) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.settings.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.settings.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	h.renderStatus(w, r, http.StatusOK, viewName, data)
}

func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, viewName string, data any) {
	dir := h.settings.TemplateDir
	tmpl, err := template.ParseFiles(filepath.Join(dir, "base.html"), filepath.Join(dir, viewName))
	if err != nil {
		h.logger.Error("parse template", "view", viewName, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		h.logger.Error("execute template", "view", viewName, "error", err)
	}
}

// redirect sends the browser to path, using HX-Location for htmx requests.
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Location", `{"path":"`+path+`", "target":"#content"}`)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (h *Handlers) serverError(w http.ResponseWriter, msg string, err error, args ...any) {
	h.logger.Error(msg, append([]any{"error", err}, args...)...)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
