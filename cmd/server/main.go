package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"multi-currency-expenses/internal/auth"
	"multi-currency-expenses/internal/config"
	"multi-currency-expenses/internal/currency"
	"multi-currency-expenses/internal/handlers"
	"multi-currency-expenses/internal/logger"
	"multi-currency-expenses/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const sessionCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logger)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ensureAdmin(db, cfg.AdminUser, cfg.AdminPassword, log); err != nil {
		return err
	}

	rates := currency.NewClient(cfg.RatesAPIURL, cfg.RatesTimeout,
		currency.WithAccessKey(cfg.RatesAPIKey),
		currency.WithLogger(log),
	)

	h := handlers.NewHandlers(db, rates, handlers.Settings{
		TemplateDir:         cfg.TemplateDir,
		SecureCookie:        cfg.SecureCookie,
		DefaultBaseCurrency: cfg.DefaultBaseCurrency,
		Logger:              log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           setupRouter(h, cfg.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", "addr", srv.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n, err := db.CleanExpiredSessions(); err != nil {
					log.Warn("Failed to clean expired sessions", "error", err)
				} else if n > 0 {
					log.Debug("Cleaned expired sessions", "count", n)
				}
			}
		}
	})

	return g.Wait()
}

// ensureAdmin registers the bootstrap account when configured and missing.
func ensureAdmin(db *storage.DB, username, password string, log *slog.Logger) error {
	if username == "" || password == "" {
		return nil
	}
	user, err := auth.NewManager(db).Register(username, password)
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		return nil
	case err != nil:
		return err
	}
	log.Info("Created admin user", "username", user.Username, "id", user.ID)
	return nil
}

func setupRouter(h *handlers.Handlers, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.LogRequests)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/expenses", http.StatusFound)
		})

		r.Get("/expenses", h.ListExpenses)
		r.Post("/expenses", h.CreateExpense)
		r.Get("/expenses/new", h.CreateExpenseForm)
		r.Get("/expenses/{id}/edit", h.EditExpenseForm)
		r.Post("/expenses/{id}", h.UpdateExpense)
		r.Post("/expenses/{id}/delete", h.DeleteExpense)

		r.Get("/reports", h.Reports)
		r.Get("/reports/export.csv", h.ExportCSV)

		r.Get("/profile", h.Profile)
		r.Post("/profile/base-currency", h.SetBaseCurrency)
		r.Post("/profile/password", h.ChangePassword)
		r.Post("/profile/delete", h.DeleteAccount)
	})

	return r
}
