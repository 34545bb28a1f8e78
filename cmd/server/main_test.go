package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"multi-currency-expenses/internal/currency"
	"multi-currency-expenses/internal/handlers"
	"multi-currency-expenses/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter(t *testing.T) {
	// Setup dependencies
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	defer db.Close()

	if _, err := os.Stat("../../web/templates"); os.IsNotExist(err) {
		t.Skip("Template directory not found, skipping router test")
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handlers.NewHandlers(db, currency.NewClient("http://127.0.0.1:1", 0), handlers.Settings{
		TemplateDir: "../../web/templates",
		Logger:      quiet,
	})

	mux := setupRouter(h, "../../web/static")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		allowAlt   []int // Alternative acceptable status codes
	}{
		{
			name:       "Root redirects",
			method:     "GET",
			path:       "/",
			wantStatus: http.StatusFound,
		},
		{
			name:       "Static file access",
			method:     "GET",
			path:       "/static/style.css",
			wantStatus: http.StatusOK,
			allowAlt:   []int{http.StatusNotFound}, // File might not exist in test env
		},
		{
			name:       "Login page is public",
			method:     "GET",
			path:       "/login",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Register page is public",
			method:     "GET",
			path:       "/register",
			wantStatus: http.StatusOK,
		},
		{
			name:       "List Expenses requires auth",
			method:     "GET",
			path:       "/expenses",
			wantStatus: http.StatusFound, // Should redirect to login
		},
		{
			name:       "Reports require auth",
			method:     "GET",
			path:       "/reports",
			wantStatus: http.StatusFound,
		},
		{
			name:       "Export requires auth",
			method:     "GET",
			path:       "/reports/export.csv",
			wantStatus: http.StatusFound,
		},
		{
			name:       "Unknown route",
			method:     "GET",
			path:       "/nope",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if len(tt.allowAlt) > 0 {
				acceptableStatuses := append([]int{tt.wantStatus}, tt.allowAlt...)
				assert.Contains(t, acceptableStatuses, w.Code,
					"%s %s returned unexpected status", tt.method, tt.path)
			} else {
				assert.Equal(t, tt.wantStatus, w.Code,
					"%s %s returned unexpected status", tt.method, tt.path)
			}
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, ensureAdmin(db, "", "", quiet))
	count, err := db.UserCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, ensureAdmin(db, "admin", "pw", quiet))
	require.NoError(t, ensureAdmin(db, "admin", "pw", quiet), "existing admin is left alone")
	count, err = db.UserCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
