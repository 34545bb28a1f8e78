package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"multi-currency-expenses/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "DB_PATH", "TEMPLATE_DIR", "STATIC_DIR", "RATES_API_URL",
	"RATES_API_KEY", "RATES_TIMEOUT", "DEFAULT_BASE_CURRENCY", "SECURE_COOKIE",
	"ADMIN_USER", "ADMIN_PASSWORD", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
}

// clearEnv isolates a test from the developer's environment and any .env file.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "expenses.db", cfg.DBPath)
	assert.Equal(t, "https://api.exchangerate.host", cfg.RatesAPIURL)
	assert.Equal(t, 10*time.Second, cfg.RatesTimeout)
	assert.Equal(t, "USD", cfg.DefaultBaseCurrency)
	assert.Equal(t, logger.LevelInfo, cfg.Logger.Level)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("RATES_TIMEOUT", "3s")
	t.Setenv("DEFAULT_BASE_CURRENCY", " inr ")
	t.Setenv("SECURE_COOKIE", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.RatesTimeout)
	assert.Equal(t, "INR", cfg.DefaultBaseCurrency)
	assert.True(t, cfg.SecureCookie)
	assert.Equal(t, logger.FormatJSON, cfg.Logger.Format)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("DB_PATH=from-dotenv.db\n"), 0600))
	// godotenv.Load does not override variables that already exist, even empty ones.
	require.NoError(t, os.Unsetenv("DB_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
}

func TestLoadTOMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "7000"
rates_api_url = "http://rates.internal"
rates_timeout = "4s"
default_base_currency = "EUR"

[log]
level = "debug"
`), 0600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.Port, "environment wins over the file")
	assert.Equal(t, "http://rates.internal", cfg.RatesAPIURL)
	assert.Equal(t, 4*time.Second, cfg.RatesTimeout)
	assert.Equal(t, "EUR", cfg.DefaultBaseCurrency)
	assert.Equal(t, logger.LevelDebug, cfg.Logger.Level)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATES_TIMEOUT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "RATES_TIMEOUT")

	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	assert.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.Port = "99999"
	cfg.RatesAPIURL = "ftp://rates"
	cfg.DefaultBaseCurrency = "EURO"
	cfg.AdminUser = "admin"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port 99999")
	assert.Contains(t, err.Error(), "invalid rates API URL")
	assert.Contains(t, err.Error(), "3-letter code")
	assert.Contains(t, err.Error(), "ADMIN_USER and ADMIN_PASSWORD")
}
