package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"multi-currency-expenses/internal/logger"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the server and CLI configuration.
type Config struct {
	// HTTP server
	Port         string `toml:"port"`
	TemplateDir  string `toml:"template_dir"`
	StaticDir    string `toml:"static_dir"`
	SecureCookie bool   `toml:"secure_cookie"`

	// Database
	DBPath string `toml:"db_path"`

	// Rate service
	RatesAPIURL         string        `toml:"rates_api_url"`
	RatesAPIKey         string        `toml:"rates_api_key"`
	RatesTimeout        time.Duration `toml:"rates_timeout"` // duration string, e.g. "5s"
	DefaultBaseCurrency string        `toml:"default_base_currency"`

	// Bootstrap account created on start when both are set
	AdminUser     string `toml:"admin_user"`
	AdminPassword string `toml:"-"`

	Logger logger.Config `toml:"log"`
}

const (
	defaultPort         = "8080"
	defaultDBPath       = "expenses.db"
	defaultTemplateDir  = "web/templates"
	defaultStaticDir    = "web/static"
	defaultRatesAPIURL  = "https://api.exchangerate.host"
	defaultRatesTimeout = 10 * time.Second
	defaultBaseCurrency = "USD"
)

func defaults() *Config {
	return &Config{
		Port:                defaultPort,
		DBPath:              defaultDBPath,
		TemplateDir:         defaultTemplateDir,
		StaticDir:           defaultStaticDir,
		RatesAPIURL:         defaultRatesAPIURL,
		RatesTimeout:        defaultRatesTimeout,
		DefaultBaseCurrency: defaultBaseCurrency,
		Logger: logger.Config{
			Level:  logger.LevelInfo,
			Format: logger.FormatText,
			Output: "stdout",
		},
	}
}

// Load reads configuration from a local .env file, the optional TOML file
// named by CONFIG_FILE and the environment, in increasing precedence.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parseEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.TemplateDir, "TEMPLATE_DIR")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.RatesAPIURL, "RATES_API_URL")
	setString(&c.RatesAPIKey, "RATES_API_KEY")
	setString(&c.DefaultBaseCurrency, "DEFAULT_BASE_CURRENCY")
	setString(&c.AdminUser, "ADMIN_USER")
	setString(&c.AdminPassword, "ADMIN_PASSWORD")

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logger.Level = logger.Level(level)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Logger.Format = logger.Format(format)
	}
	setString(&c.Logger.Output, "LOG_OUTPUT")

	if v := os.Getenv("SECURE_COOKIE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SECURE_COOKIE %q: %w", v, err)
		}
		c.SecureCookie = b
	}
	if v := os.Getenv("RATES_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATES_TIMEOUT %q: %w", v, err)
		}
		c.RatesTimeout = d
	}

	c.DefaultBaseCurrency = strings.ToUpper(strings.TrimSpace(c.DefaultBaseCurrency))
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}

	if u, err := url.Parse(c.RatesAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid rates API URL '%s': must be an http(s) URL", c.RatesAPIURL))
	}

	if c.RatesTimeout <= 0 {
		problems = append(problems, "rates timeout must be positive")
	}

	if len(c.DefaultBaseCurrency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid default base currency '%s': must be a 3-letter code", c.DefaultBaseCurrency))
	}

	if (c.AdminUser == "") != (c.AdminPassword == "") {
		problems = append(problems, "ADMIN_USER and ADMIN_PASSWORD must be set together")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
