// Package config loads process configuration from the environment, with an
// optional .env file preloaded on top of unset variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Env  string
	Port string
	Seed bool

	DB    DB
	SMTP  SMTP
	Alert Alert

	WebhookTimeout   time.Duration
	SettingsCacheTTL time.Duration
}

type DB struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type Alert struct {
	RecipientEmail   string
	BalanceThreshold decimal.Decimal
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		// A missing .env is normal in production.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:  getenv("APP_ENV", "local"),
		Port: getenv("PORT", "8080"),
		Seed: os.Getenv("SEED") == "true",
		DB: DB{
			Driver:   strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
			Path:     getenv("DB_PATH", "simnotice.db"),
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "3306"),
			User:     getenv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME", "simnotice_db"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("EMAIL_HOST"),
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     getenv("EMAIL_FROM", os.Getenv("EMAIL_USER")),
		},
		Alert: Alert{
			RecipientEmail: strings.TrimSpace(os.Getenv("RECIPIENT_EMAIL")),
		},
	}

	var err error
	if cfg.SMTP.Port, err = strconv.Atoi(getenv("EMAIL_PORT", "465")); err != nil {
		return nil, fmt.Errorf("EMAIL_PORT: %w", err)
	}
	if cfg.SMTP.Timeout, err = time.ParseDuration(getenv("SMTP_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("SMTP_TIMEOUT: %w", err)
	}
	if cfg.WebhookTimeout, err = time.ParseDuration(getenv("WEBHOOK_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("WEBHOOK_TIMEOUT: %w", err)
	}
	if cfg.SettingsCacheTTL, err = time.ParseDuration(getenv("SETTINGS_CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("SETTINGS_CACHE_TTL: %w", err)
	}

	cfg.Alert.BalanceThreshold = decimal.NewFromInt(10)
	if v := strings.TrimSpace(os.Getenv("BALANCE_THRESHOLD")); v != "" {
		if th, err := decimal.NewFromString(v); err == nil && !th.IsZero() {
			cfg.Alert.BalanceThreshold = th
		}
	}

	switch cfg.DB.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return cfg, nil
}

// DSN returns the data source name for the configured driver.
func (d DB) DSN() string {
	if d.Driver != DriverMySQL {
		return d.Path
	}
	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(d.Host, d.Port)
	mc.DBName = d.Name
	mc.ParseTime = true
	// RowsAffected must count matched rows so UpdateBalance can tell "missing" from "unchanged".
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
