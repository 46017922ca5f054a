// Package config собирает конфигурацию сервера из значений по
// умолчанию, переменных окружения и флагов (в порядке возрастания
// приоритета).
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config содержит конфигурацию сервера
type Config struct {
	Addr            string        // адрес HTTP listener
	DatabasePath    string        // путь к файлу SQLite
	SessionTTL      time.Duration // срок жизни сессии
	SetupTokenTTL   time.Duration // срок жизни setup token
	LoginRateWindow time.Duration // окно rate limit для auth эндпоинтов
	LoginRateLimit  int           // запросов на IP за окно
	DevMode         bool          // локальная разработка: cookie без Secure
	ShowVersion     bool          // напечатать версию и выйти
	BootstrapAdmin  string        // создать админа с этим username и выйти
}

// LoadDefaults заполняет значения по умолчанию
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabasePath = "famcal.db"
	c.SessionTTL = 30 * 24 * time.Hour
	c.SetupTokenTTL = 15 * time.Minute
	c.LoginRateWindow = time.Minute
	c.LoginRateLimit = 10
	c.DevMode = false
}

// loadEnv накладывает переменные окружения поверх дефолтов
func (c *Config) loadEnv() error {
	if v := os.Getenv("FAMCAL_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("FAMCAL_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("FAMCAL_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FAMCAL_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("FAMCAL_SETUP_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FAMCAL_SETUP_TOKEN_TTL: %w", err)
		}
		c.SetupTokenTTL = d
	}
	if v := os.Getenv("FAMCAL_DEV"); v == "1" || v == "true" {
		c.DevMode = true
	}
	return nil
}

// Load собирает конфигурацию: defaults -> env -> flags
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("famcal-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "Path to SQLite database file")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")
	fs.DurationVar(&cfg.SetupTokenTTL, "setup-token-ttl", cfg.SetupTokenTTL, "Password setup token lifetime")
	fs.BoolVar(&cfg.DevMode, "dev", cfg.DevMode, "Development mode (cookies without Secure)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.StringVar(&cfg.BootstrapAdmin, "bootstrap-admin", "", "Create an admin account with this username and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be positive")
	}
	if cfg.SetupTokenTTL <= 0 {
		return nil, fmt.Errorf("setup token TTL must be positive")
	}

	return cfg, nil
}
