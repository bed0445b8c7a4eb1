package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// HTTP Server
	Port            string
	BindAddr        string
	ShutdownTimeout time.Duration

	// Storage
	DataBackend  string
	SQLiteDBPath string
	StorageKey   string

	// Tracker
	HistoryLimit int
	MaxDigits    int
	DefaultColor string

	// Logging
	LogLevel string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:            "8081",
		BindAddr:        "127.0.0.1",
		ShutdownTimeout: 10 * time.Second,

		DataBackend:  "sqlite",
		SQLiteDBPath: "./data/punti.db",
		StorageKey:   "pointTrackerData",

		HistoryLimit: 3,
		MaxDigits:    6,
		DefaultColor: "#FF6B6B",

		LogLevel: "info",
	}
}

// Load reads the configuration from the environment on top of the defaults.
func Load() *Config {
	return applyEnv(Defaults())
}

// LoadFile reads a TOML file on top of the defaults, then applies the
// environment. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return applyEnv(cfg), nil
	}

	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := fc.apply(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg *Config) *Config {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.BindAddr = getEnv("BIND_ADDR", cfg.BindAddr)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.StorageKey = getEnv("STORAGE_KEY", cfg.StorageKey)

	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.MaxDigits = getEnvInt("MAX_DIGITS", cfg.MaxDigits)
	cfg.DefaultColor = getEnv("DEFAULT_COLOR", cfg.DefaultColor)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	return cfg
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.BindAddr == "" {
		errors = append(errors, "bind address cannot be empty")
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	} else if c.ShutdownTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at most 5 minutes", c.ShutdownTimeout))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		errors = append(errors, "storage key cannot be empty")
	}

	if c.HistoryLimit < 1 || c.HistoryLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must be between 1 and 100", c.HistoryLimit))
	}

	// Nine digits keeps every amount inside a 32-bit int.
	if c.MaxDigits < 1 || c.MaxDigits > 9 {
		errors = append(errors, fmt.Sprintf("invalid max digits %d: must be between 1 and 9", c.MaxDigits))
	}

	if !isHexColor(c.DefaultColor) {
		errors = append(errors, fmt.Sprintf("invalid default color '%s': must look like #RRGGBB", c.DefaultColor))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
