package config

import (
	"fmt"
	"strconv"
	"time"
)

// fileConfig is the TOML layout. Zero values leave the default in place.
//
//	[server]
//	port = 8081
//	bind = "127.0.0.1"
//	shutdown_timeout = "10s"
//
//	[storage]
//	backend = "sqlite"
//	path = "./data/punti.db"
//	key = "pointTrackerData"
//
//	[tracker]
//	history_limit = 3
//	max_digits = 6
//	default_color = "#FF6B6B"
//
//	[log]
//	level = "info"
type fileConfig struct {
	Server struct {
		Port            int    `toml:"port"`
		Bind            string `toml:"bind"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
	} `toml:"server"`

	Storage struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
		Key     string `toml:"key"`
	} `toml:"storage"`

	Tracker struct {
		HistoryLimit int    `toml:"history_limit"`
		MaxDigits    int    `toml:"max_digits"`
		DefaultColor string `toml:"default_color"`
	} `toml:"tracker"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func (fc fileConfig) apply(cfg *Config) error {
	if fc.Server.Port != 0 {
		cfg.Port = strconv.Itoa(fc.Server.Port)
	}
	setString(&cfg.BindAddr, fc.Server.Bind)
	if fc.Server.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.Server.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("server.shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	setString(&cfg.DataBackend, fc.Storage.Backend)
	setString(&cfg.SQLiteDBPath, fc.Storage.Path)
	setString(&cfg.StorageKey, fc.Storage.Key)

	setInt(&cfg.HistoryLimit, fc.Tracker.HistoryLimit)
	setInt(&cfg.MaxDigits, fc.Tracker.MaxDigits)
	setString(&cfg.DefaultColor, fc.Tracker.DefaultColor)

	setString(&cfg.LogLevel, fc.Log.Level)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
