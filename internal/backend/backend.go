package backend

import (
	"context"
	"fmt"

	"punti/internal/config"
	"punti/internal/storage"
)

// Type names a key-value backend
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Memory:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{SQLite, Memory}
}

// Config holds what a backend needs to open
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         t,
		SQLiteDBPath: appConfig.SQLiteDBPath,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLite && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}

// CleanupFunc releases the resources held by a backend
type CleanupFunc func() error

// Result contains the opened store and its cleanup function. Cleanup is
// never nil.
type Result struct {
	KV      storage.KV
	Cleanup CleanupFunc
}

// Factory opens backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}
