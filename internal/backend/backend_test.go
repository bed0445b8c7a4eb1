package backend

import (
	"context"
	"path/filepath"
	"testing"

	"punti/internal/config"
	"punti/internal/log"
	"punti/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    Type
		wantErr bool
	}{
		{"sqlite", "sqlite", SQLite, false},
		{"memory", "memory", Memory, false},
		{"sheets is gone", "sheets", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.DataBackend = tt.backend
			got, err := FromAppConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLite}).Validate(); err == nil {
		t.Error("sqlite without a path should fail")
	}
	if err := (Config{Type: Memory}).Validate(); err != nil {
		t.Errorf("memory: unexpected error %v", err)
	}
}

func TestFactoryCreate(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Discard())

	for _, cfg := range []Config{
		{Type: Memory},
		{Type: SQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "sub", "punti.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.Create(ctx, cfg)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					t.Errorf("Cleanup: %v", err)
				}
			}()

			if err := res.KV.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, ok, err := res.KV.Get(ctx, "k")
			if err != nil || !ok || string(got) != "v" {
				t.Fatalf("Get = %q, %v, %v", got, ok, err)
			}
			if _, ok := res.KV.(storage.Pinger); !ok {
				t.Error("backend should support Ping")
			}
		})
	}

	if _, err := f.Create(ctx, Config{Type: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
