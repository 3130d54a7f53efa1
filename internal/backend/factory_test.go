package backend

import (
	"context"
	"path/filepath"
	"testing"

	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/sheets/memory"
	"financas/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", PostgresURL: "postgres://x", SQLiteDBPath: "a.db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.PostgresURL != "postgres://x" || cfg.SQLiteDBPath != "a.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend, SQLiteDBPath: "x.db"}, true},
		{"postgres without local copy", Config{Type: PostgresBackend, PostgresURL: "postgres://x"}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)
	dir := t.TempDir()

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SnapshotFile: filepath.Join(dir, "snap.json")})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, ok := res.Backend.(*memory.Store); !ok {
			t.Fatalf("expected memory store, got %T", res.Backend)
		}
		if err := res.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "financas.db")})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		defer res.Close()
		if _, ok := res.Backend.(*storage.SQLRepository); !ok {
			t.Fatalf("expected SQL repository, got %T", res.Backend)
		}
		in, _ := core.NewIncome("Salário", core.Money{Cents: 100}, "2024-01")
		if err := res.Backend.InsertIncome(ctx, in); err != nil {
			t.Fatalf("insert: %v", err)
		}
	})

	t.Run("postgres unreachable falls back to sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{
			Type:         PostgresBackend,
			PostgresURL:  "postgres://financas@127.0.0.1:1/financas?sslmode=disable&connect_timeout=1",
			SQLiteDBPath: filepath.Join(dir, "local.db"),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		defer res.Close()
		if _, ok := res.Backend.(*storage.SQLRepository); !ok {
			t.Fatalf("expected local SQL repository, got %T", res.Backend)
		}
	})
}
