package cli

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"financas/internal/config"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/sheets"
	"financas/internal/sheets/memory"
)

type pingingStore struct {
	sheets.Store
	err error
}

func (p pingingStore) Ping(context.Context) error { return p.err }

func TestReadinessCheck(t *testing.T) {
	if check := ReadinessCheck(memory.New(core.Snapshot{})); check != nil {
		t.Error("memory store has nothing to ping")
	}

	down := errors.New("down")
	check := ReadinessCheck(pingingStore{err: down})
	if check == nil {
		t.Fatal("expected a check for a pinging store")
	}
	if err := check(context.Background()); !errors.Is(err, down) {
		t.Errorf("check() = %v, want %v", err, down)
	}
}

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, applog.ComponentWorker)
	if logger.Component() != applog.ComponentWorker {
		t.Errorf("Component() = %q", logger.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger should be at debug level")
	}
}

func TestOpenBackendRejectsUnknownType(t *testing.T) {
	cfg := &config.Config{DataBackend: "excel"}
	if _, err := OpenBackend(context.Background(), cfg, slog.Default()); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
