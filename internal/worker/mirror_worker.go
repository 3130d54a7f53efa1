package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"financas/internal/amqp"
	"financas/internal/balance"
	"financas/internal/core"
	"financas/internal/sheets"
)

// MirrorWorker rewrites the mirror whenever records change, and on a
// schedule in case change messages were lost.
type MirrorWorker struct {
	loader   sheets.RecordLoader
	exporter sheets.SnapshotExporter
	months   int
	now      func() time.Time

	// exportMu keeps message-driven and scheduled exports from interleaving.
	exportMu sync.Mutex

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
}

// NewMirrorWorker exports snapshots read from loader, with a projection of
// months months starting at the current one.
func NewMirrorWorker(loader sheets.RecordLoader, exporter sheets.SnapshotExporter, months int) *MirrorWorker {
	return &MirrorWorker{
		loader:   loader,
		exporter: exporter,
		months:   months,
		now:      time.Now,
	}
}

// HandleRecordsChanged processes a single change message from AMQP. Messages
// carry no record data, so every one triggers a full export.
func (w *MirrorWorker) HandleRecordsChanged(ctx context.Context, msg *amqp.RecordsChangedMessage) error {
	slog.InfoContext(ctx, "Processing records changed message",
		"kind", msg.Kind,
		"operation", msg.Operation,
		"id", msg.ID,
		"count", msg.Count)

	if err := w.Export(ctx); err != nil {
		return fmt.Errorf("export after %s %s: %w", msg.Kind, msg.Operation, err)
	}
	return nil
}

// Export loads every record and writes it, with the projection, to the mirror.
func (w *MirrorWorker) Export(ctx context.Context) error {
	w.exportMu.Lock()
	defer w.exportMu.Unlock()

	start := time.Now()
	snap, err := w.loader.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	balances := balance.ProjectBalances(core.RollingMonthsFrom(w.now(), w.months), snap)
	if err := w.exporter.ExportSnapshot(ctx, snap, balances); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Mirror export completed",
		"duration", time.Since(start),
		"months", len(balances))
	return nil
}

// Start runs an export on the cron schedule spec until Stop is called.
// Returns an error if already running or if spec does not parse.
func (w *MirrorWorker) Start(ctx context.Context, spec string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("mirror worker is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := w.Export(ctx); err != nil {
			slog.ErrorContext(ctx, "Scheduled mirror export failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	c.Start()

	w.cron = c
	w.running = true
	slog.InfoContext(ctx, "Mirror worker started", "schedule", spec, "months", w.months)
	return nil
}

// Stop halts the schedule and waits for a running export to finish.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	c := w.cron
	w.running = false
	w.cron = nil
	w.mu.Unlock()

	select {
	case <-c.Stop().Done():
		slog.InfoContext(ctx, "Mirror worker stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the schedule is active.
func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
