package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/core"
	"financas/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "financas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCharge(t *testing.T, desc string, total int64, installments int, start core.Date) core.CardCharge {
	t.Helper()
	c, err := core.NewCardCharge(desc, core.Money{Cents: total}, installments, start)
	if err != nil {
		t.Fatalf("new charge: %v", err)
	}
	return c
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	in, _ := core.NewIncome("Salário", core.Money{Cents: 500000}, "2024-03")
	charge := mustCharge(t, "Loja", 30000, 3, core.NewDate(2024, 3, 10))
	debit, _ := core.NewDebitExpense("Padaria", core.Money{Cents: 1250}, core.NewDate(2024, 3, 2))

	if err := repo.InsertIncome(ctx, in); err != nil {
		t.Fatalf("insert income: %v", err)
	}
	if err := repo.InsertCharge(ctx, charge); err != nil {
		t.Fatalf("insert charge: %v", err)
	}
	if err := repo.InsertDebit(ctx, debit); err != nil {
		t.Fatalf("insert debit: %v", err)
	}

	snap, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Incomes) != 1 || snap.Incomes[0] != in {
		t.Fatalf("income mismatch: %+v", snap.Incomes)
	}
	if len(snap.Debits) != 1 || snap.Debits[0].ID != debit.ID || !snap.Debits[0].Date.Equal(debit.Date.Time) {
		t.Fatalf("debit mismatch: %+v", snap.Debits)
	}
	got, ok := snap.FindCharge(charge.ID)
	if !ok {
		t.Fatalf("charge missing")
	}
	if got.InstallmentAmount != charge.InstallmentAmount || got.InstallmentCount != 3 || got.Paid || got.PaidAmount != nil {
		t.Fatalf("charge mismatch: %+v", got)
	}
	if got.StartDate.String() != "2024-03-10" || got.Month != "2024-03" {
		t.Fatalf("charge dates mismatch: %+v", got)
	}
}

func TestSQLiteChargeUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	charge := mustCharge(t, "Mercado", 10000, 1, core.NewDate(2024, 4, 1))
	if err := repo.InsertCharge(ctx, charge); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.SetChargePaidState(ctx, charge.ID, true); err != nil {
		t.Fatalf("set paid: %v", err)
	}
	if err := repo.RecordPartialPayment(ctx, charge.ID, core.Money{Cents: 4000}); err != nil {
		t.Fatalf("partial: %v", err)
	}
	if err := repo.RecordPartialPayment(ctx, charge.ID, core.Money{Cents: 10001}); !errors.Is(err, core.ErrPartialPaymentExceeds) {
		t.Fatalf("expected ErrPartialPaymentExceeds, got %v", err)
	}

	snap, _ := repo.LoadAll(ctx)
	got, _ := snap.FindCharge(charge.ID)
	if !got.Paid || got.SettledAmount().Cents != 4000 {
		t.Fatalf("unexpected charge %+v", got)
	}

	if err := repo.SetChargePaidState(ctx, "missing", true); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.RecordPartialPayment(ctx, "missing", core.Money{Cents: 1}); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteCharge(ctx, charge.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteCharge(ctx, charge.ID); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteReplaceCharges(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	old := mustCharge(t, "Antiga", 100, 1, core.NewDate(2024, 1, 5))
	if err := repo.InsertCharge(ctx, old); err != nil {
		t.Fatalf("insert: %v", err)
	}

	fresh := []core.CardCharge{
		mustCharge(t, "A", 500, 1, core.NewDate(2024, 2, 1)),
		mustCharge(t, "B", 900, 3, core.NewDate(2024, 2, 3)),
	}
	if err := repo.ReplaceCharges(ctx, fresh); err != nil {
		t.Fatalf("replace: %v", err)
	}
	snap, _ := repo.LoadAll(ctx)
	if len(snap.Charges) != 2 {
		t.Fatalf("expected 2 charges, got %d", len(snap.Charges))
	}
	if _, ok := snap.FindCharge(old.ID); ok {
		t.Fatalf("old charge survived")
	}

	bad := append([]core.CardCharge{}, fresh[0])
	bad = append(bad, core.CardCharge{ID: "broken"})
	if err := repo.ReplaceCharges(ctx, bad); err == nil {
		t.Fatalf("expected validation error")
	}
	snap, _ = repo.LoadAll(ctx)
	if len(snap.Charges) != 2 {
		t.Fatalf("failed replace modified the collection: %d charges", len(snap.Charges))
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financas.db")
	first, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()
	second, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}

func TestRebind(t *testing.T) {
	q := `UPDATE t SET a = ? WHERE id = ?`
	if got := DialectSQLite.rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	if got := DialectPostgres.rebind(q); got != `UPDATE t SET a = $1 WHERE id = $2` {
		t.Fatalf("unexpected postgres query: %s", got)
	}
}
