package adapters

import (
	"context"
	"errors"
	"testing"

	"financas/internal/core"
	"financas/internal/sheets"
	"financas/internal/sheets/memory"
)

// brokenStore fails every call, standing in for an unreachable database.
type brokenStore struct{ sheets.Store }

var errDown = errors.New("connection refused")

func (brokenStore) LoadAll(context.Context) (core.Snapshot, error)       { return core.Snapshot{}, errDown }
func (brokenStore) InsertIncome(context.Context, core.Income) error      { return errDown }
func (brokenStore) DeleteIncome(context.Context, string) error           { return errDown }
func (brokenStore) InsertCharge(context.Context, core.CardCharge) error  { return errDown }
func (brokenStore) DeleteCharge(context.Context, string) error           { return errDown }
func (brokenStore) InsertDebit(context.Context, core.DebitExpense) error { return errDown }
func (brokenStore) DeleteDebit(context.Context, string) error            { return errDown }

func (brokenStore) SetChargePaidState(context.Context, string, bool) error { return errDown }

func (brokenStore) RecordPartialPayment(context.Context, string, core.Money) error {
	return errDown
}

func TestFallbackReadsLocalWhenPrimaryFails(t *testing.T) {
	ctx := context.Background()
	local := memory.New(core.Snapshot{})
	f := NewFallbackStore(brokenStore{}, local)

	in, _ := core.NewIncome("Salário", core.Money{Cents: 1000}, "2024-03")
	if err := f.InsertIncome(ctx, in); err != nil {
		t.Fatalf("insert should succeed locally, got %v", err)
	}
	snap, err := f.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Incomes) != 1 || snap.Incomes[0].ID != in.ID {
		t.Fatalf("expected local income, got %+v", snap.Incomes)
	}
}

func TestFallbackWritesBothStores(t *testing.T) {
	ctx := context.Background()
	primary := memory.New(core.Snapshot{})
	local := memory.New(core.Snapshot{})
	f := NewFallbackStore(primary, local)

	c, _ := core.NewCardCharge("Loja", core.Money{Cents: 500}, 1, core.NewDate(2024, 3, 1))
	if err := f.InsertCharge(ctx, c); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := f.SetChargePaidState(ctx, c.ID, true); err != nil {
		t.Fatalf("set paid: %v", err)
	}
	for name, s := range map[string]sheets.Store{"primary": primary, "local": local} {
		snap, _ := s.LoadAll(ctx)
		got, ok := snap.FindCharge(c.ID)
		if !ok || !got.Paid {
			t.Fatalf("%s store: unexpected charge %+v", name, got)
		}
	}
}

func TestFallbackDeleteRemoteOnlyRecord(t *testing.T) {
	ctx := context.Background()
	d, _ := core.NewDebitExpense("Padaria", core.Money{Cents: 300}, core.NewDate(2024, 3, 1))
	primary := memory.New(core.Snapshot{Debits: []core.DebitExpense{d}})
	f := NewFallbackStore(primary, memory.New(core.Snapshot{}))

	if err := f.DeleteDebit(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.DeleteDebit(ctx, d.ID); !errors.Is(err, sheets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type pingStore struct {
	sheets.Store
	err error
}

func (p pingStore) Ping(context.Context) error { return p.err }

func TestFallbackPingChecksLocalOnly(t *testing.T) {
	ctx := context.Background()

	if err := NewFallbackStore(brokenStore{}, memory.New(core.Snapshot{})).Ping(ctx); err != nil {
		t.Errorf("Ping() with a local store that cannot ping = %v, want nil", err)
	}
	if err := NewFallbackStore(brokenStore{}, pingStore{err: errDown}).Ping(ctx); !errors.Is(err, errDown) {
		t.Errorf("Ping() = %v, want %v", err, errDown)
	}
}
