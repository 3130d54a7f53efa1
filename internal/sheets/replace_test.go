package sheets_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"financas/internal/core"
	"financas/internal/sheets"
	"financas/internal/sheets/memory"
)

func TestReplaceChargesWithoutReplacer(t *testing.T) {
	ctx := context.Background()
	old, _ := core.NewCardCharge("Antiga", core.Money{Cents: 100}, 1, core.NewDate(2024, 1, 1))
	income, _ := core.NewIncome("Salário", core.Money{Cents: 1000}, "2024-01")
	store := memory.New(core.Snapshot{Incomes: []core.Income{income}, Charges: []core.CardCharge{old}})

	var fresh []core.CardCharge
	for _, desc := range []string{"A", "B", "C"} {
		c, _ := core.NewCardCharge(desc, core.Money{Cents: 500}, 1, core.NewDate(2024, 2, 1))
		fresh = append(fresh, c)
	}

	if err := sheets.ReplaceCharges(ctx, store, fresh); err != nil {
		t.Fatalf("replace: %v", err)
	}
	snap, _ := store.LoadAll(ctx)
	if len(snap.Charges) != len(fresh) {
		t.Fatalf("expected %d charges, got %d", len(fresh), len(snap.Charges))
	}
	if _, ok := snap.FindCharge(old.ID); ok {
		t.Fatalf("old charge survived the replace")
	}
	if len(snap.Incomes) != 1 {
		t.Fatalf("replace touched incomes")
	}
}

func TestReplaceChargesRejectsInvalidBeforeDeleting(t *testing.T) {
	ctx := context.Background()
	old, _ := core.NewCardCharge("Old", core.Money{Cents: 100}, 1, core.NewDate(2024, 1, 1))
	store := memory.New(core.Snapshot{Charges: []core.CardCharge{old}})

	valid, _ := core.NewCardCharge("Loja X", core.Money{Cents: 500}, 1, core.NewDate(2024, 2, 1))
	invalid := valid
	invalid.ID = "long"
	invalid.Description = strings.Repeat("x", 210)

	err := sheets.ReplaceCharges(ctx, store, []core.CardCharge{valid, invalid})
	if !errors.Is(err, core.ErrDescriptionTooLong) {
		t.Fatalf("replace error = %v, want ErrDescriptionTooLong", err)
	}
	snap, _ := store.LoadAll(ctx)
	if len(snap.Charges) != 1 || snap.Charges[0].ID != old.ID {
		t.Fatalf("store changed by a rejected replace: %+v", snap.Charges)
	}
}
