package adapters

import (
	"context"
	"errors"
	"log/slog"

	"financas/internal/core"
	"financas/internal/sheets"
)

var (
	_ sheets.Store          = (*FallbackStore)(nil)
	_ sheets.ChargeReplacer = (*FallbackStore)(nil)
	_ sheets.Pinger         = (*FallbackStore)(nil)
)

// FallbackStore pairs a remote primary store with a local one. Reads come
// from the primary and fall back to the local store when it fails. Writes
// land locally first and are then forwarded; a failed forward is logged,
// not returned, so the household keeps working offline.
type FallbackStore struct {
	primary sheets.Store
	local   sheets.Store
}

func NewFallbackStore(primary, local sheets.Store) *FallbackStore {
	return &FallbackStore{primary: primary, local: local}
}

// LoadAll implements sheets.RecordLoader
func (f *FallbackStore) LoadAll(ctx context.Context) (core.Snapshot, error) {
	snap, err := f.primary.LoadAll(ctx)
	if err == nil {
		return snap, nil
	}
	slog.WarnContext(ctx, "Primary store unavailable, reading local records", "error", err)
	return f.local.LoadAll(ctx)
}

// write applies fn locally, then remotely. A record missing locally may
// still exist remotely, so ErrNotFound from the local store does not stop
// the forward.
func (f *FallbackStore) write(ctx context.Context, op string, fn func(sheets.Store) error) error {
	localErr := fn(f.local)
	if localErr != nil && !errors.Is(localErr, sheets.ErrNotFound) {
		return localErr
	}

	remoteErr := fn(f.primary)
	switch {
	case remoteErr == nil:
		return nil
	case localErr == nil:
		slog.WarnContext(ctx, "Primary store write failed, kept locally",
			"operation", op,
			"error", remoteErr)
		return nil
	default:
		return remoteErr
	}
}

func (f *FallbackStore) InsertIncome(ctx context.Context, in core.Income) error {
	return f.write(ctx, "insert_income", func(s sheets.Store) error { return s.InsertIncome(ctx, in) })
}

func (f *FallbackStore) DeleteIncome(ctx context.Context, id string) error {
	return f.write(ctx, "delete_income", func(s sheets.Store) error { return s.DeleteIncome(ctx, id) })
}

func (f *FallbackStore) InsertCharge(ctx context.Context, c core.CardCharge) error {
	return f.write(ctx, "insert_charge", func(s sheets.Store) error { return s.InsertCharge(ctx, c) })
}

func (f *FallbackStore) DeleteCharge(ctx context.Context, id string) error {
	return f.write(ctx, "delete_charge", func(s sheets.Store) error { return s.DeleteCharge(ctx, id) })
}

func (f *FallbackStore) SetChargePaidState(ctx context.Context, id string, paid bool) error {
	return f.write(ctx, "set_charge_paid", func(s sheets.Store) error { return s.SetChargePaidState(ctx, id, paid) })
}

func (f *FallbackStore) RecordPartialPayment(ctx context.Context, id string, amount core.Money) error {
	return f.write(ctx, "record_partial_payment", func(s sheets.Store) error { return s.RecordPartialPayment(ctx, id, amount) })
}

func (f *FallbackStore) InsertDebit(ctx context.Context, d core.DebitExpense) error {
	return f.write(ctx, "insert_debit", func(s sheets.Store) error { return s.InsertDebit(ctx, d) })
}

func (f *FallbackStore) DeleteDebit(ctx context.Context, id string) error {
	return f.write(ctx, "delete_debit", func(s sheets.Store) error { return s.DeleteDebit(ctx, id) })
}

// ReplaceCharges implements sheets.ChargeReplacer
func (f *FallbackStore) ReplaceCharges(ctx context.Context, charges []core.CardCharge) error {
	return f.write(ctx, "replace_charges", func(s sheets.Store) error { return sheets.ReplaceCharges(ctx, s, charges) })
}

// Ping checks the local store only. A down primary leaves the store usable.
func (f *FallbackStore) Ping(ctx context.Context) error {
	if p, ok := f.local.(sheets.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
