// Package memory keeps records in process memory, optionally persisted to a
// JSON snapshot file after every change.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"financas/internal/core"
	"financas/internal/sheets"
)

var _ sheets.Store = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	path string
	snap core.Snapshot
}

// New returns a store seeded with a copy of seed.
func New(seed core.Snapshot) *Store {
	return &Store{snap: seed.Clone()}
}

// NewFromFile loads path if it exists and writes the snapshot back to it on
// every change. A missing file starts an empty store.
func NewFromFile(path string) (*Store, error) {
	s := &Store{path: path}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.snap); err != nil {
		return nil, fmt.Errorf("decode snapshot file %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) LoadAll(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone(), nil
}

func (s *Store) InsertIncome(_ context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap.Clone()
	next.Incomes = append(next.Incomes, in)
	return s.commit(next)
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.snap.Incomes, func(in core.Income) bool { return in.ID == id })
	if i < 0 {
		return fmt.Errorf("income %s: %w", id, sheets.ErrNotFound)
	}
	next := s.snap.Clone()
	next.Incomes = slices.Delete(next.Incomes, i, i+1)
	return s.commit(next)
}

func (s *Store) InsertCharge(_ context.Context, c core.CardCharge) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap.Clone()
	next.Charges = append(next.Charges, c)
	return s.commit(next)
}

func (s *Store) DeleteCharge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.chargeIndex(id)
	if i < 0 {
		return fmt.Errorf("charge %s: %w", id, sheets.ErrNotFound)
	}
	next := s.snap.Clone()
	next.Charges = slices.Delete(next.Charges, i, i+1)
	return s.commit(next)
}

func (s *Store) SetChargePaidState(_ context.Context, id string, paid bool) error {
	return s.updateCharge(id, func(c core.CardCharge) (core.CardCharge, error) {
		return c.WithPaidState(paid), nil
	})
}

func (s *Store) RecordPartialPayment(_ context.Context, id string, amount core.Money) error {
	return s.updateCharge(id, func(c core.CardCharge) (core.CardCharge, error) {
		return c.WithPartialPayment(amount)
	})
}

func (s *Store) InsertDebit(_ context.Context, d core.DebitExpense) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap.Clone()
	next.Debits = append(next.Debits, d)
	return s.commit(next)
}

func (s *Store) DeleteDebit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.snap.Debits, func(d core.DebitExpense) bool { return d.ID == id })
	if i < 0 {
		return fmt.Errorf("debit %s: %w", id, sheets.ErrNotFound)
	}
	next := s.snap.Clone()
	next.Debits = slices.Delete(next.Debits, i, i+1)
	return s.commit(next)
}

func (s *Store) updateCharge(id string, fn func(core.CardCharge) (core.CardCharge, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.chargeIndex(id)
	if i < 0 {
		return fmt.Errorf("charge %s: %w", id, sheets.ErrNotFound)
	}
	next := s.snap.Clone()
	updated, err := fn(next.Charges[i])
	if err != nil {
		return err
	}
	next.Charges[i] = updated
	return s.commit(next)
}

// chargeIndex must be called with mu held.
func (s *Store) chargeIndex(id string) int {
	return slices.IndexFunc(s.snap.Charges, func(c core.CardCharge) bool { return c.ID == id })
}

// commit persists next, then makes it current. Must be called with mu held.
func (s *Store) commit(next core.Snapshot) error {
	if s.path != "" {
		if err := writeSnapshot(s.path, next); err != nil {
			return err
		}
	}
	s.snap = next
	return nil
}

func writeSnapshot(path string, snap core.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
