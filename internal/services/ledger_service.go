package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/balance"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/importer"
	"financas/internal/report"
	"financas/internal/sheets"
)

const snapshotCacheKey = "snapshot"

// Publisher announces record changes to whoever mirrors them.
type Publisher interface {
	PublishRecordsChanged(ctx context.Context, msg amqp.RecordsChangedMessage) error
}

// Dashboard is everything the overview screen shows at once.
type Dashboard struct {
	Month         core.MonthKey           `json:"month"`
	Balances      []core.MonthlyBalance   `json:"balances"`
	Feasibility   core.PaymentFeasibility `json:"feasibility"`
	MonthsPresent []core.MonthKey         `json:"months_present"`
	Statements    core.StatementTotals    `json:"statements"`
}

// LedgerService orchestrates record changes across the store, the snapshot
// cache and the change publisher.
type LedgerService struct {
	store     sheets.Store
	publisher Publisher
	cache     cache.Cache[core.Snapshot]
	now       func() time.Time
}

// NewLedgerService wires a service over store. publisher and snapshotCache
// may be nil.
func NewLedgerService(store sheets.Store, publisher Publisher, snapshotCache cache.Cache[core.Snapshot]) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		cache:     snapshotCache,
		now:       time.Now,
	}
}

// Snapshot returns a private copy of every record.
func (s *LedgerService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	if s.cache != nil {
		if snap, ok := s.cache.Get(snapshotCacheKey); ok {
			return snap.Clone(), nil
		}
	}

	snap, err := s.store.LoadAll(ctx)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load records: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(snapshotCacheKey, snap.Clone())
	}
	return snap, nil
}

func (s *LedgerService) AddIncome(ctx context.Context, description string, amount core.Money, month core.MonthKey) (core.Income, error) {
	in, err := core.NewIncome(description, amount, month)
	if err != nil {
		return core.Income{}, err
	}
	if err := s.store.InsertIncome(ctx, in); err != nil {
		return core.Income{}, fmt.Errorf("save income: %w", err)
	}
	s.afterChange(ctx, amqp.KindIncome, amqp.OpCreate, in.ID, 1)
	return in, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.afterChange(ctx, amqp.KindIncome, amqp.OpDelete, id, 1)
	return nil
}

// AddCharge records a purchase typed in by hand.
func (s *LedgerService) AddCharge(ctx context.Context, description string, total core.Money, installments int, start core.Date) (core.CardCharge, error) {
	c, err := core.NewCardCharge(description, total, installments, start)
	if err != nil {
		return core.CardCharge{}, err
	}
	return c, s.insertCharge(ctx, c)
}

// AddStatement records a whole card statement ("fatura") as one
// single-installment charge labelled after the issuer.
func (s *LedgerService) AddStatement(ctx context.Context, issuer core.CardIssuer, amount core.Money, date core.Date) (core.CardCharge, error) {
	if _, err := core.ParseCardIssuer(string(issuer)); err != nil {
		return core.CardCharge{}, err
	}
	c, err := core.NewCardCharge(issuer.Label(), amount, 1, date)
	if err != nil {
		return core.CardCharge{}, err
	}
	return c, s.insertCharge(ctx, c)
}

func (s *LedgerService) insertCharge(ctx context.Context, c core.CardCharge) error {
	if err := s.store.InsertCharge(ctx, c); err != nil {
		return fmt.Errorf("save charge: %w", err)
	}
	s.afterChange(ctx, amqp.KindCharge, amqp.OpCreate, c.ID, 1)
	return nil
}

func (s *LedgerService) DeleteCharge(ctx context.Context, id string) error {
	if err := s.store.DeleteCharge(ctx, id); err != nil {
		return fmt.Errorf("delete charge: %w", err)
	}
	s.afterChange(ctx, amqp.KindCharge, amqp.OpDelete, id, 1)
	return nil
}

// TogglePaid flips the paid flag of a charge and returns the new state. The
// current flag is read from the store, not the cache, since another process
// may have changed it.
func (s *LedgerService) TogglePaid(ctx context.Context, id string) (bool, error) {
	snap, err := s.store.LoadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("load records: %w", err)
	}
	c, ok := snap.FindCharge(id)
	if !ok {
		return false, fmt.Errorf("toggle charge %q: %w", id, sheets.ErrNotFound)
	}

	paid := !c.Paid
	if err := s.store.SetChargePaidState(ctx, id, paid); err != nil {
		return false, fmt.Errorf("set paid state: %w", err)
	}
	s.afterChange(ctx, amqp.KindCharge, amqp.OpUpdate, id, 1)
	return paid, nil
}

// SetPartialPayment marks a charge paid for less than its installment.
func (s *LedgerService) SetPartialPayment(ctx context.Context, id string, amount core.Money) error {
	if err := amount.Validate(); err != nil {
		return fmt.Errorf("partial payment: %w", err)
	}
	if err := s.store.RecordPartialPayment(ctx, id, amount); err != nil {
		return fmt.Errorf("record partial payment: %w", err)
	}
	s.afterChange(ctx, amqp.KindCharge, amqp.OpUpdate, id, 1)
	return nil
}

func (s *LedgerService) AddDebit(ctx context.Context, description string, amount core.Money, date core.Date) (core.DebitExpense, error) {
	d, err := core.NewDebitExpense(description, amount, date)
	if err != nil {
		return core.DebitExpense{}, err
	}
	if err := s.store.InsertDebit(ctx, d); err != nil {
		return core.DebitExpense{}, fmt.Errorf("save debit: %w", err)
	}
	s.afterChange(ctx, amqp.KindDebit, amqp.OpCreate, d.ID, 1)
	return d, nil
}

func (s *LedgerService) DeleteDebit(ctx context.Context, id string) error {
	if err := s.store.DeleteDebit(ctx, id); err != nil {
		return fmt.Errorf("delete debit: %w", err)
	}
	s.afterChange(ctx, amqp.KindDebit, amqp.OpDelete, id, 1)
	return nil
}

// ImportChargesCSV replaces every card charge with the rows of a card
// statement export. Nothing is touched when the file yields no charges.
func (s *LedgerService) ImportChargesCSV(ctx context.Context, content string) (importer.Result, error) {
	res, err := importer.Parse(content)
	if err != nil {
		return res, fmt.Errorf("parse card charges: %w", err)
	}

	if err := sheets.ReplaceCharges(ctx, s.store, res.Charges); err != nil {
		s.invalidate()
		return res, fmt.Errorf("replace card charges: %w", err)
	}

	slog.InfoContext(ctx, "Imported card charges",
		"charges", len(res.Charges),
		"skipped", len(res.Skipped))

	s.afterChange(ctx, amqp.KindCharge, amqp.OpReplace, "", len(res.Charges))
	return res, nil
}

// Balances projects months consecutive months starting at the current one.
func (s *LedgerService) Balances(ctx context.Context, months int) ([]core.MonthlyBalance, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return balance.ProjectBalances(core.RollingMonthsFrom(s.now(), months), snap), nil
}

// MonthsPresent returns the balance of every month any record falls in.
func (s *LedgerService) MonthsPresent(ctx context.Context) ([]core.MonthlyBalance, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return balance.ProjectBalances(core.DistinctMonthsPresent(snap), snap), nil
}

// Feasibility evaluates month against the following months.
func (s *LedgerService) Feasibility(ctx context.Context, month core.MonthKey, months int) (core.PaymentFeasibility, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return core.PaymentFeasibility{}, err
	}
	return balance.EvaluatePaymentFeasibility(month, snap, core.MonthsFrom(month.Next(), months)), nil
}

// Dashboard projects a window of months starting at now and evaluates the
// first month against the rest of the window.
func (s *LedgerService) Dashboard(ctx context.Context, now time.Time, months int) (Dashboard, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	window := core.RollingMonthsFrom(now, months)
	current := core.MonthKeyOf(now)
	var future []core.MonthKey
	if len(window) > 1 {
		future = window[1:]
	}

	return Dashboard{
		Month:         current,
		Balances:      balance.ProjectBalances(window, snap),
		Feasibility:   balance.EvaluatePaymentFeasibility(current, snap, future),
		MonthsPresent: core.DistinctMonthsPresent(snap),
		Statements:    balance.SummarizeStatements(snap),
	}, nil
}

// ProjectionReport renders the Dashboard window and its feasibility as an
// XLSX workbook.
func (s *LedgerService) ProjectionReport(ctx context.Context, now time.Time, months int) ([]byte, error) {
	d, err := s.Dashboard(ctx, now, months)
	if err != nil {
		return nil, err
	}
	b, err := report.ProjectionXLSX(d.Balances, &d.Feasibility)
	if err != nil {
		return nil, fmt.Errorf("render projection report: %w", err)
	}
	return b, nil
}

func (s *LedgerService) invalidate() {
	if s.cache != nil {
		s.cache.Delete(snapshotCacheKey)
	}
}

// afterChange drops the cached snapshot and announces the change. The record
// is already stored, so a publish failure is only logged.
func (s *LedgerService) afterChange(ctx context.Context, kind, op, id string, count int) {
	s.invalidate()

	if s.publisher == nil {
		slog.DebugContext(ctx, "No publisher configured, skipping change event",
			"kind", kind, "operation", op)
		return
	}

	msg := amqp.NewRecordsChangedMessage(kind, op, id, count)
	if err := s.publisher.PublishRecordsChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish records changed message",
			"kind", kind,
			"operation", op,
			"id", id,
			"error", err)
	}
}
