package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"financas/internal/core"
	"financas/internal/sheets"
)

var (
	_ sheets.Store          = (*SQLRepository)(nil)
	_ sheets.ChargeReplacer = (*SQLRepository)(nil)
)

// SQLRepository stores records in SQLite or Postgres using the same schema.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(DialectSQLite, dbPath)
}

func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return open(DialectPostgres, dsn)
}

func open(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialect}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLRepository) exec(ctx context.Context, q execer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, r.dialect.rebind(query), args...)
}

// execOne runs a statement that must touch exactly one row.
func (r *SQLRepository) execOne(ctx context.Context, what, id, query string, args ...any) error {
	res, err := r.exec(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, sheets.ErrNotFound)
	}
	return nil
}

const (
	selectIncomes = `SELECT id, description, amount_cents, month FROM incomes ORDER BY month, created_at, id`
	selectCharges = `SELECT id, description, total_cents, installment_count, installment_index,
		installment_cents, start_date, month, paid, paid_cents
		FROM card_charges ORDER BY month, created_at, id`
	selectCharge = `SELECT id, description, total_cents, installment_count, installment_index,
		installment_cents, start_date, month, paid, paid_cents
		FROM card_charges WHERE id = ?`
	selectDebits = `SELECT id, description, amount_cents, date, month FROM debit_expenses ORDER BY month, date, created_at, id`

	insertIncome = `INSERT INTO incomes (id, description, amount_cents, month) VALUES (?, ?, ?, ?)`
	insertCharge = `INSERT INTO card_charges (id, description, total_cents, installment_count, installment_index,
		installment_cents, start_date, month, paid, paid_cents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertDebit = `INSERT INTO debit_expenses (id, description, amount_cents, date, month) VALUES (?, ?, ?, ?, ?)`
)

// LoadAll implements sheets.RecordLoader
func (r *SQLRepository) LoadAll(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	var err error

	if snap.Incomes, err = r.loadIncomes(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Charges, err = r.loadCharges(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Debits, err = r.loadDebits(ctx); err != nil {
		return core.Snapshot{}, err
	}

	slog.DebugContext(ctx, "Records loaded",
		"dialect", r.dialect,
		"incomes", len(snap.Incomes),
		"charges", len(snap.Charges),
		"debits", len(snap.Debits))

	return snap, nil
}

func (r *SQLRepository) loadIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, selectIncomes)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var in core.Income
		var month string
		if err := rows.Scan(&in.ID, &in.Description, &in.Amount.Cents, &month); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.Month = core.MonthKey(month)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomes: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharge(sc rowScanner) (core.CardCharge, error) {
	var c core.CardCharge
	var start, month string
	var paidCents sql.NullInt64
	if err := sc.Scan(&c.ID, &c.Description, &c.TotalAmount.Cents, &c.InstallmentCount, &c.InstallmentIndex,
		&c.InstallmentAmount.Cents, &start, &month, &c.Paid, &paidCents); err != nil {
		return core.CardCharge{}, err
	}
	startDate, err := core.ParseDate(start)
	if err != nil {
		return core.CardCharge{}, fmt.Errorf("charge %s start date: %w", c.ID, err)
	}
	c.StartDate = startDate
	c.Month = core.MonthKey(month)
	if paidCents.Valid {
		c.PaidAmount = &core.Money{Cents: paidCents.Int64}
	}
	return c, nil
}

func (r *SQLRepository) loadCharges(ctx context.Context) ([]core.CardCharge, error) {
	rows, err := r.db.QueryContext(ctx, selectCharges)
	if err != nil {
		return nil, fmt.Errorf("query card charges: %w", err)
	}
	defer rows.Close()

	var out []core.CardCharge
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card charge: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card charges: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) loadDebits(ctx context.Context) ([]core.DebitExpense, error) {
	rows, err := r.db.QueryContext(ctx, selectDebits)
	if err != nil {
		return nil, fmt.Errorf("query debits: %w", err)
	}
	defer rows.Close()

	var out []core.DebitExpense
	for rows.Next() {
		var d core.DebitExpense
		var date, month string
		if err := rows.Scan(&d.ID, &d.Description, &d.Amount.Cents, &date, &month); err != nil {
			return nil, fmt.Errorf("scan debit: %w", err)
		}
		parsed, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("debit %s date: %w", d.ID, err)
		}
		d.Date = parsed
		d.Month = core.MonthKey(month)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debits: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) getCharge(ctx context.Context, id string) (core.CardCharge, error) {
	c, err := scanCharge(r.db.QueryRowContext(ctx, r.dialect.rebind(selectCharge), id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.CardCharge{}, fmt.Errorf("charge %s: %w", id, sheets.ErrNotFound)
	}
	if err != nil {
		return core.CardCharge{}, fmt.Errorf("get charge %s: %w", id, err)
	}
	return c, nil
}

// InsertIncome implements sheets.IncomeWriter
func (r *SQLRepository) InsertIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := r.exec(ctx, r.db, insertIncome, in.ID, in.Description, in.Amount.Cents, string(in.Month)); err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	slog.InfoContext(ctx, "Income saved",
		"dialect", r.dialect,
		"id", in.ID,
		"amount_cents", in.Amount.Cents,
		"month", in.Month)
	return nil
}

func (r *SQLRepository) DeleteIncome(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete income", id, `DELETE FROM incomes WHERE id = ?`, id)
}

func chargeArgs(c core.CardCharge) []any {
	var paidCents sql.NullInt64
	if c.PaidAmount != nil {
		paidCents = sql.NullInt64{Int64: c.PaidAmount.Cents, Valid: true}
	}
	return []any{
		c.ID, c.Description, c.TotalAmount.Cents, c.InstallmentCount, c.InstallmentIndex,
		c.InstallmentAmount.Cents, c.StartDate.String(), string(c.Month), c.Paid, paidCents,
	}
}

// InsertCharge implements sheets.ChargeWriter
func (r *SQLRepository) InsertCharge(ctx context.Context, c core.CardCharge) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := r.exec(ctx, r.db, insertCharge, chargeArgs(c)...); err != nil {
		return fmt.Errorf("insert card charge: %w", err)
	}
	slog.InfoContext(ctx, "Card charge saved",
		"dialect", r.dialect,
		"id", c.ID,
		"installment_cents", c.InstallmentAmount.Cents,
		"installment", fmt.Sprintf("%d/%d", c.InstallmentIndex, c.InstallmentCount),
		"month", c.Month)
	return nil
}

func (r *SQLRepository) DeleteCharge(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete charge", id, `DELETE FROM card_charges WHERE id = ?`, id)
}

func (r *SQLRepository) SetChargePaidState(ctx context.Context, id string, paid bool) error {
	return r.execOne(ctx, "set charge paid state", id, `UPDATE card_charges SET paid = ? WHERE id = ?`, paid, id)
}

func (r *SQLRepository) RecordPartialPayment(ctx context.Context, id string, amount core.Money) error {
	c, err := r.getCharge(ctx, id)
	if err != nil {
		return err
	}
	updated, err := c.WithPartialPayment(amount)
	if err != nil {
		return err
	}
	return r.execOne(ctx, "record partial payment", id,
		`UPDATE card_charges SET paid = ?, paid_cents = ? WHERE id = ?`,
		updated.Paid, updated.PaidAmount.Cents, id)
}

// ReplaceCharges implements sheets.ChargeReplacer inside one transaction.
func (r *SQLRepository) ReplaceCharges(ctx context.Context, charges []core.CardCharge) error {
	for _, c := range charges {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("charge %s: %w", c.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := r.exec(ctx, tx, `DELETE FROM card_charges`); err != nil {
		return fmt.Errorf("delete card charges: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.dialect.rebind(insertCharge))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range charges {
		if _, err := stmt.ExecContext(ctx, chargeArgs(c)...); err != nil {
			return fmt.Errorf("insert card charge %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Card charges replaced", "dialect", r.dialect, "count", len(charges))
	return nil
}

// InsertDebit implements sheets.DebitWriter
func (r *SQLRepository) InsertDebit(ctx context.Context, d core.DebitExpense) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := r.exec(ctx, r.db, insertDebit, d.ID, d.Description, d.Amount.Cents, d.Date.String(), string(d.Month)); err != nil {
		return fmt.Errorf("insert debit: %w", err)
	}
	slog.InfoContext(ctx, "Debit saved",
		"dialect", r.dialect,
		"id", d.ID,
		"amount_cents", d.Amount.Cents,
		"month", d.Month)
	return nil
}

func (r *SQLRepository) DeleteDebit(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete debit", id, `DELETE FROM debit_expenses WHERE id = ?`, id)
}
