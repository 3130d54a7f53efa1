package sheets

import (
	"context"
	"errors"

	"financas/internal/core"
)

// ErrNotFound is returned by stores when an id matches no record.
var ErrNotFound = errors.New("record not found")

// Ports for record stores and outbound mirrors.
type (
	RecordLoader interface {
		// LoadAll returns every income, card charge and debit.
		LoadAll(ctx context.Context) (core.Snapshot, error)
	}

	IncomeWriter interface {
		InsertIncome(ctx context.Context, in core.Income) error
		DeleteIncome(ctx context.Context, id string) error
	}

	ChargeWriter interface {
		InsertCharge(ctx context.Context, c core.CardCharge) error
		DeleteCharge(ctx context.Context, id string) error
		SetChargePaidState(ctx context.Context, id string, paid bool) error
		// RecordPartialPayment marks the charge paid for amount.
		RecordPartialPayment(ctx context.Context, id string, amount core.Money) error
	}

	DebitWriter interface {
		InsertDebit(ctx context.Context, d core.DebitExpense) error
		DeleteDebit(ctx context.Context, id string) error
	}

	// Store is a complete record source and sink.
	Store interface {
		RecordLoader
		IncomeWriter
		ChargeWriter
		DebitWriter
	}

	// ChargeReplacer is implemented by stores that can swap the whole
	// card-charge collection in one step.
	ChargeReplacer interface {
		ReplaceCharges(ctx context.Context, charges []core.CardCharge) error
	}

	// SnapshotExporter mirrors records and projections somewhere readable.
	SnapshotExporter interface {
		ExportSnapshot(ctx context.Context, s core.Snapshot, balances []core.MonthlyBalance) error
	}

	// Pinger is implemented by stores that hold a database connection.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
