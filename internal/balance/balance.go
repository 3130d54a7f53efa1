// Package balance computes monthly balances, multi-month projections and
// card payment feasibility from a record snapshot.
//
// Every function here is a pure function of its arguments. Only paid card
// charges reduce a month's balance; unpaid ones are still owed and are not
// yet money out.
package balance

import (
	"log/slog"

	"financas/internal/core"
)

// ComputeMonthlyBalance aggregates every record attributed to month.
func ComputeMonthlyBalance(month core.MonthKey, s core.Snapshot) core.MonthlyBalance {
	var incomes, cardPaid, debits core.Money
	var charges, debitCount int

	for _, in := range s.Incomes {
		if in.Month == month {
			incomes = incomes.Add(in.Amount)
		}
	}
	for _, c := range s.Charges {
		if c.Month != month {
			continue
		}
		charges++
		cardPaid = cardPaid.Add(c.SettledAmount())
	}
	for _, d := range s.Debits {
		if d.Month != month {
			continue
		}
		debitCount++
		debits = debits.Add(d.Amount)
	}

	mb := core.MonthlyBalance{
		Month:                month,
		IncomesTotal:         incomes,
		CardChargesPaidTotal: cardPaid,
		DebitsTotal:          debits,
		Balance:              incomes.Sub(cardPaid).Sub(debits),
	}

	if charges > 0 || debitCount > 0 {
		slog.Debug("Monthly balance computed",
			"month", month,
			"incomes_cents", incomes.Cents,
			"card_charges", charges,
			"card_paid_cents", cardPaid.Cents,
			"debits", debitCount,
			"debits_cents", debits.Cents,
			"balance_cents", mb.Balance.Cents,
		)
	}
	return mb
}

// ProjectBalances returns one balance per requested month, in input order.
// Duplicates are computed independently.
func ProjectBalances(months []core.MonthKey, s core.Snapshot) []core.MonthlyBalance {
	out := make([]core.MonthlyBalance, len(months))
	for i, m := range months {
		out[i] = ComputeMonthlyBalance(m, s)
	}
	return out
}
