package google

import (
	"fmt"

	"financas/internal/core"
)

// Row builders turn records into the value matrices written to each tab. The
// first row is always the header. Amounts are written as numbers so the
// sheet can sum them.

func IncomeRows(incomes []core.Income) [][]any {
	rows := make([][]any, 0, len(incomes)+1)
	rows = append(rows, []any{"ID", "Mes", "Descricao", "Valor"})
	for _, in := range incomes {
		rows = append(rows, []any{in.ID, in.Month.String(), in.Description, in.Amount.Float()})
	}
	return rows
}

func ChargeRows(charges []core.CardCharge) [][]any {
	rows := make([][]any, 0, len(charges)+1)
	rows = append(rows, []any{
		"ID", "Mes", "Data", "Descricao", "Cartao", "Parcela",
		"Valor Total", "Valor Parcela", "Pago", "Valor Pago",
	})
	for _, c := range charges {
		rows = append(rows, []any{
			c.ID,
			c.Month.String(),
			c.StartDate.String(),
			c.Description,
			string(core.IssuerOf(c)),
			installmentLabel(c),
			c.TotalAmount.Float(),
			c.InstallmentAmount.Float(),
			c.Paid,
			c.SettledAmount().Float(),
		})
	}
	return rows
}

func DebitRows(debits []core.DebitExpense) [][]any {
	rows := make([][]any, 0, len(debits)+1)
	rows = append(rows, []any{"ID", "Mes", "Data", "Descricao", "Valor"})
	for _, d := range debits {
		rows = append(rows, []any{d.ID, d.Month.String(), d.Date.String(), d.Description, d.Amount.Float()})
	}
	return rows
}

// ProjectionRows writes one row per month, labelled with the month name.
func ProjectionRows(balances []core.MonthlyBalance) [][]any {
	rows := make([][]any, 0, len(balances)+1)
	rows = append(rows, []any{"Mes", "Receitas", "Cartao Pago", "Debito", "Saldo"})
	for _, b := range balances {
		rows = append(rows, []any{
			b.Month.Label(),
			b.IncomesTotal.Float(),
			b.CardChargesPaidTotal.Float(),
			b.DebitsTotal.Float(),
			b.Balance.Float(),
		})
	}
	return rows
}

func installmentLabel(c core.CardCharge) string {
	return fmt.Sprintf("%d/%d", c.InstallmentIndex, c.InstallmentCount)
}
