package balance

import (
	"github.com/shopspring/decimal"

	"financas/internal/core"
)

var hundred = decimal.NewFromInt(100)

// EvaluatePaymentFeasibility decides whether month's paid card total can be
// paid from its own balance. When it cannot, the balances of the months in
// futureMonths that come strictly after month are accumulated, in the order
// given, until they cover the card total.
func EvaluatePaymentFeasibility(month core.MonthKey, s core.Snapshot, futureMonths []core.MonthKey) core.PaymentFeasibility {
	mb := ComputeMonthlyBalance(month, s)
	pf := core.PaymentFeasibility{
		Month:             month,
		CardTotalForMonth: mb.CardChargesPaidTotal,
		IncomesForMonth:   mb.IncomesTotal,
		AvailableBalance:  mb.Balance,
		CanPay:            mb.Balance.Cents >= 0,
		CoveragePercent:   coveragePercent(mb.CardChargesPaidTotal, mb.IncomesTotal),
	}

	if pf.CanPay || pf.CardTotalForMonth.Cents <= 0 {
		pf.Covered = true
		return pf
	}

	accumulated := pf.AvailableBalance
	for _, fm := range futureMonths {
		if fm <= month {
			continue
		}
		accumulated = accumulated.Add(ComputeMonthlyBalance(fm, s).Balance)
		pf.MonthsUntilCoverable++
		if accumulated.Cents >= pf.CardTotalForMonth.Cents {
			pf.Covered = true
			break
		}
	}
	return pf
}

// coveragePercent is the card total as a percentage of incomes, 0 when
// there are no incomes.
func coveragePercent(card, incomes core.Money) float64 {
	if incomes.Cents <= 0 {
		return 0
	}
	return card.Decimal().Div(incomes.Decimal()).Mul(hundred).InexactFloat64()
}
