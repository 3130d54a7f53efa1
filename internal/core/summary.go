package core

// MonthlyBalance is the net position of one month.
type MonthlyBalance struct {
	Month                MonthKey `json:"month"`
	IncomesTotal         Money    `json:"incomes_total"`
	CardChargesPaidTotal Money    `json:"card_charges_paid_total"`
	DebitsTotal          Money    `json:"debits_total"`
	Balance              Money    `json:"balance"`
}

// PaymentFeasibility says whether a month's paid card total fits in its
// balance and, if not, how many later months it takes to cover it.
type PaymentFeasibility struct {
	Month             MonthKey `json:"month"`
	CardTotalForMonth Money    `json:"card_total_for_month"`
	IncomesForMonth   Money    `json:"incomes_for_month"`
	AvailableBalance  Money    `json:"available_balance"`
	CanPay            bool     `json:"can_pay"`
	// MonthsUntilCoverable is 0 when CanPay is true.
	MonthsUntilCoverable int `json:"months_until_coverable"`
	// Covered is false when the future window ran out before the
	// accumulated balance reached the card total.
	Covered         bool    `json:"covered"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// StatementTotals groups every card charge's installment by issuer.
type StatementTotals struct {
	ByIssuer map[CardIssuer]Money `json:"by_issuer"`
	Cards    Money                `json:"cards"`
	Debits   Money                `json:"debits"`
	Overall  Money                `json:"overall"`
}
