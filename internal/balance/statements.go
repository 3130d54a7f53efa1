package balance

import "financas/internal/core"

// SummarizeStatements totals installment amounts per card issuer across all
// charges, regardless of month or paid state, plus the debit total.
func SummarizeStatements(s core.Snapshot) core.StatementTotals {
	st := core.StatementTotals{ByIssuer: make(map[core.CardIssuer]core.Money, len(core.Issuers()))}
	for _, issuer := range core.Issuers() {
		st.ByIssuer[issuer] = core.Money{}
	}
	for _, c := range s.Charges {
		issuer := core.IssuerOf(c)
		st.ByIssuer[issuer] = st.ByIssuer[issuer].Add(c.InstallmentAmount)
		st.Cards = st.Cards.Add(c.InstallmentAmount)
	}
	for _, d := range s.Debits {
		st.Debits = st.Debits.Add(d.Amount)
	}
	st.Overall = st.Cards.Add(st.Debits)
	return st
}
