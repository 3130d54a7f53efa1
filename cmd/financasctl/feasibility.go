package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"financas/internal/core"
)

func newFeasibilityCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feasibility",
		Short: "Check whether a month's card bill can be paid",
		Example: `  financasctl feasibility
  financasctl feasibility --month 2024-03 --months 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			monthFlag, _ := cmd.Flags().GetString("month")
			month := core.MonthKeyOf(time.Now())
			if monthFlag != "" {
				var err error
				if month, err = core.ParseMonthKey(monthFlag); err != nil {
					return err
				}
			}
			months, err := s.monthsFlag(cmd)
			if err != nil {
				return err
			}

			pf, err := s.ledger.Feasibility(cmd.Context(), month, months)
			if err != nil {
				return err
			}
			writeFeasibility(cmd.OutOrStdout(), pf)
			return nil
		},
	}
	cmd.Flags().String("month", "", "Month to check as YYYY-MM (default: current month)")
	cmd.Flags().Int("months", 0, "Following months to look ahead (default from PROJECTION_MONTHS)")
	return cmd
}

func writeFeasibility(w io.Writer, pf core.PaymentFeasibility) {
	fmt.Fprintf(w, "%s\n", pf.Month.Label())
	fmt.Fprintf(w, "  Cartão:           %s\n", pf.CardTotalForMonth)
	fmt.Fprintf(w, "  Receitas do mês:  %s\n", pf.IncomesForMonth)
	fmt.Fprintf(w, "  Saldo disponível: %s\n", pf.AvailableBalance)
	if pf.CanPay {
		fmt.Fprintln(w, "  Pode pagar: sim")
		return
	}
	fmt.Fprintln(w, "  Pode pagar: não")
	if pf.Covered {
		fmt.Fprintf(w, "  Coberto em %d meses\n", pf.MonthsUntilCoverable)
		return
	}
	fmt.Fprintf(w, "  Não coberto na janela (%.1f%%)\n", pf.CoveragePercent)
}
