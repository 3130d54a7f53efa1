package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"financas/internal/core"
)

func newBalancesCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print the monthly balance projection",
		Example: `  financasctl balances
  financasctl balances --months 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			months, err := s.monthsFlag(cmd)
			if err != nil {
				return err
			}
			balances, err := s.ledger.Balances(cmd.Context(), months)
			if err != nil {
				return err
			}
			return writeBalances(cmd.OutOrStdout(), balances)
		},
	}
	cmd.Flags().Int("months", 0, "Months to project, starting with the current one (default from PROJECTION_MONTHS)")
	return cmd
}

func writeBalances(w io.Writer, balances []core.MonthlyBalance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Mês\tReceitas\tCartão pago\tDébito\tSaldo\t")
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			b.Month.Label(), b.IncomesTotal, b.CardChargesPaidTotal, b.DebitsTotal, b.Balance)
	}
	return tw.Flush()
}
