package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export-xlsx <out.xlsx>",
		Short:   "Write the balance projection and this month's bill check to a workbook",
		Example: `  financasctl export-xlsx projecao.xlsx --months 12`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			months, err := s.monthsFlag(cmd)
			if err != nil {
				return err
			}
			b, err := s.ledger.ProjectionReport(cmd.Context(), time.Now(), months)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], b, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Int("months", 0, "Months to project (default from PROJECTION_MONTHS)")
	return cmd
}
