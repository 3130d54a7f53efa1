package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"financas/internal/importer"
)

func newImportCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace every card charge with the ones in a statement CSV",
		Long: `Reads a card statement export with date, title and amount columns and
replaces all stored card charges with its rows. Rows that cannot be read
are listed and skipped. A file that yields no charge leaves the ledger
untouched.`,
		Example: `  financasctl import fatura.csv
  financasctl import fatura.csv --charset latin1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			charset, _ := cmd.Flags().GetString("charset")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			content, err := importer.Decode(f, charset)
			if err != nil {
				return err
			}
			res, err := s.ledger.ImportChargesCSV(cmd.Context(), content)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d charges\n", len(res.Charges))
			for _, sk := range res.Skipped {
				fmt.Fprintf(out, "  skipped row %d: %s\n", sk.Row, sk.Reason)
			}
			return nil
		},
	}
	cmd.Flags().String("charset", "", "File encoding: utf-8 (default), latin1 or windows-1252")
	return cmd
}
