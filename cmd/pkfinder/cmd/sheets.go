package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pkfinder/internal/report"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets [file]",
	Short: "List the worksheets of a workbook or the tables of a database",
	Long: `Sheets lists what --worksheet (or --table for SQL sources) can select,
numbered from 1 in source order.

Examples:
  pkfinder sheets orders.xlsx
  pkfinder sheets --driver postgres --dsn "$PG_DSN"`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runSheets,
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}

func runSheets(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer session.Close()

	names, err := session.source.Sheets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sheets: %w", err)
	}

	if len(names) == 0 {
		cmd.Printf("No sheets found in %s\n", session.label())
		return nil
	}

	text := report.NewText(cmd.OutOrStdout(), report.TextOptions{Color: session.cfg.Output.Color})
	text.Sheets(session.label(), names)
	return nil
}
