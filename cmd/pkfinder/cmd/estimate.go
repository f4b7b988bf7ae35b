package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pkfinder/internal/finder"
	"github.com/dbsmedya/pkfinder/internal/report"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [file]",
	Short: "Estimate the duration of a scan without running it",
	Long: `Estimate loads the table, counts the column combinations a scan would test
and times one evaluation to project the scan duration.

The estimate ignores keys found during the scan, so a real scan that prunes
supersets of found keys usually finishes sooner.

Example:
  pkfinder estimate orders.xlsx --worksheet 2 --columns 4`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	session, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx := cmd.Context()
	if err := session.load(ctx); err != nil {
		return err
	}

	opts, err := session.options()
	if err != nil {
		return err
	}
	selection, err := session.selection()
	if err != nil {
		return err
	}

	engine, err := finder.NewEngine(session.table, opts, nil, session.log)
	if err != nil {
		return err
	}
	plan, err := engine.Plan(ctx, selection)
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}

	cmd.Printf("Source:          %s\n", session.source.Describe())
	cmd.Printf("Rows:            %d\n", session.table.Rows())
	cmd.Printf("Columns:         %d (%d selected)\n", session.table.Cols(), len(plan.Working))
	cmd.Printf("Max columns:     %d\n", plan.MaxColumns)
	cmd.Printf("Combinations:    %d\n", plan.Combinations)
	cmd.Printf("Per combination: %s\n", plan.PerCombination)
	cmd.Printf("Workers:         %d\n", plan.Workers)
	cmd.Printf("Estimated:       %s\n", finder.FormatDuration(plan.Estimated, 2))

	if len(plan.Working) != session.table.Cols() {
		letters := make([]string, len(plan.Working))
		for i, idx := range plan.Working {
			letters[i] = report.ColumnLetter(idx + 1)
		}
		cmd.Printf("Selected:        %v\n", letters)
	}
	return nil
}
