package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/pkfinder/internal/colrange"
	"github.com/dbsmedya/pkfinder/internal/config"
	"github.com/dbsmedya/pkfinder/internal/finder"
	"github.com/dbsmedya/pkfinder/internal/interrupt"
	"github.com/dbsmedya/pkfinder/internal/logger"
	"github.com/dbsmedya/pkfinder/internal/report"
	"github.com/dbsmedya/pkfinder/internal/table"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Search a table for primary keys",
	Long: `Scan loads a worksheet, CSV file or SQL table and tests every combination
of up to --columns columns. Combinations whose values are distinct in every
row are reported as primary keys; supersets of a found key are skipped.

Press Ctrl-C to stop early: results found so far are still reported and the
command exits with status 2.

Examples:
  pkfinder scan orders.xlsx --worksheet Orders --columns 2
  pkfinder scan export.csv -r 1-4,7 -p 99.5 -s 3
  pkfinder scan --driver sqlite --dsn ./shop.db --table orders --output json`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scanSession bundles what every command needs to read one table.
type scanSession struct {
	cfg    *config.Config
	log    *logger.Logger
	source table.Source
	table  *table.Table
	runID  string
}

// openSession loads the configuration, starts the logger and chooses the
// source. The table itself is read by load.
func openSession(cmd *cobra.Command, args []string) (*scanSession, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	baseLog, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	// --verbose also surfaces the scan lifecycle logs unless a level was given.
	if cfg.Scan.Verbose && logLevel == "" && baseLog.Level() > zapcore.InfoLevel {
		baseLog.SetLevel(zapcore.InfoLevel)
	}
	runID := uuid.NewString()
	log := baseLog.WithScan(runID)

	source, err := table.NewSource(&cfg.Source, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &scanSession{cfg: cfg, log: log, source: source, runID: runID}, nil
}

func (s *scanSession) load(ctx context.Context) error {
	tbl, err := s.source.Load(ctx)
	if err != nil {
		return err
	}
	if s.cfg.Scan.BlankMissing {
		tbl = tbl.BlankMissing()
	}
	s.table = tbl
	s.log.Debugw("Table loaded", "table", tbl.Name(), "rows", tbl.Rows(), "columns", tbl.Cols())
	return nil
}

func (s *scanSession) Close() {
	_ = s.source.Close()
	_ = s.log.Sync()
}

func (s *scanSession) textOutput() bool {
	return s.cfg.Output.Format == report.FormatText || s.cfg.Output.Format == ""
}

// label names the input for the opening line.
func (s *scanSession) label() string {
	src := &s.cfg.Source
	if src.Kind == config.SourceSQL {
		if src.Table == "" {
			return fmt.Sprintf("%s database", src.Driver)
		}
		return fmt.Sprintf("%s table '%s'", src.Driver, src.Table)
	}
	return fmt.Sprintf("'%s'", src.Path)
}

// selection parses the configured column range into 0-based indices.
func (s *scanSession) selection() ([]int, error) {
	if s.cfg.Scan.Range == "" {
		return nil, nil
	}
	cols, err := colrange.Parse(s.cfg.Scan.Range, 1, s.table.Cols())
	if err != nil {
		return nil, err
	}
	return colrange.ToZeroBased(cols), nil
}

// options maps the scan configuration onto finder options.
func (s *scanSession) options() (finder.Options, error) {
	mode, err := finder.ParseMode(s.cfg.Scan.Sort)
	if err != nil {
		return finder.Options{}, err
	}
	return finder.Options{
		MaxColumns:             s.cfg.Scan.MaxColumns,
		Precision:              s.cfg.Scan.PrecisionRatio(),
		Mode:                   mode,
		Verbose:                s.cfg.Scan.Verbose,
		Workers:                s.cfg.Scan.Workers,
		Separator:              s.cfg.Scan.Separator,
		CountEmptyFingerprints: s.cfg.Scan.CountEmptyFingerprints,
	}, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	exitCode = exitOK
	out := cmd.OutOrStdout()

	session, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := interrupt.Notify(cmd.Context(), func(sig os.Signal) {
		session.log.Warnw("Received signal, finishing evaluations in flight", "signal", sig.String())
	})
	defer stop()

	opts, err := session.options()
	if err != nil {
		return err
	}

	var reporter finder.Reporter = finder.NopReporter{}
	var text *report.Text
	if session.textOutput() {
		text = report.NewText(out, report.TextOptions{
			Color:   session.cfg.Output.Color,
			Suggest: session.cfg.Scan.Suggest,
			Mode:    opts.Mode,
		})
		text.Opening(session.label())
		reporter = text
	}

	if err := session.load(ctx); err != nil {
		if ctx.Err() != nil {
			return interrupted(cmd)
		}
		return err
	}

	selection, err := session.selection()
	if err != nil {
		return err
	}

	engine, err := finder.NewEngine(session.table, opts, reporter, session.log)
	if err != nil {
		return err
	}

	plan, err := engine.Plan(ctx, selection)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(cmd)
		}
		return err
	}

	if text != nil {
		text.Header(report.Header{
			Source:       session.source.Describe(),
			Columns:      session.table.Cols(),
			Rows:         session.table.Rows(),
			Working:      plan.Working,
			Combinations: plan.Combinations,
			Estimated:    plan.Estimated,
			Verbose:      opts.Verbose && opts.Mode != finder.ModeProgress,
		})
	}

	res, err := engine.Scan(ctx, plan.Working)
	if err != nil {
		return err
	}

	if text == nil {
		doc := report.NewDocument(session.runID, session.source.Describe(), res)
		if err := report.Write(out, session.cfg.Output.Format, doc); err != nil {
			return err
		}
	}

	if res.Interrupted {
		return interrupted(cmd)
	}
	return nil
}

func interrupted(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "Process cancelled through user interaction.")
	exitCode = exitInterrupted
	return nil
}
