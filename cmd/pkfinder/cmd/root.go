package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pkfinder/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 2
)

// exitCode is raised by commands that finish without error but must not
// report success, e.g. an interrupted scan.
var exitCode = exitOK

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string

	worksheet  string
	colRange   string
	maxColumns int
	precision  float64
	sortMode   int
	verbose    bool
	workers    int
	separator  string
	countEmpty bool
	blankMiss  bool

	encoding  string
	delimiter string
	driver    string
	dsn       string
	tableName string

	outputFormat string
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "pkfinder",
	Short: "Primary key finder for spreadsheets, CSV files and SQL tables",
	Long: `Finds the columns, or combinations of up to --columns columns, whose
values identify every row of a table uniquely.

When no combination qualifies, pseudo-primary-keys are suggested: combinations
where at least --precision percent of the rows are distinct.

Sources:
  - CSV/TSV files (delimiter sniffed, --encoding for legacy charsets)
  - Excel workbooks (.xlsx, .xlsm), --worksheet by name or number
  - SQL tables via --driver mysql|postgres|sqlite|sqlserver --dsn ... --table ...

Every scan parameter can be abbreviated with one dash and its first letter.`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitError)
	}
	if exitCode != exitOK {
		os.Exit(exitCode)
	}
}

func init() {
	// Config file flag; -c is taken by --columns
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to an optional configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Scan parameters
	rootCmd.PersistentFlags().StringVarP(&worksheet, "worksheet", "w", "",
		"Worksheet name or 1-based number (default: first worksheet)")
	rootCmd.PersistentFlags().StringVarP(&colRange, "range", "r", "",
		"Columns to scan, e.g. 1,3,5-9 (1-based)")
	rootCmd.PersistentFlags().IntVarP(&maxColumns, "columns", "c", 0,
		"Maximum number of columns combined into one key (default 3)")
	rootCmd.PersistentFlags().Float64VarP(&precision, "precision", "p", 0,
		"Suggest pseudo-primary-keys with at least this percentage of distinct rows")
	rootCmd.PersistentFlags().IntVarP(&sortMode, "sort", "s", 0,
		"Result order: 1 keys immediately, 2 everything immediately, 3 progress bar")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Print every tested column combination (ignored with --sort 3)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Number of parallel evaluations (default: one per CPU)")
	rootCmd.PersistentFlags().StringVar(&separator, "separator", "",
		"String placed between cell values when combining columns")
	rootCmd.PersistentFlags().BoolVar(&countEmpty, "count-empty", false,
		"Count rows with only empty cells as a regular value")
	rootCmd.PersistentFlags().BoolVar(&blankMiss, "blank-missing", false,
		"Treat missing cells as empty instead of the distinct value nan")

	// Source overrides
	rootCmd.PersistentFlags().StringVar(&encoding, "encoding", "",
		"CSV character set, e.g. windows-1252 (default utf-8)")
	rootCmd.PersistentFlags().StringVar(&delimiter, "delimiter", "",
		"CSV delimiter (sniffed when empty)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "",
		"Read a SQL table through this driver (mysql, postgres, sqlite, sqlserver)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "",
		"Data source name for --driver")
	rootCmd.PersistentFlags().StringVar(&tableName, "table", "",
		"SQL table to scan")

	// Output
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"Output format (text, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// flagChanged reports whether the named flag was given on the command line.
func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// GetCLIOverrides returns the CLI flag override values. Numeric flags whose
// zero value is meaningful are marked as set only when given, so that an
// explicit 0 reaches validation.
func GetCLIOverrides(cmd *cobra.Command) config.Overrides {
	return config.Overrides{
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		Sheet:         worksheet,
		Encoding:      encoding,
		Delimiter:     delimiter,
		Driver:        driver,
		DSN:           dsn,
		Table:         tableName,
		MaxColumns:    maxColumns,
		MaxColumnsSet: flagChanged(cmd, "columns"),
		Precision:     precision,
		PrecisionSet:  flagChanged(cmd, "precision"),
		Sort:          sortMode,
		SortSet:       flagChanged(cmd, "sort"),
		Range:         colRange,
		Verbose:       verbose,
		Workers:       workers,
		Separator:     separator,
		CountEmpty:    countEmpty,
		BlankMissing:  blankMiss,
		OutputFormat:  outputFormat,
		NoColor:       noColor,
	}
}

// loadConfig loads the configuration file, applies flag overrides and the
// optional positional file argument, and validates the result.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides(cmd)
	if len(args) > 0 {
		overrides.Path = args[0]
	}
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
