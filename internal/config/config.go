// Package config provides configuration structures and loading for pkfinder.
package config

import "runtime"

// Config represents the complete application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// Source kinds.
const (
	SourceFile = "file"
	SourceSQL  = "sql"
)

// SourceConfig describes where the table is read from.
type SourceConfig struct {
	Kind      string `yaml:"kind" mapstructure:"kind"`           // file or sql
	Path      string `yaml:"path" mapstructure:"path"`           // .csv, .xlsx or .xlsm
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`         // worksheet name or 1-based number
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`   // CSV charset, e.g. windows-1252
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"` // CSV delimiter, sniffed when empty

	Driver   string `yaml:"driver" mapstructure:"driver"` // mysql, postgres, sqlite, sqlserver
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	Table    string `yaml:"table" mapstructure:"table"`
	TLS      string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
}

// ScanConfig holds the search parameters.
type ScanConfig struct {
	MaxColumns int     `yaml:"max_columns" mapstructure:"max_columns"`
	Precision  float64 `yaml:"precision" mapstructure:"precision"` // percent, 0-100
	Suggest    bool    `yaml:"suggest" mapstructure:"suggest"`
	Sort       int     `yaml:"sort" mapstructure:"sort"` // 1, 2 or 3
	Range      string  `yaml:"range" mapstructure:"range"`
	Verbose    bool    `yaml:"verbose" mapstructure:"verbose"`
	Workers    int     `yaml:"workers" mapstructure:"workers"`
	Separator  string  `yaml:"separator" mapstructure:"separator"`

	CountEmptyFingerprints bool `yaml:"count_empty_fingerprints" mapstructure:"count_empty_fingerprints"`
	// BlankMissing fingerprints missing cells as empty instead of "nan".
	BlankMissing           bool `yaml:"blank_missing" mapstructure:"blank_missing"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text, json or yaml
	Color  bool   `yaml:"color" mapstructure:"color"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:  SourceFile,
			Sheet: "1",
			Port:  3306,
			TLS:   "preferred",
		},
		Scan: ScanConfig{
			MaxColumns: 3,
			Precision:  99.9,
			Sort:       1,
			Workers:    runtime.NumCPU(),
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// PrecisionRatio returns the configured precision as a ratio in [0,1].
// Negative percentages are taken by absolute value.
func (s ScanConfig) PrecisionRatio() float64 {
	p := s.Precision
	if p < 0 {
		p = -p
	}
	return p / 100.0
}
