package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// An empty path yields the defaults. YAML files are supported and
// environment variables are substituted in credential fields.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		cfg := DefaultConfig()
		if err := substituteEnvVars(cfg); err != nil {
			return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	cfg.Source.Path = expandEnvVar(cfg.Source.Path)
	cfg.Source.DSN = expandEnvVar(cfg.Source.DSN)
	cfg.Source.Host = expandEnvVar(cfg.Source.Host)
	cfg.Source.User = expandEnvVar(cfg.Source.User)
	cfg.Source.Password = expandEnvVar(cfg.Source.Password)
	cfg.Source.Database = expandEnvVar(cfg.Source.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// Overrides carries CLI flag values that take precedence over the file.
// Zero values are ignored, except Precision which is applied when
// PrecisionSet is true so that 0% stays expressible.
type Overrides struct {
	LogLevel  string
	LogFormat string

	Path      string
	Sheet     string
	Encoding  string
	Delimiter string
	Driver    string
	DSN       string
	Table     string

	MaxColumns    int
	MaxColumnsSet bool
	Precision     float64
	PrecisionSet  bool
	Sort          int
	SortSet       bool
	Range         string
	Verbose       bool
	Workers       int
	Separator     string
	CountEmpty    bool
	BlankMissing  bool

	OutputFormat string
	NoColor      bool
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied, except for the fields whose
// *Set companion marks an explicitly given flag.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}

	if o.Path != "" {
		c.Source.Path = o.Path
		c.Source.Kind = SourceFile
	}
	if o.Sheet != "" {
		c.Source.Sheet = o.Sheet
	}
	if o.Encoding != "" {
		c.Source.Encoding = o.Encoding
	}
	if o.Delimiter != "" {
		c.Source.Delimiter = o.Delimiter
	}
	if o.Driver != "" {
		c.Source.Driver = o.Driver
		c.Source.Kind = SourceSQL
	}
	if o.DSN != "" {
		c.Source.DSN = o.DSN
	}
	if o.Table != "" {
		c.Source.Table = o.Table
	}

	if o.MaxColumnsSet || o.MaxColumns != 0 {
		c.Scan.MaxColumns = o.MaxColumns
	}
	if o.PrecisionSet {
		c.Scan.Precision = o.Precision
		c.Scan.Suggest = true
	}
	if o.SortSet || o.Sort != 0 {
		c.Scan.Sort = o.Sort
	}
	if o.Range != "" {
		c.Scan.Range = o.Range
	}
	if o.Verbose {
		c.Scan.Verbose = true
	}
	if o.Workers > 0 {
		c.Scan.Workers = o.Workers
	}
	if o.Separator != "" {
		c.Scan.Separator = o.Separator
	}
	if o.CountEmpty {
		c.Scan.CountEmptyFingerprints = true
	}
	if o.BlankMissing {
		c.Scan.BlankMissing = true
	}

	if o.OutputFormat != "" {
		c.Output.Format = o.OutputFormat
	}
	if o.NoColor {
		c.Output.Color = false
	}
}
