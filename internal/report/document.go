package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/pkfinder/internal/finder"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// KeyRecord is the serialized form of a primary key or suggestion.
// Column numbers are 1-based.
type KeyRecord struct {
	Rank     int      `json:"rank" yaml:"rank"`
	Columns  []int    `json:"columns" yaml:"columns"`
	Names    []string `json:"names" yaml:"names"`
	Letters  []string `json:"letters" yaml:"letters"`
	Distinct int      `json:"distinct" yaml:"distinct"`
	Rows     int      `json:"rows" yaml:"rows"`
	Ratio    float64  `json:"ratio" yaml:"ratio"`
	Exact    bool     `json:"exact" yaml:"exact"`
}

// Document is the structured scan report.
type Document struct {
	RunID           string      `json:"run_id" yaml:"run_id"`
	Source          string      `json:"source" yaml:"source"`
	Table           string      `json:"table" yaml:"table"`
	Rows            int         `json:"rows" yaml:"rows"`
	Columns         int         `json:"columns" yaml:"columns"`
	Working         []int       `json:"working_columns" yaml:"working_columns"`
	MaxColumns      int         `json:"max_columns" yaml:"max_columns"`
	Combinations    int64       `json:"combinations" yaml:"combinations"`
	Processed       int64       `json:"processed" yaml:"processed"`
	Tested          int64       `json:"tested" yaml:"tested"`
	Skipped         int64       `json:"skipped" yaml:"skipped"`
	PrimaryKeys     []KeyRecord `json:"primary_keys" yaml:"primary_keys"`
	Suggestions     []KeyRecord `json:"suggestions" yaml:"suggestions"`
	SuggestionCount int         `json:"suggestion_count" yaml:"suggestion_count"`
	Interrupted     bool        `json:"interrupted" yaml:"interrupted"`
	DurationSeconds float64     `json:"duration_seconds" yaml:"duration_seconds"`
}

// NewDocument converts a scan result for serialization.
func NewDocument(runID, source string, res *finder.ScanResult) *Document {
	return &Document{
		RunID:           runID,
		Source:          source,
		Table:           res.Table,
		Rows:            res.Rows,
		Columns:         res.Columns,
		Working:         OneBased(res.Working),
		MaxColumns:      res.MaxColumns,
		Combinations:    res.Combinations,
		Processed:       res.Processed,
		Tested:          res.Tested,
		Skipped:         res.Skipped,
		PrimaryKeys:     records(res.PrimaryKeys),
		Suggestions:     records(res.PseudoKeys),
		SuggestionCount: res.PseudoCount,
		Interrupted:     res.Interrupted,
		DurationSeconds: res.Duration.Seconds(),
	}
}

func records(in []finder.KeyResult) []KeyRecord {
	out := make([]KeyRecord, len(in))
	for i, r := range in {
		out[i] = KeyRecord{
			Rank:     r.Rank,
			Columns:  OneBased(r.Columns),
			Names:    r.Names,
			Letters:  Letters(r.Columns),
			Distinct: r.Distinct,
			Rows:     r.Rows,
			Ratio:    r.Ratio,
			Exact:    r.Exact,
		}
	}
	return out
}

// Write serializes doc in the given format (json or yaml).
func Write(w io.Writer, format string, doc *Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
