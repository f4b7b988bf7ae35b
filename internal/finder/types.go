// Package finder searches a table for column combinations that identify
// every row uniquely (primary key candidates) and ranks near misses.
package finder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfiguration is returned when scan options are out of range.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// MaxSuggestions caps the number of ranked pseudo-keys reported.
const MaxSuggestions = 100

// Candidate is a strictly increasing set of 0-based column indices.
type Candidate []int

// Key returns a canonical string form such as "0,2,5".
func (c Candidate) Key() string {
	var b strings.Builder
	for i, col := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(col))
	}
	return b.String()
}

// Clone returns a copy that does not share the backing array.
func (c Candidate) Clone() Candidate {
	out := make(Candidate, len(c))
	copy(out, c)
	return out
}

// Contains reports whether every column of sub is present in c.
// Both must be sorted ascending.
func (c Candidate) Contains(sub Candidate) bool {
	if len(sub) > len(c) {
		return false
	}
	i := 0
	for _, col := range sub {
		for i < len(c) && c[i] < col {
			i++
		}
		if i == len(c) || c[i] != col {
			return false
		}
		i++
	}
	return true
}

// Mode selects when results are reported.
type Mode int

const (
	// ModeImmediateExact reports primary keys as soon as they are confirmed
	// and ranked pseudo-keys after the scan.
	ModeImmediateExact Mode = iota + 1
	// ModeImmediateAll reports every result as soon as it is classified.
	// Pseudo-keys cannot be ranked in this mode.
	ModeImmediateAll
	// ModeProgress reports progress during the scan and all results,
	// ranked, at the end.
	ModeProgress
)

func (m Mode) String() string {
	switch m {
	case ModeImmediateExact:
		return "immediate-exact"
	case ModeImmediateAll:
		return "immediate-all"
	case ModeProgress:
		return "progress"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps the numeric sort option (1, 2, 3) to a Mode.
func ParseMode(sort int) (Mode, error) {
	m := Mode(sort)
	switch m {
	case ModeImmediateExact, ModeImmediateAll, ModeProgress:
		return m, nil
	}
	return 0, fmt.Errorf("%w: sort must be 1, 2 or 3, got %d", ErrInvalidConfiguration, sort)
}

// Options configures a scan.
type Options struct {
	MaxColumns int     // K, clamped to the working column count
	Precision  float64 // pseudo-key threshold in [0,1]
	Mode       Mode
	Verbose    bool
	Workers    int    // 0 means one per CPU
	Separator  string // joins cell values inside a fingerprint

	// CountEmptyFingerprints counts rows whose fingerprint is empty as a
	// regular value instead of dropping them from the distinct count.
	CountEmptyFingerprints bool
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.MaxColumns < 1 {
		return fmt.Errorf("%w: max columns must be at least 1, got %d", ErrInvalidConfiguration, o.MaxColumns)
	}
	if o.Precision < 0 || o.Precision > 1 {
		return fmt.Errorf("%w: precision must be between 0 and 1, got %v", ErrInvalidConfiguration, o.Precision)
	}
	if _, err := ParseMode(int(o.Mode)); err != nil {
		return err
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}

// KeyResult is a reported primary key or pseudo-key.
type KeyResult struct {
	Columns   Candidate
	Names     []string
	Distinct  int
	Rows      int
	Ratio     float64
	Exact     bool
	Rank      int
	discovery int
}

// ScanResult summarizes a finished or interrupted scan. Its serialized
// form is report.Document.
type ScanResult struct {
	Table        string
	Rows         int
	Columns      int
	Working      []int
	MaxColumns   int
	Combinations int64
	Processed    int64
	Tested       int64
	Skipped      int64
	PrimaryKeys  []KeyResult
	PseudoKeys   []KeyResult
	PseudoCount  int
	Interrupted  bool
	Duration     time.Duration
}

// Reporter receives scan events. Which events arrive depends on the Mode.
type Reporter interface {
	// Testing is called for each candidate about to be evaluated (verbose only).
	Testing(c Candidate)
	// Skipping is called for a candidate that contains the found key by (verbose only).
	Skipping(c Candidate, by Candidate)
	// PrimaryKey reports a confirmed key. n is its 1-based number.
	PrimaryKey(n int, r KeyResult)
	// PseudoKey reports a suggestion. n is its 1-based number or rank.
	PseudoKey(n int, r KeyResult)
	// Progress reports processed out of total combinations.
	Progress(processed, total int64)
	// Summary is called once when the scan ends.
	Summary(res *ScanResult)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Testing(Candidate) {}
func (NopReporter) Skipping(Candidate, Candidate) {}
func (NopReporter) PrimaryKey(int, KeyResult) {}
func (NopReporter) PseudoKey(int, KeyResult) {}
func (NopReporter) Progress(int64, int64) {}
func (NopReporter) Summary(*ScanResult) {}
