package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/pkfinder/internal/finder"
)

// MaxNameWidth is the display width column names are truncated to.
const MaxNameWidth = 48

// TextOptions configures the console reporter.
type TextOptions struct {
	Color bool
	// Suggest shows deferred suggestions even when primary keys were found.
	Suggest bool
	Mode    finder.Mode
}

// Header describes the scan about to start.
type Header struct {
	Source       string // e.g. "worksheet 'Sheet1'"
	Columns      int
	Rows         int
	Working      []int // 0-based
	Combinations int64
	Estimated    time.Duration
	Verbose      bool
}

// Text writes human-readable results. It implements finder.Reporter and
// must be driven from a single goroutine.
type Text struct {
	w    io.Writer
	opts TextOptions

	heading  color.Style
	accent   color.Style
	warning  color.Style
	keys     int
	withheld int  // deferred suggestions not printed
	inflight bool // a progress line without trailing newline is on screen
}

// NewText creates a console reporter writing to w.
func NewText(w io.Writer, opts TextOptions) *Text {
	return &Text{
		w:       w,
		opts:    opts,
		heading: color.New(color.FgGreen, color.OpBold),
		accent:  color.New(color.FgCyan),
		warning: color.New(color.FgYellow),
	}
}

func (t *Text) paint(s color.Style, text string) string {
	if !t.opts.Color {
		return text
	}
	return s.Sprint(text)
}

func (t *Text) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.w, format, args...)
}

// endProgress terminates an open progress line.
func (t *Text) endProgress() {
	if t.inflight {
		t.printf("\n\n")
		t.inflight = false
	}
}

// Opening announces the input being read.
func (t *Text) Opening(name string) {
	t.printf("Opening %s ...\n", name)
}

// Header prints the scan description and the duration estimate.
func (t *Text) Header(h Header) {
	if len(h.Working) == h.Columns {
		t.printf("Scanning %s with %d columns and %d rows ...\n", h.Source, h.Columns, h.Rows)
	} else {
		t.printf("Scanning %s with %d (%d selected) columns and %d rows ...\n", h.Source, h.Columns, len(h.Working), h.Rows)
	}
	if h.Verbose {
		cols := make([]string, len(h.Working))
		for i, idx := range h.Working {
			cols[i] = fmt.Sprintf("%d(%s)", idx+1, ColumnLetter(idx+1))
		}
		t.printf("Columns to test: %s\n", strings.Join(cols, ", "))
	}
	t.printf("Testing %d primary keys ...\n", h.Combinations)
	t.printf("Expected scan duration ~ %s\n", finder.FormatDuration(h.Estimated, 0))
	t.printf("Starting scan...\n\n")
}

// Testing implements finder.Reporter.
func (t *Text) Testing(c finder.Candidate) {
	t.printf("Testing column(s):  %s\n", joinInts(OneBased(c), " + "))
}

// Skipping implements finder.Reporter.
func (t *Text) Skipping(c, by finder.Candidate) {
	t.printf("Skipping column(s):  %s because found %s already before\n",
		joinInts(OneBased(c), " + "), joinInts(OneBased(by), " + "))
}

// PrimaryKey implements finder.Reporter.
func (t *Text) PrimaryKey(n int, r finder.KeyResult) {
	t.endProgress()
	t.keys++
	t.printf("%s\n", t.paint(t.heading, fmt.Sprintf("Primary Key #%d:", n)))
	t.key(r)
}

// PseudoKey implements finder.Reporter. Suggestions delivered after the
// scan are shown only when suggestions were requested or no primary key
// was found.
func (t *Text) PseudoKey(n int, r finder.KeyResult) {
	if t.opts.Mode != finder.ModeImmediateAll && !t.opts.Suggest && t.keys > 0 {
		t.withheld++
		return
	}
	t.endProgress()
	t.printf("%s\n", t.paint(t.accent, fmt.Sprintf(
		"Suggestion #%d (NOT a primary key, but %s%% of items are unique)", n, Percent(r.Ratio))))
	t.key(r)
}

func (t *Text) key(r finder.KeyResult) {
	names := make([]string, len(r.Names))
	for i, n := range r.Names {
		names[i] = runewidth.Truncate(n, MaxNameWidth, "...")
	}
	t.printf(" Columnname:\t'%s'\n", strings.Join(names, "'  +  '"))
	t.printf(" Columnindex:\t%s\n", joinInts(OneBased(r.Columns), " + "))
	t.printf(" Columnletter:\t%s\n\n", strings.Join(Letters(r.Columns), " + "))
}

// Progress implements finder.Reporter.
func (t *Text) Progress(processed, total int64) {
	t.printf("\r%s", ProgressBar(processed, total))
	t.inflight = true
	if processed >= total {
		t.endProgress()
	}
}

// Summary implements finder.Reporter.
func (t *Text) Summary(res *finder.ScanResult) {
	t.endProgress()
	if res.Interrupted {
		t.printf("%s\n", t.paint(t.warning, fmt.Sprintf(
			"Scan interrupted after %d of %d combinations.", res.Processed, res.Combinations)))
	}
	if len(res.PrimaryKeys) == 0 {
		t.printf("No primary key found.\n\n")
	}
	t.printf("%s for %d primary key(s) and %d suggestion(s)\n",
		finder.FormatDuration(res.Duration, 2), len(res.PrimaryKeys), res.PseudoCount)
	if t.withheld > 0 {
		t.printf("%d suggestion(s) not shown because a primary key was found; pass --precision to list them\n",
			t.withheld)
	}
}

// Sheets lists worksheet or table names with 1-based numbers.
func (t *Text) Sheets(source string, names []string) {
	t.printf("%s has the following %s:\n", source, plural(len(names), "entry", "entries"))
	width := len(strconv.Itoa(len(names)))
	for i, n := range names {
		t.printf(" %s  %s\n", runewidth.FillLeft(strconv.Itoa(i+1)+":", width+1), n)
	}
}

// Percent formats a ratio as a percentage with up to 8 decimals.
func Percent(ratio float64) string {
	p := math.Round(ratio*100*1e8) / 1e8
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func joinInts(vals []int, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var _ finder.Reporter = (*Text)(nil)
