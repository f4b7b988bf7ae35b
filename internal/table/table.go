// Package table loads tabular sources (CSV, xlsx workbooks, SQL tables) into
// an immutable column-major grid of canonical cell strings.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInputUnavailable is returned when a file, worksheet or SQL table cannot
// be found or opened.
var ErrInputUnavailable = errors.New("input unavailable")

// UnavailableError describes a missing input and, when known, the names
// that are available instead.
type UnavailableError struct {
	Kind      string // file, worksheet or table
	Name      string
	Available []string
	Err       error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("%s %q does not exist", e.Kind, e.Name)
	if e.Err != nil {
		msg = fmt.Sprintf("could not open %s %q: %v", e.Kind, e.Name, e.Err)
	}
	if len(e.Available) > 0 {
		msg += " (available: " + strings.Join(e.Available, ", ") + ")"
	}
	return msg
}

// Unwrap lets errors.Is match both ErrInputUnavailable and the cause.
func (e *UnavailableError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInputUnavailable, e.Err}
	}
	return []error{ErrInputUnavailable}
}

// Table is a loaded table. Cells are stored column-major as canonical
// strings and never change after construction.
type Table struct {
	name  string
	names []string
	cols  [][]string
	rows  int
}

// New builds a table from a header and row-major records. Records shorter
// than the header are padded with Missing cells; records longer than the
// header add unnamed columns. Header names are normalized with
// NormalizeHeader.
func New(name string, header []string, records [][]string) *Table {
	width := len(header)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	names := make([]string, width)
	copy(names, header)
	names = NormalizeHeader(names)

	cols := make([][]string, width)
	for c := range cols {
		cols[c] = make([]string, len(records))
	}
	for r, rec := range records {
		for c := range cols {
			if c < len(rec) {
				cols[c][r] = rec[c]
			} else {
				cols[c][r] = Missing
			}
		}
	}

	return &Table{
		name:  name,
		names: names,
		cols:  cols,
		rows:  len(records),
	}
}

// NormalizeHeader replaces empty names with "Unnamed: <i>" (0-based) and
// suffixes repeated names with ".1", ".2" and so on, skipping suffixes that
// would collide with a name already in use.
func NormalizeHeader(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	next := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[n] {
			base := n
			for {
				next[base]++
				n = fmt.Sprintf("%s.%d", base, next[base])
				if !used[n] {
					break
				}
			}
		}
		used[n] = true
		out[i] = n
	}
	return out
}

// markMissing replaces blank file cells with Missing in place.
func markMissing(records [][]string) {
	for _, rec := range records {
		for i, v := range rec {
			if v == "" {
				rec[i] = Missing
			}
		}
	}
}

// BlankMissing returns a copy of t in which Missing cells are empty, so
// they take no part in fingerprints.
func (t *Table) BlankMissing() *Table {
	cols := make([][]string, len(t.cols))
	for c, col := range t.cols {
		out := make([]string, len(col))
		for r, v := range col {
			if v != Missing {
				out[r] = v
			}
		}
		cols[c] = out
	}
	return &Table{name: t.name, names: t.names, cols: cols, rows: t.rows}
}

func (t *Table) Name() string { return t.name }

// Rows returns the number of data rows, excluding the header.
func (t *Table) Rows() int { return t.rows }

// Cols returns the number of columns.
func (t *Table) Cols() int { return len(t.cols) }

// ColumnNames returns the header names in column order.
func (t *Table) ColumnNames() []string { return t.names }

// Column returns the canonical cells of column i. Callers must not modify it.
func (t *Table) Column(i int) []string { return t.cols[i] }
