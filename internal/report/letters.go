// Package report renders scan events and results as console text, JSON or
// YAML.
package report

import "github.com/dbsmedya/pkfinder/internal/finder"

// ColumnLetter converts a 1-based column number to spreadsheet letters
// (1 -> A, 26 -> Z, 27 -> AA). Numbers below 1 yield "".
func ColumnLetter(n int) string {
	var buf []byte
	for n > 0 {
		m := (n - 1) % 26
		buf = append([]byte{byte('A' + m)}, buf...)
		n = (n - m) / 26
	}
	return string(buf)
}

// Letters returns the spreadsheet letters of 0-based column indices.
func Letters(c finder.Candidate) []string {
	out := make([]string, len(c))
	for i, idx := range c {
		out[i] = ColumnLetter(idx + 1)
	}
	return out
}

// OneBased converts 0-based indices to 1-based column numbers.
func OneBased(c []int) []int {
	out := make([]int, len(c))
	for i, idx := range c {
		out[i] = idx + 1
	}
	return out
}
