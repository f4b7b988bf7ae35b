// Package colrange parses user column selections such as "1,3-5,9".
package colrange

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidRange is returned for malformed, out-of-bounds or empty
// selections.
var ErrInvalidRange = errors.New("invalid column range")

// RangeError describes the offending item of a selection.
type RangeError struct {
	Position int    // 1-based item position, 0 for the whole selection
	Token    string // the item as written, spaces removed
	Reason   string
}

func (e *RangeError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidRange, e.Reason)
	}
	return fmt.Sprintf("%s: item %d %q: %s", ErrInvalidRange, e.Position, e.Token, e.Reason)
}

// Unwrap returns ErrInvalidRange.
func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// Parse reads a comma-separated list of 1-based column numbers and
// inclusive ranges "a-b", validated against [min, max]. Whitespace is
// ignored and empty items are skipped. The result is sorted and free of
// duplicates; an empty result is an error.
func Parse(text string, min, max int) ([]int, error) {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	seen := make(map[int]struct{})
	for i, tok := range strings.Split(text, ",") {
		pos := i + 1
		switch {
		case tok == "":
			continue

		case isDigits(tok):
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &RangeError{Position: pos, Token: tok, Reason: "not an integer"}
			}
			if n < min || n > max {
				return nil, &RangeError{Position: pos, Token: tok, Reason: fmt.Sprintf("out of range [%d, %d]", min, max)}
			}
			seen[n] = struct{}{}

		case strings.Count(tok, "-") == 1:
			parts := strings.SplitN(tok, "-", 2)
			if !isDigits(parts[0]) || !isDigits(parts[1]) {
				return nil, &RangeError{Position: pos, Token: tok, Reason: "not a valid range"}
			}
			start, err1 := strconv.Atoi(parts[0])
			end, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				return nil, &RangeError{Position: pos, Token: tok, Reason: "not a valid range"}
			}
			if start < min {
				return nil, &RangeError{Position: pos, Token: tok, Reason: fmt.Sprintf("range start too low (minimum %d)", min)}
			}
			if end > max {
				return nil, &RangeError{Position: pos, Token: tok, Reason: fmt.Sprintf("range end too high (maximum %d)", max)}
			}
			if end < start {
				return nil, &RangeError{Position: pos, Token: tok, Reason: "range end before start"}
			}
			for n := start; n <= end; n++ {
				seen[n] = struct{}{}
			}

		default:
			return nil, &RangeError{Position: pos, Token: tok, Reason: "expected a number or a range"}
		}
	}

	if len(seen) == 0 {
		return nil, &RangeError{Reason: "no columns selected"}
	}

	cols := make([]int, 0, len(seen))
	for n := range seen {
		cols = append(cols, n)
	}
	sort.Ints(cols)
	return cols, nil
}

// ToZeroBased converts 1-based column numbers to 0-based indices.
func ToZeroBased(cols []int) []int {
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = c - 1
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
