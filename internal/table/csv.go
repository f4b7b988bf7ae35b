package table

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dbsmedya/pkfinder/internal/logger"
)

const (
	sniffBytes = 64 * 1024
	sniffLines = 20
	pollRows   = 4096
)

// DelimiterCandidates are tried in order when no delimiter is configured.
var DelimiterCandidates = []rune{',', ';', '\t', '|'}

// CSVSource reads a delimited text file. The first record is the header.
type CSVSource struct {
	path      string
	encoding  string
	delimiter string
	logger    *logger.Logger
}

// NewCSVSource creates a CSV source. An empty encoding means UTF-8 and an
// empty delimiter is sniffed from the first lines of the file.
func NewCSVSource(path, encoding, delimiter string, log *logger.Logger) *CSVSource {
	if log == nil {
		log = logger.NewDefault()
	}
	return &CSVSource{
		path:      path,
		encoding:  encoding,
		delimiter: delimiter,
		logger:    log,
	}
}

// Describe implements Source.
func (s *CSVSource) Describe() string {
	return fmt.Sprintf("file '%s'", filepath.Base(s.path))
}

// Sheets returns the file name; a CSV file holds a single table.
func (s *CSVSource) Sheets(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, &UnavailableError{Kind: "file", Name: s.path, Err: err}
	}
	return []string{filepath.Base(s.path)}, nil
}

// Close implements Source.
func (s *CSVSource) Close() error { return nil }

// Load implements Source.
func (s *CSVSource) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &UnavailableError{Kind: "file", Name: s.path, Err: err}
	}
	defer func() { _ = f.Close() }()

	decoded, err := decodeReader(f, s.encoding)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(decoded, sniffBytes)

	comma, err := s.comma(br)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(br)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return New(filepath.Base(s.path), nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		if len(records)%pollRows == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		records = append(records, rec)
	}
	markMissing(records)

	s.logger.Debugw("CSV loaded",
		"path", s.path,
		"delimiter", string(comma),
		"encoding", s.encoding,
		"columns", len(header),
		"rows", len(records),
	)
	return New(filepath.Base(s.path), header, records), nil
}

func (s *CSVSource) comma(br *bufio.Reader) (rune, error) {
	if s.delimiter != "" {
		d, _ := utf8.DecodeRuneInString(s.delimiter)
		if d == utf8.RuneError || d == '"' || d == '\r' || d == '\n' {
			return 0, fmt.Errorf("invalid CSV delimiter %q", s.delimiter)
		}
		return d, nil
	}
	sample, err := br.Peek(sniffBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("failed to read CSV sample: %w", err)
	}
	return SniffDelimiter(sample, len(sample) == sniffBytes), nil
}

// decodeReader wraps r so a byte order mark selects UTF-8 or UTF-16 and is
// dropped; otherwise the named charset (or UTF-8 when empty) is decoded.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	var fallback transform.Transformer = transform.Nop
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", charset, err)
		}
		fallback = enc.NewDecoder()
	}
	return transform.NewReader(r, unicode.BOMOverride(fallback)), nil
}

// SniffDelimiter picks the candidate that splits the sample lines into the
// same number of fields most consistently, preferring more fields. If the
// sample was cut short its last line is ignored. The default is ','.
func SniffDelimiter(sample []byte, truncated bool) rune {
	lines := bytes.Split(sample, []byte("\n"))
	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}

	var use [][]byte
	for _, l := range lines {
		l = bytes.TrimRight(l, "\r")
		if len(bytes.TrimSpace(l)) == 0 {
			continue
		}
		use = append(use, l)
		if len(use) == sniffLines {
			break
		}
	}
	if len(use) == 0 {
		return ','
	}

	best, bestScore := ',', 0
	for _, d := range DelimiterCandidates {
		first := countOutsideQuotes(use[0], d)
		if first == 0 {
			continue
		}
		score := first
		consistent := true
		for _, l := range use[1:] {
			if countOutsideQuotes(l, d) != first {
				consistent = false
				break
			}
		}
		if consistent {
			score += 1 << 20
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func countOutsideQuotes(line []byte, d rune) int {
	n := 0
	quoted := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
