package table

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dbsmedya/pkfinder/internal/logger"
)

// ExcelSource reads one worksheet of an xlsx or xlsm workbook. The first
// row is the header. Cells are read as their raw stored values.
type ExcelSource struct {
	path     string
	sheet    string
	resolved string
	logger   *logger.Logger
}

// NewExcelSource creates a workbook source. sheet is a worksheet name or a
// 1-based number; empty means the first worksheet and numbers below 1
// select the first worksheet.
func NewExcelSource(path, sheet string, log *logger.Logger) *ExcelSource {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ExcelSource{
		path:   path,
		sheet:  sheet,
		logger: log,
	}
}

// Describe implements Source.
func (s *ExcelSource) Describe() string {
	name := s.resolved
	if name == "" {
		name = s.sheet
	}
	return fmt.Sprintf("worksheet '%s'", name)
}

// Close implements Source.
func (s *ExcelSource) Close() error { return nil }

func (s *ExcelSource) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &UnavailableError{Kind: "file", Name: s.path, Err: err}
	}
	return f, nil
}

// Sheets lists the worksheet names in workbook order.
func (s *ExcelSource) Sheets(ctx context.Context) ([]string, error) {
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

// Load implements Source.
func (s *ExcelSource) Load(ctx context.Context) (*Table, error) {
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet, err := ResolveSheet(f.GetSheetList(), s.sheet)
	if err != nil {
		return nil, err
	}
	s.resolved = sheet

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var header []string
	var records [][]string
	if len(rows) > 0 {
		header, records = rows[0], rows[1:]
	}
	markMissing(records)

	s.logger.Debugw("Worksheet loaded",
		"path", s.path,
		"sheet", sheet,
		"columns", len(header),
		"rows", len(records),
	)
	return New(filepath.Base(s.path)+"/"+sheet, header, records), nil
}

// ResolveSheet selects a worksheet by 1-based number or by name. Names
// match exactly first, then case-insensitively.
func ResolveSheet(available []string, sel string) (string, error) {
	if len(available) == 0 {
		return "", &UnavailableError{Kind: "worksheet", Name: sel}
	}
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return available[0], nil
	}

	if n, err := strconv.Atoi(sel); err == nil {
		if n < 1 {
			n = 1
		}
		if n > len(available) {
			return "", &UnavailableError{Kind: "worksheet", Name: sel, Available: available}
		}
		return available[n-1], nil
	}

	for _, name := range available {
		if name == sel {
			return name, nil
		}
	}
	for _, name := range available {
		if strings.EqualFold(name, sel) {
			return name, nil
		}
	}
	return "", &UnavailableError{Kind: "worksheet", Name: sel, Available: available}
}
