package statement

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/locvowork/billgen/internal/domain"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// OpenSheet opens the first worksheet of the statement at path.
func OpenSheet(path string) (domain.Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer file.Close()

	return ReadSheet(file, filepath.Ext(path))
}

// ReadSheet opens the first worksheet of a statement read from r. ext picks
// the format: ".xls" for legacy workbooks, anything else for OOXML.
func ReadSheet(r io.Reader, ext string) (domain.Sheet, error) {
	if strings.EqualFold(ext, ".xls") {
		return readXLS(r)
	}
	return readXLSX(r)
}

// ==================== OOXML (.xlsx/.xlsm) ====================

type xlsxSheet struct {
	file *excelize.File
	name string
	rows [][]string
}

func readXLSX(r io.Reader) (*xlsxSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement workbook: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("statement workbook has no sheets")
	}

	// Raw values keep numbers free of display formatting (4043 rather than
	// "4 043,00 ₽"); formulas yield their cached results.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading statement rows: %w", err)
	}

	return &xlsxSheet{file: f, name: sheets[0], rows: rows}, nil
}

func (s *xlsxSheet) Row(n int) []string {
	if n < 1 || n > len(s.rows) {
		return nil
	}
	return s.rows[n-1]
}

func (s *xlsxSheet) Cell(ref string) (string, error) {
	v, err := s.file.GetCellValue(s.name, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("reading cell %s: %w", ref, err)
	}
	return v, nil
}

func (s *xlsxSheet) Close() error {
	return s.file.Close()
}

// ==================== legacy BIFF (.xls) ====================

type xlsSheet struct {
	sheet *xls.WorkSheet
}

func readXLS(r io.Reader) (*xlsSheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement workbook: %w", err)
	}

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("reading statement workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("statement workbook has no sheets")
	}
	return &xlsSheet{sheet: sheet}, nil
}

func (s *xlsSheet) Row(n int) []string {
	if n < 1 || n > int(s.sheet.MaxRow)+1 {
		return nil
	}
	row := s.sheet.Row(n - 1)
	if row == nil {
		return nil
	}
	cells := make([]string, row.LastCol())
	for i := range cells {
		cells[i] = toUTF8(row.Col(i))
	}
	return cells
}

func (s *xlsSheet) Cell(ref string) (string, error) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return "", fmt.Errorf("reading cell %s: %w", ref, err)
	}
	cells := s.Row(row)
	if col > len(cells) {
		return "", nil
	}
	return cells[col-1], nil
}

func (s *xlsSheet) Close() error { return nil }

// toUTF8 decodes text from BIFF5 workbooks written with the Cyrillic code
// page; BIFF8 text is already valid UTF-8.
func toUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.Windows1251.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
