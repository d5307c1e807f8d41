package xltemplate

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// template.go - loading a workbook template and filling {%token%} placeholders

// tokenPattern matches a placeholder such as {%номер%}.
var tokenPattern = regexp.MustCompile(`\{%[^{}%]+%\}`)

// Template is a workbook whose cells contain {%token%} placeholders. The
// original bytes are kept so every fill starts from an untouched copy.
type Template struct {
	data   []byte
	sheets []string
	tokens []string
}

// Load reads a template workbook from a file.
func Load(path string) (*Template, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening template file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader reads a template workbook from r and checks that it opens.
func LoadFromReader(r io.Reader) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	t := &Template{data: data}
	f, err := t.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t.sheets = f.GetSheetList()
	if len(t.sheets) == 0 {
		return nil, fmt.Errorf("template has no sheets")
	}

	seen := make(map[string]bool)
	err = t.eachCell(f, func(sheet, cell, text string) error {
		for _, tok := range tokenPattern.FindAllString(text, -1) {
			if !seen[tok] {
				seen[tok] = true
				t.tokens = append(t.tokens, tok)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(t.tokens)

	return t, nil
}

// Sheets lists the template's sheet names.
func (t *Template) Sheets() []string {
	return append([]string(nil), t.sheets...)
}

// Tokens lists the distinct placeholders found in the template's cells and
// formulas, sorted.
func (t *Template) Tokens() []string {
	return append([]string(nil), t.tokens...)
}

func (t *Template) open() (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(t.data))
	if err != nil {
		return nil, fmt.Errorf("parsing template workbook: %w", err)
	}
	return f, nil
}

// eachCell calls fn for every cell value and every formula that contains a
// placeholder opening. Text is NFC-normalized so decomposed letters typed
// into the template still match.
func (t *Template) eachCell(f *excelize.File, fn func(sheet, cell, text string) error) error {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("reading sheet %s: %w", sheet, err)
		}

		for r, row := range rows {
			for c := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return err
				}
				formula, err := f.GetCellFormula(sheet, cell)
				if err != nil {
					return fmt.Errorf("reading formula %s!%s: %w", sheet, cell, err)
				}
				text := row[c]
				if formula != "" {
					text = formula
				}
				if !strings.Contains(text, "{%") {
					continue
				}
				if err := fn(sheet, cell, norm.NFC.String(text)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Fill returns a fresh copy of the template with every known placeholder
// replaced. Placeholders missing from vars are left as typed. The caller
// closes the returned file.
func (t *Template) Fill(vars map[string]string) (*excelize.File, error) {
	f, err := t.open()
	if err != nil {
		return nil, err
	}

	r := newReplacer(vars)
	err = t.eachCell(f, func(sheet, cell, text string) error {
		formula, err := f.GetCellFormula(sheet, cell)
		if err != nil {
			return err
		}
		if formula != "" {
			return f.SetCellFormula(sheet, cell, r.Replace(text))
		}
		return f.SetCellStr(sheet, cell, r.Replace(text))
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("filling template: %w", err)
	}

	return f, nil
}

// Export fills the template and writes the workbook to w.
func (t *Template) Export(w io.Writer, vars map[string]string) error {
	f, err := t.Fill(vars)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing Excel file: %w", err)
	}
	return nil
}

// ExportToFile fills the template and writes it to path, replacing any
// existing file. A failed export leaves no partial file behind.
func (t *Template) ExportToFile(path string, vars map[string]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := t.Export(file, vars); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

// Resolve replaces every placeholder of vars found in s.
func Resolve(s string, vars map[string]string) string {
	return newReplacer(vars).Replace(norm.NFC.String(s))
}

// newReplacer substitutes in one pass, so a value that itself looks like a
// placeholder is not expanded again.
func newReplacer(vars map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, norm.NFC.String(k), vars[k])
	}
	return strings.NewReplacer(pairs...)
}
