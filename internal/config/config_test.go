package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestLoad_GeneratesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	s, created, err := Load(path)
	require.NoError(t, err)
	assert.True(t, created)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, filepath.Join(dir, "Ведомость"), s.StatementFolder)
	assert.Equal(t, "{%номер%}_{%месяц%}_{%имя%}.xlsx", s.OutputFilenameFormat)
	assert.Equal(t, 9, s.FirstRow)
	assert.Equal(t, 170, s.LastRow)
	assert.Equal(t, 3, s.DebtMonths)
	assert.Equal(t, "J", s.Columns.DebtMonths)

	// A second load reads the generated file back.
	again, created, err := Load(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, s, again)
}

func TestParse_KeyValues(t *testing.T) {
	content := `# Папка с ведомостью
STATEMENT_FOLDER=Входящие
OUTPUT_FILENAME_FORMAT='{%имя%}.xlsx'
FIRST_ROW=2
LAST_ROW=40
DEBT_MONTHS=0
MONTH_CELL=B3
YEAR_CELL=C3
COLUMN_NAME=B
COLUMN_METER_LAST=M
`
	s, err := Parse([]byte(content), false)
	require.NoError(t, err)

	assert.Equal(t, "Входящие", s.StatementFolder)
	assert.Equal(t, "{%имя%}.xlsx", s.OutputFilenameFormat)
	assert.Equal(t, 2, s.FirstRow)
	assert.Equal(t, 40, s.LastRow)
	assert.Equal(t, 0, s.DebtMonths)
	assert.Equal(t, "B3", s.MonthCell)
	assert.Equal(t, "C3", s.YearCell)
	assert.Equal(t, "B", s.Columns.Name)
	assert.Equal(t, "M", s.Columns.MeterLast)
	// untouched keys keep defaults
	assert.Equal(t, "A", s.Columns.Number)
	assert.Equal(t, "Шаблон", s.TemplateFolder)
}

func TestParse_Windows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("STATEMENT_FOLDER=Ведомость за май\n")
	require.NoError(t, err)

	s, err := Parse([]byte(encoded), false)
	require.NoError(t, err)
	assert.Equal(t, "Ведомость за май", s.StatementFolder)
}

func TestParse_BOM(t *testing.T) {
	s, err := Parse([]byte("\xef\xbb\xbfFIRST_ROW=4\n"), false)
	require.NoError(t, err)
	assert.Equal(t, 4, s.FirstRow)
}

func TestParse_YAML(t *testing.T) {
	content := `
statement_folder: in
first_row: 3
last_row: 10
column:
  name: E
  debt: F
`
	s, err := Parse([]byte(content), true)
	require.NoError(t, err)
	assert.Equal(t, "in", s.StatementFolder)
	assert.Equal(t, 3, s.FirstRow)
	assert.Equal(t, 10, s.LastRow)
	assert.Equal(t, "E", s.Columns.Name)
	assert.Equal(t, "F", s.Columns.Debt)
	assert.Equal(t, "A", s.Columns.Number)
}

func TestParse_BadNumber(t *testing.T) {
	_, err := Parse([]byte("FIRST_ROW=девять\n"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIRST_ROW")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, WriteDefault(path))

	t.Setenv("BILLGEN_LAST_ROW", "12")
	t.Setenv("BILLGEN_COLUMN_NAME", "E")

	s, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, s.LastRow)
	assert.Equal(t, "E", s.Columns.Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(s *Settings)
		errorMsg string
	}{
		{
			name:   "defaults are valid",
			modify: func(s *Settings) {},
		},
		{
			name:     "last row before first row",
			modify:   func(s *Settings) { s.FirstRow, s.LastRow = 10, 5 },
			errorMsg: "LAST_ROW must not be less than FIRST_ROW",
		},
		{
			name:     "zero first row",
			modify:   func(s *Settings) { s.FirstRow = 0 },
			errorMsg: "FIRST_ROW",
		},
		{
			name:     "bad column letter",
			modify:   func(s *Settings) { s.Columns.Name = "C1" },
			errorMsg: "COLUMN_NAME",
		},
		{
			name:     "missing number column",
			modify:   func(s *Settings) { s.Columns.Number = "" },
			errorMsg: "COLUMN_NUMBER is required",
		},
		{
			name:     "month cell without year cell",
			modify:   func(s *Settings) { s.MonthCell = "B3" },
			errorMsg: "YEAR_CELL must be set together with MONTH_CELL",
		},
		{
			name:     "bad cell reference",
			modify:   func(s *Settings) { s.MonthCell, s.YearCell = "B", "C3" },
			errorMsg: "MONTH_CELL",
		},
		{
			name:     "unsupported baseline",
			modify:   func(s *Settings) { s.PeriodBaseline = 2 },
			errorMsg: "PERIOD_BASELINE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			err := Validate(s)
			if tt.errorMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestEnsureFolders(t *testing.T) {
	dir := t.TempDir()
	s := Default()
	s.resolvePaths(dir)

	created, err := EnsureFolders(s)
	require.NoError(t, err)
	assert.True(t, created)

	for _, f := range s.Folders() {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	created, err = EnsureFolders(s)
	require.NoError(t, err)
	assert.False(t, created)
}
