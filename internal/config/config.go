package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file looked up next to the executable's
// working directory.
const DefaultFileName = "настройки.txt"

// EnvPrefix prefixes environment overrides, e.g. BILLGEN_FIRST_ROW.
const EnvPrefix = "BILLGEN"

// Settings is the immutable run configuration. It is loaded once and passed
// by value to the components that need it.
type Settings struct {
	StatementFolder      string `yaml:"statement_folder" split_words:"true" validate:"required"`
	TemplateFolder       string `yaml:"template_folder" split_words:"true" validate:"required"`
	TemplateFilename     string `yaml:"template_filename" split_words:"true" validate:"required"`
	OutputFolder         string `yaml:"output_folder" split_words:"true" validate:"required"`
	OutputFilenameFormat string `yaml:"output_filename_format" split_words:"true" validate:"required"`
	LogsFolder           string `yaml:"logs_folder" split_words:"true"`
	LogLevel             string `yaml:"log_level" split_words:"true" validate:"omitempty,oneof=trace debug info warn error"`

	FirstRow int `yaml:"first_row" split_words:"true" validate:"min=1"`
	LastRow  int `yaml:"last_row" split_words:"true" validate:"gtefield=FirstRow"`

	// DebtMonths is the minimum number of overdue months a customer needs
	// to get a bill.
	DebtMonths int `yaml:"debt_months" split_words:"true" validate:"min=0"`
	// PeriodBaseline is the overdue-month count that still bills only the
	// reference month.
	PeriodBaseline int `yaml:"period_baseline" split_words:"true" validate:"oneof=0 1"`

	// MonthCell and YearCell point at statement cells holding the billing
	// month and year. When empty the run date is used.
	MonthCell string `yaml:"month_cell" split_words:"true" validate:"required_with=YearCell,omitempty,cellref"`
	YearCell  string `yaml:"year_cell" split_words:"true" validate:"required_with=MonthCell,omitempty,cellref"`

	Columns Columns `yaml:"column" envconfig:"COLUMN"`
}

// Columns maps each logical statement field to a column letter.
type Columns struct {
	Number     string `yaml:"number" split_words:"true" validate:"required,column"`
	Name       string `yaml:"name" split_words:"true" validate:"required,column"`
	Account    string `yaml:"account" split_words:"true" validate:"omitempty,column"`
	Debt       string `yaml:"debt" split_words:"true" validate:"omitempty,column"`
	DebtMonths string `yaml:"debt_months" split_words:"true" validate:"omitempty,column"`
	MeterLast  string `yaml:"meter_last" split_words:"true" validate:"omitempty,column"`
	MeterPaid  string `yaml:"meter_paid" split_words:"true" validate:"omitempty,column"`
}

// Default returns the settings written to a freshly generated config file.
func Default() Settings {
	return Settings{
		StatementFolder:      "Ведомость",
		TemplateFolder:       "Шаблон",
		TemplateFilename:     "квитанция.xlsx",
		OutputFolder:         "Квитанции",
		OutputFilenameFormat: "{%номер%}_{%месяц%}_{%имя%}.xlsx",
		LogsFolder:           "Логи",
		LogLevel:             "info",
		FirstRow:             9,
		LastRow:              170,
		DebtMonths:           3,
		PeriodBaseline:       1,
		Columns: Columns{
			Number:     "A",
			Name:       "C",
			Account:    "D",
			Debt:       "I",
			DebtMonths: "J",
			MeterLast:  "K",
			MeterPaid:  "L",
		},
	}
}

// TemplatePath joins the template folder and file name.
func (s Settings) TemplatePath() string {
	return filepath.Join(s.TemplateFolder, s.TemplateFilename)
}

// Folders lists every folder the application reads from or writes to.
func (s Settings) Folders() []string {
	folders := []string{s.StatementFolder, s.TemplateFolder, s.OutputFolder}
	if s.LogsFolder != "" {
		folders = append(folders, s.LogsFolder)
	}
	return folders
}

// Load reads settings from path. When the file does not exist, a commented
// default file is written there and created is true. Environment variables
// prefixed with BILLGEN_ override file values.
func Load(path string) (s Settings, created bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return Settings{}, false, err
		}
		created = true
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Settings{}, created, fmt.Errorf("reading config file: %w", err)
	}

	s, err = Parse(data, isYAML(path))
	if err != nil {
		return Settings{}, created, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, created, fmt.Errorf("applying environment overrides: %w", err)
	}

	s.resolvePaths(filepath.Dir(path))

	if err := Validate(s); err != nil {
		return Settings{}, created, err
	}

	return s, created, nil
}

// Parse decodes settings from dotenv-style or YAML content. Keys missing from
// the content keep their default values.
func Parse(data []byte, asYAML bool) (Settings, error) {
	s := Default()
	text := decodeText(data)

	if asYAML {
		if err := yaml.Unmarshal([]byte(text), &s); err != nil {
			return Settings{}, fmt.Errorf("parsing YAML: %w", err)
		}
		return s, nil
	}

	values, err := godotenv.Unmarshal(text)
	if err != nil {
		return Settings{}, fmt.Errorf("parsing key/value settings: %w", err)
	}
	if err := applyValues(&s, values); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// EnsureFolders creates missing folders and reports whether any was created.
func EnsureFolders(s Settings) (bool, error) {
	created := false
	for _, dir := range s.Folders() {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return created, fmt.Errorf("creating folder %s: %w", dir, err)
		}
		created = true
	}
	return created, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1251 for files
// saved by older Windows editors.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func (s *Settings) resolvePaths(baseDir string) {
	for _, p := range []*string{&s.StatementFolder, &s.TemplateFolder, &s.OutputFolder, &s.LogsFolder} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(baseDir, *p)
	}
}

func applyValues(s *Settings, values map[string]string) error {
	strFields := map[string]*string{
		"STATEMENT_FOLDER":       &s.StatementFolder,
		"TEMPLATE_FOLDER":        &s.TemplateFolder,
		"TEMPLATE_FILENAME":      &s.TemplateFilename,
		"OUTPUT_FOLDER":          &s.OutputFolder,
		"OUTPUT_FILENAME_FORMAT": &s.OutputFilenameFormat,
		"LOGS_FOLDER":            &s.LogsFolder,
		"LOG_LEVEL":              &s.LogLevel,
		"MONTH_CELL":             &s.MonthCell,
		"YEAR_CELL":              &s.YearCell,
		"COLUMN_NUMBER":          &s.Columns.Number,
		"COLUMN_NAME":            &s.Columns.Name,
		"COLUMN_ACCOUNT":         &s.Columns.Account,
		"COLUMN_DEBT":            &s.Columns.Debt,
		"COLUMN_DEBT_MONTHS":     &s.Columns.DebtMonths,
		"COLUMN_METER_LAST":      &s.Columns.MeterLast,
		"COLUMN_METER_PAID":      &s.Columns.MeterPaid,
	}
	intFields := map[string]*int{
		"FIRST_ROW":       &s.FirstRow,
		"LAST_ROW":        &s.LastRow,
		"DEBT_MONTHS":     &s.DebtMonths,
		"PERIOD_BASELINE": &s.PeriodBaseline,
	}

	for key, raw := range values {
		key = strings.ToUpper(strings.TrimSpace(key))
		val := strings.TrimSpace(raw)
		if p, ok := strFields[key]; ok {
			*p = val
			continue
		}
		if p, ok := intFields[key]; ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("setting %s: %q is not a whole number", key, val)
			}
			*p = n
		}
	}
	return nil
}
