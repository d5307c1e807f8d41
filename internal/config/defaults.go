package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteDefault writes a commented settings file with default values.
func WriteDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config folder: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(DefaultText()), 0644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// DefaultText renders the default settings with inline comments.
func DefaultText() string {
	d := Default()
	var b strings.Builder

	section := func(comment string, kv ...string) {
		fmt.Fprintf(&b, "# %s\n", comment)
		for i := 0; i+1 < len(kv); i += 2 {
			fmt.Fprintf(&b, "%s=%s\n", kv[i], kv[i+1])
		}
		b.WriteString("\n")
	}

	section("Папка с ведомостью", "STATEMENT_FOLDER", d.StatementFolder)
	section("Папка с шаблоном квитанции и имя самого файла-шаблона",
		"TEMPLATE_FOLDER", d.TemplateFolder,
		"TEMPLATE_FILENAME", d.TemplateFilename)
	section("Папка, куда будут сложены все квитанции", "OUTPUT_FOLDER", d.OutputFolder)
	// Single quotes keep godotenv from expanding anything inside the pattern.
	section("Формат имени выходного файла", "OUTPUT_FILENAME_FORMAT", "'"+d.OutputFilenameFormat+"'")
	section("Папка для журнала работы и уровень подробности (debug, info, warn, error)",
		"LOGS_FOLDER", d.LogsFolder,
		"LOG_LEVEL", d.LogLevel)
	section("Первый и последний ряды в ведомости",
		"FIRST_ROW", fmt.Sprint(d.FirstRow),
		"LAST_ROW", fmt.Sprint(d.LastRow))
	section("Количество месяцев просроченных платежей", "DEBT_MONTHS", fmt.Sprint(d.DebtMonths))
	section("Сколько месяцев долга еще считается одним текущим месяцем (0 или 1)",
		"PERIOD_BASELINE", fmt.Sprint(d.PeriodBaseline))
	b.WriteString("# Ячейки ведомости с месяцем и годом. Если не заданы, берется текущая дата\n")
	b.WriteString("# MONTH_CELL=B3\n# YEAR_CELL=C3\n\n")

	b.WriteString("# Столбцы\n")
	cols := []struct{ comment, key, value string }{
		{"Номер по порядку", "COLUMN_NUMBER", d.Columns.Number},
		{"Имя", "COLUMN_NAME", d.Columns.Name},
		{"Номер лицевого счета", "COLUMN_ACCOUNT", d.Columns.Account},
		{"Долг", "COLUMN_DEBT", d.Columns.Debt},
		{"Месяцев задолженность", "COLUMN_DEBT_MONTHS", d.Columns.DebtMonths},
		{"Последнее показание счетчика", "COLUMN_METER_LAST", d.Columns.MeterLast},
		{"Предыдущее оплаченное", "COLUMN_METER_PAID", d.Columns.MeterPaid},
	}
	for _, c := range cols {
		fmt.Fprintf(&b, "# %s\n%s=%s\n", c.comment, c.key, c.value)
	}

	return b.String()
}
