package billing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Nominative and genitive month names, lowercase, January first.
var (
	monthsNominative = [12]string{
		"январь", "февраль", "март", "апрель", "май", "июнь",
		"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
	}
	monthsGenitive = [12]string{
		"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	}

	yearPattern = regexp.MustCompile(`\d{4}`)
)

// MonthName returns the capitalized Russian name of m, e.g. "Февраль".
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return cases.Title(language.Russian).String(monthsNominative[m-1])
}

// PeriodLabel describes the billed period. Up to baseline overdue months
// bill only the reference month; longer debts render as "Start - End" where
// Start lies months-baseline months before the reference month.
func PeriodLabel(ref time.Time, months, baseline int) string {
	current := MonthName(ref.Month())
	if months <= baseline {
		return current
	}
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	start := first.AddDate(0, -(months - baseline), 0)
	return fmt.Sprintf("%s - %s", MonthName(start.Month()), current)
}

// ParseMonth recognizes a month given as a Russian name (nominative or
// genitive, any case, optionally followed by other words) or as a number.
func ParseMonth(text string) (time.Month, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0, fmt.Errorf("month is empty")
	}
	word := strings.TrimRight(fields[0], ".,")

	if n, err := strconv.Atoi(word); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("month number %d is out of range", n)
	}

	for i := range monthsNominative {
		if word == monthsNominative[i] || word == monthsGenitive[i] {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", text)
}

// ReferenceDate builds the billing reference date from the statement's month
// and year cells. The month cell may also hold an Excel date serial. When the
// year cell is empty a four-digit year inside the month text is used.
func ReferenceDate(monthText, yearText string) (time.Time, error) {
	monthText = strings.TrimSpace(monthText)
	yearText = strings.TrimSpace(yearText)

	if serial, err := strconv.ParseFloat(monthText, 64); err == nil && serial > 12 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("converting month cell date: %w", err)
		}
		year := t.Year()
		if yearText != "" {
			if year, err = parseYear(yearText); err != nil {
				return time.Time{}, err
			}
		}
		return time.Date(year, t.Month(), 1, 0, 0, 0, 0, time.Local), nil
	}

	month, err := ParseMonth(monthText)
	if err != nil {
		return time.Time{}, err
	}

	source := yearText
	if source == "" {
		source = monthText
	}
	year, err := parseYear(source)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.Local), nil
}

func parseYear(text string) (int, error) {
	if f, err := strconv.ParseFloat(text, 64); err == nil && f >= 1000 && f < 10000 {
		return int(f), nil
	}
	match := yearPattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no year in %q", text)
	}
	return strconv.Atoi(match)
}
