package statement

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/billgen/internal/billing"
	"github.com/locvowork/billgen/internal/config"
	"github.com/locvowork/billgen/internal/domain"
	"github.com/locvowork/billgen/internal/logger"
)

const unset = -1

// columns holds zero-based offsets; unset marks an unconfigured column.
type columns struct {
	number, name, account, debt, debtMonths, meterLast, meterPaid int
}

// Reader turns statement rows into billing records.
type Reader struct {
	cols          columns
	firstRow      int
	lastRow       int
	minDebtMonths int
	baseline      int
}

// NewReader resolves the configured column letters.
func NewReader(s config.Settings) (*Reader, error) {
	var cols columns
	fields := []struct {
		letter string
		dst    *int
	}{
		{s.Columns.Number, &cols.number},
		{s.Columns.Name, &cols.name},
		{s.Columns.Account, &cols.account},
		{s.Columns.Debt, &cols.debt},
		{s.Columns.DebtMonths, &cols.debtMonths},
		{s.Columns.MeterLast, &cols.meterLast},
		{s.Columns.MeterPaid, &cols.meterPaid},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.letter) == "" {
			*field.dst = unset
			continue
		}
		idx, err := ColumnIndex(field.letter)
		if err != nil {
			return nil, err
		}
		*field.dst = idx
	}
	if cols.number == unset || cols.name == unset {
		return nil, fmt.Errorf("number and name columns are required")
	}

	return &Reader{
		cols:          cols,
		firstRow:      s.FirstRow,
		lastRow:       s.LastRow,
		minDebtMonths: s.DebtMonths,
		baseline:      s.PeriodBaseline,
	}, nil
}

// rowCells is one statement row reduced to the configured fields.
type rowCells struct {
	number, name, account, debt, debtMonths, meterLast, meterPaid string
}

func (r *Reader) extract(row []string) rowCells {
	get := func(idx int) string {
		if idx == unset || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	return rowCells{
		number:     get(r.cols.number),
		name:       get(r.cols.name),
		account:    get(r.cols.account),
		debt:       get(r.cols.debt),
		debtMonths: get(r.cols.debtMonths),
		meterLast:  get(r.cols.meterLast),
		meterPaid:  get(r.cols.meterPaid),
	}
}

func (c rowCells) hasMeter() bool {
	return c.meterLast != "" || c.meterPaid != ""
}

// Read scans rows firstRow..lastRow of sheet. Customer rows that pass the
// validity and overdue checks start a record; a following row with meter
// readings and no name adds a meter to that record. Any other row ends the
// current record, so readings never attach across a skipped customer.
func (r *Reader) Read(ctx context.Context, sheet domain.Sheet, ref time.Time) ([]*domain.Record, error) {
	var (
		builders []*recordBuilder
		current  *recordBuilder
		skipped  int
	)

	for n := r.firstRow; n <= r.lastRow; n++ {
		cells := r.extract(sheet.Row(n))

		switch {
		case cells.name != "":
			b, ok, err := r.customer(ctx, n, cells, ref)
			if err != nil {
				return nil, err
			}
			if !ok {
				current = nil
				skipped++
				continue
			}
			builders = append(builders, b)
			current = b

		case cells.hasMeter():
			if current == nil {
				logger.DebugLog(ctx, "row %d: meter readings without a customer above, dropped", n)
				continue
			}
			if !current.addMeter(cells.meterLast, cells.meterPaid) {
				logger.WarnLog(ctx, "row %d: customer from row %d already has %d meters, reading dropped", n, current.row, domain.MaxMeters)
				continue
			}

		default:
			if cells.number != "" {
				skipped++
			}
			current = nil
		}
	}

	records := make([]*domain.Record, 0, len(builders))
	for _, b := range builders {
		records = append(records, b.build())
	}

	logger.InfoLog(ctx, "statement rows %d-%d: %d records, %d rows skipped", r.firstRow, r.lastRow, len(records), skipped)
	return records, nil
}

// customer validates a row with a name and starts its record. ok is false
// for rows that do not qualify for a bill.
func (r *Reader) customer(ctx context.Context, n int, cells rowCells, ref time.Time) (*recordBuilder, bool, error) {
	if cells.number == "" {
		logger.DebugLog(ctx, "row %d: no number, skipped", n)
		return nil, false, nil
	}

	months := 0
	if r.cols.debtMonths != unset {
		if cells.debtMonths == "" {
			logger.DebugLog(ctx, "row %d: no overdue months, skipped", n)
			return nil, false, nil
		}
		parsed, err := parseCount(cells.debtMonths)
		if err != nil {
			logger.WarnLog(ctx, "row %d: overdue months %q is not a number, skipped", n, cells.debtMonths)
			return nil, false, nil
		}
		months = parsed
		if months < r.minDebtMonths {
			return nil, false, nil
		}
	}

	debt, err := billing.ParseAmount(cells.debt)
	if err != nil {
		return nil, false, fmt.Errorf("row %d: debt: %w", n, err)
	}

	b := &recordBuilder{row: n, debtMonths: months}
	b.set(domain.TokenNumber, cells.number)
	b.set(domain.TokenName, cells.name)
	b.set(domain.TokenAccount, cells.account)
	b.set(domain.TokenMonth, billing.PeriodLabel(ref, months, r.baseline))
	b.set(domain.TokenYear, strconv.Itoa(ref.Year()))
	b.set(domain.TokenDebt, billing.FormatAmount(debt))
	b.set(domain.TokenDebtRubles, billing.FormatRubles(debt))
	b.set(domain.TokenDebtKopecks, billing.Kopecks)
	if cells.hasMeter() {
		b.addMeter(cells.meterLast, cells.meterPaid)
	}

	return b, true, nil
}

// parseCount reads a whole count that may be stored as a float ("3.0").
func parseCount(text string) (int, error) {
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// ReferenceDate resolves the billing reference date: the statement's month
// and year cells when both are configured, otherwise now.
func ReferenceDate(sheet domain.Sheet, s config.Settings, now time.Time) (time.Time, error) {
	if s.MonthCell == "" || s.YearCell == "" {
		return now, nil
	}
	month, err := sheet.Cell(s.MonthCell)
	if err != nil {
		return time.Time{}, err
	}
	year, err := sheet.Cell(s.YearCell)
	if err != nil {
		return time.Time{}, err
	}
	ref, err := billing.ReferenceDate(month, year)
	if err != nil {
		return time.Time{}, fmt.Errorf("billing month from cells %s/%s: %w", s.MonthCell, s.YearCell, err)
	}
	return ref, nil
}
