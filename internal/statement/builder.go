package statement

import "github.com/locvowork/billgen/internal/domain"

type meterReading struct {
	last string
	paid string
}

// recordBuilder collects a customer's values while the statement is being
// scanned. Continuation rows add meters to it; build materializes the
// immutable record.
type recordBuilder struct {
	row        int
	debtMonths int
	values     []domain.Value
	meters     []meterReading
}

func (b *recordBuilder) set(token, text string) {
	b.values = append(b.values, domain.Value{Token: token, Text: text})
}

// addMeter appends a meter reading pair. It reports false once the template
// has no slot left.
func (b *recordBuilder) addMeter(last, paid string) bool {
	if len(b.meters) >= domain.MaxMeters {
		return false
	}
	b.meters = append(b.meters, meterReading{last: last, paid: paid})
	return true
}

// build fills every meter slot so unused tokens render as empty text.
func (b *recordBuilder) build() *domain.Record {
	values := make([]domain.Value, 0, len(b.values)+2*domain.MaxMeters)
	values = append(values, b.values...)

	for i := 1; i <= domain.MaxMeters; i++ {
		var m meterReading
		if i <= len(b.meters) {
			m = b.meters[i-1]
		}
		values = append(values,
			domain.Value{Token: domain.MeterLastToken(i), Text: m.last},
			domain.Value{Token: domain.MeterPaidToken(i), Text: m.paid},
		)
	}

	return domain.NewRecord(b.row, b.debtMonths, len(b.meters), values)
}
