package domain

import "fmt"

// ==================== TEMPLATE TOKENS ====================

// Tokens substituted into templates and output file names. They must match
// the text typed into the template workbook exactly.
const (
	TokenNumber      = "{%номер%}"
	TokenName        = "{%имя%}"
	TokenAccount     = "{%лицевой_счет%}"
	TokenMonth       = "{%месяц%}"
	TokenYear        = "{%год%}"
	TokenDebt        = "{%долг%}"
	TokenDebtRubles  = "{%долг_рубли%}"
	TokenDebtKopecks = "{%долг_копейки%}"
)

// MaxMeters is the number of meter reading pairs a template can show.
const MaxMeters = 3

// MeterLastToken returns the last-reading token of meter n (1-based).
func MeterLastToken(n int) string {
	return fmt.Sprintf("{%%последнее_показание_%d%%}", n)
}

// MeterPaidToken returns the last-paid-reading token of meter n (1-based).
func MeterPaidToken(n int) string {
	return fmt.Sprintf("{%%предыдущее_оплаченное_%d%%}", n)
}

// ==================== BILLING RECORDS ====================

// Value is one token and the text that replaces it.
type Value struct {
	Token string
	Text  string
}

// Record holds everything needed to render one bill. It is immutable once
// built.
type Record struct {
	row        int
	debtMonths int
	meters     int
	values     []Value
	index      map[string]string
}

// NewRecord builds a record from its statement row, overdue months, meter
// count and token values. Later values override earlier ones with the same
// token.
func NewRecord(row, debtMonths, meters int, values []Value) *Record {
	r := &Record{
		row:        row,
		debtMonths: debtMonths,
		meters:     meters,
		index:      make(map[string]string, len(values)),
	}
	for _, v := range values {
		if _, seen := r.index[v.Token]; !seen {
			r.values = append(r.values, v)
		} else {
			for i := range r.values {
				if r.values[i].Token == v.Token {
					r.values[i].Text = v.Text
				}
			}
		}
		r.index[v.Token] = v.Text
	}
	return r
}

// Row is the 1-based statement row the record came from.
func (r *Record) Row() int { return r.row }

// DebtMonths is the number of overdue months on the statement row.
func (r *Record) DebtMonths() int { return r.debtMonths }

// Meters is the number of meter reading pairs collected for the customer.
func (r *Record) Meters() int { return r.meters }

// Get returns the text for a token.
func (r *Record) Get(token string) (string, bool) {
	v, ok := r.index[token]
	return v, ok
}

// Values returns the token values in insertion order.
func (r *Record) Values() []Value {
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// Map returns the token values as a fresh map.
func (r *Record) Map() map[string]string {
	out := make(map[string]string, len(r.index))
	for k, v := range r.index {
		out[k] = v
	}
	return out
}
