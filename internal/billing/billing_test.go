package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Январь", MonthName(time.January))
	assert.Equal(t, "Февраль", MonthName(time.February))
	assert.Equal(t, "Декабрь", MonthName(time.December))
	assert.Equal(t, "", MonthName(0))
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		name     string
		ref      time.Time
		months   int
		baseline int
		expected string
	}{
		{"no debt", date(2021, time.February, 15), 0, 1, "Февраль"},
		{"one month at baseline one", date(2021, time.February, 15), 1, 1, "Февраль"},
		{"three months baseline one", date(2021, time.May, 10), 3, 1, "Март - Май"},
		{"three months baseline zero", date(2021, time.May, 10), 3, 0, "Февраль - Май"},
		{"zero months baseline zero", date(2021, time.May, 10), 0, 0, "Май"},
		{"negative months", date(2021, time.May, 10), -2, 0, "Май"},
		{"crosses year", date(2021, time.February, 1), 3, 1, "Декабрь - Февраль"},
		{"end of month does not overflow", date(2021, time.March, 31), 2, 1, "Февраль - Март"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PeriodLabel(tt.ref, tt.months, tt.baseline))
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Month
		wantErr  bool
	}{
		{in: "Февраль", expected: time.February},
		{in: "  МАРТА ", expected: time.March},
		{in: "декабрь 2020 г.", expected: time.December},
		{in: "7", expected: time.July},
		{in: "13", wantErr: true},
		{in: "", wantErr: true},
		{in: "Брюмер", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonth(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReferenceDate(t *testing.T) {
	t.Run("name and year cells", func(t *testing.T) {
		ref, err := ReferenceDate("Февраль", "2021")
		require.NoError(t, err)
		assert.Equal(t, 2021, ref.Year())
		assert.Equal(t, time.February, ref.Month())
	})

	t.Run("year written as float", func(t *testing.T) {
		ref, err := ReferenceDate("апреля", "2022.0")
		require.NoError(t, err)
		assert.Equal(t, 2022, ref.Year())
		assert.Equal(t, time.April, ref.Month())
	})

	t.Run("year inside month text", func(t *testing.T) {
		ref, err := ReferenceDate("Ноябрь 2020 г.", "")
		require.NoError(t, err)
		assert.Equal(t, 2020, ref.Year())
		assert.Equal(t, time.November, ref.Month())
	})

	t.Run("excel date serial", func(t *testing.T) {
		// 44228 is 2021-02-01
		ref, err := ReferenceDate("44228", "")
		require.NoError(t, err)
		assert.Equal(t, 2021, ref.Year())
		assert.Equal(t, time.February, ref.Month())
	})

	t.Run("missing year", func(t *testing.T) {
		_, err := ReferenceDate("Май", "")
		require.Error(t, err)
	})
}

func TestAmounts(t *testing.T) {
	tests := []struct {
		in     string
		amount string
		rubles string
	}{
		{"4043.0", "4043,00", "4043"},
		{"4043", "4043,00", "4043"},
		{"1 250,5", "1250,50", "1250"},
		{"99.99", "99,99", "100"},
		{"2.5", "2,50", "2"},
		{"3.5", "3,50", "4"},
		{"2.675", "2,68", "3"},
		{"2.665", "2,66", "3"},
		{"", "0,00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, FormatAmount(d))
			assert.Equal(t, tt.rubles, FormatRubles(d))
		})
	}

	_, err := ParseAmount("много")
	require.Error(t, err)
	assert.Equal(t, "0", Kopecks)
}
