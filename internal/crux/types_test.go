package crux

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	s, err := ParseScope("global")
	require.NoError(t, err)
	assert.Equal(t, ScopeGlobal, s)

	s, err = ParseScope("country")
	require.NoError(t, err)
	assert.Equal(t, ScopeCountry, s)

	_, err = ParseScope("planet")
	assert.Error(t, err)
}

func TestYearMonth(t *testing.T) {
	ym := YearMonth{Year: 2025, Month: time.March}

	assert.Equal(t, 202503, ym.Int())
	assert.Equal(t, "2025-03", ym.String())
	assert.Equal(t, YearMonth{Year: 2025, Month: time.February}, ym.AddMonths(-1))
	assert.Equal(t, YearMonth{Year: 2024, Month: time.December}, ym.AddMonths(-3))
	assert.Equal(t, YearMonth{Year: 2026, Month: time.January}, ym.AddMonths(10))
	assert.True(t, MinYearMonth.Before(ym))
	assert.False(t, ym.Before(ym))
}

func TestYearMonthOf(t *testing.T) {
	ts := time.Date(2026, time.October, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, YearMonth{Year: 2026, Month: time.October}, YearMonthOf(ts))
}

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		in       int
		expected YearMonth
		wantErr  bool
	}{
		{in: 202102, expected: YearMonth{Year: 2021, Month: time.February}},
		{in: 199912, expected: YearMonth{Year: 1999, Month: time.December}},
		{in: 202113, wantErr: true},
		{in: 202100, wantErr: true},
		{in: 12, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseYearMonth(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestSQLFor(t *testing.T) {
	assert.Contains(t, SQLFor(ScopeGlobal), "`chrome-ux-report.experimental.global`")
	assert.Contains(t, SQLFor(ScopeCountry), "`chrome-ux-report.experimental.country`")
	assert.Contains(t, SQLFor(ScopeCountry), "ORDER BY country_code, experimental.popularity.rank")
	assert.Equal(t, 2, columnsFor(ScopeGlobal))
	assert.Equal(t, 3, columnsFor(ScopeCountry))
}
