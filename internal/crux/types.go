package crux

import (
	"fmt"
	"time"
)

// Scope selects the dataset a query runs against
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeCountry Scope = "country"
)

// Valid reports whether s is a known scope
func (s Scope) Valid() bool {
	return s == ScopeGlobal || s == ScopeCountry
}

// ParseScope parses a scope name
func ParseScope(name string) (Scope, error) {
	s := Scope(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown scope %q: must be %q or %q", name, ScopeGlobal, ScopeCountry)
	}
	return s, nil
}

// RankRecord is one row of the ranking query. CountryCode is empty for the
// global scope. Lower rank is more popular; ranks are coarse buckets and ties
// are common.
type RankRecord struct {
	CountryCode string
	Origin      string
	Rank        int64
}

// DomainRecord is a registrable domain with the best rank of its origins
type DomainRecord struct {
	Domain string
	Rank   int64
}

// YearMonth identifies a published monthly snapshot
type YearMonth struct {
	Year  int
	Month time.Month
}

// MinYearMonth is the first month the popularity rank was published
var MinYearMonth = YearMonth{Year: 2021, Month: time.February}

// YearMonthOf returns the month containing t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Int returns the YYYYMM form used as the query parameter
func (ym YearMonth) Int() int {
	return ym.Year*100 + int(ym.Month)
}

// String formats the month as YYYY-MM
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// AddMonths returns the month n months after ym; n may be negative
func (ym YearMonth) AddMonths(n int) YearMonth {
	return YearMonthOf(time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0))
}

// Before reports whether ym is earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Int() < other.Int()
}

// ParseYearMonth parses the YYYYMM integer form
func ParseYearMonth(yyyymm int) (YearMonth, error) {
	ym := YearMonth{Year: yyyymm / 100, Month: time.Month(yyyymm % 100)}
	if ym.Year < 1 || ym.Month < time.January || ym.Month > time.December {
		return YearMonth{}, fmt.Errorf("invalid year-month %d: expected YYYYMM", yyyymm)
	}
	return ym, nil
}
