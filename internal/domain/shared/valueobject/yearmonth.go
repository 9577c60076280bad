package valueobject

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month, used as the key for budget rows
// and the assignment bucket for actual costs.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewYearMonth creates a YearMonth after validating the month range
func NewYearMonth(year, month int) (YearMonth, error) {
	if year < 1970 || year > 9999 {
		return YearMonth{}, fmt.Errorf("year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("month %d out of range", month)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// YearMonthOf returns the YearMonth containing the given time
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Before reports whether ym is strictly earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// String returns the ISO-style representation, e.g. "2026-03"
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}
