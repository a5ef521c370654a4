// Package calendar holds the timezone-naive date arithmetic used by the month
// grid, the query codec and the filter pipeline.
//
// Dates are always built from year/month/day components with time.Date so a
// value never shifts across a day boundary when the caller's zone differs from
// UTC.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	isoDateLayout  = "2006-01-02"
	isoMonthLayout = "2006-01"

	// DefaultMinYear and DefaultMaxYear bound every IsoDate/IsoMonth accepted
	// from external input.
	DefaultMinYear = 2020
	DefaultMaxYear = 2030
)

var (
	isoDatePattern  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	isoMonthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// IsoDate is a YYYY-MM-DD calendar date.
type IsoDate string

// IsoMonth is a YYYY-MM calendar month.
type IsoMonth string

// YearBounds is the inclusive year range accepted by the validators.
type YearBounds struct {
	Min int
	Max int
}

// DefaultBounds returns the 2020–2030 window.
func DefaultBounds() YearBounds {
	return YearBounds{Min: DefaultMinYear, Max: DefaultMaxYear}
}

// Contains reports whether year lies inside the bounds.
func (b YearBounds) Contains(year int) bool {
	if b.Min == 0 && b.Max == 0 {
		b = DefaultBounds()
	}
	return year >= b.Min && year <= b.Max
}

// DaysInMonth uses day 0 of the following month, which handles leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidDate reports whether s is a well-formed date inside the bounds whose
// day exists in its month.
func (b YearBounds) ValidDate(s string) bool {
	_, _, _, ok := b.splitDate(s)
	return ok
}

// ValidMonth reports whether s is a well-formed YYYY-MM inside the bounds.
func (b YearBounds) ValidMonth(s string) bool {
	_, _, ok := b.splitMonth(s)
	return ok
}

func (b YearBounds) splitDate(s string) (int, time.Month, int, bool) {
	m := isoDatePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if !b.Contains(year) || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	if day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return 0, 0, 0, false
	}
	return year, time.Month(month), day, true
}

func (b YearBounds) splitMonth(s string) (int, time.Month, bool) {
	m := isoMonthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if !b.Contains(year) || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// IsValidIsoDate validates s against the default year bounds.
func IsValidIsoDate(s string) bool {
	return DefaultBounds().ValidDate(s)
}

// IsValidIsoMonth validates s against the default year bounds.
func IsValidIsoMonth(s string) bool {
	return DefaultBounds().ValidMonth(s)
}

// NewIsoDate builds a validated date from its components.
func NewIsoDate(year int, month time.Month, day int) (IsoDate, error) {
	s := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
	if !IsValidIsoDate(s) {
		return "", fmt.Errorf("invalid date %s", s)
	}
	return IsoDate(s), nil
}

// NewIsoMonth builds a validated month from its components.
func NewIsoMonth(year int, month time.Month) (IsoMonth, error) {
	s := fmt.Sprintf("%04d-%02d", year, int(month))
	if !IsValidIsoMonth(s) {
		return "", fmt.Errorf("invalid month %s", s)
	}
	return IsoMonth(s), nil
}

// ParseIsoDate returns local midnight of the date. Only the shape and the day
// count are checked; year bounds are the caller's concern.
func ParseIsoDate(s string, loc *time.Location) (time.Time, bool) {
	m := isoDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// Time returns local midnight of d in loc.
func (d IsoDate) Time(loc *time.Location) (time.Time, bool) {
	return ParseIsoDate(string(d), loc)
}

// Month returns the YYYY-MM prefix of d.
func (d IsoDate) Month() IsoMonth {
	if len(d) < len(isoMonthLayout) {
		return ""
	}
	return IsoMonth(d[:len(isoMonthLayout)])
}

// FirstDay returns local midnight of the first day of m.
func (m IsoMonth) FirstDay(loc *time.Location) (time.Time, bool) {
	parts := isoMonthPattern.FindStringSubmatch(string(m))
	if parts == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(parts[1])
	month, _ := strconv.Atoi(parts[2])
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), true
}

// Contains reports whether d falls inside m.
func (m IsoMonth) Contains(d IsoDate) bool {
	return m != "" && d.Month() == m
}

// Days lists every date of m in order.
func (m IsoMonth) Days() []IsoDate {
	first, ok := m.FirstDay(time.UTC)
	if !ok {
		return nil
	}
	n := DaysInMonth(first.Year(), first.Month())
	out := make([]IsoDate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ToIsoDateLocal(first.AddDate(0, 0, i)))
	}
	return out
}

// AddMonths returns the first day of the month n months away from date. The
// day component is dropped so Jan 31 + 1 lands in February, not March.
func AddMonths(date time.Time, n int) time.Time {
	return time.Date(date.Year(), date.Month()+time.Month(n), 1, 0, 0, 0, 0, date.Location())
}

// ToIsoMonth formats the month of t from its components.
func ToIsoMonth(t time.Time) IsoMonth {
	return IsoMonth(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// ToIsoDateLocal formats the date of t from its components in t's own zone.
func ToIsoDateLocal(t time.Time) IsoDate {
	return IsoDate(fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()))
}

// StartOfDay truncates t to local midnight without converting zones.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// InclusiveEnd converts an exclusive all-day end into the inclusive last day.
// Timed events keep their end untouched.
func InclusiveEnd(end time.Time, allDay bool) time.Time {
	if !allDay {
		return end
	}
	return StartOfDay(end).AddDate(0, 0, -1)
}

// NormalizeRange orders start and end. A nil side stays open.
func NormalizeRange(start, end *time.Time) (*time.Time, *time.Time) {
	if start != nil && end != nil && end.Before(*start) {
		return end, start
	}
	return start, end
}
