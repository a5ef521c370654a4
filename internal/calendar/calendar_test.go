package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestIsValidIsoDate(t *testing.T) {
	cases := map[string]bool{
		"2024-02-29": true,
		"2023-02-29": false,
		"2026-04-31": false,
		"2026-12-31": true,
		"2019-05-01": false,
		"2031-01-01": false,
		"2026-13-01": false,
		"2026-1-01":  false,
		"":           false,
		"garbage":    false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsValidIsoDate(input), input)
	}
}

func TestIsValidIsoMonth(t *testing.T) {
	assert.True(t, IsValidIsoMonth("2026-01"))
	assert.True(t, IsValidIsoMonth("2030-12"))
	assert.False(t, IsValidIsoMonth("2026-00"))
	assert.False(t, IsValidIsoMonth("2031-01"))
	assert.False(t, IsValidIsoMonth("2026-01-01"))
	assert.True(t, YearBounds{Min: 1990, Max: 2000}.ValidMonth("1995-06"))
}

func TestBuildMonthGridShape(t *testing.T) {
	for year := DefaultMinYear; year <= DefaultMaxYear; year++ {
		for month := time.January; month <= time.December; month++ {
			anchor := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
			first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			for _, weeks := range []int{FiveWeeks, SixWeeks} {
				cells := BuildMonthGrid(anchor, weeks, time.Sunday)
				require.Len(t, cells, weeks*7)
				for i := 1; i < len(cells); i++ {
					require.Equal(t, cells[i-1].AddDate(0, 0, 1), cells[i])
				}
				idx := int(first.Weekday())
				require.Equal(t, first, cells[idx])
				require.Equal(t, time.Sunday, cells[0].Weekday())
			}
		}
	}
}

func TestBuildMonthGridMondayStartAndYearRollover(t *testing.T) {
	// 2026-01-01 is a Thursday.
	cells := BuildMonthGrid(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), SixWeeks, time.Monday)
	require.Len(t, cells, 42)
	assert.Equal(t, time.Monday, cells[0].Weekday())
	assert.Equal(t, time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), cells[0])
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), cells[3])
	assert.Equal(t, time.Date(2026, time.February, 8, 0, 0, 0, 0, time.UTC), cells[41])

	// 2026-12-01 is a Tuesday; the grid spills into January 2027.
	dec := BuildMonthGrid(time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC), FiveWeeks, time.Sunday)
	assert.Equal(t, time.Date(2026, time.November, 29, 0, 0, 0, 0, time.UTC), dec[0])
	assert.Equal(t, time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC), dec[34])
}

func TestBuildMonthGridRejectsNonPositiveWeeks(t *testing.T) {
	assert.Nil(t, BuildMonthGrid(time.Now(), 0, time.Sunday))
}

func TestAddMonthsRollsOverYears(t *testing.T) {
	dec := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, IsoMonth("2026-01"), ToIsoMonth(AddMonths(dec, 1)))
	jan := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, IsoMonth("2025-12"), ToIsoMonth(AddMonths(jan, -1)))
	assert.Equal(t, IsoMonth("2026-02"), ToIsoMonth(AddMonths(jan, 1)))
	assert.Equal(t, IsoMonth("2027-03"), ToIsoMonth(AddMonths(jan, 14)))
}

func TestToIsoDateLocalUsesComponents(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	late := time.Date(2026, time.March, 1, 0, 30, 0, 0, seoul)
	assert.Equal(t, IsoDate("2026-03-01"), ToIsoDateLocal(late))
}

func TestInclusiveEnd(t *testing.T) {
	end := time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC), InclusiveEnd(end, true))
	assert.Equal(t, end, InclusiveEnd(end, false))

	newYear := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), InclusiveEnd(newYear, true))
}

func TestNormalizeRange(t *testing.T) {
	a := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	start, end := NormalizeRange(&a, &b)
	assert.Equal(t, b, *start)
	assert.Equal(t, a, *end)

	start, end = NormalizeRange(nil, &b)
	assert.Nil(t, start)
	assert.Equal(t, b, *end)
}

func TestIsoMonthDays(t *testing.T) {
	days := IsoMonth("2024-02").Days()
	require.Len(t, days, 29)
	assert.Equal(t, IsoDate("2024-02-01"), days[0])
	assert.Equal(t, IsoDate("2024-02-29"), days[28])
	assert.True(t, IsoMonth("2024-02").Contains("2024-02-10"))
	assert.False(t, IsoMonth("2024-02").Contains("2024-03-01"))
}

func TestWeekdayLabelsAndTitle(t *testing.T) {
	assert.Equal(t, []string{"일", "월", "화", "수", "목", "금", "토"}, WeekdayLabels(language.Korean, time.Sunday))
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, WeekdayLabels(language.English, time.Monday))

	jan := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026년 1월", FormatMonthTitle(jan, language.Korean))
	assert.Equal(t, "January 2026", FormatMonthTitle(jan, language.English))

	assert.Equal(t, language.English, MatchLocale("en-US,en;q=0.9"))
	assert.Equal(t, language.Korean, MatchLocale(""))
	assert.Equal(t, time.Monday, ParseWeekStart("Monday"))
	assert.Equal(t, time.Sunday, ParseWeekStart("bogus"))
}
