package calendar

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Supported grid heights.
const (
	FiveWeeks = 5
	SixWeeks  = 6
)

// BuildMonthGrid returns weeks*7 consecutive days covering the month of
// anchor, starting on weekStart. Leading cells come from the previous month
// and trailing cells from the next one. A five-week grid drops the tail of
// months that need six rows.
func BuildMonthGrid(anchor time.Time, weeks int, weekStart time.Weekday) []time.Time {
	if weeks <= 0 {
		return nil
	}
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	lead := LeadingDays(first, weekStart)
	start := first.AddDate(0, 0, -lead)

	cells := make([]time.Time, weeks*7)
	for i := range cells {
		cells[i] = start.AddDate(0, 0, i)
	}
	return cells
}

// LeadingDays is the number of previous-month cells before the 1st.
func LeadingDays(first time.Time, weekStart time.Weekday) int {
	return (int(first.Weekday()) - int(weekStart) + 7) % 7
}

// ParseWeekStart maps "sunday"/"monday" to a weekday; anything else is Sunday.
func ParseWeekStart(raw string) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "monday", "mon":
		return time.Monday
	default:
		return time.Sunday
	}
}

var (
	supportedLocales = []language.Tag{language.Korean, language.English}
	localeMatcher    = language.NewMatcher(supportedLocales)

	weekdayLabels = map[language.Tag][7]string{
		language.Korean:  {"일", "월", "화", "수", "목", "금", "토"},
		language.English: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}
)

// MatchLocale resolves an Accept-Language style string to a supported tag.
// Korean wins when nothing matches.
func MatchLocale(raw string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return language.Korean
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return language.Korean
	}
	return supportedLocales[idx]
}

// WeekdayLabels returns the seven column headers rotated to weekStart.
func WeekdayLabels(locale language.Tag, weekStart time.Weekday) []string {
	labels, ok := weekdayLabels[locale]
	if !ok {
		labels = weekdayLabels[language.Korean]
	}
	out := make([]string, 7)
	for i := range out {
		out[i] = labels[(int(weekStart)+i)%7]
	}
	return out
}

// FormatMonthTitle renders the month header, e.g. "2026년 1월" or "January 2026".
func FormatMonthTitle(t time.Time, locale language.Tag) string {
	if locale == language.English {
		return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
	}
	return fmt.Sprintf("%d년 %d월", t.Year(), int(t.Month()))
}
