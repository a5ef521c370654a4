// Package aggregate turns day summaries and event lists into the per-date
// category counts and grid cells of a month view.
package aggregate

import (
	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

// CountsByDate maps a date to its per-category counts. Lookups of a missing
// date yield zero counts, so callers never distinguish absent from empty.
type CountsByDate map[calendar.IsoDate]map[models.CategoryKey]int

// BuildCountsByDate builds a fresh lookup from day summaries. Every entry has
// a count for each known category and negative counts are clamped to zero.
// Later duplicates of a date replace earlier ones.
func BuildCountsByDate(days []models.DaySummary) CountsByDate {
	out := make(CountsByDate, len(days))
	for _, day := range days {
		counts := zeroCounts()
		for _, k := range models.CategoryKeys {
			if n := day.Counts[k]; n > 0 {
				counts[k] = n
			}
		}
		out[day.Date] = counts
	}
	return out
}

func zeroCounts() map[models.CategoryKey]int {
	out := make(map[models.CategoryKey]int, len(models.CategoryKeys))
	for _, k := range models.CategoryKeys {
		out[k] = 0
	}
	return out
}

// For returns a copy of the counts for d, all zero when d is missing.
func (c CountsByDate) For(d calendar.IsoDate) map[models.CategoryKey]int {
	out := zeroCounts()
	for k, n := range c[d] {
		out[k] = n
	}
	return out
}

// Count returns the count of category k on d.
func (c CountsByDate) Count(d calendar.IsoDate, k models.CategoryKey) int {
	return c[d][k]
}

// SummarizeEvents counts, for each day of month, the events covering it by
// category. Events outside the month contribute nothing.
func SummarizeEvents(items []models.EventListItem, month calendar.IsoMonth) []models.DaySummary {
	days := month.Days()
	out := make([]models.DaySummary, len(days))
	for i, d := range days {
		out[i] = models.DaySummary{Date: d, Counts: zeroCounts()}
	}
	for _, item := range items {
		if !item.Category.Key.Valid() {
			continue
		}
		for i := range out {
			if item.Covers(out[i].Date) {
				out[i].Counts[item.Category.Key]++
			}
		}
	}
	return out
}

// PillVisible applies the count visibility rule: the date is in the displayed
// month, the category is active and its count is positive. Each condition is
// checked on its own.
func PillVisible(d calendar.IsoDate, displayed calendar.IsoMonth, active models.CategorySet, counts CountsByDate, k models.CategoryKey) bool {
	if !displayed.Contains(d) {
		return false
	}
	if !active[k] {
		return false
	}
	return counts.Count(d, k) > 0
}

// EventsForDay lists the items covering d in their input order. A date
// outside the displayed month is inert and yields nothing.
func EventsForDay(items []models.EventListItem, d calendar.IsoDate, displayed calendar.IsoMonth, active models.CategorySet) []models.EventListItem {
	out := make([]models.EventListItem, 0)
	if !displayed.Contains(d) {
		return out
	}
	for _, item := range items {
		if active[item.Category.Key] && item.Covers(d) {
			out = append(out, item)
		}
	}
	return out
}
