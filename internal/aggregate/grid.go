package aggregate

import (
	"time"

	"golang.org/x/text/language"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

// Pill is a visible category count on a grid cell.
type Pill struct {
	Category models.CategoryTag `json:"category"`
	Count    int                `json:"count"`
}

// Cell is one day of the month grid. Out-of-month cells carry zero counts,
// no pills and are not interactive even when data exists for their date.
type Cell struct {
	Date        calendar.IsoDate           `json:"date"`
	Day         int                        `json:"day"`
	Weekday     time.Weekday               `json:"weekday"`
	InMonth     bool                       `json:"in_month"`
	Today       bool                       `json:"today"`
	Selected    bool                       `json:"selected"`
	Interactive bool                       `json:"interactive"`
	Counts      map[models.CategoryKey]int `json:"counts"`
	Pills       []Pill                     `json:"pills"`
}

// Grid is the rendered month view.
type Grid struct {
	Month    calendar.IsoMonth `json:"month"`
	Title    string            `json:"title"`
	Weeks    int               `json:"weeks"`
	Weekdays []string          `json:"weekdays"`
	Cells    []Cell            `json:"cells"`
}

// GridOptions configures BuildGrid.
type GridOptions struct {
	Month     calendar.IsoMonth
	Weeks     int
	WeekStart time.Weekday
	Locale    language.Tag
	Today     calendar.IsoDate
	Selected  calendar.IsoDate
	Active    models.CategorySet
	Counts    CountsByDate
}

// BuildGrid assembles the grid cells for opts.Month. An invalid month yields
// an empty grid.
func BuildGrid(opts GridOptions) Grid {
	grid := Grid{Month: opts.Month, Weeks: opts.Weeks, Weekdays: calendar.WeekdayLabels(opts.Locale, opts.WeekStart), Cells: []Cell{}}
	first, ok := opts.Month.FirstDay(time.UTC)
	if !ok {
		return grid
	}
	grid.Title = calendar.FormatMonthTitle(first, opts.Locale)

	days := calendar.BuildMonthGrid(first, opts.Weeks, opts.WeekStart)
	grid.Cells = make([]Cell, 0, len(days))
	for _, day := range days {
		date := calendar.ToIsoDateLocal(day)
		inMonth := opts.Month.Contains(date)
		cell := Cell{
			Date:        date,
			Day:         day.Day(),
			Weekday:     day.Weekday(),
			InMonth:     inMonth,
			Today:       date == opts.Today,
			Selected:    inMonth && date == opts.Selected,
			Interactive: inMonth,
			Counts:      zeroCounts(),
			Pills:       []Pill{},
		}
		if inMonth {
			cell.Counts = opts.Counts.For(date)
		}
		for _, k := range models.CategoryKeys {
			if PillVisible(date, opts.Month, opts.Active, opts.Counts, k) {
				cell.Pills = append(cell.Pills, Pill{Category: models.TagFor(k), Count: opts.Counts.Count(date, k)})
			}
		}
		grid.Cells = append(grid.Cells, cell)
	}
	return grid
}
