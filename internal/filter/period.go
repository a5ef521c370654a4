package filter

import (
	"regexp"
	"strconv"
	"time"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
)

var periodDatePattern = regexp.MustCompile(`(\d{4})\s*[.\-/]\s*(\d{1,2})\s*[.\-/]\s*(\d{1,2})`)

// Period is an event's display period reduced to calendar dates. End is
// empty for single-date periods.
type Period struct {
	Start calendar.IsoDate
	End   calendar.IsoDate
}

// Last is the final covered date.
func (p Period) Last() calendar.IsoDate {
	if p.End == "" {
		return p.Start
	}
	return p.End
}

// ParsePeriod reads display periods such as "2026.01.03 ~ 2026.02.01",
// "2026-01-03" or "2026/1/3 - 2026/1/9". Impossible dates fail the parse.
func ParsePeriod(raw string) (Period, bool) {
	matches := periodDatePattern.FindAllStringSubmatch(raw, 2)
	if len(matches) == 0 {
		return Period{}, false
	}

	dates := make([]calendar.IsoDate, 0, len(matches))
	for _, m := range matches {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > calendar.DaysInMonth(year, time.Month(month)) {
			return Period{}, false
		}
		dates = append(dates, calendar.ToIsoDateLocal(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)))
	}

	p := Period{Start: dates[0]}
	if len(dates) > 1 {
		p.End = dates[1]
		if p.End < p.Start {
			p.Start, p.End = p.End, p.Start
		}
	}
	return p, true
}
