package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/noah-isme/popspot-calendar/internal/models"
)

// Custom properties carried by promoter feeds.
const (
	propPrice        = "X-PRICE"
	propPriceDisplay = "X-PRICE-DISPLAY"
	propHours        = "X-BUSINESS-HOURS"
	propRecurrenceID = "RECURRENCE-ID"
	propCreated      = "CREATED"
)

// vevent is a parsed VEVENT before recurrence expansion. For all-day events
// End is the exclusive DTEND date.
type vevent struct {
	uid          string
	summary      string
	category     models.CategoryKey
	subcategory  string
	regionID     string
	start        time.Time
	end          time.Time
	hasEnd       bool
	allDay       bool
	rrule        string
	exDates      []time.Time
	recurrenceID *time.Time
	price        *int
	priceDisplay *string
	hours        *string
	created      *time.Time
}

// parseFeed decodes body. Events that cannot be read are skipped and counted.
func parseFeed(feed Feed, body []byte, loc *time.Location) ([]vevent, int, error) {
	if len(body) == 0 {
		return nil, 0, errors.New("empty ics body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse ics feed %s: %w", feed.ID, err)
	}

	out := make([]vevent, 0)
	skipped := 0
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(feed, ve, loc)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, ev)
	}
	return out, skipped, nil
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func parseVEvent(feed Feed, ve *ical.VEvent, loc *time.Location) (vevent, error) {
	ev := vevent{
		uid:         propValue(ve, ical.ComponentPropertyUniqueId),
		summary:     propValue(ve, ical.ComponentPropertySummary),
		category:    feed.Category,
		subcategory: feed.Subcategory,
		regionID:    feed.RegionID,
	}
	if ev.uid == "" {
		return ev, errors.New("missing UID")
	}
	ev.uid = feed.ID + ":" + ev.uid

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("missing DTSTART")
	}
	ev.allDay = isDateValue(dtStart)
	if ev.allDay {
		start, err := parseDate(dtStart.Value, loc)
		if err != nil {
			return ev, err
		}
		ev.start = start
		ev.end = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseDate(dtEnd.Value, loc); err == nil && end.After(start) {
				ev.end = end
			}
		}
		ev.hasEnd = true
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, err
		}
		ev.start = start.In(loc)
		if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
			ev.end = end.In(loc)
			ev.hasEnd = true
		} else {
			ev.end = ev.start
		}
	}

	for _, token := range strings.Split(propValue(ve, ical.ComponentPropertyCategories), ",") {
		if key := models.CategoryKey(strings.ToLower(strings.TrimSpace(token))); key.Valid() {
			ev.category = key
			break
		}
	}

	ev.rrule = propValue(ve, ical.ComponentPropertyRrule)
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseStamp(part, loc); err == nil {
				ev.exDates = append(ev.exDates, t)
			}
		}
	}
	if rid := ve.GetProperty(propRecurrenceID); rid != nil {
		if t, err := parseStamp(rid.Value, loc); err == nil {
			ev.recurrenceID = &t
		}
	}

	if raw := propValue(ve, propPrice); raw != "" {
		if n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", "")); err == nil && n >= 0 {
			ev.price = &n
		}
	}
	if raw := propValue(ve, propPriceDisplay); raw != "" {
		ev.priceDisplay = &raw
	}
	if raw := propValue(ve, propHours); raw != "" {
		ev.hours = &raw
	}
	if raw := propValue(ve, propCreated); raw != "" {
		if created, err := parseStamp(raw, loc); err == nil {
			ev.created = &created
		}
	}
	return ev, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseDate(v string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("20060102", strings.TrimSpace(v), loc)
}

// parseStamp reads DATE, local DATE-TIME and UTC DATE-TIME forms.
func parseStamp(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse("20060102T150405Z", v)
		return t.In(loc), err
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return parseDate(v, loc)
	}
}
