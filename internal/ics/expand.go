package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/models"
)

const maxOccurrencesPerEvent = 1000

// expand turns parsed VEVENTs into events overlapping [from, to). Recurring
// events become one event per occurrence; RECURRENCE-ID overrides replace the
// occurrence they name.
func expand(events []vevent, from, to time.Time, logger *zap.Logger) []models.Event {
	overrides := map[string]map[int64]vevent{}
	for _, ev := range events {
		if ev.recurrenceID == nil {
			continue
		}
		if overrides[ev.uid] == nil {
			overrides[ev.uid] = map[int64]vevent{}
		}
		overrides[ev.uid][ev.recurrenceID.Unix()] = ev
	}

	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if ev.recurrenceID != nil {
			continue
		}
		if ev.rrule == "" {
			if overlaps(ev.start, ev.end, from, to) {
				out = append(out, ev.toEvent(ev.uid, ev.start, ev.end))
			}
			continue
		}

		rule, err := rrule.StrToRRule(ev.rrule)
		if err != nil {
			logger.Warn("skipping event with unreadable RRULE", zap.String("uid", ev.uid), zap.String("rrule", ev.rrule), zap.Error(err))
			continue
		}
		rule.DTStart(ev.start)
		var set rrule.Set
		set.RRule(rule)
		for _, ex := range ev.exDates {
			set.ExDate(ex)
		}

		duration := ev.end.Sub(ev.start)
		occurrences := set.Between(from.Add(-duration), to, true)
		if len(occurrences) > maxOccurrencesPerEvent {
			logger.Warn("truncating recurring event", zap.String("uid", ev.uid), zap.Int("occurrences", len(occurrences)))
			occurrences = occurrences[:maxOccurrencesPerEvent]
		}
		for _, start := range occurrences {
			instance, span := ev, duration
			if o, ok := overrides[ev.uid][start.Unix()]; ok {
				instance = o
				start = o.start
				span = o.end.Sub(o.start)
			}
			end := start.Add(span)
			if !overlaps(start, end, from, to) {
				continue
			}
			id := fmt.Sprintf("%s@%s", ev.uid, start.Format("20060102"))
			out = append(out, instance.toEvent(id, start, end))
		}
	}
	return out
}

// overlaps treats a zero-length span as the instant start.
func overlaps(start, end, from, to time.Time) bool {
	if !end.After(start) {
		return !start.Before(from) && start.Before(to)
	}
	return start.Before(to) && end.After(from)
}

func (ev vevent) toEvent(id string, start, end time.Time) models.Event {
	out := models.Event{
		ID:            id,
		Title:         ev.summary,
		Category:      ev.category,
		Subcategory:   ev.subcategory,
		RegionID:      ev.regionID,
		StartDate:     start,
		AllDay:        ev.allDay,
		BusinessHours: ev.hours,
		PriceDisplay:  ev.priceDisplay,
		Price:         ev.price,
		CreatedAt:     ev.created,
	}
	if ev.hasEnd {
		e := end
		out.EndDate = &e
	}
	return out
}
