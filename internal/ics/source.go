package ics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/aggregate"
	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
	"github.com/noah-isme/popspot-calendar/internal/source"
)

// popularHorizon bounds how far ahead popular events are looked up.
const popularHorizon = 90 * 24 * time.Hour

// Source implements source.EventSource over a set of feeds. Feeds that fail
// to load are logged and skipped; the call fails only when every feed fails.
type Source struct {
	feeds   []Feed
	fetcher *Fetcher
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewSource constructs an ICS-backed event source.
func NewSource(feeds []Feed, fetcher *Fetcher, loc *time.Location, logger *zap.Logger) *Source {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{feeds: feeds, fetcher: fetcher, loc: loc, now: time.Now, logger: logger}
}

var _ source.EventSource = (*Source)(nil)

type catalogueFilter struct {
	categories    map[models.CategoryKey]bool
	subcategories map[models.CategoryKey]string
	regionID      string
	keyword       string
}

func (f catalogueFilter) keep(ev models.Event) bool {
	if !f.categories[ev.Category] {
		return false
	}
	if sub, ok := f.subcategories[ev.Category]; ok && ev.Subcategory != sub {
		return false
	}
	if f.regionID != "" && f.regionID != models.RegionAll && ev.RegionID != f.regionID {
		return false
	}
	if f.keyword != "" && !strings.Contains(strings.ToLower(ev.Title), strings.ToLower(f.keyword)) {
		return false
	}
	return true
}

func newCatalogueFilter(categories []models.CategoryKey, subcategories map[models.CategoryKey]string, regionID, keyword string) catalogueFilter {
	set := map[models.CategoryKey]bool{}
	for _, k := range categories {
		set[k] = true
	}
	return catalogueFilter{categories: set, subcategories: subcategories, regionID: regionID, keyword: strings.TrimSpace(keyword)}
}

// load returns the events of every feed overlapping [from, to).
func (s *Source) load(ctx context.Context, from, to time.Time, f catalogueFilter) ([]models.Event, []models.Region, error) {
	var (
		events  []models.Event
		regions = map[string]models.Region{}
		errs    []error
	)
	for _, feed := range s.feeds {
		body, err := s.fetcher.Fetch(ctx, feed)
		if err != nil {
			s.logger.Warn("ics feed unavailable", zap.String("feed", feed.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		parsed, skipped, err := parseFeed(feed, body, s.loc)
		if err != nil {
			s.logger.Warn("ics feed unreadable", zap.String("feed", feed.ID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if skipped > 0 {
			s.logger.Debug("skipped unreadable ics events", zap.String("feed", feed.ID), zap.Int("count", skipped))
		}
		for _, ev := range expand(parsed, from, to, s.logger) {
			if f.keep(ev) {
				events = append(events, ev)
			}
		}
		if feed.RegionID != models.RegionAll && feed.RegionName != "" {
			regions[feed.RegionID] = models.Region{ID: feed.RegionID, Name: feed.RegionName}
		}
	}
	if len(s.feeds) > 0 && len(errs) == len(s.feeds) {
		return nil, nil, fmt.Errorf("all ics feeds failed: %w", errors.Join(errs...))
	}

	out := make([]models.Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return events, out, nil
}

func toItems(events []models.Event) []models.EventListItem {
	items := make([]models.EventListItem, len(events))
	for i, ev := range events {
		items[i] = ev.ToListItem()
	}
	return items
}

// GetMonthSummary counts the feed events covering each day of the month.
func (s *Source) GetMonthSummary(ctx context.Context, q source.MonthSummaryQuery) (*models.MonthSummary, error) {
	first, ok := q.Month.FirstDay(s.loc)
	if !ok {
		return nil, fmt.Errorf("invalid month %q", q.Month)
	}
	if len(q.Categories) == 0 {
		summary := &models.MonthSummary{Days: aggregate.SummarizeEvents(nil, q.Month)}
		summary.EnsureRegions()
		return summary, nil
	}

	events, regions, err := s.load(ctx, first, calendar.AddMonths(first, 1), newCatalogueFilter(q.Categories, nil, q.RegionID, ""))
	if err != nil {
		return nil, err
	}
	summary := &models.MonthSummary{Days: aggregate.SummarizeEvents(toItems(events), q.Month), Regions: regions}
	summary.EnsureRegions()
	return summary, nil
}

// GetEventsByDate pages through the feed events covering q.Date.
func (s *Source) GetEventsByDate(ctx context.Context, q source.EventsByDateQuery) (*models.EventPage, error) {
	q = q.Normalize()
	if len(q.Categories) == 0 {
		return &models.EventPage{Events: []models.Event{}}, nil
	}
	day, ok := q.Date.Time(s.loc)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", q.Date)
	}

	events, _, err := s.load(ctx, day, day.AddDate(0, 0, 1), newCatalogueFilter(q.Categories, q.Subcategories, q.RegionID, q.Keyword))
	if err != nil {
		return nil, err
	}
	covering := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if ev.ToListItem().Covers(q.Date) {
			covering = append(covering, ev)
		}
	}
	ordered := orderEvents(covering, q.SortBy)

	page := &models.EventPage{Events: []models.Event{}, Total: len(ordered)}
	if start := q.Offset(); start < len(ordered) {
		end := start + q.Size
		if end > len(ordered) {
			end = len(ordered)
		}
		page.Events = ordered[start:end]
	}
	return page, nil
}

// GetPopularEvents lists events running within the next popularHorizon.
func (s *Source) GetPopularEvents(ctx context.Context, q source.PopularEventsQuery) ([]models.Event, error) {
	q = q.Normalize()
	if len(q.Categories) == 0 {
		return []models.Event{}, nil
	}
	from := calendar.StartOfDay(s.now().In(s.loc))
	events, _, err := s.load(ctx, from, from.Add(popularHorizon), newCatalogueFilter(q.Categories, q.Subcategories, q.RegionID, q.Keyword))
	if err != nil {
		return nil, err
	}
	ordered := orderEvents(events, q.SortBy)
	if len(ordered) > q.Limit {
		ordered = ordered[:q.Limit]
	}
	return ordered, nil
}

// orderEvents sorts events with the list sort engine after a start-date
// baseline so feed order never leaks into ties.
func orderEvents(events []models.Event, key sorter.SortKey) []models.Event {
	baseline := append([]models.Event(nil), events...)
	sort.SliceStable(baseline, func(i, j int) bool { return baseline[i].StartDate.Before(baseline[j].StartDate) })

	byID := make(map[string]models.Event, len(baseline))
	for _, ev := range baseline {
		byID[ev.ID] = ev
	}
	sorted := sorter.Sort(toItems(baseline), key)
	out := make([]models.Event, 0, len(sorted))
	for _, item := range sorted {
		out = append(out, byID[item.ID])
	}
	return out
}
