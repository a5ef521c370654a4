// Package session runs the calendar for one viewer: it owns the query store,
// issues fetches through the cancellation coordinator, and exposes read-only
// month and day views. A failed fetch yields the empty view with Error set.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/noah-isme/popspot-calendar/internal/aggregate"
	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/fetch"
	"github.com/noah-isme/popspot-calendar/internal/filter"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/query"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
	"github.com/noah-isme/popspot-calendar/internal/source"
)

// Options configure the grid rendering.
type Options struct {
	Weeks     int
	WeekStart time.Weekday
	Locale    language.Tag
}

// MonthView is the grid for the current store state.
type MonthView struct {
	State   query.CalendarQueryState `json:"state"`
	Query   string                   `json:"query"`
	Grid    aggregate.Grid           `json:"grid"`
	Regions []models.Region          `json:"regions"`
	Error   bool                     `json:"error"`
}

// DayView lists the events of the selected date.
type DayView struct {
	Date   calendar.IsoDate       `json:"date"`
	Events []models.EventListItem `json:"events"`
	Total  int                    `json:"total"`
	Page   int                    `json:"page"`
	Stats  filter.Stats           `json:"-"`
	Error  bool                   `json:"error"`
}

// ListView is a filtered and sorted list outside the day selection.
type ListView struct {
	Events []models.EventListItem `json:"events"`
	Stats  filter.Stats           `json:"-"`
	Error  bool                   `json:"error"`
}

// Controller is safe for concurrent use. Fetches of the same kind supersede
// each other; only the latest one writes its result.
type Controller struct {
	store    *query.Store
	codec    *query.Codec
	src      source.EventSource
	viewer   source.Viewer
	coord    *fetch.Coordinator
	pipeline *filter.Pipeline
	opts     Options
	logger   *zap.Logger

	mu         sync.RWMutex
	summary    *models.MonthSummary
	counts     aggregate.CountsByDate
	summaryErr bool
	summaryFor calendar.IsoMonth
	day        DayView
	popular    ListView
}

// NewController wires a controller around an existing store.
func NewController(store *query.Store, codec *query.Codec, src source.EventSource, viewer source.Viewer, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if viewer == nil {
		viewer = source.Anonymous()
	}
	if opts.Weeks <= 0 {
		opts.Weeks = calendar.SixWeeks
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Korean
	}
	return &Controller{
		store:    store,
		codec:    codec,
		src:      src,
		viewer:   viewer,
		coord:    fetch.NewCoordinator(logger),
		pipeline: filter.NewPipeline(codec.Now, codec.Location(), logger),
		opts:     opts,
		logger:   logger,
		summary:  models.EmptyMonthSummary(),
		counts:   aggregate.BuildCountsByDate(nil),
		day:      DayView{Events: []models.EventListItem{}},
		popular:  ListView{Events: []models.EventListItem{}},
	}
}

// Store exposes the query store for mutations.
func (c *Controller) Store() *query.Store { return c.store }

// Pipeline exposes the filter pipeline.
func (c *Controller) Pipeline() *filter.Pipeline { return c.pipeline }

// Close cancels every in-flight fetch.
func (c *Controller) Close() { c.coord.CancelAll() }

// LoadMonth fetches the day summary for the store's current state. It
// reports whether the result was committed.
func (c *Controller) LoadMonth(ctx context.Context) bool {
	state := c.store.State()
	key := c.codec.Serialize(state).Encode()
	active := state.ActiveCategories.Active()

	return fetch.Run(ctx, c.coord, fetch.KindMonthSummary, key,
		func(ctx context.Context) (*models.MonthSummary, error) {
			if len(active) == 0 {
				return models.EmptyMonthSummary(), nil
			}
			return c.src.GetMonthSummary(ctx, source.MonthSummaryQuery{
				Month:      state.Month,
				RegionID:   state.RegionID,
				Categories: active,
			})
		},
		func(summary *models.MonthSummary, err error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.summaryFor = state.Month
			if err != nil || summary == nil {
				c.logger.Warn("month summary fetch failed", zap.String("month", string(state.Month)), zap.Error(err))
				c.summary = models.EmptyMonthSummary()
				c.counts = aggregate.BuildCountsByDate(nil)
				c.summaryErr = true
				return
			}
			summary.EnsureRegions()
			c.summary = summary
			c.counts = aggregate.BuildCountsByDate(summary.Days)
			c.summaryErr = false
		},
	)
}

// SelectDate fetches the events covering date, applies the local filters and
// sorts them. A date outside the displayed month clears the day view.
func (c *Controller) SelectDate(ctx context.Context, date calendar.IsoDate, local query.LocationEventFilterState, page, size int) bool {
	state := c.store.State()
	if !state.Month.Contains(date) || !c.codec.Bounds().ValidDate(string(date)) {
		c.coord.Cancel(fetch.KindEventsByDate)
		c.mu.Lock()
		c.day = DayView{Date: date, Events: []models.EventListItem{}, Page: source.DefaultPage}
		c.mu.Unlock()
		return false
	}

	q := source.EventsByDateQuery{
		Date:          date,
		Categories:    state.ActiveCategories.Active(),
		Subcategories: state.Subcategories(),
		RegionID:      state.RegionID,
		Keyword:       local.Keyword,
		SortBy:        local.SortBy,
		Page:          page,
		Size:          size,
	}.Normalize()
	key := string(date) + "|" + c.codec.Serialize(state).Encode() + "|" + c.codec.SerializeLocationFilter(local).Encode()

	return fetch.Run(ctx, c.coord, fetch.KindEventsByDate, key,
		func(ctx context.Context) (*models.EventPage, error) {
			if len(q.Categories) == 0 {
				return &models.EventPage{Events: []models.Event{}}, nil
			}
			return c.src.GetEventsByDate(ctx, q)
		},
		func(page *models.EventPage, err error) {
			view := DayView{Date: date, Events: []models.EventListItem{}, Page: q.Page}
			if err != nil || page == nil {
				c.logger.Warn("events by date fetch failed", zap.String("date", string(date)), zap.Error(err))
				view.Error = true
			} else {
				items := c.project(page.Events)
				items = aggregate.EventsForDay(items, date, state.Month, state.ActiveCategories)
				filtered, stats := c.pipeline.Apply(items, state.ActiveCategories, local)
				view.Events = sorter.Sort(filtered, q.SortBy)
				view.Stats = stats
				view.Total = page.Total - (len(page.Events) - len(view.Events))
				if view.Total < len(view.Events) {
					view.Total = len(view.Events)
				}
			}
			c.mu.Lock()
			c.day = view
			c.mu.Unlock()
		},
	)
}

// LoadPopular fetches popular events under the current and local filters.
func (c *Controller) LoadPopular(ctx context.Context, local query.LocationEventFilterState, limit int) bool {
	state := c.store.State()
	q := source.PopularEventsQuery{
		Limit:         limit,
		Categories:    state.ActiveCategories.Active(),
		Subcategories: state.Subcategories(),
		RegionID:      state.RegionID,
		Keyword:       local.Keyword,
		SortBy:        local.SortBy,
	}.Normalize()
	key := c.codec.Serialize(state).Encode() + "|" + c.codec.SerializeLocationFilter(local).Encode()

	return fetch.Run(ctx, c.coord, fetch.KindPopular, key,
		func(ctx context.Context) ([]models.Event, error) {
			if len(q.Categories) == 0 {
				return []models.Event{}, nil
			}
			return c.src.GetPopularEvents(ctx, q)
		},
		func(events []models.Event, err error) {
			view := ListView{Events: []models.EventListItem{}}
			if err != nil {
				c.logger.Warn("popular events fetch failed", zap.Error(err))
				view.Error = true
			} else {
				filtered, stats := c.pipeline.Apply(c.project(events), state.ActiveCategories, local)
				view.Events = sorter.Sort(filtered, q.SortBy)
				view.Stats = stats
			}
			c.mu.Lock()
			c.popular = view
			c.mu.Unlock()
		},
	)
}

func (c *Controller) project(events []models.Event) []models.EventListItem {
	liked := source.LikedSet(c.viewer)
	out := make([]models.EventListItem, 0, len(events))
	for _, ev := range events {
		item := ev.ToListItem()
		item.Liked = liked[item.ID]
		out = append(out, item)
	}
	return out
}

// MonthView renders the grid from the last committed summary. Counts from a
// summary of another month are never shown.
func (c *Controller) MonthView() MonthView {
	state := c.store.State()

	c.mu.RLock()
	counts := c.counts
	regions := append([]models.Region(nil), c.summary.Regions...)
	failed := c.summaryErr
	if c.summaryFor != state.Month {
		counts = aggregate.BuildCountsByDate(nil)
	}
	selected := c.day.Date
	c.mu.RUnlock()

	if len(regions) == 0 {
		regions = []models.Region{models.AllRegion()}
	}
	return MonthView{
		State:   state,
		Query:   c.codec.Serialize(state).Encode(),
		Regions: regions,
		Error:   failed,
		Grid: aggregate.BuildGrid(aggregate.GridOptions{
			Month:     state.Month,
			Weeks:     c.opts.Weeks,
			WeekStart: c.opts.WeekStart,
			Locale:    c.opts.Locale,
			Today:     c.pipeline.Today(),
			Selected:  selected,
			Active:    state.ActiveCategories,
			Counts:    counts,
		}),
	}
}

// DayView returns the last committed day view.
func (c *Controller) DayView() DayView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	view := c.day
	view.Events = append([]models.EventListItem{}, c.day.Events...)
	return view
}

// PopularView returns the last committed popular list.
func (c *Controller) PopularView() ListView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	view := c.popular
	view.Events = append([]models.EventListItem{}, c.popular.Events...)
	return view
}
