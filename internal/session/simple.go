package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/aggregate"
	"github.com/noah-isme/popspot-calendar/internal/fetch"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/query"
	"github.com/noah-isme/popspot-calendar/internal/source"
)

// SimpleView is the compact calendar grid.
type SimpleView struct {
	State query.SimpleCalendarFilterState `json:"state"`
	Query string                          `json:"query"`
	Grid  aggregate.Grid                  `json:"grid"`
	Error bool                            `json:"error"`
}

// LoadSimpleMonth builds the compact grid. With "event" selected the counts
// come from the month summary; with only "wishlist" they are the viewer's
// liked events among the popular list. Nothing selected renders an empty grid
// without fetching. ok is false when a newer call superseded this one.
func (c *Controller) LoadSimpleMonth(ctx context.Context, state query.SimpleCalendarFilterState) (view SimpleView, ok bool) {
	view = SimpleView{State: state, Query: c.codec.SerializeSimple(state).Encode()}
	counts := aggregate.BuildCountsByDate(nil)

	type outcome struct {
		days []models.DaySummary
		err  error
	}
	ok = fetch.Run(ctx, c.coord, fetch.KindSimpleMonth, view.Query,
		func(ctx context.Context) (outcome, error) {
			switch {
			case state.Filters[models.SimpleFilterEvent]:
				summary, err := c.src.GetMonthSummary(ctx, source.MonthSummaryQuery{
					Month:      state.Month,
					RegionID:   models.RegionAll,
					Categories: models.CategoryKeys,
				})
				if err != nil || summary == nil {
					return outcome{err: err}, err
				}
				return outcome{days: summary.Days}, nil
			case state.Filters[models.SimpleFilterWishlist]:
				events, err := c.src.GetPopularEvents(ctx, source.PopularEventsQuery{
					Limit:      source.MaxPageSize,
					Categories: models.CategoryKeys,
				}.Normalize())
				if err != nil {
					return outcome{err: err}, err
				}
				liked, _ := c.pipeline.ApplySimple(c.project(events), state.Filters, source.LikedSet(c.viewer))
				return outcome{days: aggregate.SummarizeEvents(liked, state.Month)}, nil
			default:
				return outcome{}, nil
			}
		},
		func(result outcome, err error) {
			if err != nil {
				c.logger.Warn("simple calendar fetch failed", zap.String("month", string(state.Month)), zap.Error(err))
				view.Error = true
				return
			}
			counts = aggregate.BuildCountsByDate(result.days)
		},
	)

	view.Grid = aggregate.BuildGrid(aggregate.GridOptions{
		Month:     state.Month,
		Weeks:     c.opts.Weeks,
		WeekStart: c.opts.WeekStart,
		Locale:    c.opts.Locale,
		Today:     c.pipeline.Today(),
		Active:    models.AllCategories(),
		Counts:    counts,
	})
	return view, ok
}
