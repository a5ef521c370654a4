package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/dto"
	"github.com/noah-isme/popspot-calendar/internal/query"
	"github.com/noah-isme/popspot-calendar/internal/session"
	"github.com/noah-isme/popspot-calendar/internal/source"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
)

// Query parameters read by the list endpoints in addition to the filter state.
const (
	ParamDate  = "date"
	ParamPage  = "page"
	ParamSize  = "size"
	ParamLimit = "limit"
)

// Location filter actions accepted by Transition next to the store actions.
const (
	ActionToggleRegionFilter    = "toggle_region_filter"
	ActionTogglePopupCategory   = "toggle_popup_category"
	ActionToggleExhibitCategory = "toggle_exhibition_category"
	ActionSetDateRange          = "set_date_range"
	ActionSetPrice              = "set_price"
	ActionSetAmenities          = "set_amenities"
	ActionSetKeyword            = "set_keyword"
	ActionSetSort               = "set_sort"
	ActionToggleStatus          = "toggle_status"
)

// CalendarService builds calendar views for one request at a time. Each call
// runs a fresh session controller seeded from the request query.
type CalendarService struct {
	codec     *query.Codec
	src       source.EventSource
	opts      session.Options
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(codec *query.Codec, src source.EventSource, opts session.Options, metrics *MetricsService, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		codec:     codec,
		src:       src,
		opts:      opts,
		metrics:   metrics,
		validator: validator.New(),
		logger:    logger,
	}
}

// Codec exposes the query codec.
func (s *CalendarService) Codec() *query.Codec { return s.codec }

func (s *CalendarService) controller(values url.Values, viewer source.Viewer) *session.Controller {
	store := query.NewStore(s.codec, values, nil, s.logger)
	return session.NewController(store, s.codec, s.src, viewer, s.opts, s.logger)
}

// ParseRawQuery keeps whatever parsed from a possibly malformed query string.
func ParseRawQuery(raw string) url.Values {
	values, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if values == nil {
		values = url.Values{}
	}
	return values
}

// MonthView renders the rich calendar grid.
func (s *CalendarService) MonthView(ctx context.Context, values url.Values, viewer source.Viewer) session.MonthView {
	ctrl := s.controller(values, viewer)
	defer ctrl.Close()
	ctrl.LoadMonth(ctx)
	return ctrl.MonthView()
}

// SimpleView renders the compact calendar grid.
func (s *CalendarService) SimpleView(ctx context.Context, values url.Values, viewer source.Viewer) session.SimpleView {
	ctrl := s.controller(url.Values{}, viewer)
	defer ctrl.Close()
	view, _ := ctrl.LoadSimpleMonth(ctx, s.codec.ParseSimple(values))
	return view
}

func intParam(values url.Values, key string) int {
	raw, ok := query.Lookup(values, key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DayEvents lists the events of the date parameter. Without a month
// parameter the calendar opens on the date's month; otherwise a date outside
// the displayed month yields an empty list.
func (s *CalendarService) DayEvents(ctx context.Context, values url.Values, viewer source.Viewer) session.DayView {
	ctrl := s.controller(values, viewer)
	defer ctrl.Close()

	raw, _ := query.Lookup(values, ParamDate)
	date := calendar.IsoDate(strings.TrimSpace(raw))
	if !s.codec.Bounds().ValidDate(string(date)) {
		return session.DayView{Date: date, Events: ctrl.DayView().Events, Page: source.DefaultPage}
	}
	if _, ok := query.Lookup(values, query.ParamMonth); !ok {
		ctrl.Store().GoToMonth(date.Month())
	}
	ctrl.SelectDate(ctx, date, s.codec.ParseLocationFilter(values), intParam(values, ParamPage), intParam(values, ParamSize))
	view := ctrl.DayView()
	s.metrics.ObservePipeline(view.Stats)
	return view
}

// Popular lists popular events under the calendar and sidebar filters.
func (s *CalendarService) Popular(ctx context.Context, values url.Values, viewer source.Viewer) session.ListView {
	ctrl := s.controller(values, viewer)
	defer ctrl.Close()
	ctrl.LoadPopular(ctx, s.codec.ParseLocationFilter(values), intParam(values, ParamLimit))
	view := ctrl.PopularView()
	s.metrics.ObservePipeline(view.Stats)
	return view
}

// Canonical renders the canonical form of both filter states and keeps
// unrelated parameters such as date.
func (s *CalendarService) Canonical(values url.Values) url.Values {
	merged := s.codec.Merge(values, s.codec.Parse(values))
	return s.codec.MergeLocationFilter(merged, s.codec.ParseLocationFilter(values))
}

// Transition applies one action to the query and reports the next query.
func (s *CalendarService) Transition(ctx context.Context, req dto.TransitionRequest) (*dto.TransitionResponse, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return nil, appErrors.Validation(err, "invalid transition payload")
	}
	values := ParseRawQuery(req.Query)

	next, pushed, ok := s.locationTransition(values, req.Action, req.Value)
	if !ok {
		store := query.NewStore(s.codec, values, nil, s.logger)
		pushed = store.Apply(req.Action, req.Value)
		next = store.External()
	}
	return &dto.TransitionResponse{
		Query:    next.Encode(),
		Pushed:   pushed,
		State:    s.codec.Parse(next),
		Location: s.codec.ParseLocationFilter(next),
	}, nil
}

// locationTransition handles the sidebar actions; ok is false for any other action.
func (s *CalendarService) locationTransition(values url.Values, action, value string) (url.Values, bool, bool) {
	state := s.codec.ParseLocationFilter(values)
	parsed := func(key, raw string) query.LocationEventFilterState {
		return s.codec.ParseLocationFilter(url.Values{key: {raw}})
	}

	switch action {
	case ActionToggleRegionFilter:
		state = query.ToggleRegion(state, value)
	case ActionTogglePopupCategory:
		state = query.TogglePopupCategory(state, value)
	case ActionToggleExhibitCategory:
		state = query.ToggleExhibitionCategory(state, value)
	case ActionSetDateRange:
		start, end, _ := strings.Cut(value, ",")
		bounds := s.codec.ParseLocationFilter(url.Values{
			query.ParamStartDate: {strings.TrimSpace(start)},
			query.ParamEndDate:   {strings.TrimSpace(end)},
		})
		state = s.codec.SetDateRange(state, bounds.DateRange.StartDate, bounds.DateRange.EndDate)
	case ActionSetPrice:
		state = query.SetPrice(state, parsed(query.ParamPrice, value).Price)
	case ActionSetAmenities:
		state = query.SetAmenities(state, parsed(query.ParamAmenities, value).Amenities)
	case ActionSetKeyword:
		state = query.SetKeyword(state, value)
	case ActionSetSort:
		state = query.SetSort(state, value)
	case ActionToggleStatus:
		state = query.ToggleStatus(state, value)
	default:
		return nil, false, false
	}
	next := s.codec.MergeLocationFilter(values, state)
	return next, next.Encode() != values.Encode(), true
}
