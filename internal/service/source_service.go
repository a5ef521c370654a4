package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/source"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
)

const summaryCachePrefix = "summary"

// InstrumentedSource decorates an event source with latency metrics and a
// read-through cache for month summaries. Failures are wrapped as
// ErrSourceUnavailable.
type InstrumentedSource struct {
	next    source.EventSource
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewInstrumentedSource wraps next. cache and metrics may be nil.
func NewInstrumentedSource(next source.EventSource, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *InstrumentedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedSource{next: next, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

var _ source.EventSource = (*InstrumentedSource)(nil)

// SummaryCacheKey derives the cache key from the canonical summary parameters.
func SummaryCacheKey(q source.MonthSummaryQuery) string {
	region := q.RegionID
	if region == "" {
		region = models.RegionAll
	}
	params := url.Values{}
	params.Set("month", string(q.Month))
	params.Set("region", region)
	params.Set("categories", strings.Join(source.CategoryStrings(q.Categories), ","))
	return summaryCachePrefix + ":" + params.Encode()
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return appErrors.WrapAs(err, appErrors.ErrSourceUnavailable, "")
}

// GetMonthSummary serves cached summaries when possible.
func (s *InstrumentedSource) GetMonthSummary(ctx context.Context, q source.MonthSummaryQuery) (*models.MonthSummary, error) {
	key := SummaryCacheKey(q)
	var cached models.MonthSummary
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	start := time.Now()
	summary, err := s.next.GetMonthSummary(ctx, q)
	s.metrics.ObserveSourceCall("month_summary", err, time.Since(start))
	if err != nil {
		return nil, unavailable(err)
	}
	if summary == nil {
		summary = models.EmptyMonthSummary()
	}
	summary.EnsureRegions()
	s.cache.Set(ctx, key, summary, s.ttl)
	return summary, nil
}

// Refresh bypasses the cache and stores a fresh summary.
func (s *InstrumentedSource) Refresh(ctx context.Context, q source.MonthSummaryQuery) error {
	start := time.Now()
	summary, err := s.next.GetMonthSummary(ctx, q)
	s.metrics.ObserveSourceCall("month_summary", err, time.Since(start))
	if err != nil {
		return unavailable(err)
	}
	if summary == nil {
		summary = models.EmptyMonthSummary()
	}
	summary.EnsureRegions()
	s.cache.Set(ctx, SummaryCacheKey(q), summary, s.ttl)
	return nil
}

// GetEventsByDate is never cached.
func (s *InstrumentedSource) GetEventsByDate(ctx context.Context, q source.EventsByDateQuery) (*models.EventPage, error) {
	start := time.Now()
	page, err := s.next.GetEventsByDate(ctx, q)
	s.metrics.ObserveSourceCall("events_by_date", err, time.Since(start))
	return page, unavailable(err)
}

// GetPopularEvents is never cached.
func (s *InstrumentedSource) GetPopularEvents(ctx context.Context, q source.PopularEventsQuery) ([]models.Event, error) {
	start := time.Now()
	events, err := s.next.GetPopularEvents(ctx, q)
	s.metrics.ObserveSourceCall("popular_events", err, time.Since(start))
	return events, unavailable(err)
}
