package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/source"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
)

type memoryCacheRepo struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(context.Context, string) error {
	m.entries = map[string][]byte{}
	return nil
}

func TestInstrumentedSourceCachesMonthSummary(t *testing.T) {
	src := &stubSource{summary: &models.MonthSummary{
		Days: []models.DaySummary{{Date: "2026-10-01", Counts: map[models.CategoryKey]int{models.CategoryPopup: 1}}},
	}}
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	wrapped := NewInstrumentedSource(src, cache, metrics, 0, nil)
	q := source.MonthSummaryQuery{Month: "2026-10", Categories: models.CategoryKeys}

	first, err := wrapped.GetMonthSummary(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []models.Region{models.AllRegion()}, first.Regions)

	second, err := wrapped.GetMonthSummary(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first.Days, second.Days)
	assert.Equal(t, 1, src.summaryHits)
	assert.Equal(t, time.Minute, repo.ttls[SummaryCacheKey(q)])

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.Equal(t, uint64(1), snapshot.SourceCalls)

	require.NoError(t, wrapped.Refresh(context.Background(), q))
	assert.Equal(t, 2, src.summaryHits)
}

func TestInstrumentedSourceTreatsCacheErrorsAsMiss(t *testing.T) {
	src := &stubSource{summary: &models.MonthSummary{}}
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("redis down")
	wrapped := NewInstrumentedSource(src, NewCacheService(repo, nil, 0, nil, true), nil, 0, nil)

	_, err := wrapped.GetMonthSummary(context.Background(), source.MonthSummaryQuery{Month: "2026-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, src.summaryHits)
}

func TestInstrumentedSourceWrapsFailures(t *testing.T) {
	wrapped := NewInstrumentedSource(&stubSource{err: errors.New("timeout")}, nil, nil, 0, nil)

	_, err := wrapped.GetMonthSummary(context.Background(), source.MonthSummaryQuery{Month: "2026-10"})
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
	_, err = wrapped.GetEventsByDate(context.Background(), source.EventsByDateQuery{Date: "2026-10-01"})
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
	_, err = wrapped.GetPopularEvents(context.Background(), source.PopularEventsQuery{})
	assert.ErrorIs(t, err, appErrors.ErrSourceUnavailable)
}

func TestSummaryCacheKeyIsCanonical(t *testing.T) {
	a := SummaryCacheKey(source.MonthSummaryQuery{Month: "2026-10", Categories: []models.CategoryKey{models.CategoryPopup}})
	b := SummaryCacheKey(source.MonthSummaryQuery{Month: "2026-10", RegionID: models.RegionAll, Categories: []models.CategoryKey{models.CategoryPopup}})
	assert.Equal(t, a, b)
	assert.Equal(t, "summary:categories=popup&month=2026-10&region=all", a)
}

type nilSummarySource struct {
	stubSource
}

func (*nilSummarySource) GetMonthSummary(context.Context, source.MonthSummaryQuery) (*models.MonthSummary, error) {
	return nil, nil
}

func TestInstrumentedSourceNilSummaryFallsBackToEmpty(t *testing.T) {
	repo := newMemoryCacheRepo()
	wrapped := NewInstrumentedSource(&nilSummarySource{}, NewCacheService(repo, nil, time.Minute, nil, true), nil, 0, nil)
	q := source.MonthSummaryQuery{Month: "2026-10", Categories: models.CategoryKeys}

	summary, err := wrapped.GetMonthSummary(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Empty(t, summary.Days)
	assert.Equal(t, []models.Region{models.AllRegion()}, summary.Regions)

	require.NoError(t, wrapped.Refresh(context.Background(), q))
	assert.Contains(t, repo.entries, SummaryCacheKey(q))
}
