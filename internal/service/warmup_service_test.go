package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/source"
	"github.com/noah-isme/popspot-calendar/pkg/jobs"
)

type recordingRefresher struct {
	mu     sync.Mutex
	months []calendar.IsoMonth
	err    error
}

func (r *recordingRefresher) Refresh(_ context.Context, q source.MonthSummaryQuery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.months = append(r.months, q.Month)
	return r.err
}

func fixedNow() time.Time { return time.Date(2030, time.November, 20, 12, 0, 0, 0, time.UTC) }

func TestWarmupJobsStayInsideBounds(t *testing.T) {
	svc := NewWarmupService(&recordingRefresher{}, fixedNow, time.UTC, calendar.DefaultBounds(), WarmupConfig{MonthsAhead: 3}, nil, nil)

	list := svc.Jobs()

	require.Len(t, list, 2)
	assert.Equal(t, "2030-11", list[0].Key)
	assert.Equal(t, "2030-12", list[1].Key)
	q, ok := list[0].Payload.(source.MonthSummaryQuery)
	require.True(t, ok)
	assert.Equal(t, models.RegionAll, q.RegionID)
	assert.Equal(t, models.CategoryKeys, q.Categories)
}

func TestWarmupHandleRefreshesMonth(t *testing.T) {
	refresher := &recordingRefresher{}
	metrics := NewMetricsService()
	svc := NewWarmupService(refresher, fixedNow, time.UTC, calendar.DefaultBounds(), WarmupConfig{}, metrics, nil)

	require.NoError(t, svc.handle(context.Background(), svc.Jobs()[0]))
	refresher.err = errors.New("down")
	assert.Error(t, svc.handle(context.Background(), svc.Jobs()[0]))
	assert.Error(t, svc.handle(context.Background(), jobs.Job{Payload: "bogus"}))

	assert.Equal(t, []calendar.IsoMonth{"2030-11", "2030-11"}, refresher.months)
}

func TestWarmupStartRunsImmediately(t *testing.T) {
	refresher := &recordingRefresher{}
	svc := NewWarmupService(refresher, fixedNow, time.UTC, calendar.DefaultBounds(), WarmupConfig{Schedule: "@every 1h", MonthsAhead: 1, Workers: 1}, nil, nil)

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	assert.Eventually(t, func() bool {
		refresher.mu.Lock()
		defer refresher.mu.Unlock()
		return len(refresher.months) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestWarmupRejectsBadSchedule(t *testing.T) {
	svc := NewWarmupService(&recordingRefresher{}, fixedNow, time.UTC, calendar.DefaultBounds(), WarmupConfig{Schedule: "every tuesday-ish"}, nil, nil)
	assert.Error(t, svc.Start(context.Background()))
}
