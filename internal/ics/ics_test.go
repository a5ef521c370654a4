package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
	"github.com/noah-isme/popspot-calendar/internal/source"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//popspot//test//KO\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:allday-1\r\n" +
	"DTSTAMP:20251201T000000Z\r\n" +
	"SUMMARY:성수 팝업\r\n" +
	"DTSTART;VALUE=DATE:20260105\r\n" +
	"DTEND;VALUE=DATE:20260108\r\n" +
	"X-PRICE-DISPLAY:무료\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:weekly-1\r\n" +
	"DTSTAMP:20251201T000000Z\r\n" +
	"SUMMARY:주말 전시 투어\r\n" +
	"CATEGORIES:exhibition\r\n" +
	"DTSTART:20260103T100000Z\r\n" +
	"DTEND:20260103T120000Z\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=4\r\n" +
	"EXDATE:20260110T100000Z\r\n" +
	"X-PRICE:15000\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:no uid\r\n" +
	"DTSTART;VALUE=DATE:20260101\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseFeeds(t *testing.T) {
	feeds, err := ParseFeeds([]byte(`
feeds:
  - id: seoul-popups
    name: 서울 팝업
    url: https://example.com/seoul.ics
    category: popup
    region_id: seoul
    region_name: 서울
  - url: https://example.com/other.ics
    category: concert
`))
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "seoul", feeds[0].RegionID)
	assert.Equal(t, "feed-2", feeds[1].ID)
	assert.Equal(t, models.CategoryPopup, feeds[1].Category)
	assert.Equal(t, models.RegionAll, feeds[1].RegionID)

	_, err = ParseFeeds([]byte("feeds:\n  - id: broken\n"))
	assert.Error(t, err)
}

func newTestSource(t *testing.T, body string) (*Source, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	feeds := []Feed{{ID: "seoul", URL: srv.URL, Category: models.CategoryPopup, RegionID: "seoul", RegionName: "서울"}}
	src := NewSource(feeds, NewFetcher(time.Second, nil), time.UTC, nil)
	src.now = func() time.Time { return time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC) }
	return src, &hits
}

func TestSourceMonthSummary(t *testing.T) {
	src, hits := newTestSource(t, sampleFeed)

	summary, err := src.GetMonthSummary(context.Background(), source.MonthSummaryQuery{
		Month:      "2026-01",
		Categories: models.CategoryKeys,
	})
	require.NoError(t, err)
	require.Len(t, summary.Days, 31)

	counts := map[calendar.IsoDate]map[models.CategoryKey]int{}
	for _, d := range summary.Days {
		counts[d.Date] = d.Counts
	}
	assert.Equal(t, 1, counts["2026-01-05"][models.CategoryPopup])
	assert.Equal(t, 1, counts["2026-01-07"][models.CategoryPopup])
	assert.Equal(t, 0, counts["2026-01-08"][models.CategoryPopup], "all-day DTEND is exclusive")
	assert.Equal(t, 1, counts["2026-01-03"][models.CategoryExhibition])
	assert.Equal(t, 0, counts["2026-01-10"][models.CategoryExhibition], "EXDATE removes the occurrence")
	assert.Equal(t, 1, counts["2026-01-24"][models.CategoryExhibition])
	assert.Equal(t, 0, counts["2026-01-31"][models.CategoryExhibition], "COUNT limits the series")
	assert.Equal(t, []models.Region{{ID: "seoul", Name: "서울"}}, summary.Regions)

	_, err = src.GetMonthSummary(context.Background(), source.MonthSummaryQuery{Month: "2026-01", Categories: models.CategoryKeys})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestSourceEventsByDate(t *testing.T) {
	src, _ := newTestSource(t, sampleFeed)

	page, err := src.GetEventsByDate(context.Background(), source.EventsByDateQuery{
		Date:       "2026-01-07",
		Categories: []models.CategoryKey{models.CategoryPopup},
		RegionID:   "seoul",
		Keyword:    "성수",
		SortBy:     sorter.SortLatest,
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "seoul:allday-1", page.Events[0].ID)
	item := page.Events[0].ToListItem()
	assert.Equal(t, calendar.IsoDate("2026-01-07"), item.End)

	page, err = src.GetEventsByDate(context.Background(), source.EventsByDateQuery{
		Date:       "2026-01-17",
		Categories: []models.CategoryKey{models.CategoryExhibition},
	})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.True(t, strings.HasPrefix(page.Events[0].ID, "seoul:weekly-1@"))
	require.NotNil(t, page.Events[0].Price)
	assert.Equal(t, 15000, *page.Events[0].Price)

	page, err = src.GetEventsByDate(context.Background(), source.EventsByDateQuery{Date: "2026-01-17"})
	require.NoError(t, err)
	assert.Empty(t, page.Events)
}

func TestSourcePopularAndFailures(t *testing.T) {
	src, _ := newTestSource(t, sampleFeed)

	events, err := src.GetPopularEvents(context.Background(), source.PopularEventsQuery{Categories: models.CategoryKeys, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	broken := NewSource([]Feed{{ID: "down", URL: "http://127.0.0.1:0/none.ics", Category: models.CategoryPopup}}, NewFetcher(200*time.Millisecond, nil), time.UTC, nil)
	_, err = broken.GetMonthSummary(context.Background(), source.MonthSummaryQuery{Month: "2026-01", Categories: models.CategoryKeys})
	assert.Error(t, err)
}

func TestExpandOverrideKeepsSeriesDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	moved := start.AddDate(0, 0, 1)
	series := vevent{
		uid:      "daily-1",
		category: models.CategoryPopup,
		start:    start,
		end:      start.Add(time.Hour),
		hasEnd:   true,
		rrule:    "FREQ=DAILY;COUNT=4",
	}
	override := series
	override.rrule = ""
	override.recurrenceID = &moved
	override.end = moved.Add(72 * time.Hour)
	override.start = moved

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := expand([]vevent{series, override}, from, from.AddDate(0, 1, 0), zap.NewNop())
	require.Len(t, events, 4)

	spans := map[string]time.Duration{}
	for _, ev := range events {
		require.NotNil(t, ev.EndDate)
		spans[ev.ID] = ev.EndDate.Sub(ev.StartDate)
	}
	assert.Equal(t, map[string]time.Duration{
		"daily-1@20260101": time.Hour,
		"daily-1@20260102": 72 * time.Hour,
		"daily-1@20260103": time.Hour,
		"daily-1@20260104": time.Hour,
	}, spans)
}
