package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/handler"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/query"
	"github.com/noah-isme/popspot-calendar/internal/service"
	"github.com/noah-isme/popspot-calendar/internal/session"
	"github.com/noah-isme/popspot-calendar/internal/source"
	"github.com/noah-isme/popspot-calendar/pkg/config"
	"github.com/noah-isme/popspot-calendar/pkg/export"
	"github.com/noah-isme/popspot-calendar/pkg/sharelink"
)

type emptySource struct{}

func (emptySource) GetMonthSummary(context.Context, source.MonthSummaryQuery) (*models.MonthSummary, error) {
	return &models.MonthSummary{}, nil
}

func (emptySource) GetEventsByDate(context.Context, source.EventsByDateQuery) (*models.EventPage, error) {
	return &models.EventPage{}, nil
}

func (emptySource) GetPopularEvents(context.Context, source.PopularEventsQuery) ([]models.Event, error) {
	return nil, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api/v1"}
	codec := query.NewCodec(
		query.WithClock(func() time.Time { return time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC) }),
		query.WithLocation(time.UTC),
	)
	metrics := service.NewMetricsService()
	src := service.NewInstrumentedSource(emptySource{}, nil, metrics, 0, nil)
	calendarSvc := service.NewCalendarService(codec, src, session.Options{}, metrics, nil)
	shares := service.NewShareService(calendarSvc, sharelink.NewSigner("secret", time.Hour), "http://localhost", nil)
	exports := service.NewExportService(calendarSvc, export.NewCSVExporter(false), export.NewPDFExporter(""))

	return newRouter(cfg, zap.NewNop(), metrics, routes{
		calendar: handler.NewCalendarHandler(calendarSvc, exports, shares),
		metrics:  handler.NewMetricsHandler(metrics, nil),
		viewers:  service.NewViewerService("", nil, nil),
	})
}

func TestRouterServesCalendarRoutes(t *testing.T) {
	router := testRouter(t)

	for _, target := range []string{
		"/health",
		"/ready",
		"/metrics",
		"/api/v1/calendar/month?region=seoul",
		"/api/v1/calendar/simple?month=2026-10&filters=event",
		"/api/v1/calendar/events?date=2026-10-15",
		"/api/v1/events/popular",
		"/api/v1/events/export?format=csv",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestRouterMonthReturnsCanonicalQuery(t *testing.T) {
	router := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/month?region=seoul", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data session.MonthView      `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "month=10&regionId=seoul&year=2026", env.Data.Query)
	assert.Equal(t, false, env.Meta["degraded"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestRouterTransitionAndShare(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/calendar/state/transitions",
		strings.NewReader(`{"query":"year=2026&month=12","action":"next_month"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var transition struct {
		Data struct {
			Query  string `json:"query"`
			Pushed bool   `json:"pushed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transition))
	assert.Equal(t, "month=1&year=2027", transition.Data.Query)
	assert.True(t, transition.Data.Pushed)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/calendar/share", strings.NewReader(`{"query":"year=2026"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/calendar/share/"+created.Data.Token+"?strict=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
