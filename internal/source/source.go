// Package source declares the event data contract the calendar consumes and
// the viewer capability it reads liked events and authentication from.
package source

import (
	"context"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
)

// MonthSummaryQuery requests per-day counts for one month. An empty
// Categories slice means no category, never all of them.
type MonthSummaryQuery struct {
	Month      calendar.IsoMonth
	RegionID   string
	Categories []models.CategoryKey
}

// EventsByDateQuery requests the events covering one date.
type EventsByDateQuery struct {
	Date          calendar.IsoDate
	Categories    []models.CategoryKey
	Subcategories map[models.CategoryKey]string
	RegionID      string
	Keyword       string
	SortBy        sorter.SortKey
	Page          int
	Size          int
}

// PopularEventsQuery requests the most popular events across the catalogue.
type PopularEventsQuery struct {
	Limit         int
	Categories    []models.CategoryKey
	Subcategories map[models.CategoryKey]string
	RegionID      string
	Keyword       string
	SortBy        sorter.SortKey
}

// EventSource applies region, category, subcategory, keyword and paging
// natively. Every method accepts partially default filters.
type EventSource interface {
	GetMonthSummary(ctx context.Context, q MonthSummaryQuery) (*models.MonthSummary, error)
	GetEventsByDate(ctx context.Context, q EventsByDateQuery) (*models.EventPage, error)
	GetPopularEvents(ctx context.Context, q PopularEventsQuery) ([]models.Event, error)
}

// Default paging used when a query leaves it unset.
const (
	DefaultPage         = 1
	DefaultPageSize     = 20
	MaxPageSize         = 100
	DefaultPopularLimit = 10
)

// Normalize fills paging defaults.
func (q EventsByDateQuery) Normalize() EventsByDateQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	if q.RegionID == "" {
		q.RegionID = models.RegionAll
	}
	q.SortBy = sorter.ParseSortKey(string(q.SortBy))
	return q
}

// Normalize fills the limit default.
func (q PopularEventsQuery) Normalize() PopularEventsQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPopularLimit
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.RegionID == "" {
		q.RegionID = models.RegionAll
	}
	q.SortBy = sorter.ParseSortKey(string(q.SortBy))
	return q
}

// Offset is the zero-based row offset of the requested page.
func (q EventsByDateQuery) Offset() int {
	return (q.Page - 1) * q.Size
}

// CategoryStrings renders keys for drivers that need plain strings.
func CategoryStrings(keys []models.CategoryKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

// Viewer is the read-only ambient user capability.
type Viewer interface {
	LikedIDs() []string
	IsAuthenticated() bool
}

// StaticViewer is a Viewer backed by fixed values.
type StaticViewer struct {
	UserID string
	Liked  []string
}

// LikedIDs implements Viewer.
func (v StaticViewer) LikedIDs() []string { return append([]string(nil), v.Liked...) }

// IsAuthenticated implements Viewer.
func (v StaticViewer) IsAuthenticated() bool { return v.UserID != "" }

// Anonymous is the viewer of unauthenticated requests.
func Anonymous() Viewer { return StaticViewer{} }

// LikedSet indexes a viewer's liked ids. A nil viewer likes nothing.
func LikedSet(v Viewer) map[string]bool {
	out := map[string]bool{}
	if v == nil {
		return out
	}
	for _, id := range v.LikedIDs() {
		out[id] = true
	}
	return out
}
