package models

import (
	"fmt"
	"time"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
)

// Event is a raw exhibition/pop-up record as stored by the event source.
type Event struct {
	ID               string      `db:"id" json:"id"`
	Title            string      `db:"title" json:"title"`
	Category         CategoryKey `db:"category" json:"category"`
	Subcategory      string      `db:"subcategory" json:"subcategory"`
	RegionID         string      `db:"region_id" json:"region_id"`
	Period           string      `db:"period" json:"period"`
	StartDate        time.Time   `db:"start_date" json:"start_date"`
	EndDate          *time.Time  `db:"end_date" json:"end_date,omitempty"`
	AllDay           bool        `db:"all_day" json:"all_day"`
	BusinessHours    *string     `db:"business_hours" json:"business_hours,omitempty"`
	PriceDisplay     *string     `db:"price_display" json:"price_display,omitempty"`
	Price            *int        `db:"price" json:"price,omitempty"`
	DiscountPrice    *int        `db:"discount_price" json:"discount_price,omitempty"`
	LikeCount        int         `db:"like_count" json:"like_count"`
	ViewCount        int         `db:"view_count" json:"view_count"`
	RecommendedScore float64     `db:"recommended_score" json:"recommended_score"`
	CreatedAt        *time.Time  `db:"created_at" json:"created_at,omitempty"`
}

// EventListItem is the normalized, read-only card/list projection of an Event.
type EventListItem struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Start            calendar.IsoDate `json:"start"`
	End              calendar.IsoDate `json:"end"`
	Period           string           `json:"period"`
	BusinessHours    *string          `json:"business_hours,omitempty"`
	PriceDisplay     *string          `json:"price_display,omitempty"`
	Price            *int             `json:"price,omitempty"`
	Category         CategoryTag      `json:"category"`
	Subcategory      string           `json:"subcategory,omitempty"`
	RegionID         string           `json:"region_id,omitempty"`
	PopularityScore  int              `json:"popularity_score"`
	ViewCount        int              `json:"view_count"`
	RecommendedScore float64          `json:"recommended_score"`
	CreatedAtMs      int64            `json:"created_at_ms"`
	Liked            bool             `json:"liked"`
}

// ResolvedPrice prefers the discount price over the list price. A missing
// price resolves to zero, which reads as free.
func (e Event) ResolvedPrice() int {
	if e.DiscountPrice != nil {
		return *e.DiscountPrice
	}
	if e.Price != nil {
		return *e.Price
	}
	return 0
}

// ToListItem normalizes e for display. Dates are read from their components
// so the zone of the stored value never moves the calendar day.
func (e Event) ToListItem() EventListItem {
	start := calendar.StartOfDay(e.StartDate)
	end := start
	if e.EndDate != nil {
		end = calendar.StartOfDay(*e.EndDate)
		if e.AllDay && end.After(start) {
			end = calendar.InclusiveEnd(*e.EndDate, true)
		}
	}

	item := EventListItem{
		ID:               e.ID,
		Title:            e.Title,
		Start:            calendar.ToIsoDateLocal(start),
		End:              calendar.ToIsoDateLocal(end),
		Period:           e.Period,
		BusinessHours:    e.BusinessHours,
		PriceDisplay:     e.PriceDisplay,
		Category:         TagFor(e.Category),
		Subcategory:      e.Subcategory,
		RegionID:         e.RegionID,
		PopularityScore:  e.LikeCount,
		ViewCount:        e.ViewCount,
		RecommendedScore: e.RecommendedScore,
	}
	price := e.ResolvedPrice()
	item.Price = &price
	if item.Period == "" {
		item.Period = FormatPeriod(start, end)
	}
	if e.CreatedAt != nil && !e.CreatedAt.IsZero() {
		item.CreatedAtMs = e.CreatedAt.UnixMilli()
	} else {
		item.CreatedAtMs = start.UnixMilli()
	}
	return item
}

// FormatPeriod renders the display period used on cards, e.g. "2026.01.03 ~ 2026.02.01".
func FormatPeriod(start, end time.Time) string {
	from := fmt.Sprintf("%04d.%02d.%02d", start.Year(), int(start.Month()), start.Day())
	if calendar.ToIsoDateLocal(start) == calendar.ToIsoDateLocal(end) {
		return from
	}
	return fmt.Sprintf("%s ~ %04d.%02d.%02d", from, end.Year(), int(end.Month()), end.Day())
}

// Covers reports whether the inclusive [Start, End] span contains d.
func (i EventListItem) Covers(d calendar.IsoDate) bool {
	return i.Start <= d && d <= i.End
}

// DaySummary holds per-category counts for one date. Counts are never negative.
type DaySummary struct {
	Date   calendar.IsoDate    `json:"date"`
	Counts map[CategoryKey]int `json:"counts"`
}

// MonthSummary is what the event source returns for a month view.
type MonthSummary struct {
	Days    []DaySummary `json:"days"`
	Regions []Region     `json:"regions"`
}

// EnsureRegions applies the single "all" region fallback.
func (s *MonthSummary) EnsureRegions() {
	if len(s.Regions) == 0 {
		s.Regions = []Region{AllRegion()}
	}
}

// EmptyMonthSummary is the degraded summary used when a fetch fails.
func EmptyMonthSummary() *MonthSummary {
	return &MonthSummary{Days: []DaySummary{}, Regions: []Region{AllRegion()}}
}

// EventPage is a page of events returned by the event source.
type EventPage struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
