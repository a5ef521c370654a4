package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/query"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func isoPtr(v string) *calendar.IsoDate {
	d := calendar.IsoDate(v)
	return &d
}

func newTestPipeline() *Pipeline {
	now := func() time.Time { return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC) }
	return NewPipeline(now, time.UTC, nil)
}

func item(id string, key models.CategoryKey, period string) models.EventListItem {
	return models.EventListItem{ID: id, Category: models.TagFor(key), Period: period, Price: intPtr(10000)}
}

func ids(items []models.EventListItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestParsePeriod(t *testing.T) {
	p, ok := ParsePeriod("2026.01.03 ~ 2026.02.01")
	require.True(t, ok)
	assert.Equal(t, calendar.IsoDate("2026-01-03"), p.Start)
	assert.Equal(t, calendar.IsoDate("2026-02-01"), p.End)

	p, ok = ParsePeriod("2026-1-9")
	require.True(t, ok)
	assert.Equal(t, calendar.IsoDate("2026-01-09"), p.Last())

	_, ok = ParsePeriod("상시 운영")
	assert.False(t, ok)
	_, ok = ParsePeriod("2026.02.30")
	assert.False(t, ok)
}

func TestPriceFilter(t *testing.T) {
	freeText := item("free-text", models.CategoryPopup, "")
	freeText.PriceDisplay = strPtr("무료")
	discounted := item("discount", models.CategoryPopup, "")
	discounted.Price = intPtr(0)
	paid := item("paid", models.CategoryPopup, "")
	paid.PriceDisplay = strPtr("15,000원")
	input := []models.EventListItem{freeText, discounted, paid}

	state := query.DefaultLocationFilter()
	state.Price = query.PriceFilter{Free: true}
	out, stats := newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"free-text", "discount"}, ids(out))
	assert.Equal(t, 1, stats.Dropped[StagePrice])

	state.Price = query.PriceFilter{Paid: true}
	out, _ = newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"paid"}, ids(out))

	state.Price = query.PriceFilter{Free: true, Paid: true}
	out, _ = newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Len(t, out, 3)
}

func TestDiscountPriceZeroIsFree(t *testing.T) {
	ev := models.Event{ID: "x", Category: models.CategoryPopup, StartDate: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), Price: intPtr(20000), DiscountPrice: intPtr(0)}
	assert.True(t, IsFree(ev.ToListItem()))
}

func TestDateRangeFilter(t *testing.T) {
	input := []models.EventListItem{
		item("jan", models.CategoryExhibition, "2026.01.03 ~ 2026.01.20"),
		item("mar", models.CategoryExhibition, "2026.03.01 ~ 2026.03.31"),
		item("bad", models.CategoryExhibition, "별도 공지"),
	}

	state := query.DefaultLocationFilter()
	out, _ := newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"jan", "mar", "bad"}, ids(out))

	state.DateRange = query.DateRangeFilter{StartDate: isoPtr("2026-02-01")}
	out, stats := newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"mar"}, ids(out))
	assert.Equal(t, 2, stats.Dropped[StageDateRange])

	state.DateRange = query.DateRangeFilter{EndDate: isoPtr("2026-01-31")}
	out, _ = newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"jan"}, ids(out))
}

func TestStatusFilter(t *testing.T) {
	input := []models.EventListItem{
		item("ended", models.CategoryPopup, "2025.12.01 ~ 2026.01.10"),
		item("ongoing", models.CategoryPopup, "2026.01.10 ~ 2026.01.15"),
		item("upcoming", models.CategoryPopup, "2026.01.16 ~ 2026.01.30"),
		item("unknown", models.CategoryPopup, "미정"),
	}

	state := query.DefaultLocationFilter()
	out, _ := newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Len(t, out, 4)

	state.EventStatus = query.EventStatusFilter{Upcoming: true, Ended: true}
	out, _ = newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"ended", "upcoming", "unknown"}, ids(out))
}

func TestCategorySafetyNetPreservesOrder(t *testing.T) {
	input := []models.EventListItem{
		item("p1", models.CategoryPopup, ""),
		item("e1", models.CategoryExhibition, ""),
		item("p2", models.CategoryPopup, ""),
	}

	out, stats := newTestPipeline().Apply(input, models.CategorySetOf(models.CategoryPopup), query.DefaultLocationFilter())
	assert.Equal(t, []string{"p1", "p2"}, ids(out))
	assert.Equal(t, 1, stats.Dropped[StageCategory])

	out, _ = newTestPipeline().Apply(input, models.NoCategories(), query.DefaultLocationFilter())
	assert.Empty(t, out)
}

func TestAmenitiesPassEverything(t *testing.T) {
	input := []models.EventListItem{item("a", models.CategoryPopup, "")}
	state := query.DefaultLocationFilter()
	state.Amenities = query.AmenityFilter{Parking: true, PetFriendly: true}

	out, _ := newTestPipeline().Apply(input, models.AllCategories(), state)
	assert.Equal(t, []string{"a"}, ids(out))
}

func TestApplySimple(t *testing.T) {
	input := []models.EventListItem{
		item("a", models.CategoryPopup, ""),
		item("b", models.CategoryExhibition, ""),
	}
	liked := map[string]bool{"b": true}

	out, _ := newTestPipeline().ApplySimple(input, map[models.SimpleFilterKey]bool{}, liked)
	assert.Empty(t, out)

	out, _ = newTestPipeline().ApplySimple(input, map[models.SimpleFilterKey]bool{models.SimpleFilterWishlist: true}, liked)
	assert.Equal(t, []string{"b"}, ids(out))

	out, _ = newTestPipeline().ApplySimple(input, map[models.SimpleFilterKey]bool{models.SimpleFilterEvent: true}, liked)
	assert.Equal(t, []string{"a", "b"}, ids(out))
}
