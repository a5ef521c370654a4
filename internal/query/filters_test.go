package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
)

func TestSimpleFlavorDefaultsToNothingSelected(t *testing.T) {
	codec := fixedCodec()

	state := codec.ParseSimple(mustQuery(t, ""))
	assert.Equal(t, calendar.IsoMonth("2026-10"), state.Month)
	assert.Empty(t, state.Selected())
	assert.Equal(t, "month=2026-10", codec.SerializeSimple(state).Encode())

	state = codec.ParseSimple(mustQuery(t, "month=2026-03&filters=wishlist,bogus"))
	assert.Equal(t, calendar.IsoMonth("2026-03"), state.Month)
	assert.Equal(t, []models.SimpleFilterKey{models.SimpleFilterWishlist}, state.Selected())

	state = codec.ParseSimple(mustQuery(t, "year=2027&month=7"))
	assert.Equal(t, calendar.IsoMonth("2027-07"), state.Month)
}

func TestSimpleFlavorRoundTrip(t *testing.T) {
	codec := fixedCodec()
	state := codec.DefaultSimple()
	state = ToggleSimpleFilter(state, models.SimpleFilterWishlist)
	state = ToggleSimpleFilter(state, models.SimpleFilterEvent)

	encoded := codec.SerializeSimple(state)
	assert.Equal(t, "event,wishlist", encoded.Get(ParamFilters))
	assert.True(t, state.Equal(codec.ParseSimple(encoded)))

	state = ToggleSimpleFilter(ToggleSimpleFilter(state, models.SimpleFilterWishlist), models.SimpleFilterEvent)
	_, present := SerializeFiltersParam(state.Filters)
	assert.False(t, present)
}

func TestRemovingLastSelectionFallsBackToAll(t *testing.T) {
	state := DefaultLocationFilter()

	state = ToggleRegion(state, "seoul")
	require.Equal(t, []string{"seoul"}, state.Regions)
	state = ToggleRegion(state, "busan")
	assert.Equal(t, []string{"busan", "seoul"}, state.Regions)
	state = ToggleRegion(ToggleRegion(state, "seoul"), "busan")
	assert.Equal(t, []string{"all"}, state.Regions)

	state = TogglePopupCategory(state, "food")
	state = TogglePopupCategory(state, "food")
	assert.Equal(t, []string{"all"}, state.PopupCategories)

	state = ToggleExhibitionCategory(state, "photo")
	state = ToggleExhibitionCategory(state, "art")
	assert.Equal(t, []string{"art", "photo"}, state.ExhibitionCategories)
	state = ToggleExhibitionCategory(state, "all")
	assert.Equal(t, []string{"all"}, state.ExhibitionCategories)

	state = TogglePopupCategory(state, "unknown")
	assert.Equal(t, []string{"all"}, state.PopupCategories)
}

func TestLocationFilterRoundTrip(t *testing.T) {
	codec := fixedCodec()
	start := calendar.IsoDate("2026-02-01")
	end := calendar.IsoDate("2026-01-10")

	state := DefaultLocationFilter()
	state = ToggleRegion(state, "seoul")
	state = TogglePopupCategory(state, "beauty")
	state = SetPrice(state, PriceFilter{Free: true})
	state = SetAmenities(state, AmenityFilter{PetFriendly: true})
	state = codec.SetDateRange(state, &start, &end)
	state = ToggleStatus(state, "upcoming")
	state = SetKeyword(state, "  성수 ")
	state = SetSort(state, "deadline")

	require.NotNil(t, state.DateRange.StartDate)
	assert.Equal(t, calendar.IsoDate("2026-01-10"), *state.DateRange.StartDate)
	assert.Equal(t, sorter.SortDeadline, state.SortBy)

	encoded := codec.SerializeLocationFilter(state)
	assert.Equal(t, "free", encoded.Get(ParamPrice))
	assert.Equal(t, "upcoming", encoded.Get(ParamStatus))
	assert.True(t, state.Equal(codec.ParseLocationFilter(encoded)))

	assert.Empty(t, codec.SerializeLocationFilter(DefaultLocationFilter()))
	assert.True(t, DefaultLocationFilter().Equal(codec.ParseLocationFilter(nil)))
}

func TestToggleStatus(t *testing.T) {
	state := DefaultLocationFilter()

	state = ToggleStatus(state, "ongoing")
	assert.Equal(t, EventStatusFilter{Ongoing: true}, state.EventStatus)
	state = ToggleStatus(state, "ongoing")
	assert.Equal(t, EventStatusFilter{All: true}, state.EventStatus)
	state = ToggleStatus(ToggleStatus(state, "ended"), "all")
	assert.Equal(t, EventStatusFilter{All: true}, state.EventStatus)
}

func TestParseLocationFilterDropsInvalidDates(t *testing.T) {
	state := fixedCodec().ParseLocationFilter(mustQuery(t, "startDate=2026-02-30&endDate=2026-03-01&regions=all,seoul"))
	assert.Nil(t, state.DateRange.StartDate)
	require.NotNil(t, state.DateRange.EndDate)
	assert.Equal(t, []string{"all"}, state.Regions)
}

func TestMergeLocationFilterKeepsCalendarParams(t *testing.T) {
	codec := fixedCodec()
	base := mustQuery(t, "year=2026&month=10&price=free&q=old&date=2026-10-03")

	state := SetKeyword(codec.ParseLocationFilter(base), "성수")
	state = SetPrice(state, PriceFilter{})
	merged := codec.MergeLocationFilter(base, state)

	assert.Equal(t, "2026", merged.Get(ParamYear))
	assert.Equal(t, "2026-10-03", merged.Get("date"))
	assert.Equal(t, "성수", merged.Get(ParamKeyword))
	_, hasPrice := merged[ParamPrice]
	assert.False(t, hasPrice)
	assert.Equal(t, "free", base.Get(ParamPrice))
}
