package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

func fixedCodec() *Codec {
	now := func() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }
	return NewCodec(WithClock(now), WithLocation(time.UTC))
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values
}

func TestParseScenarioAndReset(t *testing.T) {
	codec := fixedCodec()
	values := mustQuery(t, "year=2026&month=1&categories=exhibition&regionId=seoul")

	state := codec.Parse(values)
	assert.Equal(t, calendar.IsoMonth("2026-01"), state.Month)
	assert.Equal(t, "seoul", state.RegionID)
	assert.Equal(t, models.CategorySet{models.CategoryExhibition: true, models.CategoryPopup: false}, state.ActiveCategories)

	var pushed url.Values
	store := NewStore(codec, values, NavigatorFunc(func(q url.Values) { pushed = q }), nil)
	require.True(t, store.ResetFilters())

	reset := store.State()
	assert.True(t, reset.Equal(codec.Default()))
	assert.Equal(t, calendar.IsoMonth("2026-10"), reset.Month)
	assert.Equal(t, models.RegionAll, reset.RegionID)
	assert.Equal(t, models.PopupSubcategoryAll, reset.PopupSubcategory)
	assert.Equal(t, models.ExhibitionSubcategoryAll, reset.ExhibitionSubcategory)

	_, hasCategories := pushed[ParamCategories]
	assert.False(t, hasCategories)
	_, hasRegion := pushed[ParamRegionID]
	assert.False(t, hasRegion)
	assert.Equal(t, "month=10&year=2026", pushed.Encode())
}

func TestParseDegradesMalformedInput(t *testing.T) {
	codec := fixedCodec()
	cases := map[string]calendar.IsoMonth{
		"":                       "2026-10",
		"year=2026":              "2026-10",
		"month=3":                "2026-03",
		"year=2019&month=5":      "2026-10",
		"year=2031&month=5":      "2026-10",
		"year=abcd&month=13":     "2026-10",
		"year=2027&month=02":     "2027-02",
		"month=2025-12":          "2025-12",
		"year=2026&month=2040-1": "2026-10",
	}
	for raw, want := range cases {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, codec.Parse(mustQuery(t, raw)).Month)
		})
	}

	state := codec.Parse(mustQuery(t, "region=busan&popupSubcategory=toys&exhibitionSubcategory=art"))
	assert.Equal(t, "busan", state.RegionID)
	assert.Equal(t, models.PopupSubcategoryAll, state.PopupSubcategory)
	assert.Equal(t, models.ExhibitionSubcategoryArt, state.ExhibitionSubcategory)
}

func TestCategoriesAbsentVersusEmpty(t *testing.T) {
	assert.True(t, ParseCategoriesParam("", false).AllActive())
	assert.Empty(t, ParseCategoriesParam("", true).Active())
	assert.Equal(t, []models.CategoryKey{models.CategoryPopup}, ParseCategoriesParam("popup,unknown,popup", true).Active())
}

func TestCategoriesRoundTrip(t *testing.T) {
	sets := []models.CategorySet{
		models.AllCategories(),
		models.NoCategories(),
		models.CategorySetOf(models.CategoryExhibition),
		models.CategorySetOf(models.CategoryPopup),
	}
	for _, set := range sets {
		raw, present := SerializeCategoriesParam(set)
		assert.True(t, set.Equal(ParseCategoriesParam(raw, present)), "set %v", set)
	}

	raw, present := SerializeCategoriesParam(models.CategorySet{models.CategoryPopup: true, models.CategoryExhibition: true})
	assert.False(t, present)
	assert.Empty(t, raw)
}

func TestStateRoundTrip(t *testing.T) {
	codec := fixedCodec()
	state := codec.Default()
	state.Month = "2027-03"
	state.RegionID = "jeju"
	state.ActiveCategories = models.NoCategories()
	state.PopupSubcategory = models.PopupSubcategoryFood

	assert.True(t, state.Equal(codec.Parse(codec.Serialize(state))))
	assert.Equal(t, "categories=&month=3&popupSubcategory=food&regionId=jeju&year=2027", codec.Serialize(state).Encode())
}

func TestMergeKeepsUnrelatedParams(t *testing.T) {
	codec := fixedCodec()
	base := mustQuery(t, "tab=list&region=busan&year=2026&month=1")

	merged := codec.Merge(base, codec.Default())
	assert.Equal(t, "list", merged.Get("tab"))
	_, alias := merged[ParamRegionAlias]
	assert.False(t, alias)
	assert.Equal(t, "busan", base.Get(ParamRegionAlias))
}

func TestShiftMonthRollsOverAndRespectsBounds(t *testing.T) {
	codec := fixedCodec()
	state := codec.Default()

	state.Month = "2026-12"
	assert.Equal(t, calendar.IsoMonth("2027-01"), codec.ShiftMonth(state, 1).Month)
	state.Month = "2026-01"
	assert.Equal(t, calendar.IsoMonth("2025-12"), codec.ShiftMonth(state, -1).Month)
	state.Month = "2030-12"
	assert.Equal(t, calendar.IsoMonth("2030-12"), codec.ShiftMonth(state, 1).Month)
	state.Month = "2020-01"
	assert.Equal(t, calendar.IsoMonth("2020-01"), codec.ShiftMonth(state, -1).Month)
}
