package query

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`^\d{1,2}$`)
)

// Codec owns the clock and year bounds the month defaults depend on.
type Codec struct {
	bounds calendar.YearBounds
	now    func() time.Time
	loc    *time.Location
}

// Option customises a Codec.
type Option func(*Codec)

// WithBounds overrides the accepted year range.
func WithBounds(b calendar.YearBounds) Option {
	return func(c *Codec) { c.bounds = b }
}

// WithClock overrides the clock used for "current month" defaults.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithLocation sets the zone in which "current month" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(c *Codec) { c.loc = loc }
}

// NewCodec builds a codec with the default bounds and the wall clock.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{bounds: calendar.DefaultBounds(), now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bounds exposes the configured year range.
func (c *Codec) Bounds() calendar.YearBounds { return c.bounds }

// Now returns the codec clock in its configured zone.
func (c *Codec) Now() time.Time {
	return c.now().In(c.loc)
}

// Location returns the zone dates are evaluated in.
func (c *Codec) Location() *time.Location { return c.loc }

// CurrentMonth is the month default.
func (c *Codec) CurrentMonth() calendar.IsoMonth {
	return calendar.ToIsoMonth(c.Now())
}

// Default is the single source of the rich calendar's default state.
func (c *Codec) Default() CalendarQueryState {
	return CalendarQueryState{
		Month:                 c.CurrentMonth(),
		RegionID:              models.RegionAll,
		ActiveCategories:      models.AllCategories(),
		PopupSubcategory:      models.PopupSubcategoryAll,
		ExhibitionSubcategory: models.ExhibitionSubcategoryAll,
	}
}

// ParseYearMonthParams reads the year+month flavor. Each side tolerates the
// other's absence by borrowing from the current month; a "YYYY-MM" month value
// is also accepted. Anything out of bounds degrades to the current month.
func (c *Codec) ParseYearMonthParams(yearRaw string, yearOK bool, monthRaw string, monthOK bool) calendar.IsoMonth {
	current := c.Now()
	fallback := calendar.ToIsoMonth(current)

	monthRaw = strings.TrimSpace(monthRaw)
	if monthOK && c.bounds.ValidMonth(monthRaw) {
		return calendar.IsoMonth(monthRaw)
	}

	year := current.Year()
	if yearRaw = strings.TrimSpace(yearRaw); yearOK && yearPattern.MatchString(yearRaw) {
		year, _ = strconv.Atoi(yearRaw)
	}
	month := current.Month()
	if monthOK && monthPattern.MatchString(monthRaw) {
		if m, _ := strconv.Atoi(monthRaw); m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}

	candidate := calendar.ToIsoMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	if !c.bounds.ValidMonth(string(candidate)) {
		return fallback
	}
	return candidate
}

// ParseMonthParam reads the single "YYYY-MM" flavor.
func (c *Codec) ParseMonthParam(raw string, present bool) calendar.IsoMonth {
	raw = strings.TrimSpace(raw)
	if present && c.bounds.ValidMonth(raw) {
		return calendar.IsoMonth(raw)
	}
	return c.CurrentMonth()
}

// SerializeYearMonthParams renders the year and month (no leading zero).
func SerializeYearMonthParams(month calendar.IsoMonth) (string, string, bool) {
	first, ok := month.FirstDay(time.UTC)
	if !ok {
		return "", "", false
	}
	return strconv.Itoa(first.Year()), strconv.Itoa(int(first.Month())), true
}

// ParseRegionParam returns the trimmed identifier or "all".
func ParseRegionParam(raw string, present bool) string {
	raw = strings.TrimSpace(raw)
	if !present || raw == "" {
		return models.RegionAll
	}
	return raw
}

// SerializeRegionParam omits the unrestricted region.
func SerializeRegionParam(regionID string) (string, bool) {
	if regionID == "" || regionID == models.RegionAll {
		return "", false
	}
	return regionID, true
}

// ParseCategoriesParam treats an absent parameter as "all categories" and a
// present one, even empty, as exactly the listed known tokens.
func ParseCategoriesParam(raw string, present bool) models.CategorySet {
	if !present {
		return models.AllCategories()
	}
	keys := make([]models.CategoryKey, 0, len(models.CategoryKeys))
	for _, token := range splitTokens(raw) {
		keys = append(keys, models.CategoryKey(token))
	}
	return models.CategorySetOf(keys...)
}

// SerializeCategoriesParam omits the parameter when every category is active
// and otherwise lists active keys in declaration order. No active category
// serializes to a present empty value.
func SerializeCategoriesParam(set models.CategorySet) (string, bool) {
	if set.AllActive() {
		return "", false
	}
	active := set.Active()
	tokens := make([]string, len(active))
	for i, k := range active {
		tokens[i] = string(k)
	}
	return joinTokens(tokens), true
}

// ParsePopupSubcategoryParam falls back to "all" for anything outside the enum.
func ParsePopupSubcategoryParam(raw string, present bool) models.PopupSubcategory {
	v := models.PopupSubcategory(strings.TrimSpace(raw))
	if !present || !v.Valid() {
		return models.PopupSubcategoryAll
	}
	return v
}

// SerializePopupSubcategoryParam omits "all".
func SerializePopupSubcategoryParam(v models.PopupSubcategory) (string, bool) {
	if v == models.PopupSubcategoryAll || !v.Valid() {
		return "", false
	}
	return string(v), true
}

// ParseExhibitionSubcategoryParam falls back to "all" for anything outside the enum.
func ParseExhibitionSubcategoryParam(raw string, present bool) models.ExhibitionSubcategory {
	v := models.ExhibitionSubcategory(strings.TrimSpace(raw))
	if !present || !v.Valid() {
		return models.ExhibitionSubcategoryAll
	}
	return v
}

// SerializeExhibitionSubcategoryParam omits "all".
func SerializeExhibitionSubcategoryParam(v models.ExhibitionSubcategory) (string, bool) {
	if v == models.ExhibitionSubcategoryAll || !v.Valid() {
		return "", false
	}
	return string(v), true
}

// Parse derives the rich calendar state from a query. It never fails.
func (c *Codec) Parse(values url.Values) CalendarQueryState {
	year, yearOK := Lookup(values, ParamYear)
	month, monthOK := Lookup(values, ParamMonth)

	region, regionOK := Lookup(values, ParamRegionID)
	if !regionOK {
		region, regionOK = Lookup(values, ParamRegionAlias)
	}
	categories, categoriesOK := Lookup(values, ParamCategories)
	popup, popupOK := Lookup(values, ParamPopupSubcategory)
	exhibition, exhibitionOK := Lookup(values, ParamExhibitionSubcategory)

	return CalendarQueryState{
		Month:                 c.ParseYearMonthParams(year, yearOK, month, monthOK),
		RegionID:              ParseRegionParam(region, regionOK),
		ActiveCategories:      ParseCategoriesParam(categories, categoriesOK),
		PopupSubcategory:      ParsePopupSubcategoryParam(popup, popupOK),
		ExhibitionSubcategory: ParseExhibitionSubcategoryParam(exhibition, exhibitionOK),
	}
}

// Serialize renders only the parameters the rich state owns.
func (c *Codec) Serialize(state CalendarQueryState) url.Values {
	return c.Merge(url.Values{}, state)
}

// Merge overwrites the parameters owned by the rich state on top of base and
// leaves unrelated parameters untouched. base is not modified.
func (c *Codec) Merge(base url.Values, state CalendarQueryState) url.Values {
	out := cloneValues(base)
	out.Del(ParamRegionAlias)

	year, month, ok := SerializeYearMonthParams(state.Month)
	setOrDelete(out, ParamYear, year, ok)
	setOrDelete(out, ParamMonth, month, ok)

	region, ok := SerializeRegionParam(state.RegionID)
	setOrDelete(out, ParamRegionID, region, ok)

	categories, ok := SerializeCategoriesParam(state.ActiveCategories)
	setOrDelete(out, ParamCategories, categories, ok)

	popup, ok := SerializePopupSubcategoryParam(state.PopupSubcategory)
	setOrDelete(out, ParamPopupSubcategory, popup, ok)

	exhibition, ok := SerializeExhibitionSubcategoryParam(state.ExhibitionSubcategory)
	setOrDelete(out, ParamExhibitionSubcategory, exhibition, ok)

	return out
}
