package query

import (
	"net/url"
	"sort"
	"strings"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
)

// PriceFilter selects free and/or paid events. Both or neither pass everything.
type PriceFilter struct {
	Free bool `json:"free"`
	Paid bool `json:"paid"`
}

// AmenityFilter is carried through the UI although no source reports amenities yet.
type AmenityFilter struct {
	Parking     bool `json:"parking"`
	PetFriendly bool `json:"pet_friendly"`
}

// DateRangeFilter bounds events by their display period. Nil sides are open.
type DateRangeFilter struct {
	StartDate *calendar.IsoDate `json:"start_date"`
	EndDate   *calendar.IsoDate `json:"end_date"`
}

// EventStatusFilter holds independent status flags.
type EventStatusFilter struct {
	All      bool `json:"all"`
	Ongoing  bool `json:"ongoing"`
	Upcoming bool `json:"upcoming"`
	Ended    bool `json:"ended"`
}

// LocationEventFilterState is the sidebar filter of the location/event list.
// Multi-select lists are never empty; ["all"] stands for no restriction.
type LocationEventFilterState struct {
	Regions              []string          `json:"regions"`
	PopupCategories      []string          `json:"popup_categories"`
	ExhibitionCategories []string          `json:"exhibition_categories"`
	Price                PriceFilter       `json:"price"`
	Amenities            AmenityFilter     `json:"amenities"`
	DateRange            DateRangeFilter   `json:"date_range"`
	EventStatus          EventStatusFilter `json:"event_status"`
	Keyword              string            `json:"keyword,omitempty"`
	SortBy               sorter.SortKey    `json:"sort_by"`
}

const allToken = "all"

var (
	priceTokens   = []string{"free", "paid"}
	amenityTokens = []string{"parking", "petFriendly"}
	statusTokens  = []string{"all", "ongoing", "upcoming", "ended"}
	popupTokens   = popupSubcategoryTokens()
	exhibitTokens = exhibitionSubcategoryTokens()
)

func popupSubcategoryTokens() []string {
	out := make([]string, 0, len(models.PopupSubcategories))
	for _, v := range models.PopupSubcategories {
		if v != models.PopupSubcategoryAll {
			out = append(out, string(v))
		}
	}
	return out
}

func exhibitionSubcategoryTokens() []string {
	out := make([]string, 0, len(models.ExhibitionSubcategories))
	for _, v := range models.ExhibitionSubcategories {
		if v != models.ExhibitionSubcategoryAll {
			out = append(out, string(v))
		}
	}
	return out
}

// DefaultLocationFilter is the single source of the sidebar defaults.
func DefaultLocationFilter() LocationEventFilterState {
	return LocationEventFilterState{
		Regions:              []string{allToken},
		PopupCategories:      []string{allToken},
		ExhibitionCategories: []string{allToken},
		EventStatus:          EventStatusFilter{All: true},
		SortBy:               sorter.DefaultSortKey,
	}
}

// IsAll reports whether a multi-select list means "no restriction".
func IsAll(list []string) bool {
	return len(list) == 0 || (len(list) == 1 && list[0] == allToken)
}

// parseSelection keeps allowed tokens; allowed=nil accepts any free-form id.
// An "all" token or an empty result yields ["all"].
func parseSelection(raw string, present bool, allowed []string) []string {
	if !present {
		return []string{allToken}
	}
	tokens := splitTokens(raw)
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == allToken {
			return []string{allToken}
		}
		if allowed == nil || contains(allowed, token) {
			out = append(out, token)
		}
	}
	return normalizeSelection(out, allowed)
}

func normalizeSelection(list []string, allowed []string) []string {
	if len(list) == 0 {
		return []string{allToken}
	}
	if allowed == nil {
		out := append([]string(nil), list...)
		sort.Strings(out)
		return out
	}
	out := make([]string, 0, len(list))
	for _, token := range allowed {
		if contains(list, token) {
			out = append(out, token)
		}
	}
	if len(out) == 0 {
		return []string{allToken}
	}
	return out
}

func serializeSelection(list []string) (string, bool) {
	if IsAll(list) {
		return "", false
	}
	return joinTokens(list), true
}

// toggleSelection applies the multi-select rule: picking "all" resets, picking
// an item while "all" is selected replaces it, and removing the last item
// falls back to ["all"] rather than an empty list.
func toggleSelection(list []string, token string, allowed []string) []string {
	token = strings.TrimSpace(token)
	if token == "" {
		return normalizeSelection(list, allowed)
	}
	if token == allToken {
		return []string{allToken}
	}
	if allowed != nil && !contains(allowed, token) {
		return append([]string(nil), list...)
	}
	if IsAll(list) {
		return []string{token}
	}
	next := make([]string, 0, len(list)+1)
	removed := false
	for _, existing := range list {
		if existing == token {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if !removed {
		next = append(next, token)
	}
	return normalizeSelection(next, allowed)
}

func contains(list []string, token string) bool {
	for _, v := range list {
		if v == token {
			return true
		}
	}
	return false
}

func parseFlags(raw string, present bool, tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	if !present {
		return out
	}
	for _, token := range splitTokens(raw) {
		if contains(tokens, token) {
			out[token] = true
		}
	}
	return out
}

func serializeFlags(flags map[string]bool, tokens []string) string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if flags[token] {
			out = append(out, token)
		}
	}
	return joinTokens(out)
}

func (c *Codec) parseDate(raw string, present bool) *calendar.IsoDate {
	raw = strings.TrimSpace(raw)
	if !present || !c.bounds.ValidDate(raw) {
		return nil
	}
	d := calendar.IsoDate(raw)
	return &d
}

// ParseLocationFilter derives the sidebar state from a query. It never fails.
func (c *Codec) ParseLocationFilter(values url.Values) LocationEventFilterState {
	state := DefaultLocationFilter()

	regions, ok := Lookup(values, ParamRegions)
	state.Regions = parseSelection(regions, ok, nil)
	popup, ok := Lookup(values, ParamPopupCategories)
	state.PopupCategories = parseSelection(popup, ok, popupTokens)
	exhibition, ok := Lookup(values, ParamExhibitionCategories)
	state.ExhibitionCategories = parseSelection(exhibition, ok, exhibitTokens)

	price, ok := Lookup(values, ParamPrice)
	priceFlags := parseFlags(price, ok, priceTokens)
	state.Price = PriceFilter{Free: priceFlags["free"], Paid: priceFlags["paid"]}

	amenities, ok := Lookup(values, ParamAmenities)
	amenityFlags := parseFlags(amenities, ok, amenityTokens)
	state.Amenities = AmenityFilter{Parking: amenityFlags["parking"], PetFriendly: amenityFlags["petFriendly"]}

	start, startOK := Lookup(values, ParamStartDate)
	end, endOK := Lookup(values, ParamEndDate)
	state.DateRange = normalizeDateRange(c.parseDate(start, startOK), c.parseDate(end, endOK))

	if status, ok := Lookup(values, ParamStatus); ok {
		flags := parseFlags(status, true, statusTokens)
		state.EventStatus = EventStatusFilter{All: flags["all"], Ongoing: flags["ongoing"], Upcoming: flags["upcoming"], Ended: flags["ended"]}
	}

	keyword, _ := Lookup(values, ParamKeyword)
	state.Keyword = strings.TrimSpace(keyword)

	sortBy, _ := Lookup(values, ParamSort)
	state.SortBy = sorter.ParseSortKey(sortBy)
	return state
}

// SerializeLocationFilter renders non-default sidebar parameters.
func (c *Codec) SerializeLocationFilter(state LocationEventFilterState) url.Values {
	out := url.Values{}
	if v, ok := serializeSelection(state.Regions); ok {
		out.Set(ParamRegions, v)
	}
	if v, ok := serializeSelection(state.PopupCategories); ok {
		out.Set(ParamPopupCategories, v)
	}
	if v, ok := serializeSelection(state.ExhibitionCategories); ok {
		out.Set(ParamExhibitionCategories, v)
	}
	if state.Price.Free || state.Price.Paid {
		out.Set(ParamPrice, serializeFlags(map[string]bool{"free": state.Price.Free, "paid": state.Price.Paid}, priceTokens))
	}
	if state.Amenities.Parking || state.Amenities.PetFriendly {
		out.Set(ParamAmenities, serializeFlags(map[string]bool{"parking": state.Amenities.Parking, "petFriendly": state.Amenities.PetFriendly}, amenityTokens))
	}
	if state.DateRange.StartDate != nil {
		out.Set(ParamStartDate, string(*state.DateRange.StartDate))
	}
	if state.DateRange.EndDate != nil {
		out.Set(ParamEndDate, string(*state.DateRange.EndDate))
	}
	if state.EventStatus != DefaultLocationFilter().EventStatus {
		s := state.EventStatus
		out.Set(ParamStatus, serializeFlags(map[string]bool{"all": s.All, "ongoing": s.Ongoing, "upcoming": s.Upcoming, "ended": s.Ended}, statusTokens))
	}
	if state.Keyword != "" {
		out.Set(ParamKeyword, state.Keyword)
	}
	if state.SortBy != "" && state.SortBy != sorter.DefaultSortKey {
		out.Set(ParamSort, string(state.SortBy))
	}
	return out
}

var locationParams = []string{
	ParamRegions, ParamPopupCategories, ParamExhibitionCategories, ParamPrice,
	ParamAmenities, ParamStartDate, ParamEndDate, ParamStatus, ParamKeyword, ParamSort,
}

// MergeLocationFilter replaces the sidebar parameters of base with state's
// and leaves the rest untouched. base is not modified.
func (c *Codec) MergeLocationFilter(base url.Values, state LocationEventFilterState) url.Values {
	out := cloneValues(base)
	for _, key := range locationParams {
		out.Del(key)
	}
	for key, v := range c.SerializeLocationFilter(state) {
		out[key] = v
	}
	return out
}

func normalizeDateRange(start, end *calendar.IsoDate) DateRangeFilter {
	if start != nil && end != nil && *end < *start {
		start, end = end, start
	}
	return DateRangeFilter{StartDate: start, EndDate: end}
}

// ToggleRegion applies the multi-select rule to the region list.
func ToggleRegion(s LocationEventFilterState, regionID string) LocationEventFilterState {
	s.Regions = toggleSelection(s.Regions, regionID, nil)
	return s
}

// TogglePopupCategory applies the multi-select rule to the popup category list.
func TogglePopupCategory(s LocationEventFilterState, token string) LocationEventFilterState {
	s.PopupCategories = toggleSelection(s.PopupCategories, token, popupTokens)
	return s
}

// ToggleExhibitionCategory applies the multi-select rule to the exhibition category list.
func ToggleExhibitionCategory(s LocationEventFilterState, token string) LocationEventFilterState {
	s.ExhibitionCategories = toggleSelection(s.ExhibitionCategories, token, exhibitTokens)
	return s
}

// SetDateRange stores an ordered range; out-of-bounds dates clear their side.
func (c *Codec) SetDateRange(s LocationEventFilterState, start, end *calendar.IsoDate) LocationEventFilterState {
	var startRaw, endRaw string
	if start != nil {
		startRaw = string(*start)
	}
	if end != nil {
		endRaw = string(*end)
	}
	s.DateRange = normalizeDateRange(c.parseDate(startRaw, start != nil), c.parseDate(endRaw, end != nil))
	return s
}

// SetPrice replaces the price flags.
func SetPrice(s LocationEventFilterState, price PriceFilter) LocationEventFilterState {
	s.Price = price
	return s
}

// SetAmenities replaces the amenity flags.
func SetAmenities(s LocationEventFilterState, amenities AmenityFilter) LocationEventFilterState {
	s.Amenities = amenities
	return s
}

// SetKeyword stores the trimmed search keyword.
func SetKeyword(s LocationEventFilterState, keyword string) LocationEventFilterState {
	s.Keyword = strings.TrimSpace(keyword)
	return s
}

// SetSort selects the list ordering; unknown keys select the default.
func SetSort(s LocationEventFilterState, key string) LocationEventFilterState {
	s.SortBy = sorter.ParseSortKey(key)
	return s
}

// ToggleStatus flips one status flag. "all" clears the specific flags, a
// specific flag clears "all", and clearing the last flag restores "all".
func ToggleStatus(s LocationEventFilterState, token string) LocationEventFilterState {
	status := s.EventStatus
	switch strings.TrimSpace(token) {
	case "all":
		status = EventStatusFilter{All: true}
	case "ongoing":
		status.Ongoing = !status.Ongoing
		status.All = false
	case "upcoming":
		status.Upcoming = !status.Upcoming
		status.All = false
	case "ended":
		status.Ended = !status.Ended
		status.All = false
	default:
		return s
	}
	if status == (EventStatusFilter{}) {
		status.All = true
	}
	s.EventStatus = status
	return s
}

// Equal compares sidebar states by value.
func (s LocationEventFilterState) Equal(other LocationEventFilterState) bool {
	return equalList(s.Regions, other.Regions) &&
		equalList(s.PopupCategories, other.PopupCategories) &&
		equalList(s.ExhibitionCategories, other.ExhibitionCategories) &&
		s.Price == other.Price &&
		s.Amenities == other.Amenities &&
		equalDate(s.DateRange.StartDate, other.DateRange.StartDate) &&
		equalDate(s.DateRange.EndDate, other.DateRange.EndDate) &&
		s.EventStatus == other.EventStatus &&
		s.Keyword == other.Keyword &&
		s.SortBy == other.SortBy
}

func equalList(a, b []string) bool {
	if IsAll(a) && IsAll(b) {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalDate(a, b *calendar.IsoDate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
