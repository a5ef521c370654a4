package query

import (
	"net/url"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

// SimpleCalendarFilterState backs the compact calendar widget. Unlike the rich
// calendar, nothing is selected by default.
type SimpleCalendarFilterState struct {
	Month   calendar.IsoMonth               `json:"month"`
	Filters map[models.SimpleFilterKey]bool `json:"filters"`
}

// Selected lists the active filters in declaration order.
func (s SimpleCalendarFilterState) Selected() []models.SimpleFilterKey {
	out := make([]models.SimpleFilterKey, 0, len(models.SimpleFilterKeys))
	for _, k := range models.SimpleFilterKeys {
		if s.Filters[k] {
			out = append(out, k)
		}
	}
	return out
}

// Equal compares states by value.
func (s SimpleCalendarFilterState) Equal(other SimpleCalendarFilterState) bool {
	if s.Month != other.Month {
		return false
	}
	for _, k := range models.SimpleFilterKeys {
		if s.Filters[k] != other.Filters[k] {
			return false
		}
	}
	return true
}

func noSimpleFilters() map[models.SimpleFilterKey]bool {
	out := make(map[models.SimpleFilterKey]bool, len(models.SimpleFilterKeys))
	for _, k := range models.SimpleFilterKeys {
		out[k] = false
	}
	return out
}

// ParseFiltersParam keeps the listed known tokens. Absent and empty both mean
// nothing selected.
func ParseFiltersParam(raw string, present bool) map[models.SimpleFilterKey]bool {
	out := noSimpleFilters()
	if !present {
		return out
	}
	for _, token := range splitTokens(raw) {
		if k := models.SimpleFilterKey(token); k.Valid() {
			out[k] = true
		}
	}
	return out
}

// SerializeFiltersParam omits the parameter when nothing is selected.
func SerializeFiltersParam(filters map[models.SimpleFilterKey]bool) (string, bool) {
	tokens := make([]string, 0, len(models.SimpleFilterKeys))
	for _, k := range models.SimpleFilterKeys {
		if filters[k] {
			tokens = append(tokens, string(k))
		}
	}
	if len(tokens) == 0 {
		return "", false
	}
	return joinTokens(tokens), true
}

// DefaultSimple is the simple widget's default state.
func (c *Codec) DefaultSimple() SimpleCalendarFilterState {
	return SimpleCalendarFilterState{Month: c.CurrentMonth(), Filters: noSimpleFilters()}
}

// ParseSimple reads month=YYYY-MM, falling back to the year+month pair, and filters.
func (c *Codec) ParseSimple(values url.Values) SimpleCalendarFilterState {
	monthRaw, monthOK := Lookup(values, ParamMonth)
	month := c.ParseMonthParam(monthRaw, monthOK)
	if !monthOK || !c.bounds.ValidMonth(monthRaw) {
		year, yearOK := Lookup(values, ParamYear)
		month = c.ParseYearMonthParams(year, yearOK, monthRaw, monthOK)
	}
	filters, filtersOK := Lookup(values, ParamFilters)
	return SimpleCalendarFilterState{Month: month, Filters: ParseFiltersParam(filters, filtersOK)}
}

// SerializeSimple renders the simple widget's parameters.
func (c *Codec) SerializeSimple(state SimpleCalendarFilterState) url.Values {
	out := url.Values{}
	if c.bounds.ValidMonth(string(state.Month)) {
		out.Set(ParamMonth, string(state.Month))
	}
	if filters, ok := SerializeFiltersParam(state.Filters); ok {
		out.Set(ParamFilters, filters)
	}
	return out
}

// ToggleSimpleFilter flips one known simple filter.
func ToggleSimpleFilter(s SimpleCalendarFilterState, key models.SimpleFilterKey) SimpleCalendarFilterState {
	next := SimpleCalendarFilterState{Month: s.Month, Filters: noSimpleFilters()}
	for k, v := range s.Filters {
		if k.Valid() {
			next.Filters[k] = v
		}
	}
	if key.Valid() {
		next.Filters[key] = !next.Filters[key]
	}
	return next
}
