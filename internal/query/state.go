package query

import (
	"strings"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

// CalendarQueryState is the canonical filter state of the month calendar.
// ActiveCategories always carries every known category.
type CalendarQueryState struct {
	Month                 calendar.IsoMonth            `json:"month"`
	RegionID              string                       `json:"region_id"`
	ActiveCategories      models.CategorySet           `json:"active_categories"`
	PopupSubcategory      models.PopupSubcategory      `json:"popup_subcategory"`
	ExhibitionSubcategory models.ExhibitionSubcategory `json:"exhibition_subcategory"`
}

// Clone returns a deep copy.
func (s CalendarQueryState) Clone() CalendarQueryState {
	s.ActiveCategories = s.ActiveCategories.Clone()
	return s
}

// Equal compares states by value.
func (s CalendarQueryState) Equal(other CalendarQueryState) bool {
	return s.Month == other.Month &&
		s.RegionID == other.RegionID &&
		s.ActiveCategories.Equal(other.ActiveCategories) &&
		s.PopupSubcategory == other.PopupSubcategory &&
		s.ExhibitionSubcategory == other.ExhibitionSubcategory
}

// Subcategories lists the non-"all" subcategory restrictions for the event source.
func (s CalendarQueryState) Subcategories() map[models.CategoryKey]string {
	out := map[models.CategoryKey]string{}
	if s.PopupSubcategory != models.PopupSubcategoryAll && s.PopupSubcategory != "" {
		out[models.CategoryPopup] = string(s.PopupSubcategory)
	}
	if s.ExhibitionSubcategory != models.ExhibitionSubcategoryAll && s.ExhibitionSubcategory != "" {
		out[models.CategoryExhibition] = string(s.ExhibitionSubcategory)
	}
	return out
}

// ShiftMonth moves the state n months. A target outside the year bounds
// leaves the state unchanged.
func (c *Codec) ShiftMonth(s CalendarQueryState, n int) CalendarQueryState {
	first, ok := s.Month.FirstDay(c.loc)
	if !ok {
		first = calendar.AddMonths(c.Now(), 0)
	}
	return c.WithMonth(s, calendar.ToIsoMonth(calendar.AddMonths(first, n)))
}

// WithMonth jumps to target when it is a valid month.
func (c *Codec) WithMonth(s CalendarQueryState, target calendar.IsoMonth) CalendarQueryState {
	if !c.bounds.ValidMonth(string(target)) {
		return s
	}
	next := s.Clone()
	next.Month = target
	return next
}

// ToggleCategory flips one known category.
func ToggleCategory(s CalendarQueryState, key models.CategoryKey) CalendarQueryState {
	if !key.Valid() {
		return s
	}
	next := s.Clone()
	next.ActiveCategories[key] = !next.ActiveCategories[key]
	return next
}

// ChangeRegion selects a region; blank selects "all".
func ChangeRegion(s CalendarQueryState, regionID string) CalendarQueryState {
	next := s.Clone()
	next.RegionID = ParseRegionParam(strings.TrimSpace(regionID), true)
	return next
}

// ChangePopupSubcategory selects a popup subcategory; invalid values select "all".
func ChangePopupSubcategory(s CalendarQueryState, v models.PopupSubcategory) CalendarQueryState {
	next := s.Clone()
	next.PopupSubcategory = ParsePopupSubcategoryParam(string(v), true)
	return next
}

// ChangeExhibitionSubcategory selects an exhibition subcategory; invalid values select "all".
func ChangeExhibitionSubcategory(s CalendarQueryState, v models.ExhibitionSubcategory) CalendarQueryState {
	next := s.Clone()
	next.ExhibitionSubcategory = ParseExhibitionSubcategoryParam(string(v), true)
	return next
}
