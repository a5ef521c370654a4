package query

import (
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
)

// Navigator receives the query to write to the external URL.
type Navigator interface {
	Navigate(query url.Values)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(query url.Values)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(query url.Values) { f(query) }

// Action names accepted by Apply.
const (
	ActionPreviousMonth         = "previous_month"
	ActionNextMonth             = "next_month"
	ActionGoToMonth             = "go_to_month"
	ActionToggleCategory        = "toggle_category"
	ActionChangeRegion          = "change_region"
	ActionPopupSubcategory      = "change_popup_subcategory"
	ActionExhibitionSubcategory = "change_exhibition_subcategory"
	ActionReset                 = "reset"
)

// Store owns the rich calendar state and keeps it coherent with the external
// query. Internal state is updated from outside only when the parsed query
// differs from it, and the query is pushed out only when its serialized form
// changes, so an echo of our own push never loops back.
type Store struct {
	mu       sync.Mutex
	codec    *Codec
	state    CalendarQueryState
	external url.Values
	nav      Navigator
	logger   *zap.Logger
}

// NewStore derives the initial state from the external query.
func NewStore(codec *Codec, external url.Values, nav Navigator, logger *zap.Logger) *Store {
	if codec == nil {
		codec = NewCodec()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		codec:    codec,
		state:    codec.Parse(external),
		external: cloneValues(external),
		nav:      nav,
		logger:   logger,
	}
}

// State returns a copy of the current state.
func (s *Store) State() CalendarQueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// External returns a copy of the last observed or pushed query.
func (s *Store) External() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.external)
}

// SyncFromExternal records a query observed outside (navigation, back/forward)
// and reports whether the internal state changed.
func (s *Store) SyncFromExternal(values url.Values) bool {
	candidate := s.codec.Parse(values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.external = cloneValues(values)
	if candidate.Equal(s.state) {
		return false
	}
	s.state = candidate
	return true
}

// GoToPreviousMonth moves one month back.
func (s *Store) GoToPreviousMonth() bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return s.codec.ShiftMonth(st, -1) })
}

// GoToNextMonth moves one month forward.
func (s *Store) GoToNextMonth() bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return s.codec.ShiftMonth(st, 1) })
}

// GoToMonth jumps to target; invalid targets are ignored.
func (s *Store) GoToMonth(target calendar.IsoMonth) bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return s.codec.WithMonth(st, target) })
}

// ToggleCategory flips one category.
func (s *Store) ToggleCategory(key models.CategoryKey) bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return ToggleCategory(st, key) })
}

// ChangeRegion selects a region.
func (s *Store) ChangeRegion(regionID string) bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return ChangeRegion(st, regionID) })
}

// ChangePopupSubcategory selects a popup subcategory.
func (s *Store) ChangePopupSubcategory(v models.PopupSubcategory) bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return ChangePopupSubcategory(st, v) })
}

// ChangeExhibitionSubcategory selects an exhibition subcategory.
func (s *Store) ChangeExhibitionSubcategory(v models.ExhibitionSubcategory) bool {
	return s.apply(func(st CalendarQueryState) CalendarQueryState { return ChangeExhibitionSubcategory(st, v) })
}

// ResetFilters returns every field to the codec default.
func (s *Store) ResetFilters() bool {
	return s.apply(func(CalendarQueryState) CalendarQueryState { return s.codec.Default() })
}

// Apply dispatches a named action. Unknown actions are ignored.
func (s *Store) Apply(action, value string) bool {
	switch action {
	case ActionPreviousMonth:
		return s.GoToPreviousMonth()
	case ActionNextMonth:
		return s.GoToNextMonth()
	case ActionGoToMonth:
		return s.GoToMonth(calendar.IsoMonth(value))
	case ActionToggleCategory:
		return s.ToggleCategory(models.CategoryKey(value))
	case ActionChangeRegion:
		return s.ChangeRegion(value)
	case ActionPopupSubcategory:
		return s.ChangePopupSubcategory(models.PopupSubcategory(value))
	case ActionExhibitionSubcategory:
		return s.ChangeExhibitionSubcategory(models.ExhibitionSubcategory(value))
	case ActionReset:
		return s.ResetFilters()
	default:
		s.logger.Debug("ignoring unknown calendar action", zap.String("action", action))
		return false
	}
}

// apply reports whether the external query was pushed. The navigator runs
// outside the lock so it may call SyncFromExternal with the echo.
func (s *Store) apply(transition func(CalendarQueryState) CalendarQueryState) bool {
	s.mu.Lock()
	next := transition(s.state.Clone())
	s.state = next
	query := s.codec.Merge(s.external, next)
	if query.Encode() == s.external.Encode() {
		s.mu.Unlock()
		return false
	}
	s.external = query
	nav := s.nav
	s.mu.Unlock()

	if nav != nil {
		nav.Navigate(cloneValues(query))
	}
	return true
}
