package dto

import (
	"time"

	"github.com/noah-isme/popspot-calendar/internal/query"
)

// TransitionRequest applies one filter mutation to a query string.
type TransitionRequest struct {
	Query  string `json:"query" validate:"max=4096"`
	Action string `json:"action" validate:"required,max=64"`
	Value  string `json:"value" validate:"max=256"`
}

// TransitionResponse carries the next query and whether the address bar
// should be updated.
type TransitionResponse struct {
	Query    string                         `json:"query"`
	Pushed   bool                           `json:"pushed"`
	State    query.CalendarQueryState       `json:"state"`
	Location query.LocationEventFilterState `json:"location"`
}

// ShareRequest asks for a signed link to the given query.
type ShareRequest struct {
	Query string `json:"query" validate:"max=4096"`
}

// ShareResponse is a signed share link.
type ShareResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Query     string    `json:"query"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareResolveResponse is the state a share token opens. Invalid tokens open
// the default state with Valid false.
type ShareResolveResponse struct {
	Valid    bool                           `json:"valid"`
	Query    string                         `json:"query"`
	State    query.CalendarQueryState       `json:"state"`
	Location query.LocationEventFilterState `json:"location"`
}

// ExportFile is a rendered export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
