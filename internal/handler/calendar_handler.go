package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/popspot-calendar/internal/dto"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/session"
	"github.com/noah-isme/popspot-calendar/internal/source"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
	"github.com/noah-isme/popspot-calendar/pkg/response"
)

type calendarViews interface {
	MonthView(ctx context.Context, values url.Values, viewer source.Viewer) session.MonthView
	SimpleView(ctx context.Context, values url.Values, viewer source.Viewer) session.SimpleView
	DayEvents(ctx context.Context, values url.Values, viewer source.Viewer) session.DayView
	Popular(ctx context.Context, values url.Values, viewer source.Viewer) session.ListView
	Transition(ctx context.Context, req dto.TransitionRequest) (*dto.TransitionResponse, error)
}

type eventExporter interface {
	Export(ctx context.Context, values url.Values, viewer source.Viewer, format string) (*dto.ExportFile, error)
}

type shareLinks interface {
	Create(ctx context.Context, req dto.ShareRequest) (*dto.ShareResponse, error)
	Resolve(token string) dto.ShareResolveResponse
}

// CalendarHandler exposes the calendar views, state transitions, exports and
// share links.
type CalendarHandler struct {
	calendar calendarViews
	exporter eventExporter
	shares   shareLinks
}

// NewCalendarHandler constructs the handler. exporter and shares may be nil
// when those features are disabled.
func NewCalendarHandler(calendar calendarViews, exporter eventExporter, shares shareLinks) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, exporter: exporter, shares: shares}
}

// Month godoc
// @Summary Month calendar grid
// @Description Parses the calendar query, fetches the month summary and returns the canonical state with the grid. Malformed parameters fall back to defaults.
// @Tags Calendar
// @Produce json
// @Param year query int false "Year (YYYY)"
// @Param month query string false "Month (1-12 or YYYY-MM)"
// @Param regionId query string false "Region ID"
// @Param categories query string false "Comma separated categories (exhibition,popup)"
// @Param popupSubcategory query string false "Popup subcategory"
// @Param exhibitionSubcategory query string false "Exhibition subcategory"
// @Success 200 {object} response.Envelope
// @Router /calendar/month [get]
func (h *CalendarHandler) Month(c *gin.Context) {
	view := h.calendar.MonthView(c.Request.Context(), queryValues(c), viewerFromContext(c))
	respondView(c, view, view.Error, nil)
}

// Simple godoc
// @Summary Compact calendar grid
// @Tags Calendar
// @Produce json
// @Param month query string false "Month (YYYY-MM)"
// @Param filters query string false "Comma separated filters (event,wishlist)"
// @Success 200 {object} response.Envelope
// @Router /calendar/simple [get]
func (h *CalendarHandler) Simple(c *gin.Context) {
	view := h.calendar.SimpleView(c.Request.Context(), queryValues(c), viewerFromContext(c))
	respondView(c, view, view.Error, nil)
}

// Events godoc
// @Summary Events of a date
// @Description Remote filters are applied by the event source, the sidebar filters and sort locally.
// @Tags Calendar
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param size query int false "Page size"
// @Param price query string false "free,paid"
// @Param status query string false "all,ongoing,upcoming,ended"
// @Param sort query string false "popular,views,recommended,latest,deadline,price"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	values := queryValues(c)
	view := h.calendar.DayEvents(c.Request.Context(), values, viewerFromContext(c))
	size, _ := strconv.Atoi(values.Get("size"))
	pagination := &models.Pagination{
		Page:       view.Page,
		PageSize:   source.EventsByDateQuery{Size: size}.Normalize().Size,
		TotalCount: view.Total,
	}
	respondView(c, view, view.Error, pagination)
}

// Popular godoc
// @Summary Popular events
// @Tags Events
// @Produce json
// @Param limit query int false "Maximum number of events"
// @Param sort query string false "popular,views,recommended,latest,deadline,price"
// @Success 200 {object} response.Envelope
// @Router /events/popular [get]
func (h *CalendarHandler) Popular(c *gin.Context) {
	view := h.calendar.Popular(c.Request.Context(), queryValues(c), viewerFromContext(c))
	respondView(c, view, view.Error, nil)
}

// Transition godoc
// @Summary Apply a calendar state transition
// @Description Applies one action to a query string and returns the next canonical query. pushed is false when the query did not change.
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.TransitionRequest true "Transition"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/state/transitions [post]
func (h *CalendarHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid transition payload"))
		return
	}
	result, err := h.calendar.Transition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export filtered events
// @Description Exports the events of date, or the popular events without one.
// @Tags Events
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /events/export [get]
func (h *CalendarHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrUnsupported)
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), queryValues(c), viewerFromContext(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// CreateShare godoc
// @Summary Create a share link
// @Tags Share
// @Accept json
// @Produce json
// @Param payload body dto.ShareRequest true "Query to share"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/share [post]
func (h *CalendarHandler) CreateShare(c *gin.Context) {
	if h.shares == nil {
		response.Error(c, appErrors.ErrUnsupported)
		return
	}
	var req dto.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid share payload"))
		return
	}
	link, err := h.shares.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// ResolveShare godoc
// @Summary Open a share link
// @Description An invalid or expired token opens the default calendar state with valid=false, or fails with strict=true.
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Param strict query bool false "Reject invalid tokens"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/share/{token} [get]
func (h *CalendarHandler) ResolveShare(c *gin.Context) {
	if h.shares == nil {
		response.Error(c, appErrors.ErrUnsupported)
		return
	}
	resolved := h.shares.Resolve(c.Param("token"))
	if strict, _ := strconv.ParseBool(c.Query("strict")); strict && !resolved.Valid {
		response.Error(c, appErrors.ErrInvalidShareLink)
		return
	}
	response.JSON(c, http.StatusOK, resolved, nil)
}
