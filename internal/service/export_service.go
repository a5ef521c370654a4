package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/popspot-calendar/internal/dto"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/query"
	"github.com/noah-isme/popspot-calendar/internal/source"
	appErrors "github.com/noah-isme/popspot-calendar/pkg/errors"
	"github.com/noah-isme/popspot-calendar/pkg/export"
)

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

var eventColumns = []export.Column{
	{Key: "title", Label: "Title", Width: 4},
	{Key: "category", Label: "Category", Width: 1.2},
	{Key: "period", Label: "Period", Width: 2.6},
	{Key: "hours", Label: "Hours", Width: 1.8},
	{Key: "price", Label: "Price", Width: 1.4},
	{Key: "liked", Label: "Liked", Width: 0.8},
}

// ExportService renders the filtered and sorted event list of a query.
type ExportService struct {
	calendar *CalendarService
	csv      csvRenderer
	pdf      pdfRenderer
}

// NewExportService constructs the service.
func NewExportService(calendar *CalendarService, csv csvRenderer, pdf pdfRenderer) *ExportService {
	return &ExportService{calendar: calendar, csv: csv, pdf: pdf}
}

// Export renders the day list when the query names a date and the popular
// list otherwise. A failed source fetch is reported instead of exporting an
// empty file.
func (s *ExportService) Export(ctx context.Context, values url.Values, viewer source.Viewer, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	var (
		items  []models.EventListItem
		failed bool
		title  string
	)
	if date, ok := query.Lookup(values, ParamDate); ok && strings.TrimSpace(date) != "" {
		view := s.calendar.DayEvents(ctx, values, viewer)
		items, failed = view.Events, view.Error
		title = "Events " + string(view.Date)
	} else {
		view := s.calendar.Popular(ctx, values, viewer)
		items, failed = view.Events, view.Error
		title = "Popular events"
	}
	if failed {
		return nil, appErrors.ErrSourceUnavailable
	}

	data := EventDataset(title, items)
	var (
		body []byte
		err  error
	)
	file := &dto.ExportFile{Filename: exportFilename(title, format)}
	switch format {
	case ExportPDF:
		body, err = s.pdf.Render(data)
		file.ContentType = "application/pdf"
	default:
		body, err = s.csv.Render(data)
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render export")
	}
	file.Body = body
	return file, nil
}

// EventDataset maps list items to export rows in their given order.
func EventDataset(title string, items []models.EventListItem) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		row := map[string]string{
			"title":    item.Title,
			"category": item.Category.Label,
			"period":   item.Period,
			"liked":    strconv.FormatBool(item.Liked),
		}
		if item.BusinessHours != nil {
			row["hours"] = *item.BusinessHours
		}
		switch {
		case item.PriceDisplay != nil:
			row["price"] = *item.PriceDisplay
		case item.Price != nil:
			row["price"] = strconv.Itoa(*item.Price)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: title, Columns: eventColumns, Rows: rows}
}

func exportFilename(title, format string) string {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	return fmt.Sprintf("%s.%s", slug, format)
}
