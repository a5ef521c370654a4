package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/sorter"
	"github.com/noah-isme/popspot-calendar/internal/source"
)

const eventColumns = "id, title, category, subcategory, region_id, period, start_date, end_date, all_day, business_hours, " +
	"price_display, price, discount_price, like_count, view_count, recommended_score, created_at"

var orderClauses = map[sorter.SortKey]string{
	sorter.SortPopular:     "like_count DESC",
	sorter.SortViews:       "view_count DESC",
	sorter.SortRecommended: "recommended_score DESC",
	sorter.SortLatest:      "COALESCE(created_at, start_date) DESC",
	sorter.SortDeadline:    "COALESCE(end_date, start_date) ASC",
	sorter.SortPrice:       "COALESCE(discount_price, price, 0) ASC",
}

// lastDayTemplate yields the last calendar day an event covers. All-day end
// dates are exclusive, as in models.Event.ToListItem.
const lastDayTemplate = "CASE WHEN %[1]sall_day AND %[1]send_date::date > %[1]sstart_date::date " +
	"THEN %[1]send_date::date - 1 ELSE COALESCE(%[1]send_date, %[1]sstart_date)::date END"

// lastDay renders lastDayTemplate for columns qualified by prefix.
func lastDay(prefix string) string {
	return fmt.Sprintf(lastDayTemplate, prefix)
}

// EventRepository serves the event source contract from Postgres.
type EventRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db, now: time.Now}
}

type dayCountRow struct {
	Date     time.Time `db:"date"`
	Category string    `db:"category"`
	Count    int       `db:"count"`
}

// filterBuilder accumulates positional where clauses.
type filterBuilder struct {
	where []string
	args  []interface{}
}

func (b *filterBuilder) add(clause string, arg interface{}) {
	b.args = append(b.args, arg)
	b.where = append(b.where, fmt.Sprintf(clause, len(b.args)))
}

func (b *filterBuilder) clause() string {
	if len(b.where) == 0 {
		return "1=1"
	}
	return strings.Join(b.where, " AND ")
}

func (b *filterBuilder) catalogue(categories []models.CategoryKey, subcategories map[models.CategoryKey]string, regionID, keyword string) {
	b.add("category = ANY($%d)", pq.Array(source.CategoryStrings(categories)))
	for _, k := range models.CategoryKeys {
		sub, ok := subcategories[k]
		if !ok {
			continue
		}
		b.args = append(b.args, string(k), sub)
		b.where = append(b.where, fmt.Sprintf("(category <> $%d OR subcategory = $%d)", len(b.args)-1, len(b.args)))
	}
	if regionID != "" && regionID != models.RegionAll {
		b.add("region_id = $%d", regionID)
	}
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		b.add("title ILIKE $%d", "%"+keyword+"%")
	}
}

// GetMonthSummary counts, per day of the month, the events covering that day.
func (r *EventRepository) GetMonthSummary(ctx context.Context, q source.MonthSummaryQuery) (*models.MonthSummary, error) {
	first, ok := q.Month.FirstDay(time.UTC)
	if !ok {
		return nil, fmt.Errorf("invalid month %q", q.Month)
	}
	last := first.AddDate(0, 1, -1)
	summary := &models.MonthSummary{Days: make([]models.DaySummary, 0, last.Day())}
	byDate := map[calendar.IsoDate]map[models.CategoryKey]int{}
	for _, d := range q.Month.Days() {
		counts := map[models.CategoryKey]int{}
		for _, k := range models.CategoryKeys {
			counts[k] = 0
		}
		byDate[d] = counts
		summary.Days = append(summary.Days, models.DaySummary{Date: d, Counts: counts})
	}
	if len(q.Categories) == 0 {
		summary.EnsureRegions()
		return summary, nil
	}

	b := &filterBuilder{args: []interface{}{first, last}}
	b.catalogue(q.Categories, nil, q.RegionID, "")
	query := fmt.Sprintf(`SELECT d::date AS date, e.category, COUNT(e.id) AS count
FROM generate_series($1::date, $2::date, interval '1 day') AS d
JOIN events e ON e.start_date::date <= d::date AND %s >= d::date
WHERE %s
GROUP BY d, e.category ORDER BY d`, lastDay("e."), b.clause())

	var rows []dayCountRow
	if err := r.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		return nil, fmt.Errorf("month summary %s: %w", q.Month, err)
	}
	for _, row := range rows {
		if counts, ok := byDate[calendar.ToIsoDateLocal(row.Date)]; ok {
			counts[models.CategoryKey(row.Category)] = row.Count
		}
	}

	regions, err := r.regionsFor(ctx, first, last)
	if err != nil {
		return nil, err
	}
	summary.Regions = regions
	summary.EnsureRegions()
	return summary, nil
}

func (r *EventRepository) regionsFor(ctx context.Context, first, last time.Time) ([]models.Region, error) {
	query := `SELECT DISTINCT r.id AS region_id, r.name AS region_name
FROM regions r JOIN events e ON e.region_id = r.id
WHERE e.start_date::date <= $2 AND ` + lastDay("e.") + ` >= $1
ORDER BY r.name`
	var regions []models.Region
	if err := r.db.SelectContext(ctx, &regions, query, first, last); err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

// GetEventsByDate returns one page of events covering q.Date.
func (r *EventRepository) GetEventsByDate(ctx context.Context, q source.EventsByDateQuery) (*models.EventPage, error) {
	q = q.Normalize()
	if len(q.Categories) == 0 {
		return &models.EventPage{Events: []models.Event{}}, nil
	}
	day, ok := q.Date.Time(time.UTC)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", q.Date)
	}

	b := &filterBuilder{}
	b.add("start_date::date <= $%d", day)
	b.add(lastDay("")+" >= $%d", day)
	b.catalogue(q.Categories, q.Subcategories, q.RegionID, q.Keyword)
	whereClause := b.clause()

	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s, id ASC LIMIT %d OFFSET %d`,
		eventColumns, whereClause, orderClauses[q.SortBy], q.Size, q.Offset())
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, b.args...); err != nil {
		return nil, fmt.Errorf("list events for %s: %w", q.Date, err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, b.args...); err != nil {
		return nil, fmt.Errorf("count events for %s: %w", q.Date, err)
	}
	return &models.EventPage{Events: events, Total: total}, nil
}

// GetPopularEvents returns events that have not ended yet, best first.
func (r *EventRepository) GetPopularEvents(ctx context.Context, q source.PopularEventsQuery) ([]models.Event, error) {
	q = q.Normalize()
	if len(q.Categories) == 0 {
		return []models.Event{}, nil
	}

	today := calendar.StartOfDay(r.now())
	b := &filterBuilder{}
	b.add(lastDay("")+" >= $%d", today)
	b.catalogue(q.Categories, q.Subcategories, q.RegionID, q.Keyword)

	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s, id ASC LIMIT %d`,
		eventColumns, b.clause(), orderClauses[q.SortBy], q.Limit)
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query, b.args...); err != nil {
		return nil, fmt.Errorf("list popular events: %w", err)
	}
	return events, nil
}

// ListRegions returns every selectable region.
func (r *EventRepository) ListRegions(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	if err := r.db.SelectContext(ctx, &regions, `SELECT id AS region_id, name AS region_name FROM regions ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

// Ping checks database connectivity for readiness probes.
func (r *EventRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
