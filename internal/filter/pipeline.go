// Package filter composes the two-stage event filter. Stage one trusts the
// event source for region, subcategory and keyword and only re-checks the
// category. Stage two applies the predicates the source cannot evaluate.
// Filtering never reorders its input.
package filter

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/query"
)

// Stage names reported in Stats.
const (
	StageCategory  = "category"
	StageWishlist  = "wishlist"
	StagePrice     = "price"
	StageAmenities = "amenities"
	StageDateRange = "date_range"
	StageStatus    = "status"
)

// Status is the derived lifecycle of an event relative to today.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusEnded    Status = "ended"
)

var (
	freeWords      = []string{"무료", "free"}
	zeroPriceTexts = []string{"0", "0원"}
)

// Stats records how many items each stage removed.
type Stats struct {
	Input   int
	Output  int
	Dropped map[string]int
}

// Pipeline evaluates the filters against a fixed clock.
type Pipeline struct {
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger
}

// NewPipeline builds a pipeline. now defaults to time.Now and loc to time.Local.
func NewPipeline(now func() time.Time, loc *time.Location, logger *zap.Logger) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{now: now, loc: loc, logger: logger}
}

// Today is the reference date for status derivation.
func (p *Pipeline) Today() calendar.IsoDate {
	return calendar.ToIsoDateLocal(p.now().In(p.loc))
}

type predicate struct {
	stage string
	keep  func(models.EventListItem) bool
}

// Apply runs stage one (category safety net) and stage two (price, amenities,
// date range, status) in that order. Inactive predicates are skipped.
func (p *Pipeline) Apply(items []models.EventListItem, categories models.CategorySet, local query.LocationEventFilterState) ([]models.EventListItem, Stats) {
	preds := []predicate{{stage: StageCategory, keep: CategoryPredicate(categories)}}
	preds = append(preds, p.localPredicates(local)...)
	return p.run(items, preds)
}

// ApplySimple filters for the simple calendar: "event" keeps every event and
// "wishlist" keeps liked events. With nothing selected nothing is shown.
func (p *Pipeline) ApplySimple(items []models.EventListItem, filters map[models.SimpleFilterKey]bool, liked map[string]bool) ([]models.EventListItem, Stats) {
	if filters[models.SimpleFilterEvent] {
		return p.run(items, nil)
	}
	keep := func(models.EventListItem) bool { return false }
	if filters[models.SimpleFilterWishlist] {
		keep = func(item models.EventListItem) bool { return liked[item.ID] }
	}
	return p.run(items, []predicate{{stage: StageWishlist, keep: keep}})
}

func (p *Pipeline) localPredicates(local query.LocationEventFilterState) []predicate {
	var preds []predicate
	if keep := PricePredicate(local.Price); keep != nil {
		preds = append(preds, predicate{stage: StagePrice, keep: keep})
	}
	preds = append(preds, predicate{stage: StageAmenities, keep: AmenityPredicate(local.Amenities)})
	if keep := DateRangePredicate(local.DateRange); keep != nil {
		preds = append(preds, predicate{stage: StageDateRange, keep: keep})
	}
	if keep := StatusPredicate(local.EventStatus, p.Today()); keep != nil {
		preds = append(preds, predicate{stage: StageStatus, keep: keep})
	}
	return preds
}

func (p *Pipeline) run(items []models.EventListItem, preds []predicate) ([]models.EventListItem, Stats) {
	stats := Stats{Input: len(items), Dropped: map[string]int{}}
	out := make([]models.EventListItem, 0, len(items))
	for _, item := range items {
		kept := true
		for _, pred := range preds {
			if !pred.keep(item) {
				stats.Dropped[pred.stage]++
				kept = false
				break
			}
		}
		if kept {
			out = append(out, item)
		}
	}
	stats.Output = len(out)
	if dropped := stats.Dropped[StageCategory]; dropped > 0 {
		p.logger.Warn("event source returned items outside the requested categories", zap.Int("count", dropped))
	}
	return out, stats
}

// CategoryPredicate keeps items whose category is active. It is the local
// safety net over the source's own category filtering.
func CategoryPredicate(categories models.CategorySet) func(models.EventListItem) bool {
	return func(item models.EventListItem) bool {
		return categories[item.Category.Key]
	}
}

// IsFree reports whether the display text names a free event or the resolved
// price is zero. A missing price counts as zero.
func IsFree(item models.EventListItem) bool {
	if item.PriceDisplay != nil {
		text := strings.ToLower(strings.ReplaceAll(*item.PriceDisplay, " ", ""))
		for _, word := range freeWords {
			if strings.Contains(text, word) {
				return true
			}
		}
		for _, zero := range zeroPriceTexts {
			if text == zero {
				return true
			}
		}
	}
	return item.Price == nil || *item.Price == 0
}

// PricePredicate returns nil when both or neither flag is set.
func PricePredicate(price query.PriceFilter) func(models.EventListItem) bool {
	if price.Free == price.Paid {
		return nil
	}
	wantFree := price.Free
	return func(item models.EventListItem) bool {
		return IsFree(item) == wantFree
	}
}

// AmenityPredicate passes everything: no event source reports amenities yet.
// Filtering belongs here once one does.
func AmenityPredicate(query.AmenityFilter) func(models.EventListItem) bool {
	return func(models.EventListItem) bool { return true }
}

// DateRangePredicate returns nil when neither bound is set. An item fails
// when its period lies wholly outside a set bound or cannot be parsed.
func DateRangePredicate(r query.DateRangeFilter) func(models.EventListItem) bool {
	if r.StartDate == nil && r.EndDate == nil {
		return nil
	}
	return func(item models.EventListItem) bool {
		period, ok := ParsePeriod(item.Period)
		if !ok {
			return false
		}
		if r.StartDate != nil && period.Last() < *r.StartDate {
			return false
		}
		if r.EndDate != nil && period.Start > *r.EndDate {
			return false
		}
		return true
	}
}

// DeriveStatus classifies a period against today. An unparseable period
// reports ok=false.
func DeriveStatus(raw string, today calendar.IsoDate) (Status, bool) {
	period, ok := ParsePeriod(raw)
	if !ok {
		return "", false
	}
	switch {
	case period.Start > today:
		return StatusUpcoming, true
	case period.End != "" && period.End < today:
		return StatusEnded, true
	default:
		return StatusOngoing, true
	}
}

// StatusPredicate returns nil when "all" or no specific flag is set.
// Unparseable periods pass.
func StatusPredicate(s query.EventStatusFilter, today calendar.IsoDate) func(models.EventListItem) bool {
	if s.All || (!s.Ongoing && !s.Upcoming && !s.Ended) {
		return nil
	}
	allowed := map[Status]bool{
		StatusOngoing:  s.Ongoing,
		StatusUpcoming: s.Upcoming,
		StatusEnded:    s.Ended,
	}
	return func(item models.EventListItem) bool {
		status, ok := DeriveStatus(item.Period, today)
		if !ok {
			return true
		}
		return allowed[status]
	}
}
