// Package sorter orders event list items for the closed set of sort keys the
// list views offer.
package sorter

import (
	"sort"
	"strings"

	"github.com/noah-isme/popspot-calendar/internal/models"
)

// SortKey names a list ordering. Popular, views, recommended and latest
// order descending (highest or newest first). Deadline orders ascending by
// end date, closest first, and price orders ascending, cheapest first.
type SortKey string

const (
	SortPopular     SortKey = "popular"
	SortViews       SortKey = "views"
	SortRecommended SortKey = "recommended"
	SortLatest      SortKey = "latest"
	SortDeadline    SortKey = "deadline"
	SortPrice       SortKey = "price"

	// DefaultSortKey is used when a request names no known key.
	DefaultSortKey = SortPopular
)

// SortKeys lists the supported keys in display order.
var SortKeys = []SortKey{SortPopular, SortViews, SortRecommended, SortLatest, SortDeadline, SortPrice}

// Valid reports whether k is a supported key.
func (k SortKey) Valid() bool {
	for _, v := range SortKeys {
		if v == k {
			return true
		}
	}
	return false
}

// ParseSortKey never fails; unknown input selects DefaultSortKey.
func ParseSortKey(raw string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return DefaultSortKey
	}
	return k
}

// less reports whether a must come strictly before b. Equal items return
// false both ways so the stable sort keeps them in input order.
type less func(a, b models.EventListItem) bool

var orderings = map[SortKey]less{
	SortPopular: func(a, b models.EventListItem) bool {
		return a.PopularityScore > b.PopularityScore
	},
	SortViews: func(a, b models.EventListItem) bool {
		return a.ViewCount > b.ViewCount
	},
	SortRecommended: func(a, b models.EventListItem) bool {
		return a.RecommendedScore > b.RecommendedScore
	},
	SortLatest: func(a, b models.EventListItem) bool {
		return a.CreatedAtMs > b.CreatedAtMs
	},
	// Closest end date first.
	SortDeadline: func(a, b models.EventListItem) bool {
		return a.End < b.End
	},
	// Cheapest first; a missing price counts as free.
	SortPrice: func(a, b models.EventListItem) bool {
		return priceOf(a) < priceOf(b)
	},
}

func priceOf(item models.EventListItem) int {
	if item.Price == nil {
		return 0
	}
	return *item.Price
}

// Sort returns a newly allocated slice ordered by key, in the direction
// documented on SortKey. The input is never modified and ties keep their
// input order.
func Sort(items []models.EventListItem, key SortKey) []models.EventListItem {
	out := make([]models.EventListItem, len(items))
	copy(out, items)

	cmp, ok := orderings[ParseSortKey(string(key))]
	if !ok || len(out) < 2 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return cmp(out[i], out[j]) })
	return out
}
