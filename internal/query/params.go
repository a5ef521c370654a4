// Package query maps calendar filter state to and from the flat URL query
// representation and keeps the two in sync without feedback loops.
//
// Every parser is total: absent, empty and malformed input all degrade to a
// documented default so a hand-edited link never breaks the viewer.
package query

import (
	"net/url"
	"strings"
)

// Query parameter names. Producers and consumers outside this package depend
// on the exact spelling.
const (
	ParamYear                  = "year"
	ParamMonth                 = "month"
	ParamRegionID              = "regionId"
	ParamRegionAlias           = "region"
	ParamCategories            = "categories"
	ParamPopupSubcategory      = "popupSubcategory"
	ParamExhibitionSubcategory = "exhibitionSubcategory"
	ParamFilters               = "filters"

	ParamRegions              = "regions"
	ParamPopupCategories      = "popupCategories"
	ParamExhibitionCategories = "exhibitionCategories"
	ParamPrice                = "price"
	ParamAmenities            = "amenities"
	ParamStartDate            = "startDate"
	ParamEndDate              = "endDate"
	ParamStatus               = "status"
	ParamKeyword              = "q"
	ParamSort                 = "sort"
)

// Lookup distinguishes an absent parameter from a present-but-empty one.
func Lookup(values url.Values, key string) (string, bool) {
	if values == nil {
		return "", false
	}
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return "", false
	}
	return raw[0], true
}

func splitTokens(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, ",")
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func setOrDelete(values url.Values, key, value string, present bool) {
	if !present {
		values.Del(key)
		return
	}
	values.Set(key, value)
}
