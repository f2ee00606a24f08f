package chart

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

// Title expands the placeholders of template against spec:
//
//	{year} {quarter} {period} {metric} {dimension} {rank} {limit} {filter}
//
// Unknown placeholders are left as written.
func Title(template string, spec types.QuerySpec) string {
	year := "all years"
	if spec.Period.Year != 0 {
		year = strconv.Itoa(spec.Period.Year)
	}
	quarter := "all"
	if spec.Period.Quarter != 0 {
		quarter = strconv.Itoa(spec.Period.Quarter)
	}
	dimension := ""
	if len(spec.GroupBy) > 0 {
		dimension = spec.GroupBy[0].Label()
	}
	rank := ""
	switch spec.Order {
	case types.OrderDesc:
		rank = "Top"
	case types.OrderAsc:
		rank = "Bottom"
	}
	limit := ""
	if spec.Limit > 0 {
		limit = strconv.Itoa(spec.Limit)
	}

	replacer := strings.NewReplacer(
		"{year}", year,
		"{quarter}", quarter,
		"{period}", spec.Period.String(),
		"{metric}", spec.Metric().Label(),
		"{dimension}", dimension,
		"{rank}", rank,
		"{limit}", limit,
		"{filter}", spec.FilterLabel(),
	)
	return strings.TrimSpace(replacer.Replace(template))
}
