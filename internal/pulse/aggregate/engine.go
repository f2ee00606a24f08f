package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

// Evaluate runs filter → group → sort → limit over rows. Invalid specs return
// an empty result alongside the INVALID_QUERY_SPEC error.
func Evaluate(spec types.QuerySpec, rows []types.AggregateRow) (types.AggregateResult, error) {
	result := types.AggregateResult{Spec: spec, Rows: []types.ResultRow{}}
	if err := spec.Validate(); err != nil {
		return result, err
	}

	filtered := Filter(spec.Period, spec.Filter, rows)
	if len(filtered) == 0 {
		return result, nil
	}

	groups := group(filtered, spec.GroupBy, spec.Metrics)
	sortRows(groups, spec.Order)

	if spec.Limit > 0 && len(groups) > spec.Limit {
		groups = groups[:spec.Limit]
	}
	result.Rows = groups
	return result, nil
}

// Filter keeps rows inside period whose dimensions equal every filter value.
func Filter(period types.Period, filter map[types.Dimension]string, rows []types.AggregateRow) []types.AggregateRow {
	out := make([]types.AggregateRow, 0, len(rows))
	for _, row := range rows {
		if !period.Matches(row) {
			continue
		}
		if !matchesFilter(row, filter) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func matchesFilter(row types.AggregateRow, filter map[types.Dimension]string) bool {
	for dim, want := range filter {
		if row.Dimension(dim) != want {
			return false
		}
	}
	return true
}

// group sums every metric per key tuple in a single pass so that combined
// views see totals taken from the same row set.
func group(rows []types.AggregateRow, dims []types.Dimension, metrics []types.Metric) []types.ResultRow {
	index := make(map[string]int)
	out := make([]types.ResultRow, 0)

	for _, row := range rows {
		keys := make([]string, len(dims))
		for i, dim := range dims {
			keys[i] = row.Dimension(dim)
		}
		id := strings.Join(keys, "\x00")

		pos, ok := index[id]
		if !ok {
			values := make([]decimal.Decimal, len(metrics))
			for i := range values {
				values[i] = decimal.Zero
			}
			out = append(out, types.ResultRow{Keys: keys, Values: values})
			pos = len(out) - 1
			index[id] = pos
		}
		for i, metric := range metrics {
			out[pos].Values[i] = out[pos].Values[i].Add(row.Metric(metric))
		}
	}
	return out
}

func sortRows(rows []types.ResultRow, order types.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch order {
		case types.OrderAsc, types.OrderDesc:
			cmp := rows[i].Value().Cmp(rows[j].Value())
			if cmp != 0 {
				if order == types.OrderDesc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return compareKeys(rows[i].Keys, rows[j].Keys) < 0
	})
}

func compareKeys(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
