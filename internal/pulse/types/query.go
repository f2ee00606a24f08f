package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

// Period selects rows by time. Year 0 keeps every year and Quarter 0 keeps
// every quarter of the selected year(s).
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// AllTime matches every row.
var AllTime = Period{}

func (p Period) Validate() error {
	if p.Year < 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuery, "year must not be negative").
			WithDetails(map[string]any{"year": p.Year})
	}
	if p.Quarter < 0 || p.Quarter > 4 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuery, "quarter must be between 1 and 4").
			WithDetails(map[string]any{"quarter": p.Quarter})
	}
	if p.Year == 0 && p.Quarter != 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuery, "quarter requires a year").
			WithDetails(map[string]any{"quarter": p.Quarter})
	}
	return nil
}

func (p Period) Matches(row AggregateRow) bool {
	if p.Year != 0 && row.Year != p.Year {
		return false
	}
	if p.Quarter != 0 && row.Quarter != p.Quarter {
		return false
	}
	return true
}

func (p Period) String() string {
	switch {
	case p.Year == 0:
		return "all years"
	case p.Quarter == 0:
		return fmt.Sprintf("%d", p.Year)
	default:
		return fmt.Sprintf("%d Q%d", p.Year, p.Quarter)
	}
}

type Order string

const (
	OrderNone Order = "none"
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func (o Order) IsValid() bool {
	switch o {
	case OrderNone, OrderAsc, OrderDesc, "":
		return true
	}
	return false
}

// QuerySpec describes one aggregation over a logical table. The first metric
// drives ordering; further metrics are summed over the same groups.
type QuerySpec struct {
	Table   TableID              `json:"table"`
	Period  Period               `json:"period"`
	GroupBy []Dimension          `json:"group_by"`
	Metrics []Metric             `json:"metrics"`
	Order   Order                `json:"order"`
	Limit   int                  `json:"limit,omitempty"`
	Filter  map[Dimension]string `json:"filter,omitempty"`
}

// Metric returns the ordering metric.
func (q QuerySpec) Metric() Metric {
	if len(q.Metrics) == 0 {
		return ""
	}
	return q.Metrics[0]
}

// Validate checks q against the table descriptor. Every failure is an
// INVALID_QUERY_SPEC error.
func (q QuerySpec) Validate() error {
	desc, ok := Descriptor(q.Table)
	if !ok {
		return invalid("unknown table", map[string]any{"table": q.Table})
	}
	if err := q.Period.Validate(); err != nil {
		return err
	}
	if len(q.GroupBy) == 0 || len(q.GroupBy) > 2 {
		return invalid("group_by takes one or two dimensions", map[string]any{"group_by": q.GroupBy})
	}
	seen := map[Dimension]bool{}
	for _, dim := range q.GroupBy {
		if !desc.Provides(dim) {
			return invalid("table does not provide grouping dimension", map[string]any{"table": q.Table, "dimension": dim})
		}
		if seen[dim] {
			return invalid("duplicate grouping dimension", map[string]any{"dimension": dim})
		}
		seen[dim] = true
	}
	if len(q.Metrics) == 0 {
		return invalid("at least one metric is required", nil)
	}
	for _, metric := range q.Metrics {
		if !desc.Measures(metric) {
			return invalid("table does not provide metric", map[string]any{"table": q.Table, "metric": metric})
		}
	}
	for dim := range q.Filter {
		if !desc.Provides(dim) {
			return invalid("table does not provide filter dimension", map[string]any{"table": q.Table, "dimension": dim})
		}
	}
	if !q.Order.IsValid() {
		return invalid("order must be none, asc or desc", map[string]any{"order": q.Order})
	}
	if q.Limit < 0 {
		return invalid("limit must not be negative", map[string]any{"limit": q.Limit})
	}
	return nil
}

// FilterLabel joins the filter values in dimension-name order.
func (q QuerySpec) FilterLabel() string {
	if len(q.Filter) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q.Filter))
	for dim := range q.Filter {
		keys = append(keys, string(dim))
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		values = append(values, q.Filter[Dimension(key)])
	}
	return strings.Join(values, ", ")
}

func invalid(message string, details map[string]any) error {
	err := pkgerrors.New(pkgerrors.CodeInvalidQuery, message)
	if details != nil {
		err = err.WithDetails(details)
	}
	return err
}

// ResultRow is one group: its key tuple (in GroupBy order) and one summed
// value per requested metric (in Metrics order).
type ResultRow struct {
	Keys   []string          `json:"keys"`
	Values []decimal.Decimal `json:"values"`
}

// Value returns the ordering metric's sum.
func (r ResultRow) Value() decimal.Decimal {
	if len(r.Values) == 0 {
		return decimal.Zero
	}
	return r.Values[0]
}

// Label joins the key tuple for single-axis charts.
func (r ResultRow) Label() string {
	return strings.Join(r.Keys, " / ")
}

// AggregateResult is the ordered output of evaluating a QuerySpec.
type AggregateResult struct {
	Spec QuerySpec   `json:"spec"`
	Rows []ResultRow `json:"rows"`
}

func (a AggregateResult) Len() int {
	return len(a.Rows)
}

// Total sums the i-th metric over every row of the result.
func (a AggregateResult) Total(i int) decimal.Decimal {
	total := decimal.Zero
	for _, row := range a.Rows {
		if i < len(row.Values) {
			total = total.Add(row.Values[i])
		}
	}
	return total
}
