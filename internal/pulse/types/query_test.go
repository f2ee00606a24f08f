package types

import (
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

func TestQuerySpecValidate(t *testing.T) {
	valid := QuerySpec{
		Table:   TableTransactionByState,
		Period:  Period{Year: 2022, Quarter: 1},
		GroupBy: []Dimension{DimensionState},
		Metrics: []Metric{MetricAmount, MetricCount},
		Order:   OrderDesc,
		Limit:   10,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(q *QuerySpec)
	}{
		{"unknown table", func(q *QuerySpec) { q.Table = "nope" }},
		{"negative year", func(q *QuerySpec) { q.Period.Year = -1 }},
		{"quarter out of range", func(q *QuerySpec) { q.Period.Quarter = 5 }},
		{"quarter without year", func(q *QuerySpec) { q.Period = Period{Quarter: 2} }},
		{"no grouping", func(q *QuerySpec) { q.GroupBy = nil }},
		{"three groupings", func(q *QuerySpec) {
			q.GroupBy = []Dimension{DimensionState, DimensionTransactionType, DimensionYear}
		}},
		{"duplicate grouping", func(q *QuerySpec) { q.GroupBy = []Dimension{DimensionState, DimensionState} }},
		{"brand on transaction table", func(q *QuerySpec) { q.GroupBy = []Dimension{DimensionBrand} }},
		{"district on state table", func(q *QuerySpec) { q.GroupBy = []Dimension{DimensionDistrict} }},
		{"no metrics", func(q *QuerySpec) { q.Metrics = nil }},
		{"foreign metric", func(q *QuerySpec) { q.Metrics = []Metric{MetricAppOpens} }},
		{"foreign filter", func(q *QuerySpec) { q.Filter = map[Dimension]string{DimensionBrand: "Xiaomi"} }},
		{"bad order", func(q *QuerySpec) { q.Order = "sideways" }},
		{"negative limit", func(q *QuerySpec) { q.Limit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			spec.GroupBy = append([]Dimension(nil), valid.GroupBy...)
			spec.Metrics = append([]Metric(nil), valid.Metrics...)
			tt.mutate(&spec)
			err := spec.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuery) {
				t.Fatalf("expected INVALID_QUERY_SPEC, got %v", err)
			}
		})
	}
}

func TestQuerySpecAllowsEmptyOrder(t *testing.T) {
	spec := QuerySpec{
		Table:   TableUserByBrand,
		Period:  Period{Year: 2020},
		GroupBy: []Dimension{DimensionBrand},
		Metrics: []Metric{MetricCount},
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("expected empty order to be accepted, got %v", err)
	}
}

func TestPeriodMatchesAndString(t *testing.T) {
	row := AggregateRow{Year: 2021, Quarter: 3}

	cases := []struct {
		period Period
		match  bool
		label  string
	}{
		{Period{Year: 2021, Quarter: 3}, true, "2021 Q3"},
		{Period{Year: 2021, Quarter: 2}, false, "2021 Q2"},
		{Period{Year: 2021}, true, "2021"},
		{Period{Year: 2020}, false, "2020"},
		{AllTime, true, "all years"},
	}
	for _, c := range cases {
		if got := c.period.Matches(row); got != c.match {
			t.Fatalf("period %+v match=%v want %v", c.period, got, c.match)
		}
		if got := c.period.String(); got != c.label {
			t.Fatalf("period %+v label=%q want %q", c.period, got, c.label)
		}
	}
}

func TestAggregateRowAccessors(t *testing.T) {
	row := AggregateRow{
		Year:              2019,
		Quarter:           4,
		State:             "goa",
		District:          "north goa district",
		TransactionType:   "Peer-to-peer payments",
		TransactionCount:  12,
		TransactionAmount: decimal.RequireFromString("1500.25"),
		RegisteredUsers:   7,
		AppOpens:          3,
	}

	if got := row.Dimension(DimensionYear); got != "2019" {
		t.Fatalf("unexpected year key %q", got)
	}
	if got := row.Dimension(DimensionQuarter); got != "4" {
		t.Fatalf("unexpected quarter key %q", got)
	}
	if got := row.Dimension(DimensionDistrict); got != "north goa district" {
		t.Fatalf("unexpected district key %q", got)
	}
	if got := row.Metric(MetricAmount); !got.Equal(decimal.RequireFromString("1500.25")) {
		t.Fatalf("unexpected amount %s", got)
	}
	if got := row.Metric(MetricCount); !got.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("unexpected count %s", got)
	}
	if got := row.Metric(MetricAppOpens); !got.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected app opens %s", got)
	}
	if got := row.Metric("bogus"); !got.IsZero() {
		t.Fatalf("unknown metric should be zero, got %s", got)
	}
}

func TestParseTableID(t *testing.T) {
	id, ok := ParseTableID("  User_By_Brand ")
	if !ok || id != TableUserByBrand {
		t.Fatalf("expected user_by_brand, got %q ok=%v", id, ok)
	}
	if _, ok := ParseTableID("aggregated_user"); ok {
		t.Fatal("physical table names are not logical ids")
	}
	if len(Tables()) != 4 {
		t.Fatalf("expected four tables, got %d", len(Tables()))
	}
}

func TestQuerySpecFilterLabel(t *testing.T) {
	spec := QuerySpec{Filter: map[Dimension]string{DimensionState: "kerala", DimensionBrand: "Xiaomi"}}
	if got := spec.FilterLabel(); got != "Xiaomi, kerala" {
		t.Fatalf("unexpected filter label %q", got)
	}
}
