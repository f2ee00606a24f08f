package analytics

import (
	"context"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

const topBrandColor = "#ff4b4b"

// fact is one canned insight: a fixed query over a single year (or every year
// when year is 0) and the chart it is shown as.
type fact struct {
	info  types.FactInfo
	title string
	query func(year int) pulse.QuerySpec
	color string
}

func yearly(table pulse.TableID, groupBy []pulse.Dimension, metric pulse.Metric, order pulse.Order, limit int) func(int) pulse.QuerySpec {
	return func(year int) pulse.QuerySpec {
		return pulse.QuerySpec{
			Table:   table,
			Period:  pulse.Period{Year: year},
			GroupBy: groupBy,
			Metrics: []pulse.Metric{metric},
			Order:   order,
			Limit:   limit,
		}
	}
}

var (
	byDistrict         = []pulse.Dimension{pulse.DimensionDistrict}
	byState            = []pulse.Dimension{pulse.DimensionState}
	byDistrictAndState = []pulse.Dimension{pulse.DimensionDistrict, pulse.DimensionState}
	byStateAndDistrict = []pulse.Dimension{pulse.DimensionState, pulse.DimensionDistrict}
)

var facts = []fact{
	{
		info:  types.FactInfo{ID: "top-brands", Title: "Top Brands of Mobile Used", Chart: pulse.ChartBar, NeedsYear: true},
		title: "Mobile Brand Usage in {year}",
		query: yearly(pulse.TableUserByBrand, []pulse.Dimension{pulse.DimensionBrand}, pulse.MetricCount, pulse.OrderDesc, 0),
		color: topBrandColor,
	},
	{
		info:  types.FactInfo{ID: "districts-lowest-amount", Title: "Top 10 Districts - Lowest Transaction Amount", Chart: pulse.ChartPie, NeedsYear: true},
		title: "Top 10 Districts with Lowest Transactions ({year})",
		query: yearly(pulse.TableTransactionByDistrict, byDistrict, pulse.MetricAmount, pulse.OrderAsc, 10),
	},
	{
		info:  types.FactInfo{ID: "districts-highest-amount", Title: "Top 10 Districts - Highest Transaction Amount", Chart: pulse.ChartPie, NeedsYear: true},
		title: "Top 10 Districts with Highest Transactions ({year})",
		query: yearly(pulse.TableTransactionByDistrict, byDistrict, pulse.MetricAmount, pulse.OrderDesc, 10),
	},
	{
		info:  types.FactInfo{ID: "users-growth", Title: "PhonePe Users Growth Trend", Chart: pulse.ChartLine},
		title: "PhonePe Users Growth Over Years",
		query: func(int) pulse.QuerySpec {
			return pulse.QuerySpec{
				Table:   pulse.TableUserByDistrict,
				Period:  pulse.AllTime,
				GroupBy: []pulse.Dimension{pulse.DimensionYear},
				Metrics: []pulse.Metric{pulse.MetricRegisteredUsers},
				Order:   pulse.OrderNone,
			}
		},
	},
	{
		info:  types.FactInfo{ID: "states-highest-usage", Title: "Top 10 States - Highest PhonePe Usage", Chart: pulse.ChartPie, NeedsYear: true},
		title: "{rank} 10 States by PhonePe Usage ({year})",
		query: yearly(pulse.TableUserByDistrict, byState, pulse.MetricRegisteredUsers, pulse.OrderDesc, 10),
	},
	{
		info:  types.FactInfo{ID: "states-lowest-usage", Title: "Top 10 States - Lowest PhonePe Usage", Chart: pulse.ChartPie, NeedsYear: true},
		title: "{rank} 10 States by PhonePe Usage ({year})",
		query: yearly(pulse.TableUserByDistrict, byState, pulse.MetricRegisteredUsers, pulse.OrderAsc, 10),
	},
	{
		info:  types.FactInfo{ID: "districts-highest-usage", Title: "Top 10 Districts - Highest PhonePe Usage", Chart: pulse.ChartPie, NeedsYear: true},
		title: "{rank} 10 Districts by PhonePe Usage ({year})",
		query: yearly(pulse.TableUserByDistrict, byDistrictAndState, pulse.MetricRegisteredUsers, pulse.OrderDesc, 10),
	},
	{
		info:  types.FactInfo{ID: "districts-lowest-usage", Title: "Top 10 Districts - Lowest PhonePe Usage", Chart: pulse.ChartPie, NeedsYear: true},
		title: "{rank} 10 Districts by PhonePe Usage ({year})",
		query: yearly(pulse.TableUserByDistrict, byDistrictAndState, pulse.MetricRegisteredUsers, pulse.OrderAsc, 10),
	},
	{
		info:  types.FactInfo{ID: "districts-highest-count", Title: "Top 10 Districts - Highest Transaction Count", Chart: pulse.ChartSunburst, NeedsYear: true},
		title: "{rank} 10 Districts by Transaction Count ({year})",
		query: yearly(pulse.TableTransactionByDistrict, byStateAndDistrict, pulse.MetricCount, pulse.OrderDesc, 10),
	},
	{
		info:  types.FactInfo{ID: "districts-lowest-count", Title: "Top 10 Districts - Lowest Transaction Count", Chart: pulse.ChartSunburst, NeedsYear: true},
		title: "{rank} 10 Districts by Transaction Count ({year})",
		query: yearly(pulse.TableTransactionByDistrict, byStateAndDistrict, pulse.MetricCount, pulse.OrderAsc, 10),
	},
}

func lookupFact(id string) (fact, bool) {
	for _, f := range facts {
		if f.info.ID == id {
			return f, true
		}
	}
	return fact{}, false
}

func (s *service) Facts() []types.FactInfo {
	out := make([]types.FactInfo, 0, len(facts))
	for _, f := range facts {
		out = append(out, f.info)
	}
	return out
}

// Fact evaluates one insight. Years are limited to those present in the
// table; year 0 picks the latest.
func (s *service) Fact(ctx context.Context, id string, year int) (*types.FactView, error) {
	f, ok := lookupFact(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fact not found").
			WithDetails(map[string]any{"fact": id})
	}
	ctx = s.logg.WithView(s.logg.WithField(ctx, "fact", id), "facts")

	table := f.query(0).Table
	rows, err := s.rows(ctx, table)
	if err != nil {
		return nil, err
	}

	view := &types.FactView{Fact: f.info}
	if f.info.NeedsYear {
		years, _, _ := periodOptions(rows)
		view.Years = years
		if year, err = pickYear(years, year); err != nil {
			return nil, err
		}
		view.Year = year
	}

	result, spec, err := chartFor(f.query(view.Year), rows, f.info.Chart, f.title)
	if err != nil {
		return nil, err
	}
	if f.color != "" {
		for i := range spec.Series {
			spec.Series[i].Color = f.color
			spec.Colors[spec.Series[i].ValueField] = f.color
		}
	}
	view.Result = result
	view.Chart = spec
	return view, nil
}

// pickYear returns year when it is one of years, or the latest year for 0.
// years must be newest first.
func pickYear(years []int, year int) (int, error) {
	if len(years) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "no data for any year")
	}
	if year == 0 {
		return years[0], nil
	}
	for _, y := range years {
		if y == year {
			return year, nil
		}
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "year has no data").
		WithDetails(map[string]any{"year": year, "years": years})
}
