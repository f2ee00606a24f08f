package analytics

import (
	"context"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/aggregate"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

// geoSources maps each map metric to the table it is summed from.
var geoSources = map[pulse.Metric]pulse.TableID{
	pulse.MetricAmount:          pulse.TableTransactionByState,
	pulse.MetricCount:           pulse.TableTransactionByState,
	pulse.MetricRegisteredUsers: pulse.TableUserByDistrict,
}

func (s *service) Geo(ctx context.Context, sel types.Selection) (*types.GeoView, error) {
	ctx = s.logg.WithView(ctx, "geo")
	metric := sel.Metric
	if metric == "" {
		metric = pulse.MetricAmount
	}
	table, ok := geoSources[metric]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metric cannot be mapped by state").
			WithDetails(map[string]any{"metric": metric})
	}

	rows, err := s.rows(ctx, table)
	if err != nil {
		return nil, err
	}
	period, err := resolvePeriod(rows, sel.Period)
	if err != nil {
		return nil, err
	}
	result, err := aggregate.Evaluate(pulse.QuerySpec{
		Table:   table,
		Period:  period,
		GroupBy: []pulse.Dimension{pulse.DimensionState},
		Metrics: []pulse.Metric{metric},
	}, rows)
	if err != nil {
		return nil, err
	}

	spec, warnings, err := s.choropleth(ctx, result, "{metric} by State ({year} Q{quarter})")
	if err != nil {
		return nil, err
	}
	return &types.GeoView{Period: period, Metric: metric, Chart: spec, Warnings: warnings}, nil
}
