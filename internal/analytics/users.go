package analytics

import (
	"context"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/aggregate"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

func (s *service) Users(ctx context.Context, sel types.Selection) (*types.UsersView, error) {
	ctx = s.logg.WithView(ctx, "users")
	users, err := s.rows(ctx, pulse.TableUserByDistrict)
	if err != nil {
		return nil, err
	}
	brands, err := s.rows(ctx, pulse.TableUserByBrand)
	if err != nil {
		return nil, err
	}
	period, err := resolvePeriod(users, sel.Period)
	if err != nil {
		return nil, err
	}
	state, states, err := resolveState(aggregate.Filter(period, nil, users), sel.State)
	if err != nil {
		return nil, err
	}

	view := &types.UsersView{Period: period, State: state, States: states}

	brandSpec := pulse.QuerySpec{
		Table:   pulse.TableUserByBrand,
		Period:  period,
		GroupBy: []pulse.Dimension{pulse.DimensionBrand},
		Metrics: []pulse.Metric{pulse.MetricCount},
	}
	if _, view.BrandShare, err = chartFor(brandSpec, brands, pulse.ChartPie, "Transaction Distribution by Brand ({year} Q{quarter})"); err != nil {
		return nil, err
	}
	if _, view.BrandCounts, err = chartFor(brandSpec, brands, pulse.ChartHorizontalBar, "Transaction Count by Brand ({year} Q{quarter})"); err != nil {
		return nil, err
	}

	stateSpec := pulse.QuerySpec{
		Table:   pulse.TableUserByDistrict,
		Period:  period,
		GroupBy: []pulse.Dimension{pulse.DimensionState},
		Metrics: []pulse.Metric{pulse.MetricRegisteredUsers, pulse.MetricAppOpens},
	}
	if _, view.UsersByState, err = chartFor(stateSpec, users, pulse.ChartGroupedBar, "Registered Users and App Opens by State ({year} Q{quarter})"); err != nil {
		return nil, err
	}

	districtSpec := func(metric pulse.Metric) pulse.QuerySpec {
		return pulse.QuerySpec{
			Table:   pulse.TableUserByDistrict,
			Period:  period,
			GroupBy: []pulse.Dimension{pulse.DimensionDistrict},
			Metrics: []pulse.Metric{metric},
			Filter:  map[pulse.Dimension]string{pulse.DimensionState: state},
		}
	}
	if _, view.RegisteredByDistrict, err = chartFor(districtSpec(pulse.MetricRegisteredUsers), users, pulse.ChartBar, "Registered Users by District in {filter}"); err != nil {
		return nil, err
	}
	if _, view.AppOpensByDistrict, err = chartFor(districtSpec(pulse.MetricAppOpens), users, pulse.ChartBar, "App Opens by District in {filter}"); err != nil {
		return nil, err
	}
	return view, nil
}
