package analytics

import (
	"context"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/aggregate"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

func (s *service) Transactions(ctx context.Context, sel types.Selection) (*types.TransactionsView, error) {
	ctx = s.logg.WithView(ctx, "transactions")
	rows, err := s.rows(ctx, pulse.TableTransactionByState)
	if err != nil {
		return nil, err
	}
	period, err := resolvePeriod(rows, sel.Period)
	if err != nil {
		return nil, err
	}
	filtered := aggregate.Filter(period, nil, rows)
	state, states, err := resolveState(filtered, sel.State)
	if err != nil {
		return nil, err
	}

	view := &types.TransactionsView{
		Period:  period,
		State:   state,
		States:  states,
		Summary: aggregate.TransactionSummary(filtered),
	}

	byState := map[pulse.Dimension]string{pulse.DimensionState: state}
	view.StateSummary = aggregate.TransactionSummary(aggregate.Filter(period, byState, rows))

	typeSpec := func(metrics ...pulse.Metric) pulse.QuerySpec {
		return pulse.QuerySpec{
			Table:   pulse.TableTransactionByState,
			Period:  period,
			GroupBy: []pulse.Dimension{pulse.DimensionTransactionType},
			Metrics: metrics,
			Filter:  byState,
		}
	}
	if view.TypeBreakdown, err = aggregate.Evaluate(typeSpec(pulse.MetricAmount, pulse.MetricCount), rows); err != nil {
		return nil, err
	}
	if _, view.AmountByType, err = chartFor(typeSpec(pulse.MetricAmount), rows, pulse.ChartPie, "{filter} Transaction Amount Distribution"); err != nil {
		return nil, err
	}
	if _, view.CountByType, err = chartFor(typeSpec(pulse.MetricCount), rows, pulse.ChartPie, "{filter} Transaction Count Distribution"); err != nil {
		return nil, err
	}

	stateSpec := func(metric pulse.Metric) pulse.QuerySpec {
		return pulse.QuerySpec{
			Table:   pulse.TableTransactionByState,
			Period:  period,
			GroupBy: []pulse.Dimension{pulse.DimensionState},
			Metrics: []pulse.Metric{metric},
		}
	}
	if _, view.AmountByState, err = chartFor(stateSpec(pulse.MetricAmount), rows, pulse.ChartHorizontalBar, "Transaction Amount by State"); err != nil {
		return nil, err
	}
	if _, view.CountByState, err = chartFor(stateSpec(pulse.MetricCount), rows, pulse.ChartHorizontalBar, "Transaction Count by State"); err != nil {
		return nil, err
	}
	return view, nil
}
