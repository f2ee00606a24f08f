package chart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

// Build maps an evaluated result onto a renderer-neutral chart. It performs no
// I/O. Choropleths need boundary data and go through BuildChoropleth instead.
func Build(result types.AggregateResult, kind types.ChartKind, titleTemplate string) (types.ChartSpec, error) {
	if !kind.IsValid() {
		return types.ChartSpec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "unsupported chart kind").
			WithDetails(map[string]any{"kind": kind})
	}
	if kind == types.ChartChoropleth {
		return types.ChartSpec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "choropleth charts require region boundaries").
			WithDetails(map[string]any{"kind": kind})
	}
	if kind == types.ChartSunburst && len(result.Spec.GroupBy) != 2 {
		return types.ChartSpec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "sunburst charts need two grouping dimensions").
			WithDetails(map[string]any{"group_by": result.Spec.GroupBy})
	}

	spec := base(result, kind, Title(titleTemplate, result.Spec))
	spec.Series = series(result)
	spec.Colors = colors(result, kind, spec.Series)
	if kind == types.ChartSunburst {
		spec.Hierarchy = hierarchy(result)
	}
	return spec, nil
}

func base(result types.AggregateResult, kind types.ChartKind, title string) types.ChartSpec {
	categories := make([]string, 0, len(result.Spec.GroupBy))
	for _, dim := range result.Spec.GroupBy {
		categories = append(categories, string(dim))
	}
	values := make([]string, 0, len(result.Spec.Metrics))
	for _, metric := range result.Spec.Metrics {
		values = append(values, metric.Field())
	}
	return types.ChartSpec{
		Kind:           kind,
		Title:          title,
		CategoryFields: categories,
		ValueFields:    values,
	}
}

// series emits one series per metric with points in result order.
func series(result types.AggregateResult) []types.Series {
	out := make([]types.Series, 0, len(result.Spec.Metrics))
	for i, metric := range result.Spec.Metrics {
		color := colorAt(i)
		if pinned, ok := metricColors[metric]; ok {
			color = pinned
		}
		points := make([]types.Point, 0, len(result.Rows))
		for _, row := range result.Rows {
			var value decimal.Decimal
			if i < len(row.Values) {
				value = row.Values[i]
			}
			points = append(points, types.Point{
				Label: row.Label(),
				Path:  row.Keys,
				Value: toFloat(value),
			})
		}
		out = append(out, types.Series{
			Name:       metric.Label(),
			ValueField: metric.Field(),
			Color:      color,
			Points:     points,
		})
	}
	return out
}

// colors keys pie slices by category label and everything else by value field.
func colors(result types.AggregateResult, kind types.ChartKind, series []types.Series) map[string]string {
	out := map[string]string{}
	if kind == types.ChartPie || kind == types.ChartSunburst {
		for i, row := range result.Rows {
			out[row.Label()] = colorAt(i)
		}
		return out
	}
	for _, s := range series {
		out[s.ValueField] = s.Color
	}
	return out
}

// hierarchy builds two-level sectors. Parent values are the sum of their
// children so a renderer can use branch totals.
func hierarchy(result types.AggregateResult) []types.Node {
	type parent struct {
		total    decimal.Decimal
		children []types.Node
	}
	order := []string{}
	parents := map[string]*parent{}
	for _, row := range result.Rows {
		if len(row.Keys) < 2 {
			continue
		}
		outer, inner := row.Keys[0], row.Keys[1]
		p, ok := parents[outer]
		if !ok {
			p = &parent{total: decimal.Zero}
			parents[outer] = p
			order = append(order, outer)
		}
		p.total = p.total.Add(row.Value())
		p.children = append(p.children, types.Node{
			ID:     outer + "/" + inner,
			Parent: outer,
			Label:  inner,
			Value:  toFloat(row.Value()),
		})
	}

	nodes := make([]types.Node, 0, len(result.Rows)+len(order))
	for _, outer := range order {
		nodes = append(nodes, types.Node{ID: outer, Label: outer, Value: toFloat(parents[outer].total)})
	}
	for _, outer := range order {
		nodes = append(nodes, parents[outer].children...)
	}
	return nodes
}

func toFloat(value decimal.Decimal) float64 {
	return value.Round(2).InexactFloat64()
}
