package chart

import (
	"encoding/json"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

// RegionLookup resolves a group key to a boundary feature. The returned name
// is the spelling the feature uses.
type RegionLookup interface {
	Region(name string) (string, json.RawMessage, bool)
	FeatureIDKey() string
}

// BuildChoropleth maps a result grouped by state onto a region map. Keys
// without a boundary are never dropped silently: the chart covering the
// matched regions is returned together with an UNKNOWN_REGION error that
// names every unmatched key, and the caller decides whether to continue.
func BuildChoropleth(result types.AggregateResult, titleTemplate string, lookup RegionLookup) (types.ChartSpec, error) {
	if len(result.Spec.GroupBy) != 1 || result.Spec.GroupBy[0] != types.DimensionState {
		return types.ChartSpec{}, pkgerrors.New(pkgerrors.CodeInvalidQuery, "choropleth charts group by state only").
			WithDetails(map[string]any{"group_by": result.Spec.GroupBy})
	}
	if lookup == nil {
		return types.ChartSpec{}, pkgerrors.New(pkgerrors.CodeDependency, "region boundaries unavailable")
	}

	spec := base(result, types.ChartChoropleth, Title(titleTemplate, result.Spec))
	binding := &types.RegionBinding{
		FeatureIDKey: lookup.FeatureIDKey(),
		ColorScale:   ChoroplethScale,
		Values:       []types.RegionValue{},
		Boundaries:   map[string]json.RawMessage{},
	}
	matched := types.AggregateResult{Spec: result.Spec, Rows: make([]types.ResultRow, 0, len(result.Rows))}
	var unknown []string

	for _, row := range result.Rows {
		key := row.Keys[0]
		name, feature, ok := lookup.Region(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		binding.Values = append(binding.Values, types.RegionValue{Name: name, Value: toFloat(row.Value())})
		binding.Boundaries[name] = feature
		matched.Rows = append(matched.Rows, types.ResultRow{Keys: []string{name}, Values: row.Values})
	}

	spec.Regions = binding
	spec.Series = series(matched)
	spec.Colors = map[string]string{}
	if len(unknown) > 0 {
		return spec, pkgerrors.New(pkgerrors.CodeUnknownRegion, "group keys without a map boundary").
			WithDetails(map[string]any{"regions": unknown})
	}
	return spec, nil
}

// UnknownRegions extracts the unmatched names from a BuildChoropleth error.
func UnknownRegions(err error) []string {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnknownRegion {
		return nil
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return nil
	}
	regions, _ := details["regions"].([]string)
	return regions
}
