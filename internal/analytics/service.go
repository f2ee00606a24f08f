package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/aggregate"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/cache"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/chart"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
	"github.com/angelmondragon/pulse-analytics/pkg/geo"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

// Service serves the analytics dashboards and ad-hoc queries.
type Service interface {
	Tables() []pulse.TableDescriptor
	// Periods lists the years, quarters and states present in a table.
	Periods(ctx context.Context, table pulse.TableID) (*types.PeriodOptions, error)
	// Query evaluates an ad-hoc spec and optionally charts it.
	Query(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error)
	Transactions(ctx context.Context, sel types.Selection) (*types.TransactionsView, error)
	Users(ctx context.Context, sel types.Selection) (*types.UsersView, error)
	Geo(ctx context.Context, sel types.Selection) (*types.GeoView, error)
	Facts() []types.FactInfo
	Fact(ctx context.Context, id string, year int) (*types.FactView, error)
}

// RowSource loads raw table rows; the store satisfies it.
type RowSource interface {
	Fetch(ctx context.Context, table pulse.TableID) ([]pulse.AggregateRow, error)
}

// RowCache memoizes table fetches.
type RowCache interface {
	GetOrFetch(ctx context.Context, table pulse.TableID, fetch cache.FetchFunc) ([]pulse.AggregateRow, error)
}

// BoundarySource provides the region boundaries for maps.
type BoundarySource interface {
	Boundaries(ctx context.Context) (*geo.Boundaries, error)
}

type service struct {
	source     RowSource
	cache      RowCache
	boundaries BoundarySource
	logg       *logger.Logger
}

// NewService wires the dashboards to a row source behind the result cache.
// boundaries may be nil, in which case map views report a dependency error.
func NewService(source RowSource, rowCache RowCache, boundaries BoundarySource, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("row source required")
	}
	if rowCache == nil {
		return nil, fmt.Errorf("row cache required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{source: source, cache: rowCache, boundaries: boundaries, logg: logg}, nil
}

func (s *service) Tables() []pulse.TableDescriptor {
	return pulse.Tables()
}

func (s *service) rows(ctx context.Context, table pulse.TableID) ([]pulse.AggregateRow, error) {
	return s.cache.GetOrFetch(s.logg.WithTable(ctx, string(table)), table, s.source.Fetch)
}

func (s *service) Periods(ctx context.Context, table pulse.TableID) (*types.PeriodOptions, error) {
	if _, ok := pulse.Descriptor(table); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found").
			WithDetails(map[string]any{"table": table})
	}
	rows, err := s.rows(ctx, table)
	if err != nil {
		return nil, err
	}
	years, quarters, states := periodOptions(rows)
	return &types.PeriodOptions{Table: table, Years: years, Quarters: quarters, States: states}, nil
}

func (s *service) Query(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	if err := req.Spec.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, req.Spec.Table)
	if err != nil {
		return nil, err
	}
	result, err := aggregate.Evaluate(req.Spec, rows)
	if err != nil {
		return nil, err
	}
	resp := &types.QueryResponse{
		Result:  result,
		Summary: aggregate.ScalarSummary(aggregate.Filter(req.Spec.Period, req.Spec.Filter, rows), req.Spec.Metric()),
	}
	if req.Chart == "" {
		return resp, nil
	}

	var spec pulse.ChartSpec
	if req.Chart == pulse.ChartChoropleth {
		spec, resp.Warnings, err = s.choropleth(ctx, result, req.Title)
	} else {
		spec, err = chart.Build(result, req.Chart, req.Title)
	}
	if err != nil {
		return nil, err
	}
	resp.Chart = &spec
	return resp, nil
}

// choropleth builds a map and downgrades unknown regions to a warning so the
// matched subset is still shown.
func (s *service) choropleth(ctx context.Context, result pulse.AggregateResult, title string) (pulse.ChartSpec, []types.Warning, error) {
	if s.boundaries == nil {
		return pulse.ChartSpec{}, nil, pkgerrors.New(pkgerrors.CodeDependency, "region boundaries not configured")
	}
	boundaries, err := s.boundaries.Boundaries(ctx)
	if err != nil {
		return pulse.ChartSpec{}, nil, err
	}
	spec, err := chart.BuildChoropleth(result, title, boundaries)
	if regions := chart.UnknownRegions(err); regions != nil {
		s.logg.Warn(s.logg.WithField(ctx, "regions", regions), "regions missing from map boundaries")
		return spec, []types.Warning{{
			Code:    string(pkgerrors.CodeUnknownRegion),
			Message: "some regions have no map boundary and were left out",
			Items:   regions,
		}}, nil
	}
	if err != nil {
		return pulse.ChartSpec{}, nil, err
	}
	return spec, nil, nil
}

// periodOptions returns years newest first, quarters ascending and states in
// lexical order.
func periodOptions(rows []pulse.AggregateRow) ([]int, []int, []string) {
	yearSet := map[int]struct{}{}
	quarterSet := map[int]struct{}{}
	stateSet := map[string]struct{}{}
	for _, row := range rows {
		yearSet[row.Year] = struct{}{}
		quarterSet[row.Quarter] = struct{}{}
		if row.State != "" {
			stateSet[row.State] = struct{}{}
		}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	quarters := make([]int, 0, len(quarterSet))
	for q := range quarterSet {
		quarters = append(quarters, q)
	}
	sort.Ints(quarters)

	return years, quarters, sortedStates(stateSet)
}

func sortedStates(set map[string]struct{}) []string {
	states := make([]string, 0, len(set))
	for state := range set {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}

// resolvePeriod fills a zero period with the latest year and its earliest
// quarter, which is what the pickers show first.
func resolvePeriod(rows []pulse.AggregateRow, period pulse.Period) (pulse.Period, error) {
	if err := period.Validate(); err != nil {
		return pulse.Period{}, err
	}
	if period.Year != 0 || len(rows) == 0 {
		return period, nil
	}
	latest := pulse.Period{}
	for _, row := range rows {
		if row.Year > latest.Year || (row.Year == latest.Year && row.Quarter < latest.Quarter) {
			latest = pulse.Period{Year: row.Year, Quarter: row.Quarter}
		}
	}
	return latest, nil
}

// resolveState picks the requested state, or the first one alphabetically.
func resolveState(rows []pulse.AggregateRow, state string) (string, []string, error) {
	set := map[string]struct{}{}
	for _, row := range rows {
		set[row.State] = struct{}{}
	}
	states := sortedStates(set)
	if state == "" {
		if len(states) == 0 {
			return "", states, nil
		}
		return states[0], states, nil
	}
	if _, ok := set[state]; !ok {
		return "", states, pkgerrors.New(pkgerrors.CodeNotFound, "state has no data for the selected period").
			WithDetails(map[string]any{"state": state})
	}
	return state, states, nil
}

// chartFor evaluates spec over rows and builds a chart of kind.
func chartFor(spec pulse.QuerySpec, rows []pulse.AggregateRow, kind pulse.ChartKind, title string) (pulse.AggregateResult, pulse.ChartSpec, error) {
	result, err := aggregate.Evaluate(spec, rows)
	if err != nil {
		return result, pulse.ChartSpec{}, err
	}
	built, err := chart.Build(result, kind, title)
	return result, built, err
}
