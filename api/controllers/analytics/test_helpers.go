package analytics

import (
	"context"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

type testAnalyticsService struct {
	lastQuery     *types.QueryRequest
	lastSelection *types.Selection
	lastTable     pulse.TableID
	lastFact      string
	lastYear      int
	err           error
}

func (s *testAnalyticsService) Tables() []pulse.TableDescriptor {
	return pulse.Tables()
}

func (s *testAnalyticsService) Periods(ctx context.Context, table pulse.TableID) (*types.PeriodOptions, error) {
	s.lastTable = table
	if s.err != nil {
		return nil, s.err
	}
	return &types.PeriodOptions{Table: table, Years: []int{2022, 2021}, Quarters: []int{1, 2, 3, 4}}, nil
}

func (s *testAnalyticsService) Query(ctx context.Context, req types.QueryRequest) (*types.QueryResponse, error) {
	s.lastQuery = &req
	if s.err != nil {
		return nil, s.err
	}
	return &types.QueryResponse{Result: pulse.AggregateResult{Spec: req.Spec, Rows: []pulse.ResultRow{}}}, nil
}

func (s *testAnalyticsService) Transactions(ctx context.Context, sel types.Selection) (*types.TransactionsView, error) {
	s.lastSelection = &sel
	if s.err != nil {
		return nil, s.err
	}
	return &types.TransactionsView{Period: sel.Period, State: sel.State}, nil
}

func (s *testAnalyticsService) Users(ctx context.Context, sel types.Selection) (*types.UsersView, error) {
	s.lastSelection = &sel
	if s.err != nil {
		return nil, s.err
	}
	return &types.UsersView{Period: sel.Period, State: sel.State}, nil
}

func (s *testAnalyticsService) Geo(ctx context.Context, sel types.Selection) (*types.GeoView, error) {
	s.lastSelection = &sel
	if s.err != nil {
		return nil, s.err
	}
	return &types.GeoView{Period: sel.Period, Metric: sel.Metric}, nil
}

func (s *testAnalyticsService) Facts() []types.FactInfo {
	return []types.FactInfo{{ID: "top-brands", Title: "Top Brands of Mobile Used", Chart: pulse.ChartBar, NeedsYear: true}}
}

func (s *testAnalyticsService) Fact(ctx context.Context, id string, year int) (*types.FactView, error) {
	s.lastFact = id
	s.lastYear = year
	if s.err != nil {
		return nil, s.err
	}
	return &types.FactView{Fact: s.Facts()[0], Year: year}, nil
}
