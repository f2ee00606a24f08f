package analytics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/internal/pulse/cache"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
	"github.com/angelmondragon/pulse-analytics/pkg/geo"
)

type fakeSource struct {
	rows  map[pulse.TableID][]pulse.AggregateRow
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Fetch(ctx context.Context, table pulse.TableID) ([]pulse.AggregateRow, error) {
	f.calls.Add(1)
	if f.err != nil {
		return []pulse.AggregateRow{}, f.err
	}
	return f.rows[table], nil
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const statesGeoJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"ST_NM":"Karnataka"},"geometry":null},
{"type":"Feature","properties":{"ST_NM":"Maharashtra"},"geometry":null}]}`

func boundaryResolver(t *testing.T) *geo.Resolver {
	t.Helper()
	client, err := geo.NewClient("https://example.test/states.geojson", geo.WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(statesGeoJSON)),
				Header:     make(http.Header),
			}, nil
		}),
	}))
	if err != nil {
		t.Fatalf("new geo client: %v", err)
	}
	return geo.NewResolver(client)
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func fixtureRows() map[pulse.TableID][]pulse.AggregateRow {
	return map[pulse.TableID][]pulse.AggregateRow{
		pulse.TableTransactionByState: {
			{Year: 2021, Quarter: 1, State: "Maharashtra", TransactionType: "Peer-to-peer payments", TransactionCount: 10, TransactionAmount: amount(1000)},
			{Year: 2022, Quarter: 2, State: "Maharashtra", TransactionType: "Peer-to-peer payments", TransactionCount: 30, TransactionAmount: amount(3000)},
			{Year: 2022, Quarter: 1, State: "Maharashtra", TransactionType: "Merchant payments", TransactionCount: 20, TransactionAmount: amount(500)},
			{Year: 2022, Quarter: 1, State: "Karnataka", TransactionType: "Peer-to-peer payments", TransactionCount: 5, TransactionAmount: amount(700)},
			{Year: 2022, Quarter: 1, State: "Ladakh", TransactionType: "Recharge & bill payments", TransactionCount: 1, TransactionAmount: amount(10)},
		},
		pulse.TableTransactionByDistrict: {
			{Year: 2022, Quarter: 1, State: "Karnataka", District: "Bengaluru Urban", TransactionCount: 50, TransactionAmount: amount(900)},
			{Year: 2022, Quarter: 2, State: "Karnataka", District: "Mysuru", TransactionCount: 8, TransactionAmount: amount(80)},
			{Year: 2022, Quarter: 1, State: "Maharashtra", District: "Pune", TransactionCount: 20, TransactionAmount: amount(400)},
			{Year: 2021, Quarter: 1, State: "Maharashtra", District: "Pune", TransactionCount: 2, TransactionAmount: amount(40)},
		},
		pulse.TableUserByDistrict: {
			{Year: 2021, Quarter: 1, State: "Karnataka", District: "Mysuru", RegisteredUsers: 100, AppOpens: 10},
			{Year: 2022, Quarter: 1, State: "Karnataka", District: "Mysuru", RegisteredUsers: 150, AppOpens: 20},
			{Year: 2022, Quarter: 1, State: "Karnataka", District: "Bengaluru Urban", RegisteredUsers: 400, AppOpens: 90},
			{Year: 2022, Quarter: 1, State: "Maharashtra", District: "Pune", RegisteredUsers: 300, AppOpens: 60},
		},
		pulse.TableUserByBrand: {
			{Year: 2022, Quarter: 1, State: "Karnataka", Brand: "Xiaomi", TransactionCount: 70},
			{Year: 2022, Quarter: 1, State: "Maharashtra", Brand: "Xiaomi", TransactionCount: 30},
			{Year: 2022, Quarter: 1, State: "Maharashtra", Brand: "Samsung", TransactionCount: 60},
			{Year: 2021, Quarter: 1, State: "Maharashtra", Brand: "Vivo", TransactionCount: 500},
		},
	}
}

func newTestService(t *testing.T, source *fakeSource, boundaries BoundarySource) Service {
	t.Helper()
	svc, err := NewService(source, cache.New(time.Minute), boundaries, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := NewService(nil, cache.New(time.Minute), nil, nil); err == nil {
		t.Fatalf("expected error without row source")
	}
	if _, err := NewService(&fakeSource{}, nil, nil, nil); err == nil {
		t.Fatalf("expected error without cache")
	}
}

func TestPeriodsListsPickerOptions(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	opts, err := svc.Periods(context.Background(), pulse.TableTransactionByState)
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if len(opts.Years) != 2 || opts.Years[0] != 2022 || opts.Years[1] != 2021 {
		t.Fatalf("expected years newest first, got %v", opts.Years)
	}
	if len(opts.Quarters) != 2 || opts.Quarters[0] != 1 || opts.Quarters[1] != 2 {
		t.Fatalf("expected quarters ascending, got %v", opts.Quarters)
	}
	if strings.Join(opts.States, ",") != "Karnataka,Ladakh,Maharashtra" {
		t.Fatalf("unexpected states %v", opts.States)
	}

	if _, err := svc.Periods(context.Background(), "bogus"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown table, got %v", err)
	}
}

func TestQueryUsesCacheAcrossCalls(t *testing.T) {
	source := &fakeSource{rows: fixtureRows()}
	svc := newTestService(t, source, nil)
	req := types.QueryRequest{
		Spec: pulse.QuerySpec{
			Table:   pulse.TableTransactionByState,
			Period:  pulse.Period{Year: 2022, Quarter: 1},
			GroupBy: []pulse.Dimension{pulse.DimensionState},
			Metrics: []pulse.Metric{pulse.MetricAmount},
			Order:   pulse.OrderDesc,
			Limit:   2,
		},
		Chart: pulse.ChartHorizontalBar,
		Title: "{rank} {limit} States by {metric}",
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Query(context.Background(), req); err != nil {
			t.Fatalf("query: %v", err)
		}
	}
	if source.calls.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", source.calls.Load())
	}

	resp, err := svc.Query(context.Background(), req)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Result.Len() != 2 || resp.Result.Rows[0].Keys[0] != "Karnataka" {
		t.Fatalf("unexpected rows %+v", resp.Result.Rows)
	}
	if !resp.Summary.Total.Equal(amount(1210)) || resp.Summary.Count != 3 {
		t.Fatalf("summary should cover every filtered row, got %+v", resp.Summary)
	}
	if resp.Chart == nil || resp.Chart.Title != "Top 2 States by Transaction Amount" {
		t.Fatalf("unexpected chart %+v", resp.Chart)
	}
}

func TestQueryRejectsInvalidSpecWithoutFetching(t *testing.T) {
	source := &fakeSource{rows: fixtureRows()}
	svc := newTestService(t, source, nil)

	_, err := svc.Query(context.Background(), types.QueryRequest{Spec: pulse.QuerySpec{
		Table:   pulse.TableUserByBrand,
		GroupBy: []pulse.Dimension{pulse.DimensionDistrict},
		Metrics: []pulse.Metric{pulse.MetricCount},
	}})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuery) {
		t.Fatalf("expected invalid query, got %v", err)
	}
	if source.calls.Load() != 0 {
		t.Fatalf("invalid spec must not reach the store")
	}
}

func TestQueryPropagatesSourceErrors(t *testing.T) {
	source := &fakeSource{err: pkgerrors.New(pkgerrors.CodeDataSourceUnavailable, "down")}
	svc := newTestService(t, source, nil)

	_, err := svc.Query(context.Background(), types.QueryRequest{Spec: pulse.QuerySpec{
		Table:   pulse.TableTransactionByState,
		GroupBy: []pulse.Dimension{pulse.DimensionState},
		Metrics: []pulse.Metric{pulse.MetricCount},
	}})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDataSourceUnavailable) {
		t.Fatalf("expected data source error, got %v", err)
	}
}

func TestQueryChoroplethWarnsOnUnknownRegions(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, boundaryResolver(t))

	resp, err := svc.Query(context.Background(), types.QueryRequest{
		Spec: pulse.QuerySpec{
			Table:   pulse.TableTransactionByState,
			Period:  pulse.Period{Year: 2022, Quarter: 1},
			GroupBy: []pulse.Dimension{pulse.DimensionState},
			Metrics: []pulse.Metric{pulse.MetricAmount},
		},
		Chart: pulse.ChartChoropleth,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0].Code != string(pkgerrors.CodeUnknownRegion) {
		t.Fatalf("expected unknown region warning, got %+v", resp.Warnings)
	}
	if strings.Join(resp.Warnings[0].Items, ",") != "Ladakh" {
		t.Fatalf("expected only Ladakh reported, got %v", resp.Warnings[0].Items)
	}
	if resp.Chart == nil || resp.Chart.Regions == nil || len(resp.Chart.Regions.Values) != 2 {
		t.Fatalf("expected matched regions in chart, got %+v", resp.Chart)
	}
}

func TestQueryChoroplethWithoutBoundaries(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	_, err := svc.Query(context.Background(), types.QueryRequest{
		Spec: pulse.QuerySpec{
			Table:   pulse.TableTransactionByState,
			GroupBy: []pulse.Dimension{pulse.DimensionState},
			Metrics: []pulse.Metric{pulse.MetricAmount},
		},
		Chart: pulse.ChartChoropleth,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestTransactionsDefaultsToLatestPeriodAndFirstState(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	view, err := svc.Transactions(context.Background(), types.Selection{})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if view.Period != (pulse.Period{Year: 2022, Quarter: 1}) {
		t.Fatalf("expected 2022 Q1, got %+v", view.Period)
	}
	if view.State != "Karnataka" {
		t.Fatalf("expected first state, got %q", view.State)
	}
	if !view.Summary.TotalAmount.Equal(amount(1210)) || view.Summary.TotalCount != 26 {
		t.Fatalf("unexpected summary %+v", view.Summary)
	}
	if !view.StateSummary.TotalAmount.Equal(amount(700)) {
		t.Fatalf("unexpected state summary %+v", view.StateSummary)
	}
	if view.AmountByType.Title != "Karnataka Transaction Amount Distribution" {
		t.Fatalf("unexpected pie title %q", view.AmountByType.Title)
	}
	if view.AmountByState.Kind != pulse.ChartHorizontalBar || view.AmountByState.Title != "Transaction Amount by State" {
		t.Fatalf("unexpected state chart %+v", view.AmountByState)
	}
}

func TestTransactionsStateBreakdown(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	view, err := svc.Transactions(context.Background(), types.Selection{
		Period: pulse.Period{Year: 2022},
		State:  "Maharashtra",
	})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	rows := view.TypeBreakdown.Rows
	if len(rows) != 2 {
		t.Fatalf("expected two transaction types, got %+v", rows)
	}
	for _, row := range rows {
		if len(row.Values) != 2 {
			t.Fatalf("expected amount and count per type, got %+v", row)
		}
	}
	if !view.StateSummary.AverageValue.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected average 3500/50 = 70, got %s", view.StateSummary.AverageValue)
	}

	_, err = svc.Transactions(context.Background(), types.Selection{State: "Atlantis"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown state, got %v", err)
	}
}

func TestUsersView(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	view, err := svc.Users(context.Background(), types.Selection{State: "Karnataka"})
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if view.BrandShare.Title != "Transaction Distribution by Brand (2022 Q1)" {
		t.Fatalf("unexpected brand title %q", view.BrandShare.Title)
	}
	if len(view.BrandShare.Series) != 1 || len(view.BrandShare.Series[0].Points) != 2 {
		t.Fatalf("expected two brands, got %+v", view.BrandShare.Series)
	}
	if view.UsersByState.Kind != pulse.ChartGroupedBar || len(view.UsersByState.Series) != 2 {
		t.Fatalf("expected grouped bar with two series, got %+v", view.UsersByState)
	}
	if view.RegisteredByDistrict.Title != "Registered Users by District in Karnataka" {
		t.Fatalf("unexpected district title %q", view.RegisteredByDistrict.Title)
	}
	if view.RegisteredByDistrict.Series[0].Color != "#ff7f0e" || view.AppOpensByDistrict.Series[0].Color != "#1f77b4" {
		t.Fatalf("unexpected district colors")
	}
}

func TestGeoView(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, boundaryResolver(t))

	view, err := svc.Geo(context.Background(), types.Selection{Metric: pulse.MetricRegisteredUsers})
	if err != nil {
		t.Fatalf("geo: %v", err)
	}
	if view.Chart.Title != "Registered Users by State (2022 Q1)" {
		t.Fatalf("unexpected title %q", view.Chart.Title)
	}
	if len(view.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", view.Warnings)
	}

	if _, err := svc.Geo(context.Background(), types.Selection{Metric: pulse.MetricAppOpens}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unmapped metric, got %v", err)
	}
}

func TestFactsRegistry(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	infos := svc.Facts()
	if len(infos) != 10 {
		t.Fatalf("expected ten facts, got %d", len(infos))
	}
	seen := map[string]bool{}
	for _, info := range infos {
		if seen[info.ID] {
			t.Fatalf("duplicate fact id %q", info.ID)
		}
		seen[info.ID] = true
	}

	if _, err := svc.Fact(context.Background(), "nope", 0); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFactTopBrands(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	view, err := svc.Fact(context.Background(), "top-brands", 0)
	if err != nil {
		t.Fatalf("fact: %v", err)
	}
	if view.Year != 2022 || view.Chart.Title != "Mobile Brand Usage in 2022" {
		t.Fatalf("expected latest year, got %d %q", view.Year, view.Chart.Title)
	}
	if view.Result.Rows[0].Keys[0] != "Xiaomi" {
		t.Fatalf("expected Xiaomi first, got %+v", view.Result.Rows)
	}
	if view.Chart.Series[0].Color != topBrandColor {
		t.Fatalf("expected brand color override, got %q", view.Chart.Series[0].Color)
	}

	if _, err := svc.Fact(context.Background(), "top-brands", 2019); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing year, got %v", err)
	}
}

func TestFactGrowthAndSunburst(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: fixtureRows()}, nil)

	growth, err := svc.Fact(context.Background(), "users-growth", 0)
	if err != nil {
		t.Fatalf("growth: %v", err)
	}
	if growth.Chart.Kind != pulse.ChartLine || growth.Result.Len() != 2 || growth.Result.Rows[0].Keys[0] != "2021" {
		t.Fatalf("expected yearly line from 2021, got %+v", growth.Result.Rows)
	}

	lowest, err := svc.Fact(context.Background(), "districts-lowest-count", 2022)
	if err != nil {
		t.Fatalf("lowest: %v", err)
	}
	if lowest.Chart.Title != "Bottom 10 Districts by Transaction Count (2022)" {
		t.Fatalf("unexpected title %q", lowest.Chart.Title)
	}
	if lowest.Result.Rows[0].Keys[1] != "Mysuru" || len(lowest.Chart.Hierarchy) == 0 {
		t.Fatalf("expected Mysuru lowest with hierarchy, got %+v", lowest.Result.Rows)
	}
}
