package types

import (
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

// Selection is what a dashboard view is asked for. A zero period picks the
// latest year and its first quarter; an empty state picks the first state
// alphabetically.
type Selection struct {
	Period pulse.Period
	State  string
	Metric pulse.Metric
}

// PeriodOptions backs the year/quarter/state pickers of a table.
type PeriodOptions struct {
	Table    pulse.TableID `json:"table"`
	Years    []int         `json:"years"`
	Quarters []int         `json:"quarters"`
	States   []string      `json:"states"`
}

// QueryRequest is an ad-hoc aggregation plus an optional chart.
type QueryRequest struct {
	Spec  pulse.QuerySpec `json:"spec"`
	Chart pulse.ChartKind `json:"chart,omitempty" validate:"omitempty,valid"`
	Title string          `json:"title,omitempty" validate:"max=200"`
}

type QueryResponse struct {
	Result   pulse.AggregateResult `json:"result"`
	Summary  pulse.Summary         `json:"summary"`
	Chart    *pulse.ChartSpec      `json:"chart,omitempty"`
	Warnings []Warning             `json:"warnings,omitempty"`
}

// Warning reports a recoverable problem, such as regions missing from the
// map, alongside a partial result.
type Warning struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Items   []string `json:"items,omitempty"`
}

type TransactionsView struct {
	Period        pulse.Period             `json:"period"`
	State         string                   `json:"state"`
	States        []string                 `json:"states"`
	Summary       pulse.TransactionSummary `json:"summary"`
	StateSummary  pulse.TransactionSummary `json:"state_summary"`
	TypeBreakdown pulse.AggregateResult    `json:"type_breakdown"`
	AmountByType  pulse.ChartSpec          `json:"amount_by_type"`
	CountByType   pulse.ChartSpec          `json:"count_by_type"`
	AmountByState pulse.ChartSpec          `json:"amount_by_state"`
	CountByState  pulse.ChartSpec          `json:"count_by_state"`
}

type UsersView struct {
	Period               pulse.Period    `json:"period"`
	State                string          `json:"state"`
	States               []string        `json:"states"`
	BrandShare           pulse.ChartSpec `json:"brand_share"`
	BrandCounts          pulse.ChartSpec `json:"brand_counts"`
	UsersByState         pulse.ChartSpec `json:"users_by_state"`
	RegisteredByDistrict pulse.ChartSpec `json:"registered_by_district"`
	AppOpensByDistrict   pulse.ChartSpec `json:"app_opens_by_district"`
}

type GeoView struct {
	Period   pulse.Period    `json:"period"`
	Metric   pulse.Metric    `json:"metric"`
	Chart    pulse.ChartSpec `json:"chart"`
	Warnings []Warning       `json:"warnings,omitempty"`
}

// FactInfo describes one canned insight.
type FactInfo struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Chart     pulse.ChartKind `json:"chart"`
	NeedsYear bool            `json:"needs_year"`
}

type FactView struct {
	Fact   FactInfo              `json:"fact"`
	Year   int                   `json:"year,omitempty"`
	Years  []int                 `json:"years,omitempty"`
	Result pulse.AggregateResult `json:"result"`
	Chart  pulse.ChartSpec       `json:"chart"`
}
