package types

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// AggregateRow is one record of a source table. Fields a table does not carry
// stay at their zero value.
type AggregateRow struct {
	Year              int             `json:"year"`
	Quarter           int             `json:"quarter"`
	State             string          `json:"state"`
	District          string          `json:"district,omitempty"`
	Brand             string          `json:"brand,omitempty"`
	TransactionType   string          `json:"transaction_type,omitempty"`
	TransactionCount  int64           `json:"transaction_count,omitempty"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	RegisteredUsers   int64           `json:"registered_users,omitempty"`
	AppOpens          int64           `json:"app_opens,omitempty"`
}

// Dimension returns the row's value for dim as a string key.
func (r AggregateRow) Dimension(dim Dimension) string {
	switch dim {
	case DimensionYear:
		return strconv.Itoa(r.Year)
	case DimensionQuarter:
		return strconv.Itoa(r.Quarter)
	case DimensionState:
		return r.State
	case DimensionDistrict:
		return r.District
	case DimensionBrand:
		return r.Brand
	case DimensionTransactionType:
		return r.TransactionType
	default:
		return ""
	}
}

// Metric returns the row's value for metric.
func (r AggregateRow) Metric(metric Metric) decimal.Decimal {
	switch metric {
	case MetricCount:
		return decimal.NewFromInt(r.TransactionCount)
	case MetricAmount:
		return r.TransactionAmount
	case MetricRegisteredUsers:
		return decimal.NewFromInt(r.RegisteredUsers)
	case MetricAppOpens:
		return decimal.NewFromInt(r.AppOpens)
	default:
		return decimal.Zero
	}
}

// Summary is the whole-set scalar view of one metric.
type Summary struct {
	Total   decimal.Decimal `json:"total"`
	Count   int64           `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// TransactionSummary backs the transaction metric cards: amount, number of
// transactions and the average value of a single transaction.
type TransactionSummary struct {
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalCount   int64           `json:"total_count"`
	AverageValue decimal.Decimal `json:"average_value"`
}
