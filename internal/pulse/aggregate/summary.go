package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
)

// ScalarSummary totals metric over rows. Count is the number of rows and the
// average is zero for an empty set.
func ScalarSummary(rows []types.AggregateRow, metric types.Metric) types.Summary {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Metric(metric))
	}
	count := int64(len(rows))
	return types.Summary{
		Total:   total,
		Count:   count,
		Average: average(total, decimal.NewFromInt(count)),
	}
}

// TransactionSummary computes the payment cards: total amount, total number of
// transactions and the value of an average transaction.
func TransactionSummary(rows []types.AggregateRow) types.TransactionSummary {
	amount := decimal.Zero
	var count int64
	for _, row := range rows {
		amount = amount.Add(row.TransactionAmount)
		count += row.TransactionCount
	}
	return types.TransactionSummary{
		TotalAmount:  amount,
		TotalCount:   count,
		AverageValue: average(amount, decimal.NewFromInt(count)),
	}
}

func average(total, count decimal.Decimal) decimal.Decimal {
	if count.IsZero() {
		return decimal.Zero
	}
	return total.DivRound(count, 2)
}
