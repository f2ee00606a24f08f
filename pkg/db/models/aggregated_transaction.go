package models

import "github.com/shopspring/decimal"

// AggregatedTransaction is one row of aggregated_transaction: state-level
// payments per transaction type.
type AggregatedTransaction struct {
	States            string          `gorm:"column:states;not null"`
	Years             int             `gorm:"column:years;not null;index:idx_aggregated_transaction_period,priority:1"`
	Quarter           int             `gorm:"column:quarter;not null;index:idx_aggregated_transaction_period,priority:2"`
	TransactionType   string          `gorm:"column:transaction_type;not null"`
	TransactionCount  int64           `gorm:"column:transaction_count;not null;default:0"`
	TransactionAmount decimal.Decimal `gorm:"column:transaction_amount;type:numeric(24,2);not null;default:0"`
}

func (AggregatedTransaction) TableName() string { return "aggregated_transaction" }
