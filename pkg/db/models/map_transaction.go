package models

import "github.com/shopspring/decimal"

// MapTransaction is one row of map_transaction: district-level payments.
type MapTransaction struct {
	States            string          `gorm:"column:states;not null"`
	District          string          `gorm:"column:district;not null"`
	Years             int             `gorm:"column:years;not null;index:idx_map_transaction_period,priority:1"`
	Quarter           int             `gorm:"column:quarter;not null;index:idx_map_transaction_period,priority:2"`
	TransactionCount  int64           `gorm:"column:transaction_count;not null;default:0"`
	TransactionAmount decimal.Decimal `gorm:"column:transaction_amount;type:numeric(24,2);not null;default:0"`
}

func (MapTransaction) TableName() string { return "map_transaction" }
