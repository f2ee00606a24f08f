package models

// AggregatedUser is one row of aggregated_user: transactions per device brand.
type AggregatedUser struct {
	States           string `gorm:"column:states;not null"`
	Years            int    `gorm:"column:years;not null;index:idx_aggregated_user_period,priority:1"`
	Quarter          int    `gorm:"column:quarter;not null;index:idx_aggregated_user_period,priority:2"`
	Brands           string `gorm:"column:brands;not null"`
	TransactionCount int64  `gorm:"column:transaction_count;not null;default:0"`
}

func (AggregatedUser) TableName() string { return "aggregated_user" }

// All lists every source model, in migration order.
func All() []any {
	return []any{
		&AggregatedTransaction{},
		&MapTransaction{},
		&MapUser{},
		&AggregatedUser{},
	}
}
