package store

import (
	"strings"

	"github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	"github.com/angelmondragon/pulse-analytics/pkg/db/models"
)

// column maps a physical column onto an AggregateRow field alias.
type column struct {
	physical string
	alias    string
}

// binding ties a logical table to its physical table and columns.
type binding struct {
	table   string
	columns []column
}

var bindings = map[types.TableID]binding{
	types.TableTransactionByState: {
		table: models.AggregatedTransaction{}.TableName(),
		columns: []column{
			{"years", "year"},
			{"quarter", "quarter"},
			{"states", "state"},
			{"transaction_type", "transaction_type"},
			{"transaction_count", "transaction_count"},
			{"transaction_amount", "transaction_amount"},
		},
	},
	types.TableTransactionByDistrict: {
		table: models.MapTransaction{}.TableName(),
		columns: []column{
			{"years", "year"},
			{"quarter", "quarter"},
			{"states", "state"},
			{"district", "district"},
			{"transaction_count", "transaction_count"},
			{"transaction_amount", "transaction_amount"},
		},
	},
	types.TableUserByDistrict: {
		table: models.MapUser{}.TableName(),
		columns: []column{
			{"years", "year"},
			{"quarter", "quarter"},
			{"states", "state"},
			{"districts", "district"},
			{"registereduser", "registered_users"},
			{"appopens", "app_opens"},
		},
	},
	types.TableUserByBrand: {
		table: models.AggregatedUser{}.TableName(),
		columns: []column{
			{"years", "year"},
			{"quarter", "quarter"},
			{"states", "state"},
			{"brands", "brand"},
			{"transaction_count", "transaction_count"},
		},
	},
}

func (b binding) selectList() string {
	parts := make([]string, 0, len(b.columns))
	for _, c := range b.columns {
		if c.physical == c.alias {
			parts = append(parts, c.physical)
			continue
		}
		parts = append(parts, c.physical+" AS "+c.alias)
	}
	return strings.Join(parts, ", ")
}

// query returns the parameterized SELECT for period and its arguments.
func (b binding) query(period types.Period) (string, []any) {
	sql := "SELECT " + b.selectList() + " FROM " + b.table
	var args []any
	switch {
	case period.Year != 0 && period.Quarter != 0:
		sql += " WHERE years = ? AND quarter = ?"
		args = append(args, period.Year, period.Quarter)
	case period.Year != 0:
		sql += " WHERE years = ?"
		args = append(args, period.Year)
	}
	return sql, args
}
