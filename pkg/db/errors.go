package db

import (
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

const (
	sqlStateUndefinedTable  = "42P01"
	sqlStateUndefinedColumn = "42703"
)

// IsUndefinedObject reports whether a postgres error refers to a table or
// column that does not exist.
func IsUndefinedObject(err error) bool {
	switch pkgerrors.PGCode(err) {
	case sqlStateUndefinedTable, sqlStateUndefinedColumn:
		return true
	}
	return false
}
