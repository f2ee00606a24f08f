package models

// MapUser is one row of map_user. The column names follow the upstream dump.
type MapUser struct {
	States          string `gorm:"column:states;not null"`
	Districts       string `gorm:"column:districts;not null"`
	Years           int    `gorm:"column:years;not null;index:idx_map_user_period,priority:1"`
	Quarter         int    `gorm:"column:quarter;not null;index:idx_map_user_period,priority:2"`
	RegisteredUsers int64  `gorm:"column:registereduser;not null;default:0"`
	AppOpens        int64  `gorm:"column:appopens;not null;default:0"`
}

func (MapUser) TableName() string { return "map_user" }
