package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord is one row per game. GameData holds the full snapshot; Status
// and CreatedAt are copied out of it so the reaper and recovery can filter.
type GameRecord struct {
	Code      string         `gorm:"primaryKey;size:8"`
	Status    string         `gorm:"size:16;index;not null"`
	GameData  datatypes.JSON `gorm:"not null"`
	Version   int64          `gorm:"not null;default:1"`
	CreatedAt time.Time      `gorm:"index;not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (GameRecord) TableName() string {
	return "games"
}
