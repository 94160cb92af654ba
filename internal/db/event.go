package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameEvent is the audit trail of everything broadcast to a game's room.
type GameEvent struct {
	ID        uint           `gorm:"primaryKey"`
	GameCode  string         `gorm:"size:8;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (GameEvent) TableName() string {
	return "game_events"
}
