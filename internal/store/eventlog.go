package store

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vibe-in-the-dark/internal/db"
	"vibe-in-the-dark/internal/fanout"
)

// EventLog is a fanout.Publisher that records every room event in game_events.
// Full snapshots are skipped; the games row already holds them.
type EventLog struct {
	db *gorm.DB
}

func NewEventLog(conn *gorm.DB) *EventLog {
	return &EventLog{db: conn}
}

func (l *EventLog) Publish(ctx context.Context, room string, e fanout.Event) error {
	if e.Type() == fanout.TypeState {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	event := db.GameEvent{
		GameCode:  room,
		Type:      string(e.Type()),
		Payload:   datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	}
	return l.db.WithContext(ctx).Create(&event).Error
}

// History returns a game's recorded events, oldest first.
func (l *EventLog) History(ctx context.Context, code string) ([]db.GameEvent, error) {
	var events []db.GameEvent
	err := l.db.WithContext(ctx).Where("game_code = ?", code).Order("id").Find(&events).Error
	return events, err
}
