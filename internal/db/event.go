package db

import (
	"time"

	"gorm.io/datatypes"
)

// RoomEvent is one lifecycle record of a room. Rooms are not persisted, so the
// code is the only link between records of the same room.
type RoomEvent struct {
	ID        uint           `gorm:"primaryKey"`
	RoomCode  string         `gorm:"size:4;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (RoomEvent) TableName() string {
	return "room_events"
}
