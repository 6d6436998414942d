package model

import "time"

// MessagePin 群内置顶消息
// MessageID 引用 MongoDB 消息的 ObjectID。
type MessagePin struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    uint64    `gorm:"uniqueIndex:idx_room_message;index" json:"roomId"`
	MessageID string    `gorm:"type:varchar(32);uniqueIndex:idx_room_message" json:"messageId"`
	PinnedBy  uint64    `gorm:"not null" json:"pinnedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func (MessagePin) TableName() string { return "message_pins" }
