package model

import "time"

// MessageReaction 表情回应
// (message_id, user_id, emoji) 三元组唯一，重复添加由唯一索引兜底。
type MessageReaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID string    `gorm:"type:varchar(32);uniqueIndex:idx_msg_user_emoji;index" json:"messageId"`
	UserID    uint64    `gorm:"uniqueIndex:idx_msg_user_emoji" json:"userId"`
	Emoji     string    `gorm:"type:varchar(32);uniqueIndex:idx_msg_user_emoji" json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

func (MessageReaction) TableName() string { return "message_reactions" }
