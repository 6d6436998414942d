package dto

import "time"

// ReactionReq 表态请求体
type ReactionReq struct {
	Emoji string `json:"emoji" binding:"required"`
}

// ReactionDTO 表态响应
type ReactionDTO struct {
	MessageID string    `json:"message_id"`
	UserID    uint64    `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// PinDTO 置顶响应
type PinDTO struct {
	RoomID    uint64    `json:"room_id"`
	MessageID string    `json:"message_id"`
	PinnedBy  uint64    `json:"pinned_by"`
	CreatedAt time.Time `json:"createdAt"`
	// Message 置顶列表时附带的消息明细
	Message *MessageDTO `json:"message,omitempty"`
}
