package dto

import "time"

// 推送事件类型
const (
	EventMessageNew     = "MESSAGE_NEW"
	EventMessageEdited  = "MESSAGE_EDITED"
	EventMessageDeleted = "MESSAGE_DELETED"

	EventReactionAdded   = "REACTION_ADDED"
	EventReactionRemoved = "REACTION_REMOVED"

	EventMessagePinned   = "MESSAGE_PINNED"
	EventMessageUnpinned = "MESSAGE_UNPINNED"

	EventReadReceipt = "READ_RECEIPT"
	EventTyping      = "TYPING"

	EventConversationCreated = "CONVERSATION_CREATED"
	EventRoomCreated         = "ROOM_CREATED"
	EventRoomUpdated         = "ROOM_UPDATED"
	EventRoomDeleted         = "ROOM_DELETED"
	EventMemberAdded         = "MEMBER_ADDED"
	EventMemberRemoved       = "MEMBER_REMOVED"
	EventRoleChanged         = "ROLE_CHANGED"
)

// MessageEventDTO 消息推送
type MessageEventDTO struct {
	Type    string      `json:"type"`
	Message *MessageDTO `json:"message"`
}

// ReactionEventDTO 表态推送
type ReactionEventDTO struct {
	Type      string `json:"type"`
	RoomID    uint64 `json:"room_id"`
	MessageID string `json:"message_id"`
	UserID    uint64 `json:"user_id"`
	Emoji     string `json:"emoji"`
}

// PinEventDTO 置顶变更推送
type PinEventDTO struct {
	Type      string `json:"type"`
	RoomID    uint64 `json:"room_id"`
	MessageID string `json:"message_id"`
	UserID    uint64 `json:"user_id"`
}

// ReadReceiptEventDTO 已读回执推送
type ReadReceiptEventDTO struct {
	Type     string    `json:"type"`
	RoomID   uint64    `json:"room_id"`
	UserID   uint64    `json:"user_id"`
	LastSeen time.Time `json:"lastSeen"`
}

// TypingEventDTO 输入状态推送
type TypingEventDTO struct {
	Type   string `json:"type"`
	RoomID uint64 `json:"room_id"`
	UserID uint64 `json:"user_id"`
	Typing bool   `json:"typing"`
}

// ConversationEventDTO 会话变更推送
type ConversationEventDTO struct {
	Type         string           `json:"type"`
	Conversation *ConversationDTO `json:"conversation,omitempty"`
	Room         *RoomDTO         `json:"room,omitempty"`
}

// RoomEventDTO 群变更推送
type RoomEventDTO struct {
	Type     string   `json:"type"`
	RoomID   uint64   `json:"room_id"`
	ActorID  uint64   `json:"actor_id"`
	UserIDs  []uint64 `json:"user_ids,omitempty"`
	Role     string   `json:"role,omitempty"`
	Room     *RoomDTO `json:"room,omitempty"`
}
