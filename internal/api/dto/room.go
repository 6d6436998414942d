package dto

import "time"

// CreateConversationReq 新建会话请求体
// 成员含发起者共 2 人时走单聊去重，3 人及以上总是新建群聊
type CreateConversationReq struct {
	MemberIDs []uint64 `json:"member_ids" binding:"required,min=1"`
	Name      string   `json:"name"`
	Image     string   `json:"image"`
}

// UpdateRoomReq 修改群资料请求体
type UpdateRoomReq struct {
	Name        *string `json:"name"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
}

// AddMembersReq 添加成员请求体
type AddMembersReq struct {
	UserIDs []uint64 `json:"user_ids" binding:"required,min=1"`
}

// MarkReadReq 标记已读请求体
type MarkReadReq struct {
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"` // RFC3339，message_id 为空时生效
}

// TypingReq 输入状态请求体
type TypingReq struct {
	Typing bool `json:"typing"`
}

// ConversationDTO 新建会话结果
type ConversationDTO struct {
	// Kind direct-单聊 room-群聊
	Kind           string      `json:"kind"`
	ConversationID uint64      `json:"conversation_id,omitempty"`
	PeerID         uint64      `json:"peer_id,omitempty"`
	Room           *RoomDTO    `json:"room,omitempty"`
	LastMessage    *MessageDTO `json:"last_message,omitempty"`
	// Existing 为 true 表示复用了已有单聊
	Existing bool `json:"existing"`
}

// RoomDTO 群聊详情响应
type RoomDTO struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	Image       string       `json:"image"`
	Description string       `json:"description"`
	CreatedBy   uint64       `json:"created_by"`
	CreatedAt   time.Time    `json:"createdAt"`
	Members     []*MemberDTO `json:"members,omitempty"`
}

// MemberDTO 群成员响应
type MemberDTO struct {
	UserID   uint64     `json:"user_id"`
	Nickname string     `json:"nickname,omitempty"`
	Avatar   string     `json:"avatar,omitempty"`
	Role     string     `json:"role"` // MEMBER / ADMIN / CREATOR
	JoinedAt time.Time  `json:"joinedAt"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// RoomSummaryDTO 会话列表项响应
type RoomSummaryDTO struct {
	RoomID        uint64     `json:"room_id"`
	Name          string     `json:"name"`
	Image         string     `json:"image"`
	LastMessage   *MessageDTO `json:"last_message,omitempty"`
	UnreadCount   int64      `json:"unreadCount"`
	MemberCount   int        `json:"memberCount"`
	JoinedAt      time.Time  `json:"joinedAt"`
	LastSeen      *time.Time `json:"lastSeen,omitempty"`
}

// DirectConversationDTO 单聊列表项响应
type DirectConversationDTO struct {
	ConversationID uint64      `json:"conversation_id"`
	PeerID         uint64      `json:"peer_id"`
	PeerNickname   string      `json:"peer_nickname,omitempty"`
	PeerAvatar     string      `json:"peer_avatar,omitempty"`
	LastMessage    *MessageDTO `json:"last_message,omitempty"`
}

// ReadReceiptDTO 已读进度响应
type ReadReceiptDTO struct {
	RoomID   uint64     `json:"room_id"`
	UserID   uint64     `json:"user_id"`
	LastSeen *time.Time `json:"lastSeen"`
}
