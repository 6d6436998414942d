package dto

import "time"

// SendMessageReq 发送消息请求体
// room_id 与 conversation_id 二选一；conversation_id 为 0 且 target_user_id 非 0 时自动建会话
type SendMessageReq struct {
	RoomID         uint64 `json:"room_id"`
	ConversationID uint64 `json:"conversation_id"`
	TargetUserID   uint64 `json:"target_user_id"`
	MsgType        int    `json:"msg_type"` // 1-文本, 2-图片, 3-语音
	Content        string `json:"content" binding:"required"`
}

// EditMessageReq 修改消息请求体
type EditMessageReq struct {
	Content string `json:"content" binding:"required"`
}

// ReportMessageReq 举报消息请求体
type ReportMessageReq struct {
	Reason string `json:"reason" binding:"required"`
}

// HistoryReq 历史消息查询参数
type HistoryReq struct {
	Before   string `form:"before"` // RFC3339，取该时刻之前的消息
	PageSize int    `form:"page_size"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID             string     `json:"id"`
	RoomID         uint64     `json:"room_id,omitempty"`
	ConversationID uint64     `json:"conversation_id,omitempty"`
	SenderID       uint64     `json:"sender_id"`
	MsgType        int        `json:"msg_type"`
	Content        string     `json:"content"`
	Edited         bool       `json:"edited"`
	Deleted        bool       `json:"deleted"`
	SentAt         time.Time  `json:"sentAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// ReportDTO 举报记录响应
type ReportDTO struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	ReporterID uint64    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}
