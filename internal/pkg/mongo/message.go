package mongo

import (
	"time"
)

// Message MongoDB 消息明细模型
// RoomID 与 ConversationID 二选一：群消息落 room_id，1对1消息落 conversation_id。
type Message struct {
	ID             string     `bson:"_id,omitempty" json:"id"`                         // MongoDB 自动生成的 ObjectID
	RoomID         uint64     `bson:"room_id,omitempty" json:"roomId,omitempty"`       // 关联 MySQL 的群聊 ID
	ConversationID uint64     `bson:"conversation_id,omitempty" json:"conversationId,omitempty"` // 关联 MySQL 的 1对1 会话 ID
	SenderID       uint64     `bson:"sender_id" json:"senderId"`                       // 发送者 UID
	MsgType        int        `bson:"msg_type" json:"msgType"`                         // 1-文本, 2-图片, 3-音频, 9-系统
	Content        string     `bson:"content" json:"content"`                          // 文本内容，软删除后清空
	Edited         bool       `bson:"edited" json:"edited"`                            // 是否被修改过
	Deleted        bool       `bson:"deleted" json:"deleted"`                          // 软删除标记，终态
	SentAt         time.Time  `bson:"sent_at" json:"sentAt"`                           // 发送时间，客户端排序依据
	UpdatedAt      *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"` // 最后修改时间
	DeletedAt      *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"` // 删除时间
}

// Report 消息举报记录
type Report struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	MessageID  string    `bson:"message_id" json:"messageId"`
	ReporterID uint64    `bson:"reporter_id" json:"reporterId"`
	Reason     string    `bson:"reason" json:"reason"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
