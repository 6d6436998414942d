package model

import "time"

// DirectConversation 1对1会话表
// 以无序用户对标识：UserLo < UserHi，唯一索引保证同一对用户只存在一条记录。
type DirectConversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserLo    uint64    `gorm:"not null;uniqueIndex:idx_user_pair;index" json:"userLo"`
	UserHi    uint64    `gorm:"not null;uniqueIndex:idx_user_pair;index" json:"userHi"`
	CreatedAt time.Time `json:"createdAt"`
}

func (DirectConversation) TableName() string { return "direct_conversations" }

// PeerOf 返回会话中另一方的 UID
func (c *DirectConversation) PeerOf(userID uint64) uint64 {
	if c.UserLo == userID {
		return c.UserHi
	}
	return c.UserLo
}

// Has 判断用户是否属于该会话
func (c *DirectConversation) Has(userID uint64) bool {
	return c.UserLo == userID || c.UserHi == userID
}

// NormalizePair 归一化无序用户对
func NormalizePair(a, b uint64) (lo, hi uint64) {
	if a < b {
		return a, b
	}
	return b, a
}
