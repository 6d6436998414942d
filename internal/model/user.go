package model

import (
	"time"
)

// User 用户档案（由上游身份服务经 Kafka 同步，本服务只读引用）
type User struct {
	ID        uint64  `gorm:"primaryKey"`
	Username  *string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	Nickname  *string `gorm:"type:varchar(50)"`
	AvatarURL *string `gorm:"type:varchar(255)"`
	IsOnline  bool    `gorm:"type:tinyint(1);default:0"`
	IsDelete  bool    `gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
