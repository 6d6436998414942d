package model

import "time"

// Room 群聊主表
type Room struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Image       string    `gorm:"type:varchar(255)" json:"image"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedBy   uint64    `gorm:"not null;index" json:"createdBy"` // 创建者 UID，建群后不可变
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Room) TableName() string { return "rooms" }

// RoomMember 群成员表
// Role 只存 MEMBER/ADMIN，CREATOR 由 Room.CreatedBy 推导。
type RoomMember struct {
	ID       uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID   uint64     `gorm:"uniqueIndex:idx_room_user" json:"roomId"`
	UserID   uint64     `gorm:"uniqueIndex:idx_room_user;index" json:"userId"`
	Role     int8       `gorm:"not null;default:1" json:"role"` // 1-成员, 2-管理员
	JoinedAt time.Time  `json:"joinedAt"`
	LastSeen *time.Time `json:"lastSeen"` // 已读进度，单调不回退

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"-"`
}

func (RoomMember) TableName() string { return "room_members" }
