package repository

import (
	"Holonet/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepo interface {
	CreateRoom(ctx context.Context, room *model.Room, members []*model.RoomMember) error
	GetRoom(ctx context.Context, roomID uint64) (*model.Room, error)
	UpdateRoom(ctx context.Context, room *model.Room) error
	DeleteRoom(ctx context.Context, roomID uint64) error

	GetMember(ctx context.Context, roomID, userID uint64) (*model.RoomMember, error)
	IsMember(ctx context.Context, roomID, userID uint64) (bool, error)
	ListMembers(ctx context.Context, roomID uint64) ([]*model.RoomMember, error)
	AddMembers(ctx context.Context, members []*model.RoomMember) ([]uint64, error)
	RemoveMember(ctx context.Context, roomID, userID uint64) error
	UpdateRole(ctx context.Context, roomID, userID uint64, role int8) error
	AdvanceLastSeen(ctx context.Context, roomID, userID uint64, cutoff time.Time) (bool, error)

	ListUserMemberships(ctx context.Context, userID uint64) ([]*model.RoomMember, error)
}

type roomRepoImpl struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepo {
	return &roomRepoImpl{db: db}
}

// CreateRoom 开启事务创建群聊及初始成员
func (s *roomRepoImpl) CreateRoom(ctx context.Context, room *model.Room, members []*model.RoomMember) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		for _, m := range members {
			m.RoomID = room.ID
			m.JoinedAt = time.Now()
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRoom 根据群 ID 获取群聊
func (s *roomRepoImpl) GetRoom(ctx context.Context, roomID uint64) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).First(&room, roomID).Error
	return &room, err
}

// UpdateRoom 保存群元信息
func (s *roomRepoImpl) UpdateRoom(ctx context.Context, room *model.Room) error {
	return s.db.WithContext(ctx).Save(room).Error
}

// DeleteRoom 解散群聊：事务内清理成员、置顶与群记录
func (s *roomRepoImpl) DeleteRoom(ctx context.Context, roomID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&model.RoomMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&model.MessagePin{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Room{}, roomID).Error
	})
}

// GetMember 获取成员记录
func (s *roomRepoImpl) GetMember(ctx context.Context, roomID, userID uint64) (*model.RoomMember, error) {
	var member model.RoomMember
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&member).Error
	return &member, err
}

// IsMember 检查用户是否是群成员
func (s *roomRepoImpl) IsMember(ctx context.Context, roomID, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListMembers 获取群全部成员
func (s *roomRepoImpl) ListMembers(ctx context.Context, roomID uint64) ([]*model.RoomMember, error) {
	var members []*model.RoomMember
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// AddMembers 事务内批量添加成员，已在群内的由唯一索引吞掉，返回实际新增的用户
func (s *roomRepoImpl) AddMembers(ctx context.Context, members []*model.RoomMember) ([]uint64, error) {
	added := make([]uint64, 0, len(members))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range members {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(m)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				added = append(added, m.UserID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveMember 移除成员
func (s *roomRepoImpl) RemoveMember(ctx context.Context, roomID, userID uint64) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.RoomMember{}).Error
}

// UpdateRole 调整成员角色
func (s *roomRepoImpl) UpdateRole(ctx context.Context, roomID, userID uint64, role int8) error {
	return s.db.WithContext(ctx).Model(&model.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("role", role).Error
}

// AdvanceLastSeen 单调推进已读进度
// WHERE 条件内完成比较交换：并发写入下旧的 cutoff 不会覆盖新的。
func (s *roomRepoImpl) AdvanceLastSeen(ctx context.Context, roomID, userID uint64, cutoff time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.RoomMember{}).
		Where("room_id = ? AND user_id = ? AND (last_seen IS NULL OR last_seen < ?)", roomID, userID, cutoff).
		Update("last_seen", cutoff)
	return res.RowsAffected > 0, res.Error
}

// ListUserMemberships 获取用户全部群成员关系（含群信息，会话列表用）
func (s *roomRepoImpl) ListUserMemberships(ctx context.Context, userID uint64) ([]*model.RoomMember, error) {
	var members []*model.RoomMember
	err := s.db.WithContext(ctx).
		Preload("Room").
		Where("user_id = ?", userID).
		Find(&members).Error
	return members, err
}
