package repository

import (
	"Holonet/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]*model.User, error)
	Upsert(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uint64) error
	SetOnline(ctx context.Context, id uint64, online bool) error
	ListOnlineIDs(ctx context.Context) ([]uint64, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

// GetByID 根据用户 ID 获取用户
func (s *userRepoImpl) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_delete = ?", id, false).
		First(&user).Error
	return &user, err
}

// GetByIDs 批量获取用户
func (s *userRepoImpl) GetByIDs(ctx context.Context, ids []uint64) ([]*model.User, error) {
	var users []*model.User
	err := s.db.WithContext(ctx).
		Where("id IN ? AND is_delete = ?", ids, false).
		Find(&users).Error
	return users, err
}

// Upsert 写入用户镜像，主键冲突时更新资料字段（Canal 同步用）
func (s *userRepoImpl) Upsert(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "nickname", "avatar_url", "is_delete"}),
		}).
		Create(user).Error
}

// Delete 标记删除用户镜像
func (s *userRepoImpl) Delete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("is_delete", true).Error
}

// SetOnline 更新用户在线标记
func (s *userRepoImpl) SetOnline(ctx context.Context, id uint64, online bool) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("is_online", online).Error
}

// ListOnlineIDs 获取数据库视角下的在线用户（离线扫描任务用）
func (s *userRepoImpl) ListOnlineIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("is_online = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}
