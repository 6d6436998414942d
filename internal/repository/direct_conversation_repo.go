package repository

import (
	"Holonet/internal/model"
	"context"

	"gorm.io/gorm"
)

type DirectConversationRepo interface {
	GetByID(ctx context.Context, id uint64) (*model.DirectConversation, error)
	GetByPair(ctx context.Context, a, b uint64) (*model.DirectConversation, error)
	Create(ctx context.Context, conv *model.DirectConversation) error
	ListByUser(ctx context.Context, userID uint64) ([]*model.DirectConversation, error)
}

type directConversationRepoImpl struct {
	db *gorm.DB
}

func NewDirectConversationRepo(db *gorm.DB) DirectConversationRepo {
	return &directConversationRepoImpl{db: db}
}

// GetByID 根据会话 ID 获取单聊会话
func (s *directConversationRepoImpl) GetByID(ctx context.Context, id uint64) (*model.DirectConversation, error) {
	var conv model.DirectConversation
	err := s.db.WithContext(ctx).First(&conv, id).Error
	return &conv, err
}

// GetByPair 根据成员对获取单聊会话，入参顺序无关
func (s *directConversationRepoImpl) GetByPair(ctx context.Context, a, b uint64) (*model.DirectConversation, error) {
	lo, hi := model.NormalizePair(a, b)
	var conv model.DirectConversation
	err := s.db.WithContext(ctx).
		Where("user_lo = ? AND user_hi = ?", lo, hi).
		First(&conv).Error
	return &conv, err
}

// Create 创建单聊会话，唯一索引兜底防止并发重复
func (s *directConversationRepoImpl) Create(ctx context.Context, conv *model.DirectConversation) error {
	return s.db.WithContext(ctx).Create(conv).Error
}

// ListByUser 获取用户参与的全部单聊会话
func (s *directConversationRepoImpl) ListByUser(ctx context.Context, userID uint64) ([]*model.DirectConversation, error) {
	var convs []*model.DirectConversation
	err := s.db.WithContext(ctx).
		Where("user_lo = ? OR user_hi = ?", userID, userID).
		Find(&convs).Error
	return convs, err
}
