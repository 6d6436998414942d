package repository

import (
	"Holonet/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepo interface {
	CreateReaction(ctx context.Context, reaction *model.MessageReaction) (bool, error)
	DeleteReaction(ctx context.Context, messageID string, userID uint64, emoji string) (bool, error)
	ListByMessage(ctx context.Context, messageID string) ([]*model.MessageReaction, error)
}

type reactionRepoImpl struct {
	db *gorm.DB
}

func NewReactionRepo(db *gorm.DB) ReactionRepo {
	return &reactionRepoImpl{db: db}
}

// CreateReaction 添加表态，返回是否新增（重复表态返回 false）
func (s *reactionRepoImpl) CreateReaction(ctx context.Context, reaction *model.MessageReaction) (bool, error) {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction)
	return res.RowsAffected > 0, res.Error
}

// DeleteReaction 移除表态，返回是否确实删除
func (s *reactionRepoImpl) DeleteReaction(ctx context.Context, messageID string, userID uint64, emoji string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&model.MessageReaction{})
	return res.RowsAffected > 0, res.Error
}

// ListByMessage 获取消息的全部表态
func (s *reactionRepoImpl) ListByMessage(ctx context.Context, messageID string) ([]*model.MessageReaction, error) {
	var reactions []*model.MessageReaction
	err := s.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	return reactions, err
}
