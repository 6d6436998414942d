package repository

import (
	"Holonet/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PinRepo interface {
	CreatePin(ctx context.Context, pin *model.MessagePin) error
	DeletePin(ctx context.Context, roomID uint64, messageID string) error
	ListPins(ctx context.Context, roomID uint64) ([]*model.MessagePin, error)
}

type pinRepoImpl struct {
	db *gorm.DB
}

func NewPinRepo(db *gorm.DB) PinRepo {
	return &pinRepoImpl{db: db}
}

// CreatePin 置顶消息，重复置顶不报错
func (s *pinRepoImpl) CreatePin(ctx context.Context, pin *model.MessagePin) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(pin).Error
}

// DeletePin 取消置顶，不存在时视为成功
func (s *pinRepoImpl) DeletePin(ctx context.Context, roomID uint64, messageID string) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND message_id = ?", roomID, messageID).
		Delete(&model.MessagePin{}).Error
}

// ListPins 获取群内全部置顶，按置顶时间顺序
func (s *pinRepoImpl) ListPins(ctx context.Context, roomID uint64) ([]*model.MessagePin, error) {
	var pins []*model.MessagePin
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&pins).Error
	return pins, err
}
