package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/model"
	"Holonet/internal/pkg/mongo"
	"Holonet/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ReactionService 消息表态服务接口定义
type ReactionService interface {
	AddReaction(ctx context.Context, actorID uint64, messageID, emoji string) error
	RemoveReaction(ctx context.Context, actorID uint64, messageID, emoji string) error
	ListReactions(ctx context.Context, userID uint64, messageID string) ([]*dto.ReactionDTO, error)
}

type reactionServiceImpl struct {
	reactionRepo repository.ReactionRepo
	roomRepo     repository.RoomRepo
	directRepo   repository.DirectConversationRepo
	messageRepo  mongo.MessageRepo
	dispatcher   *Dispatcher
}

func NewReactionService(
	reactionRepo repository.ReactionRepo,
	roomRepo repository.RoomRepo,
	directRepo repository.DirectConversationRepo,
	messageRepo mongo.MessageRepo,
	dispatcher *Dispatcher,
) ReactionService {
	return &reactionServiceImpl{
		reactionRepo: reactionRepo,
		roomRepo:     roomRepo,
		directRepo:   directRepo,
		messageRepo:  messageRepo,
		dispatcher:   dispatcher,
	}
}

// AddReaction 给消息添加表态，同一用户同一符号重复表态不报错也不重复广播
func (s *reactionServiceImpl) AddReaction(ctx context.Context, actorID uint64, messageID, emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return ErrEmojiEmpty
	}

	msg, err := s.requireVisibleMessage(ctx, actorID, messageID)
	if err != nil {
		return err
	}

	created, err := s.reactionRepo.CreateReaction(ctx, &model.MessageReaction{
		MessageID: messageID,
		UserID:    actorID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	s.publishReactionEvent(msg, dto.EventReactionAdded, actorID, emoji)
	return nil
}

// RemoveReaction 移除表态，不存在的表态视为成功
// 只要消息存在就广播移除事件，重试场景下客户端以最终状态为准。
func (s *reactionServiceImpl) RemoveReaction(ctx context.Context, actorID uint64, messageID, emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return ErrEmojiEmpty
	}

	msg, err := s.requireVisibleMessage(ctx, actorID, messageID)
	if err != nil {
		return err
	}

	if _, err := s.reactionRepo.DeleteReaction(ctx, messageID, actorID, emoji); err != nil {
		return err
	}

	s.publishReactionEvent(msg, dto.EventReactionRemoved, actorID, emoji)
	return nil
}

// ListReactions 获取消息的全部表态
func (s *reactionServiceImpl) ListReactions(ctx context.Context, userID uint64, messageID string) ([]*dto.ReactionDTO, error) {
	if _, err := s.requireVisibleMessage(ctx, userID, messageID); err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ReactionDTO, 0, len(reactions))
	for _, r := range reactions {
		res = append(res, &dto.ReactionDTO{
			MessageID: r.MessageID,
			UserID:    r.UserID,
			Emoji:     r.Emoji,
			CreatedAt: r.CreatedAt,
		})
	}
	return res, nil
}

// requireVisibleMessage 校验消息存在且操作者在消息归属的群或单聊内
func (s *reactionServiceImpl) requireVisibleMessage(ctx context.Context, userID uint64, messageID string) (*mongo.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if msg.RoomID != 0 {
		isMember, err := s.roomRepo.IsMember(ctx, msg.RoomID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotInRoom
		}
		return msg, nil
	}

	conv, err := s.directRepo.GetByID(ctx, msg.ConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationMissing
		}
		return nil, err
	}
	if !conv.Has(userID) {
		return nil, UnauthorizedError
	}
	return msg, nil
}

func (s *reactionServiceImpl) publishReactionEvent(msg *mongo.Message, eventType string, userID uint64, emoji string) {
	if msg.RoomID != 0 {
		s.dispatcher.ReactionEvent(msg.RoomID, eventType, msg.ID, userID, emoji)
		return
	}

	// 单聊消息的表态直接走双方个人频道
	event := &dto.ReactionEventDTO{
		Type:      eventType,
		MessageID: msg.ID,
		UserID:    userID,
		Emoji:     emoji,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if conv, err := s.directRepo.GetByID(ctx, msg.ConversationID); err == nil {
		s.dispatcher.publishToUsers(event, conv.UserLo, conv.UserHi)
	}
}
