package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/model"
	"Holonet/internal/pkg/mongo"
	"Holonet/internal/repository"
	"context"
	"errors"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// PinService 消息置顶服务接口定义，置顶只存在于群聊
type PinService interface {
	PinMessage(ctx context.Context, actorID, roomID uint64, messageID string) error
	UnpinMessage(ctx context.Context, actorID, roomID uint64, messageID string) error
	ListPins(ctx context.Context, userID, roomID uint64) ([]*dto.PinDTO, error)
}

type pinServiceImpl struct {
	pinRepo     repository.PinRepo
	roomRepo    repository.RoomRepo
	messageRepo mongo.MessageRepo
	dispatcher  *Dispatcher
}

func NewPinService(
	pinRepo repository.PinRepo,
	roomRepo repository.RoomRepo,
	messageRepo mongo.MessageRepo,
	dispatcher *Dispatcher,
) PinService {
	return &pinServiceImpl{
		pinRepo:     pinRepo,
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		dispatcher:  dispatcher,
	}
}

// PinMessage 置顶消息，消息必须存在且属于该群，重复置顶不报错
func (s *pinServiceImpl) PinMessage(ctx context.Context, actorID, roomID uint64, messageID string) error {
	if err := s.requireMember(ctx, roomID, actorID); err != nil {
		return err
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.RoomID != roomID {
		return ErrMessageNotFound
	}

	if err := s.pinRepo.CreatePin(ctx, &model.MessagePin{
		RoomID:    roomID,
		MessageID: messageID,
		PinnedBy:  actorID,
		CreatedAt: time.Now(),
	}); err != nil {
		return err
	}

	s.dispatcher.PinEvent(roomID, dto.EventMessagePinned, messageID, actorID)
	return nil
}

// UnpinMessage 取消置顶，未置顶的消息视为成功
func (s *pinServiceImpl) UnpinMessage(ctx context.Context, actorID, roomID uint64, messageID string) error {
	if err := s.requireMember(ctx, roomID, actorID); err != nil {
		return err
	}

	if err := s.pinRepo.DeletePin(ctx, roomID, messageID); err != nil {
		return err
	}

	s.dispatcher.PinEvent(roomID, dto.EventMessageUnpinned, messageID, actorID)
	return nil
}

// ListPins 获取群置顶列表，附带消息明细
func (s *pinServiceImpl) ListPins(ctx context.Context, userID, roomID uint64) ([]*dto.PinDTO, error) {
	if err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	pins, err := s.pinRepo.ListPins(ctx, roomID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(pins))
	for _, p := range pins {
		ids = append(ids, p.MessageID)
	}
	messages, err := s.messageRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*mongo.Message, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}

	res := make([]*dto.PinDTO, 0, len(pins))
	for _, p := range pins {
		item := &dto.PinDTO{
			RoomID:    p.RoomID,
			MessageID: p.MessageID,
			PinnedBy:  p.PinnedBy,
			CreatedAt: p.CreatedAt,
		}
		if m, ok := byID[p.MessageID]; ok {
			item.Message = &dto.MessageDTO{
				ID: m.ID, RoomID: m.RoomID, SenderID: m.SenderID,
				MsgType: m.MsgType, Content: m.Content,
				Edited: m.Edited, Deleted: m.Deleted,
				SentAt: m.SentAt, UpdatedAt: m.UpdatedAt,
			}
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *pinServiceImpl) requireMember(ctx context.Context, roomID, userID uint64) error {
	if _, err := s.roomRepo.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	isMember, err := s.roomRepo.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotInRoom
	}
	return nil
}
