package service

import (
	"Holonet/internal/api/config"
	"Holonet/internal/api/dto"
	"Holonet/internal/model"
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/mongo"
	"Holonet/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// MessageService 消息服务接口定义
type MessageService interface {
	SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	EditMessage(ctx context.Context, actorID uint64, messageID, content string) (*dto.MessageDTO, error)
	DeleteMessage(ctx context.Context, actorID uint64, messageID string) error
	ReportMessage(ctx context.Context, reporterID uint64, messageID, reason string) (*dto.ReportDTO, error)
	ListReports(ctx context.Context, messageID string, page, pageSize int) ([]*dto.ReportDTO, error)
	GetRoomHistory(ctx context.Context, userID, roomID uint64, before *time.Time, pageSize int) ([]*dto.MessageDTO, error)
	GetConversationHistory(ctx context.Context, userID, convID uint64, before *time.Time, pageSize int) ([]*dto.MessageDTO, error)
}

type messageServiceImpl struct {
	roomRepo    repository.RoomRepo
	directRepo  repository.DirectConversationRepo
	userRepo    repository.UserRepo
	messageRepo mongo.MessageRepo
	reportRepo  mongo.ReportRepo
	presence    PresenceService
	push        PushService
	dispatcher  *Dispatcher

	editWindow time.Duration
	pageSize   int
	pageMax    int
}

func NewMessageService(
	roomRepo repository.RoomRepo,
	directRepo repository.DirectConversationRepo,
	userRepo repository.UserRepo,
	messageRepo mongo.MessageRepo,
	reportRepo mongo.ReportRepo,
	presence PresenceService,
	push PushService,
	dispatcher *Dispatcher,
	chatCfg config.ChatConfig,
) MessageService {
	editWindow := time.Duration(chatCfg.EditWindowMinutes) * time.Minute
	if editWindow <= 0 {
		editWindow = 30 * time.Minute
	}
	pageSize := chatCfg.HistoryPageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	pageMax := chatCfg.HistoryPageMax
	if pageMax <= 0 {
		pageMax = 100
	}

	return &messageServiceImpl{
		roomRepo:    roomRepo,
		directRepo:  directRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		reportRepo:  reportRepo,
		presence:    presence,
		push:        push,
		dispatcher:  dispatcher,
		editWindow:  editWindow,
		pageSize:    pageSize,
		pageMax:     pageMax,
	}
}

// SendMessage 发送消息
// room_id 指向群聊，conversation_id 指向单聊，两者都给视为目标不明确。
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrMessageEmpty
	}
	if req.RoomID != 0 && req.ConversationID != 0 {
		return nil, ErrConversationTarget
	}

	msgType := req.MsgType
	if msgType == 0 {
		msgType = consts.MessageTypeText
	}

	msg := &mongo.Message{
		SenderID: senderID,
		MsgType:  msgType,
		Content:  req.Content,
		SentAt:   time.Now(),
	}

	var peerID uint64

	switch {
	case req.RoomID != 0:
		isMember, err := s.roomRepo.IsMember(ctx, req.RoomID, senderID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotInRoom
		}
		msg.RoomID = req.RoomID

	case req.ConversationID != 0:
		conv, err := s.directRepo.GetByID(ctx, req.ConversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrConversationMissing
			}
			return nil, err
		}
		if !conv.Has(senderID) {
			return nil, UnauthorizedError
		}
		msg.ConversationID = conv.ID
		peerID = conv.PeerOf(senderID)

	case req.TargetUserID != 0:
		convID, err := s.getOrCreateDirect(ctx, senderID, req.TargetUserID)
		if err != nil {
			return nil, err
		}
		msg.ConversationID = convID
		peerID = req.TargetUserID

	default:
		return nil, ErrConversationTarget
	}

	// 先落库再广播：消息没有持久化成功就不能对外宣告存在
	if err := s.messageRepo.SaveMessage(ctx, msg); err != nil {
		log.ErrorContext(ctx, "save message failed", "sender_id", senderID, "err", err)
		return nil, UnExpectedError
	}

	res := s.toMessageDTO(msg)

	if msg.RoomID != 0 {
		s.dispatcher.MessageToRoom(msg.RoomID, dto.EventMessageNew, res)
	} else {
		s.dispatcher.MessageToUser(senderID, dto.EventMessageNew, res)
		s.dispatcher.MessageToUser(peerID, dto.EventMessageNew, res)
		s.notifyIfOffline(peerID, res)
	}

	return res, nil
}

// EditMessage 修改消息
// 仅发送者本人可改，已删除不可改，超出时间窗口不可改。
func (s *messageServiceImpl) EditMessage(ctx context.Context, actorID uint64, messageID, content string) (*dto.MessageDTO, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageEmpty
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if msg.SenderID != actorID {
		return nil, ErrNotMessageSender
	}
	if msg.Deleted {
		return nil, ErrMessageDeleted
	}
	if time.Since(msg.SentAt) > s.editWindow {
		return nil, ErrEditWindowElapsed
	}

	updated, err := s.messageRepo.UpdateBody(ctx, messageID, actorID, content)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			// 守护条件落空：读后被并发删除
			return nil, ErrMessageDeleted
		}
		return nil, err
	}

	res := s.toMessageDTO(updated)
	s.publishMessageEvent(ctx, updated, dto.EventMessageEdited, res)
	return res, nil
}

// DeleteMessage 删除消息（软删除，清空内容），重复删除视为成功
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, actorID uint64, messageID string) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.SenderID != actorID {
		return ErrNotMessageSender
	}
	if msg.Deleted {
		return nil
	}

	deleted, err := s.messageRepo.SoftDelete(ctx, messageID, actorID)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			// 并发删除已经完成
			return nil
		}
		return err
	}

	s.publishMessageEvent(ctx, deleted, dto.EventMessageDeleted, s.toMessageDTO(deleted))
	return nil
}

// ReportMessage 举报消息，仅记录信号，消息状态不变
func (s *messageServiceImpl) ReportMessage(ctx context.Context, reporterID uint64, messageID, reason string) (*dto.ReportDTO, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "unspecified"
	}

	if _, err := s.messageRepo.GetByID(ctx, messageID); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	report := &mongo.Report{
		MessageID:  messageID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	return &dto.ReportDTO{
		ID:         report.ID,
		MessageID:  report.MessageID,
		ReporterID: report.ReporterID,
		Reason:     report.Reason,
		CreatedAt:  report.CreatedAt,
	}, nil
}

// ListReports 分页获取某条消息的举报记录
func (s *messageServiceImpl) ListReports(ctx context.Context, messageID string, page, pageSize int) ([]*dto.ReportDTO, error) {
	if page <= 0 {
		page = 1
	}
	limit := s.clampPageSize(pageSize)

	reports, err := s.reportRepo.GetReportsByMessage(ctx, messageID, int64(limit), int64((page-1)*limit))
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ReportDTO, 0, len(reports))
	for _, r := range reports {
		res = append(res, &dto.ReportDTO{
			ID:         r.ID,
			MessageID:  r.MessageID,
			ReporterID: r.ReporterID,
			Reason:     r.Reason,
			CreatedAt:  r.CreatedAt,
		})
	}
	return res, nil
}

// GetRoomHistory 拉取群历史消息，按时间倒序分页
func (s *messageServiceImpl) GetRoomHistory(ctx context.Context, userID, roomID uint64, before *time.Time, pageSize int) ([]*dto.MessageDTO, error) {
	isMember, err := s.roomRepo.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotInRoom
	}

	models, err := s.messageRepo.GetRoomHistory(ctx, roomID, before, s.clampPageSize(pageSize))
	if err != nil {
		return nil, err
	}
	return s.toMessageDTOs(models), nil
}

// GetConversationHistory 拉取单聊历史消息
func (s *messageServiceImpl) GetConversationHistory(ctx context.Context, userID, convID uint64, before *time.Time, pageSize int) ([]*dto.MessageDTO, error) {
	conv, err := s.directRepo.GetByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationMissing
		}
		return nil, err
	}
	if !conv.Has(userID) {
		return nil, UnauthorizedError
	}

	models, err := s.messageRepo.GetConversationHistory(ctx, convID, before, s.clampPageSize(pageSize))
	if err != nil {
		return nil, err
	}
	return s.toMessageDTOs(models), nil
}

// getOrCreateDirect 按成员对复用单聊，不存在则建新会话并广播
func (s *messageServiceImpl) getOrCreateDirect(ctx context.Context, senderID, targetID uint64) (uint64, error) {
	if targetID == senderID {
		return 0, ErrTargetUserInvalid
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	conv, err := s.directRepo.GetByPair(ctx, senderID, targetID)
	if err == nil {
		return conv.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	lo, hi := model.NormalizePair(senderID, targetID)
	newConv := &model.DirectConversation{UserLo: lo, UserHi: hi}
	if err := s.directRepo.Create(ctx, newConv); err != nil {
		if conv, err2 := s.directRepo.GetByPair(ctx, senderID, targetID); err2 == nil {
			return conv.ID, nil
		}
		return 0, err
	}

	event := &dto.ConversationEventDTO{
		Type: dto.EventConversationCreated,
		Conversation: &dto.ConversationDTO{
			Kind:           "direct",
			ConversationID: newConv.ID,
			PeerID:         targetID,
		},
	}
	s.dispatcher.ConversationCreated(senderID, event)
	s.dispatcher.ConversationCreated(targetID, event)
	return newConv.ID, nil
}

// publishMessageEvent 按消息归属选择群频道或双方个人频道
func (s *messageServiceImpl) publishMessageEvent(ctx context.Context, msg *mongo.Message, eventType string, res *dto.MessageDTO) {
	if msg.RoomID != 0 {
		s.dispatcher.MessageToRoom(msg.RoomID, eventType, res)
		return
	}

	s.dispatcher.MessageToUser(msg.SenderID, eventType, res)
	if conv, err := s.directRepo.GetByID(ctx, msg.ConversationID); err == nil {
		s.dispatcher.MessageToUser(conv.PeerOf(msg.SenderID), eventType, res)
	}
}

// notifyIfOffline 接收方不在线时走推送网关
func (s *messageServiceImpl) notifyIfOffline(userID uint64, msg *dto.MessageDTO) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		online, err := s.presence.IsOnline(ctx, userID)
		if err != nil {
			log.Warn("presence check failed", "user_id", userID, "err", err)
			return
		}
		if !online {
			s.push.NotifyOffline(ctx, userID, msg)
		}
	}()
}

func (s *messageServiceImpl) clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return s.pageSize
	}
	if pageSize > s.pageMax {
		return s.pageMax
	}
	return pageSize
}

func (s *messageServiceImpl) toMessageDTO(m *mongo.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID: m.ID, RoomID: m.RoomID, ConversationID: m.ConversationID,
		SenderID: m.SenderID, MsgType: m.MsgType, Content: m.Content,
		Edited: m.Edited, Deleted: m.Deleted,
		SentAt: m.SentAt, UpdatedAt: m.UpdatedAt,
	}
}

func (s *messageServiceImpl) toMessageDTOs(models []*mongo.Message) []*dto.MessageDTO {
	res := make([]*dto.MessageDTO, 0, len(models))
	for _, m := range models {
		res = append(res, s.toMessageDTO(m))
	}
	return res
}
