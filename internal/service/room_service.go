package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/model"
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/mongo"
	"Holonet/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// RoomService 会话与群聊服务接口定义
type RoomService interface {
	CreateConversation(ctx context.Context, creatorID uint64, req *dto.CreateConversationReq) (*dto.ConversationDTO, error)
	GetRoom(ctx context.Context, userID, roomID uint64) (*dto.RoomDTO, error)
	UpdateRoom(ctx context.Context, actorID, roomID uint64, req *dto.UpdateRoomReq) (*dto.RoomDTO, error)
	DeleteRoom(ctx context.Context, actorID, roomID uint64) error

	AddMembers(ctx context.Context, actorID, roomID uint64, userIDs []uint64) error
	RemoveMember(ctx context.Context, actorID, roomID, targetID uint64) error
	LeaveRoom(ctx context.Context, userID, roomID uint64) error
	AddAdmin(ctx context.Context, actorID, roomID, targetID uint64) error
	RemoveAdmin(ctx context.Context, actorID, roomID, targetID uint64) error

	MarkRead(ctx context.Context, userID, roomID uint64, req *dto.MarkReadReq) (*dto.ReadReceiptDTO, error)
	ListReadReceipts(ctx context.Context, userID, roomID uint64) ([]*dto.ReadReceiptDTO, error)
	Typing(ctx context.Context, userID, roomID uint64, typing bool) error

	MyRooms(ctx context.Context, userID uint64) ([]*dto.RoomSummaryDTO, error)
	ListDirectConversations(ctx context.Context, userID uint64) ([]*dto.DirectConversationDTO, error)
}

type roomServiceImpl struct {
	roomRepo    repository.RoomRepo
	directRepo  repository.DirectConversationRepo
	userRepo    repository.UserRepo
	messageRepo mongo.MessageRepo
	dispatcher  *Dispatcher
}

func NewRoomService(
	roomRepo repository.RoomRepo,
	directRepo repository.DirectConversationRepo,
	userRepo repository.UserRepo,
	messageRepo mongo.MessageRepo,
	dispatcher *Dispatcher,
) RoomService {
	return &roomServiceImpl{
		roomRepo:    roomRepo,
		directRepo:  directRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		dispatcher:  dispatcher,
	}
}

// CreateConversation 新建会话
// 成员去重后共 2 人走单聊复用，3 人及以上总是新建群聊。
func (s *roomServiceImpl) CreateConversation(ctx context.Context, creatorID uint64, req *dto.CreateConversationReq) (*dto.ConversationDTO, error) {
	// 去重并剔除发起者自身
	seen := map[uint64]struct{}{creatorID: {}}
	others := make([]uint64, 0, len(req.MemberIDs))
	for _, id := range req.MemberIDs {
		if id == 0 {
			return nil, ErrTargetUserInvalid
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		others = append(others, id)
	}
	if len(others) == 0 {
		return nil, ErrTargetUserInvalid
	}

	users, err := s.userRepo.GetByIDs(ctx, others)
	if err != nil {
		return nil, err
	}
	if len(users) != len(others) {
		return nil, ErrUserNotFound
	}

	if len(others) == 1 {
		return s.getOrCreateDirect(ctx, creatorID, others[0])
	}
	return s.createRoom(ctx, creatorID, others, req)
}

// getOrCreateDirect 单聊去重：同一对用户只存在一个会话，入参顺序无关
func (s *roomServiceImpl) getOrCreateDirect(ctx context.Context, userID, peerID uint64) (*dto.ConversationDTO, error) {
	conv, err := s.directRepo.GetByPair(ctx, userID, peerID)
	if err == nil {
		return s.toDirectConversationDTO(ctx, conv.ID, peerID, true), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lo, hi := model.NormalizePair(userID, peerID)
	newConv := &model.DirectConversation{UserLo: lo, UserHi: hi}
	if err := s.directRepo.Create(ctx, newConv); err != nil {
		// 并发下撞唯一索引，重查即可
		if conv, err2 := s.directRepo.GetByPair(ctx, userID, peerID); err2 == nil {
			return s.toDirectConversationDTO(ctx, conv.ID, peerID, true), nil
		}
		return nil, err
	}

	s.saveSystemMessage(&mongo.Message{
		ConversationID: newConv.ID,
		SenderID:       userID,
		MsgType:        consts.MessageTypeSystem,
		Content:        consts.SystemMessageDirectCreated,
		SentAt:         time.Now(),
	})

	res := s.toDirectConversationDTO(ctx, newConv.ID, peerID, false)
	event := &dto.ConversationEventDTO{Type: dto.EventConversationCreated, Conversation: res}
	s.dispatcher.ConversationCreated(userID, event)
	s.dispatcher.ConversationCreated(peerID, event)
	return res, nil
}

// createRoom 新建群聊，发起者入群即管理员
func (s *roomServiceImpl) createRoom(ctx context.Context, creatorID uint64, others []uint64, req *dto.CreateConversationReq) (*dto.ConversationDTO, error) {
	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Room_%s", uuid.New().String()[:8])
	}
	image := req.Image
	if image == "" {
		image = consts.DefaultRoomAvatarURL
	}

	room := &model.Room{
		Name:      name,
		Image:     image,
		CreatedBy: creatorID,
	}
	members := make([]*model.RoomMember, 0, len(others)+1)
	members = append(members, &model.RoomMember{UserID: creatorID, Role: consts.RoleAdmin})
	for _, id := range others {
		members = append(members, &model.RoomMember{UserID: id, Role: consts.RoleMember})
	}

	if err := s.roomRepo.CreateRoom(ctx, room, members); err != nil {
		return nil, err
	}

	s.saveSystemMessage(&mongo.Message{
		RoomID:   room.ID,
		SenderID: creatorID,
		MsgType:  consts.MessageTypeSystem,
		Content:  consts.SystemMessageRoomCreated,
		SentAt:   time.Now(),
	})

	roomDTO := s.toRoomDTO(room, members, nil)
	s.dispatcher.RoomCreated(roomDTO)
	event := &dto.ConversationEventDTO{Type: dto.EventConversationCreated, Room: roomDTO}
	for _, m := range members {
		s.dispatcher.ConversationCreated(m.UserID, event)
	}

	res := &dto.ConversationDTO{Kind: "room", Room: roomDTO}
	if last, err := s.messageRepo.LatestRoomMessage(ctx, room.ID); err == nil {
		res.LastMessage = s.toMessageDTO(last)
	}
	return res, nil
}

// toDirectConversationDTO 组装单聊会话视图，附带最近一条消息
func (s *roomServiceImpl) toDirectConversationDTO(ctx context.Context, convID, peerID uint64, existing bool) *dto.ConversationDTO {
	res := &dto.ConversationDTO{
		Kind:           "direct",
		ConversationID: convID,
		PeerID:         peerID,
		Existing:       existing,
	}
	if last, err := s.messageRepo.LatestConversationMessage(ctx, convID); err == nil {
		res.LastMessage = s.toMessageDTO(last)
	}
	return res
}

// GetRoom 获取群详情（含成员），仅限成员
func (s *roomServiceImpl) GetRoom(ctx context.Context, userID, roomID uint64) (*dto.RoomDTO, error) {
	room, _, err := s.requireMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.roomRepo.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	return s.toRoomDTO(room, members, userMap), nil
}

// UpdateRoom 修改群资料，管理员或群主可操作
func (s *roomServiceImpl) UpdateRoom(ctx context.Context, actorID, roomID uint64, req *dto.UpdateRoomReq) (*dto.RoomDTO, error) {
	room, actor, err := s.requireMember(ctx, roomID, actorID)
	if err != nil {
		return nil, err
	}
	if !s.isAdminOrCreator(room, actor) {
		return nil, UnauthorizedError
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrRoomNameEmpty
		}
		room.Name = *req.Name
	}
	if req.Image != nil {
		room.Image = *req.Image
	}
	if req.Description != nil {
		room.Description = *req.Description
	}

	if err := s.roomRepo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}

	roomDTO := s.toRoomDTO(room, nil, nil)
	s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
		Type:    dto.EventRoomUpdated,
		RoomID:  roomID,
		ActorID: actorID,
		Room:    roomDTO,
	})
	return roomDTO, nil
}

// DeleteRoom 解散群聊，仅群主可操作，成员与消息一并清理
func (s *roomServiceImpl) DeleteRoom(ctx context.Context, actorID, roomID uint64) error {
	room, _, err := s.requireMember(ctx, roomID, actorID)
	if err != nil {
		return err
	}
	if room.CreatedBy != actorID {
		return UnauthorizedError
	}

	if err := s.roomRepo.DeleteRoom(ctx, roomID); err != nil {
		return err
	}

	go func() {
		purgeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.messageRepo.PurgeRoomMessages(purgeCtx, roomID); err != nil {
			log.Error("purge room messages failed", "room_id", roomID, "err", err)
		}
	}()

	s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
		Type:    dto.EventRoomDeleted,
		RoomID:  roomID,
		ActorID: actorID,
	})
	return nil
}

// AddMembers 添加成员，任意成员可操作，已在群内的跳过
func (s *roomServiceImpl) AddMembers(ctx context.Context, actorID, roomID uint64, userIDs []uint64) error {
	if _, _, err := s.requireMember(ctx, roomID, actorID); err != nil {
		return err
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	if len(users) != len(userIDs) {
		return ErrUserNotFound
	}

	members := make([]*model.RoomMember, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, &model.RoomMember{
			RoomID:   roomID,
			UserID:   id,
			Role:     consts.RoleMember,
			JoinedAt: time.Now(),
		})
	}
	added, err := s.roomRepo.AddMembers(ctx, members)
	if err != nil {
		return err
	}

	if len(added) > 0 {
		s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
			Type:    dto.EventMemberAdded,
			RoomID:  roomID,
			ActorID: actorID,
			UserIDs: added,
		})
	}
	return nil
}

// RemoveMember 移除成员，管理员或群主可操作，群主不可被移除；移除自己等同于退群
func (s *roomServiceImpl) RemoveMember(ctx context.Context, actorID, roomID, targetID uint64) error {
	if targetID == actorID {
		return s.LeaveRoom(ctx, actorID, roomID)
	}

	room, actor, err := s.requireMember(ctx, roomID, actorID)
	if err != nil {
		return err
	}
	if !s.isAdminOrCreator(room, actor) {
		return UnauthorizedError
	}
	if targetID == room.CreatedBy {
		return UnauthorizedError
	}

	if _, err := s.roomRepo.GetMember(ctx, roomID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	if err := s.roomRepo.RemoveMember(ctx, roomID, targetID); err != nil {
		return err
	}

	s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
		Type:    dto.EventMemberRemoved,
		RoomID:  roomID,
		ActorID: actorID,
		UserIDs: []uint64{targetID},
	})
	return nil
}

// LeaveRoom 退出群聊，任何成员随时可退
func (s *roomServiceImpl) LeaveRoom(ctx context.Context, userID, roomID uint64) error {
	if _, _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return err
	}

	if err := s.roomRepo.RemoveMember(ctx, roomID, userID); err != nil {
		return err
	}

	s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
		Type:    dto.EventMemberRemoved,
		RoomID:  roomID,
		ActorID: userID,
		UserIDs: []uint64{userID},
	})
	return nil
}

// AddAdmin 提升管理员，管理员或群主可操作
func (s *roomServiceImpl) AddAdmin(ctx context.Context, actorID, roomID, targetID uint64) error {
	room, actor, err := s.requireMember(ctx, roomID, actorID)
	if err != nil {
		return err
	}
	if !s.isAdminOrCreator(room, actor) {
		return UnauthorizedError
	}

	if _, err := s.roomRepo.GetMember(ctx, roomID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	if err := s.roomRepo.UpdateRole(ctx, roomID, targetID, consts.RoleAdmin); err != nil {
		return err
	}

	s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
		Type:    dto.EventRoleChanged,
		RoomID:  roomID,
		ActorID: actorID,
		UserIDs: []uint64{targetID},
		Role:    "ADMIN",
	})
	return nil
}

// RemoveAdmin 撤销管理员，仅群主可操作
func (s *roomServiceImpl) RemoveAdmin(ctx context.Context, actorID, roomID, targetID uint64) error {
	room, _, err := s.requireMember(ctx, roomID, actorID)
	if err != nil {
		return err
	}
	if room.CreatedBy != actorID {
		return UnauthorizedError
	}

	if _, err := s.roomRepo.GetMember(ctx, roomID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	if err := s.roomRepo.UpdateRole(ctx, roomID, targetID, consts.RoleMember); err != nil {
		return err
	}

	s.dispatcher.RoomEvent(roomID, &dto.RoomEventDTO{
		Type:    dto.EventRoleChanged,
		RoomID:  roomID,
		ActorID: actorID,
		UserIDs: []uint64{targetID},
		Role:    "MEMBER",
	})
	return nil
}

// MarkRead 推进已读进度
// 截止时间取消息发送时间，其次取显式时间戳，都缺省则取当前时间。
// 进度只增不减，即使没有推进也照常广播当前进度。
func (s *roomServiceImpl) MarkRead(ctx context.Context, userID, roomID uint64, req *dto.MarkReadReq) (*dto.ReadReceiptDTO, error) {
	if _, _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	cutoff := time.Now()
	switch {
	case req.MessageID != "":
		msg, err := s.messageRepo.GetByID(ctx, req.MessageID)
		if err != nil {
			return nil, ErrMessageNotFound
		}
		if msg.RoomID != roomID {
			return nil, ErrMessageNotFound
		}
		cutoff = msg.SentAt
	case req.Timestamp != "":
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return nil, ErrParamInvalid
		}
		cutoff = t
	}

	advanced, err := s.roomRepo.AdvanceLastSeen(ctx, roomID, userID, cutoff)
	if err != nil {
		return nil, err
	}

	effective := cutoff
	if !advanced {
		// 并发或乱序请求下进度没动，取库里的现值广播
		if member, err := s.roomRepo.GetMember(ctx, roomID, userID); err == nil && member.LastSeen != nil {
			effective = *member.LastSeen
		}
	}

	s.dispatcher.ReadReceipt(roomID, userID, effective)
	return &dto.ReadReceiptDTO{RoomID: roomID, UserID: userID, LastSeen: &effective}, nil
}

// ListReadReceipts 获取群内全部成员的已读进度，仅限成员
func (s *roomServiceImpl) ListReadReceipts(ctx context.Context, userID, roomID uint64) ([]*dto.ReadReceiptDTO, error) {
	if _, _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	members, err := s.roomRepo.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ReadReceiptDTO, 0, len(members))
	for _, m := range members {
		res = append(res, &dto.ReadReceiptDTO{
			RoomID:   roomID,
			UserID:   m.UserID,
			LastSeen: m.LastSeen,
		})
	}
	return res, nil
}

// Typing 广播输入状态，仅限成员，不落库
func (s *roomServiceImpl) Typing(ctx context.Context, userID, roomID uint64, typing bool) error {
	if _, _, err := s.requireMember(ctx, roomID, userID); err != nil {
		return err
	}
	s.dispatcher.Typing(roomID, userID, typing)
	return nil
}

// MyRooms 获取用户的群会话列表，携带最后一条消息与真实未读数
func (s *roomServiceImpl) MyRooms(ctx context.Context, userID uint64) ([]*dto.RoomSummaryDTO, error) {
	memberships, err := s.roomRepo.ListUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.RoomSummaryDTO, 0, len(memberships))
	for _, m := range memberships {
		summary := &dto.RoomSummaryDTO{
			RoomID:   m.RoomID,
			Name:     m.Room.Name,
			Image:    m.Room.Image,
			JoinedAt: m.JoinedAt,
			LastSeen: m.LastSeen,
		}

		if members, err := s.roomRepo.ListMembers(ctx, m.RoomID); err == nil {
			summary.MemberCount = len(members)
		}

		if last, err := s.messageRepo.LatestRoomMessage(ctx, m.RoomID); err == nil {
			summary.LastMessage = s.toMessageDTO(last)
		}

		after := time.Time{}
		if m.LastSeen != nil {
			after = *m.LastSeen
		}
		if count, err := s.messageRepo.CountRoomMessagesAfter(ctx, m.RoomID, after); err == nil {
			summary.UnreadCount = count
		}

		res = append(res, summary)
	}
	return res, nil
}

// ListDirectConversations 获取用户的单聊列表
func (s *roomServiceImpl) ListDirectConversations(ctx context.Context, userID uint64) ([]*dto.DirectConversationDTO, error) {
	convs, err := s.directRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DirectConversationDTO, 0, len(convs))
	for _, conv := range convs {
		item := &dto.DirectConversationDTO{
			ConversationID: conv.ID,
			PeerID:         conv.PeerOf(userID),
		}
		if peer, err := s.userRepo.GetByID(ctx, item.PeerID); err == nil {
			if peer.Nickname != nil {
				item.PeerNickname = *peer.Nickname
			}
			if peer.AvatarURL != nil {
				item.PeerAvatar = *peer.AvatarURL
			}
		}
		if last, err := s.messageRepo.LatestConversationMessage(ctx, conv.ID); err == nil {
			item.LastMessage = s.toMessageDTO(last)
		}
		res = append(res, item)
	}
	return res, nil
}

// requireMember 校验成员身份，返回群与成员记录
func (s *roomServiceImpl) requireMember(ctx context.Context, roomID, userID uint64) (*model.Room, *model.RoomMember, error) {
	room, err := s.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRoomNotFound
		}
		return nil, nil, err
	}

	member, err := s.roomRepo.GetMember(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotInRoom
		}
		return nil, nil, err
	}
	return room, member, nil
}

func (s *roomServiceImpl) isAdminOrCreator(room *model.Room, member *model.RoomMember) bool {
	return member.Role == consts.RoleAdmin || member.UserID == room.CreatedBy
}

// roleName 群主身份由 created_by 推导，不依赖成员表的角色字段
func (s *roomServiceImpl) roleName(room *model.Room, member *model.RoomMember) string {
	if member.UserID == room.CreatedBy {
		return "CREATOR"
	}
	if member.Role == consts.RoleAdmin {
		return "ADMIN"
	}
	return "MEMBER"
}

// saveSystemMessage 落库系统消息，失败只记日志
func (s *roomServiceImpl) saveSystemMessage(msg *mongo.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.messageRepo.SaveMessage(ctx, msg); err != nil {
		log.Error("save system message failed", "err", err)
	}
}

func (s *roomServiceImpl) toRoomDTO(room *model.Room, members []*model.RoomMember, users map[uint64]*model.User) *dto.RoomDTO {
	res := &dto.RoomDTO{}
	_ = copier.Copy(res, room)

	for _, m := range members {
		md := &dto.MemberDTO{
			UserID:   m.UserID,
			Role:     s.roleName(room, m),
			JoinedAt: m.JoinedAt,
			LastSeen: m.LastSeen,
		}
		if u, ok := users[m.UserID]; ok {
			if u.Nickname != nil {
				md.Nickname = *u.Nickname
			}
			if u.AvatarURL != nil {
				md.Avatar = *u.AvatarURL
			}
		}
		res.Members = append(res.Members, md)
	}
	return res
}

func (s *roomServiceImpl) toMessageDTO(m *mongo.Message) *dto.MessageDTO {
	return &dto.MessageDTO{
		ID: m.ID, RoomID: m.RoomID, ConversationID: m.ConversationID,
		SenderID: m.SenderID, MsgType: m.MsgType, Content: m.Content,
		Edited: m.Edited, Deleted: m.Deleted,
		SentAt: m.SentAt, UpdatedAt: m.UpdatedAt,
	}
}
