package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/model"
	"Holonet/internal/pkg/mongo"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// 内存版仓储与推送实现，行为对齐真实实现的关键语义：
// 找不到记录时返回 gorm.ErrRecordNotFound / mongo.ErrNoDocuments，
// 唯一索引冲突时去重，last_seen 只增不减。

type publishedEvent struct {
	channel string
	payload []byte
}

type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *memPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{channel: channel, payload: payload})
	return nil
}

func (p *memPublisher) channels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]string, 0, len(p.events))
	for _, e := range p.events {
		res = append(res, e.channel)
	}
	return res
}

func (p *memPublisher) countChannel(channel string) int {
	count := 0
	for _, c := range p.channels() {
		if c == channel {
			count++
		}
	}
	return count
}

type memUserRepo struct {
	users map[uint64]*model.User
}

func newMemUserRepo(ids ...uint64) *memUserRepo {
	r := &memUserRepo{users: map[uint64]*model.User{}}
	for _, id := range ids {
		r.users[id] = &model.User{ID: id}
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := r.users[id]; ok && !u.IsDelete {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []uint64) ([]*model.User, error) {
	var res []*model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok && !u.IsDelete {
			res = append(res, u)
		}
	}
	return res, nil
}

func (r *memUserRepo) Upsert(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint64) error {
	if u, ok := r.users[id]; ok {
		u.IsDelete = true
	}
	return nil
}

func (r *memUserRepo) SetOnline(_ context.Context, id uint64, online bool) error {
	if u, ok := r.users[id]; ok {
		u.IsOnline = online
	}
	return nil
}

func (r *memUserRepo) ListOnlineIDs(_ context.Context) ([]uint64, error) {
	var ids []uint64
	for id, u := range r.users {
		if u.IsOnline {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type memRoomRepo struct {
	nextID  uint64
	rooms   map[uint64]*model.Room
	members map[uint64]map[uint64]*model.RoomMember
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{
		rooms:   map[uint64]*model.Room{},
		members: map[uint64]map[uint64]*model.RoomMember{},
	}
}

func (r *memRoomRepo) CreateRoom(_ context.Context, room *model.Room, members []*model.RoomMember) error {
	r.nextID++
	room.ID = r.nextID
	room.CreatedAt = time.Now()
	r.rooms[room.ID] = room
	r.members[room.ID] = map[uint64]*model.RoomMember{}
	for _, m := range members {
		m.RoomID = room.ID
		m.JoinedAt = time.Now()
		r.members[room.ID][m.UserID] = m
	}
	return nil
}

func (r *memRoomRepo) GetRoom(_ context.Context, roomID uint64) (*model.Room, error) {
	if room, ok := r.rooms[roomID]; ok {
		return room, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRoomRepo) UpdateRoom(_ context.Context, room *model.Room) error {
	r.rooms[room.ID] = room
	return nil
}

func (r *memRoomRepo) DeleteRoom(_ context.Context, roomID uint64) error {
	delete(r.rooms, roomID)
	delete(r.members, roomID)
	return nil
}

func (r *memRoomRepo) GetMember(_ context.Context, roomID, userID uint64) (*model.RoomMember, error) {
	if m, ok := r.members[roomID][userID]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRoomRepo) IsMember(_ context.Context, roomID, userID uint64) (bool, error) {
	_, ok := r.members[roomID][userID]
	return ok, nil
}

func (r *memRoomRepo) ListMembers(_ context.Context, roomID uint64) ([]*model.RoomMember, error) {
	var res []*model.RoomMember
	for _, m := range r.members[roomID] {
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UserID < res[j].UserID })
	return res, nil
}

func (r *memRoomRepo) AddMembers(_ context.Context, members []*model.RoomMember) ([]uint64, error) {
	added := make([]uint64, 0, len(members))
	for _, member := range members {
		if r.members[member.RoomID] == nil {
			r.members[member.RoomID] = map[uint64]*model.RoomMember{}
		}
		if _, ok := r.members[member.RoomID][member.UserID]; ok {
			continue
		}
		r.members[member.RoomID][member.UserID] = member
		added = append(added, member.UserID)
	}
	return added, nil
}

func (r *memRoomRepo) RemoveMember(_ context.Context, roomID, userID uint64) error {
	delete(r.members[roomID], userID)
	return nil
}

func (r *memRoomRepo) UpdateRole(_ context.Context, roomID, userID uint64, role int8) error {
	if m, ok := r.members[roomID][userID]; ok {
		m.Role = role
	}
	return nil
}

func (r *memRoomRepo) AdvanceLastSeen(_ context.Context, roomID, userID uint64, cutoff time.Time) (bool, error) {
	m, ok := r.members[roomID][userID]
	if !ok {
		return false, nil
	}
	if m.LastSeen == nil || m.LastSeen.Before(cutoff) {
		t := cutoff
		m.LastSeen = &t
		return true, nil
	}
	return false, nil
}

func (r *memRoomRepo) ListUserMemberships(_ context.Context, userID uint64) ([]*model.RoomMember, error) {
	var res []*model.RoomMember
	for roomID, members := range r.members {
		if m, ok := members[userID]; ok {
			if room, exists := r.rooms[roomID]; exists {
				m.Room = *room
			}
			res = append(res, m)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].RoomID < res[j].RoomID })
	return res, nil
}

type memDirectRepo struct {
	nextID uint64
	convs  map[uint64]*model.DirectConversation
}

func newMemDirectRepo() *memDirectRepo {
	return &memDirectRepo{convs: map[uint64]*model.DirectConversation{}}
}

func (r *memDirectRepo) GetByID(_ context.Context, id uint64) (*model.DirectConversation, error) {
	if c, ok := r.convs[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memDirectRepo) GetByPair(_ context.Context, a, b uint64) (*model.DirectConversation, error) {
	lo, hi := model.NormalizePair(a, b)
	for _, c := range r.convs {
		if c.UserLo == lo && c.UserHi == hi {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memDirectRepo) Create(_ context.Context, conv *model.DirectConversation) error {
	for _, c := range r.convs {
		if c.UserLo == conv.UserLo && c.UserHi == conv.UserHi {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	conv.ID = r.nextID
	conv.CreatedAt = time.Now()
	r.convs[conv.ID] = conv
	return nil
}

func (r *memDirectRepo) ListByUser(_ context.Context, userID uint64) ([]*model.DirectConversation, error) {
	var res []*model.DirectConversation
	for _, c := range r.convs {
		if c.Has(userID) {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

type memMessageRepo struct {
	seq     int
	saveErr error
	msgs    map[string]*mongo.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{msgs: map[string]*mongo.Message{}}
}

func (r *memMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.seq++
	msg.ID = fmt.Sprintf("%024x", r.seq)
	r.msgs[msg.ID] = msg
	return nil
}

func (r *memMessageRepo) GetByID(_ context.Context, id string) (*mongo.Message, error) {
	if m, ok := r.msgs[id]; ok {
		return m, nil
	}
	return nil, mongodriver.ErrNoDocuments
}

func (r *memMessageRepo) GetByIDs(_ context.Context, ids []string) ([]*mongo.Message, error) {
	var res []*mongo.Message
	for _, id := range ids {
		if m, ok := r.msgs[id]; ok {
			res = append(res, m)
		}
	}
	return res, nil
}

func (r *memMessageRepo) filtered(match func(*mongo.Message) bool, before *time.Time, limit int) []*mongo.Message {
	var res []*mongo.Message
	for _, m := range r.msgs {
		if !match(m) {
			continue
		}
		if before != nil && !m.SentAt.Before(*before) {
			continue
		}
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].SentAt.After(res[j].SentAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}

func (r *memMessageRepo) GetRoomHistory(_ context.Context, roomID uint64, before *time.Time, limit int) ([]*mongo.Message, error) {
	return r.filtered(func(m *mongo.Message) bool { return m.RoomID == roomID }, before, limit), nil
}

func (r *memMessageRepo) GetConversationHistory(_ context.Context, convID uint64, before *time.Time, limit int) ([]*mongo.Message, error) {
	return r.filtered(func(m *mongo.Message) bool { return m.ConversationID == convID }, before, limit), nil
}

func (r *memMessageRepo) LatestRoomMessage(_ context.Context, roomID uint64) (*mongo.Message, error) {
	res := r.filtered(func(m *mongo.Message) bool { return m.RoomID == roomID }, nil, 1)
	if len(res) == 0 {
		return nil, mongodriver.ErrNoDocuments
	}
	return res[0], nil
}

func (r *memMessageRepo) LatestConversationMessage(_ context.Context, convID uint64) (*mongo.Message, error) {
	res := r.filtered(func(m *mongo.Message) bool { return m.ConversationID == convID }, nil, 1)
	if len(res) == 0 {
		return nil, mongodriver.ErrNoDocuments
	}
	return res[0], nil
}

func (r *memMessageRepo) CountRoomMessagesAfter(_ context.Context, roomID uint64, after time.Time) (int64, error) {
	var count int64
	for _, m := range r.msgs {
		if m.RoomID == roomID && m.SentAt.After(after) {
			count++
		}
	}
	return count, nil
}

func (r *memMessageRepo) UpdateBody(_ context.Context, id string, senderID uint64, content string) (*mongo.Message, error) {
	m, ok := r.msgs[id]
	if !ok || m.SenderID != senderID || m.Deleted {
		return nil, mongodriver.ErrNoDocuments
	}
	now := time.Now()
	m.Content = content
	m.Edited = true
	m.UpdatedAt = &now
	return m, nil
}

func (r *memMessageRepo) SoftDelete(_ context.Context, id string, senderID uint64) (*mongo.Message, error) {
	m, ok := r.msgs[id]
	if !ok || m.SenderID != senderID || m.Deleted {
		return nil, mongodriver.ErrNoDocuments
	}
	now := time.Now()
	m.Content = ""
	m.Deleted = true
	m.DeletedAt = &now
	return m, nil
}

func (r *memMessageRepo) PurgeRoomMessages(_ context.Context, roomID uint64) error {
	for id, m := range r.msgs {
		if m.RoomID == roomID {
			delete(r.msgs, id)
		}
	}
	return nil
}

type memReportRepo struct {
	seq     int
	reports []*mongo.Report
}

func (r *memReportRepo) CreateReport(_ context.Context, report *mongo.Report) error {
	r.seq++
	report.ID = fmt.Sprintf("%024x", r.seq)
	r.reports = append(r.reports, report)
	return nil
}

func (r *memReportRepo) GetReportsByMessage(_ context.Context, messageID string, limit, offset int64) ([]*mongo.Report, error) {
	var res []*mongo.Report
	for _, rep := range r.reports {
		if rep.MessageID == messageID {
			res = append(res, rep)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if offset >= int64(len(res)) {
		return nil, nil
	}
	res = res[offset:]
	if int64(len(res)) > limit {
		res = res[:limit]
	}
	return res, nil
}

type memPinRepo struct {
	pins []*model.MessagePin
}

func (r *memPinRepo) CreatePin(_ context.Context, pin *model.MessagePin) error {
	for _, p := range r.pins {
		if p.RoomID == pin.RoomID && p.MessageID == pin.MessageID {
			return nil
		}
	}
	r.pins = append(r.pins, pin)
	return nil
}

func (r *memPinRepo) DeletePin(_ context.Context, roomID uint64, messageID string) error {
	for i, p := range r.pins {
		if p.RoomID == roomID && p.MessageID == messageID {
			r.pins = append(r.pins[:i], r.pins[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memPinRepo) ListPins(_ context.Context, roomID uint64) ([]*model.MessagePin, error) {
	var res []*model.MessagePin
	for _, p := range r.pins {
		if p.RoomID == roomID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

type memReactionRepo struct {
	reactions []*model.MessageReaction
}

func (r *memReactionRepo) CreateReaction(_ context.Context, reaction *model.MessageReaction) (bool, error) {
	for _, existing := range r.reactions {
		if existing.MessageID == reaction.MessageID &&
			existing.UserID == reaction.UserID &&
			existing.Emoji == reaction.Emoji {
			return false, nil
		}
	}
	r.reactions = append(r.reactions, reaction)
	return true, nil
}

func (r *memReactionRepo) DeleteReaction(_ context.Context, messageID string, userID uint64, emoji string) (bool, error) {
	for i, existing := range r.reactions {
		if existing.MessageID == messageID && existing.UserID == userID && existing.Emoji == emoji {
			r.reactions = append(r.reactions[:i], r.reactions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memReactionRepo) ListByMessage(_ context.Context, messageID string) ([]*model.MessageReaction, error) {
	var res []*model.MessageReaction
	for _, existing := range r.reactions {
		if existing.MessageID == messageID {
			res = append(res, existing)
		}
	}
	return res, nil
}

type stubPresence struct {
	online map[uint64]bool
}

func (p *stubPresence) Heartbeat(context.Context, uint64) error   { return nil }
func (p *stubPresence) MarkOffline(context.Context, uint64) error { return nil }
func (p *stubPresence) SweepExpired(context.Context) error        { return nil }
func (p *stubPresence) IsOnline(_ context.Context, userID uint64) (bool, error) {
	return p.online[userID], nil
}

type stubPush struct {
	mu    sync.Mutex
	calls []uint64
}

func (p *stubPush) NotifyOffline(_ context.Context, userID uint64, _ *dto.MessageDTO) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, userID)
}
