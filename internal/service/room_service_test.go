package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/model"
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type roomFixture struct {
	rooms  *memRoomRepo
	direct *memDirectRepo
	users  *memUserRepo
	msgs   *memMessageRepo
	pub    *memPublisher
	svc    RoomService
}

func newRoomFixture(userIDs ...uint64) *roomFixture {
	f := &roomFixture{
		rooms:  newMemRoomRepo(),
		direct: newMemDirectRepo(),
		users:  newMemUserRepo(userIDs...),
		msgs:   newMemMessageRepo(),
		pub:    &memPublisher{},
	}
	f.svc = NewRoomService(f.rooms, f.direct, f.users, f.msgs, NewDispatcher(f.pub))
	return f
}

// seedRoom 直接种一个群：第一个用户是群主，其余是普通成员
func (f *roomFixture) seedRoom(t *testing.T, creatorID uint64, memberIDs ...uint64) uint64 {
	room := &model.Room{Name: "测试群", CreatedBy: creatorID}
	members := []*model.RoomMember{{UserID: creatorID, Role: consts.RoleAdmin}}
	for _, id := range memberIDs {
		members = append(members, &model.RoomMember{UserID: id, Role: consts.RoleMember})
	}
	err := f.rooms.CreateRoom(context.Background(), room, members)
	require.NoError(t, err)
	return room.ID
}

func TestCreateConversation_DirectPairIsCommutative(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2)
	ctx := context.Background()

	// A 发起到 B
	first, err := f.svc.CreateConversation(ctx, 1, &dto.CreateConversationReq{MemberIDs: []uint64{2}})
	req.NoError(err)
	req.Equal("direct", first.Kind)
	req.False(first.Existing)
	req.Equal(uint64(2), first.PeerID)
	// 新会话里带着初始系统消息
	req.NotNil(first.LastMessage)
	req.Equal(consts.MessageTypeSystem, first.LastMessage.MsgType)

	// B 反向发起到 A，应复用同一会话
	second, err := f.svc.CreateConversation(ctx, 2, &dto.CreateConversationReq{MemberIDs: []uint64{1}})
	req.NoError(err)
	req.True(second.Existing)
	req.Equal(first.ConversationID, second.ConversationID)
	req.Equal(uint64(1), second.PeerID)

	// 重复成员也只算一个对端
	third, err := f.svc.CreateConversation(ctx, 1, &dto.CreateConversationReq{MemberIDs: []uint64{2, 2, 1}})
	req.NoError(err)
	req.True(third.Existing)
	req.Equal(first.ConversationID, third.ConversationID)
}

func TestCreateConversation_RoomIsAlwaysNew(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3)
	ctx := context.Background()

	first, err := f.svc.CreateConversation(ctx, 1, &dto.CreateConversationReq{MemberIDs: []uint64{2, 3}})
	req.NoError(err)
	req.Equal("room", first.Kind)
	req.NotNil(first.Room)
	req.Len(first.Room.Members, 3)

	// 同一批成员再建一次，得到的是另一个群
	second, err := f.svc.CreateConversation(ctx, 1, &dto.CreateConversationReq{MemberIDs: []uint64{2, 3}})
	req.NoError(err)
	req.NotEqual(first.Room.ID, second.Room.ID)

	// 建群事件进了全局频道
	req.GreaterOrEqual(f.pub.countChannel(consts.RoomsCreatedChannel), 2)
}

func TestCreateConversation_CreatorIsCreatorRole(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3)
	ctx := context.Background()

	created, err := f.svc.CreateConversation(ctx, 1, &dto.CreateConversationReq{MemberIDs: []uint64{2, 3}})
	req.NoError(err)

	room, err := f.svc.GetRoom(ctx, 2, created.Room.ID)
	req.NoError(err)

	roles := map[uint64]string{}
	for _, m := range room.Members {
		roles[m.UserID] = m.Role
	}
	req.Equal("CREATOR", roles[1])
	req.Equal("MEMBER", roles[2])
	req.Equal("MEMBER", roles[3])
}

func TestCreateConversation_RejectsSelfOnly(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1)

	_, err := f.svc.CreateConversation(context.Background(), 1, &dto.CreateConversationReq{MemberIDs: []uint64{1}})
	req.ErrorIs(err, ErrTargetUserInvalid)
}

func TestCreateConversation_RejectsUnknownPeer(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1)

	_, err := f.svc.CreateConversation(context.Background(), 1, &dto.CreateConversationReq{MemberIDs: []uint64{42}})
	req.ErrorIs(err, ErrUserNotFound)
}

func TestUpdateRoom_RequiresAdminOrCreator(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2, 3)

	name := "改名后的群"

	// 普通成员不行
	_, err := f.svc.UpdateRoom(ctx, 2, roomID, &dto.UpdateRoomReq{Name: &name})
	req.ErrorIs(err, UnauthorizedError)

	// 群主可以
	updated, err := f.svc.UpdateRoom(ctx, 1, roomID, &dto.UpdateRoomReq{Name: &name})
	req.NoError(err)
	req.Equal(name, updated.Name)

	// 空名字拒绝
	blank := "   "
	_, err = f.svc.UpdateRoom(ctx, 1, roomID, &dto.UpdateRoomReq{Name: &blank})
	req.ErrorIs(err, ErrRoomNameEmpty)
}

func TestDeleteRoom_OnlyCreator(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2, 3)

	// 提拔 2 为管理员后仍然不能解散
	req.NoError(f.svc.AddAdmin(ctx, 1, roomID, 2))
	req.ErrorIs(f.svc.DeleteRoom(ctx, 2, roomID), UnauthorizedError)

	req.NoError(f.svc.DeleteRoom(ctx, 1, roomID))
	_, err := f.svc.GetRoom(ctx, 1, roomID)
	req.ErrorIs(err, ErrRoomNotFound)
}

func TestMembership_RoleMatrix(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3, 4)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2, 3)

	// 任何成员都可以拉人
	req.NoError(f.svc.AddMembers(ctx, 3, roomID, []uint64{4}))
	members, err := f.rooms.ListMembers(ctx, roomID)
	req.NoError(err)
	req.Len(members, 4)

	// 重复拉人不报错也不重复，且没人真正进群时不广播事件
	before := f.pub.countChannel(consts.RoomChannel(roomID))
	req.NoError(f.svc.AddMembers(ctx, 3, roomID, []uint64{4}))
	members, err = f.rooms.ListMembers(ctx, roomID)
	req.NoError(err)
	req.Len(members, 4)
	req.Equal(before, f.pub.countChannel(consts.RoomChannel(roomID)))

	// 普通成员不能移除别人
	req.ErrorIs(f.svc.RemoveMember(ctx, 3, roomID, 4), UnauthorizedError)

	// 普通成员不能提拔管理员
	req.ErrorIs(f.svc.AddAdmin(ctx, 3, roomID, 4), UnauthorizedError)

	// 群主提拔 2 为管理员，2 就能移除成员
	req.NoError(f.svc.AddAdmin(ctx, 1, roomID, 2))
	req.NoError(f.svc.RemoveMember(ctx, 2, roomID, 4))

	// 管理员不能撤掉管理员，只有群主能
	req.NoError(f.svc.AddAdmin(ctx, 1, roomID, 3))
	req.ErrorIs(f.svc.RemoveAdmin(ctx, 2, roomID, 3), UnauthorizedError)
	req.NoError(f.svc.RemoveAdmin(ctx, 1, roomID, 3))

	// 群主不可被移除
	req.ErrorIs(f.svc.RemoveMember(ctx, 2, roomID, 1), UnauthorizedError)

	// 普通成员随时可以退群
	req.NoError(f.svc.LeaveRoom(ctx, 3, roomID))
	ok, err := f.rooms.IsMember(ctx, roomID, 3)
	req.NoError(err)
	req.False(ok)
}

func TestRemoveMember_SelfRemovalIsLeave(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2, 3)

	// 普通成员把自己踢出去等同于退群，不需要管理员权限
	req.NoError(f.svc.RemoveMember(ctx, 3, roomID, 3))
	ok, err := f.rooms.IsMember(ctx, roomID, 3)
	req.NoError(err)
	req.False(ok)

	// 非成员再移除自己走成员校验
	req.ErrorIs(f.svc.RemoveMember(ctx, 3, roomID, 3), ErrNotInRoom)
}

func TestMarkRead_NeverRegresses(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)

	later := time.Now().Add(-time.Minute)
	earlier := later.Add(-time.Hour)

	receipt, err := f.svc.MarkRead(ctx, 2, roomID, &dto.MarkReadReq{Timestamp: later.Format(time.RFC3339Nano)})
	req.NoError(err)
	req.NotNil(receipt.LastSeen)
	req.WithinDuration(later, *receipt.LastSeen, time.Second)

	// 再标一个更早的时间点，进度不回退
	receipt, err = f.svc.MarkRead(ctx, 2, roomID, &dto.MarkReadReq{Timestamp: earlier.Format(time.RFC3339Nano)})
	req.NoError(err)
	req.NotNil(receipt.LastSeen)
	req.WithinDuration(later, *receipt.LastSeen, time.Second)

	// 两次都必须广播回执
	req.Equal(2, f.pub.countChannel(consts.RoomReadReceiptsChannel(roomID)))
}

func TestMarkRead_ByMessageID(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)
	otherRoomID := f.seedRoom(t, 1, 2)

	sentAt := time.Now().Add(-10 * time.Minute)
	msg := &mongo.Message{RoomID: roomID, SenderID: 1, MsgType: consts.MessageTypeText, Content: "hi", SentAt: sentAt}
	req.NoError(f.msgs.SaveMessage(ctx, msg))

	receipt, err := f.svc.MarkRead(ctx, 2, roomID, &dto.MarkReadReq{MessageID: msg.ID})
	req.NoError(err)
	req.WithinDuration(sentAt, *receipt.LastSeen, time.Second)

	// 消息不属于这个群时拒绝
	_, err = f.svc.MarkRead(ctx, 2, otherRoomID, &dto.MarkReadReq{MessageID: msg.ID})
	req.ErrorIs(err, ErrMessageNotFound)
}

func TestTyping_RequiresMembership(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2, 3)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)

	req.ErrorIs(f.svc.Typing(ctx, 3, roomID, true), ErrNotInRoom)

	req.NoError(f.svc.Typing(ctx, 2, roomID, true))
	req.Equal(1, f.pub.countChannel(consts.RoomTypingChannel(roomID)))
}

func TestMyRooms_UnreadCount(t *testing.T) {
	req := require.New(t)
	f := newRoomFixture(1, 2)
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		msg := &mongo.Message{RoomID: roomID, SenderID: 1, MsgType: consts.MessageTypeText, Content: "m", SentAt: base.Add(time.Duration(i) * time.Minute)}
		req.NoError(f.msgs.SaveMessage(ctx, msg))
	}

	// 已读到第一条，剩两条未读
	_, err := f.svc.MarkRead(ctx, 2, roomID, &dto.MarkReadReq{Timestamp: base.Format(time.RFC3339Nano)})
	req.NoError(err)

	summaries, err := f.svc.MyRooms(ctx, 2)
	req.NoError(err)
	req.Len(summaries, 1)
	req.Equal(int64(2), summaries[0].UnreadCount)
	req.Equal(2, summaries[0].MemberCount)
	req.NotNil(summaries[0].LastMessage)
	req.Equal("m", summaries[0].LastMessage.Content)
}
