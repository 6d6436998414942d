package service

import (
	"Holonet/internal/model"
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pinFixture struct {
	pins  *memPinRepo
	rooms *memRoomRepo
	msgs  *memMessageRepo
	pub   *memPublisher
	svc   PinService
}

func newPinFixture() *pinFixture {
	f := &pinFixture{
		pins:  &memPinRepo{},
		rooms: newMemRoomRepo(),
		msgs:  newMemMessageRepo(),
		pub:   &memPublisher{},
	}
	f.svc = NewPinService(f.pins, f.rooms, f.msgs, NewDispatcher(f.pub))
	return f
}

func (f *pinFixture) seedRoom(t *testing.T, memberIDs ...uint64) uint64 {
	room := &model.Room{Name: "置顶测试群", CreatedBy: memberIDs[0]}
	members := make([]*model.RoomMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, &model.RoomMember{UserID: id, Role: consts.RoleMember})
	}
	require.NoError(t, f.rooms.CreateRoom(context.Background(), room, members))
	return room.ID
}

func (f *pinFixture) seedMessage(t *testing.T, roomID uint64, content string, sentAt time.Time) string {
	msg := &mongo.Message{RoomID: roomID, SenderID: 1, MsgType: consts.MessageTypeText, Content: content, SentAt: sentAt}
	require.NoError(t, f.msgs.SaveMessage(context.Background(), msg))
	return msg.ID
}

func TestPinMessage_MustBelongToRoom(t *testing.T) {
	req := require.New(t)
	f := newPinFixture()
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)
	otherRoomID := f.seedRoom(t, 1, 2)
	msgID := f.seedMessage(t, roomID, "公告", time.Now())

	// 别的群的消息不能置顶到这个群
	req.ErrorIs(f.svc.PinMessage(ctx, 1, otherRoomID, msgID), ErrMessageNotFound)

	// 不存在的消息
	req.ErrorIs(f.svc.PinMessage(ctx, 1, roomID, "ffffffffffffffffffffffff"), ErrMessageNotFound)

	// 群外用户无权操作
	req.ErrorIs(f.svc.PinMessage(ctx, 9, roomID, msgID), ErrNotInRoom)

	req.NoError(f.svc.PinMessage(ctx, 2, roomID, msgID))
	// 重复置顶不报错，列表里也只有一条
	req.NoError(f.svc.PinMessage(ctx, 1, roomID, msgID))

	pins, err := f.svc.ListPins(ctx, 1, roomID)
	req.NoError(err)
	req.Len(pins, 1)
	req.Equal(uint64(2), pins[0].PinnedBy)
	req.NotNil(pins[0].Message)
	req.Equal("公告", pins[0].Message.Content)
}

func TestUnpinMessage_AbsentIsSuccess(t *testing.T) {
	req := require.New(t)
	f := newPinFixture()
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)
	msgID := f.seedMessage(t, roomID, "公告", time.Now())

	// 从未置顶过，取消也是成功
	req.NoError(f.svc.UnpinMessage(ctx, 1, roomID, msgID))

	req.NoError(f.svc.PinMessage(ctx, 1, roomID, msgID))
	req.NoError(f.svc.UnpinMessage(ctx, 2, roomID, msgID))

	pins, err := f.svc.ListPins(ctx, 1, roomID)
	req.NoError(err)
	req.Empty(pins)
}

func TestListPins_PinCreationOrder(t *testing.T) {
	req := require.New(t)
	f := newPinFixture()
	ctx := context.Background()
	roomID := f.seedRoom(t, 1, 2)

	base := time.Now().Add(-time.Hour)
	oldID := f.seedMessage(t, roomID, "旧公告", base)
	newID := f.seedMessage(t, roomID, "新公告", base.Add(time.Minute))

	// 先置顶旧消息再置顶新消息，列表按置顶先后排列
	req.NoError(f.svc.PinMessage(ctx, 1, roomID, oldID))
	time.Sleep(2 * time.Millisecond)
	req.NoError(f.svc.PinMessage(ctx, 1, roomID, newID))

	pins, err := f.svc.ListPins(ctx, 2, roomID)
	req.NoError(err)
	req.Len(pins, 2)
	req.Equal(oldID, pins[0].MessageID)
	req.Equal(newID, pins[1].MessageID)
}
