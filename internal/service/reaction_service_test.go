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

type reactionFixture struct {
	reactions *memReactionRepo
	rooms     *memRoomRepo
	direct    *memDirectRepo
	msgs      *memMessageRepo
	pub       *memPublisher
	svc       ReactionService
}

func newReactionFixture() *reactionFixture {
	f := &reactionFixture{
		reactions: &memReactionRepo{},
		rooms:     newMemRoomRepo(),
		direct:    newMemDirectRepo(),
		msgs:      newMemMessageRepo(),
		pub:       &memPublisher{},
	}
	f.svc = NewReactionService(f.reactions, f.rooms, f.direct, f.msgs, NewDispatcher(f.pub))
	return f
}

func (f *reactionFixture) seedRoomMessage(t *testing.T, memberIDs ...uint64) (uint64, string) {
	room := &model.Room{Name: "表态测试群", CreatedBy: memberIDs[0]}
	members := make([]*model.RoomMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, &model.RoomMember{UserID: id, Role: consts.RoleMember})
	}
	require.NoError(t, f.rooms.CreateRoom(context.Background(), room, members))

	msg := &mongo.Message{RoomID: room.ID, SenderID: memberIDs[0], MsgType: consts.MessageTypeText, Content: "hi", SentAt: time.Now()}
	require.NoError(t, f.msgs.SaveMessage(context.Background(), msg))
	return room.ID, msg.ID
}

func TestAddReaction_DuplicateIsSilent(t *testing.T) {
	req := require.New(t)
	f := newReactionFixture()
	ctx := context.Background()
	roomID, msgID := f.seedRoomMessage(t, 1, 2)

	req.NoError(f.svc.AddReaction(ctx, 2, msgID, "👍"))
	// 重复表态不报错也不再广播
	req.NoError(f.svc.AddReaction(ctx, 2, msgID, "👍"))

	reactions, err := f.svc.ListReactions(ctx, 1, msgID)
	req.NoError(err)
	req.Len(reactions, 1)
	req.Equal(1, f.pub.countChannel(consts.RoomReactionsChannel(roomID)))

	// 不同符号是独立表态
	req.NoError(f.svc.AddReaction(ctx, 2, msgID, "🎉"))
	reactions, err = f.svc.ListReactions(ctx, 1, msgID)
	req.NoError(err)
	req.Len(reactions, 2)
}

func TestRemoveReaction_AbsentIsNoOpSuccess(t *testing.T) {
	req := require.New(t)
	f := newReactionFixture()
	ctx := context.Background()
	roomID, msgID := f.seedRoomMessage(t, 1, 2)

	// 没有表态时移除视为成功，消息存在则照常广播移除事件
	req.NoError(f.svc.RemoveReaction(ctx, 2, msgID, "👍"))
	req.Equal(1, f.pub.countChannel(consts.RoomReactionsChannel(roomID)))

	req.NoError(f.svc.AddReaction(ctx, 2, msgID, "👍"))
	req.NoError(f.svc.RemoveReaction(ctx, 2, msgID, "👍"))

	reactions, err := f.svc.ListReactions(ctx, 1, msgID)
	req.NoError(err)
	req.Empty(reactions)

	// 消息不存在则报错且不广播
	req.ErrorIs(f.svc.RemoveReaction(ctx, 2, "ffffffffffffffffffffffff", "👍"), ErrMessageNotFound)
}

func TestAddReaction_Validation(t *testing.T) {
	req := require.New(t)
	f := newReactionFixture()
	ctx := context.Background()
	_, msgID := f.seedRoomMessage(t, 1, 2)

	req.ErrorIs(f.svc.AddReaction(ctx, 2, msgID, "  "), ErrEmojiEmpty)
	req.ErrorIs(f.svc.AddReaction(ctx, 2, "ffffffffffffffffffffffff", "👍"), ErrMessageNotFound)
	// 群外用户不可见
	req.ErrorIs(f.svc.AddReaction(ctx, 9, msgID, "👍"), ErrNotInRoom)
}

func TestReaction_OnDirectMessageGoesToBothUsers(t *testing.T) {
	req := require.New(t)
	f := newReactionFixture()
	ctx := context.Background()

	conv := &model.DirectConversation{UserLo: 1, UserHi: 2}
	req.NoError(f.direct.Create(ctx, conv))
	msg := &mongo.Message{ConversationID: conv.ID, SenderID: 1, MsgType: consts.MessageTypeText, Content: "hi", SentAt: time.Now()}
	req.NoError(f.msgs.SaveMessage(ctx, msg))

	req.NoError(f.svc.AddReaction(ctx, 2, msg.ID, "❤️"))
	req.Equal(1, f.pub.countChannel(consts.UserMessagesChannel(1)))
	req.Equal(1, f.pub.countChannel(consts.UserMessagesChannel(2)))

	// 局外人无权表态
	req.ErrorIs(f.svc.AddReaction(ctx, 3, msg.ID, "❤️"), UnauthorizedError)
}
