package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/pkg/consts"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_ChannelRouting(t *testing.T) {
	req := require.New(t)
	pub := &memPublisher{}
	d := NewDispatcher(pub)

	msg := &dto.MessageDTO{ID: "m1", RoomID: 7, SenderID: 1, Content: "hi", SentAt: time.Now()}

	d.MessageToRoom(7, dto.EventMessageNew, msg)
	d.MessageToUser(3, dto.EventMessageNew, msg)
	d.ReactionEvent(7, dto.EventReactionAdded, "m1", 3, "👍")
	d.ReadReceipt(7, 3, time.Now())
	d.Typing(7, 3, true)
	d.ConversationCreated(3, &dto.ConversationEventDTO{Type: dto.EventConversationCreated})
	d.RoomCreated(&dto.RoomDTO{ID: 7, Name: "新群"})
	d.PinEvent(7, dto.EventMessagePinned, "m1", 3)

	req.Equal([]string{
		"room.7",
		"user.3.messages",
		"room.7.reactions",
		"room.7.read-receipts",
		"room.7.typing",
		"user.3.conversations",
		consts.RoomsCreatedChannel,
		"room.7",
	}, pub.channels())
}

func TestDispatcher_PayloadCarriesEventType(t *testing.T) {
	req := require.New(t)
	pub := &memPublisher{}
	d := NewDispatcher(pub)

	d.Typing(7, 3, true)

	pub.mu.Lock()
	payload := pub.events[0].payload
	pub.mu.Unlock()

	var event dto.TypingEventDTO
	req.NoError(json.Unmarshal(payload, &event))
	req.Equal(dto.EventTyping, event.Type)
	req.Equal(uint64(7), event.RoomID)
	req.Equal(uint64(3), event.UserID)
	req.True(event.Typing)
}
