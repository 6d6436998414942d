package service

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
)

// Publisher 推送通道抽象
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisPublisher struct{}

func NewRedisPublisher() Publisher {
	return redisPublisher{}
}

func (redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return redis.Publish(ctx, channel, payload)
}

// Dispatcher 事件分发器
// 事务提交后调用，推送失败只记日志，不影响已落库的写操作。
type Dispatcher struct {
	pub Publisher
}

func NewDispatcher(pub Publisher) *Dispatcher {
	return &Dispatcher{pub: pub}
}

func (d *Dispatcher) publish(channel string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal event failed", "channel", channel, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.pub.Publish(ctx, channel, data); err != nil {
		log.Error("publish event failed", "channel", channel, "err", err)
	}
}

// MessageToRoom 推送消息事件到群频道
func (d *Dispatcher) MessageToRoom(roomID uint64, eventType string, msg *dto.MessageDTO) {
	d.publish(consts.RoomChannel(roomID), &dto.MessageEventDTO{Type: eventType, Message: msg})
}

// MessageToUser 推送消息事件到用户个人频道，发送者与接收者各推一份
func (d *Dispatcher) MessageToUser(userID uint64, eventType string, msg *dto.MessageDTO) {
	d.publish(consts.UserMessagesChannel(userID), &dto.MessageEventDTO{Type: eventType, Message: msg})
}

// publishToUsers 同一事件推送到多个用户的个人频道
func (d *Dispatcher) publishToUsers(v interface{}, userIDs ...uint64) {
	for _, id := range userIDs {
		d.publish(consts.UserMessagesChannel(id), v)
	}
}

// ReactionEvent 推送表态事件到群表态频道
func (d *Dispatcher) ReactionEvent(roomID uint64, eventType, messageID string, userID uint64, emoji string) {
	d.publish(consts.RoomReactionsChannel(roomID), &dto.ReactionEventDTO{
		Type:      eventType,
		RoomID:    roomID,
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
}

// PinEvent 推送置顶变更到群频道
func (d *Dispatcher) PinEvent(roomID uint64, eventType, messageID string, userID uint64) {
	d.publish(consts.RoomChannel(roomID), &dto.PinEventDTO{
		Type:      eventType,
		RoomID:    roomID,
		MessageID: messageID,
		UserID:    userID,
	})
}

// ReadReceipt 推送已读回执到群回执频道
func (d *Dispatcher) ReadReceipt(roomID, userID uint64, lastSeen time.Time) {
	d.publish(consts.RoomReadReceiptsChannel(roomID), &dto.ReadReceiptEventDTO{
		Type:     dto.EventReadReceipt,
		RoomID:   roomID,
		UserID:   userID,
		LastSeen: lastSeen,
	})
}

// Typing 推送输入状态到群输入频道
func (d *Dispatcher) Typing(roomID, userID uint64, typing bool) {
	d.publish(consts.RoomTypingChannel(roomID), &dto.TypingEventDTO{
		Type:   dto.EventTyping,
		RoomID: roomID,
		UserID: userID,
		Typing: typing,
	})
}

// ConversationCreated 推送会话创建事件到成员个人频道
func (d *Dispatcher) ConversationCreated(userID uint64, event *dto.ConversationEventDTO) {
	d.publish(consts.UserConversationsChannel(userID), event)
}

// RoomCreated 推送建群事件到全局频道
func (d *Dispatcher) RoomCreated(room *dto.RoomDTO) {
	d.publish(consts.RoomsCreatedChannel, &dto.ConversationEventDTO{Type: dto.EventRoomCreated, Room: room})
}

// RoomEvent 推送群变更事件到群频道
func (d *Dispatcher) RoomEvent(roomID uint64, event *dto.RoomEventDTO) {
	d.publish(consts.RoomChannel(roomID), event)
}
