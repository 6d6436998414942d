package consts

import "strconv"

// 广播目的地（Redis 频道），与前端订阅约定保持一致。
const (
	RoomsCreatedChannel = "rooms.created"
)

// RoomChannel 群消息频道 room.{roomId}
func RoomChannel(roomID uint64) string {
	return "room." + strconv.FormatUint(roomID, 10)
}

// RoomReactionsChannel 表情回应频道 room.{roomId}.reactions
func RoomReactionsChannel(roomID uint64) string {
	return RoomChannel(roomID) + ".reactions"
}

// RoomReadReceiptsChannel 已读回执频道 room.{roomId}.read-receipts
func RoomReadReceiptsChannel(roomID uint64) string {
	return RoomChannel(roomID) + ".read-receipts"
}

// RoomTypingChannel 输入状态频道 room.{roomId}.typing
func RoomTypingChannel(roomID uint64) string {
	return RoomChannel(roomID) + ".typing"
}

// UserMessagesChannel 1对1消息频道 user.{userId}.messages（发送方与接收方都会收到）
func UserMessagesChannel(userID uint64) string {
	return "user." + strconv.FormatUint(userID, 10) + ".messages"
}

// UserConversationsChannel 新会话通知频道 user.{userId}.conversations
func UserConversationsChannel(userID uint64) string {
	return "user." + strconv.FormatUint(userID, 10) + ".conversations"
}
