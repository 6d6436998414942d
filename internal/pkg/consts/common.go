package consts

// 消息类型
const (
	MessageTypeText   = 1
	MessageTypeImage  = 2
	MessageTypeAudio  = 3
	MessageTypeSystem = 9
)

// 群成员角色（CREATOR 由 rooms.created_by 推导，不落库）
const (
	RoleMember int8 = 1
	RoleAdmin  int8 = 2
)

const (
	DefaultRoomAvatarURL = "default_room.png"
)

// 系统消息文案
const (
	SystemMessageDirectCreated = "1对1会话已创建"
	SystemMessageRoomCreated   = "群聊已创建"
)
