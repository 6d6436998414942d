package consts

const (
	// UserPresenceKey 在线标记，带 TTL，由 WS 连接续期
	UserPresenceKey = "presence:user:"
)
