package handler

import (
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/redis"
	"Holonet/internal/pkg/response"
	"Holonet/internal/pkg/security"
	"Holonet/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsInboundFrame 客户端上行帧，目前只有输入状态和心跳
type wsInboundFrame struct {
	Type   string `json:"type"`
	RoomID uint64 `json:"room_id"`
	Typing bool   `json:"typing"`
}

type WsHandler struct {
	roomService service.RoomService
	presence    service.PresenceService
}

func NewWsHandler(roomService service.RoomService, presence service.PresenceService) *WsHandler {
	return &WsHandler{roomService: roomService, presence: presence}
}

func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// 订阅个人频道、建群广播与所有已加入群的频道
	channels := []string{
		consts.UserMessagesChannel(userID),
		consts.UserConversationsChannel(userID),
		consts.RoomsCreatedChannel,
	}
	rooms, err := s.roomService.MyRooms(context.Background(), userID)
	if err != nil {
		log.Error("获取群列表失败", "user_id", userID, "err", err)
		return
	}
	for _, room := range rooms {
		channels = append(channels,
			consts.RoomChannel(room.RoomID),
			consts.RoomReactionsChannel(room.RoomID),
			consts.RoomReadReceiptsChannel(room.RoomID),
			consts.RoomTypingChannel(room.RoomID),
		)
	}

	// 订阅 Redis 总线
	pubsub := redis.Subscribe(context.Background(), channels...)
	defer func() {
		_ = pubsub.Close()
	}()

	if err := s.presence.Heartbeat(context.Background(), userID); err != nil {
		log.Warn("上线心跳失败", "user_id", userID, "err", err)
	}
	log.Info("用户 WS 连接已建立", "user_id", userID, "channels", len(channels))

	stopChan := make(chan struct{})

	// 读循环：处理上行帧，任意帧都刷新在线心跳
	go func() {
		defer close(stopChan)

		// 输入状态广播限流，防止客户端高频上报刷爆频道
		typingLimiter := rate.NewLimiter(rate.Every(time.Second), 5)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			hbCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = s.presence.Heartbeat(hbCtx, userID)
			cancel()

			var frame wsInboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				continue
			}
			if frame.Type == "TYPING" && frame.RoomID != 0 && typingLimiter.Allow() {
				typingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := s.roomService.Typing(typingCtx, userID, frame.RoomID, frame.Typing); err != nil {
					log.Warn("输入状态广播失败", "user_id", userID, "room_id", frame.RoomID, "err", err)
				}
				cancel()
			}
		}
	}()

	// 写循环：监听 Redis 并推送至客户端，顺带周期性续心跳
	redisCh := pubsub.Channel()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case msg := <-redisCh:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Error("WS 推送失败", "user_id", userID, "err", err)
				s.markOffline(userID)
				return
			}
		case <-heartbeat.C:
			hbCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = s.presence.Heartbeat(hbCtx, userID)
			cancel()
		case <-stopChan:
			log.Info("用户 WS 连接已断开", "user_id", userID)
			s.markOffline(userID)
			return
		}
	}
}

func (s *WsHandler) markOffline(userID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.presence.MarkOffline(ctx, userID); err != nil {
		log.Warn("下线标记失败", "user_id", userID, "err", err)
	}
}
