package api

import (
	"Holonet/internal/api/middleware"
	"Holonet/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		// WS 走查询参数鉴权，不挂登录中间件
		apiGroup.GET("/ws", group.WSHandler.Connect)

		convGroup := apiGroup.Group("/conversations")
		convGroup.Use(middleware.AuthMiddleware())
		{
			convGroup.POST("", group.RoomHandler.CreateConversation)
			convGroup.GET("", group.RoomHandler.ListDirectConversations)
			convGroup.GET("/:conversation_id/messages", group.MessageHandler.GetConversationHistory)
		}

		roomGroup := apiGroup.Group("/rooms")
		roomGroup.Use(middleware.AuthMiddleware())
		{
			roomGroup.GET("", group.RoomHandler.MyRooms)
			roomGroup.GET("/:room_id", group.RoomHandler.GetRoom)
			roomGroup.PUT("/:room_id", group.RoomHandler.UpdateRoom)
			roomGroup.DELETE("/:room_id", group.RoomHandler.DeleteRoom)
			roomGroup.POST("/:room_id/avatar", group.MediaHandler.UploadRoomAvatar)

			roomGroup.POST("/:room_id/members", group.RoomHandler.AddMembers)
			roomGroup.DELETE("/:room_id/members/:member_id", group.RoomHandler.RemoveMember)
			roomGroup.POST("/:room_id/leave", group.RoomHandler.LeaveRoom)
			roomGroup.POST("/:room_id/admins/:member_id", group.RoomHandler.AddAdmin)
			roomGroup.DELETE("/:room_id/admins/:member_id", group.RoomHandler.RemoveAdmin)

			roomGroup.GET("/:room_id/messages", group.MessageHandler.GetRoomHistory)
			roomGroup.POST("/:room_id/read", group.RoomHandler.MarkRead)
			roomGroup.GET("/:room_id/read-receipts", group.RoomHandler.ListReadReceipts)
			roomGroup.POST("/:room_id/typing", group.RoomHandler.Typing)

			roomGroup.POST("/:room_id/pins/:message_id", group.PinHandler.PinMessage)
			roomGroup.DELETE("/:room_id/pins/:message_id", group.PinHandler.UnpinMessage)
			roomGroup.GET("/:room_id/pins", group.PinHandler.ListPins)
		}

		messageGroup := apiGroup.Group("/messages")
		messageGroup.Use(middleware.AuthMiddleware())
		{
			messageGroup.POST("", group.MessageHandler.SendMessage)
			messageGroup.PUT("/:message_id", group.MessageHandler.EditMessage)
			messageGroup.DELETE("/:message_id", group.MessageHandler.DeleteMessage)

			messageGroup.POST("/:message_id/report", group.MessageHandler.ReportMessage)
			messageGroup.GET("/:message_id/reports", group.MessageHandler.ListReports)

			messageGroup.POST("/:message_id/reactions", group.ReactionHandler.AddReaction)
			messageGroup.DELETE("/:message_id/reactions", group.ReactionHandler.RemoveReaction)
			messageGroup.GET("/:message_id/reactions", group.ReactionHandler.ListReactions)
		}
	}

	return r
}
