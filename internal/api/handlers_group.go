package api

import "Holonet/internal/api/handler"

type HandlersGroup struct {
	RoomHandler     *handler.RoomHandler
	MessageHandler  *handler.MessageHandler
	ReactionHandler *handler.ReactionHandler
	PinHandler      *handler.PinHandler
	MediaHandler    *handler.MediaHandler
	WSHandler       *handler.WsHandler
}
