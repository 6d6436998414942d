package handler

import (
	"Holonet/internal/pkg/response"
	"Holonet/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PinHandler struct {
	pinService service.PinService
}

func NewPinHandler(pinService service.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

// PinMessage 置顶消息
func (s *PinHandler) PinMessage(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	if err := s.pinService.PinMessage(c, userID, roomID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UnpinMessage 取消置顶
func (s *PinHandler) UnpinMessage(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	if err := s.pinService.UnpinMessage(c, userID, roomID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListPins 获取群置顶列表
func (s *PinHandler) ListPins(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	res, err := s.pinService.ListPins(c, userID, roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
