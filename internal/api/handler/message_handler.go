package handler

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/pkg/response"
	"Holonet/internal/service"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage 发送消息接口
func (s *MessageHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	// 从 Context 中获取中间件解析出的当前用户 ID
	senderID := c.GetUint64("user_id")

	res, err := s.messageService.SendMessage(c, senderID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// EditMessage 修改消息接口
func (s *MessageHandler) EditMessage(c *gin.Context) {
	var req dto.EditMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	res, err := s.messageService.EditMessage(c, userID, messageID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// DeleteMessage 删除消息接口
func (s *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	if err := s.messageService.DeleteMessage(c, userID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ReportMessage 举报消息接口
func (s *MessageHandler) ReportMessage(c *gin.Context) {
	var req dto.ReportMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	res, err := s.messageService.ReportMessage(c, userID, messageID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListReports 获取消息的举报记录
func (s *MessageHandler) ListReports(c *gin.Context) {
	messageID := c.Param("message_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	res, err := s.messageService.ListReports(c, messageID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetRoomHistory 获取群历史消息
func (s *MessageHandler) GetRoomHistory(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	before, pageSize, err := parseHistoryQuery(c)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.messageService.GetRoomHistory(c, userID, roomID, before, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetConversationHistory 获取单聊历史消息
func (s *MessageHandler) GetConversationHistory(c *gin.Context) {
	convID, _ := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	userID := c.GetUint64("user_id")

	before, pageSize, err := parseHistoryQuery(c)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.messageService.GetConversationHistory(c, userID, convID, before, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// parseHistoryQuery 解析翻页游标：before 为上一页最旧一条消息的时间
func parseHistoryQuery(c *gin.Context) (*time.Time, int, error) {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	raw := c.Query("before")
	if raw == "" {
		return nil, pageSize, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, 0, err
	}
	return &t, pageSize, nil
}
