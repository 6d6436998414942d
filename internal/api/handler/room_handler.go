package handler

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/pkg/response"
	"Holonet/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService service.RoomService
}

func NewRoomHandler(roomService service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateConversation 新建会话接口，2 人单聊去重，多人建群
func (s *RoomHandler) CreateConversation(c *gin.Context) {
	var req dto.CreateConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userID := c.GetUint64("user_id")

	res, err := s.roomService.CreateConversation(c, userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListDirectConversations 获取单聊会话列表
func (s *RoomHandler) ListDirectConversations(c *gin.Context) {
	userID := c.GetUint64("user_id")

	res, err := s.roomService.ListDirectConversations(c, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MyRooms 获取群会话列表，含最后一条消息和未读数
func (s *RoomHandler) MyRooms(c *gin.Context) {
	userID := c.GetUint64("user_id")

	res, err := s.roomService.MyRooms(c, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetRoom 获取群详情
func (s *RoomHandler) GetRoom(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	res, err := s.roomService.GetRoom(c, userID, roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateRoom 修改群资料
func (s *RoomHandler) UpdateRoom(c *gin.Context) {
	var req dto.UpdateRoomReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	res, err := s.roomService.UpdateRoom(c, userID, roomID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// DeleteRoom 解散群聊
func (s *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.DeleteRoom(c, userID, roomID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddMembers 添加群成员
func (s *RoomHandler) AddMembers(c *gin.Context) {
	var req dto.AddMembersReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.AddMembers(c, userID, roomID, req.UserIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveMember 移除群成员
func (s *RoomHandler) RemoveMember(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	targetID, _ := strconv.ParseUint(c.Param("member_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.RemoveMember(c, userID, roomID, targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// LeaveRoom 退出群聊
func (s *RoomHandler) LeaveRoom(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.LeaveRoom(c, userID, roomID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddAdmin 提升管理员
func (s *RoomHandler) AddAdmin(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	targetID, _ := strconv.ParseUint(c.Param("member_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.AddAdmin(c, userID, roomID, targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveAdmin 撤销管理员
func (s *RoomHandler) RemoveAdmin(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	targetID, _ := strconv.ParseUint(c.Param("member_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.RemoveAdmin(c, userID, roomID, targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkRead 标记已读接口
func (s *RoomHandler) MarkRead(c *gin.Context) {
	var req dto.MarkReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	res, err := s.roomService.MarkRead(c, userID, roomID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListReadReceipts 获取群成员已读进度
func (s *RoomHandler) ListReadReceipts(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	res, err := s.roomService.ListReadReceipts(c, userID, roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Typing 输入状态广播接口
func (s *RoomHandler) Typing(c *gin.Context) {
	var req dto.TypingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	if err := s.roomService.Typing(c, userID, roomID, req.Typing); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
