package handler

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/pkg/response"
	"Holonet/internal/service"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	reactionService service.ReactionService
}

func NewReactionHandler(reactionService service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// AddReaction 给消息添加表态
func (s *ReactionHandler) AddReaction(c *gin.Context) {
	var req dto.ReactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	if err := s.reactionService.AddReaction(c, userID, messageID, req.Emoji); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveReaction 移除表态，emoji 走查询参数
func (s *ReactionHandler) RemoveReaction(c *gin.Context) {
	messageID := c.Param("message_id")
	emoji := c.Query("emoji")
	userID := c.GetUint64("user_id")

	if err := s.reactionService.RemoveReaction(c, userID, messageID, emoji); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListReactions 获取消息的全部表态
func (s *ReactionHandler) ListReactions(c *gin.Context) {
	messageID := c.Param("message_id")
	userID := c.GetUint64("user_id")

	res, err := s.reactionService.ListReactions(c, userID, messageID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
