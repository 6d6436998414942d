package handler

import (
	"Holonet/internal/api/dto"
	"Holonet/internal/pkg/minio"
	"Holonet/internal/pkg/response"
	"Holonet/internal/pkg/util"
	"Holonet/internal/service"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MediaHandler struct {
	roomService service.RoomService
}

func NewMediaHandler(roomService service.RoomService) *MediaHandler {
	return &MediaHandler{roomService: roomService}
}

// UploadRoomAvatar 上传群头像：统一裁剪为方形 JPEG 后入桶，并更新群资料
func (s *MediaHandler) UploadRoomAvatar(c *gin.Context) {
	roomID, _ := strconv.ParseUint(c.Param("room_id"), 10, 64)
	userID := c.GetUint64("user_id")

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil || !strings.HasPrefix(contentType, "image/") {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	buf, size, err := util.NormalizeAvatar(reader)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + ".jpg"
	fileKey, err := minio.UploadFile(c.Request.Context(), objectName, buf, size, "image/jpeg")
	if err != nil {
		log.ErrorContext(c.Request.Context(), "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	publicURL := minio.GetPublicURL(fileKey)
	res, err := s.roomService.UpdateRoom(c, userID, roomID, &dto.UpdateRoomReq{Image: &publicURL})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
