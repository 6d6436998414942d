package service

import (
	"Holonet/internal/api/config"
	"Holonet/internal/api/dto"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// PushService 离线推送服务接口定义
type PushService interface {
	NotifyOffline(ctx context.Context, userID uint64, msg *dto.MessageDTO)
}

type pushServiceImpl struct {
	cfg        config.PushConfig
	httpClient *resty.Client
}

func NewPushService(cfg config.PushConfig) PushService {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &pushServiceImpl{cfg: cfg, httpClient: client}
}

// NotifyOffline 调用推送网关触达离线用户，失败只记日志
func (s *pushServiceImpl) NotifyOffline(ctx context.Context, userID uint64, msg *dto.MessageDTO) {
	if !s.cfg.Enable {
		return
	}

	body := map[string]interface{}{
		"user_id": userID,
		"message": msg,
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(s.cfg.URL)
	if err != nil {
		log.WarnContext(ctx, "offline push failed", "user_id", userID, "err", err)
		return
	}
	if resp.IsError() {
		log.WarnContext(ctx, "offline push rejected",
			"user_id", userID,
			"status", fmt.Sprintf("%d", resp.StatusCode()),
		)
	}
}
