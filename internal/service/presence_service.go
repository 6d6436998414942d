package service

import (
	"Holonet/internal/pkg/consts"
	"Holonet/internal/pkg/redis"
	"Holonet/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

// PresenceService 在线状态服务接口定义
// redis 的带过期心跳键是权威数据，users 表的在线标记只做查询兜底。
type PresenceService interface {
	Heartbeat(ctx context.Context, userID uint64) error
	MarkOffline(ctx context.Context, userID uint64) error
	IsOnline(ctx context.Context, userID uint64) (bool, error)
	SweepExpired(ctx context.Context) error
}

type presenceServiceImpl struct {
	userRepo repository.UserRepo
	ttl      time.Duration
}

func NewPresenceService(userRepo repository.UserRepo, ttlSeconds int) PresenceService {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	return &presenceServiceImpl{
		userRepo: userRepo,
		ttl:      time.Duration(ttlSeconds) * time.Second,
	}
}

// Heartbeat 刷新在线心跳，键不存在时视为刚上线
func (s *presenceServiceImpl) Heartbeat(ctx context.Context, userID uint64) error {
	key := consts.UserPresenceKey + strconv.FormatUint(userID, 10)

	exists, err := redis.Exists(ctx, key)
	if err != nil {
		return err
	}
	if err := redis.SetWithExpiration(ctx, key, "1", s.ttl); err != nil {
		return err
	}

	if !exists {
		if err := s.userRepo.SetOnline(ctx, userID, true); err != nil {
			log.Warn("set online flag failed", "user_id", userID, "err", err)
		}
	}
	return nil
}

// MarkOffline 主动下线
func (s *presenceServiceImpl) MarkOffline(ctx context.Context, userID uint64) error {
	key := consts.UserPresenceKey + strconv.FormatUint(userID, 10)
	if err := redis.DeleteKey(ctx, key); err != nil {
		return err
	}
	return s.userRepo.SetOnline(ctx, userID, false)
}

// IsOnline 在线判定
func (s *presenceServiceImpl) IsOnline(ctx context.Context, userID uint64) (bool, error) {
	key := consts.UserPresenceKey + strconv.FormatUint(userID, 10)
	return redis.Exists(ctx, key)
}

// SweepExpired 扫描库里标记在线但心跳已过期的用户，修正在线标记
func (s *presenceServiceImpl) SweepExpired(ctx context.Context) error {
	ids, err := s.userRepo.ListOnlineIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		key := consts.UserPresenceKey + strconv.FormatUint(id, 10)
		exists, err := redis.Exists(ctx, key)
		if err != nil {
			return err
		}
		if !exists {
			if err := s.userRepo.SetOnline(ctx, id, false); err != nil {
				log.Warn("sweep offline flag failed", "user_id", id, "err", err)
			}
		}
	}
	return nil
}
