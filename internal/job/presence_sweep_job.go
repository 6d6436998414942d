package job

import (
	"Holonet/internal/service"
	"context"
	log "log/slog"
	"time"
)

// PresenceSweepJob 周期修正掉线未下线的用户标记
type PresenceSweepJob struct {
	presence service.PresenceService
}

func NewPresenceSweepJob(presence service.PresenceService) *PresenceSweepJob {
	return &PresenceSweepJob{presence: presence}
}

func (s *PresenceSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("start presence sweep job")
	if err := s.presence.SweepExpired(ctx); err != nil {
		log.Error("presence sweep job failed", "err", err)
		return
	}
	log.Info("presence sweep job finished")
}
