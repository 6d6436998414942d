package kafka

import (
	"Holonet/internal/model"
	"Holonet/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// UserHandler 消费上游用户库的 Canal 变更，维护本地用户镜像
type UserHandler struct {
	userRepo repository.UserRepo
}

func NewUserHandler(userRepo repository.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (s *UserHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("user consumer setup")
	return nil
}

func (s *UserHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("user consumer cleanup")
	return nil
}

func (s *UserHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-user consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("process batch error", "err", err)
		return err
	}
	log.Info("topic-user consume claim end")
	return nil
}

func (s *UserHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "users")
	if err != nil {
		return err
	}

	for _, row := range canalMsg.Data {
		id := rowUint64(row, "id")
		if id == 0 {
			continue
		}

		if canalMsg.Type == "DELETE" || rowBool(row, "is_delete") {
			if err := s.userRepo.Delete(ctx, id); err != nil {
				return errors.Wrapf(err, "delete user %d", id)
			}
			continue
		}

		user := &model.User{ID: id}
		if v := rowString(row, "username"); v != "" {
			user.Username = &v
		}
		if v := rowString(row, "nickname"); v != "" {
			user.Nickname = &v
		}
		if v := rowString(row, "avatar_url"); v != "" {
			user.AvatarURL = &v
		}
		if err := s.userRepo.Upsert(ctx, user); err != nil {
			return errors.Wrapf(err, "upsert user %d", id)
		}
	}
	return nil
}
